package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-accommodation/models"
	"github.com/Dosada05/tournament-accommodation/storage"
)

// Voucher - печатное подтверждение брони, привязанное к текущему QR-токену.
type Voucher struct {
	AccommodationID  int       `json:"accommodation_id"`
	ConfirmationCode string    `json:"confirmation_code"`
	QRToken          string    `json:"qr_token"`
	HotelID          int       `json:"hotel_id"`
	RoomCategoryID   int       `json:"room_category_id"`
	CheckInDate      time.Time `json:"check_in_date"`
	CheckOutDate     time.Time `json:"check_out_date"`
	IssuedAt         time.Time `json:"issued_at"`
}

// VoucherStore хранит ваучеры в объектном хранилище; без uploader ничего не делает.
type VoucherStore struct {
	uploader storage.FileUploader
}

func NewVoucherStore(uploader storage.FileUploader) *VoucherStore {
	return &VoucherStore{uploader: uploader}
}

// Issue выгружает ваучер подтверждённой заявки и возвращает его публичный URL.
func (v *VoucherStore) Issue(ctx context.Context, a *models.AccommodationRequest, issuedAt time.Time) (string, error) {
	if v == nil || v.uploader == nil {
		return "", nil
	}
	if a.ConfirmationCode == nil || a.QRCode == nil || !a.HoldsRoom() {
		return "", fmt.Errorf("accommodation %d is not confirmed", a.ID)
	}

	payload, err := json.Marshal(Voucher{
		AccommodationID:  a.ID,
		ConfirmationCode: *a.ConfirmationCode,
		QRToken:          *a.QRCode,
		HotelID:          *a.HotelID,
		RoomCategoryID:   *a.RoomCategoryID,
		CheckInDate:      a.CheckInDate,
		CheckOutDate:     a.CheckOutDate,
		IssuedAt:         issuedAt,
	})
	if err != nil {
		return "", fmt.Errorf("marshal voucher: %w", err)
	}

	result, err := v.uploader.Upload(ctx, storage.VoucherKey(a.ID, *a.QRCode), storage.ContentTypeJSON, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	return result.Location, nil
}

// Revoke удаляет ваучер старого QR-токена после ротации.
func (v *VoucherStore) Revoke(ctx context.Context, accommodationID int, qrToken string) error {
	if v == nil || v.uploader == nil || qrToken == "" {
		return nil
	}
	return v.uploader.Delete(ctx, storage.VoucherKey(accommodationID, qrToken))
}
