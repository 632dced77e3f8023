package storage

import (
	"context"
	"fmt"
	"io"
)

const (
	ContentTypeJSON = "application/json"

	voucherPrefix = "vouchers"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader хранит объекты (ваучеры бронирований) в бакете.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	// Delete не считает отсутствие объекта ошибкой.
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}

// VoucherKey строит ключ ваучера; QR-токен входит в ключ, поэтому после ротации
// токена старый ваучер удаляется по своему ключу.
func VoucherKey(accommodationID int, qrToken string) string {
	return fmt.Sprintf("%s/%d/%s.json", voucherPrefix, accommodationID, qrToken)
}
