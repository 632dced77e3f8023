package models

import "time"

// AccommodationStatus - основной статус заявки на проживание.
type AccommodationStatus string

const (
	AccommodationPending       AccommodationStatus = "pending"
	AccommodationHotelAssigned AccommodationStatus = "hotel_assigned"
	AccommodationHotelApproved AccommodationStatus = "hotel_approved"
	AccommodationHotelRejected AccommodationStatus = "hotel_rejected"
	AccommodationConfirmed     AccommodationStatus = "confirmed"
	AccommodationCancelled     AccommodationStatus = "cancelled"
)

// Assignable: из этого статуса организатор может (пере)назначить отель.
func (s AccommodationStatus) Assignable() bool {
	return s == AccommodationPending || s == AccommodationHotelRejected
}

type CheckInStatus string

const (
	CheckInPending   CheckInStatus = "pending"
	CheckInCheckedIn CheckInStatus = "checked_in"
)

type CheckOutStatus string

const (
	CheckOutPending    CheckOutStatus = "pending"
	CheckOutCheckedOut CheckOutStatus = "checked_out"
)

type AccommodationRequest struct {
	ID                       int                 `json:"id" db:"id"`
	TeamRequestID            int                 `json:"team_request_id" db:"team_request_id"`
	TeamMemberID             int                 `json:"team_member_id" db:"team_member_id"`
	ClusterID                *int                `json:"cluster_id,omitempty" db:"cluster_id"`
	HotelID                  *int                `json:"hotel_id,omitempty" db:"hotel_id"`
	RoomCategoryID           *int                `json:"room_category_id,omitempty" db:"room_category_id"`
	CheckInDate              time.Time           `json:"check_in_date" db:"check_in_date"`
	CheckOutDate             time.Time           `json:"check_out_date" db:"check_out_date"`
	AccommodationPreferences *string             `json:"accommodation_preferences,omitempty" db:"accommodation_preferences"`
	Status                   AccommodationStatus `json:"status" db:"status"`
	AssignedBy               *int                `json:"assigned_by,omitempty" db:"assigned_by"`
	AssignedAt               *time.Time          `json:"assigned_at,omitempty" db:"assigned_at"`
	HotelResponseReason      *string             `json:"hotel_response_reason,omitempty" db:"hotel_response_reason"`
	HotelRespondedBy         *int                `json:"hotel_responded_by,omitempty" db:"hotel_responded_by"`
	HotelRespondedAt         *time.Time          `json:"hotel_responded_at,omitempty" db:"hotel_responded_at"`
	ConfirmationCode         *string             `json:"confirmation_code,omitempty" db:"confirmation_code"`
	QRCode                   *string             `json:"qr_code,omitempty" db:"qr_code"`
	CheckInStatus            CheckInStatus       `json:"check_in_status" db:"check_in_status"`
	CheckOutStatus           CheckOutStatus      `json:"check_out_status" db:"check_out_status"`
	ActualCheckInTime        *time.Time          `json:"actual_check_in_time,omitempty" db:"actual_check_in_time"`
	ActualCheckOutTime       *time.Time          `json:"actual_check_out_time,omitempty" db:"actual_check_out_time"`
	IsEarlyCheckout          bool                `json:"is_early_checkout" db:"is_early_checkout"`
	CancelledAt              *time.Time          `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CreatedAt                time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time           `json:"updated_at" db:"updated_at"`

	Member *TeamMember `json:"member,omitempty" db:"-"`
}

// HoldsRoom: за заявкой сейчас зарезервирован номер.
func (a *AccommodationRequest) HoldsRoom() bool {
	return a.HotelID != nil && a.RoomCategoryID != nil
}

// AccommodationEvent публикуется после каждого закоммиченного перехода.
type AccommodationEvent struct {
	Type            string              `json:"type"`
	AccommodationID int                 `json:"accommodation_id"`
	TeamRequestID   int                 `json:"team_request_id"`
	HotelID         *int                `json:"hotel_id,omitempty"`
	Status          AccommodationStatus `json:"status"`
	CheckInStatus   CheckInStatus       `json:"check_in_status"`
	CheckOutStatus  CheckOutStatus      `json:"check_out_status"`
	ActorID         int                 `json:"actor_id"`
	OccurredAt      time.Time           `json:"occurred_at"`
}

const (
	EventAccommodationCreated   = "ACCOMMODATION_CREATED"
	EventAccommodationAssigned  = "ACCOMMODATION_ASSIGNED"
	EventAccommodationConfirmed = "ACCOMMODATION_CONFIRMED"
	EventAccommodationRejected  = "ACCOMMODATION_REJECTED"
	EventAccommodationCancelled = "ACCOMMODATION_CANCELLED"
	EventGuestCheckedIn         = "GUEST_CHECKED_IN"
	EventGuestCheckedOut        = "GUEST_CHECKED_OUT"
)
