package models

import "time"

// HotelApproval - статус проверки отеля администратором.
type HotelApproval string

const (
	HotelApprovalPending  HotelApproval = "pending"
	HotelApprovalApproved HotelApproval = "approved"
	HotelApprovalRejected HotelApproval = "rejected"
)

func (a HotelApproval) Valid() bool {
	switch a {
	case HotelApprovalPending, HotelApprovalApproved, HotelApprovalRejected:
		return true
	}
	return false
}

// HotelCluster группирует отели вокруг площадки. MaxRadiusKm хранится, но в подборе не участвует.
type HotelCluster struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	TournamentID *int      `json:"tournament_id,omitempty" db:"tournament_id"`
	VenueName    *string   `json:"venue_name,omitempty" db:"venue_name"`
	MaxRadiusKm  *float64  `json:"max_radius_km,omitempty" db:"max_radius_km"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Hotels []Hotel `json:"hotels,omitempty" db:"-"`
}

type Hotel struct {
	ID                  int           `json:"id" db:"id"`
	Name                string        `json:"name" db:"name"`
	Address             *string       `json:"address,omitempty" db:"address"`
	ContactInfo         ContactInfo   `json:"contact_info" db:"contact_info"`
	ClusterID           *int          `json:"cluster_id,omitempty" db:"cluster_id"`
	ManagerID           int           `json:"manager_id" db:"manager_id"`
	Approval            HotelApproval `json:"approval" db:"approval"`
	AutoApproveBookings bool          `json:"auto_approve_bookings" db:"auto_approve_bookings"`
	CreatedAt           time.Time     `json:"created_at" db:"created_at"`

	RoomCategories []RoomCategory `json:"room_categories,omitempty" db:"-"`
}

func (h *Hotel) IsApproved() bool {
	return h.Approval == HotelApprovalApproved
}

type RoomCategory struct {
	ID             int       `json:"id" db:"id"`
	HotelID        int       `json:"hotel_id" db:"hotel_id"`
	Name           string    `json:"name" db:"name"`
	PricePerNight  float64   `json:"price_per_night" db:"price_per_night"`
	TotalRooms     int       `json:"total_rooms" db:"total_rooms"`
	AvailableRooms int       `json:"available_rooms" db:"available_rooms"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// OccupancyRatio = 1 - available/total; категория без номеров считается заполненной.
func (rc *RoomCategory) OccupancyRatio() float64 {
	if rc.TotalRooms <= 0 {
		return 1
	}
	return 1 - float64(rc.AvailableRooms)/float64(rc.TotalRooms)
}
