package models

import "time"

type TeamRequestStatus string

const (
	TeamRequestPending  TeamRequestStatus = "pending"
	TeamRequestApproved TeamRequestStatus = "approved"
	TeamRequestRejected TeamRequestStatus = "rejected"
)

// TeamRequest группирует участников команды, заявленных на турнир.
type TeamRequest struct {
	ID                 int               `json:"id" db:"id"`
	TeamName           string            `json:"team_name" db:"team_name"`
	Sport              string            `json:"sport" db:"sport"`
	TournamentID       int               `json:"tournament_id" db:"tournament_id"`
	ManagerID          int               `json:"manager_id" db:"manager_id"`
	PreferredClusterID *int              `json:"preferred_cluster_id,omitempty" db:"preferred_cluster_id"`
	CheckInDate        time.Time         `json:"check_in_date" db:"check_in_date"`
	CheckOutDate       time.Time         `json:"check_out_date" db:"check_out_date"`
	Status             TeamRequestStatus `json:"status" db:"status"`
	ReviewedBy         *int              `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt         *time.Time        `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt          time.Time         `json:"created_at" db:"created_at"`

	Members []TeamMember `json:"members,omitempty" db:"-"`
}

type TeamMember struct {
	ID                       int         `json:"id" db:"id"`
	TeamRequestID            int         `json:"team_request_id" db:"team_request_id"`
	UserID                   *int        `json:"user_id,omitempty" db:"user_id"`
	FullName                 string      `json:"full_name" db:"full_name"`
	Contact                  ContactInfo `json:"contact" db:"contact"`
	RequiresAccommodation    bool        `json:"requires_accommodation" db:"requires_accommodation"`
	AccommodationPreferences *string     `json:"accommodation_preferences,omitempty" db:"accommodation_preferences"`
	CreatedAt                time.Time   `json:"created_at" db:"created_at"`
}
