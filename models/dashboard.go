package models

type AccommodationStats struct {
	Pending              int `json:"pending"`
	AwaitingHotel        int `json:"awaiting_hotel"`
	Rejected             int `json:"rejected"`
	Confirmed            int `json:"confirmed"`
	CheckedIn            int `json:"checked_in"`
	Cancelled            int `json:"cancelled"`
	TeamsLackingBookings int `json:"teams_lacking_bookings"`
}

// TeamBookingGap - одобренная команда, у которой ещё не все участники заселены.
type TeamBookingGap struct {
	TeamRequestID    int    `json:"team_request_id"`
	TeamName         string `json:"team_name"`
	RequiringMembers int    `json:"requiring_members"`
	ConfirmedCount   int    `json:"confirmed_count"`
	MissingCount     int    `json:"missing_count"`
}
