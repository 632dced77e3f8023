package services

import (
	"sort"

	"github.com/Dosada05/tournament-accommodation/models"
)

// roomCandidate - пара (отель, категория номера) для автоматического назначения.
type roomCandidate struct {
	Hotel *models.Hotel
	Room  *models.RoomCategory
}

// rankRoomCandidates сортирует кандидатов: меньшая заполненность, затем дешевле ночь,
// затем меньший id отеля и id категории. Неодобренные отели и категории без свободных
// номеров не попадают в список.
func rankRoomCandidates(hotels []*models.Hotel, rooms []*models.RoomCategory) []roomCandidate {
	byID := make(map[int]*models.Hotel, len(hotels))
	for _, h := range hotels {
		if h != nil && h.IsApproved() {
			byID[h.ID] = h
		}
	}

	candidates := make([]roomCandidate, 0, len(rooms))
	for _, rc := range rooms {
		if rc == nil || rc.AvailableRooms <= 0 || rc.TotalRooms <= 0 {
			continue
		}
		h, ok := byID[rc.HotelID]
		if !ok {
			continue
		}
		candidates = append(candidates, roomCandidate{Hotel: h, Room: rc})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if ra, rb := a.Room.OccupancyRatio(), b.Room.OccupancyRatio(); ra != rb {
			return ra < rb
		}
		if a.Room.PricePerNight != b.Room.PricePerNight {
			return a.Room.PricePerNight < b.Room.PricePerNight
		}
		if a.Hotel.ID != b.Hotel.ID {
			return a.Hotel.ID < b.Hotel.ID
		}
		return a.Room.ID < b.Room.ID
	})
	return candidates
}
