package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-accommodation/services"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(ds services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: ds}
}

// GetAccommodationStats godoc
// @Summary Сводка по заявкам на проживание
// @Tags dashboard
// @Produce json
// @Success 200 {object} models.AccommodationStats
// @Failure 403 {object} map[string]string
// @Security BearerAuth
// @Router /dashboard/accommodations [get]
func (h *DashboardHandler) GetAccommodationStats(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	stats, err := h.dashboardService.GetAccommodationStats(r.Context(), actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, stats, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
