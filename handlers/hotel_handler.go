package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Dosada05/tournament-accommodation/models"
	"github.com/Dosada05/tournament-accommodation/services"
)

type HotelHandler struct {
	hotelService services.HotelService
}

func NewHotelHandler(hs services.HotelService) *HotelHandler {
	return &HotelHandler{
		hotelService: hs,
	}
}

func (h *HotelHandler) CreateCluster(w http.ResponseWriter, r *http.Request) {
	var input services.CreateClusterInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, err := actorFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	cluster, err := h.hotelService.CreateCluster(r.Context(), actor, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"cluster": cluster}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListClusters godoc
// @Summary Список кластеров отелей
// @Tags clusters
// @Produce json
// @Param tournament_id query int false "Фильтр по турниру"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /clusters [get]
func (h *HotelHandler) ListClusters(w http.ResponseWriter, r *http.Request) {
	var tournamentID *int
	if s := r.URL.Query().Get("tournament_id"); s != "" {
		id, err := strconv.Atoi(s)
		if err != nil || id <= 0 {
			badRequestResponse(w, r, fmt.Errorf("invalid tournament_id: %q", s))
			return
		}
		tournamentID = &id
	}

	clusters, err := h.hotelService.ListClusters(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"clusters": clusters}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *HotelHandler) DeleteCluster(w http.ResponseWriter, r *http.Request) {
	clusterID, err := getIDFromURL(r, "clusterID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, err := actorFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	if err := h.hotelService.DeleteCluster(r.Context(), actor, clusterID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *HotelHandler) CreateHotel(w http.ResponseWriter, r *http.Request) {
	var input services.CreateHotelInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, err := actorFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	hotel, err := h.hotelService.CreateHotel(r.Context(), actor, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"hotel": hotel}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *HotelHandler) GetHotel(w http.ResponseWriter, r *http.Request) {
	hotelID, err := getIDFromURL(r, "hotelID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	hotel, err := h.hotelService.GetHotel(r.Context(), hotelID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"hotel": hotel}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetHotelApproval godoc
// @Summary Одобрить или отклонить отель (только админ)
// @Tags hotels
// @Accept json
// @Produce json
// @Param hotelID path int true "Hotel ID"
// @Param body body object true "{\"approval\": \"approved\"}"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /hotels/{hotelID}/approval [patch]
func (h *HotelHandler) SetHotelApproval(w http.ResponseWriter, r *http.Request) {
	hotelID, err := getIDFromURL(r, "hotelID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input struct {
		Approval models.HotelApproval `json:"approval"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, err := actorFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	hotel, err := h.hotelService.SetHotelApproval(r.Context(), actor, hotelID, input.Approval)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"hotel": hotel}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *HotelHandler) AddRoomCategory(w http.ResponseWriter, r *http.Request) {
	hotelID, err := getIDFromURL(r, "hotelID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.CreateRoomCategoryInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, err := actorFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	rc, err := h.hotelService.AddRoomCategory(r.Context(), actor, hotelID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"room_category": rc}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
