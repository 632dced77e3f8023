package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/tournament-accommodation/services"
)

type AccommodationHandler struct {
	accommodationService services.AccommodationService
}

func NewAccommodationHandler(as services.AccommodationService) *AccommodationHandler {
	return &AccommodationHandler{
		accommodationService: as,
	}
}

func (h *AccommodationHandler) actor(w http.ResponseWriter, r *http.Request) (services.Actor, bool) {
	actor, err := actorFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return services.Actor{}, false
	}
	return actor, true
}

// GetAccommodation godoc
// @Summary Получить заявку на проживание
// @Tags accommodations
// @Produce json
// @Param accommodationID path int true "Accommodation ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /accommodations/{accommodationID} [get]
func (h *AccommodationHandler) GetAccommodation(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "accommodationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	accommodation, err := h.accommodationService.GetAccommodation(r.Context(), actor, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.writeAccommodation(w, r, http.StatusOK, accommodation)
}

// AssignHotel godoc
// @Summary Назначить отель и категорию номера (вручную или автоматически по кластеру)
// @Tags accommodations
// @Accept json
// @Produce json
// @Param accommodationID path int true "Accommodation ID"
// @Param body body services.AssignHotelInput true "hotel_id + room_category_id, либо automatic + cluster_id"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Неверное состояние или нет свободных номеров"
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /accommodations/{accommodationID}/assignment [post]
func (h *AccommodationHandler) AssignHotel(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "accommodationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.AssignHotelInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	accommodation, err := h.accommodationService.AssignHotel(r.Context(), actor, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.writeAccommodation(w, r, http.StatusOK, accommodation)
}

// RespondToAssignment godoc
// @Summary Ответ отеля на назначение (approve/reject)
// @Tags accommodations
// @Accept json
// @Produce json
// @Param accommodationID path int true "Accommodation ID"
// @Param body body services.RespondInput true "approve и причина отказа"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /accommodations/{accommodationID}/response [post]
func (h *AccommodationHandler) RespondToAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "accommodationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.RespondInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	accommodation, err := h.accommodationService.RespondToAssignment(r.Context(), actor, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.writeAccommodation(w, r, http.StatusOK, accommodation)
}

func (h *AccommodationHandler) CancelAccommodation(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "accommodationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	accommodation, err := h.accommodationService.CancelAccommodation(r.Context(), actor, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.writeAccommodation(w, r, http.StatusOK, accommodation)
}

func (h *AccommodationHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "accommodationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	accommodation, err := h.accommodationService.CheckIn(r.Context(), actor, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.writeAccommodation(w, r, http.StatusOK, accommodation)
}

// CheckOut godoc
// @Summary Выезд гостя
// @Tags accommodations
// @Accept json
// @Produce json
// @Param accommodationID path int true "Accommodation ID"
// @Param body body services.CheckOutInput false "is_early_checkout"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /accommodations/{accommodationID}/check-out [post]
func (h *AccommodationHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "accommodationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.CheckOutInput
	if err := readOptionalJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	accommodation, err := h.accommodationService.CheckOut(r.Context(), actor, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.writeAccommodation(w, r, http.StatusOK, accommodation)
}

func (h *AccommodationHandler) ListByTeamRequest(w http.ResponseWriter, r *http.Request) {
	teamRequestID, err := getIDFromURL(r, "teamRequestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	accommodations, err := h.accommodationService.ListByTeamRequest(r.Context(), actor, teamRequestID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.writeAccommodations(w, r, http.StatusOK, accommodations)
}

// CreateForTeamRequest создаёт недостающие заявки для участников одобренной команды.
func (h *AccommodationHandler) CreateForTeamRequest(w http.ResponseWriter, r *http.Request) {
	teamRequestID, err := getIDFromURL(r, "teamRequestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	accommodations, err := h.accommodationService.CreateAccommodationRequests(r.Context(), actor, teamRequestID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.writeAccommodations(w, r, http.StatusCreated, accommodations)
}

func (h *AccommodationHandler) BulkCheckIn(w http.ResponseWriter, r *http.Request) {
	teamRequestID, err := getIDFromURL(r, "teamRequestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	results, err := h.accommodationService.BulkCheckIn(r.Context(), actor, teamRequestID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.writeBulkResults(w, r, results)
}

func (h *AccommodationHandler) BulkCheckOut(w http.ResponseWriter, r *http.Request) {
	teamRequestID, err := getIDFromURL(r, "teamRequestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.CheckOutInput
	if err := readOptionalJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	results, err := h.accommodationService.BulkCheckOut(r.Context(), actor, teamRequestID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.writeBulkResults(w, r, results)
}

func (h *AccommodationHandler) ListPendingForHotelManager(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	accommodations, err := h.accommodationService.ListPendingForHotelManager(r.Context(), actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.writeAccommodations(w, r, http.StatusOK, accommodations)
}

func (h *AccommodationHandler) ListRejected(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	accommodations, err := h.accommodationService.ListRejected(r.Context(), actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.writeAccommodations(w, r, http.StatusOK, accommodations)
}

func (h *AccommodationHandler) ListTeamsLackingBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	gaps, err := h.accommodationService.ListTeamsLackingBookings(r.Context(), actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": gaps}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// VerifyQRCode godoc
// @Summary Проверить QR-код гостя на входе в отель
// @Tags accommodations
// @Produce json
// @Param qr query string true "QR token"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "QR-код недействителен"
// @Security BearerAuth
// @Router /accommodations/verify [get]
func (h *AccommodationHandler) VerifyQRCode(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("qr")
	if token == "" {
		badRequestResponse(w, r, errors.New("qr query parameter is required"))
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	accommodation, err := h.accommodationService.VerifyQRCode(r.Context(), actor, token)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.writeAccommodation(w, r, http.StatusOK, accommodation)
}

func (h *AccommodationHandler) writeAccommodation(w http.ResponseWriter, r *http.Request, status int, accommodation interface{}) {
	if err := writeJSON(w, status, jsonResponse{"accommodation": accommodation}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AccommodationHandler) writeAccommodations(w http.ResponseWriter, r *http.Request, status int, accommodations interface{}) {
	if err := writeJSON(w, status, jsonResponse{"accommodations": accommodations}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AccommodationHandler) writeBulkResults(w http.ResponseWriter, r *http.Request, results []services.BulkResult) {
	failed := 0
	for _, res := range results {
		if !res.Success {
			failed++
		}
	}
	response := jsonResponse{
		"results":   results,
		"succeeded": len(results) - failed,
		"failed":    failed,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
