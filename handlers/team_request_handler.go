package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-accommodation/models"
	"github.com/Dosada05/tournament-accommodation/services"
)

type TeamRequestHandler struct {
	teamRequestService services.TeamRequestService
}

func NewTeamRequestHandler(ts services.TeamRequestService) *TeamRequestHandler {
	return &TeamRequestHandler{
		teamRequestService: ts,
	}
}

// CreateTeamRequest godoc
// @Summary Подать заявку команды с составом
// @Tags team-requests
// @Accept json
// @Produce json
// @Param body body services.CreateTeamRequestInput true "Команда, даты проживания и участники"
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /team-requests [post]
func (h *TeamRequestHandler) CreateTeamRequest(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTeamRequestInput
	err := readJSON(w, r, &input)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, err := actorFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	teamRequest, err := h.teamRequestService.Create(r.Context(), actor, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusCreated, jsonResponse{"team_request": teamRequest}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamRequestHandler) GetTeamRequest(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "teamRequestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, err := actorFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	teamRequest, err := h.teamRequestService.GetByID(r.Context(), actor, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"team_request": teamRequest}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamRequestHandler) ListTeamRequests(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var status *models.TeamRequestStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := models.TeamRequestStatus(s)
		status = &st
	}

	teamRequests, err := h.teamRequestService.List(r.Context(), actor, status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"team_requests": teamRequests}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ReviewTeamRequest godoc
// @Summary Одобрить или отклонить заявку команды
// @Tags team-requests
// @Accept json
// @Produce json
// @Param teamRequestID path int true "Team request ID"
// @Param body body services.ReviewTeamRequestInput true "approved | rejected"
// @Success 200 {object} services.ReviewResult
// @Failure 409 {object} map[string]string "Заявка уже рассмотрена"
// @Security BearerAuth
// @Router /team-requests/{teamRequestID}/status [patch]
func (h *TeamRequestHandler) ReviewTeamRequest(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "teamRequestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ReviewTeamRequestInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, err := actorFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	result, err := h.teamRequestService.Review(r.Context(), actor, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, result, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}
