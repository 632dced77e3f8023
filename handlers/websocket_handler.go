package handlers

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/Dosada05/tournament-accommodation/models"
	"github.com/Dosada05/tournament-accommodation/realtime"
	"github.com/Dosada05/tournament-accommodation/services"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub                *realtime.Hub
	teamRequestService services.TeamRequestService
	hotelService       services.HotelService
	upgrader           websocket.Upgrader
	logger             *slog.Logger
}

// NewWebSocketHandler принимает список разрешённых Origin; "*" разрешает любой.
func NewWebSocketHandler(hub *realtime.Hub, ts services.TeamRequestService, hs services.HotelService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	allowAny := len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*")
	return &WebSocketHandler{
		hub:                hub,
		teamRequestService: ts,
		hotelService:       hs,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAny || origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
		logger: logger,
	}
}

// ServeTeamRequestWs подписывает клиента на события заявки команды.
// Клиент подключается к /ws/team-requests/{teamRequestID}?token=...
func (h *WebSocketHandler) ServeTeamRequestWs(w http.ResponseWriter, r *http.Request) {
	teamRequestID, err := getIDFromURL(r, "teamRequestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, err := actorFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	// Подписаться может только тот, кто видит заявку.
	if _, err := h.teamRequestService.GetByID(r.Context(), actor, teamRequestID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.serve(w, r, realtime.TeamRequestRoom(teamRequestID))
}

// ServeHotelWs подписывает менеджера отеля на события по его отелю.
func (h *WebSocketHandler) ServeHotelWs(w http.ResponseWriter, r *http.Request) {
	hotelID, err := getIDFromURL(r, "hotelID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, err := actorFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	hotel, err := h.hotelService.GetHotel(r.Context(), hotelID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if !actor.HasRole(models.RoleAdmin, models.RoleEventManager) && hotel.ManagerID != actor.UserID {
		mapServiceErrorToHTTP(w, r, services.ErrUnauthorized)
		return
	}

	h.serve(w, r, realtime.HotelRoom(hotelID))
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, room string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой, остаётся только залогировать.
		h.logger.Warn("failed to upgrade websocket connection", slog.String("room", room), slog.Any("error", err))
		return
	}

	if !h.hub.Join(h.hub.NewClient(conn, room)) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}
	h.logger.Info("websocket client connected", slog.String("room", room))
}
