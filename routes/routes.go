package routes

import (
	"net/http"

	"github.com/Dosada05/tournament-accommodation/handlers"
	"github.com/Dosada05/tournament-accommodation/middleware"
	"github.com/Dosada05/tournament-accommodation/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
}

type Handlers struct {
	Auth          *handlers.AuthHandler
	Admin         *handlers.AdminUserHandler
	Hotels        *handlers.HotelHandler
	TeamRequests  *handlers.TeamRequestHandler
	Accommodation *handlers.AccommodationHandler
	Dashboard     *handlers.DashboardHandler
	WebSocket     *handlers.WebSocketHandler
}

func SetupRoutes(router chi.Router, opts Options, h Handlers) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.JWTSecret))

		// Для WebSocket токен передаётся в query-параметре token.
		r.Get("/ws/team-requests/{teamRequestID}", h.WebSocket.ServeTeamRequestWs)
		r.Get("/ws/hotels/{hotelID}", h.WebSocket.ServeHotelWs)

		r.Route("/clusters", func(r chi.Router) {
			r.Get("/", h.Hotels.ListClusters)
			r.With(middleware.RequireRoles(models.RoleAdmin, models.RoleEventManager)).Post("/", h.Hotels.CreateCluster)
			r.With(middleware.RequireRoles(models.RoleAdmin, models.RoleEventManager)).Delete("/{clusterID}", h.Hotels.DeleteCluster)
		})

		r.Route("/hotels", func(r chi.Router) {
			r.With(middleware.RequireRoles(models.RoleAdmin, models.RoleHotelManager)).Post("/", h.Hotels.CreateHotel)
			r.Route("/{hotelID}", func(r chi.Router) {
				r.Get("/", h.Hotels.GetHotel)
				r.With(middleware.RequireRoles(models.RoleAdmin)).Patch("/approval", h.Hotels.SetHotelApproval)
				// Владение отелем проверяет сервис.
				r.With(middleware.RequireRoles(models.RoleAdmin, models.RoleHotelManager)).Post("/room-categories", h.Hotels.AddRoomCategory)
			})
		})

		r.Route("/team-requests", func(r chi.Router) {
			r.Get("/", h.TeamRequests.ListTeamRequests)
			r.With(middleware.RequireRoles(models.RoleTeamManager, models.RoleEventManager, models.RoleAdmin)).Post("/", h.TeamRequests.CreateTeamRequest)
			r.Route("/{teamRequestID}", func(r chi.Router) {
				r.Get("/", h.TeamRequests.GetTeamRequest)
				r.With(middleware.RequireRoles(models.RoleEventManager, models.RoleAdmin)).Patch("/status", h.TeamRequests.ReviewTeamRequest)
				r.Get("/accommodations", h.Accommodation.ListByTeamRequest)
				r.Post("/accommodations", h.Accommodation.CreateForTeamRequest)
				r.Post("/check-in", h.Accommodation.BulkCheckIn)
				r.Post("/check-out", h.Accommodation.BulkCheckOut)
			})
		})

		r.Route("/accommodations", func(r chi.Router) {
			r.With(middleware.RequireRoles(models.RoleHotelManager)).Get("/pending", h.Accommodation.ListPendingForHotelManager)
			r.With(middleware.RequireRoles(models.RoleEventManager, models.RoleAdmin)).Get("/rejected", h.Accommodation.ListRejected)
			r.With(middleware.RequireRoles(models.RoleHotelManager, models.RoleAdmin)).Get("/verify", h.Accommodation.VerifyQRCode)
			r.Route("/{accommodationID}", func(r chi.Router) {
				r.Get("/", h.Accommodation.GetAccommodation)
				r.Post("/assignment", h.Accommodation.AssignHotel)
				r.Post("/response", h.Accommodation.RespondToAssignment)
				r.Post("/cancel", h.Accommodation.CancelAccommodation)
				r.Post("/check-in", h.Accommodation.CheckIn)
				r.Post("/check-out", h.Accommodation.CheckOut)
			})
		})

		r.Route("/admin/users", func(r chi.Router) {
			r.Use(middleware.RequireRoles(models.RoleAdmin))
			r.Get("/", h.Admin.ListUsers)
			r.Patch("/{userID}/role", h.Admin.SetUserRole)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(middleware.RequireRoles(models.RoleEventManager, models.RoleAdmin))
			r.Get("/accommodations", h.Dashboard.GetAccommodationStats)
			r.Get("/teams-lacking-bookings", h.Accommodation.ListTeamsLackingBookings)
		})
	})
}
