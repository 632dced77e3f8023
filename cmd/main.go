package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/tournament-accommodation/config"
	"github.com/Dosada05/tournament-accommodation/db"
	_ "github.com/Dosada05/tournament-accommodation/docs"
	"github.com/Dosada05/tournament-accommodation/events"
	"github.com/Dosada05/tournament-accommodation/handlers"
	"github.com/Dosada05/tournament-accommodation/realtime"
	"github.com/Dosada05/tournament-accommodation/repositories"
	api "github.com/Dosada05/tournament-accommodation/routes"
	"github.com/Dosada05/tournament-accommodation/services"
	"github.com/Dosada05/tournament-accommodation/storage"
	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

// run возвращает ошибку вместо os.Exit, чтобы отложенные закрытия БД и NATS отработали.
func run(logger *slog.Logger) error {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	err = db.Migrate(migrateCtx, dbConn)
	cancelMigrate()
	if err != nil {
		return fmt.Errorf("apply database schema: %w", err)
	}
	logger.Info("database schema applied")

	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	// Ваучеры выгружаются в R2 только если хранилище настроено
	var vouchers *services.VoucherStore
	if cfg.R2 != nil {
		uploader, err := storage.NewCloudflareR2Uploader(appCtx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			BucketName:      cfg.R2.BucketName,
			PublicBaseURL:   cfg.R2.PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("initialize Cloudflare R2 uploader: %w", err)
		}
		vouchers = services.NewVoucherStore(uploader)
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2.BucketName))
	} else {
		logger.Info("R2 storage is not configured, confirmation vouchers are disabled")
	}

	// Инициализация WebSocket Hub
	wsHub := realtime.NewHub(logger)
	go wsHub.Run(appCtx)
	logger.Info("WebSocket Hub started")

	publishers := services.MultiPublisher{wsHub}
	if cfg.NATSURL != "" {
		natsPublisher, err := events.Connect(events.NATSConfig{
			URL:           cfg.NATSURL,
			SubjectPrefix: cfg.NATSSubjectPrefix,
		}, logger)
		if err != nil {
			return err
		}
		defer func() {
			drainCtx, cancelDrain := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancelDrain()
			if err := natsPublisher.Close(drainCtx); err != nil {
				logger.Error("failed to drain NATS connection", slog.Any("error", err))
			}
		}()
		publishers = append(publishers, natsPublisher)
		logger.Info("NATS publisher connected", slog.String("subject_prefix", cfg.NATSSubjectPrefix))
	}

	clock := clockwork.NewRealClock()

	// Инициализация репозиториев
	tx := repositories.NewPostgresTransactor(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	clusterRepo := repositories.NewPostgresClusterRepository(dbConn)
	hotelRepo := repositories.NewPostgresHotelRepository(dbConn)
	roomRepo := repositories.NewPostgresRoomCategoryRepository(dbConn)
	teamRequestRepo := repositories.NewPostgresTeamRequestRepository(dbConn)
	accommodationRepo := repositories.NewPostgresAccommodationRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo)
	adminUserService := services.NewAdminUserService(userRepo, logger)
	emailService := services.NewEmailService(cfg.SMTPFrom, logger)
	hotelService := services.NewHotelService(tx, clusterRepo, hotelRepo, roomRepo, logger)
	accommodationService := services.NewAccommodationService(services.AccommodationServiceDeps{
		Tx:             tx,
		Accommodations: accommodationRepo,
		Rooms:          roomRepo,
		Hotels:         hotelRepo,
		Clusters:       clusterRepo,
		TeamRequests:   teamRequestRepo,
		Codes:          services.NewRandomCodeIssuer(),
		Clock:          clock,
		Events:         publishers,
		Mailer:         emailService,
		Vouchers:       vouchers,
		Logger:         logger,
	})
	teamRequestService := services.NewTeamRequestService(tx, teamRequestRepo, accommodationService, clock, logger)
	dashboardService := services.NewDashboardService(accommodationRepo)
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Options{
		JWTSecret:      cfg.JWTSecretKey,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, api.Handlers{
		Auth:          handlers.NewAuthHandler(authService, cfg.JWTSecretKey, cfg.JWTTTL, clock),
		Admin:         handlers.NewAdminUserHandler(adminUserService),
		Hotels:        handlers.NewHotelHandler(hotelService),
		TeamRequests:  handlers.NewTeamRequestHandler(teamRequestService),
		Accommodation: handlers.NewAccommodationHandler(accommodationService),
		Dashboard:     handlers.NewDashboardHandler(dashboardService),
		WebSocket:     handlers.NewWebSocketHandler(wsHub, teamRequestService, hotelService, cfg.CORSAllowedOrigins, logger),
	})
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		logger.Info("server shutdown complete")
	}
	// WebSocket-соединения не закрываются Shutdown, их закрывает остановка хаба.
	stopApp()
	return nil
}
