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

	"github.com/Dosada05/team-training-system/config"
	"github.com/Dosada05/team-training-system/db"
	"github.com/Dosada05/team-training-system/handlers"
	"github.com/Dosada05/team-training-system/live"
	"github.com/Dosada05/team-training-system/repositories"
	api "github.com/Dosada05/team-training-system/routes"
	"github.com/Dosada05/team-training-system/services"
	"github.com/Dosada05/team-training-system/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Инициализация загрузчика файлов (Cloudflare R2)
	cloudflareUploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	// Инициализация WebSocket Hub
	wsHub := live.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	sportRepo := repositories.NewPostgresSportRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	memberRepo := repositories.NewPostgresMemberRepository(dbConn)
	inviteRepo := repositories.NewPostgresInviteRepository(dbConn)
	exerciseRepo := repositories.NewPostgresExerciseRepository(dbConn)
	workoutRepo := repositories.NewPostgresWorkoutRepository(dbConn)
	sessionRepo := repositories.NewPostgresSessionRepository(dbConn)
	sessionExerciseRepo := repositories.NewPostgresSessionExerciseRepository(dbConn)
	attendanceRepo := repositories.NewPostgresAttendanceRepository(dbConn)
	txManager := repositories.NewTxManager(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo, cloudflareUploader)
	sportService := services.NewSportService(sportRepo)
	teamService := services.NewTeamService(
		txManager,
		teamRepo,
		memberRepo,
		sportRepo,
		userRepo,
		cloudflareUploader,
	)
	rosterService := services.NewRosterService(
		txManager,
		teamRepo,
		memberRepo,
		userRepo,
		cloudflareUploader,
	)
	inviteService := services.NewInviteService(inviteRepo, teamRepo, memberRepo, userRepo)
	workoutService := services.NewWorkoutService(workoutRepo, exerciseRepo, userRepo)
	sessionService := services.NewSessionService(
		txManager,
		sessionRepo,
		sessionExerciseRepo,
		attendanceRepo,
		teamRepo,
		memberRepo,
		workoutRepo,
		userRepo,
		wsHub,
		logger,
	)
	attendanceService := services.NewAttendanceService(
		attendanceRepo,
		sessionRepo,
		teamRepo,
		memberRepo,
		userRepo,
		wsHub,
		logger,
	)
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	userHandler := handlers.NewUserHandler(userService)
	sportHandler := handlers.NewSportHandler(sportService)
	teamHandler := handlers.NewTeamHandler(teamService)
	memberHandler := handlers.NewMemberHandler(rosterService)
	inviteHandler := handlers.NewInviteHandler(inviteService)
	workoutHandler := handlers.NewWorkoutHandler(workoutService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	attendanceHandler := handlers.NewAttendanceHandler(attendanceService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, sessionService, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		cfg.CORSAllowedOrigins,
		authHandler,
		userHandler,
		sportHandler,
		teamHandler,
		memberHandler,
		inviteHandler,
		workoutHandler,
		sessionHandler,
		attendanceHandler,
		webSocketHandler,
	)
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
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
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
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
