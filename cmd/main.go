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

	"github.com/Dosada05/torneos-api/config"
	"github.com/Dosada05/torneos-api/handlers"
	"github.com/Dosada05/torneos-api/live"
	"github.com/Dosada05/torneos-api/repositories"
	api "github.com/Dosada05/torneos-api/routes"
	"github.com/Dosada05/torneos-api/services"
	"github.com/Dosada05/torneos-api/storage"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("data_dir", cfg.DataDir),
		slog.String("storage_driver", cfg.StorageDriver))

	if cfg.JWTSecretDefault {
		logger.Warn("JWT_SECRET_KEY is not set, using the insecure default; do NOT run like this in production")
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Error("failed to create data directory", slog.Any("error", err))
		os.Exit(1)
	}

	// Инициализация загрузчика обложек
	var uploader storage.FileUploader
	switch cfg.StorageDriver {
	case config.StorageDriverR2:
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
	default:
		uploader, err = storage.NewLocalDiskUploader(cfg.DataDir, "/api/imagenes")
	}
	if err != nil {
		logger.Error("failed to initialize file uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("file uploader initialized", slog.String("driver", cfg.StorageDriver))

	// Инициализация WebSocket Hub
	wsHub := live.NewHub(logger)
	go wsHub.Run()

	// Инициализация хранилища и репозиториев
	store := repositories.NewFileStore(cfg.DataDir)
	tournamentRepo := repositories.NewFileTournamentRepository(store)
	participantRepo := repositories.NewFileParticipantRepository(store)
	matchRepo := repositories.NewFileMatchRepository(store)

	// Инициализация сервисов
	creds := services.NewCredentialService(cfg.JWTSecretKey)
	standings := services.NewStandingsService(participantRepo, matchRepo, logger)
	tournamentService := services.NewTournamentService(
		store,
		tournamentRepo,
		participantRepo,
		matchRepo,
		creds,
		wsHub,
		logger,
	)
	participantService := services.NewParticipantService(
		store,
		tournamentRepo,
		participantRepo,
		standings,
		creds,
		wsHub,
		logger,
	)
	matchService := services.NewMatchService(
		store,
		participantRepo,
		matchRepo,
		standings,
		wsHub,
		logger,
	)
	logger.Info("services initialized")

	// Инициализация обработчиков HTTP
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	participantHandler := handlers.NewParticipantHandler(participantService)
	matchHandler := handlers.NewMatchHandler(matchService)
	authHandler := handlers.NewAuthHandler(tournamentService, participantService)
	uploadHandler := handlers.NewUploadHandler(tournamentService, creds, uploader, cfg.DataDir)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, tournamentService, logger)

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		creds,
		tournamentHandler,
		participantHandler,
		matchHandler,
		authHandler,
		uploadHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

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
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
