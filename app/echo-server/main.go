package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"otodoki/app/echo-server/router"
	"otodoki/business/history"
	"otodoki/business/personalization"
	"otodoki/business/preference"
	"otodoki/business/strategy"
	"otodoki/business/suggestions"
	userService "otodoki/business/user"
	"otodoki/internal/middleware"
	"otodoki/internal/repository/itunes"
	"otodoki/internal/repository/notification"
	psqlRepo "otodoki/internal/repository/postgres"
	redisRepo "otodoki/internal/repository/redis"
	"otodoki/internal/rest"
	"otodoki/pkg/config"
	"otodoki/pkg/database"
	redisdb "otodoki/pkg/database/redis"
	"otodoki/pkg/logger"
	"otodoki/pkg/metrics"
	"otodoki/pkg/utils"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting otodoki", "version", cfg.App.Version)

	utils.InitJWT(cfg.JWT.SecretKey, cfg.JWT.TokenTTL)

	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to redis", "error", err)
	}

	logger.Info("Redis connected successfully")

	// Init notification from mailjet
	mailjetEmail := notification.NewMailjetRepository(
		notification.MailjetConfig{
			MailjetBaseURL:           cfg.Mailjet.MailjetBaseUrl,
			MailjetBasicAuthUsername: cfg.Mailjet.MailjetBasicAuthUsername,
			MailjetBasicAuthPassword: cfg.Mailjet.MailjetBasicAuthPassword,
			MailjetSenderEmail:       cfg.Mailjet.MailjetSenderEmail,
			MailjetSenderName:        cfg.Mailjet.MailjetSenderName,
		},
	)

	catalogClient := itunes.NewSearchClient(itunes.SearchConfig{
		BaseURL:  cfg.Catalog.BaseURL,
		Country:  cfg.Catalog.Country,
		PageSize: cfg.Catalog.PageSize,
		Timeout:  cfg.Catalog.Timeout,
	})

	// Init validate
	validate := validator.New()

	// Init repo
	userRepo := psqlRepo.NewUserRepository(db)
	trackRepo := psqlRepo.NewTrackRepository(db)
	historyRepo := psqlRepo.NewHistoryRepository(db)
	tokenRepo := redisRepo.NewTokenRepository(redisClient)

	// Init service
	userSvc := userService.NewUserService(userRepo, validate, mailjetEmail, tokenRepo, cfg.App.AppEmailVerificationKey, cfg.App.AppDeploymentUrl)
	analyzer := preference.NewAnalyzer(historyRepo)
	ranker := personalization.NewService()
	historySvc := history.NewHistoryService(historyRepo, trackRepo)

	registry := strategy.NewRegistry()
	queue := suggestions.NewQueue(cfg.Queue.MaxCapacity, cfg.Queue.LowWatermark, cfg.Queue.HighWatermark)
	worker := suggestions.NewWorker(queue, catalogClient, trackRepo, historyRepo, registry, analyzer, suggestions.WorkerConfig{
		Interval:         cfg.Worker.Interval,
		BackoffBase:      cfg.Worker.BackoffBase,
		BackoffCap:       cfg.Worker.BackoffCap,
		HistoryRetention: time.Duration(cfg.Worker.HistoryRetentionDays) * 24 * time.Hour,
	})
	suggestionsSvc := suggestions.NewService(queue, worker, analyzer, ranker, suggestions.ServiceConfig{
		DefaultLimit: cfg.Suggestions.DefaultLimit,
		MaxLimit:     cfg.Suggestions.MaxLimit,
	})

	// Init handler
	userHandler := rest.NewUserHandler(userSvc)
	suggestionsHandler := rest.NewSuggestionsHandler(suggestionsSvc, worker)
	historyHandler := rest.NewHistoryHandler(historySvc)
	trackHandler := rest.NewTrackHandler(historySvc)

	// Start the replenishment worker before serving traffic so the first
	// request already finds candidates in the queue.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	worker.Start(workerCtx)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(middleware.RequestID())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	if cfg.Suggestions.RateLimitPerSec > 0 {
		e.Use(echomiddleware.RateLimiter(echomiddleware.NewRateLimiterMemoryStore(rate.Limit(cfg.Suggestions.RateLimitPerSec))))
	}

	// Auth middleware
	authRequired := middleware.AuthMiddlewareWithRedis(userSvc)
	optionalAuth := middleware.OptionalAuth(userSvc)
	adminOnly := middleware.AdminOnly()

	// Ops endpoints
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status": "ok",
			"queue":  suggestionsSvc.QueueStats(),
		})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupUserRoutes(api, userHandler, authRequired, adminOnly)
	router.SetupSuggestionsRoutes(api, suggestionsHandler, optionalAuth, authRequired, adminOnly)
	router.SetupTrackRoutes(api, trackHandler)
	router.SetupHistoryRoutes(api, historyHandler, authRequired)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server first so no request races a stopping worker
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	worker.Stop()

	if err := redisdb.CloseRedisClient(redisClient); err != nil {
		logger.Error("Redis close error", "error", err)
	}

	logger.Info("Server stopped")
}
