package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pickMyBook/app/echo-server/router"
	"pickMyBook/business/policy"
	"pickMyBook/business/recommend"
	"pickMyBook/business/shelf"
	userService "pickMyBook/business/user"
	"pickMyBook/internal/middleware"
	psqlRepo "pickMyBook/internal/repository/postgres"
	redisRepo "pickMyBook/internal/repository/redis"
	"pickMyBook/internal/rest"
	"pickMyBook/pkg/config"
	"pickMyBook/pkg/database"
	redisdb "pickMyBook/pkg/database/redis"
	"pickMyBook/pkg/logger"
	"pickMyBook/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting PickMyBook", "version", cfg.App.Version)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", "error", err)
	}

	logger.Info("Redis connected successfully")

	metrics.Init()

	// Init validate
	validate := validator.New()

	// Init repo
	userRepo := psqlRepo.NewUserRepository(db)
	bookRepo := psqlRepo.NewBookRepository(db)
	feedbackRepo := psqlRepo.NewFeedbackRepository(db)
	prefRepo := psqlRepo.NewPreferenceRepository(db)
	tokenRepo := redisRepo.NewTokenRepository(redisClient)

	policySeed := policy.NewDefaultStore()
	policySeed.Epsilon = cfg.Recommend.Epsilon
	policySeed.LearningRate = cfg.Recommend.LearningRate
	policyRepo := psqlRepo.NewPolicyRepository(db, policySeed)

	// Init learning loop
	agent := policy.NewAgent(policy.AgentConfig{
		BonusCap:     cfg.Recommend.BonusCap,
		EpsilonDecay: cfg.Recommend.EpsilonDecay,
		EpsilonFloor: cfg.Recommend.EpsilonFloor,
	})
	reconciler := policy.NewReconciler(policyRepo, agent, policy.ReconcilerConfig{
		MaxRetries:  cfg.Recommend.MaxRetries,
		BackoffBase: cfg.Recommend.BackoffBase,
	})

	// Init service
	userSvc := userService.NewUserService(userRepo, tokenRepo, validate)
	shelfSvc := shelf.NewShelfService(bookRepo)
	recommendSvc := recommend.NewRecommendService(
		bookRepo,
		feedbackRepo,
		prefRepo,
		policyRepo,
		reconciler,
		agent,
		recommend.Config{
			DefaultLimit:    cfg.Recommend.DefaultLimit,
			SnapshotTimeout: cfg.Recommend.SnapshotTimeout,
		},
	)

	// Init handler
	userHandler := rest.NewUserHandler(userSvc)
	shelfHandler := rest.NewShelfHandler(shelfSvc)
	recommendHandler := rest.NewRecommendHandler(recommendSvc)
	policyAdminHandler := rest.NewPolicyAdminHandler(policyRepo, reconciler)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.Trace())
	e.Use(middleware.Metrics())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Auth middleware
	authRequired := middleware.AuthMiddlewareWithRedis(userSvc)
	adminOnly := middleware.AdminOnly()

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupUserRoutes(api, userHandler, authRequired)
	router.SetupShelfRoutes(api, shelfHandler, authRequired)
	router.SetupRecommendRoutes(api, recommendHandler, authRequired)
	router.SetupPolicyAdminRoutes(api, policyAdminHandler, authRequired, adminOnly)

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

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if err := redisdb.CloseRedisClient(redisClient); err != nil {
		logger.Error("Redis close error", "error", err)
	}

	logger.Info("Server stopped")
}
