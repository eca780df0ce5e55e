package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/intu-mobility/service-ride/internal/application"
	"github.com/intu-mobility/service-ride/internal/config"
	"github.com/intu-mobility/service-ride/internal/domain/geo"
	"github.com/intu-mobility/service-ride/internal/domain/pricing"
	rideEvents "github.com/intu-mobility/service-ride/internal/events/dispatch"
	"github.com/intu-mobility/service-ride/internal/geocoding"
	"github.com/intu-mobility/service-ride/internal/handler"
	"github.com/intu-mobility/service-ride/internal/platform/auth"
	"github.com/intu-mobility/service-ride/internal/platform/database"
	"github.com/intu-mobility/service-ride/internal/platform/health"
	"github.com/intu-mobility/service-ride/internal/platform/kafka"
	"github.com/intu-mobility/service-ride/internal/platform/logger"
	"github.com/intu-mobility/service-ride/internal/platform/middleware"
	"github.com/intu-mobility/service-ride/internal/repository"
	"github.com/intu-mobility/service-ride/internal/routing"
	"github.com/intu-mobility/service-ride/internal/viewport"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-ride")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-ride",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DB, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.TripModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTSecret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Redis-backed geocoding cache
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() { _ = redisClient.Close() }()
	geocodeCache := geocoding.NewCache(redisClient, cfg.Geocoding.CacheTTL, log)

	// Initialize external service clients
	geocoder := geocoding.NewClient(geocoding.Config{
		BaseURL:      cfg.Geocoding.BaseURL,
		CountryCodes: cfg.Geocoding.CountryCodes,
		ResultLimit:  cfg.Geocoding.ResultLimit,
		ViewboxDelta: cfg.Geocoding.ViewboxDelta,
	}, geocodeCache, log)

	routePlanner := routing.NewClient(routing.Config{
		BaseURL: cfg.Routing.BaseURL,
	}, log)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repository and application services
	tripRepo := repository.NewGormTripRepository(db)
	tripService := application.NewTripService(tripRepo, kafkaProducer, log)

	vehicleCatalog := pricing.NewCatalog()
	pricingEngine := pricing.NewEngine(vehicleCatalog)

	sessionManager := application.NewSessionManager(
		application.SessionConfig{
			Map: viewport.Config{
				DefaultCenter: geo.Coordinate{
					Lat: cfg.Map.DefaultCenterLat,
					Lng: cfg.Map.DefaultCenterLng,
				},
				DefaultZoom:  cfg.Map.DefaultZoom,
				FitAnimation: cfg.Map.FitAnimation,
				EdgePadding:  cfg.Map.EdgePadding,
				Locate: viewport.LocateOptions{
					HighAccuracy: cfg.Map.LocateHighAccuracy,
					Timeout:      cfg.Map.LocateTimeout,
					MaxAge:       cfg.Map.LocateMaxAge,
				},
			},
			SearchDebounce: cfg.Geocoding.Debounce,
			ConfirmLatency: cfg.Flow.ConfirmLatency,
			PhraseInterval: cfg.Flow.PhraseInterval,
		},
		geocoder,
		routePlanner,
		pricingEngine,
		tripService,
		log,
	)

	// Initialize and start the dispatch event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.Kafka.GroupPrefix + "ride-service"
	dispatchConsumer := rideEvents.NewDispatchEventConsumer(
		cfg.Kafka.Brokers,
		groupID,
		tripService,
		log,
	)
	defer func() { _ = dispatchConsumer.Close() }()

	go func() {
		log.Info("starting dispatch event consumer")
		if err := dispatchConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("dispatch event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	flowHandler := handler.NewFlowHandler(sessionManager)
	tripHandler := handler.NewTripHandler(tripService)
	catalogHandler := handler.NewCatalogHandler(vehicleCatalog)
	adminHandler := handler.NewAdminTripHandler(tripService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-ride")
	healthHandler.RegisterRoutes(router)

	// Register routes
	flowHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	tripHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	catalogHandler.RegisterRoutes(&router.RouterGroup)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-ride...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-ride stopped")
}
