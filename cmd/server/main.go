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
	"github.com/taxi-travel/service-travel/internal/application"
	"github.com/taxi-travel/service-travel/internal/config"
	"github.com/taxi-travel/service-travel/internal/domain/partner"
	"github.com/taxi-travel/service-travel/internal/domain/uow"
	travelEvents "github.com/taxi-travel/service-travel/internal/events"
	"github.com/taxi-travel/service-travel/internal/handler"
	"github.com/taxi-travel/service-travel/internal/integrations/partnerclient"
	"github.com/taxi-travel/service-travel/internal/integrations/partnerstub"
	"github.com/taxi-travel/service-travel/internal/platform/database"
	"github.com/taxi-travel/service-travel/internal/platform/health"
	"github.com/taxi-travel/service-travel/internal/platform/kafka"
	"github.com/taxi-travel/service-travel/internal/platform/logger"
	"github.com/taxi-travel/service-travel/internal/platform/middleware"
	"github.com/taxi-travel/service-travel/internal/repository"
	"github.com/taxi-travel/service-travel/internal/repository/memory"
	"github.com/taxi-travel/service-travel/internal/saga"
	"github.com/taxi-travel/service-travel/internal/worker"
	"go.uber.org/zap"
)

const serviceName = application.ServiceName

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("storage", cfg.StorageDriver),
	)

	readiness := make(map[string]health.Pinger)

	// Storage
	var store uow.Manager
	switch cfg.StorageDriver {
	case config.StorageMemory:
		log.Warn("using in-memory storage; data is lost on restart")
		store = memory.NewStore()
	default:
		dbConfig := database.PostgresConfig{
			Host:            cfg.DBConfig.Host,
			Port:            cfg.DBConfig.Port,
			User:            cfg.DBConfig.User,
			Password:        cfg.DBConfig.Password,
			DBName:          cfg.DBConfig.DBName,
			SSLMode:         cfg.DBConfig.SSLMode,
			MaxOpenConns:    cfg.DBConfig.MaxOpenConns,
			MaxIdleConns:    cfg.DBConfig.MaxIdleConns,
			ConnMaxLifetime: cfg.DBConfig.ConnMaxLifetime,
		}
		db, err := database.Connect(dbConfig, log)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}

		// Run database migrations
		if cfg.IsDevelopment() {
			if err := db.AutoMigrate(repository.Models()...); err != nil {
				log.Fatal("failed to run auto-migration", zap.Error(err))
			}
			log.Info("database migration completed (dev auto-migrate)")
		} else {
			if err := database.RunMigrations(dbConfig.DatabaseURL(), "migrations", log); err != nil {
				log.Fatal("failed to run migrations", zap.Error(err))
			}
		}

		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal("failed to get sql.DB", zap.Error(err))
		}
		defer func() { _ = sqlDB.Close() }()
		readiness["postgres"] = sqlDB
		store = repository.NewGormTxManager(db)
	}

	// Partner APIs
	var (
		flights partner.FlightService
		hotels  partner.HotelService
	)
	if cfg.Partners.FlightURL == "" || cfg.Partners.HotelURL == "" {
		log.Warn("partner URLs not set; using in-process flight and hotel stubs")
		flights = partnerstub.NewFlights()
		hotels = partnerstub.NewHotels()
	} else {
		flights = partnerclient.NewFlightClient(cfg.Partners.FlightURL, cfg.Partners.Timeout, log)
		hotels = partnerclient.NewHotelClient(cfg.Partners.HotelURL, cfg.Partners.Timeout, log)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Kafka producer. A nil *kafka.Producer must not reach the
	// services as a non-nil interface, so publisher stays unset when disabled.
	var publisher application.EventPublisher
	if cfg.KafkaConfig.Enabled() {
		kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = kafkaProducer.Close() }()
		publisher = kafkaProducer
	} else {
		log.Warn("no kafka brokers configured; event publishing disabled")
	}

	// Idempotency store
	var idempotency gin.HandlerFunc
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()
		readiness["redis"] = health.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		idempotency = middleware.IdempotencyMiddleware(rdb, cfg.Redis.IdempotencyTTL, log)
	}

	// Initialize application services
	repos := store.Repositories()
	runner := saga.NewRunner(cfg.Saga.StepTimeout, log)
	customerService := application.NewCustomerService(repos.Customers(), log)
	taxiService := application.NewTaxiService(repos.Taxis(), log)
	bookingService := application.NewBookingService(store, log)
	guestBookingService := application.NewGuestBookingService(store, publisher, log)
	orphanService := application.NewOrphanService(repos.Orphans(), log)
	travelAgentService := application.NewTravelAgentService(store, flights, hotels, runner, orphanService, publisher, log)
	reconciler := application.NewReconciler(store, flights, hotels, orphanService, cfg.Reconcile.Concurrency, log)

	// Compensation failures published by any replica land in the orphan ledger
	if cfg.KafkaConfig.Enabled() {
		groupID := cfg.KafkaConfig.GroupPrefix + "travel-service"
		compensationConsumer := travelEvents.NewCompensationEventConsumer(
			cfg.KafkaConfig.Brokers,
			groupID,
			orphanService,
			log,
		)
		defer func() { _ = compensationConsumer.Close() }()

		go func() {
			log.Info("starting compensation event consumer")
			if err := compensationConsumer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("compensation event consumer error", zap.Error(err))
			}
		}()
	}

	reconcileWorker := worker.NewReconcileWorker(reconciler, cfg.Reconcile.Interval, log)
	if err := reconcileWorker.Start(ctx); err != nil {
		log.Fatal("failed to start reconcile worker", zap.Error(err))
	}

	// Initialize HTTP handlers
	customerHandler := handler.NewCustomerHandler(customerService)
	taxiHandler := handler.NewTaxiHandler(taxiService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	guestBookingHandler := handler.NewGuestBookingHandler(guestBookingService)
	travelAgentHandler := handler.NewTravelAgentHandler(travelAgentService, orphanService, reconciler)

	// Setup Gin router
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(serviceName, readiness)
	healthHandler.RegisterRoutes(router)

	// Register routes
	customerHandler.RegisterRoutes(&router.RouterGroup, idempotency)
	taxiHandler.RegisterRoutes(&router.RouterGroup, idempotency)
	bookingHandler.RegisterRoutes(&router.RouterGroup, idempotency)
	guestBookingHandler.RegisterRoutes(&router.RouterGroup, idempotency)
	travelAgentHandler.RegisterRoutes(&router.RouterGroup, idempotency)

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

	log.Info("shutting down " + serviceName + "...")

	// Cancel the consumer and worker context
	cancel()
	reconcileWorker.Stop()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}
