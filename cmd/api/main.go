package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garmentiq/revenue-forecast-api/docs"
	"github.com/garmentiq/revenue-forecast-api/internal/auth"
	"github.com/garmentiq/revenue-forecast-api/internal/cache"
	"github.com/garmentiq/revenue-forecast-api/internal/config"
	"github.com/garmentiq/revenue-forecast-api/internal/database"
	"github.com/garmentiq/revenue-forecast-api/internal/datawarehouse"
	"github.com/garmentiq/revenue-forecast-api/internal/forecast"
	"github.com/garmentiq/revenue-forecast-api/internal/http/handler"
	"github.com/garmentiq/revenue-forecast-api/internal/http/middleware"
	"github.com/garmentiq/revenue-forecast-api/internal/http/router"
	"github.com/garmentiq/revenue-forecast-api/internal/jobs"
	"github.com/garmentiq/revenue-forecast-api/internal/logger"
	"github.com/garmentiq/revenue-forecast-api/internal/repository"
	"github.com/garmentiq/revenue-forecast-api/internal/service"
	"github.com/garmentiq/revenue-forecast-api/internal/storage"
	"go.uber.org/zap"
)

// @title Garment Revenue Forecast API
// @version 1.0
// @description Revenue forecasting and market intelligence for Sri Lankan garment manufacturers

// @contact.name API Support

// @host localhost:5009
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

const snapshotJobTimeout = 2 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	if host := os.Getenv("SWAGGER_HOST"); host != "" {
		docs.SwaggerInfo.Host = host
	}

	// In staging/production secrets may come from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	reportStorage, err := storage.NewStorage(ctx, &cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	economicCache := cache.New(ctx, &cfg.Cache, log)
	defer func() { _ = economicCache.Close() }()

	// The warehouse is optional and read-only; the app falls back to simulated indicators without it
	dwClient, err := datawarehouse.NewClient(&cfg.DataWarehouse, log)
	if err != nil {
		log.Warn("Data warehouse connection failed, continuing without it", zap.Error(err))
		dwClient = nil
	}
	var indicatorSource service.IndicatorSource
	var warehouseChecker handler.WarehouseChecker
	if dwClient != nil {
		indicatorSource = dwClient
		warehouseChecker = dwClient
	}

	// Repositories
	companyRepo := repository.NewCompanyRepository(db)
	userRepo := repository.NewUserRepository(db)
	dataRepo := repository.NewRevenueDataRepository(db)
	forecastRepo := repository.NewForecastRepository(db)
	snapshotRepo := repository.NewEconomicSnapshotRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// Services
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.Issuer)
	projector := forecast.NewProjector(rand.New(rand.NewSource(time.Now().UnixNano())))

	authService := service.NewAuthService(companyRepo, userRepo, tokens, log)
	userService := service.NewUserService(userRepo, companyRepo, log)
	dataService := service.NewDataService(dataRepo, log)
	forecastService := service.NewForecastService(forecastRepo, dataRepo, snapshotRepo, projector, log)
	economicService := service.NewEconomicService(snapshotRepo, economicCache, cfg.Cache.TTL(), indicatorSource, log)
	reportService := service.NewReportService(reportRepo, forecastRepo, reportStorage, log)

	// Middleware
	authMiddleware := auth.NewMiddleware(tokens, userRepo, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Handlers
	responder := handler.NewResponder(log, cfg.App.IsDevelopment())
	var cachePinger handler.Pinger
	if cfg.Cache.Enabled {
		cachePinger = economicCache
	}

	rt := router.NewRouter(
		cfg,
		log,
		authMiddleware,
		rateLimiter,
		handler.NewHealthHandler(db, cachePinger, warehouseChecker, log),
		handler.NewAuthHandler(authService, responder, log),
		handler.NewUserHandler(userService, responder, log),
		handler.NewDataHandler(dataService, responder, log),
		handler.NewForecastHandler(forecastService, responder, log),
		handler.NewEconomicHandler(economicService, responder, log),
		handler.NewReportHandler(reportService, responder, log),
	)

	var scheduler *jobs.Scheduler
	if cfg.Jobs.EconomicSnapshotEnabled {
		scheduler = jobs.NewScheduler(log)
		if err := jobs.RegisterEconomicSnapshotJob(
			scheduler,
			economicService,
			log,
			cfg.Jobs.EconomicSnapshotCron,
			snapshotJobTimeout,
			false,
		); err != nil {
			log.Error("Failed to register economic snapshot job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with economic snapshot job",
				zap.String("cron_expr", cfg.Jobs.EconomicSnapshotCron),
			)
		}
	} else {
		log.Info("Economic snapshot job disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if dwClient != nil {
			if err := dwClient.Close(); err != nil {
				log.Warn("Error closing data warehouse connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
