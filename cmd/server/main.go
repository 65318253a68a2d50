package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sequenceapp "github.com/erp/purchasing/internal/application/sequence"
	tradeapp "github.com/erp/purchasing/internal/application/trade"
	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/erp/purchasing/internal/infrastructure/cache"
	"github.com/erp/purchasing/internal/infrastructure/config"
	"github.com/erp/purchasing/internal/infrastructure/logger"
	"github.com/erp/purchasing/internal/infrastructure/migration"
	"github.com/erp/purchasing/internal/infrastructure/persistence"
	"github.com/erp/purchasing/internal/infrastructure/telemetry"
	"github.com/erp/purchasing/internal/interfaces/http/handler"
	"github.com/erp/purchasing/internal/interfaces/http/middleware"
	"github.com/erp/purchasing/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.New(logger.FromAppConfig(cfg))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	providers, err := telemetry.Setup(ctx, telemetry.FromAppConfig(cfg.Telemetry), baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log := providers.Logs.Bridge(baseLog, zapcore.InfoLevel)
	defer func() {
		logger.Sync(log)
	}()

	log.Info("Starting purchasing service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithGormLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Database.Driver == "sqlite" {
		// sqlite has no versioned migrations; the schema follows the models
		if err := migration.AutoMigrate(db.DB); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}

	dbSystem := "postgresql"
	if cfg.Database.Driver == "sqlite" {
		dbSystem = "sqlite"
	}
	tracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        dbSystem,
	}, log)
	if err := tracing.RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get sql.DB", zap.Error(err))
	}
	meter := providers.Meter.Meter("purchasing")
	dbMetrics, err := telemetry.NewDBMetrics(meter, sqlDB, cfg.Telemetry.DBSlowQueryThresh)
	if err != nil {
		log.Fatal("Failed to create database metrics", zap.Error(err))
	}
	if err := db.DB.Use(dbMetrics); err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}
	defer func() { _ = dbMetrics.Stop() }()

	purchasingMetrics, err := telemetry.NewPurchasingMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create purchasing metrics", zap.Error(err))
	}

	// Repositories
	sequenceRepo := persistence.NewGormSequenceRepository(db.DB)
	txnRepo := persistence.NewGormPurchaseTransactionRepository(db.DB)
	itemRepo := persistence.NewGormPurchaseTransactionItemRepository(db.DB)
	aggregateStore := persistence.NewGormPurchaseAggregateStore(db.DB)
	vendorRepo := persistence.NewGormVendorRepository(db.DB)
	warehouseRepo := persistence.NewGormWarehouseRepository(db.DB)
	inventoryRepo := persistence.NewGormInventoryItemRepository(db.DB)

	// Idempotency falls back to process-local components when Redis is unavailable
	idem, err := cache.NewIdempotencyFactory(cfg.Redis, cache.WithLogger(log)).Create(ctx)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() { _ = idem.Close() }()

	// Application services
	sequenceService := sequenceapp.NewSequenceService(sequenceRepo, log)
	sequenceService.SetMetrics(purchasingMetrics)
	sequenceService.SetMaxBulk(cfg.Sequence.MaxBulk)

	itemService := tradeapp.NewPurchaseTransactionItemService(itemRepo, txnRepo, aggregateStore, inventoryRepo, warehouseRepo, log)
	itemService.SetMetrics(purchasingMetrics)

	transactionService := tradeapp.NewPurchaseTransactionService(
		txnRepo, itemRepo, aggregateStore, vendorRepo, sequenceService, itemService, log)
	transactionService.SetMetrics(purchasingMetrics)
	transactionService.SetPrefix(cfg.Sequence.TransactionPrefix)
	transactionService.SetIdempotency(idem.Store, idem.Locker, shared.IdempotencyConfig{
		Enabled: cfg.Idempotency.Enabled,
		TTL:     cfg.Idempotency.TTL,
		LockTTL: cfg.Idempotency.LockTTL,
	})

	// HTTP
	engine := router.NewEngine(router.EngineConfig{
		HTTP:   cfg.HTTP,
		Logger: log,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		Metrics: middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: providers.Meter,
			Enabled:       cfg.Telemetry.Enabled,
		}),
	})

	systemHandler := handler.NewSystemHandler(sqlDB)
	engine.GET("/health", systemHandler.Health)

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(handler.NewSequenceHandler(sequenceService)).
		Register(handler.NewPurchaseTransactionHandler(transactionService)).
		Register(handler.NewPurchaseTransactionItemHandler(itemService)).
		Register(systemHandler).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down telemetry", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
