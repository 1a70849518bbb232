package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	appaudit "github.com/warehouse/backend/internal/application/audit"
	"github.com/warehouse/backend/internal/application/dashboard"
	appstock "github.com/warehouse/backend/internal/application/stock"
	"github.com/warehouse/backend/internal/infrastructure/cache"
	"github.com/warehouse/backend/internal/infrastructure/config"
	"github.com/warehouse/backend/internal/infrastructure/logger"
	"github.com/warehouse/backend/internal/infrastructure/persistence"
	"github.com/warehouse/backend/internal/infrastructure/scheduler"
	"github.com/warehouse/backend/internal/infrastructure/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log, err := logger.New(logger.FromLogConfig(cfg.Log))
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("starting warehouse backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env))

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("closing database", zap.Error(err))
		}
	}()

	if stats, err := db.Stats(); err == nil {
		log.Info("database pool ready",
			zap.Int("max_open", stats.MaxOpenConnections),
			zap.Int("open", stats.OpenConnections))
	}

	productRepo := persistence.NewGormProductRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerEntryRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	recorder := appaudit.NewRecorder(auditRepo, productRepo, log.Named("audit"))
	reconciler := appaudit.NewReconciler(ledgerRepo, auditRepo, productRepo, log.Named("reconciler"))

	movements := appstock.NewMovementService(
		scope,
		productRepo,
		ledgerRepo,
		recorder,
		log.Named("movements"),
		appstock.MovementConfig{
			MaxRetries:       cfg.Movement.MaxRetries,
			RetryBackoff:     cfg.Movement.RetryBackoff,
			ApplyTimeout:     cfg.Movement.ApplyTimeout,
			BatchConcurrency: cfg.Movement.BatchConcurrency,
			IdempotencyTTL:   cfg.Movement.IdempotencyTTL,
		},
	)

	if cfg.Redis.Enabled {
		store, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() {
			_ = store.Close()
		}()
		movements.WithIdempotencyStore(store)
	} else {
		store := cache.NewInMemoryIdempotencyStore()
		defer func() {
			_ = store.Close()
		}()
		movements.WithIdempotencyStore(store)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log.Named("telemetry"))
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("shutting down meter provider", zap.Error(err))
		}
	}()

	if meterProvider.IsEnabled() {
		metrics, err := telemetry.NewMovementMetrics(meterProvider.Meter("warehouse.movements"), log.Named("metrics"))
		if err != nil {
			return fmt.Errorf("initialize movement metrics: %w", err)
		}
		metrics.StartCollecting(productRepo, 5*time.Minute)
		defer metrics.Stop()
		movements.WithMetrics(metrics)
	}

	// Dashboard reads go through a repeatable-read scope so each response is
	// one consistent snapshot.
	dashboards := dashboard.NewService(persistence.NewGormReadScope(db.DB), recorder, log.Named("dashboard"))
	if summary, err := dashboards.GetSummary(ctx); err != nil {
		log.Warn("cannot read startup summary", zap.Error(err))
	} else {
		log.Info("stock snapshot",
			zap.Int64("active_products", summary.ActiveProducts),
			zap.Int64("low_stock_alerts", summary.LowStockAlerts))
	}

	if cfg.Audit.SweepEnabled {
		// Backfills audit records for applied movements whose audit write
		// was lost to a partial failure.
		sweep := scheduler.NewTask("audit-sweep", func(ctx context.Context) error {
			_, err := reconciler.Sweep(ctx)
			return err
		})
		sweeper := scheduler.NewPeriodic(scheduler.Config{
			Interval:   cfg.Audit.SweepInterval,
			RunTimeout: time.Minute,
		}, sweep, log.Named("scheduler"))
		if err := sweeper.Start(ctx); err != nil {
			return fmt.Errorf("start audit sweeper: %w", err)
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = sweeper.Stop(stopCtx)
		}()
	}

	log.Info("warehouse backend ready")
	<-ctx.Done()
	log.Info("shutdown signal received, draining")
	return nil
}
