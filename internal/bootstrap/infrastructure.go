// Package bootstrap wires configuration, infrastructure and application
// services for the server and the admin CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/lfs/storefront/internal/application/caching"
	"github.com/lfs/storefront/internal/infrastructure/cache"
	"github.com/lfs/storefront/internal/infrastructure/config"
	"github.com/lfs/storefront/internal/infrastructure/event"
	"github.com/lfs/storefront/internal/infrastructure/logger"
	"github.com/lfs/storefront/internal/infrastructure/persistence"
	"github.com/lfs/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Version is set at build time
var Version = "dev"

// Infrastructure holds the shared resources of a process
type Infrastructure struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *persistence.Database
	Cache   *cache.Cache
	Keys    caching.Keys
	Events  *event.InMemoryEventBus
	Metrics *telemetry.Metrics
	Tracer  *telemetry.TracerProvider
}

// NewInfrastructure opens the database and the cache and sets up tracing
// and metrics. Close releases everything it opened.
func NewInfrastructure(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Infrastructure, error) {
	infra := &Infrastructure{
		Config:  cfg,
		Logger:  log,
		Keys:    caching.Keys{Prefix: cfg.Cache.KeyPrefix},
		Metrics: telemetry.NewMetrics(),
	}

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	infra.Tracer = tp

	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		_ = infra.Close(ctx)
		return nil, err
	}
	infra.DB = db
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        dbSystem(cfg.Database.Driver),
	}, log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		_ = infra.Close(ctx)
		return nil, fmt.Errorf("failed to register database tracing: %w", err)
	}

	if sqlDB, err := db.DB.DB(); err == nil {
		if err := infra.Metrics.RegisterDB(sqlDB, cfg.Database.DBName); err != nil {
			log.Warn("Failed to export connection pool metrics", zap.Error(err))
		}
	}

	c, err := cache.New(ctx, cfg.Cache, cfg.Redis,
		cache.WithRecorder(infra.Metrics),
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	)
	if err != nil {
		_ = infra.Close(ctx)
		return nil, err
	}
	infra.Cache = c

	infra.Events = event.NewInMemoryEventBus(log, event.WithObserver(infra.Metrics))
	return infra, nil
}

// Migrate creates or updates the schema
func (i *Infrastructure) Migrate(ctx context.Context) error {
	return persistence.AutoMigrate(ctx, i.DB.DB)
}

// Close flushes traces and closes the cache and the database
func (i *Infrastructure) Close(ctx context.Context) error {
	var errs []error
	if i.Events != nil {
		errs = append(errs, i.Events.Stop(ctx))
	}
	if i.Cache != nil {
		errs = append(errs, i.Cache.Close())
	}
	if i.DB != nil {
		errs = append(errs, i.DB.Close())
	}
	if i.Tracer != nil {
		errs = append(errs, i.Tracer.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

func dbSystem(driver string) string {
	if driver == "sqlite" {
		return "sqlite"
	}
	return "postgresql"
}
