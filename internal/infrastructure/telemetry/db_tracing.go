package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include query variables in spans (dev only)
	SlowQueryThresh time.Duration // default 200ms
	DBSystem        string

	// TracerProvider overrides the global provider, mainly for tests
	TracerProvider trace.TracerProvider
}

// DefaultDBTracingConfig returns default configuration for database tracing.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}
}

// DBTracingPlugin wraps the otelgorm plugin with slow query detection.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a new database tracing plugin with the given configuration.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = DefaultDBTracingConfig().SlowQueryThresh
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// RegisterOtelGorm registers otelgorm and the timing callbacks on db.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(p.config.DBSystem),
	}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if p.config.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(p.config.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	if err := p.registerCallbacks(db); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)
	return nil
}

// registerCallbacks runs the timer around every operation. The after hooks
// run before otelgorm ends its span.
func (p *DBTracingPlugin) registerCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		callback interface {
			Register(string, func(*gorm.DB)) error
		}
		hook func(*gorm.DB)
		name string
	}{
		{cb.Create().Before("gorm:create"), startTimer, "before:create"},
		{cb.Query().Before("gorm:query"), startTimer, "before:query"},
		{cb.Update().Before("gorm:update"), startTimer, "before:update"},
		{cb.Delete().Before("gorm:delete"), startTimer, "before:delete"},
		{cb.Row().Before("gorm:row"), startTimer, "before:row"},
		{cb.Raw().Before("gorm:raw"), startTimer, "before:raw"},
		{cb.Create().After("gorm:create").Before("otel:after:create"), p.after, "after:create"},
		{cb.Query().After("gorm:query").Before("otel:after:query"), p.after, "after:query"},
		{cb.Update().After("gorm:update").Before("otel:after:update"), p.after, "after:update"},
		{cb.Delete().After("gorm:delete").Before("otel:after:delete"), p.after, "after:delete"},
		{cb.Row().After("gorm:row").Before("otel:after:row"), p.after, "after:row"},
		{cb.Raw().After("gorm:raw").Before("otel:after:raw"), p.after, "after:raw"},
	}
	for _, h := range hooks {
		if err := h.callback.Register("storefront_timing:"+h.name, h.hook); err != nil {
			return err
		}
	}
	return nil
}

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

func startTimer(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

// after annotates the current span with row counts, errors and slow queries.
func (p *DBTracingPlugin) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	// ErrRecordNotFound is a regular outcome for lookups
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	start, ok := ctx.Value(queryStartTimeKey).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > p.config.SlowQueryThresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
		))
		p.logger.Warn("Slow query",
			zap.String("table", db.Statement.Table),
			zap.Duration("elapsed", elapsed),
		)
	}
}
