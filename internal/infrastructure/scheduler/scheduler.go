// Package scheduler runs the periodic marketing jobs of the shop.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/lfs/storefront/internal/domain/marketing"
	"github.com/lfs/storefront/internal/infrastructure/config"
	"github.com/lfs/storefront/internal/infrastructure/telemetry"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SalesService recalculates product sales and serves topseller lists.
// It is implemented by the marketing application service.
type SalesService interface {
	RecalculateSales(ctx context.Context) ([]marketing.ProductSales, error)
	Topseller(ctx context.Context, limit int) ([]catalog.Product, error)
}

// RunResult describes one run of the sales job
type RunResult struct {
	StartedAt  time.Time
	Duration   time.Duration
	Products   int
	Topsellers int
	Err        error
}

// SalesScheduler recalculates product sales on a cron schedule and warms
// the topseller cache afterwards.
type SalesScheduler struct {
	config  config.SchedulerConfig
	sales   SalesService
	logger  *zap.Logger
	cron    *cron.Cron
	entryID cron.EntryID

	mu        sync.Mutex
	isRunning bool
	inFlight  atomic.Bool
	lastRun   *RunResult
}

// NewSalesScheduler validates the schedule and creates the scheduler
func NewSalesScheduler(cfg config.SchedulerConfig, sales SalesService, logger *zap.Logger) (*SalesScheduler, error) {
	if sales == nil {
		return nil, fmt.Errorf("%w: sales service is required", ErrInvalidConfig)
	}
	if cfg.JobTimeout <= 0 {
		return nil, fmt.Errorf("%w: job timeout must be positive", ErrInvalidConfig)
	}
	if _, err := cron.ParseStandard(cfg.SalesCronSchedule); err != nil {
		return nil, fmt.Errorf("%w: schedule %q: %v", ErrInvalidConfig, cfg.SalesCronSchedule, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesScheduler{
		config: cfg,
		sales:  sales,
		logger: logger,
		cron:   cron.New(cron.WithLogger(cronLogger{logger.Sugar()})),
	}, nil
}

// Start registers the job and starts the cron runner
func (s *SalesScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return ErrSchedulerRunning
	}

	id, err := s.cron.AddFunc(s.config.SalesCronSchedule, func() {
		_, _ = s.RunNow(context.Background())
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	s.entryID = id
	s.cron.Start()
	s.isRunning = true

	s.logger.Info("Sales scheduler started",
		zap.String("schedule", s.config.SalesCronSchedule),
		zap.Time("next_run", s.cron.Entry(id).Next),
	)
	return nil
}

// Stop stops the cron runner and waits for a running job until ctx is done
func (s *SalesScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.cron.Remove(s.entryID)
	s.mu.Unlock()

	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("Sales scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether the cron runner is active
func (s *SalesScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// LastRun returns the result of the most recent run, nil before the first one
func (s *SalesScheduler) LastRun() *RunResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastRun == nil {
		return nil
	}
	r := *s.lastRun
	return &r
}

// RunNow runs the job immediately. Overlapping runs are rejected with
// ErrJobInProgress.
func (s *SalesScheduler) RunNow(ctx context.Context) (RunResult, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Warn("Skipping sales recalculation, previous run still in progress")
		return RunResult{}, ErrJobInProgress
	}
	defer s.inFlight.Store(false)

	ctx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	ctx, span := telemetry.StartJobSpan(ctx, "recalculate_sales")
	defer span.End()

	result := RunResult{StartedAt: time.Now()}
	result.Err = s.run(ctx, &result)
	result.Duration = time.Since(result.StartedAt)
	telemetry.RecordError(span, result.Err)
	telemetry.SetAttributes(span, "products", result.Products, "topsellers", result.Topsellers)

	s.mu.Lock()
	s.lastRun = &result
	s.mu.Unlock()

	if result.Err != nil {
		s.logger.Error("Sales recalculation failed",
			zap.Duration("duration", result.Duration),
			zap.Error(result.Err),
		)
		return result, result.Err
	}
	s.logger.Info("Sales recalculation finished",
		zap.Int("products", result.Products),
		zap.Int("topsellers", result.Topsellers),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

func (s *SalesScheduler) run(ctx context.Context, result *RunResult) error {
	sales, err := s.sales.RecalculateSales(ctx)
	if err != nil {
		return err
	}
	result.Products = len(sales)

	// Refill the topseller cache evicted by the recalculation
	top, err := s.sales.Topseller(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to refresh topseller: %w", err)
	}
	result.Topsellers = len(top)
	return nil
}

// cronLogger routes cron's own logging to zap
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
