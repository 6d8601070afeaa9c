package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/lfs/storefront/internal/domain/marketing"
	"github.com/lfs/storefront/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSalesService struct {
	mock.Mock
}

func (m *MockSalesService) RecalculateSales(ctx context.Context) ([]marketing.ProductSales, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketing.ProductSales), args.Error(1)
}

func (m *MockSalesService) Topseller(ctx context.Context, limit int) ([]catalog.Product, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func testConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		Enabled:           true,
		SalesCronSchedule: "0 3 * * *",
		JobTimeout:        time.Minute,
	}
}

func TestNewSalesScheduler(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		s, err := NewSalesScheduler(testConfig(), new(MockSalesService), nil)
		require.NoError(t, err)
		assert.False(t, s.IsRunning())
		assert.Nil(t, s.LastRun())
	})

	t.Run("invalid schedule", func(t *testing.T) {
		cfg := testConfig()
		cfg.SalesCronSchedule = "every night"
		_, err := NewSalesScheduler(cfg, new(MockSalesService), nil)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("missing timeout", func(t *testing.T) {
		cfg := testConfig()
		cfg.JobTimeout = 0
		_, err := NewSalesScheduler(cfg, new(MockSalesService), nil)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("missing service", func(t *testing.T) {
		_, err := NewSalesScheduler(testConfig(), nil, nil)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestSalesScheduler_StartStop(t *testing.T) {
	s, err := NewSalesScheduler(testConfig(), new(MockSalesService), nil)
	require.NoError(t, err)

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(), ErrSchedulerRunning)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.IsRunning())

	// Stopping twice is a no-op
	require.NoError(t, s.Stop(ctx))
}

func TestSalesScheduler_RunNow(t *testing.T) {
	t.Run("recalculates and refreshes topseller", func(t *testing.T) {
		sales := new(MockSalesService)
		sales.On("RecalculateSales", mock.Anything).Return([]marketing.ProductSales{
			{ProductID: uuid.New(), Sales: 3},
			{ProductID: uuid.New(), Sales: 1},
		}, nil)
		sales.On("Topseller", mock.Anything, 0).Return([]catalog.Product{{Name: "Shirt"}}, nil)

		s, err := NewSalesScheduler(testConfig(), sales, nil)
		require.NoError(t, err)

		result, err := s.RunNow(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, result.Products)
		assert.Equal(t, 1, result.Topsellers)
		require.NotNil(t, s.LastRun())
		assert.NoError(t, s.LastRun().Err)
		sales.AssertExpectations(t)
	})

	t.Run("recalculation error skips refresh", func(t *testing.T) {
		sales := new(MockSalesService)
		sales.On("RecalculateSales", mock.Anything).Return(nil, errors.New("db down"))

		s, err := NewSalesScheduler(testConfig(), sales, nil)
		require.NoError(t, err)

		_, err = s.RunNow(context.Background())
		assert.EqualError(t, err, "db down")
		require.NotNil(t, s.LastRun())
		assert.Error(t, s.LastRun().Err)
		sales.AssertNotCalled(t, "Topseller", mock.Anything, mock.Anything)
	})

	t.Run("job context carries timeout", func(t *testing.T) {
		sales := new(MockSalesService)
		sales.On("RecalculateSales", mock.MatchedBy(func(ctx context.Context) bool {
			_, ok := ctx.Deadline()
			return ok
		})).Return([]marketing.ProductSales{}, nil)
		sales.On("Topseller", mock.Anything, 0).Return([]catalog.Product{}, nil)

		s, err := NewSalesScheduler(testConfig(), sales, nil)
		require.NoError(t, err)

		_, err = s.RunNow(context.Background())
		require.NoError(t, err)
		sales.AssertExpectations(t)
	})

	t.Run("overlapping run is rejected", func(t *testing.T) {
		release := make(chan struct{})
		started := make(chan struct{})
		sales := new(MockSalesService)
		sales.On("RecalculateSales", mock.Anything).Run(func(mock.Arguments) {
			close(started)
			<-release
		}).Return([]marketing.ProductSales{}, nil).Once()
		sales.On("Topseller", mock.Anything, 0).Return([]catalog.Product{}, nil)

		s, err := NewSalesScheduler(testConfig(), sales, nil)
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() {
			_, err := s.RunNow(context.Background())
			done <- err
		}()
		<-started

		_, err = s.RunNow(context.Background())
		assert.ErrorIs(t, err, ErrJobInProgress)

		close(release)
		assert.NoError(t, <-done)
	})
}
