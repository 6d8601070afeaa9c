//go:build integration

// Package integration runs the storefront against a real PostgreSQL
// database started with testcontainers.
package integration

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/lfs/storefront/internal/bootstrap"
	"github.com/lfs/storefront/internal/infrastructure/config"
	"github.com/lfs/storefront/internal/infrastructure/seed"
	"github.com/lfs/storefront/internal/interfaces/http/handler"
	"github.com/lfs/storefront/internal/interfaces/http/middleware"
	"github.com/lfs/storefront/internal/interfaces/http/router"
)

// Shop is a migrated and seeded storefront with its HTTP engine
type Shop struct {
	Infra    *bootstrap.Infrastructure
	Services *bootstrap.Services
	Engine   *gin.Engine
	Seeded   seed.Result
}

// NewShop starts a PostgreSQL container, migrates the schema and loads
// the demo fixture. Everything is torn down on test cleanup.
func NewShop(t *testing.T) *Shop {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("storefront_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("storefront"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	t.Setenv("STOREFRONT_DATABASE_DRIVER", "postgres")
	t.Setenv("STOREFRONT_DATABASE_HOST", host)
	t.Setenv("STOREFRONT_DATABASE_PORT", port.Port())
	t.Setenv("STOREFRONT_DATABASE_USER", "postgres")
	t.Setenv("STOREFRONT_DATABASE_PASSWORD", "storefront")
	t.Setenv("STOREFRONT_DATABASE_DBNAME", "storefront_test")
	t.Setenv("STOREFRONT_DATABASE_SSLMODE", "disable")
	t.Setenv("STOREFRONT_REDIS_ENABLED", "false")
	t.Setenv("STOREFRONT_TELEMETRY_ENABLED", "false")
	t.Setenv("STOREFRONT_DISTANCE_ENABLED", "false")

	cfg, err := config.Load()
	require.NoError(t, err)

	infra, err := bootstrap.NewInfrastructure(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = infra.Close(context.Background()) })
	require.NoError(t, infra.Migrate(ctx))

	services, err := bootstrap.NewServices(infra)
	require.NoError(t, err)

	fixture, err := seed.LoadFromFile(fixturePath())
	require.NoError(t, err)
	seeded, err := services.Seed.Load(ctx, fixture)
	require.NoError(t, err)

	return &Shop{
		Infra:    infra,
		Services: services,
		Engine:   newEngine(t, services),
		Seeded:   seeded,
	}
}

func newEngine(t *testing.T, s *bootstrap.Services) *gin.Engine {
	t.Helper()
	require.NoError(t, middleware.SetupValidator())

	engine := gin.New()
	engine.Use(middleware.RequestID())
	r := router.NewRouter(engine, router.WithMiddleware(middleware.Identity()))
	r.Register(router.StorefrontGroups(router.Handlers{
		Products:   handler.NewProductHandler(s.Sessions, s.Prices, s.Shipping),
		Categories: handler.NewCategoryHandler(s.Filters),
		Shipping:   handler.NewShippingHandler(s.Sessions, s.Shipping),
		Payment:    handler.NewPaymentHandler(s.Sessions, s.Payment),
		Cart:       handler.NewCartHandler(s.Sessions, s.Carts, s.Summary, s.Discounts, s.Vouchers, s.Orders),
		Marketing:  handler.NewMarketingHandler(s.Topseller),
	})...)
	r.Setup()
	return engine
}

func fixturePath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "internal", "infrastructure", "seed", "testdata", "shop.yaml")
}

// API returns the versioned path of an endpoint
func API(format string, args ...any) string {
	return "/api/v1" + fmt.Sprintf(format, args...)
}
