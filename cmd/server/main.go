package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lfs/storefront/internal/bootstrap"
	"github.com/lfs/storefront/internal/infrastructure/config"
	"github.com/lfs/storefront/internal/infrastructure/logger"
	"github.com/lfs/storefront/internal/infrastructure/scheduler"
	"github.com/lfs/storefront/internal/interfaces/http/handler"
	"github.com/lfs/storefront/internal/interfaces/http/middleware"
	"github.com/lfs/storefront/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", bootstrap.Version),
	)

	infra, err := bootstrap.NewInfrastructure(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := infra.Close(shutdownCtx); err != nil {
			log.Error("Failed to release resources", zap.Error(err))
		}
	}()

	if err := infra.Migrate(ctx); err != nil {
		return err
	}

	services, err := bootstrap.NewServices(infra)
	if err != nil {
		return err
	}
	infra.Cache.Start(ctx)

	// Scheduled jobs
	if cfg.Scheduler.Enabled {
		sales, err := scheduler.NewSalesScheduler(cfg.Scheduler, services.Topseller, log)
		if err != nil {
			return err
		}
		if err := sales.Start(); err != nil {
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := sales.Stop(stopCtx); err != nil {
				log.Warn("Scheduler did not stop cleanly", zap.Error(err))
			}
		}()
	}

	engine, limiter, err := newEngine(cfg, log, infra, services)
	if err != nil {
		return err
	}
	if limiter != nil {
		defer limiter.Stop()
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("Server exited")
	return nil
}

// newEngine builds the gin engine with the middleware stack and all routes
func newEngine(cfg *config.Config, log *zap.Logger, infra *bootstrap.Infrastructure, s *bootstrap.Services) (*gin.Engine, *middleware.RateLimiter, error) {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		return nil, nil, err
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests with request, session and customer ids
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORS(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst, 10*time.Minute)
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Float64("rps", cfg.HTTP.RateLimitRPS),
			zap.Int("burst", cfg.HTTP.RateLimitBurst),
		)
	}

	// Probes and metrics (outside API versioning)
	health := handler.NewHealthHandler(bootstrap.Version, map[string]handler.Check{
		"database": infra.DB.Ping,
		"cache":    infra.Cache.Ping,
	})
	var metrics http.Handler
	if cfg.Metrics.Enabled {
		metrics = infra.Metrics.Handler()
	}
	router.RegisterProbes(engine, health, cfg.Metrics.Path, metrics)

	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithMiddleware(
			middleware.Tracing(middleware.TracingConfig{
				ServiceName: cfg.Telemetry.ServiceName,
				Enabled:     cfg.Telemetry.Enabled,
			}),
			middleware.SpanAttributes(),
			middleware.HTTPMetrics(infra.Metrics),
			middleware.Identity(),
		),
	)
	r.Register(router.StorefrontGroups(router.Handlers{
		Products:   handler.NewProductHandler(s.Sessions, s.Prices, s.Shipping),
		Categories: handler.NewCategoryHandler(s.Filters),
		Shipping:   handler.NewShippingHandler(s.Sessions, s.Shipping),
		Payment:    handler.NewPaymentHandler(s.Sessions, s.Payment),
		Cart:       handler.NewCartHandler(s.Sessions, s.Carts, s.Summary, s.Discounts, s.Vouchers, s.Orders),
		Marketing:  handler.NewMarketingHandler(s.Topseller),
	})...)
	r.Setup()

	log.Info("Routes registered", zap.Int("count", len(r.Routes())))
	return engine, limiter, nil
}
