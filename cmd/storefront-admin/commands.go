package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/lfs/storefront/internal/bootstrap"
	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/lfs/storefront/internal/domain/voucher"
	"github.com/lfs/storefront/internal/infrastructure/config"
	"github.com/lfs/storefront/internal/infrastructure/logger"
	"github.com/lfs/storefront/internal/infrastructure/seed"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// env bundles what every command needs
type env struct {
	infra    *bootstrap.Infrastructure
	services *bootstrap.Services
	log      *zap.Logger
	out      io.Writer
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "storefront-admin",
		Usage:     "maintenance tasks of the storefront",
		Version:   bootstrap.Version,
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "log level (debug, info, warn, error)",
				EnvVars: []string{"STOREFRONT_LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "create or update the database schema",
				Action: withEnv(out, migrateAction),
			},
			{
				Name:      "seed",
				Usage:     "import a YAML fixture of taxes, catalog, methods and pages",
				ArgsUsage: "<file.yaml>",
				Action:    withEnv(out, seedAction),
			},
			{
				Name:   "recalculate-sales",
				Usage:  "recalculate the product sales behind the topseller lists",
				Action: withEnv(out, recalculateSalesAction),
			},
			{
				Name:  "generate-vouchers",
				Usage: "create a voucher group with random voucher numbers",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "group", Usage: "name of the voucher group", Required: true},
					&cli.IntFlag{Name: "amount", Usage: "number of vouchers", Value: 1},
					&cli.StringFlag{Name: "kind", Usage: "absolute or percentage", Value: "absolute"},
					&cli.StringFlag{Name: "value", Usage: "voucher value", Required: true},
				},
				Action: withEnv(out, generateVouchersAction),
			},
			{
				Name:  "topseller",
				Usage: "manage the explicit topseller list",
				Subcommands: []*cli.Command{
					{
						Name:      "add",
						Usage:     "place a product in the topseller list",
						ArgsUsage: "<product-slug>",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "position", Usage: "one based position", Value: 1},
						},
						Action: withEnv(out, addTopsellerAction),
					},
					{
						Name:      "remove",
						Usage:     "take a product out of the topseller list",
						ArgsUsage: "<product-slug>",
						Action:    withEnv(out, removeTopsellerAction),
					},
				},
			},
			{
				Name:      "review-added",
				Usage:     "evict the cached pages of a product after a review was added",
				ArgsUsage: "<product-slug>",
				Action:    withEnv(out, reviewAddedAction),
			},
			{
				Name:   "flush-cache",
				Usage:  "delete every cached entry of the shop",
				Action: withEnv(out, flushCacheAction),
			},
			{
				Name:  "closed-orders",
				Usage: "list orders closed more than the given days ago",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "days", Usage: "age in days, 0 uses the default"},
				},
				Action: withEnv(out, closedOrdersAction),
			},
		},
	}
}

// withEnv loads the configuration, opens the infrastructure and builds
// the services around action
func withEnv(out io.Writer, action func(c *cli.Context, e *env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		cfg.Log.Level = c.String("log-level")

		log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: "console", Output: "stderr"})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer func() {
			_ = log.Sync()
		}()

		infra, err := bootstrap.NewInfrastructure(c.Context, cfg, log)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := infra.Close(ctx); err != nil {
				log.Warn("Failed to release resources", zap.Error(err))
			}
		}()

		services, err := bootstrap.NewServices(infra)
		if err != nil {
			return err
		}
		return action(c, &env{infra: infra, services: services, log: log, out: out})
	}
}

func migrateAction(c *cli.Context, e *env) error {
	if err := e.infra.Migrate(c.Context); err != nil {
		return err
	}
	fmt.Fprintln(e.out, "Schema is up to date")
	return nil
}

func seedAction(c *cli.Context, e *env) error {
	if c.NArg() != 1 {
		return errors.New("seed expects exactly one fixture file")
	}
	fixture, err := seed.LoadFromFile(c.Args().First())
	if err != nil {
		return err
	}
	if err := e.infra.Migrate(c.Context); err != nil {
		return err
	}
	res, err := e.services.Seed.Load(c.Context, fixture)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Imported %d products (%d variants), %d categories, %d properties, %d shipping and %d payment methods, %d pages\n",
		res.Products, res.Variants, res.Categories, res.Properties, res.ShippingMethods, res.PaymentMethods, res.Pages)
	return nil
}

func recalculateSalesAction(c *cli.Context, e *env) error {
	sales, err := e.services.Topseller.RecalculateSales(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Recalculated sales of %d products\n", len(sales))
	return nil
}

func generateVouchersAction(c *cli.Context, e *env) error {
	kind, err := parseVoucherKind(c.String("kind"))
	if err != nil {
		return err
	}
	value, err := decimal.NewFromString(c.String("value"))
	if err != nil {
		return fmt.Errorf("invalid voucher value: %w", err)
	}
	if c.Int("amount") <= 0 {
		return errors.New("amount must be positive")
	}

	vouchers, err := e.services.Vouchers.Generate(c.Context, c.String("group"), c.Int("amount"), kind, value)
	for _, v := range vouchers {
		fmt.Fprintln(e.out, v.Number)
	}
	return err
}

func parseVoucherKind(s string) (voucher.Kind, error) {
	switch s {
	case "absolute":
		return voucher.KindAbsolute, nil
	case "percentage":
		return voucher.KindPercentage, nil
	default:
		return 0, fmt.Errorf("unknown voucher kind %q", s)
	}
}

func productArg(c *cli.Context, e *env) (*catalog.Product, error) {
	if c.NArg() != 1 {
		return nil, errors.New("expected exactly one product slug")
	}
	return e.services.Products.FindBySlug(c.Context, c.Args().First())
}

func addTopsellerAction(c *cli.Context, e *env) error {
	p, err := productArg(c, e)
	if err != nil {
		return err
	}
	if c.Int("position") < 1 {
		return errors.New("position must be at least 1")
	}
	ts, err := e.services.Topseller.AddTopseller(c.Context, p.ID, c.Int("position"))
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%s is topseller at position %d\n", p.Slug, ts.Position)
	return nil
}

func removeTopsellerAction(c *cli.Context, e *env) error {
	p, err := productArg(c, e)
	if err != nil {
		return err
	}
	if err := e.services.Topseller.RemoveTopseller(c.Context, p.ID); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%s removed from topseller\n", p.Slug)
	return nil
}

func reviewAddedAction(c *cli.Context, e *env) error {
	p, err := productArg(c, e)
	if err != nil {
		return err
	}
	if err := e.infra.Events.Publish(c.Context, catalog.NewReviewAddedEvent(p.ID)); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Evicted cached pages of %s\n", p.Slug)
	return nil
}

func flushCacheAction(c *cli.Context, e *env) error {
	if err := e.infra.Cache.Store.DeletePrefix(c.Context, e.infra.Keys.All()); err != nil {
		return err
	}
	fmt.Fprintln(e.out, "Cache flushed")
	return nil
}

func closedOrdersAction(c *cli.Context, e *env) error {
	orders, err := e.services.Topseller.ClosedOrders(c.Context, c.Int("days"))
	if err != nil {
		return err
	}
	for _, o := range orders {
		fmt.Fprintf(e.out, "%s\t%s\t%s\n", o.Number, o.CreatedAt.Format(time.DateOnly), o.Price.StringFixed(2))
	}
	return nil
}
