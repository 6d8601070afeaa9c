package bootstrap

import (
	"fmt"

	"github.com/lfs/storefront/internal/application/caching"
	appcatalog "github.com/lfs/storefront/internal/application/catalog"
	"github.com/lfs/storefront/internal/application/checkout"
	"github.com/lfs/storefront/internal/application/marketing"
	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/lfs/storefront/internal/domain/criteria"
	"github.com/lfs/storefront/internal/infrastructure/distance"
	"github.com/lfs/storefront/internal/infrastructure/expression"
	"github.com/lfs/storefront/internal/infrastructure/persistence"
	"github.com/lfs/storefront/internal/infrastructure/seed"
	"github.com/lfs/storefront/internal/infrastructure/strategy"
)

// Services are the application services of the shop
type Services struct {
	Strategies  *strategy.StrategyRegistry
	Sessions    *checkout.Loader
	Carts       *checkout.CartService
	Prices      *appcatalog.PriceService
	Filters     *appcatalog.FilterService
	Shipping    *checkout.ShippingService
	Payment     *checkout.PaymentService
	Discounts   *checkout.DiscountService
	Vouchers    *checkout.VoucherService
	Summary     *checkout.SummaryService
	Orders      *checkout.OrderService
	Topseller   *marketing.TopsellerService
	Invalidator *caching.Invalidator
	Seed        *seed.Loader
	Products    catalog.ProductRepository
}

// NewServices builds the services on top of infra and subscribes the cache
// invalidation to the event bus.
func NewServices(infra *Infrastructure) (*Services, error) {
	cfg := infra.Config
	log := infra.Logger
	db := infra.DB.DB
	store := infra.Cache.Store
	keys := infra.Keys
	ttl := cfg.Cache.DefaultTTL

	strategies, err := strategy.NewRegistryWithPayLinks(cfg.Shop.PriceCalculator, cfg.Payment.PayLinks)
	if err != nil {
		return nil, fmt.Errorf("failed to register strategies: %w", err)
	}

	shops := persistence.NewGormShopRepository(db)
	customers := persistence.NewGormCustomerRepository(db)
	carts := persistence.NewGormCartRepository(db)
	products := persistence.NewGormProductRepository(db)
	categories := persistence.NewGormCategoryRepository(db)
	properties := persistence.NewGormPropertyRepository(db)
	deliveryTimes := persistence.NewGormDeliveryTimeRepository(db)
	criteriaRepo := persistence.NewGormCriterionRepository(db)
	shippingMethods := persistence.NewGormShippingMethodRepository(db)
	paymentMethods := persistence.NewGormPaymentMethodRepository(db)
	orders := persistence.NewGormOrderRepository(db)

	criteriaSource := caching.NewCriteriaSource(criteriaRepo, store, keys, ttl, log)
	checker := criteria.NewChecker(criteriaSource).WithObserver(infra.Metrics)

	prices := appcatalog.NewPriceService(
		products,
		properties,
		persistence.NewGormTaxRepository(db),
		persistence.NewGormCustomerTaxRepository(db),
		checker,
		strategies,
		appcatalog.WithPriceCache(store, keys, ttl),
		appcatalog.WithPriceLogger(log),
	)
	filters := appcatalog.NewFilterService(
		categories,
		properties,
		persistence.NewGormFilterRepository(db),
		appcatalog.WithFilterCache(store, keys, ttl),
		appcatalog.WithFilterLogger(log),
	)

	loaderOpts := []checkout.LoaderOption{
		checkout.WithExpressions(expression.NewJSONLogicEvaluator(log)),
		checkout.WithCartCache(store, keys, ttl),
		checkout.WithLoaderLogger(log),
	}
	if cfg.Distance.Enabled {
		loaderOpts = append(loaderOpts, checkout.WithDistance(distance.NewHTTPProvider(cfg.Distance, log)))
	}
	methods := checkout.NewMethodValidator(shippingMethods, paymentMethods, checker, log)
	sessions := checkout.NewLoader(shops, customers, carts, prices, methods, loaderOpts...)

	shippingService := checkout.NewShippingService(
		shippingMethods, customers, deliveryTimes, checker, prices, strategies,
		checkout.WithShippingLogger(log),
	)
	paymentService := checkout.NewPaymentService(paymentMethods, customers, checker, log)
	discounts := checkout.NewDiscountService(persistence.NewGormDiscountRepository(db), checker)
	vouchers := checkout.NewVoucherService(persistence.NewGormVoucherRepository(db))
	summary := checkout.NewSummaryService(shippingService, paymentService, discounts, vouchers)
	cartService := checkout.NewCartService(carts, prices, infra.Events, log)
	orderService := checkout.NewOrderService(
		orders, products, summary, paymentService, vouchers, cartService,
		strategies, infra.Events, log,
	)

	topseller := marketing.NewTopsellerService(
		persistence.NewGormMarketingRepository(db), orders, products, categories,
		marketing.WithCache(store, keys, ttl),
		marketing.WithLogger(log),
		marketing.WithPublisher(infra.Events),
	)

	invalidator := caching.NewInvalidator(store, keys, products, categories,
		caching.WithRecorder(infra.Metrics),
		caching.WithLogger(log.Named("cache")),
	)
	infra.Events.Subscribe(invalidator)

	loader := seed.NewLoader(seed.Repositories{
		Shops:           shops,
		Taxes:           persistence.NewGormTaxRepository(db),
		DeliveryTimes:   deliveryTimes,
		Categories:      categories,
		Properties:      properties,
		Products:        products,
		ShippingMethods: shippingMethods,
		PaymentMethods:  paymentMethods,
		Criteria:        criteriaRepo,
		Pages:           persistence.NewGormPageRepository(db),
	}, log, seed.WithPublisher(infra.Events))

	return &Services{
		Strategies:  strategies,
		Sessions:    sessions,
		Carts:       cartService,
		Prices:      prices,
		Filters:     filters,
		Shipping:    shippingService,
		Payment:     paymentService,
		Discounts:   discounts,
		Vouchers:    vouchers,
		Summary:     summary,
		Orders:      orderService,
		Topseller:   topseller,
		Invalidator: invalidator,
		Seed:        loader,
		Products:    products,
	}, nil
}
