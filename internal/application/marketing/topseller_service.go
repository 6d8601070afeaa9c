package marketing

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/application/caching"
	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/lfs/storefront/internal/domain/marketing"
	"github.com/lfs/storefront/internal/domain/order"
	"github.com/lfs/storefront/internal/domain/shared"
	"github.com/lfs/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ClosedOrderDays is how long an order has to be closed before it counts
// for follow ups like rating mails.
const ClosedOrderDays = 14

// TopsellerService computes the topseller lists and product sales.
type TopsellerService struct {
	marketing  marketing.Repository
	orders     order.Repository
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	events     shared.EventPublisher
	store      caching.Store
	keys       caching.Keys
	ttl        time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// Option configures a TopsellerService
type Option func(*TopsellerService)

// WithCache caches topseller lists in store
func WithCache(store caching.Store, keys caching.Keys, ttl time.Duration) Option {
	return func(s *TopsellerService) {
		s.store = store
		s.keys = keys
		s.ttl = ttl
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *TopsellerService) {
		s.logger = logger
	}
}

// WithPublisher publishes topseller changes
func WithPublisher(p shared.EventPublisher) Option {
	return func(s *TopsellerService) {
		s.events = p
	}
}

// NewTopsellerService creates a new TopsellerService
func NewTopsellerService(
	repo marketing.Repository,
	orders order.Repository,
	products catalog.ProductRepository,
	categories catalog.CategoryRepository,
	opts ...Option,
) *TopsellerService {
	s := &TopsellerService{
		marketing:  repo,
		orders:     orders,
		products:   products,
		categories: categories,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return marketing.DefaultLimit
	}
	return min(limit, marketing.MaxLimit)
}

// Topseller returns the explicit topseller of active products. The whole
// list is cached; limit only cuts the result.
func (s *TopsellerService) Topseller(ctx context.Context, limit int) ([]catalog.Product, error) {
	products, err := caching.Remember(ctx, s.store, s.logger, s.keys.Topseller(), s.ttl, func() ([]catalog.Product, error) {
		explicit, err := s.marketing.Topseller(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load topseller: %w", err)
		}
		ids := make([]uuid.UUID, 0, len(explicit))
		for _, ts := range explicit {
			ids = append(ids, ts.ProductID)
		}
		return s.productsInOrder(ctx, ids)
	})
	if err != nil {
		return nil, err
	}
	return cut(products, limitOrDefault(limit)), nil
}

// TopsellerForCategory returns the best selling products of a category and
// its descendants with the explicit topseller of these categories placed
// at their positions. The list is cached at MaxLimit and cut per call.
func (s *TopsellerService) TopsellerForCategory(ctx context.Context, categoryID uuid.UUID, limit int) ([]catalog.Product, error) {
	limit = limitOrDefault(limit)
	ctx, span := telemetry.StartServiceSpan(ctx, "marketing", "topseller_for_category",
		telemetry.WithAttribute(telemetry.SpanAttrCategoryID, categoryID.String()))
	defer span.End()

	products, err := caching.Remember(ctx, s.store, s.logger, s.keys.TopsellerFor(categoryID), s.ttl, func() ([]catalog.Product, error) {
		ids, err := s.categoryIDs(ctx, categoryID)
		if err != nil {
			return nil, err
		}
		bySales, err := s.marketing.BestSelling(ctx, ids, marketing.MaxLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to load best selling products: %w", err)
		}
		explicit, err := s.marketing.TopsellerInCategories(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load topseller: %w", err)
		}
		return s.productsInOrder(ctx, marketing.MergeExplicit(bySales, explicit, 0))
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return cut(products, limit), nil
}

func (s *TopsellerService) categoryIDs(ctx context.Context, categoryID uuid.UUID) ([]uuid.UUID, error) {
	descendants, err := s.categories.FindDescendants(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sub categories: %w", err)
	}
	ids := []uuid.UUID{categoryID}
	for _, c := range descendants {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (s *TopsellerService) productsInOrder(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	byID := make(map[uuid.UUID]catalog.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	result := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok && p.Active {
			result = append(result, p)
		}
	}
	return result, nil
}

// AddTopseller places a product in the explicit topseller list. An existing
// entry of the product is moved.
func (s *TopsellerService) AddTopseller(ctx context.Context, productID uuid.UUID, position int) (*marketing.Topseller, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", productID, err)
	}
	ts, err := s.marketing.FindTopseller(ctx, productID)
	var event shared.DomainEvent
	switch {
	case err == nil:
		ts.Position = position
		event = marketing.NewTopsellerChangedEvent(ts)
	case errors.Is(err, shared.ErrNotFound):
		if ts, err = marketing.NewTopseller(productID, position); err != nil {
			return nil, err
		}
		event = marketing.NewTopsellerSavedEvent(ts)
	default:
		return nil, fmt.Errorf("failed to load topseller: %w", err)
	}
	if err := s.marketing.SaveTopseller(ctx, ts); err != nil {
		return nil, fmt.Errorf("failed to save topseller: %w", err)
	}
	return ts, s.publish(ctx, event)
}

// RemoveTopseller takes a product out of the explicit topseller list
func (s *TopsellerService) RemoveTopseller(ctx context.Context, productID uuid.UUID) error {
	ts, err := s.marketing.FindTopseller(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to load topseller: %w", err)
	}
	if err := s.marketing.DeleteTopseller(ctx, ts.ID); err != nil {
		return fmt.Errorf("failed to delete topseller: %w", err)
	}
	return s.publish(ctx, marketing.NewTopsellerChangedEvent(ts))
}

func (s *TopsellerService) publish(ctx context.Context, events ...shared.DomainEvent) error {
	if s.events == nil {
		return nil
	}
	return s.events.Publish(ctx, events...)
}

// RecalculateSales rebuilds the product sales from all order items and
// evicts the topseller lists.
func (s *TopsellerService) RecalculateSales(ctx context.Context) ([]marketing.ProductSales, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "marketing", "recalculate_sales")
	defer span.End()

	items, err := s.orders.AllItems(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	sold, err := s.soldItems(ctx, items)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	sales := marketing.CalculateSales(sold)
	if err := s.marketing.ReplaceSales(ctx, sales); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save product sales: %w", err)
	}
	if s.store != nil {
		if err := s.store.DeletePrefix(ctx, s.keys.Topseller()); err != nil {
			s.logger.Warn("Failed to evict topseller cache", zap.Error(err))
		}
	}

	s.logger.Info("Product sales recalculated",
		zap.Int("order_items", len(items)),
		zap.Int("products", len(sales)))
	telemetry.SetAttribute(span, "products", len(sales))
	return sales, nil
}

func (s *TopsellerService) soldItems(ctx context.Context, items []order.Item) ([]marketing.SoldItem, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if item.ProductID != nil && !slices.Contains(ids, *item.ProductID) {
			ids = append(ids, *item.ProductID)
		}
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load sold products: %w", err)
	}
	byID := make(map[uuid.UUID]catalog.Product, len(products))
	parents := make([]uuid.UUID, 0)
	for _, p := range products {
		byID[p.ID] = p
		if p.IsVariant() && p.ParentID != nil {
			parents = append(parents, *p.ParentID)
		}
	}
	existing := make(map[uuid.UUID]bool)
	if len(parents) > 0 {
		found, err := s.products.FindByIDs(ctx, parents)
		if err != nil {
			return nil, fmt.Errorf("failed to load parent products: %w", err)
		}
		for _, p := range found {
			existing[p.ID] = true
		}
	}

	sold := make([]marketing.SoldItem, 0, len(items))
	for _, item := range items {
		if item.ProductID == nil {
			continue
		}
		p, ok := byID[*item.ProductID]
		if !ok {
			continue
		}
		si := marketing.SoldItem{ProductID: p.ID, Amount: item.ProductAmount}
		if p.IsVariant() {
			si.ParentID = p.ParentID
			si.Orphan = p.ParentID == nil || !existing[*p.ParentID]
		}
		sold = append(sold, si)
	}
	return sold, nil
}

// ClosedOrders returns orders closed for at least days days
func (s *TopsellerService) ClosedOrders(ctx context.Context, days int) ([]order.Order, error) {
	if days <= 0 {
		days = ClosedOrderDays
	}
	return s.orders.FindClosedBefore(ctx, s.now().AddDate(0, 0, -days))
}

func cut(products []catalog.Product, limit int) []catalog.Product {
	if len(products) > limit {
		return products[:limit]
	}
	return products
}
