package caching

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/cart"
	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/lfs/storefront/internal/domain/criteria"
	"github.com/lfs/storefront/internal/domain/marketing"
	"github.com/lfs/storefront/internal/domain/order"
	"github.com/lfs/storefront/internal/domain/page"
	"github.com/lfs/storefront/internal/domain/shared"
	"github.com/lfs/storefront/internal/domain/shipping"
	"github.com/lfs/storefront/internal/domain/shop"
	"go.uber.org/zap"
)

// Recorder counts invalidations, e.g. as Prometheus metrics.
type Recorder interface {
	Invalidated(eventType string, keys int, all bool)
}

// Plan is the outcome of an event: either clear everything or delete keys.
type Plan struct {
	ClearAll bool
	Keys     []string
}

// Invalidator evicts cache entries when entities change. It subscribes to
// the event bus as a shared.EventHandler.
type Invalidator struct {
	store      Store
	keys       Keys
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	recorder   Recorder
	logger     *zap.Logger
}

// InvalidatorOption configures an Invalidator
type InvalidatorOption func(*Invalidator)

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) InvalidatorOption {
	return func(i *Invalidator) {
		i.recorder = r
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) InvalidatorOption {
	return func(i *Invalidator) {
		i.logger = logger
	}
}

// NewInvalidator creates an invalidator
func NewInvalidator(store Store, keys Keys, products catalog.ProductRepository, categories catalog.CategoryRepository, opts ...InvalidatorOption) *Invalidator {
	i := &Invalidator{
		store:      store,
		keys:       keys,
		products:   products,
		categories: categories,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// EventTypes implements shared.EventHandler
func (i *Invalidator) EventTypes() []string {
	return []string{
		shop.EventTypeShopChanged,
		shop.EventTypeShopSaved,
		cart.EventTypeCartChanged,
		cart.EventTypeCartDeleted,
		catalog.EventTypeCategorySaved,
		catalog.EventTypeCategoryDeleted,
		catalog.EventTypeCategoryChanged,
		catalog.EventTypeProductChanged,
		catalog.EventTypeProductSaved,
		catalog.EventTypeReviewAdded,
		catalog.EventTypeStaticBlockSaved,
		order.EventTypeOrderItemSaved,
		order.EventTypeOrderItemDeleted,
		page.EventTypePageSaved,
		shipping.EventTypeShippingMethodSaved,
		marketing.EventTypeTopsellerChanged,
		marketing.EventTypeTopsellerSaved,
		criteria.EventTypeCriteriaSaved,
	}
}

// Handle implements shared.EventHandler
func (i *Invalidator) Handle(ctx context.Context, event shared.DomainEvent) error {
	plan, err := i.PlanFor(ctx, event)
	if err != nil {
		return err
	}
	return i.Apply(ctx, event.EventType(), plan)
}

// Apply executes a plan against the store
func (i *Invalidator) Apply(ctx context.Context, eventType string, plan Plan) error {
	if plan.ClearAll {
		if err := i.store.DeletePrefix(ctx, i.keys.All()); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
	} else if len(plan.Keys) > 0 {
		if err := i.store.Delete(ctx, plan.Keys...); err != nil {
			return fmt.Errorf("failed to delete cache keys: %w", err)
		}
	}
	if i.recorder != nil {
		i.recorder.Invalidated(eventType, len(plan.Keys), plan.ClearAll)
	}
	i.logger.Debug("cache invalidated",
		zap.String("event_type", eventType),
		zap.Bool("clear_all", plan.ClearAll),
		zap.Int("keys", len(plan.Keys)),
	)
	return nil
}

// PlanFor maps an event to the cache entries it makes stale.
func (i *Invalidator) PlanFor(ctx context.Context, event shared.DomainEvent) (Plan, error) {
	switch e := event.(type) {
	case *shop.ShopChangedEvent:
		return Plan{ClearAll: true}, nil
	case *shop.ShopSavedEvent:
		return Plan{Keys: []string{i.keys.Shop(e.ShopID)}}, nil
	case *cart.CartEvent:
		return Plan{Keys: i.cartKeys(e)}, nil
	case *catalog.CategorySavedEvent, *catalog.CategoryDeletedEvent, *catalog.CategoryChangedEvent:
		// category changes touch too many product pages to track
		return Plan{ClearAll: true}, nil
	case *catalog.ProductSavedEvent:
		return Plan{ClearAll: true}, nil
	case *catalog.ProductChangedEvent:
		keys, err := i.productKeys(ctx, e.ProductID)
		return Plan{Keys: keys}, err
	case *catalog.ReviewAddedEvent:
		keys, err := i.productKeys(ctx, e.ProductID)
		return Plan{Keys: keys}, err
	case *catalog.StaticBlockSavedEvent:
		keys, err := i.staticBlockKeys(ctx, e.StaticBlockID)
		return Plan{Keys: keys}, err
	case *order.OrderItemEvent:
		if e.ProductID == nil {
			return Plan{Keys: []string{i.keys.Topseller()}}, nil
		}
		keys, err := i.topsellerKeys(ctx, *e.ProductID)
		return Plan{Keys: keys}, err
	case *marketing.TopsellerEvent:
		keys, err := i.topsellerKeys(ctx, e.ProductID)
		return Plan{Keys: keys}, err
	case *page.PageSavedEvent:
		return Plan{Keys: []string{i.keys.Page(e.Slug), i.keys.Pages()}}, nil
	case *shipping.ShippingMethodSavedEvent:
		return Plan{Keys: []string{i.keys.DeliveryTime(), i.keys.DeliveryTimeCart()}}, nil
	case *criteria.CriteriaSavedEvent:
		return Plan{Keys: []string{i.keys.Criteria(e.OwnerID, string(e.OwnerType))}}, nil
	}
	return Plan{}, nil
}

func (i *Invalidator) cartKeys(e *cart.CartEvent) []string {
	keys := make([]string, 0, 7)
	if e.UserID != nil {
		keys = append(keys, i.keys.Cart(e.UserID.String()))
	}
	if e.SessionID != "" {
		keys = append(keys, i.keys.Cart(e.SessionID))
	}
	return append(keys,
		i.keys.CartItems(e.CartID),
		i.keys.CartCosts(e.CartID, true),
		i.keys.CartCosts(e.CartID, false),
		i.keys.DeliveryTimeCart(),
		i.keys.DeliveryTime(),
	)
}

// productKeys resolves a variant to its parent and returns the keys of the
// parent and all of its variants.
func (i *Invalidator) productKeys(ctx context.Context, productID uuid.UUID) ([]string, error) {
	p, err := i.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load product %s: %w", productID, err)
	}
	parent := p
	if p.IsVariant() && p.ParentID != nil {
		parent, err = i.products.FindByID(ctx, *p.ParentID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return i.keys.Product(p.ID, p.Slug), nil
			}
			return nil, fmt.Errorf("failed to load parent %s: %w", *p.ParentID, err)
		}
	}

	keys := i.keys.Product(parent.ID, parent.Slug)
	variants, err := i.products.FindVariants(ctx, parent.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load variants of %s: %w", parent.ID, err)
	}
	for _, v := range variants {
		keys = append(keys, i.keys.Product(v.ID, v.Slug)...)
		keys = append(keys, i.keys.Key("product-shipping", v.Slug))
	}
	return keys, nil
}

// topsellerKeys returns the global topseller key and the topseller key of
// every category of the product including their ancestors. Variants carry
// no categories and use those of their parent.
func (i *Invalidator) topsellerKeys(ctx context.Context, productID uuid.UUID) ([]string, error) {
	keys := []string{i.keys.Topseller()}
	owner := productID
	p, err := i.products.FindByID(ctx, productID)
	switch {
	case err == nil:
		if p.IsVariant() && p.ParentID != nil {
			owner = *p.ParentID
		}
	case !errors.Is(err, shared.ErrNotFound):
		return keys, fmt.Errorf("failed to load product %s: %w", productID, err)
	}
	categoryIDs, err := i.products.CategoryIDs(ctx, owner)
	if err != nil {
		return keys, fmt.Errorf("failed to load categories of %s: %w", owner, err)
	}
	if len(categoryIDs) == 0 {
		return keys, nil
	}
	categories, err := i.categories.FindByIDs(ctx, categoryIDs)
	if err != nil {
		return keys, fmt.Errorf("failed to load categories: %w", err)
	}
	seen := make(map[uuid.UUID]bool)
	for _, c := range categories {
		ids := append(c.GetAncestorIDs(), c.ID)
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				keys = append(keys, i.keys.TopsellerFor(id))
			}
		}
	}
	return keys, nil
}

func (i *Invalidator) staticBlockKeys(ctx context.Context, blockID uuid.UUID) ([]string, error) {
	keys := []string{i.keys.StaticBlock(blockID)}
	categories, err := i.categories.FindByStaticBlock(ctx, blockID)
	if err != nil {
		return keys, fmt.Errorf("failed to load categories of static block %s: %w", blockID, err)
	}
	for _, c := range categories {
		keys = append(keys, i.keys.CategoryInline(c.Slug))
	}
	return keys, nil
}

var _ shared.EventHandler = (*Invalidator)(nil)
