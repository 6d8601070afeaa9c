package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/cart"
	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/lfs/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrProductNotBuyable is returned when an inactive product is put into the cart
var ErrProductNotBuyable = shared.NewDomainError("PRODUCT_NOT_BUYABLE", "Product cannot be added to the cart")

// CartService changes carts and publishes their events.
type CartService struct {
	carts  cart.Repository
	prices ProductPricer
	events shared.EventPublisher
	logger *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(carts cart.Repository, prices ProductPricer, events shared.EventPublisher, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{carts: carts, prices: prices, events: events, logger: logger}
}

// Add puts amount of a product into the visitor's cart, creating the cart
// on first use. A product with variants adds its default variant.
// Products sold in packing units are rounded up to whole packages.
func (s *CartService) Add(ctx context.Context, id Identity, productID uuid.UUID, amount float64) (*cart.Cart, error) {
	r, err := s.prices.Resolve(ctx, productID)
	if err != nil {
		return nil, err
	}
	if r.DefaultVariant != nil {
		r = r.DefaultVariant
	}
	if !r.Active || r.SubType == catalog.SubTypeProductWithVariants {
		return nil, ErrProductNotBuyable
	}

	c, err := s.find(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		c, err = cart.New(id.SessionID, id.UserID)
	}
	if err != nil {
		return nil, err
	}
	if err := c.Add(r.ID, r.AmountByPackages(amount)); err != nil {
		return nil, err
	}
	return c, s.save(ctx, c)
}

// SetAmount changes the amount of a line; zero removes the line
func (s *CartService) SetAmount(ctx context.Context, id Identity, itemID uuid.UUID, amount float64) (*cart.Cart, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.SetAmount(itemID, amount); err != nil {
		return nil, err
	}
	return c, s.save(ctx, c)
}

// Remove removes a line
func (s *CartService) Remove(ctx context.Context, id Identity, itemID uuid.UUID) (*cart.Cart, error) {
	return s.SetAmount(ctx, id, itemID, 0)
}

// Merge moves the session cart of a visitor who just logged in into the
// user's cart. A user without a cart takes the session cart over.
func (s *CartService) Merge(ctx context.Context, sessionID string, userID uuid.UUID) (*cart.Cart, error) {
	sessionCart, err := s.carts.FindBySession(ctx, sessionID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session cart: %w", err)
	}

	userCart, err := s.carts.FindByUser(ctx, userID)
	if errors.Is(err, shared.ErrNotFound) {
		sessionCart.AssignUser(userID)
		return sessionCart, s.save(ctx, sessionCart)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user cart: %w", err)
	}

	userCart.Merge(sessionCart)
	if err := s.save(ctx, userCart); err != nil {
		return nil, err
	}
	if err := s.Delete(ctx, sessionCart); err != nil {
		return nil, err
	}
	s.logger.Info("Merged session cart",
		zap.String("session_cart_id", sessionCart.ID.String()),
		zap.String("user_cart_id", userCart.ID.String()))
	return userCart, nil
}

// Delete removes a cart, e.g. after it became an order
func (s *CartService) Delete(ctx context.Context, c *cart.Cart) error {
	if err := s.carts.Delete(ctx, c.ID); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	c.MarkDeleted()
	return shared.PublishPending(ctx, s.events, c)
}

func (s *CartService) find(ctx context.Context, id Identity) (*cart.Cart, error) {
	switch {
	case id.UserID != nil:
		return s.carts.FindByUser(ctx, *id.UserID)
	case id.SessionID != "":
		return s.carts.FindBySession(ctx, id.SessionID)
	default:
		return nil, shared.NewDomainError("INVALID_OWNER", "Cart needs a session or a user")
	}
}

func (s *CartService) save(ctx context.Context, c *cart.Cart) error {
	if err := s.carts.Save(ctx, c); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return shared.PublishPending(ctx, s.events, c)
}
