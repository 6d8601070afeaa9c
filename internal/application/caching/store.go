package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is a byte oriented cache. Implementations live in the
// infrastructure cache package (memory, redis, tiered).
type Store interface {
	// Get returns the cached value; the bool is false on a miss
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePrefix removes every key starting with prefix
	DeletePrefix(ctx context.Context, prefix string) error
}

// Keys builds the cache keys of the shop. Every key starts with Prefix.
type Keys struct {
	Prefix string
}

// Key joins the prefix and the parts with dashes
func (k Keys) Key(parts ...any) string {
	var b strings.Builder
	b.WriteString(k.Prefix)
	for _, p := range parts {
		b.WriteByte('-')
		b.WriteString(fmt.Sprint(p))
	}
	return b.String()
}

// All is the prefix shared by every key of the shop
func (k Keys) All() string {
	return k.Prefix + "-"
}

// Shop is the key of the cached shop settings
func (k Keys) Shop(id uuid.UUID) string { return k.Key("shop", id) }

// Cart is the key of the cart of a user or session
func (k Keys) Cart(owner string) string { return k.Key("cart", owner) }

// CartItems is the key of the items of a cart
func (k Keys) CartItems(id uuid.UUID) string { return k.Key("cart-items", id) }

// CartCosts is the key of the computed cart totals, gross or net
func (k Keys) CartCosts(id uuid.UUID, gross bool) string {
	if gross {
		return k.Key("cart-costs-True", id)
	}
	return k.Key("cart-costs-False", id)
}

func (k Keys) DeliveryTime() string     { return k.Key("shipping-delivery-time") }
func (k Keys) DeliveryTimeCart() string { return k.Key("shipping-delivery-time-cart") }
func (k Keys) Topseller() string        { return k.Key("topseller") }

// TopsellerFor is the key of the topseller of a category
func (k Keys) TopsellerFor(categoryID uuid.UUID) string { return k.Key("topseller", categoryID) }

func (k Keys) Page(slug string) string           { return k.Key("page", slug) }
func (k Keys) Pages() string                     { return k.Key("pages") }
func (k Keys) StaticBlock(id uuid.UUID) string   { return k.Key("static-block", id) }
func (k Keys) CategoryInline(slug string) string { return k.Key("category-inline", slug) }

// ProductFilters is the key of the computed filters of a category
func (k Keys) ProductFilters(slug, filters, price, sorting string) string {
	return k.Key("productfilters", slug, filters, price, sorting)
}

// PriceFilters is the key of the computed price steps of a category
func (k Keys) PriceFilters(slug, filters, price, sorting string) string {
	return k.Key("pricefilters", slug, filters, price, sorting)
}

// Product returns the keys cached for one product or variant
func (k Keys) Product(id uuid.UUID, slug string) []string {
	return []string{
		k.Key("product", id),
		k.Key("product", slug),
		k.Key("product-inline", id),
		k.Key("product-images", id),
		k.Key("related-products", id),
		k.Key("manage-properties-variants", id),
		k.Key("product-categories", id, "False"),
		k.Key("product-categories", id, "True"),
		k.Key("product-navigation", slug),
	}
}

// Criteria is the key the criteria of an owner are cached under
func (k Keys) Criteria(ownerID uuid.UUID, owner string) string {
	return fmt.Sprintf("%s-criteria_for_model_%s_%s", k.Prefix, ownerID, owner)
}

// Remember returns the cached value of key or computes, stores and returns
// it. Cache errors are logged and never fail the call.
func Remember[T any](ctx context.Context, store Store, logger *zap.Logger, key string, ttl time.Duration, compute func() (T, error)) (T, error) {
	if store != nil {
		if data, ok, err := store.Get(ctx, key); err != nil {
			logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			var cached T
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
			logger.Warn("dropping undecodable cache entry", zap.String("key", key))
		}
	}

	value, err := compute()
	if err != nil {
		return value, err
	}
	if store != nil {
		data, err := json.Marshal(value)
		if err != nil {
			logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
			return value, nil
		}
		if err := store.Set(ctx, key, data, ttl); err != nil {
			logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return value, nil
}
