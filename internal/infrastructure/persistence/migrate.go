package persistence

import (
	"context"
	"fmt"

	"github.com/lfs/storefront/internal/domain/cart"
	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/lfs/storefront/internal/domain/criteria"
	"github.com/lfs/storefront/internal/domain/customer"
	"github.com/lfs/storefront/internal/domain/discount"
	"github.com/lfs/storefront/internal/domain/marketing"
	"github.com/lfs/storefront/internal/domain/order"
	"github.com/lfs/storefront/internal/domain/page"
	"github.com/lfs/storefront/internal/domain/payment"
	"github.com/lfs/storefront/internal/domain/pricing"
	"github.com/lfs/storefront/internal/domain/shipping"
	"github.com/lfs/storefront/internal/domain/shop"
	"github.com/lfs/storefront/internal/domain/voucher"
	"gorm.io/gorm"
)

// Models returns every persisted model in dependency order
func Models() []any {
	return []any{
		&pricing.Tax{},
		&pricing.CustomerTax{},
		&catalog.DeliveryTime{},
		&catalog.StaticBlock{},
		&catalog.Manufacturer{},
		&catalog.Category{},
		&catalog.Product{},
		&productCategory{},
		&catalog.Property{},
		&catalog.PropertyOption{},
		&catalog.FilterStep{},
		&catalog.ProductProperty{},
		&catalog.ProductPropertyValue{},
		&criteria.Criterion{},
		&shipping.Method{},
		&shipping.MethodPrice{},
		&payment.Method{},
		&payment.MethodPrice{},
		&discount.Discount{},
		&voucher.Group{},
		&voucher.Voucher{},
		&voucher.Options{},
		&marketing.Topseller{},
		&marketing.ProductSales{},
		&cart.Cart{},
		&cart.Item{},
		&customer.Customer{},
		&order.Order{},
		&order.Item{},
		&orderNumber{},
		&shop.Shop{},
		&page.Page{},
	}
}

// AutoMigrate creates or updates the schema of every model
func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
