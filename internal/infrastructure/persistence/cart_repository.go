package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/cart"
	"github.com/lfs/storefront/internal/domain/customer"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCartRepository implements cart.Repository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindByID finds a cart with its items
func (r *GormCartRepository) FindByID(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	var c cart.Cart
	if err := r.withItems(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &c, nil
}

// FindByUser finds the most recent cart of a user
func (r *GormCartRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	var c cart.Cart
	if err := r.withItems(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		First(&c).Error; err != nil {
		return nil, translateError(err)
	}
	return &c, nil
}

// FindBySession finds the most recent cart of a session
func (r *GormCartRepository) FindBySession(ctx context.Context, sessionID string) (*cart.Cart, error) {
	var c cart.Cart
	if err := r.withItems(ctx).
		Where("session_id = ?", sessionID).
		Order("updated_at DESC").
		First(&c).Error; err != nil {
		return nil, translateError(err)
	}
	return &c, nil
}

// Save creates or updates a cart and replaces its items
func (r *GormCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(c).Error; err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", c.ID).Delete(&cart.Item{}).Error; err != nil {
			return err
		}
		if len(c.Items) == 0 {
			return nil
		}
		for i := range c.Items {
			c.Items[i].CartID = c.ID
		}
		return tx.Create(&c.Items).Error
	})
}

// Delete deletes a cart and its items
func (r *GormCartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", id).Delete(&cart.Item{}).Error; err != nil {
			return err
		}
		return deleted(tx.Delete(&cart.Cart{}, "id = ?", id))
	})
}

func (r *GormCartRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	})
}

// GormCustomerRepository implements customer.Repository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByUser finds the customer of a user
func (r *GormCustomerRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*customer.Customer, error) {
	var c customer.Customer
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&c).Error; err != nil {
		return nil, translateError(err)
	}
	return &c, nil
}

// FindBySession finds the customer of a session
func (r *GormCustomerRepository) FindBySession(ctx context.Context, sessionID string) (*customer.Customer, error) {
	var c customer.Customer
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&c).Error; err != nil {
		return nil, translateError(err)
	}
	return &c, nil
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	return r.db.WithContext(ctx).Save(c).Error
}

var (
	_ cart.Repository     = (*GormCartRepository)(nil)
	_ customer.Repository = (*GormCustomerRepository)(nil)
)
