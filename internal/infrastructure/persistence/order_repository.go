package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/order"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const orderNumberCounter = "order"

// orderNumber is the counter order numbers are drawn from
type orderNumber struct {
	ID         string `gorm:"type:varchar(20);primaryKey"`
	LastNumber int64  `gorm:"not null;default:0"`
	Format     string `gorm:"type:varchar(30);not null;default:'%d'"`
}

func (orderNumber) TableName() string {
	return "order_numbers"
}

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.withItems(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &o, nil
}

// FindByNumber finds an order by its number
func (r *GormOrderRepository) FindByNumber(ctx context.Context, number string) (*order.Order, error) {
	var o order.Order
	if err := r.withItems(ctx).Where("number = ?", number).First(&o).Error; err != nil {
		return nil, translateError(err)
	}
	return &o, nil
}

// FindClosedBefore returns closed orders whose state changed before t
func (r *GormOrderRepository) FindClosedBefore(ctx context.Context, t time.Time) ([]order.Order, error) {
	var orders []order.Order
	if err := r.withItems(ctx).
		Where("state = ? AND state_modified < ?", order.StateClosed, t).
		Order("state_modified ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// AllItems returns every order item that still references a product
func (r *GormOrderRepository) AllItems(ctx context.Context) ([]order.Item, error) {
	var items []order.Item
	if err := r.db.WithContext(ctx).
		Where("product_id IS NOT NULL").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// NextNumber increments the counter and formats the new value
func (r *GormOrderRepository) NextNumber(ctx context.Context) (string, error) {
	var counter orderNumber
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&orderNumber{ID: orderNumberCounter, Format: "%d"}).Error; err != nil {
			return err
		}
		if err := tx.Model(&orderNumber{}).
			Where("id = ?", orderNumberCounter).
			Update("last_number", gorm.Expr("last_number + 1")).Error; err != nil {
			return err
		}
		return tx.First(&counter, "id = ?", orderNumberCounter).Error
	})
	if err != nil {
		return "", fmt.Errorf("failed to draw order number: %w", err)
	}
	format := counter.Format
	if format == "" {
		format = "%d"
	}
	return fmt.Sprintf(format, counter.LastNumber), nil
}

// Save creates or updates an order with its items
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(o).Error
}

func (r *GormOrderRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	})
}

var _ order.Repository = (*GormOrderRepository)(nil)
