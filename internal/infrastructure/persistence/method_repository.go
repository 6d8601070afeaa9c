package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/payment"
	"github.com/lfs/storefront/internal/domain/shipping"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormShippingMethodRepository implements shipping.Repository using GORM
type GormShippingMethodRepository struct {
	db *gorm.DB
}

// NewGormShippingMethodRepository creates a new GormShippingMethodRepository
func NewGormShippingMethodRepository(db *gorm.DB) *GormShippingMethodRepository {
	return &GormShippingMethodRepository{db: db}
}

// FindByID finds a shipping method with prices, tax and delivery time
func (r *GormShippingMethodRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Method, error) {
	var m shipping.Method
	if err := r.preloaded(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &m, nil
}

// FindActive returns active methods ordered by priority
func (r *GormShippingMethodRepository) FindActive(ctx context.Context) ([]shipping.Method, error) {
	var methods []shipping.Method
	if err := r.preloaded(ctx).
		Where("active = ?", true).
		Order("priority ASC, name ASC").
		Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

// Save creates or updates a method and replaces its prices
func (r *GormShippingMethodRepository) Save(ctx context.Context, m *shipping.Method) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(m).Error; err != nil {
			return err
		}
		if err := tx.Where("method_id = ?", m.ID).Delete(&shipping.MethodPrice{}).Error; err != nil {
			return err
		}
		if len(m.Prices) == 0 {
			return nil
		}
		for i := range m.Prices {
			m.Prices[i].MethodID = m.ID
			if m.Prices[i].ID == uuid.Nil {
				m.Prices[i].ID = uuid.New()
			}
		}
		return tx.Create(&m.Prices).Error
	})
}

// Delete deletes a method with its prices
func (r *GormShippingMethodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("method_id = ?", id).Delete(&shipping.MethodPrice{}).Error; err != nil {
			return err
		}
		return deleted(tx.Delete(&shipping.Method{}, "id = ?", id))
	})
}

func (r *GormShippingMethodRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Tax").
		Preload("DeliveryTime").
		Preload("Prices", func(db *gorm.DB) *gorm.DB { return db.Order("priority ASC") })
}

// GormPaymentMethodRepository implements payment.Repository using GORM
type GormPaymentMethodRepository struct {
	db *gorm.DB
}

// NewGormPaymentMethodRepository creates a new GormPaymentMethodRepository
func NewGormPaymentMethodRepository(db *gorm.DB) *GormPaymentMethodRepository {
	return &GormPaymentMethodRepository{db: db}
}

// FindByID finds a payment method with prices and tax
func (r *GormPaymentMethodRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Method, error) {
	var m payment.Method
	if err := r.preloaded(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &m, nil
}

// FindActive returns active methods ordered by priority
func (r *GormPaymentMethodRepository) FindActive(ctx context.Context) ([]payment.Method, error) {
	var methods []payment.Method
	if err := r.preloaded(ctx).
		Where("active = ?", true).
		Order("priority ASC, name ASC").
		Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

// Save creates or updates a method and replaces its prices
func (r *GormPaymentMethodRepository) Save(ctx context.Context, m *payment.Method) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(m).Error; err != nil {
			return err
		}
		if err := tx.Where("method_id = ?", m.ID).Delete(&payment.MethodPrice{}).Error; err != nil {
			return err
		}
		if len(m.Prices) == 0 {
			return nil
		}
		for i := range m.Prices {
			m.Prices[i].MethodID = m.ID
			if m.Prices[i].ID == uuid.Nil {
				m.Prices[i].ID = uuid.New()
			}
		}
		return tx.Create(&m.Prices).Error
	})
}

// Delete deletes a method with its prices
func (r *GormPaymentMethodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("method_id = ?", id).Delete(&payment.MethodPrice{}).Error; err != nil {
			return err
		}
		return deleted(tx.Delete(&payment.Method{}, "id = ?", id))
	})
}

func (r *GormPaymentMethodRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Tax").
		Preload("Prices", func(db *gorm.DB) *gorm.DB { return db.Order("priority ASC") })
}

var (
	_ shipping.Repository = (*GormShippingMethodRepository)(nil)
	_ payment.Repository  = (*GormPaymentMethodRepository)(nil)
)
