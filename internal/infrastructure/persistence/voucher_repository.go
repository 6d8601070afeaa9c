package persistence

import (
	"context"
	"errors"

	"github.com/lfs/storefront/internal/domain/voucher"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormVoucherRepository implements voucher.Repository using GORM
type GormVoucherRepository struct {
	db *gorm.DB
}

// NewGormVoucherRepository creates a new GormVoucherRepository
func NewGormVoucherRepository(db *gorm.DB) *GormVoucherRepository {
	return &GormVoucherRepository{db: db}
}

// FindByNumber finds a voucher with its tax
func (r *GormVoucherRepository) FindByNumber(ctx context.Context, number string) (*voucher.Voucher, error) {
	var v voucher.Voucher
	if err := r.db.WithContext(ctx).Preload("Tax").Where("number = ?", number).First(&v).Error; err != nil {
		return nil, translateError(err)
	}
	return &v, nil
}

// NumberExists reports whether a voucher number is taken
func (r *GormVoucherRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&voucher.Voucher{}).
		Where("number = ?", number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a voucher
func (r *GormVoucherRepository) Save(ctx context.Context, v *voucher.Voucher) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(v).Error
}

// SaveGroup creates or updates a voucher group
func (r *GormVoucherRepository) SaveGroup(ctx context.Context, g *voucher.Group) error {
	return r.db.WithContext(ctx).Save(g).Error
}

// Options returns the stored number options, the defaults when none are stored
func (r *GormVoucherRepository) Options(ctx context.Context) (*voucher.Options, error) {
	var opts voucher.Options
	err := r.db.WithContext(ctx).Order("id ASC").First(&opts).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		defaults := voucher.DefaultOptions()
		return &defaults, nil
	}
	if err != nil {
		return nil, err
	}
	return &opts, nil
}

// SaveOptions stores the number options
func (r *GormVoucherRepository) SaveOptions(ctx context.Context, opts *voucher.Options) error {
	if opts.ID == 0 {
		opts.ID = 1
	}
	return r.db.WithContext(ctx).Save(opts).Error
}

var _ voucher.Repository = (*GormVoucherRepository)(nil)
