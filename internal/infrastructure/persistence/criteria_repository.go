package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/criteria"
	"gorm.io/gorm"
)

// GormCriterionRepository implements CriterionRepository using GORM
type GormCriterionRepository struct {
	db *gorm.DB
}

// NewGormCriterionRepository creates a new GormCriterionRepository
func NewGormCriterionRepository(db *gorm.DB) *GormCriterionRepository {
	return &GormCriterionRepository{db: db}
}

// CriteriaFor returns the criteria of an owner by position
func (r *GormCriterionRepository) CriteriaFor(ctx context.Context, owner criteria.OwnerType, ownerID uuid.UUID) ([]criteria.Criterion, error) {
	var list []criteria.Criterion
	if err := r.db.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ?", owner, ownerID).
		Order("position ASC, created_at ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// FindByID finds a single criterion
func (r *GormCriterionRepository) FindByID(ctx context.Context, id uuid.UUID) (*criteria.Criterion, error) {
	var c criteria.Criterion
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &c, nil
}

// Save creates or updates a criterion
func (r *GormCriterionRepository) Save(ctx context.Context, c *criteria.Criterion) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// ReplaceFor replaces the whole list of an owner in one transaction. The
// owner of every criterion is overwritten with the given one.
func (r *GormCriterionRepository) ReplaceFor(ctx context.Context, owner criteria.OwnerType, ownerID uuid.UUID, list []criteria.Criterion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_type = ? AND owner_id = ?", owner, ownerID).
			Delete(&criteria.Criterion{}).Error; err != nil {
			return err
		}
		if len(list) == 0 {
			return nil
		}
		rows := make([]criteria.Criterion, len(list))
		copy(rows, list)
		for i := range rows {
			rows[i].OwnerType = owner
			rows[i].OwnerID = ownerID
			if rows[i].ID == uuid.Nil {
				rows[i].ID = uuid.New()
			}
		}
		return tx.Create(&rows).Error
	})
}

// Delete removes a criterion
func (r *GormCriterionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleted(r.db.WithContext(ctx).Delete(&criteria.Criterion{}, "id = ?", id))
}

var _ criteria.CriterionRepository = (*GormCriterionRepository)(nil)
