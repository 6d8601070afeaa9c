package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/catalog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPropertyRepository implements PropertyRepository using GORM
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewGormPropertyRepository creates a new GormPropertyRepository
func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

// FindByID finds a property with its options and steps
func (r *GormPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Property, error) {
	var property catalog.Property
	if err := r.withChildren(ctx).First(&property, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &property, nil
}

// FindAll finds all properties with options and steps, ordered by position
func (r *GormPropertyRepository) FindAll(ctx context.Context) ([]catalog.Property, error) {
	var properties []catalog.Property
	if err := r.withChildren(ctx).Order("position ASC, name ASC").Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

// FindForProduct finds the properties assigned to a product in assignment order
func (r *GormPropertyRepository) FindForProduct(ctx context.Context, productID uuid.UUID) ([]catalog.Property, error) {
	var properties []catalog.Property
	if err := r.withChildren(ctx).
		Joins("JOIN product_properties pp ON pp.property_id = properties.id").
		Where("pp.product_id = ?", productID).
		Order("pp.position ASC, properties.position ASC").
		Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

// Save creates or updates a property and replaces its options and steps
func (r *GormPropertyRepository) Save(ctx context.Context, property *catalog.Property) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(property).Error; err != nil {
			return err
		}
		if err := tx.Where("property_id = ?", property.ID).Delete(&catalog.PropertyOption{}).Error; err != nil {
			return err
		}
		if err := tx.Where("property_id = ?", property.ID).Delete(&catalog.FilterStep{}).Error; err != nil {
			return err
		}
		for i := range property.Options {
			property.Options[i].PropertyID = property.ID
			if property.Options[i].ID == uuid.Nil {
				property.Options[i].ID = uuid.New()
			}
		}
		for i := range property.Steps {
			property.Steps[i].PropertyID = property.ID
			if property.Steps[i].ID == uuid.Nil {
				property.Steps[i].ID = uuid.New()
			}
		}
		if len(property.Options) > 0 {
			if err := tx.Create(&property.Options).Error; err != nil {
				return err
			}
		}
		if len(property.Steps) > 0 {
			if err := tx.Create(&property.Steps).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// AssignToProduct assigns a property to a product, updating the position
// of an existing assignment
func (r *GormPropertyRepository) AssignToProduct(ctx context.Context, productID, propertyID uuid.UUID, position int) error {
	pp := catalog.ProductProperty{ProductID: productID, PropertyID: propertyID, Position: position}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "property_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"position"}),
	}).Create(&pp).Error
}

// FindValues finds the values of a product, all types when types is empty
func (r *GormPropertyRepository) FindValues(ctx context.Context, productID uuid.UUID, types ...catalog.PropertyValueType) ([]catalog.ProductPropertyValue, error) {
	query := r.db.WithContext(ctx).Where("product_id = ?", productID)
	if len(types) > 0 {
		query = query.Where("type IN ?", types)
	}
	var values []catalog.ProductPropertyValue
	if err := query.Find(&values).Error; err != nil {
		return nil, err
	}
	return values, nil
}

// SaveValue creates a product property value; an identical value only has
// its numeric form and parent refreshed
func (r *GormPropertyRepository) SaveValue(ctx context.Context, value *catalog.ProductPropertyValue) error {
	if value.ID == uuid.Nil {
		value.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "product_id"}, {Name: "property_id"}, {Name: "value"}, {Name: "type"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"parent_id", "value_as_float"}),
	}).Create(value).Error
}

func (r *GormPropertyRepository) withChildren(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("start ASC") })
}

var _ catalog.PropertyRepository = (*GormPropertyRepository)(nil)
