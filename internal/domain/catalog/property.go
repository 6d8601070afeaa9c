package catalog

import (
	"slices"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lfs/storefront/internal/domain/shared"
)

// PropertyType is the input type of a property.
type PropertyType int

const (
	PropertyTypeNumber PropertyType = 1
	PropertyTypeText   PropertyType = 2
	PropertyTypeSelect PropertyType = 3
)

// StepType decides how number filter ranges are built.
type StepType int

const (
	StepTypeAutomatic StepType = 1
	StepTypeFixed     StepType = 2
	StepTypeManual    StepType = 3
)

// PropertyValueType tells what a stored product property value is used for.
type PropertyValueType int

const (
	PropertyValueFilter  PropertyValueType = 0
	PropertyValueDefault PropertyValueType = 1
	PropertyValueDisplay PropertyValueType = 2
	PropertyValueVariant PropertyValueType = 3
)

// Property is a product attribute like colour or size.
type Property struct {
	ID               uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Name             string       `gorm:"type:varchar(100);not null" json:"name"`
	Title            string       `gorm:"type:varchar(100);not null;default:''" json:"title"`
	Position         int          `gorm:"not null;default:0" json:"position"`
	Unit             string       `gorm:"type:varchar(15);not null;default:''" json:"unit"`
	Type             PropertyType `gorm:"not null" json:"type"`
	Filterable       bool         `gorm:"not null" json:"filterable"`
	DisplayNoResults bool         `gorm:"not null;default:false" json:"display_no_results"`
	DisplayOnProduct bool         `gorm:"not null" json:"display_on_product"`
	Configurable     bool         `gorm:"not null;default:false" json:"configurable"`
	Required         bool         `gorm:"not null;default:false" json:"required"`
	AddPrice         bool         `gorm:"not null" json:"add_price"`
	StepType         StepType     `gorm:"not null" json:"step_type"`
	Step             int          `gorm:"not null;default:0" json:"step"`

	Options []PropertyOption `gorm:"foreignKey:PropertyID" json:"options,omitempty"`
	Steps   []FilterStep     `gorm:"foreignKey:PropertyID" json:"steps,omitempty"`
}

// TableName returns the table name for GORM
func (Property) TableName() string {
	return "properties"
}

// NewProperty creates a filterable property
func NewProperty(name string, typ PropertyType) (*Property, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Property name cannot be empty")
	}
	if typ < PropertyTypeNumber || typ > PropertyTypeSelect {
		return nil, shared.NewDomainError("INVALID_TYPE", "Unknown property type")
	}
	return &Property{
		ID:               uuid.New(),
		Name:             name,
		Title:            name,
		Type:             typ,
		Filterable:       true,
		DisplayOnProduct: true,
		AddPrice:         true,
		StepType:         StepTypeAutomatic,
	}, nil
}

// IsSelect returns true for select properties
func (p *Property) IsSelect() bool { return p.Type == PropertyTypeSelect }

// IsText returns true for text properties
func (p *Property) IsText() bool { return p.Type == PropertyTypeText }

// IsNumber returns true for number properties
func (p *Property) IsNumber() bool { return p.Type == PropertyTypeNumber }

// IsValidValue reports whether value can be stored for the property.
func (p *Property) IsValidValue(value string) bool {
	if p.IsNumber() {
		_, err := strconv.ParseFloat(value, 64)
		return err == nil
	}
	return true
}

// Option returns the option with the given id.
func (p *Property) Option(id uuid.UUID) (PropertyOption, bool) {
	for _, o := range p.Options {
		if o.ID == id {
			return o, true
		}
	}
	return PropertyOption{}, false
}

// SortedOptions returns the options ordered by position.
func (p *Property) SortedOptions() []PropertyOption {
	opts := slices.Clone(p.Options)
	slices.SortStableFunc(opts, func(a, b PropertyOption) int { return a.Position - b.Position })
	return opts
}

// PropertyOption is a choosable value of a select property.
type PropertyOption struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PropertyID uuid.UUID       `gorm:"type:uuid;not null;index" json:"property_id"`
	Name       string          `gorm:"type:varchar(100);not null" json:"name"`
	Price      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"price"`
	Position   int             `gorm:"not null" json:"position"`
}

// TableName returns the table name for GORM
func (PropertyOption) TableName() string {
	return "property_options"
}

// FilterStep is the start of a manual filter range. The range ends where the
// next step starts.
type FilterStep struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PropertyID uuid.UUID `gorm:"type:uuid;not null;index" json:"property_id"`
	Start      float64   `gorm:"not null" json:"start"`
}

// TableName returns the table name for GORM
func (FilterStep) TableName() string {
	return "filter_steps"
}

// ProductProperty assigns a property to a product.
type ProductProperty struct {
	ProductID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	PropertyID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position   int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductProperty) TableName() string {
	return "product_properties"
}

// ProductPropertyValue stores a value of a product for a property. ParentID
// is the product's parent for variants and the product itself otherwise, so
// filter counts can group variants under their parent.
type ProductPropertyValue struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID    uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_ppv_unique,priority:1" json:"product_id"`
	ParentID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"parent_id"`
	PropertyID   uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_ppv_unique,priority:2;index" json:"property_id"`
	Value        string            `gorm:"type:varchar(100);not null;default:'';uniqueIndex:idx_ppv_unique,priority:3" json:"value"`
	ValueAsFloat *float64          `json:"value_as_float,omitempty"`
	Type         PropertyValueType `gorm:"not null;uniqueIndex:idx_ppv_unique,priority:4" json:"type"`
}

// TableName returns the table name for GORM
func (ProductPropertyValue) TableName() string {
	return "product_property_values"
}

// NewProductPropertyValue creates a value, deriving the parent id and the
// numeric form of the value.
func NewProductPropertyValue(product *Product, propertyID uuid.UUID, value string, typ PropertyValueType) ProductPropertyValue {
	parentID := product.ID
	if product.IsVariant() && product.ParentID != nil {
		parentID = *product.ParentID
	}
	v := ProductPropertyValue{
		ID:         uuid.New(),
		ProductID:  product.ID,
		ParentID:   parentID,
		PropertyID: propertyID,
		Value:      value,
		Type:       typ,
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		v.ValueAsFloat = &f
	}
	return v
}

// DefaultOptionsPrice sums the prices of the default options of the
// configurable properties of a product. Without an explicit default a
// required property counts its first option.
func DefaultOptionsPrice(properties []Property, defaults []ProductPropertyValue) decimal.Decimal {
	chosen := make(map[uuid.UUID]string, len(defaults))
	for _, d := range defaults {
		if d.Type == PropertyValueDefault {
			chosen[d.PropertyID] = d.Value
		}
	}

	total := decimal.Zero
	for _, prop := range properties {
		if !prop.Configurable || !prop.AddPrice {
			continue
		}
		if raw, ok := chosen[prop.ID]; ok {
			if id, err := uuid.Parse(raw); err == nil {
				if opt, found := prop.Option(id); found {
					total = total.Add(opt.Price)
					continue
				}
			}
		}
		if prop.Required {
			if opts := prop.SortedOptions(); len(opts) > 0 {
				total = total.Add(opts[0].Price)
			}
		}
	}
	return total
}
