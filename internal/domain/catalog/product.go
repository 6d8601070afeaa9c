package catalog

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lfs/storefront/internal/domain/shared"
)

// SubType distinguishes standard products, products with variants, the
// variants themselves and configurable products.
type SubType string

const (
	SubTypeStandard            SubType = "0"
	SubTypeProductWithVariants SubType = "1"
	SubTypeVariant             SubType = "2"
	SubTypeConfigurable        SubType = "3"
)

// IsValid returns true if the sub type is known
func (s SubType) IsValid() bool {
	switch s {
	case SubTypeStandard, SubTypeProductWithVariants, SubTypeVariant, SubTypeConfigurable:
		return true
	default:
		return false
	}
}

// ActiveForSale decides where a variant takes its for-sale flag from.
type ActiveForSale int

const (
	// ActiveForSaleStandard inherits the flag of the parent
	ActiveForSaleStandard ActiveForSale = 0
	ActiveForSaleYes      ActiveForSale = 2
	ActiveForSaleNo       ActiveForSale = 3
)

// DefaultVariantPosition is the position of variants created without one
const DefaultVariantPosition = 999

// Product is a sellable item. Variants are products with a parent; each
// ActiveXxx flag says whether the variant's own value is used instead of the
// parent's.
type Product struct {
	shared.BaseAggregateRoot
	Name             string          `gorm:"type:varchar(80);not null;default:''"`
	Slug             string          `gorm:"type:varchar(80);not null;uniqueIndex"`
	SKU              string          `gorm:"column:sku;type:varchar(30);not null;default:''"`
	SKUManufacturer  string          `gorm:"column:sku_manufacturer;type:varchar(100);not null;default:''"`
	Price            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PriceCalculator  string          `gorm:"type:varchar(50);not null;default:''"`
	EffectivePrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0;index"`
	PriceUnit        string          `gorm:"type:varchar(20);not null;default:''"`
	Unit             string          `gorm:"type:varchar(20);not null;default:''"`
	ShortDescription string          `gorm:"type:text"`
	Description      string          `gorm:"type:text"`
	MetaTitle        string          `gorm:"type:varchar(80);not null"`
	MetaKeywords     string          `gorm:"type:text"`
	MetaDescription  string          `gorm:"type:text"`
	ForSale          bool            `gorm:"not null;default:false"`
	ForSalePrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Active           bool            `gorm:"not null;default:false;index"`

	// Stock and delivery
	Deliverable        bool          `gorm:"not null"`
	ManualDeliveryTime bool          `gorm:"not null;default:false"`
	DeliveryTimeID     *uuid.UUID    `gorm:"type:uuid"`
	DeliveryTime       *DeliveryTime `gorm:"foreignKey:DeliveryTimeID"`
	OrderTimeID        *uuid.UUID    `gorm:"type:uuid"`
	OrderTime          *DeliveryTime `gorm:"foreignKey:OrderTimeID"`
	OrderedAt          *time.Time
	ManageStockAmount  bool    `gorm:"not null;default:false"`
	StockAmount        float64 `gorm:"not null;default:0"`

	ActivePackingUnit bool     `gorm:"not null;default:false"`
	PackingUnit       *float64 `gorm:""`
	PackingUnitUnit   string   `gorm:"type:varchar(30);not null;default:''"`

	ActiveBasePrice bool    `gorm:"not null;default:false"`
	BasePriceUnit   string  `gorm:"type:varchar(30);not null;default:''"`
	BasePriceAmount float64 `gorm:"not null;default:0"`

	StaticBlockID  *uuid.UUID `gorm:"type:uuid"`
	ManufacturerID *uuid.UUID `gorm:"type:uuid;index"`
	TaxID          *uuid.UUID `gorm:"type:uuid"`

	// Dimensions of the shipping box
	Weight float64 `gorm:"not null;default:0"`
	Height float64 `gorm:"not null;default:0"`
	Length float64 `gorm:"not null;default:0"`
	Width  float64 `gorm:"not null;default:0"`

	SubType          SubType    `gorm:"type:varchar(10);not null;index"`
	DefaultVariantID *uuid.UUID `gorm:"type:uuid"`
	VariantPosition  int        `gorm:"not null"`
	ParentID         *uuid.UUID `gorm:"type:uuid;index"`

	ActiveName             bool          `gorm:"not null;default:false"`
	ActiveSKU              bool          `gorm:"column:active_sku;not null;default:false"`
	ActiveShortDescription bool          `gorm:"not null;default:false"`
	ActiveStaticBlock      bool          `gorm:"not null;default:false"`
	ActiveDescription      bool          `gorm:"not null;default:false"`
	ActivePrice            bool          `gorm:"not null;default:false"`
	ActiveForSale          ActiveForSale `gorm:"not null;default:0"`
	ActiveForSalePrice     bool          `gorm:"not null;default:false"`
	ActiveMetaTitle        bool          `gorm:"not null;default:false"`
	ActiveMetaDescription  bool          `gorm:"not null;default:false"`
	ActiveMetaKeywords     bool          `gorm:"not null;default:false"`
	ActiveDimensions       bool          `gorm:"not null;default:false"`
	ActiveRelatedProducts  bool          `gorm:"not null;default:false"`

	Categories []Category `gorm:"many2many:product_categories"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new standard product
func NewProduct(name, slug string, price decimal.Decimal) (*Product, error) {
	if err := validateSlug(slug); err != nil {
		return nil, err
	}
	if len(name) > 80 {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 80 characters")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              strings.ToLower(slug),
		Price:             price,
		ForSalePrice:      decimal.Zero,
		MetaTitle:         "<name>",
		Deliverable:       true,
		SubType:           SubTypeStandard,
		VariantPosition:   DefaultVariantPosition,
	}
	p.RefreshEffectivePrice()

	return p, nil
}

// NewVariant creates a variant of a product with variants. The variant
// inherits everything from the parent until its active flags are set.
func NewVariant(parent *Product, slug string) (*Product, error) {
	if parent == nil || !parent.IsProductWithVariants() {
		return nil, shared.NewDomainError("INVALID_PARENT", "Variants need a product with variants as parent")
	}
	v, err := NewProduct("", slug, parent.Price)
	if err != nil {
		return nil, err
	}
	v.SubType = SubTypeVariant
	v.ParentID = &parent.ID
	v.AddDomainEvent(NewProductChangedEvent(v))
	return v, nil
}

// IsStandard returns true if the product is a standard product
func (p *Product) IsStandard() bool { return p.SubType == SubTypeStandard }

// IsProductWithVariants returns true if the product has variants
func (p *Product) IsProductWithVariants() bool { return p.SubType == SubTypeProductWithVariants }

// IsVariant returns true if the product is a variant
func (p *Product) IsVariant() bool { return p.SubType == SubTypeVariant }

// IsConfigurable returns true if the product is configurable
func (p *Product) IsConfigurable() bool { return p.SubType == SubTypeConfigurable }

// SetSubType changes the sub type. Variants cannot change it.
func (p *Product) SetSubType(st SubType) error {
	if !st.IsValid() {
		return shared.NewDomainError("INVALID_SUB_TYPE", "Unknown product sub type")
	}
	if p.IsVariant() || st == SubTypeVariant {
		return shared.NewDomainError("INVALID_SUB_TYPE", "Variants are created with NewVariant")
	}
	p.SubType = st
	p.changed()
	return nil
}

// SetPrice sets the standard price
func (p *Product) SetPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	p.Price = price
	p.RefreshEffectivePrice()
	p.changed()
	return nil
}

// SetForSale sets the sale flag and sale price
func (p *Product) SetForSale(forSale bool, price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "For sale price cannot be negative")
	}
	p.ForSale = forSale
	p.ForSalePrice = price
	p.RefreshEffectivePrice()
	p.changed()
	return nil
}

// RefreshEffectivePrice stores the price used for filtering and sorting.
func (p *Product) RefreshEffectivePrice() {
	if p.ForSale {
		p.EffectivePrice = p.ForSalePrice
	} else {
		p.EffectivePrice = p.Price
	}
}

// SetActive activates or deactivates the product
func (p *Product) SetActive(active bool) {
	p.Active = active
	p.changed()
}

// SetDimensions sets the box dimensions
func (p *Product) SetDimensions(weight, width, height, length float64) {
	p.Weight, p.Width, p.Height, p.Length = weight, width, height, length
	p.changed()
}

// SetStock sets stock management and the stock amount
func (p *Product) SetStock(manage bool, amount float64) {
	p.ManageStockAmount = manage
	p.StockAmount = amount
	p.changed()
}

// DecreaseStockAmount decreases the stock amount if stock is managed
func (p *Product) DecreaseStockAmount(amount float64) {
	if p.ManageStockAmount {
		p.StockAmount -= amount
		p.changed()
	}
}

// SetDefaultVariant sets the explicit default variant, nil picks the first
// active one.
func (p *Product) SetDefaultVariant(variantID *uuid.UUID) error {
	if !p.IsProductWithVariants() {
		return shared.NewDomainError("INVALID_STATE", "Only products with variants have a default variant")
	}
	p.DefaultVariantID = variantID
	p.changed()
	return nil
}

// MarkDeleted records the deletion of the product.
func (p *Product) MarkDeleted() {
	p.AddDomainEvent(NewProductChangedEvent(p))
}

func (p *Product) changed() {
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductChangedEvent(p))
}

// CategoryIDs returns the ids of the loaded categories
func (p *Product) CategoryIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.Categories))
	for _, c := range p.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

// AmountByPackages rounds quantity up to whole packing units.
func AmountByPackages(quantity, packingUnit float64) float64 {
	if packingUnit <= 0 {
		return quantity
	}
	return math.Ceil(quantity/packingUnit) * packingUnit
}
