package catalog

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceConfig holds the stored prices a product is sold for. For products
// with variants it is taken from the default variant.
type PriceConfig struct {
	SourceID      uuid.UUID
	ForSale       bool
	StandardPrice decimal.Decimal
	ForSalePrice  decimal.Decimal
	Configurable  bool
}

// Price is the sale price when the product is for sale, the standard price
// otherwise.
func (c PriceConfig) Price() decimal.Decimal {
	if c.ForSale {
		return c.ForSalePrice
	}
	return c.StandardPrice
}

// ResolvedProduct is a product with every inheritable field already taken
// from the variant or its parent.
type ResolvedProduct struct {
	ID       uuid.UUID
	Slug     string
	ParentID *uuid.UUID
	SubType  SubType

	Name             string
	SKU              string
	ShortDescription string
	Description      string
	MetaTitle        string
	MetaKeywords     string
	MetaDescription  string
	StaticBlockID    *uuid.UUID
	ManufacturerID   *uuid.UUID
	TaxID            *uuid.UUID
	PriceCalculator  string
	PriceUnit        string
	Unit             string

	Active      bool
	Deliverable bool

	Weight float64
	Width  float64
	Height float64
	Length float64

	PackingUnit     float64
	PackingUnitUnit string
	BasePriceAmount float64
	BasePriceUnit   string

	ManualDeliveryTime bool
	DeliveryTimeID     *uuid.UUID
	OrderTimeID        *uuid.UUID
	OrderedAt          *time.Time
	ManageStockAmount  bool
	StockAmount        float64

	Pricing PriceConfig

	// DefaultVariant is set for products with variants that have one.
	DefaultVariant *ResolvedProduct
}

// IsVariant returns true if the resolved product is a variant
func (r *ResolvedProduct) IsVariant() bool { return r.SubType == SubTypeVariant }

// IsConfigurable returns true if the resolved product is configurable
func (r *ResolvedProduct) IsConfigurable() bool { return r.SubType == SubTypeConfigurable }

// DeliverySource returns the product whose stock and delivery settings apply.
func (r *ResolvedProduct) DeliverySource() *ResolvedProduct {
	if r.DefaultVariant != nil {
		return r.DefaultVariant
	}
	return r
}

// AmountByPackages rounds quantity up to whole packing units
func (r *ResolvedProduct) AmountByPackages(quantity float64) float64 {
	return AmountByPackages(quantity, r.PackingUnit)
}

// Resolve builds the resolved view of a product. parent is required for
// variants; variants are the children of a product with variants and are
// used to pick its default variant.
func Resolve(p *Product, parent *Product, variants []Product) ResolvedProduct {
	if p.IsVariant() && parent != nil {
		return resolveVariant(p, parent)
	}

	r := resolveOwn(p)
	if p.IsProductWithVariants() {
		if dv := DefaultVariant(p, variants); dv != nil {
			v := resolveVariant(dv, p)
			r.DefaultVariant = &v
			r.Pricing = v.Pricing
		}
	}
	return r
}

// DefaultVariant returns the explicit default variant, otherwise the first
// active variant by position. It returns nil when there is none.
func DefaultVariant(p *Product, variants []Product) *Product {
	if p.DefaultVariantID != nil {
		for i := range variants {
			if variants[i].ID == *p.DefaultVariantID {
				return &variants[i]
			}
		}
	}
	active := ActiveVariants(variants)
	if len(active) == 0 {
		return nil
	}
	return &active[0]
}

// ActiveVariants returns the active variants ordered by variant position.
func ActiveVariants(variants []Product) []Product {
	active := make([]Product, 0, len(variants))
	for _, v := range variants {
		if v.Active {
			active = append(active, v)
		}
	}
	slices.SortStableFunc(active, func(a, b Product) int {
		return a.VariantPosition - b.VariantPosition
	})
	return active
}

func resolveOwn(p *Product) ResolvedProduct {
	r := ResolvedProduct{
		ID:                 p.ID,
		Slug:               p.Slug,
		ParentID:           p.ParentID,
		SubType:            p.SubType,
		Name:               p.Name,
		SKU:                p.SKU,
		ShortDescription:   p.ShortDescription,
		Description:        p.Description,
		StaticBlockID:      p.StaticBlockID,
		ManufacturerID:     p.ManufacturerID,
		TaxID:              p.TaxID,
		PriceCalculator:    p.PriceCalculator,
		PriceUnit:          p.PriceUnit,
		Unit:               p.Unit,
		Active:             p.Active,
		Deliverable:        deliverable(p, nil),
		Weight:             p.Weight,
		Width:              p.Width,
		Height:             p.Height,
		Length:             p.Length,
		PackingUnit:        packingUnit(p),
		PackingUnitUnit:    p.PackingUnitUnit,
		BasePriceAmount:    p.BasePriceAmount,
		BasePriceUnit:      p.BasePriceUnit,
		ManualDeliveryTime: p.ManualDeliveryTime,
		DeliveryTimeID:     p.DeliveryTimeID,
		OrderTimeID:        p.OrderTimeID,
		OrderedAt:          p.OrderedAt,
		ManageStockAmount:  p.ManageStockAmount,
		StockAmount:        p.StockAmount,
		Pricing: PriceConfig{
			SourceID:      p.ID,
			ForSale:       p.ForSale,
			StandardPrice: p.Price,
			ForSalePrice:  p.ForSalePrice,
			Configurable:  p.IsConfigurable(),
		},
	}
	r.MetaTitle, r.MetaKeywords, r.MetaDescription = substituteMeta(p.MetaTitle, p.MetaKeywords, p.MetaDescription, r.Name, r.ShortDescription)
	return r
}

func resolveVariant(v, parent *Product) ResolvedProduct {
	r := resolveOwn(v)

	r.Name = inheritText(v.ActiveName, v.Name, parent.Name)
	r.Description = inheritText(v.ActiveDescription, v.Description, parent.Description)
	r.ShortDescription = pick(v.ActiveShortDescription, v.ShortDescription, parent.ShortDescription)
	r.SKU = pick(v.ActiveSKU, v.SKU, parent.SKU)
	r.StaticBlockID = pick(v.ActiveStaticBlock, v.StaticBlockID, parent.StaticBlockID)
	if !v.ActiveDimensions {
		r.Weight, r.Width, r.Height, r.Length = parent.Weight, parent.Width, parent.Height, parent.Length
	}
	if r.ManufacturerID == nil {
		r.ManufacturerID = parent.ManufacturerID
	}
	if r.PriceCalculator == "" {
		r.PriceCalculator = parent.PriceCalculator
	}
	r.TaxID = parent.TaxID
	r.PackingUnit = packingUnit(parent)
	r.PackingUnitUnit = parent.PackingUnitUnit
	if !v.ActiveBasePrice {
		r.BasePriceAmount, r.BasePriceUnit = parent.BasePriceAmount, parent.BasePriceUnit
	}

	r.Active = v.Active && parent.Active
	r.Deliverable = deliverable(v, parent)

	r.Pricing = PriceConfig{
		SourceID:      v.ID,
		ForSale:       variantForSale(v, parent),
		StandardPrice: pick(v.ActivePrice, v.Price, parent.Price),
		ForSalePrice:  pick(v.ActiveForSalePrice, v.ForSalePrice, parent.ForSalePrice),
	}

	title := pick(v.ActiveMetaTitle, v.MetaTitle, parent.MetaTitle)
	keywords := pick(v.ActiveMetaKeywords, v.MetaKeywords, parent.MetaKeywords)
	description := pick(v.ActiveMetaDescription, v.MetaDescription, parent.MetaDescription)
	r.MetaTitle, r.MetaKeywords, r.MetaDescription = substituteMeta(title, keywords, description, r.Name, r.ShortDescription)

	return r
}

func variantForSale(v, parent *Product) bool {
	switch v.ActiveForSale {
	case ActiveForSaleYes:
		return true
	case ActiveForSaleNo:
		return false
	default:
		return parent.ForSale
	}
}

// deliverable is false for managed stock that ran out without an order time.
func deliverable(p, parent *Product) bool {
	if p.ManageStockAmount && p.StockAmount <= 0 && p.OrderTimeID == nil {
		return false
	}
	if parent != nil {
		return p.Deliverable && parent.Deliverable
	}
	return p.Deliverable
}

func packingUnit(p *Product) float64 {
	if p.PackingUnit == nil {
		return 0
	}
	return *p.PackingUnit
}

// inheritText returns the variant's own text with %P replaced by the parent
// text when active, otherwise the parent's text.
func inheritText(active bool, own, parent string) string {
	if !active {
		return parent
	}
	return strings.ReplaceAll(own, "%P", parent)
}

func pick[T any](active bool, own, parent T) T {
	if active {
		return own
	}
	return parent
}

func substituteMeta(title, keywords, description, name, shortDescription string) (string, string, string) {
	title = strings.ReplaceAll(title, "<name>", name)
	r := strings.NewReplacer("<name>", name, "<short-description>", shortDescription)
	return title, r.Replace(keywords), r.Replace(description)
}
