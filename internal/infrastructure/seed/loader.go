package seed

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/lfs/storefront/internal/domain/criteria"
	"github.com/lfs/storefront/internal/domain/page"
	"github.com/lfs/storefront/internal/domain/payment"
	"github.com/lfs/storefront/internal/domain/pricing"
	"github.com/lfs/storefront/internal/domain/shared"
	"github.com/lfs/storefront/internal/domain/shipping"
	"github.com/lfs/storefront/internal/domain/shop"
	"go.uber.org/zap"
)

// Repositories are the stores a fixture is written to.
type Repositories struct {
	Shops           shop.Repository
	Taxes           pricing.TaxRepository
	DeliveryTimes   catalog.DeliveryTimeRepository
	Categories      catalog.CategoryRepository
	Properties      catalog.PropertyRepository
	Products        catalog.ProductRepository
	ShippingMethods shipping.Repository
	PaymentMethods  payment.Repository
	Criteria        criteria.CriterionRepository
	Pages           page.Repository
}

// Result counts the created rows per kind.
type Result struct {
	Taxes           int
	DeliveryTimes   int
	Categories      int
	Properties      int
	Products        int
	Variants        int
	ShippingMethods int
	PaymentMethods  int
	Pages           int
}

// Loader writes fixtures through the repositories and publishes the
// domain events of every saved row.
type Loader struct {
	repos  Repositories
	events shared.EventPublisher
	logger *zap.Logger
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithPublisher publishes the events of the loaded rows, e.g. to the cache
// invalidator.
func WithPublisher(p shared.EventPublisher) LoaderOption {
	return func(l *Loader) {
		l.events = p
	}
}

// NewLoader creates a loader
func NewLoader(repos Repositories, logger *zap.Logger, opts ...LoaderOption) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Loader{repos: repos, logger: logger}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) flush(ctx context.Context, agg shared.AggregateRoot) error {
	return shared.PublishPending(ctx, l.events, agg)
}

func (l *Loader) publish(ctx context.Context, events ...shared.DomainEvent) error {
	if l.events == nil {
		return nil
	}
	return l.events.Publish(ctx, events...)
}

// state maps fixture names to the created rows
type state struct {
	taxes      map[string]*pricing.Tax
	times      map[string]*catalog.DeliveryTime
	categories map[string]uuid.UUID
	properties map[string]*catalog.Property
}

var deliveryTimeUnits = map[string]catalog.DeliveryTimeUnit{
	"hours":  catalog.DeliveryTimeUnitHours,
	"days":   catalog.DeliveryTimeUnitDays,
	"weeks":  catalog.DeliveryTimeUnitWeeks,
	"months": catalog.DeliveryTimeUnitMonths,
}

var propertyTypes = map[string]catalog.PropertyType{
	"number": catalog.PropertyTypeNumber,
	"text":   catalog.PropertyTypeText,
	"select": catalog.PropertyTypeSelect,
}

// Load writes the fixture. Rows are created in dependency order; the first
// error aborts, so callers wrap Load in a transaction.
func (l *Loader) Load(ctx context.Context, f *Fixture) (Result, error) {
	var res Result
	st := &state{
		taxes:      make(map[string]*pricing.Tax),
		times:      make(map[string]*catalog.DeliveryTime),
		categories: make(map[string]uuid.UUID),
		properties: make(map[string]*catalog.Property),
	}

	steps := []struct {
		name string
		run  func(context.Context, *Fixture, *state, *Result) error
	}{
		{"taxes", l.loadTaxes},
		{"delivery times", l.loadDeliveryTimes},
		{"shop", l.loadShop},
		{"categories", l.loadCategories},
		{"properties", l.loadProperties},
		{"products", l.loadProducts},
		{"shipping methods", l.loadShippingMethods},
		{"payment methods", l.loadPaymentMethods},
		{"pages", l.loadPages},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := step.run(ctx, f, st, &res); err != nil {
			return res, fmt.Errorf("seed %s: %w", step.name, err)
		}
	}

	l.logger.Info("Fixture loaded",
		zap.Int("categories", res.Categories),
		zap.Int("products", res.Products),
		zap.Int("variants", res.Variants),
		zap.Int("shipping_methods", res.ShippingMethods),
		zap.Int("payment_methods", res.PaymentMethods),
	)
	return res, nil
}

func (l *Loader) loadTaxes(ctx context.Context, f *Fixture, st *state, res *Result) error {
	for _, t := range f.Taxes {
		tax, err := pricing.NewTax(t.Rate)
		if err != nil {
			return err
		}
		tax.Description = t.Name
		if err := l.repos.Taxes.Save(ctx, tax); err != nil {
			return err
		}
		st.taxes[t.Name] = tax
		res.Taxes++
	}
	return nil
}

func (l *Loader) loadDeliveryTimes(ctx context.Context, f *Fixture, st *state, res *Result) error {
	for _, d := range f.DeliveryTimes {
		dt := catalog.NewDeliveryTime(d.Min, d.Max, deliveryTimeUnits[d.Unit])
		dt.ID = uuid.New()
		dt.Description = d.Name
		if err := l.repos.DeliveryTimes.Save(ctx, &dt); err != nil {
			return err
		}
		st.times[d.Name] = &dt
		res.DeliveryTimes++
	}
	return nil
}

func (l *Loader) loadShop(ctx context.Context, f *Fixture, st *state, _ *Result) error {
	if f.Shop == nil {
		return nil
	}
	calc := f.Shop.PriceCalculator
	if calc == "" {
		calc = pricing.CalculatorGross
	}
	s, err := shop.New(f.Shop.Name, f.Shop.DefaultCountry, calc)
	if err != nil {
		return err
	}
	if len(f.Shop.Countries) > 0 {
		s.SetCountries(f.Shop.Countries)
	}
	if dt, ok := st.times[f.Shop.DeliveryTime]; ok {
		s.SetDeliveryTime(dt)
	}
	if err := l.repos.Shops.Save(ctx, s); err != nil {
		return err
	}
	return l.flush(ctx, s)
}

func (l *Loader) loadCategories(ctx context.Context, f *Fixture, st *state, res *Result) error {
	var create func(list []CategoryFixture, parent *catalog.Category) error
	create = func(list []CategoryFixture, parent *catalog.Category) error {
		for _, c := range list {
			var (
				cat *catalog.Category
				err error
			)
			if parent == nil {
				cat, err = catalog.NewCategory(c.Name, c.Slug)
			} else {
				cat, err = catalog.NewChildCategory(c.Name, c.Slug, parent)
			}
			if err != nil {
				return fmt.Errorf("category %q: %w", c.Slug, err)
			}
			if c.Position != 0 {
				cat.SetPosition(c.Position)
			}
			if err := l.repos.Categories.Save(ctx, cat); err != nil {
				return err
			}
			if err := l.flush(ctx, cat); err != nil {
				return err
			}
			st.categories[c.Slug] = cat.ID
			res.Categories++
			if err := create(c.Children, cat); err != nil {
				return err
			}
		}
		return nil
	}
	return create(f.Categories, nil)
}

func (l *Loader) loadProperties(ctx context.Context, f *Fixture, st *state, res *Result) error {
	for i, p := range f.Properties {
		prop, err := catalog.NewProperty(p.Name, propertyTypes[p.Type])
		if err != nil {
			return err
		}
		prop.Position = (i + 1) * 10
		prop.Unit = p.Unit
		for j, name := range p.Options {
			prop.Options = append(prop.Options, catalog.PropertyOption{
				ID:         uuid.New(),
				PropertyID: prop.ID,
				Name:       name,
				Position:   (j + 1) * 10,
			})
		}
		if len(p.Steps) > 0 {
			prop.StepType = catalog.StepTypeManual
			for _, start := range p.Steps {
				prop.Steps = append(prop.Steps, catalog.FilterStep{ID: uuid.New(), PropertyID: prop.ID, Start: start})
			}
		}
		if err := l.repos.Properties.Save(ctx, prop); err != nil {
			return err
		}
		st.properties[p.Name] = prop
		res.Properties++
	}
	return nil
}

func (l *Loader) loadProducts(ctx context.Context, f *Fixture, st *state, res *Result) error {
	for _, pf := range f.Products {
		p, err := catalog.NewProduct(pf.Name, pf.Slug, pf.Price)
		if err != nil {
			return fmt.Errorf("product %q: %w", pf.Slug, err)
		}
		p.SKU = pf.SKU
		p.SetActive(!pf.Inactive)
		p.SetDimensions(pf.Weight, pf.Width, pf.Height, pf.Length)
		if pf.SalePrice != nil {
			if err := p.SetForSale(true, *pf.SalePrice); err != nil {
				return err
			}
		}
		if pf.Stock != nil {
			p.SetStock(true, *pf.Stock)
		}
		if tax, ok := st.taxes[pf.Tax]; ok {
			p.TaxID = &tax.ID
		}
		if dt, ok := st.times[pf.DeliveryTime]; ok {
			p.ManualDeliveryTime = true
			p.DeliveryTimeID = &dt.ID
		}
		if len(pf.Variants) > 0 {
			if err := p.SetSubType(catalog.SubTypeProductWithVariants); err != nil {
				return err
			}
		}
		if err := l.repos.Products.Save(ctx, p); err != nil {
			return err
		}
		p.AddDomainEvent(catalog.NewProductSavedEvent(p.ID))
		if err := l.flush(ctx, p); err != nil {
			return err
		}
		res.Products++

		if len(pf.Categories) > 0 {
			ids := make([]uuid.UUID, 0, len(pf.Categories))
			changed := make([]shared.DomainEvent, 0, len(pf.Categories))
			for _, slug := range pf.Categories {
				ids = append(ids, st.categories[slug])
				changed = append(changed, catalog.NewCategoryChangedEvent(st.categories[slug]))
			}
			if err := l.repos.Products.SetCategories(ctx, p.ID, ids); err != nil {
				return err
			}
			if err := l.publish(ctx, changed...); err != nil {
				return err
			}
		}
		if err := l.saveValues(ctx, st, p, pf.Properties); err != nil {
			return err
		}

		for i, vf := range pf.Variants {
			v, err := catalog.NewVariant(p, vf.Slug)
			if err != nil {
				return fmt.Errorf("variant %q: %w", vf.Slug, err)
			}
			v.SetActive(!pf.Inactive)
			v.VariantPosition = vf.Position
			if v.VariantPosition == 0 {
				v.VariantPosition = (i + 1) * 10
			}
			if vf.Name != "" {
				v.Name = vf.Name
				v.ActiveName = true
			}
			if vf.Price != nil {
				if err := v.SetPrice(*vf.Price); err != nil {
					return err
				}
				v.ActivePrice = true
			}
			if err := l.repos.Products.Save(ctx, v); err != nil {
				return err
			}
			if err := l.flush(ctx, v); err != nil {
				return err
			}
			if err := l.saveValues(ctx, st, v, vf.Properties); err != nil {
				return err
			}
			res.Variants++
		}
	}
	return nil
}

// saveValues assigns the properties and stores their filter values. Select
// values are stored as option ids.
func (l *Loader) saveValues(ctx context.Context, st *state, p *catalog.Product, values map[string]string) error {
	for name, value := range values {
		prop := st.properties[name]
		if prop.IsSelect() {
			for _, o := range prop.Options {
				if o.Name == value {
					value = o.ID.String()
					break
				}
			}
		}
		if err := l.repos.Properties.AssignToProduct(ctx, p.ID, prop.ID, prop.Position); err != nil {
			return err
		}
		v := catalog.NewProductPropertyValue(p, prop.ID, value, catalog.PropertyValueFilter)
		if err := l.repos.Properties.SaveValue(ctx, &v); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) loadShippingMethods(ctx context.Context, f *Fixture, st *state, res *Result) error {
	for _, mf := range f.ShippingMethods {
		m, err := shipping.NewMethod(mf.Name, mf.Price)
		if err != nil {
			return err
		}
		m.Activate(mf.Priority)
		if tax, ok := st.taxes[mf.Tax]; ok {
			m.SetTax(tax)
		}
		if dt, ok := st.times[mf.DeliveryTime]; ok {
			m.SetDeliveryTime(dt)
		}
		for _, pf := range mf.Prices {
			m.AddPrice(pf.Price, pf.Priority)
		}
		if err := l.repos.ShippingMethods.Save(ctx, m); err != nil {
			return err
		}
		if err := l.flush(ctx, m); err != nil {
			return err
		}
		if err := l.saveCriteria(ctx, criteria.OwnerShippingMethod, m.ID, mf.Criteria); err != nil {
			return err
		}
		for i, pf := range mf.Prices {
			if err := l.saveCriteria(ctx, criteria.OwnerShippingMethodPrice, m.Prices[i].ID, pf.Criteria); err != nil {
				return err
			}
		}
		res.ShippingMethods++
	}
	return nil
}

func (l *Loader) loadPaymentMethods(ctx context.Context, f *Fixture, st *state, res *Result) error {
	for _, mf := range f.PaymentMethods {
		m, err := payment.NewMethod(mf.Name, mf.Price, mf.Processor)
		if err != nil {
			return err
		}
		m.Activate(mf.Priority)
		if tax, ok := st.taxes[mf.Tax]; ok {
			m.SetTax(tax)
		}
		for _, pf := range mf.Prices {
			m.AddPrice(pf.Price, pf.Priority)
		}
		if err := l.repos.PaymentMethods.Save(ctx, m); err != nil {
			return err
		}
		if err := l.flush(ctx, m); err != nil {
			return err
		}
		if err := l.saveCriteria(ctx, criteria.OwnerPaymentMethod, m.ID, mf.Criteria); err != nil {
			return err
		}
		for i, pf := range mf.Prices {
			if err := l.saveCriteria(ctx, criteria.OwnerPaymentMethodPrice, m.Prices[i].ID, pf.Criteria); err != nil {
				return err
			}
		}
		res.PaymentMethods++
	}
	return nil
}

func (l *Loader) saveCriteria(ctx context.Context, owner criteria.OwnerType, ownerID uuid.UUID, list []CriterionFixture) error {
	if len(list) == 0 {
		return nil
	}
	result := make([]criteria.Criterion, 0, len(list))
	for i, cf := range list {
		op, err := cf.operator()
		if err != nil {
			return err
		}
		c, err := criteria.NewCriterion(owner, ownerID, criteria.Kind(cf.Kind), op)
		if err != nil {
			return err
		}
		c.WithValue(cf.Value).WithValues(cf.Values...).WithExpression(cf.Expression).WithPosition((i + 1) * 10)
		result = append(result, *c)
	}
	if err := l.repos.Criteria.ReplaceFor(ctx, owner, ownerID, result); err != nil {
		return err
	}
	return l.publish(ctx, criteria.NewCriteriaSavedEvent(owner, ownerID))
}

func (l *Loader) loadPages(ctx context.Context, f *Fixture, _ *state, res *Result) error {
	for _, pf := range f.Pages {
		p, err := page.New(pf.Title, pf.Slug)
		if err != nil {
			return err
		}
		p.Update(pf.Title, pf.Body, pf.Active)
		if err := l.repos.Pages.Save(ctx, p); err != nil {
			return err
		}
		if err := l.flush(ctx, p); err != nil {
			return err
		}
		res.Pages++
	}
	return nil
}
