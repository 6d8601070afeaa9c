package catalog

import (
	"cmp"
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/application/caching"
	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/lfs/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// FilterQuery is the state of the filter form of a category page.
type FilterQuery struct {
	Filters       []catalog.PropertyFilter
	Price         *catalog.PriceRange
	Manufacturers []uuid.UUID
	Sorting       string
}

// filtersKey renders the property and manufacturer filters for cache keys.
// Pairs are joined with ';' and text values are escaped, so distinct filter
// sets never share a key.
func (q FilterQuery) filtersKey() string {
	parts := make([]string, 0, len(q.Filters)+len(q.Manufacturers))
	for _, f := range q.Filters {
		if f.IsRange() {
			parts = append(parts, f.PropertyID.String()+"|r|"+
				strconv.FormatFloat(f.Range.Min, 'f', -1, 64)+"|"+
				strconv.FormatFloat(f.Range.Max, 'f', -1, 64))
		} else {
			parts = append(parts, f.PropertyID.String()+"|v|"+url.QueryEscape(f.Value))
		}
	}
	for _, m := range q.Manufacturers {
		parts = append(parts, "m|"+m.String())
	}
	return strings.Join(parts, ";")
}

func (q FilterQuery) priceKey() string {
	if q.Price == nil {
		return ""
	}
	return q.Price.Min.String() + "|" + q.Price.Max.String()
}

func (q FilterQuery) filterFor(propertyID uuid.UUID) (catalog.PropertyFilter, bool) {
	for _, f := range q.Filters {
		if f.PropertyID == propertyID {
			return f, true
		}
	}
	return catalog.PropertyFilter{}, false
}

// FilterGroup is the filter box of one property.
type FilterGroup struct {
	PropertyID uuid.UUID    `json:"property_id"`
	Name       string       `json:"name"`
	Title      string       `json:"title"`
	Unit       string       `json:"unit"`
	Position   int          `json:"position"`
	Number     bool         `json:"number"`
	ShowReset  bool         `json:"show_reset"`
	Items      []FilterItem `json:"items"`
}

// PriceFilters are the price ranges offered for a category.
type PriceFilters struct {
	ShowReset    bool         `json:"show_reset"`
	ShowQuantity bool         `json:"show_quantity"`
	Items        []FilterItem `json:"items"`
}

// FilterService computes the products and filter boxes of category pages.
type FilterService struct {
	categories catalog.CategoryRepository
	properties catalog.PropertyRepository
	filters    catalog.FilterRepository
	store      caching.Store
	keys       caching.Keys
	ttl        time.Duration
	logger     *zap.Logger
}

// FilterServiceOption configures a FilterService
type FilterServiceOption func(*FilterService)

// WithFilterCache caches computed filters in store
func WithFilterCache(store caching.Store, keys caching.Keys, ttl time.Duration) FilterServiceOption {
	return func(s *FilterService) {
		s.store = store
		s.keys = keys
		s.ttl = ttl
	}
}

// WithFilterLogger sets the logger
func WithFilterLogger(logger *zap.Logger) FilterServiceOption {
	return func(s *FilterService) {
		s.logger = logger
	}
}

// NewFilterService creates a new FilterService
func NewFilterService(
	categories catalog.CategoryRepository,
	properties catalog.PropertyRepository,
	filters catalog.FilterRepository,
	opts ...FilterServiceOption,
) *FilterService {
	s := &FilterService{
		categories: categories,
		properties: properties,
		filters:    filters,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Category loads a category by slug
func (s *FilterService) Category(ctx context.Context, slug string) (*catalog.Category, error) {
	return s.categories.FindBySlug(ctx, slug)
}

// FilteredProducts returns the products of a category matching the query.
// Variants never show up themselves: a matching variant selects its parent.
func (s *FilterService) FilteredProducts(ctx context.Context, category *catalog.Category, q FilterQuery) ([]catalog.Product, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "filter", "filtered_products",
		telemetry.WithAttribute(telemetry.SpanAttrCategory, category.Slug),
		telemetry.WithAttribute("filters", len(q.Filters)),
	)
	defer span.End()

	products, err := s.filteredProducts(ctx, category, q)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, "products", len(products))
	return products, nil
}

func (s *FilterService) filteredProducts(ctx context.Context, category *catalog.Category, q FilterQuery) ([]catalog.Product, error) {
	categoryIDs := []uuid.UUID{category.ID}
	if category.ShowAllProducts {
		descendants, err := s.categories.FindDescendants(ctx, category.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load subcategories of %s: %w", category.Slug, err)
		}
		for _, c := range descendants {
			categoryIDs = append(categoryIDs, c.ID)
		}
	}

	base, err := s.filters.CategoryProducts(ctx, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load products of %s: %w", category.Slug, err)
	}
	if len(base) == 0 {
		return nil, nil
	}

	ids := productIDs(base)
	if len(q.Filters) > 0 {
		if ids, err = s.matchProperties(ctx, ids, q.Filters); err != nil {
			return nil, err
		}
	}
	if q.Price != nil && len(ids) > 0 {
		if ids, err = s.matchPrice(ctx, base, ids, *q.Price); err != nil {
			return nil, err
		}
	}
	if len(q.Manufacturers) > 0 {
		ids = matchManufacturers(base, ids, q.Manufacturers)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	clause, ok := catalog.OrderClause(q.Sorting)
	if !ok && q.Sorting != "" {
		s.logger.Debug("ignoring unknown sorting", zap.String("sorting", q.Sorting))
	}
	products, err := s.filters.ProductsByIDs(ctx, ids, clause)
	if err != nil {
		return nil, fmt.Errorf("failed to load filtered products: %w", err)
	}
	return products, nil
}

// matchProperties keeps the products that have a value for every filter,
// directly or through one of their variants.
func (s *FilterService) matchProperties(ctx context.Context, ids []uuid.UUID, filters []catalog.PropertyFilter) ([]uuid.UUID, error) {
	matched, err := s.filters.MatchingProductIDs(ctx, ids, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to match filters: %w", err)
	}
	set := make(map[uuid.UUID]bool, len(matched))
	for _, id := range matched {
		set[id] = true
	}

	variants, err := s.filters.Variants(ctx, ids, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load variants: %w", err)
	}
	if len(variants) > 0 {
		parentOf := make(map[uuid.UUID]uuid.UUID, len(variants))
		for _, v := range variants {
			if v.ParentID != nil {
				parentOf[v.ID] = *v.ParentID
			}
		}
		matchedVariants, err := s.filters.MatchingProductIDs(ctx, productIDs(variants), filters)
		if err != nil {
			return nil, fmt.Errorf("failed to match variant filters: %w", err)
		}
		for _, id := range matchedVariants {
			if parent, ok := parentOf[id]; ok {
				set[parent] = true
			}
		}
	}
	return keep(ids, set), nil
}

// matchPrice keeps the products whose effective price, or the effective
// price of one of their variants, lies in the range.
func (s *FilterService) matchPrice(ctx context.Context, base []catalog.Product, ids []uuid.UUID, r catalog.PriceRange) ([]uuid.UUID, error) {
	set := make(map[uuid.UUID]bool)
	for _, p := range base {
		if r.Contains(p.EffectivePrice) {
			set[p.ID] = true
		}
	}
	variants, err := s.filters.Variants(ctx, ids, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load variants: %w", err)
	}
	for _, v := range variants {
		if v.ParentID != nil && r.Contains(v.EffectivePrice) {
			set[*v.ParentID] = true
		}
	}
	return keep(ids, set), nil
}

func matchManufacturers(base []catalog.Product, ids []uuid.UUID, manufacturers []uuid.UUID) []uuid.UUID {
	set := make(map[uuid.UUID]bool)
	for _, p := range base {
		if p.ManufacturerID != nil && slices.Contains(manufacturers, *p.ManufacturerID) {
			set[p.ID] = true
		}
	}
	return keep(ids, set)
}

// ProductFilters returns the filter boxes for the products currently shown
// in a category, ordered by property position.
func (s *FilterService) ProductFilters(ctx context.Context, category *catalog.Category, q FilterQuery) ([]FilterGroup, error) {
	key := s.keys.ProductFilters(category.Slug, q.filtersKey(), q.priceKey(), q.Sorting)
	return caching.Remember(ctx, s.store, s.logger, key, s.ttl, func() ([]FilterGroup, error) {
		ctx, span := telemetry.StartServiceSpan(ctx, "filter", "product_filters",
			telemetry.WithAttribute(telemetry.SpanAttrCategory, category.Slug),
		)
		defer span.End()

		groups, err := s.productFilters(ctx, category, q)
		if err != nil {
			telemetry.RecordError(span, err)
		}
		return groups, err
	})
}

func (s *FilterService) productFilters(ctx context.Context, category *catalog.Category, q FilterQuery) ([]FilterGroup, error) {
	products, err := s.filteredProducts(ctx, category, q)
	if err != nil || len(products) == 0 {
		return []FilterGroup{}, err
	}

	ids := productIDs(products)
	variants, err := s.filters.Variants(ctx, ids, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load variants: %w", err)
	}
	ids = append(ids, productIDs(variants)...)

	values, err := s.filters.FilterValues(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load filter values: %w", err)
	}
	if len(values) == 0 {
		return []FilterGroup{}, nil
	}

	properties, err := s.properties.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load properties: %w", err)
	}

	byProperty := make(map[uuid.UUID][]catalog.ProductPropertyValue)
	for _, v := range values {
		byProperty[v.PropertyID] = append(byProperty[v.PropertyID], v)
	}

	groups := make([]FilterGroup, 0, len(byProperty))
	for i := range properties {
		prop := &properties[i]
		propValues, ok := byProperty[prop.ID]
		if !ok || !prop.Filterable {
			continue
		}
		var group *FilterGroup
		if prop.IsNumber() {
			group = numberGroup(prop, propValues, q)
		} else {
			group = choiceGroup(prop, propValues, q)
		}
		if group != nil {
			groups = append(groups, *group)
		}
	}
	slices.SortStableFunc(groups, func(a, b FilterGroup) int {
		return cmp.Compare(a.Position, b.Position)
	})
	return groups, nil
}

func newGroup(prop *catalog.Property) *FilterGroup {
	return &FilterGroup{
		PropertyID: prop.ID,
		Name:       prop.Name,
		Title:      prop.Title,
		Unit:       prop.Unit,
		Position:   prop.Position,
		Number:     prop.IsNumber(),
	}
}

// numberGroup builds the ranges of a number property. A property that is
// already filtered shows just the active range.
func numberGroup(prop *catalog.Property, values []catalog.ProductPropertyValue, q FilterQuery) *FilterGroup {
	group := newGroup(prop)
	if f, ok := q.filterFor(prop.ID); ok && f.IsRange() {
		group.ShowReset = true
		group.Items = []FilterItem{{Min: f.Range.Min, Max: f.Range.Max}}
		return group
	}

	floats := make([]float64, 0, len(values))
	for _, v := range values {
		if v.ValueAsFloat != nil {
			floats = append(floats, *v.ValueAsFloat)
		}
	}
	if len(floats) == 0 {
		return nil
	}
	min, max := slices.Min(floats), slices.Max(floats)

	var items []FilterItem
	switch prop.StepType {
	case catalog.StepTypeManual:
		items = manualBuckets(prop.Steps)
	case catalog.StepTypeFixed:
		items = buckets(max, prop.Step)
	default:
		items = buckets(max, automaticStep(min, max, numberSteps))
	}
	for i := range items {
		items[i].Quantity = countInRange(values, items[i].Min, items[i].Max)
	}
	if !prop.DisplayNoResults {
		items = dropEmpty(items)
	}
	group.Items = items
	return group
}

// countInRange counts each parent/value pair once, so a product whose
// variants share a value is counted one time.
func countInRange(values []catalog.ProductPropertyValue, min, max float64) int {
	seen := make(map[string]bool)
	for _, v := range values {
		if v.ValueAsFloat == nil || *v.ValueAsFloat < min || *v.ValueAsFloat > max {
			continue
		}
		seen[v.ParentID.String()+"|"+v.Value] = true
	}
	return len(seen)
}

// choiceGroup builds the values of a select or text property with the
// number of products having them. Select values show the option name.
func choiceGroup(prop *catalog.Property, values []catalog.ProductPropertyValue, q FilterQuery) *FilterGroup {
	counts := make(map[string]int)
	seen := make(map[string]bool)
	for _, v := range values {
		k := v.ParentID.String() + "|" + v.Value
		if seen[k] {
			continue
		}
		seen[k] = true
		counts[v.Value]++
	}

	distinct := make([]string, 0, len(counts))
	for value := range counts {
		distinct = append(distinct, value)
	}
	slices.Sort(distinct)

	group := newGroup(prop)
	active, isSet := q.filterFor(prop.ID)
	group.ShowReset = isSet

	for _, value := range distinct {
		item := FilterItem{Value: value, Name: value, Position: 1, Quantity: counts[value], ShowQuantity: true}
		if prop.IsSelect() {
			if id, err := uuid.Parse(value); err == nil {
				if opt, ok := prop.Option(id); ok {
					item.Name = opt.Name
					item.Position = opt.Position
				}
			}
		}
		if isSet {
			if active.Value == value {
				item.ShowQuantity = false
				group.Items = []FilterItem{item}
			}
			continue
		}
		group.Items = append(group.Items, item)
	}
	if len(group.Items) == 0 {
		return nil
	}
	slices.SortStableFunc(group.Items, func(a, b FilterItem) int {
		return cmp.Compare(a.Position, b.Position)
	})
	return group
}

// PriceFilters returns the price ranges of the products shown in a category.
// With an active price filter only that range is returned.
func (s *FilterService) PriceFilters(ctx context.Context, category *catalog.Category, q FilterQuery) (*PriceFilters, error) {
	key := s.keys.PriceFilters(category.Slug, q.filtersKey(), q.priceKey(), q.Sorting)
	return caching.Remember(ctx, s.store, s.logger, key, s.ttl, func() (*PriceFilters, error) {
		ctx, span := telemetry.StartServiceSpan(ctx, "filter", "price_filters",
			telemetry.WithAttribute(telemetry.SpanAttrCategory, category.Slug),
		)
		defer span.End()

		result, err := s.priceFilters(ctx, category, q)
		if err != nil {
			telemetry.RecordError(span, err)
		}
		return result, err
	})
}

func (s *FilterService) priceFilters(ctx context.Context, category *catalog.Category, q FilterQuery) (*PriceFilters, error) {
	products, err := s.filteredProducts(ctx, category, q)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return &PriceFilters{Items: []FilterItem{}}, nil
	}
	if q.Price != nil {
		return &PriceFilters{
			ShowReset: true,
			Items: []FilterItem{{
				Min: q.Price.Min.InexactFloat64(),
				Max: q.Price.Max.InexactFloat64(),
			}},
		}, nil
	}

	variants, err := s.filters.Variants(ctx, productIDs(products), true)
	if err != nil {
		return nil, fmt.Errorf("failed to load variants: %w", err)
	}
	prices := make([]float64, 0, len(products)+len(variants))
	for _, v := range variants {
		prices = append(prices, v.EffectivePrice.InexactFloat64())
	}
	for _, p := range products {
		if !p.IsProductWithVariants() {
			prices = append(prices, p.EffectivePrice.InexactFloat64())
		}
	}
	if len(prices) == 0 {
		return &PriceFilters{Items: []FilterItem{}}, nil
	}

	min, max := slices.Min(prices), slices.Max(prices)
	items := buckets(max, automaticStep(min, max, priceSteps))
	for i := range items {
		for _, p := range prices {
			if p >= items[i].Min && p <= items[i].Max {
				items[i].Quantity++
			}
		}
	}
	return &PriceFilters{ShowQuantity: true, Items: dropEmpty(items)}, nil
}

func productIDs(products []catalog.Product) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

// keep returns the ids contained in set, preserving order.
func keep(ids []uuid.UUID, set map[uuid.UUID]bool) []uuid.UUID {
	result := make([]uuid.UUID, 0, len(set))
	for _, id := range ids {
		if set[id] {
			result = append(result, id)
		}
	}
	return result
}
