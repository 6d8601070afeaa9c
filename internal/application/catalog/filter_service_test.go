package catalog

import (
	"context"
	"slices"
	"testing"

	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memFilterRepository answers filter queries from slices.
type memFilterRepository struct {
	products   []catalog.Product
	values     []catalog.ProductPropertyValue
	assignment map[uuid.UUID][]uuid.UUID
	calls      int
}

func (r *memFilterRepository) CategoryProducts(_ context.Context, categoryIDs []uuid.UUID) ([]catalog.Product, error) {
	r.calls++
	var result []catalog.Product
	for _, p := range r.products {
		if !p.Active || p.IsVariant() {
			continue
		}
		for _, c := range r.assignment[p.ID] {
			if slices.Contains(categoryIDs, c) {
				result = append(result, p)
				break
			}
		}
	}
	return result, nil
}

func (r *memFilterRepository) MatchingProductIDs(_ context.Context, productIDs []uuid.UUID, filters []catalog.PropertyFilter) ([]uuid.UUID, error) {
	var result []uuid.UUID
	for _, id := range productIDs {
		matched := 0
		for _, f := range filters {
			for _, v := range r.values {
				if v.ProductID != id || v.PropertyID != f.PropertyID || v.Type != catalog.PropertyValueFilter {
					continue
				}
				if f.IsRange() {
					if v.ValueAsFloat != nil && f.Range.Contains(*v.ValueAsFloat) {
						matched++
						break
					}
				} else if v.Value == f.Value {
					matched++
					break
				}
			}
		}
		if matched == len(filters) {
			result = append(result, id)
		}
	}
	return result, nil
}

func (r *memFilterRepository) Variants(_ context.Context, parentIDs []uuid.UUID, activeOnly bool) ([]catalog.Product, error) {
	var result []catalog.Product
	for _, p := range r.products {
		if p.ParentID != nil && slices.Contains(parentIDs, *p.ParentID) && (p.Active || !activeOnly) {
			result = append(result, p)
		}
	}
	return result, nil
}

func (r *memFilterRepository) FilterValues(_ context.Context, productIDs []uuid.UUID) ([]catalog.ProductPropertyValue, error) {
	var result []catalog.ProductPropertyValue
	for _, v := range r.values {
		if v.Type == catalog.PropertyValueFilter && slices.Contains(productIDs, v.ProductID) {
			result = append(result, v)
		}
	}
	return result, nil
}

func (r *memFilterRepository) ProductsByIDs(_ context.Context, ids []uuid.UUID, orderClause string) ([]catalog.Product, error) {
	var result []catalog.Product
	for _, p := range r.products {
		if slices.Contains(ids, p.ID) {
			result = append(result, p)
		}
	}
	if orderClause == "effective_price desc" {
		slices.SortStableFunc(result, func(a, b catalog.Product) int {
			return b.EffectivePrice.Cmp(a.EffectivePrice)
		})
	}
	return result, nil
}

type stubCategoryRepository struct {
	catalog.CategoryRepository
	descendants []catalog.Category
}

func (r *stubCategoryRepository) FindDescendants(_ context.Context, _ uuid.UUID) ([]catalog.Category, error) {
	return r.descendants, nil
}

type stubPropertyRepository struct {
	catalog.PropertyRepository
	properties []catalog.Property
}

func (r *stubPropertyRepository) FindAll(_ context.Context) ([]catalog.Property, error) {
	return r.properties, nil
}

type filterFixture struct {
	category *catalog.Category
	color    *catalog.Property
	red      catalog.PropertyOption
	blue     catalog.PropertyOption
	size     *catalog.Property
	a, b, c  *catalog.Product
	maker    uuid.UUID
	repo     *memFilterRepository
	service  *FilterService
}

func newProduct(t *testing.T, slug string, price int64) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(slug, slug, decimal.NewFromInt(price))
	require.NoError(t, err)
	p.SetActive(true)
	return p
}

func newFilterFixture(t *testing.T) *filterFixture {
	t.Helper()
	f := &filterFixture{repo: &memFilterRepository{assignment: map[uuid.UUID][]uuid.UUID{}}}

	var err error
	f.category, err = catalog.NewCategory("Shirts", "shirts")
	require.NoError(t, err)

	f.color, err = catalog.NewProperty("Color", catalog.PropertyTypeSelect)
	require.NoError(t, err)
	f.color.Position = 2
	f.red = catalog.PropertyOption{ID: uuid.New(), PropertyID: f.color.ID, Name: "Red", Position: 1}
	f.blue = catalog.PropertyOption{ID: uuid.New(), PropertyID: f.color.ID, Name: "Blue", Position: 2}
	f.color.Options = []catalog.PropertyOption{f.blue, f.red}

	f.size, err = catalog.NewProperty("Size", catalog.PropertyTypeNumber)
	require.NoError(t, err)
	f.size.Position = 1

	f.maker = uuid.New()
	f.a = newProduct(t, "a", 10)
	f.a.ManufacturerID = &f.maker

	f.b = newProduct(t, "b", 0)
	require.NoError(t, f.b.SetSubType(catalog.SubTypeProductWithVariants))
	b1, err := catalog.NewVariant(f.b, "b1")
	require.NoError(t, err)
	require.NoError(t, b1.SetPrice(decimal.NewFromInt(20)))
	b1.SetActive(true)
	b2, err := catalog.NewVariant(f.b, "b2")
	require.NoError(t, err)
	require.NoError(t, b2.SetPrice(decimal.NewFromInt(25)))
	b2.SetActive(true)

	f.c = newProduct(t, "c", 100)

	f.repo.products = []catalog.Product{*f.a, *f.b, *b1, *b2, *f.c}
	for _, p := range []*catalog.Product{f.a, f.b, f.c} {
		f.repo.assignment[p.ID] = []uuid.UUID{f.category.ID}
	}
	f.repo.values = []catalog.ProductPropertyValue{
		catalog.NewProductPropertyValue(f.a, f.color.ID, f.red.ID.String(), catalog.PropertyValueFilter),
		catalog.NewProductPropertyValue(b1, f.color.ID, f.red.ID.String(), catalog.PropertyValueFilter),
		catalog.NewProductPropertyValue(b2, f.color.ID, f.blue.ID.String(), catalog.PropertyValueFilter),
		catalog.NewProductPropertyValue(f.c, f.color.ID, f.blue.ID.String(), catalog.PropertyValueFilter),
		catalog.NewProductPropertyValue(f.a, f.size.ID, "38", catalog.PropertyValueFilter),
		catalog.NewProductPropertyValue(f.c, f.size.ID, "42", catalog.PropertyValueFilter),
		catalog.NewProductPropertyValue(f.c, f.size.ID, "44", catalog.PropertyValueDisplay),
	}

	f.service = NewFilterService(
		&stubCategoryRepository{},
		&stubPropertyRepository{properties: []catalog.Property{*f.color, *f.size}},
		f.repo,
	)
	return f
}

func slugs(products []catalog.Product) []string {
	result := make([]string, 0, len(products))
	for _, p := range products {
		result = append(result, p.Slug)
	}
	return result
}

func TestFilteredProducts(t *testing.T) {
	ctx := context.Background()
	f := newFilterFixture(t)

	t.Run("no filters", func(t *testing.T) {
		products, err := f.service.FilteredProducts(ctx, f.category, FilterQuery{})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, slugs(products))
	})

	t.Run("select filter maps variants to parents", func(t *testing.T) {
		products, err := f.service.FilteredProducts(ctx, f.category, FilterQuery{
			Filters: []catalog.PropertyFilter{{PropertyID: f.color.ID, Value: f.red.ID.String()}},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, slugs(products))
	})

	t.Run("all filters must match", func(t *testing.T) {
		products, err := f.service.FilteredProducts(ctx, f.category, FilterQuery{
			Filters: []catalog.PropertyFilter{
				{PropertyID: f.color.ID, Value: f.blue.ID.String()},
				{PropertyID: f.size.ID, Range: &catalog.FloatRange{Min: 40, Max: 43}},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"c"}, slugs(products))
	})

	t.Run("price filter uses variant prices", func(t *testing.T) {
		products, err := f.service.FilteredProducts(ctx, f.category, FilterQuery{
			Price: &catalog.PriceRange{Min: decimal.NewFromInt(15), Max: decimal.NewFromInt(22)},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, slugs(products))
	})

	t.Run("manufacturer filter", func(t *testing.T) {
		products, err := f.service.FilteredProducts(ctx, f.category, FilterQuery{Manufacturers: []uuid.UUID{f.maker}})
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, slugs(products))
	})

	t.Run("sorting", func(t *testing.T) {
		products, err := f.service.FilteredProducts(ctx, f.category, FilterQuery{Sorting: "-price"})
		require.NoError(t, err)
		assert.Equal(t, "c", products[0].Slug)
	})
}

func TestProductFilters(t *testing.T) {
	ctx := context.Background()
	f := newFilterFixture(t)

	groups, err := f.service.ProductFilters(ctx, f.category, FilterQuery{})
	require.NoError(t, err)
	require.Len(t, groups, 2)

	size := groups[0]
	assert.Equal(t, "Size", size.Name)
	assert.True(t, size.Number)
	// 38 and 42 give a step of 1; empty buckets fold into the next one
	require.Len(t, size.Items, 2)
	assert.Equal(t, 1.0, size.Items[0].Min)
	assert.Equal(t, 38.0, size.Items[0].Max)
	assert.Equal(t, 1, size.Items[0].Quantity)
	assert.Equal(t, 39.0, size.Items[1].Min)
	assert.Equal(t, 42.0, size.Items[1].Max)
	assert.Equal(t, 1, size.Items[1].Quantity)

	color := groups[1]
	assert.False(t, color.ShowReset)
	require.Len(t, color.Items, 2)
	assert.Equal(t, "Red", color.Items[0].Name)
	assert.Equal(t, 2, color.Items[0].Quantity)
	assert.Equal(t, "Blue", color.Items[1].Name)
	assert.Equal(t, 2, color.Items[1].Quantity)
}

func TestProductFilters_ActiveFilterShownAlone(t *testing.T) {
	ctx := context.Background()
	f := newFilterFixture(t)

	groups, err := f.service.ProductFilters(ctx, f.category, FilterQuery{
		Filters: []catalog.PropertyFilter{{PropertyID: f.color.ID, Value: f.red.ID.String()}},
	})
	require.NoError(t, err)

	var color *FilterGroup
	for i := range groups {
		if groups[i].PropertyID == f.color.ID {
			color = &groups[i]
		}
	}
	require.NotNil(t, color)
	assert.True(t, color.ShowReset)
	require.Len(t, color.Items, 1)
	assert.Equal(t, "Red", color.Items[0].Name)
	assert.False(t, color.Items[0].ShowQuantity)
}

func TestPriceFilters(t *testing.T) {
	ctx := context.Background()
	f := newFilterFixture(t)

	result, err := f.service.PriceFilters(ctx, f.category, FilterQuery{})
	require.NoError(t, err)
	assert.True(t, result.ShowQuantity)
	require.Len(t, result.Items, 2)
	assert.Equal(t, FilterItem{Min: 1, Max: 50, Quantity: 3, ShowQuantity: true}, result.Items[0])
	assert.Equal(t, FilterItem{Min: 51, Max: 100, Quantity: 1, ShowQuantity: true}, result.Items[1])

	result, err = f.service.PriceFilters(ctx, f.category, FilterQuery{
		Price: &catalog.PriceRange{Min: decimal.NewFromInt(1), Max: decimal.NewFromInt(50)},
	})
	require.NoError(t, err)
	assert.True(t, result.ShowReset)
	assert.Equal(t, []FilterItem{{Min: 1, Max: 50}}, result.Items)
}

func TestFilterQuery_FiltersKey(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")

	two := FilterQuery{Filters: []catalog.PropertyFilter{
		{PropertyID: a, Value: "x"},
		{PropertyID: b, Value: "y"},
	}}
	one := FilterQuery{Filters: []catalog.PropertyFilter{
		{PropertyID: a, Value: "x" + b.String() + "|y"},
	}}
	assert.NotEqual(t, two.filtersKey(), one.filtersKey())
	assert.Equal(t, a.String()+"|v|x;"+b.String()+"|v|y", two.filtersKey())

	spaced := FilterQuery{Filters: []catalog.PropertyFilter{{PropertyID: a, Value: "dark red;x"}}}
	assert.Equal(t, a.String()+"|v|dark+red%3Bx", spaced.filtersKey())

	ranged := FilterQuery{
		Filters:       []catalog.PropertyFilter{{PropertyID: a, Range: &catalog.FloatRange{Min: 1, Max: 2.5}}},
		Manufacturers: []uuid.UUID{b},
	}
	assert.Equal(t, a.String()+"|r|1|2.5;m|"+b.String(), ranged.filtersKey())
	assert.Empty(t, FilterQuery{}.filtersKey())
}

func TestAutomaticStep(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		table    []stepBound
		want     int
	}{
		{"equal values use max", 4, 4, numberSteps, 5},
		{"zero number", 0, 0, numberSteps, 1},
		{"zero price", 0, 0, priceSteps, 3},
		{"thirds", 10, 100, priceSteps, 50},
		{"odd table entry", 0, 9000, priceSteps, 500},
		{"above table", 0, 40000, priceSteps, 14000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, automaticStep(tt.min, tt.max, tt.table))
		})
	}
}

func TestDropEmpty(t *testing.T) {
	items := []FilterItem{
		{Min: 1, Max: 10},
		{Min: 11, Max: 20, Quantity: 2},
		{Min: 21, Max: 30},
	}
	assert.Equal(t, []FilterItem{{Min: 1, Max: 20, Quantity: 2}}, dropEmpty(items))
}

func TestManualBuckets(t *testing.T) {
	steps := []catalog.FilterStep{{Start: 20}, {Start: 0}, {Start: 10}}
	items := manualBuckets(steps)
	require.Len(t, items, 2)
	assert.Equal(t, 0.0, items[0].Min)
	assert.Equal(t, 10.0, items[0].Max)
	assert.Equal(t, 11.0, items[1].Min)
	assert.Equal(t, 20.0, items[1].Max)
}
