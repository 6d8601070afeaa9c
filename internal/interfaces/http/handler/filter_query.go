package handler

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	appcatalog "github.com/lfs/storefront/internal/application/catalog"
	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// rangeSeparator splits "min..max" values
const rangeSeparator = ".."

// ParseFilterQuery reads the filter form of a category page:
//
//	filter[<property id>]=value      select and text properties
//	filter[<property id>]=min..max   number properties
//	price=min..max
//	manufacturer=<id>                repeatable
//	sorting=price|-price|name|-name
func ParseFilterQuery(values url.Values) (appcatalog.FilterQuery, error) {
	var q appcatalog.FilterQuery

	for key, vals := range values {
		if !strings.HasPrefix(key, "filter[") || !strings.HasSuffix(key, "]") || len(vals) == 0 {
			continue
		}
		propertyID, err := uuid.Parse(key[len("filter[") : len(key)-1])
		if err != nil {
			return q, fmt.Errorf("invalid property id in %s", key)
		}
		f := catalog.PropertyFilter{PropertyID: propertyID}
		if lo, hi, ok := strings.Cut(vals[0], rangeSeparator); ok {
			r, err := parseFloatRange(lo, hi)
			if err != nil {
				return q, fmt.Errorf("invalid range in %s: %w", key, err)
			}
			f.Range = &r
		} else {
			f.Value = vals[0]
		}
		q.Filters = append(q.Filters, f)
	}
	sortFilters(q.Filters)

	if price := values.Get("price"); price != "" {
		lo, hi, ok := strings.Cut(price, rangeSeparator)
		if !ok {
			return q, errors.New("price must be min..max")
		}
		min, err := decimal.NewFromString(lo)
		if err != nil {
			return q, fmt.Errorf("invalid price minimum: %w", err)
		}
		max, err := decimal.NewFromString(hi)
		if err != nil {
			return q, fmt.Errorf("invalid price maximum: %w", err)
		}
		if min.GreaterThan(max) {
			min, max = max, min
		}
		q.Price = &catalog.PriceRange{Min: min, Max: max}
	}

	for _, m := range values["manufacturer"] {
		id, err := uuid.Parse(m)
		if err != nil {
			return q, fmt.Errorf("invalid manufacturer id %q", m)
		}
		q.Manufacturers = append(q.Manufacturers, id)
	}

	if sorting := values.Get("sorting"); sorting != "" {
		if _, ok := catalog.OrderClause(sorting); !ok {
			return q, fmt.Errorf("unknown sorting %q", sorting)
		}
		q.Sorting = sorting
	}
	return q, nil
}

func parseFloatRange(lo, hi string) (catalog.FloatRange, error) {
	min, err := parseBound(lo)
	if err != nil {
		return catalog.FloatRange{}, err
	}
	max, err := parseBound(hi)
	if err != nil {
		return catalog.FloatRange{}, err
	}
	if min > max {
		min, max = max, min
	}
	return catalog.FloatRange{Min: min, Max: max}, nil
}

// parseBound parses a finite range bound
func parseBound(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("bound %q is not a finite number", s)
	}
	return v, nil
}

// sortFilters orders filters by property so equal forms share cache keys
func sortFilters(filters []catalog.PropertyFilter) {
	slices.SortFunc(filters, func(a, b catalog.PropertyFilter) int {
		return strings.Compare(a.PropertyID.String(), b.PropertyID.String())
	})
}
