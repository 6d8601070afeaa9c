package persistence

import (
	"strings"

	"github.com/lfs/storefront/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"name":             true,
	"slug":             true,
	"sku":              true,
	"price":            true,
	"effective_price":  true,
	"variant_position": true,
	"stock_amount":     true,
}

// CategorySortFields contains allowed sort fields for categories
var CategorySortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"slug":       true,
	"position":   true,
	"level":      true,
}

// applyPagedFilter applies search, ordering and pagination. Unknown sort
// fields fall back to defaultField.
func applyPagedFilter(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	query = applySearch(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	if field != "" {
		dir := "ASC"
		if filter.OrderDir != "" {
			dir = ValidateSortOrder(filter.OrderDir)
		}
		query = query.Order(field + " " + dir)
	}
	return query
}

// applySearch matches the search term against name and slug
func applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search == "" {
		return query
	}
	pattern := "%" + strings.ToLower(filter.Search) + "%"
	return query.Where("LOWER(name) LIKE ? OR LOWER(slug) LIKE ?", pattern, pattern)
}
