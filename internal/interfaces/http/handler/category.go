package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	appcatalog "github.com/lfs/storefront/internal/application/catalog"
	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/lfs/storefront/internal/interfaces/http/dto"
)

// CategoryFilterer runs the product filters of category pages
type CategoryFilterer interface {
	Category(ctx context.Context, slug string) (*catalog.Category, error)
	FilteredProducts(ctx context.Context, category *catalog.Category, q appcatalog.FilterQuery) ([]catalog.Product, error)
	ProductFilters(ctx context.Context, category *catalog.Category, q appcatalog.FilterQuery) ([]appcatalog.FilterGroup, error)
	PriceFilters(ctx context.Context, category *catalog.Category, q appcatalog.FilterQuery) (*appcatalog.PriceFilters, error)
}

// CategoryHandler serves the filtered product lists of categories
type CategoryHandler struct {
	BaseHandler
	filters CategoryFilterer
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(filters CategoryFilterer) *CategoryHandler {
	return &CategoryHandler{filters: filters}
}

// request resolves the category and the filter form of the request
func (h *CategoryHandler) request(c *gin.Context) (*catalog.Category, appcatalog.FilterQuery, bool) {
	q, err := ParseFilterQuery(c.Request.URL.Query())
	if err != nil {
		h.BadRequest(c, err.Error())
		return nil, q, false
	}
	category, err := h.filters.Category(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return nil, q, false
	}
	return category, q, true
}

// Products returns one page of the filtered products.
//
// GET /categories/:slug/products
func (h *CategoryHandler) Products(c *gin.Context) {
	var page dto.PageRequest
	if !h.BindQuery(c, &page) {
		return
	}
	page.Normalize()

	category, q, ok := h.request(c)
	if !ok {
		return
	}
	products, err := h.filters.FilteredProducts(c.Request.Context(), category, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	start, end := page.Bounds(len(products))
	h.SuccessWithMeta(c, dto.ToProductSummaries(products[start:end]), int64(len(products)), page.Page, page.PageSize)
}

// Filters returns the property filter boxes with product counts.
//
// GET /categories/:slug/filters
func (h *CategoryHandler) Filters(c *gin.Context) {
	category, q, ok := h.request(c)
	if !ok {
		return
	}
	groups, err := h.filters.ProductFilters(c.Request.Context(), category, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, groups)
}

// PriceFilters returns the price ranges of the category.
//
// GET /categories/:slug/price-filters
func (h *CategoryHandler) PriceFilters(c *gin.Context) {
	category, q, ok := h.request(c)
	if !ok {
		return
	}
	filters, err := h.filters.PriceFilters(c.Request.Context(), category, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, filters)
}
