package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/lfs/storefront/internal/interfaces/http/dto"
)

// TopsellerFinder returns the best selling products
type TopsellerFinder interface {
	Topseller(ctx context.Context, limit int) ([]catalog.Product, error)
	TopsellerForCategory(ctx context.Context, categoryID uuid.UUID, limit int) ([]catalog.Product, error)
}

// MarketingHandler serves the topseller lists
type MarketingHandler struct {
	BaseHandler
	topseller TopsellerFinder
}

// NewMarketingHandler creates a new MarketingHandler
func NewMarketingHandler(topseller TopsellerFinder) *MarketingHandler {
	return &MarketingHandler{topseller: topseller}
}

// Topseller returns the topseller of the shop or of a category tree.
// A limit of 0 uses the default.
//
// GET /topseller
func (h *MarketingHandler) Topseller(c *gin.Context) {
	var req dto.TopsellerRequest
	if !h.BindQuery(c, &req) {
		return
	}

	var (
		products []catalog.Product
		err      error
	)
	if req.CategoryID != "" {
		products, err = h.topseller.TopsellerForCategory(c.Request.Context(), uuid.MustParse(req.CategoryID), req.Limit)
	} else {
		products, err = h.topseller.Topseller(c.Request.Context(), req.Limit)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToProductSummaries(products))
}
