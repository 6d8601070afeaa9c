package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	appcatalog "github.com/lfs/storefront/internal/application/catalog"
	"github.com/lfs/storefront/internal/application/checkout"
	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/lfs/storefront/internal/domain/criteria"
	"github.com/lfs/storefront/internal/domain/shipping"
)

// ProductViewer resolves products and prices them for a visitor
type ProductViewer interface {
	View(ctx context.Context, slug string, subject *criteria.Subject) (*appcatalog.ProductView, error)
	ResolveBySlug(ctx context.Context, slug string) (*catalog.ResolvedProduct, error)
}

// DeliveryInformer returns the delivery time of a single product
type DeliveryInformer interface {
	DeliveryInfo(ctx context.Context, sess *checkout.Session, r *catalog.ResolvedProduct) (shipping.DeliveryInfo, error)
}

// ProductHandler serves the product detail pages
type ProductHandler struct {
	BaseHandler
	products ProductViewer
	delivery DeliveryInformer
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(sessions SessionLoader, products ProductViewer, delivery DeliveryInformer) *ProductHandler {
	return &ProductHandler{
		BaseHandler: BaseHandler{sessions: sessions},
		products:    products,
		delivery:    delivery,
	}
}

// Get returns the resolved product with the prices of the visitor.
// Variants show the values inherited from their parent.
//
// GET /products/:slug
func (h *ProductHandler) Get(c *gin.Context) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	view, err := h.products.View(c.Request.Context(), c.Param("slug"), sess.Subject)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Delivery returns whether the product can be delivered to the visitor
// and when.
//
// GET /products/:slug/delivery
func (h *ProductHandler) Delivery(c *gin.Context) {
	r, err := h.products.ResolveBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	info, err := h.delivery.DeliveryInfo(c.Request.Context(), sess, r)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, info)
}
