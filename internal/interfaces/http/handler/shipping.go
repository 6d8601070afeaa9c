package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/application/checkout"
	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/lfs/storefront/internal/domain/shipping"
	"github.com/lfs/storefront/internal/interfaces/http/dto"
)

// ShippingRules selects shipping methods and computes their costs
type ShippingRules interface {
	ValidMethods(ctx context.Context, sess *checkout.Session) ([]shipping.Method, error)
	SelectedCosts(ctx context.Context, sess *checkout.Session) (*shipping.Method, shipping.Costs, error)
	SelectMethod(ctx context.Context, sess *checkout.Session, id uuid.UUID) error
	SelectCountry(ctx context.Context, sess *checkout.Session, code string) error
	CartDeliveryTime(ctx context.Context, sess *checkout.Session) (catalog.DeliveryTime, bool, error)
}

// ShippingHandler serves the shipping selection of the cart
type ShippingHandler struct {
	BaseHandler
	shipping ShippingRules
}

// NewShippingHandler creates a new ShippingHandler
func NewShippingHandler(sessions SessionLoader, rules ShippingRules) *ShippingHandler {
	return &ShippingHandler{BaseHandler: BaseHandler{sessions: sessions}, shipping: rules}
}

// Methods returns the active shipping methods whose criteria hold.
//
// GET /shipping/methods
func (h *ShippingHandler) Methods(c *gin.Context) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	methods, err := h.shipping.ValidMethods(c.Request.Context(), sess)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToShippingMethodResponses(methods))
}

// Selected returns the selected shipping method and its costs. An invalid
// selection is answered with the default method.
//
// GET /shipping/selected
func (h *ShippingHandler) Selected(c *gin.Context) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	h.writeSelected(c, sess)
}

func (h *ShippingHandler) writeSelected(c *gin.Context, sess *checkout.Session) {
	m, costs, err := h.shipping.SelectedCosts(c.Request.Context(), sess)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.SelectedMethodResponse{
		Method: dto.ToShippingMethodResponse(m),
		Price:  costs.Price,
		Tax:    costs.Tax,
	})
}

// Select stores the visitor's shipping method.
//
// PUT /shipping/selected
func (h *ShippingHandler) Select(c *gin.Context) {
	var req dto.SelectMethodRequest
	if !h.BindJSON(c, &req) {
		return
	}
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	if err := h.shipping.SelectMethod(c.Request.Context(), sess, uuid.MustParse(req.MethodID)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.writeSelected(c, sess)
}

// SelectCountry stores the shipping country of the cart. Method selections
// that are not valid for the country are replaced.
//
// PUT /shipping/country
func (h *ShippingHandler) SelectCountry(c *gin.Context) {
	var req dto.SelectCountryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	if err := h.shipping.SelectCountry(c.Request.Context(), sess, req.CountryCode); err != nil {
		h.HandleError(c, err)
		return
	}
	h.writeSelected(c, sess)
}

// DeliveryTime returns the longest delivery time of the cart lines.
//
// GET /shipping/delivery-time
func (h *ShippingHandler) DeliveryTime(c *gin.Context) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	dt, found, err := h.shipping.CartDeliveryTime(c.Request.Context(), sess)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !found {
		c.Status(http.StatusNoContent)
		return
	}
	h.Success(c, dt.AsReasonableUnit())
}
