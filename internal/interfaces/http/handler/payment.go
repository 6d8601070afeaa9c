package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/application/checkout"
	"github.com/lfs/storefront/internal/domain/payment"
	"github.com/lfs/storefront/internal/interfaces/http/dto"
)

// PaymentRules selects payment methods and computes their costs
type PaymentRules interface {
	ValidMethods(ctx context.Context, sess *checkout.Session) ([]payment.Method, error)
	SelectedCosts(ctx context.Context, sess *checkout.Session) (*payment.Method, payment.Costs, error)
	SelectMethod(ctx context.Context, sess *checkout.Session, id uuid.UUID) error
}

// PaymentHandler serves the payment selection of the cart
type PaymentHandler struct {
	BaseHandler
	payment PaymentRules
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(sessions SessionLoader, rules PaymentRules) *PaymentHandler {
	return &PaymentHandler{BaseHandler: BaseHandler{sessions: sessions}, payment: rules}
}

// Methods returns the active payment methods whose criteria hold.
//
// GET /payment/methods
func (h *PaymentHandler) Methods(c *gin.Context) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	methods, err := h.payment.ValidMethods(c.Request.Context(), sess)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToPaymentMethodResponses(methods))
}

// Selected returns the selected payment method and its costs.
//
// GET /payment/selected
func (h *PaymentHandler) Selected(c *gin.Context) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	h.writeSelected(c, sess)
}

func (h *PaymentHandler) writeSelected(c *gin.Context, sess *checkout.Session) {
	m, costs, err := h.payment.SelectedCosts(c.Request.Context(), sess)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.SelectedMethodResponse{
		Method: dto.ToPaymentMethodResponse(m),
		Price:  costs.Price,
		Tax:    costs.Tax,
	})
}

// Select stores the visitor's payment method.
//
// PUT /payment/selected
func (h *PaymentHandler) Select(c *gin.Context) {
	var req dto.SelectMethodRequest
	if !h.BindJSON(c, &req) {
		return
	}
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	if err := h.payment.SelectMethod(c.Request.Context(), sess, uuid.MustParse(req.MethodID)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.writeSelected(c, sess)
}
