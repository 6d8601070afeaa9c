package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/application/checkout"
	"github.com/lfs/storefront/internal/domain/cart"
	"github.com/lfs/storefront/internal/interfaces/http/dto"
	"github.com/lfs/storefront/internal/interfaces/http/middleware"
)

// CartEditor changes the cart of a visitor
type CartEditor interface {
	Add(ctx context.Context, id checkout.Identity, productID uuid.UUID, amount float64) (*cart.Cart, error)
	SetAmount(ctx context.Context, id checkout.Identity, itemID uuid.UUID, amount float64) (*cart.Cart, error)
	Remove(ctx context.Context, id checkout.Identity, itemID uuid.UUID) (*cart.Cart, error)
	Merge(ctx context.Context, sessionID string, userID uuid.UUID) (*cart.Cart, error)
}

// CartSummarizer prices the cart with shipping, payment and discounts
type CartSummarizer interface {
	Summary(ctx context.Context, sess *checkout.Session, voucherNumber string) (*checkout.Summary, error)
}

// DiscountApplier returns the discounts granted to a cart
type DiscountApplier interface {
	Apply(ctx context.Context, sess *checkout.Session, voucherApplied bool) ([]checkout.AppliedDiscount, error)
}

// VoucherApplier checks voucher numbers against a cart
type VoucherApplier interface {
	Apply(ctx context.Context, sess *checkout.Session, number string) (*checkout.AppliedVoucher, error)
}

// OrderPlacer turns the cart into an order
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, sess *checkout.Session, in checkout.PlaceOrderInput) (*checkout.PlaceOrderResult, error)
}

// CartHandler serves the cart, its totals and the checkout
type CartHandler struct {
	BaseHandler
	carts     CartEditor
	summary   CartSummarizer
	discounts DiscountApplier
	vouchers  VoucherApplier
	orders    OrderPlacer
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(
	sessions SessionLoader,
	carts CartEditor,
	summary CartSummarizer,
	discounts DiscountApplier,
	vouchers VoucherApplier,
	orders OrderPlacer,
) *CartHandler {
	return &CartHandler{
		BaseHandler: BaseHandler{sessions: sessions},
		carts:       carts,
		summary:     summary,
		discounts:   discounts,
		vouchers:    vouchers,
		orders:      orders,
	}
}

// Get returns the cart summary. The voucher query parameter is applied
// without redeeming it.
//
// GET /cart
func (h *CartHandler) Get(c *gin.Context) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	h.writeSummary(c, sess, c.Query("voucher"))
}

func (h *CartHandler) writeSummary(c *gin.Context, sess *checkout.Session, voucherNumber string) {
	sum, err := h.summary.Summary(c.Request.Context(), sess, voucherNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sum)
}

// reloaded answers a cart change with the summary of the changed cart
func (h *CartHandler) reloaded(c *gin.Context, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	h.writeSummary(c, sess, "")
}

// AddItem puts a product into the cart.
//
// POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	_, err := h.carts.Add(c.Request.Context(), middleware.GetIdentity(c), uuid.MustParse(req.ProductID), req.Amount)
	h.reloaded(c, err)
}

// UpdateItem changes the amount of a cart line.
//
// PUT /cart/items/:id
func (h *CartHandler) UpdateItem(c *gin.Context) {
	itemID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCartItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	_, err := h.carts.SetAmount(c.Request.Context(), middleware.GetIdentity(c), itemID, *req.Amount)
	h.reloaded(c, err)
}

// RemoveItem removes a cart line.
//
// DELETE /cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	itemID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}
	_, err := h.carts.Remove(c.Request.Context(), middleware.GetIdentity(c), itemID)
	h.reloaded(c, err)
}

// Merge moves the session cart into the cart of the logged in customer.
// Both headers are required.
//
// POST /cart/merge
func (h *CartHandler) Merge(c *gin.Context) {
	id := middleware.GetIdentity(c)
	if id.SessionID == "" || id.UserID == nil {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeMissingIdentity), dto.ErrCodeMissingIdentity,
			"X-Session-ID and X-Customer-ID headers are required")
		return
	}
	_, err := h.carts.Merge(c.Request.Context(), id.SessionID, *id.UserID)
	h.reloaded(c, err)
}

// Discounts returns the discounts granted to the cart.
//
// GET /cart/discounts
func (h *CartHandler) Discounts(c *gin.Context) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	voucherApplied := false
	if number := c.Query("voucher"); number != "" {
		applied, err := h.vouchers.Apply(c.Request.Context(), sess, number)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		voucherApplied = applied.Applied()
	}
	discounts, err := h.discounts.Apply(c.Request.Context(), sess, voucherApplied)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, discounts)
}

// Voucher checks a voucher number against the cart. The status tells
// whether it applies; nothing is redeemed.
//
// POST /cart/voucher
func (h *CartHandler) Voucher(c *gin.Context) {
	var req dto.VoucherRequest
	if !h.BindJSON(c, &req) {
		return
	}
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	applied, err := h.vouchers.Apply(c.Request.Context(), sess, req.Number)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, applied)
}

// Checkout processes the payment and creates the order.
//
// POST /cart/checkout
func (h *CartHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !h.BindJSON(c, &req) {
		return
	}
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	result, err := h.orders.PlaceOrder(c.Request.Context(), sess, checkout.PlaceOrderInput{
		VoucherNumber: req.VoucherNumber,
		Message:       req.Message,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.Order == nil {
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}
