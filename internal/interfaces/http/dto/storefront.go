package dto

import (
	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/lfs/storefront/internal/domain/payment"
	"github.com/lfs/storefront/internal/domain/shipping"
	"github.com/shopspring/decimal"
)

// AddCartItemRequest adds a product to the cart
type AddCartItemRequest struct {
	ProductID string  `json:"product_id" binding:"required,uuid"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
}

// UpdateCartItemRequest changes the amount of a cart line; 0 removes it
type UpdateCartItemRequest struct {
	Amount *float64 `json:"amount" binding:"required,gte=0"`
}

// SelectMethodRequest selects a shipping or payment method
type SelectMethodRequest struct {
	MethodID string `json:"method_id" binding:"required,uuid"`
}

// SelectCountryRequest selects the shipping country of the cart
type SelectCountryRequest struct {
	CountryCode string `json:"country_code" binding:"required,country_code"`
}

// VoucherRequest applies a voucher number to the cart
type VoucherRequest struct {
	Number string `json:"number" binding:"required,max=100"`
}

// CheckoutRequest places the order of the cart
type CheckoutRequest struct {
	VoucherNumber string `json:"voucher_number" binding:"omitempty,max=100"`
	Message       string `json:"message" binding:"omitempty,max=2000"`
}

// TopsellerRequest is the query of the topseller list
type TopsellerRequest struct {
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=50"`
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
}

// MethodResponse is a shipping or payment method as offered to the customer
type MethodResponse struct {
	ID           uuid.UUID             `json:"id"`
	Name         string                `json:"name"`
	Description  string                `json:"description,omitempty"`
	Note         string                `json:"note,omitempty"`
	Priority     int                   `json:"priority"`
	Processor    string                `json:"processor,omitempty"`
	DeliveryTime *catalog.DeliveryTime `json:"delivery_time,omitempty"`
}

// SelectedMethodResponse is the selected method with its costs for the cart
type SelectedMethodResponse struct {
	Method *MethodResponse `json:"method"`
	Price  decimal.Decimal `json:"price"`
	Tax    decimal.Decimal `json:"tax"`
}

// ProductSummary is a product in lists
type ProductSummary struct {
	ID             uuid.UUID       `json:"id"`
	Slug           string          `json:"slug"`
	Name           string          `json:"name"`
	SKU            string          `json:"sku"`
	Price          decimal.Decimal `json:"price"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
	ForSale        bool            `json:"for_sale"`
}

// ToShippingMethodResponse converts a shipping method
func ToShippingMethodResponse(m *shipping.Method) *MethodResponse {
	if m == nil {
		return nil
	}
	return &MethodResponse{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		Note:         m.Note,
		Priority:     m.Priority,
		DeliveryTime: m.DeliveryTime,
	}
}

// ToShippingMethodResponses converts a list of shipping methods
func ToShippingMethodResponses(methods []shipping.Method) []MethodResponse {
	out := make([]MethodResponse, 0, len(methods))
	for i := range methods {
		out = append(out, *ToShippingMethodResponse(&methods[i]))
	}
	return out
}

// ToPaymentMethodResponse converts a payment method
func ToPaymentMethodResponse(m *payment.Method) *MethodResponse {
	if m == nil {
		return nil
	}
	return &MethodResponse{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Note:        m.Note,
		Priority:    m.Priority,
		Processor:   m.Processor,
	}
}

// ToPaymentMethodResponses converts a list of payment methods
func ToPaymentMethodResponses(methods []payment.Method) []MethodResponse {
	out := make([]MethodResponse, 0, len(methods))
	for i := range methods {
		out = append(out, *ToPaymentMethodResponse(&methods[i]))
	}
	return out
}

// ToProductSummaries converts products for list responses
func ToProductSummaries(products []catalog.Product) []ProductSummary {
	out := make([]ProductSummary, 0, len(products))
	for _, p := range products {
		out = append(out, ProductSummary{
			ID:             p.ID,
			Slug:           p.Slug,
			Name:           p.Name,
			SKU:            p.SKU,
			Price:          p.Price,
			EffectivePrice: p.EffectivePrice,
			ForSale:        p.ForSale,
		})
	}
	return out
}
