package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/domain/payment"
	"github.com/lfs/storefront/internal/domain/shared"
	"github.com/lfs/storefront/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func paymentRouter(h *PaymentHandler) *gin.Engine {
	return newTestRouter(func(r *gin.Engine) {
		r.GET("/payment/methods", h.Methods)
		r.GET("/payment/selected", h.Selected)
		r.PUT("/payment/selected", h.Select)
	})
}

func TestPaymentHandler(t *testing.T) {
	sess := testSession()
	invoice := payment.Method{Name: "Invoice", Processor: "invoice", Active: true}
	invoice.ID = uuid.New()

	rules := new(mockPayment)
	rules.On("ValidMethods", mock.Anything, sess).Return([]payment.Method{invoice}, nil)
	rules.On("SelectedCosts", mock.Anything, sess).
		Return(&invoice, payment.Costs{Price: decimal.NewFromInt(2), Tax: decimal.Zero}, nil)
	rules.On("SelectMethod", mock.Anything, sess, invoice.ID).Return(nil)

	r := paymentRouter(NewPaymentHandler(sessionsReturning(sess), rules))

	t.Run("methods", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/payment/methods", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		var methods []dto.MethodResponse
		decode(t, w, &methods)
		require.Len(t, methods, 1)
		assert.Equal(t, "invoice", methods[0].Processor)
	})

	t.Run("selected", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/payment/selected", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		var got dto.SelectedMethodResponse
		decode(t, w, &got)
		assert.Equal(t, "Invoice", got.Method.Name)
		assert.True(t, got.Price.Equal(decimal.NewFromInt(2)))
	})

	t.Run("select", func(t *testing.T) {
		w := doRequest(r, http.MethodPut, "/payment/selected", dto.SelectMethodRequest{MethodID: invoice.ID.String()})
		assert.Equal(t, http.StatusOK, w.Code)
		rules.AssertCalled(t, "SelectMethod", mock.Anything, sess, invoice.ID)
	})
}

func TestPaymentHandler_SessionErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"domain error", shared.ErrInvalidState, http.StatusUnprocessableEntity},
		{"unexpected error", errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := new(mockSessions)
			sessions.On("Load", mock.Anything, mock.Anything).Return(nil, tt.err)
			rules := new(mockPayment)

			w := doRequest(paymentRouter(NewPaymentHandler(sessions, rules)), http.MethodGet, "/payment/methods", nil)

			assert.Equal(t, tt.status, w.Code)
			rules.AssertNotCalled(t, "ValidMethods", mock.Anything, mock.Anything)
		})
	}
}
