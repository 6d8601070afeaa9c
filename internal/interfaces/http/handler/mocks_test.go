package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcatalog "github.com/lfs/storefront/internal/application/catalog"
	"github.com/lfs/storefront/internal/application/checkout"
	"github.com/lfs/storefront/internal/domain/cart"
	"github.com/lfs/storefront/internal/domain/catalog"
	"github.com/lfs/storefront/internal/domain/criteria"
	"github.com/lfs/storefront/internal/domain/payment"
	"github.com/lfs/storefront/internal/domain/shipping"
	"github.com/lfs/storefront/internal/infrastructure/logger"
	"github.com/lfs/storefront/internal/interfaces/http/dto"
	"github.com/lfs/storefront/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.SetupValidator(); err != nil {
		panic(err)
	}
}

const testSessionID = "session-1"

// newTestRouter returns an engine with the identity middleware of the API
func newTestRouter(register func(r *gin.Engine)) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Identity())
	register(r)
	return r
}

func doRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(logger.HeaderSessionID, testSessionID)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type testResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) testResponse {
	t.Helper()
	var resp testResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	if data != nil && len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, data))
	}
	return resp
}

func testSession() *checkout.Session {
	return &checkout.Session{
		Identity: checkout.Identity{SessionID: testSessionID},
		Subject:  &criteria.Subject{},
	}
}

// mockSessions is a mock implementation of SessionLoader
type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) Load(ctx context.Context, id checkout.Identity) (*checkout.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Session), args.Error(1)
}

// sessionsReturning loads the same session for every request
func sessionsReturning(sess *checkout.Session) *mockSessions {
	m := new(mockSessions)
	m.On("Load", mock.Anything, mock.Anything).Return(sess, nil)
	return m
}

type mockProducts struct {
	mock.Mock
}

func (m *mockProducts) View(ctx context.Context, slug string, subject *criteria.Subject) (*appcatalog.ProductView, error) {
	args := m.Called(ctx, slug, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcatalog.ProductView), args.Error(1)
}

func (m *mockProducts) ResolveBySlug(ctx context.Context, slug string) (*catalog.ResolvedProduct, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ResolvedProduct), args.Error(1)
}

type mockDelivery struct {
	mock.Mock
}

func (m *mockDelivery) DeliveryInfo(ctx context.Context, sess *checkout.Session, r *catalog.ResolvedProduct) (shipping.DeliveryInfo, error) {
	args := m.Called(ctx, sess, r)
	return args.Get(0).(shipping.DeliveryInfo), args.Error(1)
}

type mockFilters struct {
	mock.Mock
}

func (m *mockFilters) Category(ctx context.Context, slug string) (*catalog.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *mockFilters) FilteredProducts(ctx context.Context, category *catalog.Category, q appcatalog.FilterQuery) ([]catalog.Product, error) {
	args := m.Called(ctx, category, q)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *mockFilters) ProductFilters(ctx context.Context, category *catalog.Category, q appcatalog.FilterQuery) ([]appcatalog.FilterGroup, error) {
	args := m.Called(ctx, category, q)
	return args.Get(0).([]appcatalog.FilterGroup), args.Error(1)
}

func (m *mockFilters) PriceFilters(ctx context.Context, category *catalog.Category, q appcatalog.FilterQuery) (*appcatalog.PriceFilters, error) {
	args := m.Called(ctx, category, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcatalog.PriceFilters), args.Error(1)
}

type mockShipping struct {
	mock.Mock
}

func (m *mockShipping) ValidMethods(ctx context.Context, sess *checkout.Session) ([]shipping.Method, error) {
	args := m.Called(ctx, sess)
	return args.Get(0).([]shipping.Method), args.Error(1)
}

func (m *mockShipping) SelectedCosts(ctx context.Context, sess *checkout.Session) (*shipping.Method, shipping.Costs, error) {
	args := m.Called(ctx, sess)
	var method *shipping.Method
	if args.Get(0) != nil {
		method = args.Get(0).(*shipping.Method)
	}
	return method, args.Get(1).(shipping.Costs), args.Error(2)
}

func (m *mockShipping) SelectMethod(ctx context.Context, sess *checkout.Session, id uuid.UUID) error {
	return m.Called(ctx, sess, id).Error(0)
}

func (m *mockShipping) SelectCountry(ctx context.Context, sess *checkout.Session, code string) error {
	return m.Called(ctx, sess, code).Error(0)
}

func (m *mockShipping) CartDeliveryTime(ctx context.Context, sess *checkout.Session) (catalog.DeliveryTime, bool, error) {
	args := m.Called(ctx, sess)
	return args.Get(0).(catalog.DeliveryTime), args.Bool(1), args.Error(2)
}

type mockPayment struct {
	mock.Mock
}

func (m *mockPayment) ValidMethods(ctx context.Context, sess *checkout.Session) ([]payment.Method, error) {
	args := m.Called(ctx, sess)
	return args.Get(0).([]payment.Method), args.Error(1)
}

func (m *mockPayment) SelectedCosts(ctx context.Context, sess *checkout.Session) (*payment.Method, payment.Costs, error) {
	args := m.Called(ctx, sess)
	var method *payment.Method
	if args.Get(0) != nil {
		method = args.Get(0).(*payment.Method)
	}
	return method, args.Get(1).(payment.Costs), args.Error(2)
}

func (m *mockPayment) SelectMethod(ctx context.Context, sess *checkout.Session, id uuid.UUID) error {
	return m.Called(ctx, sess, id).Error(0)
}

type mockCarts struct {
	mock.Mock
}

func (m *mockCarts) result(args mock.Arguments) (*cart.Cart, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *mockCarts) Add(ctx context.Context, id checkout.Identity, productID uuid.UUID, amount float64) (*cart.Cart, error) {
	return m.result(m.Called(ctx, id, productID, amount))
}

func (m *mockCarts) SetAmount(ctx context.Context, id checkout.Identity, itemID uuid.UUID, amount float64) (*cart.Cart, error) {
	return m.result(m.Called(ctx, id, itemID, amount))
}

func (m *mockCarts) Remove(ctx context.Context, id checkout.Identity, itemID uuid.UUID) (*cart.Cart, error) {
	return m.result(m.Called(ctx, id, itemID))
}

func (m *mockCarts) Merge(ctx context.Context, sessionID string, userID uuid.UUID) (*cart.Cart, error) {
	return m.result(m.Called(ctx, sessionID, userID))
}

type mockSummary struct {
	mock.Mock
}

func (m *mockSummary) Summary(ctx context.Context, sess *checkout.Session, voucherNumber string) (*checkout.Summary, error) {
	args := m.Called(ctx, sess, voucherNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Summary), args.Error(1)
}

type mockDiscounts struct {
	mock.Mock
}

func (m *mockDiscounts) Apply(ctx context.Context, sess *checkout.Session, voucherApplied bool) ([]checkout.AppliedDiscount, error) {
	args := m.Called(ctx, sess, voucherApplied)
	return args.Get(0).([]checkout.AppliedDiscount), args.Error(1)
}

type mockVouchers struct {
	mock.Mock
}

func (m *mockVouchers) Apply(ctx context.Context, sess *checkout.Session, number string) (*checkout.AppliedVoucher, error) {
	args := m.Called(ctx, sess, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.AppliedVoucher), args.Error(1)
}

type mockOrders struct {
	mock.Mock
}

func (m *mockOrders) PlaceOrder(ctx context.Context, sess *checkout.Session, in checkout.PlaceOrderInput) (*checkout.PlaceOrderResult, error) {
	args := m.Called(ctx, sess, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.PlaceOrderResult), args.Error(1)
}

type mockTopseller struct {
	mock.Mock
}

func (m *mockTopseller) Topseller(ctx context.Context, limit int) ([]catalog.Product, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *mockTopseller) TopsellerForCategory(ctx context.Context, categoryID uuid.UUID, limit int) ([]catalog.Product, error) {
	args := m.Called(ctx, categoryID, limit)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

var (
	_ SessionLoader    = (*mockSessions)(nil)
	_ ProductViewer    = (*mockProducts)(nil)
	_ DeliveryInformer = (*mockDelivery)(nil)
	_ CategoryFilterer = (*mockFilters)(nil)
	_ ShippingRules    = (*mockShipping)(nil)
	_ PaymentRules     = (*mockPayment)(nil)
	_ CartEditor       = (*mockCarts)(nil)
	_ CartSummarizer   = (*mockSummary)(nil)
	_ DiscountApplier  = (*mockDiscounts)(nil)
	_ VoucherApplier   = (*mockVouchers)(nil)
	_ OrderPlacer      = (*mockOrders)(nil)
	_ TopsellerFinder  = (*mockTopseller)(nil)
)
