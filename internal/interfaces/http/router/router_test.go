package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lfs/storefront/internal/interfaces/http/handler"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func pong(c *gin.Context) { c.String(http.StatusOK, "pong") }

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "/api/v1", r.Prefix())

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.Prefix())
}

func TestRouter_Setup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)
	r.Register(NewDomainGroup("test", "/test").GET("/ping", pong))
	r.Setup()

	w := serve(engine, http.MethodGet, "/api/v1/test/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())

	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/test/ping").Code)
}

func TestRouter_MiddlewareOnlyOnAPI(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", pong)

	r := NewRouter(engine, WithMiddleware(func(c *gin.Context) {
		c.Header("X-Api", "1")
	}))
	r.Register(NewDomainGroup("test", "/test").GET("/ping", pong))
	r.Setup()

	assert.Equal(t, "1", serve(engine, http.MethodGet, "/api/v1/test/ping").Header().Get("X-Api"))
	assert.Empty(t, serve(engine, http.MethodGet, "/health").Header().Get("X-Api"))
}

func TestDomainGroup(t *testing.T) {
	engine := gin.New()
	calls := 0

	group := NewDomainGroup("orders", "/orders").
		Use(func(c *gin.Context) { calls++ }).
		GET("", pong).
		POST("", pong).
		PUT("/:id", pong).
		DELETE("/:id", pong)
	group.Group("items", "/:id/items").GET("", pong)

	r := NewRouter(engine).Register(group)
	r.Setup()

	assert.Equal(t, "orders", group.Name())
	assert.Equal(t, "/orders", group.Prefix())
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/orders"},
		{http.MethodPost, "/api/v1/orders"},
		{http.MethodPut, "/api/v1/orders/1"},
		{http.MethodDelete, "/api/v1/orders/1"},
		{http.MethodGet, "/api/v1/orders/1/items"},
	} {
		assert.Equal(t, http.StatusOK, serve(engine, tc.method, tc.path).Code, tc.method+" "+tc.path)
	}
	assert.Equal(t, 5, calls)
}

func TestStorefrontGroups(t *testing.T) {
	engine := gin.New()
	h := Handlers{
		Products:   handler.NewProductHandler(nil, nil, nil),
		Categories: handler.NewCategoryHandler(nil),
		Shipping:   handler.NewShippingHandler(nil, nil),
		Payment:    handler.NewPaymentHandler(nil, nil),
		Cart:       handler.NewCartHandler(nil, nil, nil, nil, nil, nil),
		Marketing:  handler.NewMarketingHandler(nil),
	}
	r := NewRouter(engine).Register(StorefrontGroups(h)...)
	r.Setup()

	routes := r.Routes()
	for _, want := range []string{
		"GET /api/v1/products/:slug",
		"GET /api/v1/products/:slug/delivery",
		"GET /api/v1/categories/:slug/products",
		"GET /api/v1/categories/:slug/filters",
		"GET /api/v1/categories/:slug/price-filters",
		"GET /api/v1/shipping/methods",
		"PUT /api/v1/shipping/selected",
		"PUT /api/v1/shipping/country",
		"GET /api/v1/shipping/delivery-time",
		"GET /api/v1/payment/methods",
		"PUT /api/v1/payment/selected",
		"GET /api/v1/cart",
		"POST /api/v1/cart/items",
		"PUT /api/v1/cart/items/:id",
		"DELETE /api/v1/cart/items/:id",
		"POST /api/v1/cart/merge",
		"GET /api/v1/cart/discounts",
		"POST /api/v1/cart/voucher",
		"POST /api/v1/cart/checkout",
		"GET /api/v1/topseller",
	} {
		assert.Contains(t, routes, want)
	}

	// mutations are rejected before reaching a handler without identity
	w := serve(engine, http.MethodPost, "/api/v1/cart/items")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_MISSING_IDENTITY")
}

func TestRegisterProbes(t *testing.T) {
	engine := gin.New()
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})
	RegisterProbes(engine, handler.NewHealthHandler("test", nil), "/metrics", metrics)

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health/ready").Code)
	assert.Equal(t, "# metrics", serve(engine, http.MethodGet, "/metrics").Body.String())
}
