package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	route  string
	status int
}

type fakeRequestRecorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (r *fakeRequestRecorder) RequestStarted(method, route string) func(status int) {
	return func(status int) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.requests = append(r.requests, recordedRequest{method: method, route: route, status: status})
	}
}

func TestHTTPMetrics(t *testing.T) {
	recorder := &fakeRequestRecorder{}
	router := gin.New()
	router.Use(HTTPMetrics(recorder))
	router.GET("/products/:slug", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.POST("/cart/items", func(c *gin.Context) {
		c.Status(http.StatusUnprocessableEntity)
	})

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/products/shirt", nil),
		httptest.NewRequest(http.MethodPost, "/cart/items", nil),
		httptest.NewRequest(http.MethodGet, "/missing", nil),
	} {
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	require.Len(t, recorder.requests, 3)
	assert.Equal(t, recordedRequest{http.MethodGet, "/products/:slug", http.StatusOK}, recorder.requests[0])
	assert.Equal(t, recordedRequest{http.MethodPost, "/cart/items", http.StatusUnprocessableEntity}, recorder.requests[1])
	assert.Equal(t, "unknown", recorder.requests[2].route)
	assert.Equal(t, http.StatusNotFound, recorder.requests[2].status)
}

func TestHTTPMetrics_NilRecorder(t *testing.T) {
	router := okRouter(HTTPMetrics(nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
