package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/application/checkout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityRouter(seen *checkout.Identity, mw ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(mw...)
	router.GET("/test", func(c *gin.Context) {
		*seen = GetIdentity(c)
		c.Status(http.StatusOK)
	})
	return router
}

func TestIdentity(t *testing.T) {
	var seen checkout.Identity
	router := identityRouter(&seen, Identity())

	t.Run("reads session and customer", func(t *testing.T) {
		customerID := uuid.New()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Session-ID", "abc-123")
		req.Header.Set("X-Customer-ID", customerID.String())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "abc-123", seen.SessionID)
		require.NotNil(t, seen.UserID)
		assert.Equal(t, customerID, *seen.UserID)
	})

	t.Run("anonymous visitor", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, seen.IsZero())
	})

	t.Run("rejects malformed customer id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Customer-ID", "42")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "X-Customer-ID")
	})

	t.Run("rejects malformed session id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Session-ID", "a b")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRequireIdentity(t *testing.T) {
	var seen checkout.Identity
	router := identityRouter(&seen, Identity(), RequireIdentity())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_MISSING_IDENTITY")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Session-ID", "s1")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
