package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func healthRouter(h *HealthHandler) *gin.Engine {
	return newTestRouter(func(r *gin.Engine) {
		r.GET("/health", h.Live)
		r.GET("/health/ready", h.Ready)
	})
}

func TestHealthHandler_Live(t *testing.T) {
	w := doRequest(healthRouter(NewHealthHandler("1.2.3", nil)), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var got HealthResponse
	decode(t, w, &got)
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, "1.2.3", got.Version)
}

func TestHealthHandler_Ready(t *testing.T) {
	ok := func(context.Context) error { return nil }

	t.Run("all checks pass", func(t *testing.T) {
		h := NewHealthHandler("dev", map[string]Check{"database": ok, "cache": ok})
		w := doRequest(healthRouter(h), http.MethodGet, "/health/ready", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var got ReadinessResponse
		decode(t, w, &got)
		assert.Equal(t, map[string]string{"database": "ok", "cache": "ok"}, got.Checks)
	})

	t.Run("failing check is 503", func(t *testing.T) {
		h := NewHealthHandler("dev", map[string]Check{
			"database": ok,
			"cache":    func(context.Context) error { return errors.New("dial tcp: refused") },
		})
		w := doRequest(healthRouter(h), http.MethodGet, "/health/ready", nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var got ReadinessResponse
		resp := decode(t, w, &got)
		assert.False(t, resp.Success)
		assert.Equal(t, "unavailable", got.Status)
		assert.Equal(t, "dial tcp: refused", got.Checks["cache"])
	})
}
