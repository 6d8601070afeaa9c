package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func bodyLimitRouter(limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BodyLimit(limit))
	read := func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.String(http.StatusRequestEntityTooLarge, "cut off")
			return
		}
		c.String(http.StatusOK, "%d", len(body))
	}
	r.POST("/cart/items", read)
	r.GET("/cart", read)
	return r
}

func TestBodyLimit(t *testing.T) {
	cartItem := `{"product_id":"9b2d8a62-5d4e-4f3a-9d7f-1c2b3a4d5e6f","amount":2}`

	tests := []struct {
		name       string
		limit      int64
		method     string
		body       string
		unknownLen bool
		wantStatus int
		wantBody   string
	}{
		{"cart item within limit", 1024, http.MethodPost, cartItem, false, http.StatusOK, "64"},
		{"declared length over limit", 32, http.MethodPost, cartItem, false, http.StatusRequestEntityTooLarge, "ERR_REQUEST_TOO_LARGE"},
		{"streamed body over limit", 32, http.MethodPost, cartItem, true, http.StatusRequestEntityTooLarge, "cut off"},
		{"get without body", 8, http.MethodGet, "", false, http.StatusOK, "0"},
		{"disabled limit", 0, http.MethodPost, strings.Repeat("x", 4096), false, http.StatusOK, "4096"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			path := "/cart/items"
			if tt.method == http.MethodGet {
				path = "/cart"
			}
			req := httptest.NewRequest(tt.method, path, body)
			if tt.unknownLen {
				req.ContentLength = -1
			}
			w := httptest.NewRecorder()
			bodyLimitRouter(tt.limit).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}
