package testutil

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestClient_Expect(t *testing.T) {
	engine := gin.New()
	engine.POST("/echo", func(c *gin.Context) {
		var body map[string]any
		_ = c.ShouldBindJSON(&body)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    gin.H{"session": c.GetHeader("X-Session-ID"), "body": body},
		})
	})

	var out struct {
		Session string         `json:"session"`
		Body    map[string]any `json:"body"`
	}
	resp := NewClient(engine, "visitor-1").Expect(t, http.StatusOK, http.MethodPost, "/echo", map[string]any{"amount": 2}, &out)

	assert.True(t, resp.Success)
	assert.Equal(t, "visitor-1", out.Session)
	assert.Equal(t, float64(2), out.Body["amount"])
}

func TestDecode_Error(t *testing.T) {
	engine := gin.New()
	engine.GET("/fail", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"code": "NOT_FOUND", "message": "missing"},
		})
	})

	resp := NewClient(engine, "visitor-1").Expect(t, http.StatusNotFound, http.MethodGet, "/fail", nil, nil)

	assert.False(t, resp.Success)
	if assert.NotNil(t, resp.Error) {
		assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	}
}
