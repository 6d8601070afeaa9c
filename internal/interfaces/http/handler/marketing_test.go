package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMarketingHandler_Topseller(t *testing.T) {
	categoryID := uuid.New()
	finder := new(mockTopseller)
	finder.On("Topseller", mock.Anything, 0).Return(testProducts("a", "b"), nil)
	finder.On("TopsellerForCategory", mock.Anything, categoryID, 3).Return(testProducts("c"), nil)

	h := NewMarketingHandler(finder)
	r := newTestRouter(func(r *gin.Engine) { r.GET("/topseller", h.Topseller) })

	w := doRequest(r, http.MethodGet, "/topseller", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var got []dto.ProductSummary
	decode(t, w, &got)
	require.Len(t, got, 2)

	w = doRequest(r, http.MethodGet, "/topseller?limit=3&category_id="+categoryID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &got)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].Slug)

	w = doRequest(r, http.MethodGet, "/topseller?limit=500", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	finder.AssertExpectations(t)
}
