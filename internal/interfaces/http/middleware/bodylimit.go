package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lfs/storefront/internal/interfaces/http/dto"
)

// BodyLimit rejects request bodies larger than maxBytes. A declared
// Content-Length over the limit is refused up front; bodies of unknown
// length fail while they are read. A limit of zero or less disables the
// check.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size",
				GetRequestID(c),
			))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
