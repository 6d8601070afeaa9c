package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lfs/storefront/internal/application/checkout"
	"github.com/lfs/storefront/internal/infrastructure/logger"
	"github.com/lfs/storefront/internal/interfaces/http/dto"
)

const identityKey = "identity"

// sessionIDPattern accepts the session keys issued by the storefront
var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_\-.]{1,64}$`)

// Identity reads the visitor from the X-Session-ID and X-Customer-ID
// headers. Malformed values are rejected with 400.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		var id checkout.Identity

		if sessionID := c.GetHeader(logger.HeaderSessionID); sessionID != "" {
			if !sessionIDPattern.MatchString(sessionID) {
				abortIdentity(c, "Invalid X-Session-ID header")
				return
			}
			id.SessionID = sessionID
		}
		if customerID := c.GetHeader(logger.HeaderCustomerID); customerID != "" {
			userID, err := uuid.Parse(customerID)
			if err != nil {
				abortIdentity(c, "Invalid X-Customer-ID header")
				return
			}
			id.UserID = &userID
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// RequireIdentity rejects requests without session and customer
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetIdentity(c).IsZero() {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeMissingIdentity,
				"X-Session-ID or X-Customer-ID header is required",
				GetRequestID(c),
			))
			return
		}
		c.Next()
	}
}

// GetIdentity returns the visitor set by Identity
func GetIdentity(c *gin.Context) checkout.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(checkout.Identity); ok {
			return id
		}
	}
	return checkout.Identity{}
}

func abortIdentity(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeBadRequest, message, GetRequestID(c),
	))
}
