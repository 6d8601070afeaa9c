package middleware

import (
	"github.com/gin-gonic/gin"
)

// RequestRecorder observes HTTP requests; the returned func is called with
// the response status once the request is done.
type RequestRecorder interface {
	RequestStarted(method, route string) func(status int)
}

// HTTPMetrics records request count, latency and in-flight requests.
// Unmatched routes are recorded as "unknown" to bound the label values.
func HTTPMetrics(recorder RequestRecorder) gin.HandlerFunc {
	if recorder == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		done := recorder.RequestStarted(c.Request.Method, route)
		c.Next()
		done(c.Writer.Status())
	}
}
