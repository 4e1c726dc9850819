package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/kessa99/task-manager-back/internal/requestid"
)

// RequestID keeps a well-formed incoming X-Request-ID or generates a new one,
// and exposes it through the request context and the response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := requestid.Sanitize(c.GetHeader(requestid.Header))

		c.Request = c.Request.WithContext(requestid.WithRequestID(c.Request.Context(), id))
		c.Header(requestid.Header, id)
		c.Next()
	}
}
