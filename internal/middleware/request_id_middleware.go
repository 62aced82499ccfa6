package middleware

import (
	"crypto/rand"
	"encoding/hex"

	"island-timeline/pkg/logger"

	"github.com/gin-gonic/gin"
)

const RequestIDHeader = "X-Request-Id"

// RequestIDMiddleware propagates or mints a request id and tags the request
// context with it and with the timeline owner, so every log line of a
// timeline read carries both.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = newRequestID()
		}
		c.Writer.Header().Set(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(logger.WithRequest(c.Request.Context(), requestID, c.Param("user_id")))
		c.Next()
	}
}

// newRequestID returns 16 random bytes hex encoded, a compact id without hyphens.
func newRequestID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
