package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderRequestID  = "X-Request-Id"
	ContextRequestID = "request_id"
)

// RequestID tags every request with an id, reusing a sane upstream one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		// the first pass already assigned an id; only the gin key was lost
		if isRewritten(c.Request.Context()) {
			c.Set(ContextRequestID, c.GetHeader(HeaderRequestID))
			c.Next()
			return
		}

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.New().String()
		}

		c.Request.Header.Set(HeaderRequestID, requestID)
		c.Writer.Header().Set(HeaderRequestID, requestID)
		c.Set(ContextRequestID, requestID)
		c.Next()
	}
}
