// access_log.go tags every request with an ID and logs one line per request.
package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// requestIDKey is the gin context key for the request ID.
const requestIDKey = "request_id"

// AccessLog returns middleware that reuses the caller's X-Request-ID or
// assigns a new one, echoes it on the response, and logs the request once
// it finishes. A nil logger means log.Default().
func AccessLog(logger *log.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = log.Default()
	}

	return func(c *gin.Context) {
		start := time.Now()

		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Header(RequestIDHeader, rid)

		c.Next()

		logger.Printf(
			"HTTP access | rid=%s ip=%s method=%s path=%s status=%d latency=%s req_bytes=%d resp_bytes=%d ua=%q",
			rid, c.ClientIP(), c.Request.Method, c.Request.URL.RequestURI(), c.Writer.Status(),
			time.Since(start), c.Request.ContentLength, c.Writer.Size(), c.Request.UserAgent(),
		)
	}
}

// GetRequestID returns the request ID set by AccessLog, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
