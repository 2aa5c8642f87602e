package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/xiebiao/bookshelf/pkg/tracing"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"

	slowRequestThreshold = 3 * time.Second
)

// Logger tags every request with an id and writes one access log line
// when it completes. A client supplied X-Request-ID is kept.
func Logger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": latency.Milliseconds(),
			"client_ip":  c.ClientIP(),
		}
		if traceID := tracing.TraceID(c.Request.Context()); traceID != "" {
			fields["trace_id"] = traceID
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		entry := log.WithFields(fields)

		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("request failed")
		case latency > slowRequestThreshold:
			entry.Warn("slow request")
		default:
			entry.Info("request served")
		}
	}
}
