package reporter

import (
	"time"

	"github.com/TEENet-io/escrow-go/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
)

const headerRequestID = "X-Request-ID"

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(headerRequestID, requestID)
		c.Next()
	}
}

// Observe records every request in m and logs failures.
func Observe(m *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		latency := time.Since(start)
		m.ObserveHTTP(route, c.Request.Method, status, latency.Seconds())

		if status >= 500 {
			logger.WithFields(logger.Fields{
				"request_id": c.GetString("request_id"),
				"route":      route,
				"method":     c.Request.Method,
				"status":     status,
				"latency":    latency,
			}).Warn("request failed")
		}
	}
}
