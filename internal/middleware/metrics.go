// Package middleware provides the Gin HTTP middleware for orgboard: request
// IDs, Prometheus metrics, security headers, rate limiting, and the JWT auth
// gate. All middleware is registered in internal/api/router.go before any
// route handlers.
//
// Ordering matters and is enforced in router.go:
//
//	Recovery → RequestID → Metrics → Logger → CORS → SecurityHeaders → (RateLimit) → (Auth) → Handler
//
// Rate limiting runs before auth so brute-force attempts are rejected before
// any cryptographic or database work.
package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/orgboard/orgboard/internal/telemetry"
)

// MetricsMiddleware records http_requests_total and
// http_request_duration_seconds for every request.
//
// The path label is set from c.FullPath(), the matched route template, rather
// than the raw URL. Requests that match no registered route use the literal
// "<no-route>" so unhandled paths cannot inflate label cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "<no-route>"
		}

		duration := time.Since(start).Seconds()
		method := c.Request.Method
		status := fmt.Sprintf("%d", c.Writer.Status())

		telemetry.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}
