package monitoring

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/ZanzyTHEbar/candidate-evaluator/internal/errors"
)

const (
	RequestIDHeader    = "X-Request-ID"
	maxRequestIDLength = 64
)

// RequestIDMiddleware tags every request with an id, reusing a sane
// incoming X-Request-ID.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" || len(id) > maxRequestIDLength || strings.ContainsAny(id, "\r\n") {
			id = uuid.NewString()
		}

		c.Set(apperrors.RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestID returns the id set by RequestIDMiddleware
func RequestID(c *gin.Context) string {
	return c.GetString(apperrors.RequestIDKey)
}

// MonitoringMiddleware records metrics and a log line per request
func MonitoringMiddleware(metrics *Metrics, logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveRequest(method, route, statusCode, duration)

		// Share tokens are credentials, so the logged path is the route template.
		if strings.HasPrefix(route, "/api/share/") {
			path = route
		}
		logger.RequestLogger(RequestID(c), method, path, c.ClientIP(), statusCode, duration)

		if duration > 5*time.Second {
			logger.Warn("Slow request", "route", route, "duration_ms", duration.Milliseconds())
		}
	}
}

// SecurityMonitoringMiddleware logs requests from known scanner user agents
func SecurityMonitoringMiddleware(logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userAgent := c.GetHeader("User-Agent")
		if containsSuspiciousUserAgent(userAgent) {
			logger.SecurityLogger("suspicious_user_agent", c.ClientIP(), map[string]interface{}{
				"user_agent": userAgent,
				"path":       c.FullPath(),
			})
		}
		c.Next()
	}
}

func containsSuspiciousUserAgent(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	for _, agent := range []string{"sqlmap", "nmap", "masscan", "zmap", "dirbuster", "gobuster", "nikto", "acunetix"} {
		if strings.Contains(ua, agent) {
			return true
		}
	}
	return false
}
