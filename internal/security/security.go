package security

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SecurityConfig holds security configuration
type SecurityConfig struct {
	MaxQueryLength    int           `json:"max_query_length"`
	MaxFieldLength    int           `json:"max_field_length"`
	MaxResponseLength int           `json:"max_response_length"`
	AllowedOrigins    []string      `json:"allowed_origins"`
	RequestTimeout    time.Duration `json:"request_timeout"`
	EnableHSTS        bool          `json:"enable_hsts"`
}

// DefaultSecurityConfig returns secure defaults
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		MaxQueryLength:    100,
		MaxFieldLength:    255,
		MaxResponseLength: 20_000,
		AllowedOrigins:    []string{"http://localhost:3000", "http://localhost:5173"},
		RequestTimeout:    30 * time.Second,
	}
}

// ValidateText checks length, null bytes and UTF-8 encoding of a
// user-supplied string.
func ValidateText(field, input string, maxLength int) error {
	if maxLength > 0 && utf8.RuneCountInString(input) > maxLength {
		return fmt.Errorf("%s exceeds maximum length of %d characters", field, maxLength)
	}

	if strings.Contains(input, "\x00") {
		return fmt.Errorf("%s contains invalid characters", field)
	}

	if !utf8.ValidString(input) {
		return fmt.Errorf("%s contains invalid UTF-8 encoding", field)
	}

	return nil
}

// SanitizeQuery trims a search term and collapses internal whitespace.
func SanitizeQuery(input string) string {
	return strings.Join(strings.Fields(input), " ")
}

// CORSMiddleware allows the configured origins to call the API.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = origins
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	cfg.ExposeHeaders = []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"}
	cfg.AllowCredentials = true
	cfg.MaxAge = 12 * time.Hour
	return cors.New(cfg)
}

// ValidateContentType rejects request bodies that are not JSON
func ValidateContentType() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength == 0 || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		contentType := strings.ToLower(c.GetHeader("Content-Type"))
		if contentType != "" && !strings.HasPrefix(contentType, "application/json") {
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
				"error": gin.H{"kind": "validation_failure", "message": "unsupported content type"},
			})
			return
		}

		c.Next()
	}
}

// RequestTimeout bounds the request context
func RequestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Timeout", strconv.Itoa(int(timeout.Seconds())))

		c.Next()
	}
}

// MaxBodySize caps the size of request bodies
func MaxBodySize(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
