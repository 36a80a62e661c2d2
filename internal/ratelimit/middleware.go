package ratelimit

import (
	"log/slog"
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ZanzyTHEbar/candidate-evaluator/internal/errors"
)

// Middleware limits requests per client IP under scope.
func (rl *RateLimiter) Middleware(scope string, r Rate) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		result, err := rl.Allow(c.Request.Context(), Key(scope, ip), r)
		if err != nil {
			// A broken limiter must not take the API down with it.
			slog.Error("Rate limit check failed", "scope", scope, "ip", ip, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			seconds := strconv.Itoa(int(math.Ceil(result.RetryAfter.Seconds())))
			c.Header("Retry-After", seconds)
			apperrors.Abort(c, apperrors.NewRateLimitError(seconds+"s"))
			return
		}

		c.Next()
	}
}

// IPRateLimitMiddleware applies the general per-IP limit
func (rl *RateLimiter) IPRateLimitMiddleware() gin.HandlerFunc {
	return rl.Middleware("ip", rl.IPRate())
}
