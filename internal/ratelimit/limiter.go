package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"golang.org/x/time/rate"
)

const (
	fallbackIdleTTL     = 30 * time.Minute
	fallbackSweepPeriod = 10 * time.Minute
)

// Config holds rate limiter configuration
type Config struct {
	PerMinute      int // requests per minute per client IP
	Burst          int // extra requests allowed in a burst
	LoginPerMinute int // login attempts per minute per client IP
	SharePerMinute int // shared profile views per minute per client IP
}

// DefaultConfig returns default rate limiting configuration
func DefaultConfig() Config {
	return Config{
		PerMinute:      60,
		Burst:          10,
		LoginPerMinute: 5,
		SharePerMinute: 30,
	}
}

// Rate is a limit of Limit requests per Period with a bucket of Burst.
type Rate struct {
	Limit  int
	Burst  int
	Period time.Duration
}

func (r Rate) burst() int {
	if r.Burst > 0 {
		return r.Burst
	}
	return r.Limit
}

// Result represents the result of a rate limit check
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
	Backend    string
}

// BlockRecorder receives rejected checks, labeled by backend.
type BlockRecorder interface {
	RateLimitBlocked(backend string)
}

type fallbackEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter provides distributed rate limiting with Redis and an
// in-memory fallback
type RateLimiter struct {
	redisLimiter *redis_rate.Limiter
	redisClient  *RedisClient
	config       Config
	recorder     BlockRecorder

	fallbackLimiters map[string]*fallbackEntry
	fallbackMutex    sync.Mutex

	stop      chan struct{}
	closeOnce sync.Once
}

// NewRateLimiter creates a rate limiter. redisClient and recorder may be nil.
func NewRateLimiter(redisClient *RedisClient, config Config, recorder BlockRecorder) *RateLimiter {
	if redisClient == nil {
		redisClient = &RedisClient{}
	}

	rl := &RateLimiter{
		redisClient:      redisClient,
		config:           config,
		recorder:         recorder,
		fallbackLimiters: make(map[string]*fallbackEntry),
		stop:             make(chan struct{}),
	}

	if redisClient.IsEnabled() {
		rl.redisLimiter = redis_rate.NewLimiter(redisClient.GetClient())
		slog.Info("Redis rate limiter initialized")
	} else {
		slog.Info("Using in-memory rate limiting")
	}

	go rl.cleanupFallbackLimiters()

	return rl
}

// IPRate is the general per-IP limit.
func (rl *RateLimiter) IPRate() Rate {
	return Rate{Limit: rl.config.PerMinute, Burst: rl.config.PerMinute + rl.config.Burst, Period: time.Minute}
}

// LoginRate is the per-IP limit on login attempts.
func (rl *RateLimiter) LoginRate() Rate {
	return Rate{Limit: rl.config.LoginPerMinute, Period: time.Minute}
}

// ShareRate is the per-IP limit on the public shared profile route.
func (rl *RateLimiter) ShareRate() Rate {
	return Rate{Limit: rl.config.SharePerMinute, Period: time.Minute}
}

// Key builds the limiter key for a scope and client.
func Key(scope, client string) string {
	return fmt.Sprintf("ratelimit:%s:%s", scope, client)
}

// Allow checks key against r, preferring Redis and falling back to memory
// when Redis is disabled or failing.
func (rl *RateLimiter) Allow(ctx context.Context, key string, r Rate) (*Result, error) {
	if r.Limit <= 0 || r.Period <= 0 {
		return nil, fmt.Errorf("invalid rate %+v", r)
	}

	if rl.redisClient.IsEnabled() && rl.redisLimiter != nil {
		result, err := rl.allowRedis(ctx, key, r)
		if err == nil {
			rl.record(result)
			return result, nil
		}
		slog.Warn("Redis rate limit check failed, using fallback", "key", key, "error", err)
	}

	result := rl.allowFallback(key, r)
	rl.record(result)
	return result, nil
}

func (rl *RateLimiter) record(result *Result) {
	if !result.Allowed && rl.recorder != nil {
		rl.recorder.RateLimitBlocked(result.Backend)
	}
}

func (rl *RateLimiter) allowRedis(ctx context.Context, key string, r Rate) (*Result, error) {
	res, err := rl.redisLimiter.Allow(ctx, key, redis_rate.Limit{
		Rate:   r.Limit,
		Burst:  r.burst(),
		Period: r.Period,
	})
	if err != nil {
		return nil, fmt.Errorf("redis rate limit check failed: %w", err)
	}

	return &Result{
		Allowed:    res.Allowed > 0,
		Limit:      res.Limit.Rate,
		Remaining:  res.Remaining,
		ResetAt:    time.Now().Add(res.ResetAfter),
		RetryAfter: res.RetryAfter,
		Backend:    "redis",
	}, nil
}

// allowFallback uses a token bucket refilled at Limit per Period.
func (rl *RateLimiter) allowFallback(key string, r Rate) *Result {
	now := time.Now()

	rl.fallbackMutex.Lock()
	entry, exists := rl.fallbackLimiters[key]
	if !exists {
		every := r.Period / time.Duration(r.Limit)
		entry = &fallbackEntry{limiter: rate.NewLimiter(rate.Every(every), r.burst())}
		rl.fallbackLimiters[key] = entry
	}
	entry.lastSeen = now
	rl.fallbackMutex.Unlock()

	result := &Result{
		Limit:   r.Limit,
		ResetAt: now.Add(r.Period),
		Backend: "memory",
	}

	if entry.limiter.AllowN(now, 1) {
		result.Allowed = true
		result.Remaining = int(entry.limiter.TokensAt(now))
		if result.Remaining < 0 {
			result.Remaining = 0
		}
		return result
	}

	reservation := entry.limiter.ReserveN(now, 1)
	result.RetryAfter = reservation.DelayFrom(now)
	reservation.CancelAt(now)
	if result.RetryAfter <= 0 {
		result.RetryAfter = time.Second
	}
	result.ResetAt = now.Add(result.RetryAfter)
	return result
}

// Reset forgets the state of key, for example after a successful login.
func (rl *RateLimiter) Reset(ctx context.Context, key string) error {
	rl.fallbackMutex.Lock()
	delete(rl.fallbackLimiters, key)
	rl.fallbackMutex.Unlock()

	if rl.redisClient.IsEnabled() && rl.redisLimiter != nil {
		if err := rl.redisLimiter.Reset(ctx, key); err != nil {
			return fmt.Errorf("failed to reset rate limit: %w", err)
		}
	}
	return nil
}

// cleanupFallbackLimiters drops in-memory buckets that have been idle
func (rl *RateLimiter) cleanupFallbackLimiters() {
	ticker := time.NewTicker(fallbackSweepPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.sweep(now)
		}
	}
}

func (rl *RateLimiter) sweep(now time.Time) int {
	rl.fallbackMutex.Lock()
	defer rl.fallbackMutex.Unlock()

	removed := 0
	for key, entry := range rl.fallbackLimiters {
		if now.Sub(entry.lastSeen) > fallbackIdleTTL {
			delete(rl.fallbackLimiters, key)
			removed++
		}
	}
	if removed > 0 {
		slog.Debug("Cleaned up fallback rate limiters", "removed", removed)
	}
	return removed
}

// Close stops the cleanup goroutine and closes the Redis client
func (rl *RateLimiter) Close() error {
	var err error
	rl.closeOnce.Do(func() {
		close(rl.stop)
		err = rl.redisClient.Close()
	})
	return err
}

// GetStats returns rate limiter statistics
func (rl *RateLimiter) GetStats() map[string]interface{} {
	rl.fallbackMutex.Lock()
	fallbackCount := len(rl.fallbackLimiters)
	rl.fallbackMutex.Unlock()

	stats := map[string]interface{}{
		"redis_enabled":     rl.redisClient.IsEnabled(),
		"fallback_limiters": fallbackCount,
	}

	if rl.redisClient.IsEnabled() {
		stats["redis_pool"] = rl.redisClient.Stats()
	}

	return stats
}
