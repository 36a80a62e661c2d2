package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the optional shared store behind the rate limiter. A zero
// value is disabled and limits are then kept per process.
type RedisClient struct {
	rdb  *redis.Client
	addr string
}

// NewRedisClient connects to addr. An empty addr yields a disabled client
// and no error. A failed ping also yields a disabled client, together with
// the ping error so the caller can log it and carry on.
func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	if addr == "" {
		slog.Info("No redis address configured, rate limits are kept per process")
		return &RedisClient{}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   2,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolSize:     10,
		PoolTimeout:  2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return &RedisClient{addr: addr}, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	slog.Info("Rate limits shared through redis", "addr", addr, "db", db)
	return &RedisClient{rdb: rdb, addr: addr}, nil
}

// IsEnabled reports whether limits go through redis.
func (r *RedisClient) IsEnabled() bool {
	return r != nil && r.rdb != nil
}

// GetClient returns the connected client, or nil when disabled.
func (r *RedisClient) GetClient() *redis.Client {
	if r == nil {
		return nil
	}
	return r.rdb
}

func (r *RedisClient) Close() error {
	if !r.IsEnabled() {
		return nil
	}
	return r.rdb.Close()
}

// Stats reports the connection pool counters.
func (r *RedisClient) Stats() map[string]interface{} {
	if !r.IsEnabled() {
		return map[string]interface{}{"enabled": false}
	}

	ps := r.rdb.PoolStats()
	return map[string]interface{}{
		"enabled":     true,
		"addr":        r.addr,
		"hits":        ps.Hits,
		"misses":      ps.Misses,
		"timeouts":    ps.Timeouts,
		"total_conns": ps.TotalConns,
		"idle_conns":  ps.IdleConns,
	}
}
