// Package config defines the server configuration and how it is loaded.
package config

import (
	"time"
)

// Config contains process configuration for the API server and evalctl.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":5000".
	Addr string `koanf:"addr"`

	// GinMode is passed to gin.SetMode: debug, release or test.
	GinMode string `koanf:"gin_mode"`

	// DBDriver selects the database/sql driver: sqlite3, sqlite, pgx or postgres.
	DBDriver string `koanf:"db_driver"`

	// DBDSN is the driver-specific data source name.
	DBDSN string `koanf:"db_dsn"`

	DBMaxOpenConns    int           `koanf:"db_max_open_conns"`
	DBMaxIdleConns    int           `koanf:"db_max_idle_conns"`
	DBConnMaxLifetime time.Duration `koanf:"db_conn_max_lifetime"`

	// FrontendURL is the base of generated share links.
	FrontendURL string `koanf:"frontend_url"`

	// CORSOrigins lists allowed browser origins. Empty allows FrontendURL only.
	CORSOrigins []string `koanf:"cors_origins"`

	// CacheTTL bounds how long leaderboard pages stay cached between writes.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// MaxLeaderboardLimit caps page sizes and top-N requests.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// DefaultPageLimit is used when a page request omits or mangles limit.
	DefaultPageLimit int `koanf:"default_page_limit"`

	// RedisAddr enables distributed rate limiting when set.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// RateLimitPerMinute and RateLimitBurst apply per client IP.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute"`
	RateLimitBurst     int `koanf:"rate_limit_burst"`

	// Tighter per-IP limits for login attempts and shared profile views.
	LoginRateLimitPerMinute int `koanf:"login_rate_limit_per_minute"`
	ShareRateLimitPerMinute int `koanf:"share_rate_limit_per_minute"`

	// EnableHSTS sends Strict-Transport-Security; set it behind TLS only.
	EnableHSTS bool `koanf:"enable_hsts"`

	// EnableProfiling mounts net/http/pprof under /debug/pprof.
	EnableProfiling bool `koanf:"enable_profiling"`

	// JWTSecret signs reviewer tokens. Reviewer routes are open when empty.
	JWTSecret string `koanf:"jwt_secret"`

	// AdminUsername and AdminPasswordHash (bcrypt) identify the reviewer account.
	AdminUsername     string `koanf:"admin_username"`
	AdminPasswordHash string `koanf:"admin_password_hash"`

	// TokenTTL is the lifetime of issued reviewer tokens.
	TokenTTL time.Duration `koanf:"token_ttl"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":5000",
		GinMode:             "release",
		DBDriver:            "sqlite3",
		DBDSN:               "data/evaluations.db",
		DBMaxOpenConns:      25,
		DBMaxIdleConns:      5,
		DBConnMaxLifetime:   5 * time.Minute,
		FrontendURL:         "http://localhost:3000",
		CacheTTL:            5 * time.Minute,
		MaxLeaderboardLimit: 100,
		DefaultPageLimit:    20,
		RateLimitPerMinute:  60,
		RateLimitBurst:      10,
		AdminUsername:       "admin",
		TokenTTL:            12 * time.Hour,

		LoginRateLimitPerMinute: 5,
		ShareRateLimitPerMinute: 30,
	}
}

// AllowedOrigins returns the CORS allow-list.
func (c *Config) AllowedOrigins() []string {
	if len(c.CORSOrigins) > 0 {
		return c.CORSOrigins
	}
	return []string{c.FrontendURL}
}

// AuthEnabled reports whether reviewer routes require a token.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}
