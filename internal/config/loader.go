package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "EVAL_"

var validDrivers = map[string]bool{
	"sqlite3":  true,
	"sqlite":   true,
	"pgx":      true,
	"postgres": true,
}

// Load builds a Config by layering, from lowest to highest precedence:
//  1. defaults (New)
//  2. YAML file named by EVAL_CONFIG
//  3. environment (EVAL_ prefix), after merging a .env file if present
func Load(_ context.Context) (*Config, error) {
	dotenv := os.Getenv(EnvPrefix + "DOTENV")
	if dotenv == "" {
		dotenv = ".env"
	}
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, dotenv, err)
	}

	k := koanf.New(".")

	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// EVAL_DB_DRIVER -> db_driver
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late at startup.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !validDrivers[c.DBDriver]:
		return fmt.Errorf("%w: unsupported db_driver %q", ErrInvalidConfig, c.DBDriver)
	case c.DBDSN == "":
		return fmt.Errorf("%w: db_dsn must not be empty", ErrInvalidConfig)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	case c.DefaultPageLimit < 1 || c.DefaultPageLimit > c.MaxLeaderboardLimit:
		return fmt.Errorf("%w: default_page_limit must be within [1, max_leaderboard_limit]", ErrInvalidConfig)
	case c.RateLimitPerMinute < 1 || c.LoginRateLimitPerMinute < 1 || c.ShareRateLimitPerMinute < 1:
		return fmt.Errorf("%w: rate limits must be positive", ErrInvalidConfig)
	}
	return nil
}
