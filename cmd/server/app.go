package main

import (
	"context"
	"log/slog"
	"net/http/pprof"

	"github.com/gin-gonic/gin"

	"github.com/ZanzyTHEbar/candidate-evaluator/internal/api"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/auth"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/config"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/database"
	apperrors "github.com/ZanzyTHEbar/candidate-evaluator/internal/errors"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/evaluation"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/leaderboard"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/monitoring"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/profile"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/ratelimit"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/resilience"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/sharing"
)

// app owns every long-lived resource of the server process.
type app struct {
	router  *gin.Engine
	db      *database.DB
	cache   *leaderboard.LeaderboardCache
	limiter *ratelimit.RateLimiter
}

// openDatabase connects with retries so the server can start alongside
// a database container that is still booting.
func openDatabase(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	var db *database.DB
	err := resilience.Retry(ctx, "open database", func(ctx context.Context) error {
		var err error
		db, err = database.Open(ctx, database.Options{
			Driver:          cfg.DBDriver,
			DSN:             cfg.DBDSN,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
		})
		return err
	})
	return db, err
}

func newApp(ctx context.Context, cfg *config.Config, logger *monitoring.Logger) (*app, error) {
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}

	repo := database.NewRepository(db)
	lc := leaderboard.NewLeaderboardCache(cfg.CacheTTL)
	rankings := leaderboard.NewService(repo, lc, leaderboard.Config{
		MaxLimit:     cfg.MaxLeaderboardLimit,
		DefaultLimit: cfg.DefaultPageLimit,
	})

	metrics := monitoring.NewMetrics()
	entries := lc.Cache()
	metrics.RegisterCacheStats(
		func() float64 { return float64(entries.Hits()) },
		func() float64 { return float64(entries.Misses()) },
		func() float64 { return float64(entries.Size()) },
	)

	redisClient, err := ratelimit.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.SystemLogger("redis_unavailable", err.Error())
	}
	limiter := ratelimit.NewRateLimiter(redisClient, ratelimit.Config{
		PerMinute:      cfg.RateLimitPerMinute,
		Burst:          cfg.RateLimitBurst,
		LoginPerMinute: cfg.LoginRateLimitPerMinute,
		SharePerMinute: cfg.ShareRateLimitPerMinute,
	}, metrics)

	reviewers := auth.NewService(cfg.JWTSecret, cfg.AdminUsername, cfg.AdminPasswordHash, cfg.TokenTTL)
	if !reviewers.Enabled() {
		slog.Warn("jwt_secret is empty, reviewer routes are unauthenticated")
	}

	router := api.NewRouter(api.Deps{
		Config:      cfg,
		Repo:        repo,
		Leaderboard: rankings,
		Profiles:    profile.NewService(repo, rankings),
		Sharing:     sharing.NewService(repo, rankings, cfg.FrontendURL),
		Evaluations: evaluation.NewWriter(repo, rankings),
		Auth:        reviewers,
		Limiter:     limiter,
		Metrics:     metrics,
		Logger:      logger,
	})

	if cfg.EnableProfiling {
		slog.Info("Enabling performance profiling endpoints")
		mountProfiling(router)
	}

	return &app{router: router, db: db, cache: lc, limiter: limiter}, nil
}

func mountProfiling(r *gin.Engine) {
	debug := r.Group("/debug/pprof")
	debug.GET("/", gin.WrapF(pprof.Index))
	debug.GET("/cmdline", gin.WrapF(pprof.Cmdline))
	debug.GET("/profile", gin.WrapF(pprof.Profile))
	debug.GET("/symbol", gin.WrapF(pprof.Symbol))
	debug.GET("/trace", gin.WrapF(pprof.Trace))
	debug.GET("/heap", gin.WrapH(pprof.Handler("heap")))
	debug.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
}

// Close releases resources in reverse order of creation.
func (a *app) Close() {
	// also closes the redis client
	apperrors.SafeClose(a.limiter, "rate limiter")
	a.cache.Close()
	apperrors.SafeClose(a.db, "database")
}
