package main

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/candidate-evaluator/internal/config"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/database"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/leaderboard"
	"github.com/ZanzyTHEbar/candidate-evaluator/internal/monitoring"
)

//nolint:gochecknoglobals // Cobra boilerplate
var verbose bool

//nolint:gochecknoglobals // Cobra boilerplate
var dsnOverride string

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "evalctl",
	Short: "Administer the candidate evaluation database",
	Long: `evalctl migrates, seeds and inspects the candidate evaluation database.

It reads the same configuration as the server: EVAL_* environment variables,
an optional .env file and the YAML file named by EVAL_CONFIG.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&dsnOverride, "dsn", "", "database DSN (overrides EVAL_DB_DSN)")
}

// store bundles what most subcommands need.
type store struct {
	cfg      *config.Config
	db       *database.DB
	repo     *database.Repository
	cache    *leaderboard.LeaderboardCache
	rankings *leaderboard.Service
}

func (s *store) Close() {
	s.cache.Close()
	_ = s.db.Close()
}

// openStore loads configuration and opens the migrated database.
func openStore(ctx context.Context) (s *store, err error) {
	var cfg *config.Config
	cfg, err = config.Load(ctx)
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return s, err
	}
	if dsnOverride != "" {
		cfg.DBDSN = dsnOverride
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	monitoring.NewLogger(level)

	var db *database.DB
	db, err = database.Open(ctx, database.Options{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DBDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		err = errors.Wrapf(err, "failed to open %s database", cfg.DBDriver)
		return s, err
	}

	repo := database.NewRepository(db)
	lc := leaderboard.NewLeaderboardCache(cfg.CacheTTL)
	rankings := leaderboard.NewService(repo, lc, leaderboard.Config{
		MaxLimit:     cfg.MaxLeaderboardLimit,
		DefaultLimit: cfg.DefaultPageLimit,
	})

	s = &store{cfg: cfg, db: db, repo: repo, cache: lc, rankings: rankings}
	return s, err
}
