package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	apperrors "github.com/ZanzyTHEbar/candidate-evaluator/internal/errors"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

// Dialect selects placeholder style and DDL.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DialectFor maps a database/sql driver name to its SQL dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "sqlite3", "sqlite":
		return DialectSQLite, nil
	case "pgx", "postgres":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("unsupported driver: %s", driver)
	}
}

// Options configures Open.
type Options struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DB represents the database connection with pooling
type DB struct {
	*sql.DB
	driver   string
	dialect  Dialect
	pool     *ConnectionPool
	prepared map[string]*sql.Stmt
	mutex    sync.RWMutex
}

// ConnectionPool manages database connection pooling
type ConnectionPool struct {
	db           *sql.DB
	maxOpenConns int
	maxIdleConns int
	maxLifetime  time.Duration
}

// NewConnectionPool creates a new database connection pool
func NewConnectionPool(db *sql.DB, maxOpen, maxIdle int, maxLifetime time.Duration) *ConnectionPool {
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)

	return &ConnectionPool{
		db:           db,
		maxOpenConns: maxOpen,
		maxIdleConns: maxIdle,
		maxLifetime:  maxLifetime,
	}
}

// GetStats returns connection pool statistics
func (cp *ConnectionPool) GetStats() map[string]interface{} {
	stats := cp.db.Stats()

	return map[string]interface{}{
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"max_open_connections": cp.maxOpenConns,
		"max_idle_connections": cp.maxIdleConns,
		"max_lifetime_seconds": cp.maxLifetime.Seconds(),
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
}

// Open connects with the configured driver, tunes the pool, and migrates the schema.
func Open(ctx context.Context, opts Options) (*DB, error) {
	dialect, err := DialectFor(opts.Driver)
	if err != nil {
		return nil, err
	}

	dsn := opts.DSN
	maxOpen, maxIdle, lifetime := opts.MaxOpenConns, opts.MaxIdleConns, opts.ConnMaxLifetime
	if dialect == DialectSQLite {
		if err := ensureDataDir(dsn); err != nil {
			return nil, err
		}
		dsn = sqliteDSN(opts.Driver, dsn)
		// single writer, and each :memory: connection is its own database
		maxOpen, maxIdle, lifetime = 1, 1, 0
	}

	db, err := sql.Open(sqlDriverName(opts.Driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, apperrors.StorageUnavailable("ping database", err)
	}

	pool := NewConnectionPool(db, maxOpen, maxIdle, lifetime)

	database := &DB{
		DB:       db,
		driver:   opts.Driver,
		dialect:  dialect,
		pool:     pool,
		prepared: make(map[string]*sql.Stmt),
	}

	if err := database.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := database.initPreparedStatements(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize prepared statements: %w", err)
	}

	slog.Info("Database initialized with connection pooling",
		"driver", opts.Driver,
		"max_open_conns", pool.maxOpenConns,
		"max_idle_conns", pool.maxIdleConns,
		"max_lifetime", pool.maxLifetime)

	return database, nil
}

func ensureDataDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || strings.Contains(path, ":memory:") {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	return nil
}

// sqliteDSN appends foreign key and busy timeout settings in the syntax
// each driver understands.
func sqliteDSN(driver, dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	if driver == "sqlite" {
		return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	return dsn + sep + "_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
}

// Dialect returns the SQL dialect of the connection.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Driver returns the database/sql driver name.
func (db *DB) Driver() string {
	return db.driver
}

// Rebind rewrites ? placeholders to $n for Postgres.
func (db *DB) Rebind(query string) string {
	return rebind(db.dialect, query)
}

func rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '\'':
			inQuote = !inQuote
			b.WriteByte(ch)
		case ch == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

func (db *DB) migrate(ctx context.Context) error {
	queries := schemaSQLite
	if db.dialect == DialectPostgres {
		queries = schemaPostgres
	}

	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

var schemaSQLite = []string{
	`CREATE TABLE IF NOT EXISTS candidates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone TEXT,
		location TEXT,
		bio TEXT,
		avatar_url TEXT,
		years_experience INTEGER,
		primary_skill TEXT NOT NULL,
		secondary_skills TEXT NOT NULL DEFAULT '[]', -- JSON array
		linkedin_url TEXT,
		github_url TEXT,
		website_url TEXT,
		created_at BIGINT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS evaluations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		candidate_id INTEGER NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
		prompt_type TEXT NOT NULL,
		response TEXT NOT NULL,
		rubric_scores TEXT NOT NULL, -- JSON object keyed by category
		total_score REAL NOT NULL,
		evaluator_notes TEXT,
		created_at BIGINT NOT NULL,
		UNIQUE(candidate_id, prompt_type)
	)`,

	`CREATE TABLE IF NOT EXISTS rankings (
		candidate_id INTEGER PRIMARY KEY REFERENCES candidates(id) ON DELETE CASCADE,
		overall_score REAL NOT NULL,
		crisis_score REAL NOT NULL DEFAULT 0,
		sustainability_score REAL NOT NULL DEFAULT 0,
		team_score REAL NOT NULL DEFAULT 0,
		share_token TEXT UNIQUE,
		is_shared BOOLEAN NOT NULL DEFAULT FALSE,
		last_shared_at BIGINT,
		updated_at BIGINT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_rankings_order ON rankings(overall_score DESC, candidate_id ASC)`,
	`CREATE INDEX IF NOT EXISTS idx_candidates_primary_skill ON candidates(primary_skill)`,
	`CREATE INDEX IF NOT EXISTS idx_evaluations_candidate ON evaluations(candidate_id)`,
}

var schemaPostgres = []string{
	`CREATE TABLE IF NOT EXISTS candidates (
		id BIGSERIAL PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone TEXT,
		location TEXT,
		bio TEXT,
		avatar_url TEXT,
		years_experience INTEGER,
		primary_skill TEXT NOT NULL,
		secondary_skills TEXT NOT NULL DEFAULT '[]',
		linkedin_url TEXT,
		github_url TEXT,
		website_url TEXT,
		created_at BIGINT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS evaluations (
		id BIGSERIAL PRIMARY KEY,
		candidate_id BIGINT NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
		prompt_type TEXT NOT NULL,
		response TEXT NOT NULL,
		rubric_scores TEXT NOT NULL,
		total_score DOUBLE PRECISION NOT NULL,
		evaluator_notes TEXT,
		created_at BIGINT NOT NULL,
		UNIQUE(candidate_id, prompt_type)
	)`,

	`CREATE TABLE IF NOT EXISTS rankings (
		candidate_id BIGINT PRIMARY KEY REFERENCES candidates(id) ON DELETE CASCADE,
		overall_score DOUBLE PRECISION NOT NULL,
		crisis_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		sustainability_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		team_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		share_token TEXT UNIQUE,
		is_shared BOOLEAN NOT NULL DEFAULT FALSE,
		last_shared_at BIGINT,
		updated_at BIGINT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_rankings_order ON rankings(overall_score DESC, candidate_id ASC)`,
	`CREATE INDEX IF NOT EXISTS idx_candidates_primary_skill ON candidates(primary_skill)`,
	`CREATE INDEX IF NOT EXISTS idx_evaluations_candidate ON evaluations(candidate_id)`,
}

// initPreparedStatements prepares the hot read paths.
func (db *DB) initPreparedStatements(ctx context.Context) error {
	statements := map[string]string{
		stmtRankingByCandidate:    queryRankingByCandidate,
		stmtCandidateByShareToken: queryCandidateByShareToken,
		stmtCountRankings:         queryCountRankings,
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, query := range statements {
		stmt, err := db.PrepareContext(ctx, db.Rebind(query))
		if err != nil {
			return fmt.Errorf("failed to prepare statement %s: %w", name, err)
		}
		db.prepared[name] = stmt

		slog.Debug("Prepared statement initialized", "name", name)
	}

	return nil
}

const (
	stmtRankingByCandidate    = "ranking_by_candidate"
	stmtCandidateByShareToken = "candidate_by_share_token"
	stmtCountRankings         = "count_rankings"
)

// GetPreparedStatement retrieves a prepared statement
func (db *DB) GetPreparedStatement(name string) (*sql.Stmt, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	stmt, exists := db.prepared[name]
	if !exists {
		return nil, fmt.Errorf("prepared statement %s not found", name)
	}

	return stmt, nil
}

// GetPoolStats returns database connection pool statistics
func (db *DB) GetPoolStats() map[string]interface{} {
	return db.pool.GetStats()
}

// Close closes the database connection and prepared statements
func (db *DB) Close() error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, stmt := range db.prepared {
		if err := stmt.Close(); err != nil {
			slog.Warn("Failed to close prepared statement", "name", name, "error", err)
		}
	}
	db.prepared = make(map[string]*sql.Stmt)

	return db.DB.Close()
}
