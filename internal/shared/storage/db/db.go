package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"maintenance-backend/internal/shared/telemetry"
)

// Options tunes the connection pool. Zero values fall back to the
// server defaults when the pool is configured.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

var openDB = sql.Open

func DefaultServerOptions() Options {
	return Options{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 2 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
}

// DefaultSQLiteOptions pins the pool to one connection since the report
// database has a single writer.
func DefaultSQLiteOptions() Options {
	return Options{
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     3 * time.Second,
	}
}

func DefaultMigrateOptions() Options {
	o := DefaultSQLiteOptions()
	o.PingTimeout = 5 * time.Second
	return o
}

// OptionsFromEnv applies DB_* overrides. Malformed values are logged and ignored.
func OptionsFromEnv(defaults Options) Options {
	opts := defaults
	ints := map[string]*int{
		"DB_MAX_OPEN_CONNS": &opts.MaxOpenConns,
		"DB_MAX_IDLE_CONNS": &opts.MaxIdleConns,
	}
	for key, dst := range ints {
		if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				telemetry.Warn("db.env_invalid", map[string]any{"key": key, "error": err.Error()})
				continue
			}
			*dst = v
		}
	}
	durations := map[string]*time.Duration{
		"DB_CONN_MAX_LIFETIME":  &opts.ConnMaxLifetime,
		"DB_CONN_MAX_IDLE_TIME": &opts.ConnMaxIdleTime,
		"DB_PING_TIMEOUT":       &opts.PingTimeout,
	}
	for key, dst := range durations {
		if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
			v, err := time.ParseDuration(raw)
			if err != nil {
				telemetry.Warn("db.env_invalid", map[string]any{"key": key, "error": err.Error()})
				continue
			}
			*dst = v
		}
	}
	return opts
}

// Connect opens the Postgres database behind DATABASE_URL.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, errors.New("DATABASE_URL is empty")
	}
	return open(ctx, DialectPostgres, "pgx", databaseURL, opts)
}

// OpenSQLite opens the file at path in WAL mode, creating parent
// directories. ":memory:" is passed through.
func OpenSQLite(ctx context.Context, path string, opts Options) (*sql.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path is empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	return open(ctx, DialectSQLite, "sqlite", dsn, opts)
}

func open(ctx context.Context, dialect, driver, dsn string, opts Options) (*sql.DB, error) {
	database, err := openDB(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	configurePool(database, opts)

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := database.PingContext(pingCtx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	stats := database.Stats()
	telemetry.Info("db.connected", map[string]any{
		"dialect":  dialect,
		"max_open": stats.MaxOpenConnections,
		"open":     stats.OpenConnections,
	})
	return database, nil
}

func configurePool(database *sql.DB, opts Options) {
	fallback := DefaultServerOptions()
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = fallback.MaxOpenConns
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = fallback.MaxIdleConns
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = fallback.ConnMaxLifetime
	}
	database.SetMaxOpenConns(opts.MaxOpenConns)
	database.SetMaxIdleConns(opts.MaxIdleConns)
	database.SetConnMaxLifetime(opts.ConnMaxLifetime)
	if opts.ConnMaxIdleTime > 0 {
		database.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}
