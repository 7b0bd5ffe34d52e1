package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFiles embed.FS

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// goose keeps dialect and filesystem in package globals.
var gooseMu sync.Mutex

// RunMigrations applies every pending migration. A nil database is a no-op.
func RunMigrations(ctx context.Context, database *sql.DB, dialect string) error {
	return withGoose(database, dialect, func(dir string) error {
		return goose.UpContext(ctx, database, dir)
	})
}

// RollbackLast reverts the most recent migration.
func RollbackLast(ctx context.Context, database *sql.DB, dialect string) error {
	return withGoose(database, dialect, func(dir string) error {
		return goose.DownContext(ctx, database, dir)
	})
}

// PrintStatus logs applied and pending migrations through goose's logger.
func PrintStatus(ctx context.Context, database *sql.DB, dialect string) error {
	return withGoose(database, dialect, func(dir string) error {
		return goose.StatusContext(ctx, database, dir)
	})
}

func withGoose(database *sql.DB, dialect string, fn func(dir string) error) error {
	if database == nil {
		return nil
	}
	gooseDialect, dir, err := migrationTarget(dialect)
	if err != nil {
		return err
	}
	gooseMu.Lock()
	defer gooseMu.Unlock()
	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect(gooseDialect); err != nil {
		return err
	}
	return fn(dir)
}

func migrationTarget(dialect string) (string, string, error) {
	switch dialect {
	case DialectPostgres:
		return "postgres", "migrations/postgres", nil
	case DialectSQLite:
		return "sqlite3", "migrations/sqlite", nil
	default:
		return "", "", fmt.Errorf("unsupported migration dialect %q", dialect)
	}
}
