// Command migrate applies the embedded schema for the configured KV backend.
//
//	go run ./cmd/migrate            apply pending migrations
//	go run ./cmd/migrate -status    list applied and pending migrations
//	go run ./cmd/migrate -down      roll back the latest migration
package main

import (
	"context"
	"database/sql"
	"flag"
	"os"

	"maintenance-backend/internal/shared/config"
	"maintenance-backend/internal/shared/storage/db"
	"maintenance-backend/internal/shared/telemetry"
)

func main() {
	status := flag.Bool("status", false, "print migration status and exit")
	down := flag.Bool("down", false, "roll back the most recent migration")
	flag.Parse()

	cfg := config.Load()
	ctx := context.Background()

	var (
		sqlDB   *sql.DB
		dialect string
		err     error
	)
	switch cfg.KVBackend {
	case "postgres":
		dialect = db.DialectPostgres
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	case "sqlite":
		dialect = db.DialectSQLite
		sqlDB, err = db.OpenSQLite(ctx, cfg.SQLitePath, db.DefaultMigrateOptions())
	default:
		telemetry.Info("migrate.skipped", map[string]any{"kv_backend": cfg.KVBackend, "reason": "no schema"})
		return
	}
	if err != nil {
		fail("migrate.connect", err)
	}
	defer sqlDB.Close()

	switch {
	case *status:
		err = db.PrintStatus(ctx, sqlDB, dialect)
	case *down:
		err = db.RollbackLast(ctx, sqlDB, dialect)
	default:
		err = db.RunMigrations(ctx, sqlDB, dialect)
	}
	if err != nil {
		fail("migrate.failed", err)
	}
	telemetry.Info("migrate.done", map[string]any{"kv_backend": cfg.KVBackend, "status": *status, "down": *down})
}

func fail(msg string, err error) {
	telemetry.Error(msg, map[string]any{"error": err})
	os.Exit(1)
}
