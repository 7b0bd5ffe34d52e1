package kv

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGStorePutUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &PGStore{DB: db, Now: func() time.Time { return fixed }}

	mock.ExpectExec("INSERT INTO kv_records").
		WithArgs("maintenance_state_plan-1", `{"isCritical":true}`, fixed).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Put(context.Background(), "maintenance_state_plan-1", []byte(`{"isCritical":true}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	store := &PGStore{DB: db}

	mock.ExpectQuery("SELECT value\\s+FROM kv_records").
		WithArgs("maintenance_history").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("[]"))
	mock.ExpectQuery("SELECT value\\s+FROM kv_records").
		WithArgs("maintenance_settings").
		WillReturnError(sql.ErrNoRows)

	got, ok, err := store.Get(context.Background(), "maintenance_history")
	if err != nil || !ok || string(got) != "[]" {
		t.Fatalf("Get history: %q ok=%v err=%v", got, ok, err)
	}
	_, ok, err = store.Get(context.Background(), "maintenance_settings")
	if err != nil || ok {
		t.Fatalf("expected missing settings, ok=%v err=%v", ok, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
