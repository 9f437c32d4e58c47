package repository

import (
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"data_logger/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestSessionSave_OpenSnapshot(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	opened := time.Date(2025, 5, 1, 9, 0, 0, 0, time.FixedZone("UTC+2", 2*3600))
	isRecentUTC := sqlmockArgumentFunc(func(v driver.Value) bool {
		tm, ok := v.(time.Time)
		return ok && tm.Location() == time.UTC && time.Since(tm) < 5*time.Second
	})

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO session_state")).
		WithArgs(1, "s-1", "COM3", models.SessionOpen, 9600, 2.0, opened.UTC(), nil, "", isRecentUTC).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = NewSessionSQLite(db).Save(ctx(t), models.SessionState{
		SessionID:          "s-1",
		Port:               "COM3",
		Status:             models.SessionOpen,
		BaudRate:           9600,
		ReadTimeoutSeconds: 2,
		OpenedAt:           &opened,
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestSessionLoad_NoRowsYieldsClosed(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, session_id").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	st, err := NewSessionSQLite(db).Load(ctx(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st.ID != 0 || st.Status != models.SessionClosed || st.SessionID != "" {
		t.Fatalf("unexpected empty snapshot: %+v", st)
	}
}

func TestSessionLoad_MapsNullableColumns(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	opened := time.Date(2025, 5, 1, 7, 0, 0, 0, time.UTC)
	closed := opened.Add(time.Minute)
	cols := []string{"id", "session_id", "port", "status", "baud_rate", "read_timeout_s", "opened_at", "closed_at", "last_error", "updated_at"}
	mock.ExpectQuery("SELECT id, session_id").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, "s-1", "COM3", "closed", 9600, 2.0, opened, closed, "device not configured", closed))

	st, err := NewSessionSQLite(db).Load(ctx(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st.OpenedAt == nil || !st.OpenedAt.Equal(opened) {
		t.Fatalf("OpenedAt = %v", st.OpenedAt)
	}
	if st.ClosedAt == nil || !st.ClosedAt.Equal(closed) {
		t.Fatalf("ClosedAt = %v", st.ClosedAt)
	}
	if st.LastError != "device not configured" || st.IsOpen() {
		t.Fatalf("unexpected snapshot: %+v", st)
	}
}

func TestSessionLoad_Error(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, session_id").WillReturnError(errors.New("db down"))
	if _, err := NewSessionSQLite(db).Load(ctx(t)); err == nil {
		t.Fatalf("expected error")
	}
}
