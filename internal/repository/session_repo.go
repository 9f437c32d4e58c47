package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"data_logger/internal/models"
)

type SessionSQLite struct {
	db *sql.DB
}

func NewSessionSQLite(db *sql.DB) *SessionSQLite {
	return &SessionSQLite{db: db}
}

var _ SessionRepo = (*SessionSQLite)(nil)

const (
	sessionStateRowID = 1

	upsertSessionSQL = `
		INSERT INTO session_state (id, session_id, port, status, baud_rate, read_timeout_s, opened_at, closed_at, last_error, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			session_id=excluded.session_id,
			port=excluded.port,
			status=excluded.status,
			baud_rate=excluded.baud_rate,
			read_timeout_s=excluded.read_timeout_s,
			opened_at=excluded.opened_at,
			closed_at=excluded.closed_at,
			last_error=excluded.last_error,
			updated_at=excluded.updated_at
	`

	selectSessionSQL = `
		SELECT id, session_id, port, status, baud_rate, read_timeout_s, opened_at, closed_at, last_error, updated_at
		FROM session_state WHERE id=?
	`
)

func nullableTime(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC()
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

// Save replaces the snapshot row (id always 1). Readings is derived from the
// readings table and not stored here.
func (r *SessionSQLite) Save(ctx context.Context, s models.SessionState) error {
	ts := s.UpdatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	} else {
		ts = ts.UTC()
	}

	_, err := r.db.ExecContext(ctx, upsertSessionSQL,
		sessionStateRowID,
		s.SessionID,
		s.Port,
		s.Status,
		s.BaudRate,
		s.ReadTimeoutSeconds,
		nullableTime(s.OpenedAt),
		nullableTime(s.ClosedAt),
		s.LastError,
		ts,
	)
	return err
}

// Load fetches the snapshot. Before the first session it returns a zero
// value with Status "closed".
func (r *SessionSQLite) Load(ctx context.Context) (models.SessionState, error) {
	row := r.db.QueryRowContext(ctx, selectSessionSQL, sessionStateRowID)

	var (
		s                  models.SessionState
		openedAt, closedAt sql.NullTime
		lastErr            sql.NullString
	)
	if err := row.Scan(
		&s.ID,
		&s.SessionID,
		&s.Port,
		&s.Status,
		&s.BaudRate,
		&s.ReadTimeoutSeconds,
		&openedAt,
		&closedAt,
		&lastErr,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SessionState{Status: models.SessionClosed}, nil
		}
		return models.SessionState{}, err
	}

	s.OpenedAt = timePtr(openedAt)
	s.ClosedAt = timePtr(closedAt)
	s.LastError = lastErr.String
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}
