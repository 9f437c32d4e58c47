package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"data_logger/internal/models"
)

type ReadingSQLite struct {
	db *sql.DB
}

func NewReadingSQLite(db *sql.DB) *ReadingSQLite { return &ReadingSQLite{db: db} }

var _ ReadingRepo = (*ReadingSQLite)(nil)

const (
	insertReadingSQL = `INSERT INTO readings (session_id, distance, command, received_at) VALUES (?, ?, ?, ?)`
	countReadingsSQL = `SELECT COUNT(*) FROM readings WHERE session_id = ?`
	listReadingsSQL  = `SELECT seq, distance, command, received_at FROM readings WHERE session_id = ? ORDER BY seq ASC`
)

// Append stores r at the end of the session's Log. The returned Reading
// carries its 1-based position within the session and a UTC timestamp.
func (r *ReadingSQLite) Append(ctx context.Context, sessionID string, rd models.Reading) (models.Reading, error) {
	if rd.ReceivedAt.IsZero() {
		rd.ReceivedAt = time.Now().UTC()
	} else {
		rd.ReceivedAt = rd.ReceivedAt.UTC()
	}

	if _, err := r.db.ExecContext(ctx, insertReadingSQL, sessionID, rd.Distance, rd.Command, rd.ReceivedAt); err != nil {
		return models.Reading{}, fmt.Errorf("insert reading: %w", err)
	}

	n, err := r.Count(ctx, sessionID)
	if err != nil {
		return models.Reading{}, err
	}
	rd.Seq = n
	return rd, nil
}

// Count returns the number of readings logged for the session.
func (r *ReadingSQLite) Count(ctx context.Context, sessionID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countReadingsSQL, sessionID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count readings: %w", err)
	}
	return n, nil
}

// List returns the session's Log in arrival order.
func (r *ReadingSQLite) List(ctx context.Context, sessionID string) ([]models.Reading, error) {
	rows, err := r.db.QueryContext(ctx, listReadingsSQL, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	defer rows.Close()

	out := make([]models.Reading, 0, 64)
	for pos := 1; rows.Next(); pos++ {
		var (
			rd  models.Reading
			seq int64
		)
		if err := rows.Scan(&seq, &rd.Distance, &rd.Command, &rd.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		// seq is global across sessions; expose the position inside this one
		rd.Seq = pos
		rd.ReceivedAt = rd.ReceivedAt.UTC()
		out = append(out, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
