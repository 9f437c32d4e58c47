package repository

import (
	"context"
	"database/sql"
	"time"

	"data_logger/internal/models"
)

// ReadingRepo is the append-only Log, partitioned by session id.
type ReadingRepo interface {
	Append(ctx context.Context, sessionID string, r models.Reading) (models.Reading, error)
	List(ctx context.Context, sessionID string) ([]models.Reading, error)
	Count(ctx context.Context, sessionID string) (int, error)
}

// SessionRepo keeps the snapshot of the latest session.
type SessionRepo interface {
	Save(ctx context.Context, s models.SessionState) error
	Load(ctx context.Context) (models.SessionState, error)
}

// EventRepo is the session journal.
type EventRepo interface {
	Append(ctx context.Context, e models.SessionEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.SessionEvent, error)
}

type Repository struct {
	ReadingRepo ReadingRepo
	SessionRepo SessionRepo
	EventRepo   EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		ReadingRepo: NewReadingSQLite(db),
		SessionRepo: NewSessionSQLite(db),
		EventRepo:   NewEventSQLite(db),
	}
}
