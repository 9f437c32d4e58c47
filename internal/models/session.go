package models

import "time"

// Session statuses as persisted in the session snapshot.
const (
	SessionOpen   = "open"
	SessionClosed = "closed"
)

// SessionState is a snapshot of the latest logging session.
type SessionState struct {
	ID                 int        `json:"-"`
	SessionID          string     `json:"session_id,omitempty"`
	Port               string     `json:"port,omitempty"`
	Status             string     `json:"status"` // open | closed
	BaudRate           int        `json:"baud_rate,omitempty"`
	ReadTimeoutSeconds float64    `json:"read_timeout_seconds,omitempty"`
	Readings           int        `json:"readings"`
	OpenedAt           *time.Time `json:"opened_at,omitempty"`
	ClosedAt           *time.Time `json:"closed_at,omitempty"`
	LastError          string     `json:"last_error,omitempty"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// IsOpen reports whether the snapshot describes a running session.
func (s SessionState) IsOpen() bool {
	return s.Status == SessionOpen
}
