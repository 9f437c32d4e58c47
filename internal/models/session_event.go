package models

import "time"

// Session journal event types.
const (
	EventOpen       = "OPEN"
	EventOpenFailed = "OPEN_FAILED"
	EventClose      = "CLOSE"
	EventReadError  = "READ_ERROR"
	EventExport     = "EXPORT"
)

// SessionEvent is a single journal entry. Description is the line shown to
// the user in the display panel.
type SessionEvent struct {
	EventID     string    `json:"event_id"`
	SessionID   string    `json:"session_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"` // OPEN | OPEN_FAILED | CLOSE | READ_ERROR | EXPORT
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
