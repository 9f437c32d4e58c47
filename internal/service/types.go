package service

import "time"

// LogFilter selects journal events by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "OPEN", "OPEN_FAILED", "CLOSE", "READ_ERROR", "EXPORT"
}
