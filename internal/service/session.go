package service

import (
	"time"

	"data_logger/internal/reader"
)

// Session is an open serial connection together with the id its Log is
// stored under. It is owned by the controller loop.
type Session struct {
	ID       string
	Port     string
	OpenedAt time.Time

	reader   *reader.Reader
	readings int
}
