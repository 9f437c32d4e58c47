package models

import "time"

// Reading is one parsed (distance, command) pair. Both fields are kept as
// the opaque strings that arrived on the wire.
type Reading struct {
	Seq        int       `json:"seq"`
	Distance   string    `json:"distance"`
	Command    string    `json:"command"`
	ReceivedAt time.Time `json:"received_at"`
}
