package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "file": dependency-free file backend (snapshot + journal)
//   - "sqlite": SQLite database file
//
// If Driver is empty or "none", storage is disabled and the job runtime
// operates in volatile mode (nothing survives a restart).
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// JobRecord is a durable job spec. Keep it compact and schema-stable:
// records written by older versions must stay readable.
type JobRecord struct {
	ID        string    `json:"id"`
	RunAt     time.Time `json:"run_at"`
	Period    int64     `json:"period_ms"` // milliseconds; 0 means one-shot
	Payload   []byte    `json:"payload"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReminderRecord is the last-applied configuration of a reminder slot,
// serialized by the caller.
type ReminderRecord struct {
	ID        string    `json:"id"`
	Config    []byte    `json:"config"`
	UpdatedAt time.Time `json:"updated_at"`
}
