package jobrt

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// Config controls the job runtime.
type Config struct {
	Workers        int
	QueueSize      int
	DefaultTimeout time.Duration
	HistorySize    int
	Timezone       string // IANA TZ, e.g. "Asia/Jakarta"
	RetryMax       int    // retries per fire after the first attempt
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
	if c.DefaultTimeout <= 0 {
		c.DefaultTimeout = 30 * time.Second
	}
	if c.HistorySize <= 0 {
		c.HistorySize = 200
	}
	if c.RetryMax < 0 {
		c.RetryMax = 0
	}
	return c
}

// Spec is a durable job definition. Period 0 means one-shot.
type Spec struct {
	ID      string
	RunAt   time.Time
	Period  time.Duration
	Payload []byte
}

// Job is what a Handler receives on each fire.
type Job struct {
	ID      string
	Payload []byte
	Firing  time.Time
}

// Handler executes a fired job. Returning an error triggers a retry.
type Handler func(ctx context.Context, job Job) error

// HistoryItem records one completed fire.
type HistoryItem struct {
	ID       string
	Started  time.Time
	Duration time.Duration
	Attempts int
	Error    string
}

// JobEvent is published on the event bus for job lifecycle events.
type JobEvent struct {
	ID       string
	RunAt    time.Time
	Period   time.Duration
	Started  time.Time
	Duration time.Duration
	Attempts int
	Error    string
}

type jobDef struct {
	spec    Spec
	timer   *time.Timer
	entryID cron.EntryID // nonzero once the periodic steady state is armed
}

// ScheduleInfo describes one armed job for diagnostics.
type ScheduleInfo struct {
	ID     string
	RunAt  time.Time
	Period time.Duration
	Next   time.Time
}

// Snapshot is a point-in-time view of the runtime.
type Snapshot struct {
	Timezone string
	Workers  int
	QueueLen int
	QueueCap int
	Jobs     []ScheduleInfo
	History  []HistoryItem
}
