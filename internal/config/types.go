package config

// Config is the root configuration document.
//
// Files may be JSON or YAML; YAML is coerced to JSON and decoded with
// DisallowUnknownFields so typos are caught on reload rather than ignored.
type Config struct {
	Logging LoggingConfig `json:"logging"`

	// Runtime controls the job runtime (workers, timezone, retries).
	Runtime RuntimeConfig `json:"runtime"`

	// Storage is optional; nil disables persistence and reminders are
	// re-armed purely from this file on startup.
	Storage *StorageConfig `json:"storage,omitempty"`

	// Notify selects and configures the notification backend.
	Notify *NotifyConfig `json:"notify,omitempty"`

	Reminders []ReminderConfig `json:"reminders"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// RuntimeConfig controls the job runtime.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
type RuntimeConfig struct {
	Workers   int `json:"workers,omitempty"`
	QueueSize int `json:"queue_size,omitempty"`

	// DefaultTimeout bounds a single notification delivery attempt.
	DefaultTimeout string `json:"default_timeout,omitempty"`

	HistorySize int `json:"history_size,omitempty"`

	// Timezone is the IANA zone reminders are evaluated in, e.g.
	// "Asia/Jakarta". Empty means the host's local zone.
	Timezone string `json:"timezone,omitempty"`

	RetryMax int `json:"retry_max,omitempty"`
}

// StorageConfig controls the optional persistence layer.
//
// Example:
//
//	"storage": { "driver": "sqlite", "path": "./remindd.db" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// NotifyConfig controls notification delivery.
type NotifyConfig struct {
	// Backend is "log" (default), "command", or "telegram".
	Backend string `json:"backend,omitempty"`

	RatePerSec      int    `json:"rate_per_sec,omitempty"`
	DedupWindow     string `json:"dedup_window,omitempty"`
	DedupMaxEntries int    `json:"dedup_max_entries,omitempty"`
	HistorySize     int    `json:"history_size,omitempty"`

	Command  *CommandConfig  `json:"command,omitempty"`
	Telegram *TelegramConfig `json:"telegram,omitempty"`
}

// CommandConfig runs an external program per notification. {title} and
// {body} in args are substituted before exec.
type CommandConfig struct {
	Program string   `json:"program"`
	Args    []string `json:"args,omitempty"`
	Timeout string   `json:"timeout,omitempty"`
}

type TelegramConfig struct {
	Token  string `json:"token"`
	ChatID int64  `json:"chat_id"`
}

// ReminderConfig declares one reminder slot.
type ReminderConfig struct {
	ID    string `json:"id"`
	Title string `json:"title"`

	// Body overrides the default notification text.
	Body string `json:"body,omitempty"`

	// Time is "HH:MM" wall clock. Used by once, daily, and days.
	Time string `json:"time,omitempty"`

	// StartDate is "YYYY-MM-DD". Empty anchors at today.
	StartDate string `json:"start_date,omitempty"`

	// Frequency is one of: once, daily, days, hourly, interval.
	Frequency string `json:"frequency"`

	// Days lists weekdays for frequency "days", e.g. ["mon", "wed", "fri"].
	Days []string `json:"days,omitempty"`

	// IntervalMinutes is used by frequency "interval".
	IntervalMinutes int `json:"interval_minutes,omitempty"`

	// ActiveHours restricts delivery to a wall-clock window.
	ActiveHours *ActiveHours `json:"active_hours,omitempty"`

	// Enabled defaults to true when omitted.
	Enabled *bool `json:"enabled,omitempty"`
}

type ActiveHours struct {
	From string `json:"from"`
	To   string `json:"to"`
}
