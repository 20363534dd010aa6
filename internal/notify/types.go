package notify

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNoBackend = errors.New("no notification backend configured")
)

// Notification is one message to deliver. ID is stable per reminder slot so
// transports that support replacement can overwrite an earlier message.
type Notification struct {
	ID    int64
	Title string
	Body  string
}

// Backend pushes a single notification somewhere.
type Backend interface {
	Name() string
	Send(ctx context.Context, n Notification) error
}

// Config controls the dispatcher and selects a backend.
type Config struct {
	Backend         string // "log", "command", "telegram"
	RatePerSec      int
	DedupWindow     time.Duration
	DedupMaxEntries int
	HistorySize     int

	Command  CommandConfig
	Telegram TelegramConfig
}

// CommandConfig runs an external program per notification. Occurrences of
// {title} and {body} in Args are replaced before exec.
type CommandConfig struct {
	Program string
	Args    []string
	Timeout time.Duration
}

type TelegramConfig struct {
	Token  string
	ChatID int64
}

// HistoryItem records one delivered notification.
type HistoryItem struct {
	At    time.Time
	ID    int64
	Title string
}
