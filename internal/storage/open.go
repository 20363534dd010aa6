package storage

import (
	"context"
	"errors"
	"strings"

	logx "remindd/pkg/logx"
)

// Store is the minimal persistence API used by the job runtime and app.
type Store interface {
	PutJob(ctx context.Context, rec JobRecord) error
	DeleteJob(ctx context.Context, id string) error
	ListJobs(ctx context.Context) ([]JobRecord, error)

	PutReminder(ctx context.Context, rec ReminderRecord) error
	DeleteReminder(ctx context.Context, id string) error
	ListReminders(ctx context.Context) ([]ReminderRecord, error)

	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}
