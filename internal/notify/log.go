package notify

import (
	"context"

	logx "remindd/pkg/logx"
)

// LogBackend writes notifications to the structured log. It is the default
// backend and useful for dry runs.
type LogBackend struct {
	log logx.Logger
}

func NewLog(log logx.Logger) *LogBackend {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &LogBackend{log: log}
}

func (b *LogBackend) Name() string { return "log" }

func (b *LogBackend) Send(ctx context.Context, n Notification) error {
	_ = ctx
	b.log.Info("REMINDER",
		logx.Int64("id", n.ID),
		logx.String("title", n.Title),
		logx.String("body", n.Body))
	return nil
}
