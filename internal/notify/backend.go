package notify

import (
	"fmt"
	"strings"

	logx "remindd/pkg/logx"
)

// NewBackend builds the backend selected by cfg.Backend.
// An empty selection defaults to the log backend.
func NewBackend(cfg Config, log logx.Logger) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "log":
		return NewLog(log), nil
	case "command":
		return NewCommand(cfg.Command, log)
	case "telegram":
		return NewTelegram(cfg.Telegram, log)
	default:
		return nil, fmt.Errorf("unknown notify backend %q", cfg.Backend)
	}
}
