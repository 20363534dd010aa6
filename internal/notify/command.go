package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	logx "remindd/pkg/logx"
)

// CommandBackend execs an external program per notification, e.g.
// notify-send on a Linux desktop:
//
//	program: notify-send
//	args: ["{title}", "{body}"]
type CommandBackend struct {
	cfg CommandConfig
	log logx.Logger
}

func NewCommand(cfg CommandConfig, log logx.Logger) (*CommandBackend, error) {
	if strings.TrimSpace(cfg.Program) == "" {
		return nil, errors.New("command backend: program is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &CommandBackend{cfg: cfg, log: log}, nil
}

func (b *CommandBackend) Name() string { return "command" }

func (b *CommandBackend) Send(ctx context.Context, n Notification) error {
	args := make([]string, 0, len(b.cfg.Args))
	for _, a := range b.cfg.Args {
		a = strings.ReplaceAll(a, "{title}", n.Title)
		a = strings.ReplaceAll(a, "{body}", n.Body)
		args = append(args, a)
	}

	runCtx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()
	cmd := exec.CommandContext(runCtx, b.cfg.Program, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return fmt.Errorf("%s: %w (%s)", b.cfg.Program, err, msg)
		}
		return fmt.Errorf("%s: %w", b.cfg.Program, err)
	}
	b.log.Debug("command notification delivered",
		logx.String("program", b.cfg.Program),
		logx.Int64("id", n.ID))
	return nil
}
