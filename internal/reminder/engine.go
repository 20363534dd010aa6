package reminder

import (
	"context"
	"fmt"

	"github.com/jmhodges/clock"

	logx "remindd/pkg/logx"
)

// Engine is the public entry point: it resolves a reminder config into a
// scheduling decision and drives the gateway. It is stateless between
// calls; all scheduling state lives behind the Gateway.
//
// Callers editing the same reminder ID concurrently must serialize those
// edits themselves; the gateway's replace step is only atomic with
// respect to a single caller per ID.
type Engine struct {
	gw  Gateway
	clk clock.Clock
	log logx.Logger
}

func NewEngine(gw Gateway, clk clock.Clock, log logx.Logger) *Engine {
	if clk == nil {
		clk = clock.New()
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Engine{gw: gw, clk: clk, log: log}
}

// Schedule computes the next fire time for cfg and registers (or
// replaces) the single job for cfg.ID. Disabled reminders and expired
// one-time reminders cancel instead. Configuration errors are returned
// synchronously; gateway failures are propagated, never retried here.
func (e *Engine) Schedule(ctx context.Context, cfg Config) error {
	cfg, err := cfg.Normalize()
	if err != nil {
		return err
	}

	now := e.clk.Now()
	next, resolved := NextFireTime(cfg, now)
	spec, enqueue := Translate(cfg, next, resolved, now)
	if !enqueue {
		reason := "disabled"
		if cfg.Enabled {
			reason = "one-time moment passed"
		}
		e.log.Info("reminder not scheduled; cancelling",
			logx.String("id", cfg.ID), logx.String("reason", reason))
		if err := e.gw.CancelByID(ctx, cfg.ID); err != nil {
			return fmt.Errorf("cancel %q: %w", cfg.ID, err)
		}
		return nil
	}

	if err := e.gw.EnqueueUnique(ctx, spec); err != nil {
		return fmt.Errorf("enqueue %q: %w", cfg.ID, err)
	}
	e.log.Info("reminder scheduled",
		logx.String("id", cfg.ID),
		logx.String("frequency", cfg.Frequency.String()),
		logx.Time("next", spec.RunAt),
		logx.Duration("delay", spec.RunAt.Sub(now)),
		logx.Duration("period", spec.Period))
	return nil
}

// Cancel removes any active job for the reminder ID. Cancelling an
// unknown ID is a no-op.
func (e *Engine) Cancel(ctx context.Context, id string) error {
	if err := e.gw.CancelByID(ctx, id); err != nil {
		return fmt.Errorf("cancel %q: %w", id, err)
	}
	e.log.Info("reminder cancelled", logx.String("id", id))
	return nil
}
