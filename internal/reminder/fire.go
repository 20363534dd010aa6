package reminder

import (
	"context"
	"fmt"

	"github.com/jmhodges/clock"

	logx "remindd/pkg/logx"
)

// Notifier is the external notification sink. Delivery is best-effort;
// only an unexpected failure of the call itself should surface as an
// error.
type Notifier interface {
	Notify(ctx context.Context, id int64, title, body string) error
}

// FireHandler is invoked by the job runtime when a job becomes due.
//
// It re-validates the weekday filter and the active-hours window before
// notifying; a rejected fire is a success (the periodic job stays armed
// by the runtime, no rescheduling happens here). The handler never
// mutates schedule state, so duplicate at-least-once fires are harmless.
type FireHandler struct {
	notifier Notifier
	clk      clock.Clock
	log      logx.Logger
}

func NewFireHandler(n Notifier, clk clock.Clock, log logx.Logger) *FireHandler {
	if clk == nil {
		clk = clock.New()
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &FireHandler{notifier: n, clk: clk, log: log}
}

func (h *FireHandler) OnFire(ctx context.Context, p Payload) error {
	now := h.clk.Now()

	if !p.Days.Empty() && !p.Days.Contains(now.Weekday()) {
		h.log.Debug("fire skipped: weekday not selected",
			logx.String("id", p.ReminderID),
			logx.String("today", now.Weekday().String()),
			logx.String("days", p.Days.String()))
		return nil
	}

	if p.ActiveHours != nil {
		tod := TimeOfDay{Hour: now.Hour(), Minute: now.Minute()}
		if !p.ActiveHours.Contains(tod) {
			h.log.Debug("fire skipped: outside active hours",
				logx.String("id", p.ReminderID),
				logx.String("now", tod.String()),
				logx.String("from", p.ActiveHours.From.String()),
				logx.String("to", p.ActiveHours.To.String()))
			return nil
		}
	}

	if err := h.notifier.Notify(ctx, p.NotificationID(), p.Title, p.Body); err != nil {
		return fmt.Errorf("notify %q: %w", p.ReminderID, err)
	}
	h.log.Debug("fire delivered", logx.String("id", p.ReminderID))
	return nil
}
