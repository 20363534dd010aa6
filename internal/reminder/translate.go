package reminder

import (
	"context"
	"time"
)

// JobSpec is the scheduling decision handed to the Gateway.
// A zero Period means a one-shot job; otherwise the job repeats with
// that fixed period after the first fire.
type JobSpec struct {
	ID      string
	RunAt   time.Time
	Period  time.Duration
	Payload Payload
}

// Gateway is the external job runtime consumed by the engine.
//
// EnqueueUnique registers exactly one active job under spec.ID,
// atomically replacing any existing job for that ID. CancelByID is
// idempotent: cancelling an unknown ID is a no-op.
//
// The runtime is assumed to durably persist jobs across restarts and to
// deliver fires at-least-once; the fire path must tolerate duplicates.
type Gateway interface {
	EnqueueUnique(ctx context.Context, spec JobSpec) error
	CancelByID(ctx context.Context, id string) error
}

// Translate maps a normalized config plus its resolved next fire time
// into a job spec. The second return value is false when the outcome is
// a cancel: the reminder is disabled, or it is a one-time reminder whose
// moment has passed (resolved == false).
func Translate(cfg Config, next time.Time, resolved bool, now time.Time) (JobSpec, bool) {
	if !cfg.Enabled || !resolved {
		return JobSpec{}, false
	}

	spec := JobSpec{
		ID:    cfg.ID,
		RunAt: next,
		Payload: Payload{
			ReminderID:  cfg.ID,
			Title:       cfg.Title,
			Body:        cfg.NotificationBody(),
			ActiveHours: cfg.ActiveHours,
		},
	}

	switch cfg.Frequency {
	case Once:
		// one-shot: Period stays zero
	case Daily:
		spec.Period = 24 * time.Hour
	case Hourly:
		spec.Period = time.Hour
	case EveryXMinutes:
		spec.Period = cfg.Interval
		if spec.Period < MinInterval {
			spec.Period = MinInterval
		}
	case SpecificDays:
		// The runtime has no weekly-subset recurrence: schedule daily and
		// let the fire handler reject non-matching days via the payload.
		spec.Period = 24 * time.Hour
		spec.Payload.Days = cfg.Days
	}

	return spec, true
}
