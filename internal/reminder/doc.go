// Package reminder implements remindd's recurrence-resolution and
// scheduling-decision engine.
//
// # Overview
//
// A reminder is described by an immutable Config value (identity, time of
// day, frequency, anchor date, enabled flag). The engine turns a Config
// into at most one durable job per reminder ID:
//
//	Schedule(cfg) -> NextFireTime -> Translate -> Gateway.EnqueueUnique
//
// Disabled reminders and one-time reminders whose moment has passed
// translate into a cancel instead of an enqueue.
//
// # Day filter workaround
//
// The job runtime only supports fixed-period repetition, so "specific
// weekdays" reminders are scheduled as daily periodic jobs whose payload
// carries the weekday set. FireHandler re-checks the set at fire time and
// skips non-matching days; a skipped day is a success, the periodic job
// stays armed for the next day.
//
// # Collaborators
//
// The job runtime (Gateway) and the notification sink (Notifier) are
// injected interfaces. The engine holds no state between calls and never
// blocks on timers; durability and re-arming live behind the Gateway.
package reminder
