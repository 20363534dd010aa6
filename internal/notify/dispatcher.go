package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"remindd/internal/eventbus"
	logx "remindd/pkg/logx"
)

// Dispatcher applies delivery policy in front of a backend.
// It is safe for concurrent use.
type Dispatcher struct {
	log     logx.Logger
	bus     eventbus.Bus
	backend Backend

	cfg     Config
	limiter *rate.Limiter

	// dedup: notification ID -> suppress until
	dmu   sync.Mutex
	dedup map[int64]time.Time

	hmu     sync.Mutex
	history []HistoryItem
}

func NewDispatcher(cfg Config, backend Backend, log logx.Logger, bus eventbus.Bus) *Dispatcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 3
	}
	if cfg.DedupWindow < 0 {
		cfg.DedupWindow = 0
	}
	if cfg.DedupMaxEntries <= 0 {
		cfg.DedupMaxEntries = 1000
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 100
	}
	return &Dispatcher{
		log:     log,
		bus:     bus,
		backend: backend,
		cfg:     cfg,
		// Burst = rate per sec so short spikes don't block too hard.
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec),
		dedup:   map[int64]time.Time{},
	}
}

// Notify delivers one notification, honoring rate limit and dedup window.
// A suppressed duplicate is not an error.
func (d *Dispatcher) Notify(ctx context.Context, id int64, title, body string) error {
	if d.backend == nil {
		return ErrNoBackend
	}
	now := time.Now()
	if d.suppressed(id, now) {
		d.log.Debug("notification suppressed",
			logx.Int64("id", id),
			logx.String("title", title),
			logx.Duration("window", d.cfg.DedupWindow))
		if d.bus != nil {
			d.bus.Publish(eventbus.Event{Type: eventbus.TypeNotifySkip, Data: SentEvent{ID: id, Title: title, Reason: "dedup"}})
		}
		return nil
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	n := Notification{ID: id, Title: title, Body: body}
	if err := d.backend.Send(ctx, n); err != nil {
		if d.bus != nil {
			d.bus.Publish(eventbus.Event{Type: eventbus.TypeNotifySkip, Data: SentEvent{ID: id, Title: title, Reason: "error", Error: err.Error()}})
		}
		return fmt.Errorf("%s send: %w", d.backend.Name(), err)
	}

	d.markSent(id, title, now)
	d.log.Info("notification sent",
		logx.String("backend", d.backend.Name()),
		logx.Int64("id", id),
		logx.String("title", title))
	if d.bus != nil {
		d.bus.Publish(eventbus.Event{Type: eventbus.TypeNotifySent, Data: SentEvent{ID: id, Title: title}})
	}
	return nil
}

// History returns recently delivered notifications, oldest first.
func (d *Dispatcher) History() []HistoryItem {
	d.hmu.Lock()
	defer d.hmu.Unlock()
	return append([]HistoryItem(nil), d.history...)
}

// SentEvent is the bus payload for notify.sent / notify.skipped.
type SentEvent struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Reason string `json:"reason,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (d *Dispatcher) suppressed(id int64, now time.Time) bool {
	if d.cfg.DedupWindow <= 0 {
		return false
	}
	d.dmu.Lock()
	defer d.dmu.Unlock()
	until, ok := d.dedup[id]
	return ok && now.Before(until)
}

func (d *Dispatcher) markSent(id int64, title string, now time.Time) {
	if d.cfg.DedupWindow > 0 {
		d.dmu.Lock()
		// Crude cap: drop expired entries first, then the whole map if still over.
		if len(d.dedup) >= d.cfg.DedupMaxEntries {
			for k, until := range d.dedup {
				if now.After(until) {
					delete(d.dedup, k)
				}
			}
			if len(d.dedup) >= d.cfg.DedupMaxEntries {
				d.dedup = map[int64]time.Time{}
			}
		}
		d.dedup[id] = now.Add(d.cfg.DedupWindow)
		d.dmu.Unlock()
	}

	d.hmu.Lock()
	d.history = append(d.history, HistoryItem{At: now, ID: id, Title: title})
	if len(d.history) > d.cfg.HistorySize {
		d.history = d.history[len(d.history)-d.cfg.HistorySize:]
	}
	d.hmu.Unlock()
}
