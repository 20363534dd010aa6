package jobrt

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"remindd/internal/eventbus"
	logx "remindd/pkg/logx"
)

type execTask struct {
	id      string
	payload []byte
	firing  time.Time
}

func (s *Service) enqueue(t execTask) {
	s.mu.Lock()
	q := s.queue
	s.mu.Unlock()
	if q == nil {
		s.log.Debug("runtime not running; dropping fire", logx.String("id", t.id))
		return
	}
	select {
	case q <- t:
	default:
		s.log.Warn("fire queue full; dropping fire",
			logx.String("id", t.id),
			logx.Int("queue_len", len(q)),
			logx.Int("queue_cap", cap(q)))
	}
}

func (s *Service) worker(stopCh <-chan struct{}, queue <-chan execTask, idx int) {
	_ = idx
	for {
		// Fast-exit check so a closed stopCh wins over queued work.
		select {
		case <-stopCh:
			return
		default:
		}

		select {
		case <-stopCh:
			return
		case t := <-queue:
			s.execOne(stopCh, t)
		}
	}
}

func (s *Service) execOne(stopCh <-chan struct{}, t execTask) {
	start := time.Now()

	var err error
	attempts := 0
	maxAttempts := 1 + s.cfg.RetryMax
attemptLoop:
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attempts = attempt
		runCtx, cancel := context.WithTimeout(context.Background(), s.cfg.DefaultTimeout)
		// Guard against handler panics so one bad fire can't kill a worker.
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("panic: %v", r)
					s.log.Error("job.panic",
						logx.String("id", t.id),
						logx.Any("panic", r),
						logx.String("stack", string(debug.Stack())))
				}
			}()
			err = s.handler(runCtx, Job{ID: t.id, Payload: t.payload, Firing: t.firing})
		}()
		cancel()
		if err == nil || attempt >= maxAttempts {
			break
		}

		delay := backoffDelay(attempt)
		s.log.Debug("job retry scheduled",
			logx.String("id", t.id),
			logx.Int("attempt", attempt+1),
			logx.Duration("delay", delay),
			logx.Err(err))
		tmr := time.NewTimer(delay)
		select {
		case <-stopCh:
			if !tmr.Stop() {
				<-tmr.C
			}
			break attemptLoop
		case <-tmr.C:
		}
	}

	dur := time.Since(start)
	item := HistoryItem{ID: t.id, Started: start, Duration: dur, Attempts: attempts}
	if err != nil {
		item.Error = err.Error()
		s.log.Warn("job.failed",
			logx.String("id", t.id),
			logx.Err(err),
			logx.Duration("dur", dur),
			logx.Int("attempts", attempts))
		if s.bus != nil {
			s.bus.Publish(eventbus.Event{Type: eventbus.TypeJobFailed, Data: JobEvent{
				ID: t.id, Started: start, Duration: dur, Attempts: attempts, Error: item.Error,
			}})
		}
	} else {
		s.log.Debug("job.fired",
			logx.String("id", t.id),
			logx.Duration("dur", dur),
			logx.Int("attempts", attempts))
		if s.bus != nil {
			s.bus.Publish(eventbus.Event{Type: eventbus.TypeJobFired, Data: JobEvent{
				ID: t.id, Started: start, Duration: dur, Attempts: attempts,
			}})
		}
	}

	s.hmu.Lock()
	s.history = append(s.history, item)
	if len(s.history) > s.cfg.HistorySize {
		s.history = s.history[len(s.history)-s.cfg.HistorySize:]
	}
	s.hmu.Unlock()
}

// backoffDelay grows 500ms, 1s, 2s... capped at 15s. retry starts at 1.
func backoffDelay(retry int) time.Duration {
	d := 500 * time.Millisecond
	for i := 1; i < retry; i++ {
		d *= 2
		if d >= 15*time.Second {
			return 15 * time.Second
		}
	}
	return d
}
