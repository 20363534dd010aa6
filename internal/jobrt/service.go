package jobrt

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"remindd/internal/eventbus"
	"remindd/internal/storage"
	logx "remindd/pkg/logx"
)

type Service struct {
	mu sync.Mutex

	log     logx.Logger
	cfg     Config
	bus     eventbus.Bus
	store   storage.Store // may be nil (volatile mode)
	handler Handler

	loc  *time.Location
	c    *cron.Cron
	defs map[string]*jobDef

	queue    chan execTask
	stopCh   chan struct{}
	workerWG sync.WaitGroup

	hmu     sync.Mutex
	history []HistoryItem
}

// New builds the runtime. The store may be nil, in which case nothing
// survives a restart.
func New(cfg Config, handler Handler, store storage.Store, log logx.Logger, bus eventbus.Bus) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		log:     log,
		cfg:     cfg.withDefaults(),
		bus:     bus,
		store:   store,
		handler: handler,
		defs:    map[string]*jobDef{},
	}
}

// Start restores persisted jobs, arms everything, and spins up workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.c != nil {
		s.mu.Unlock()
		return nil
	}
	loc := s.loadLocationLocked()
	s.loc = loc
	s.c = cron.New(cron.WithLocation(loc))

	s.queue = make(chan execTask, s.cfg.QueueSize)
	s.stopCh = make(chan struct{})
	for i := 0; i < s.cfg.Workers; i++ {
		s.workerWG.Add(1)
		go func(idx int) {
			defer s.workerWG.Done()
			s.worker(s.stopCh, s.queue, idx)
		}(i)
	}

	restored := 0
	if s.store != nil {
		recs, err := s.store.ListJobs(ctx)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("restore jobs: %w", err)
		}
		for _, rec := range recs {
			spec := Spec{
				ID:      rec.ID,
				RunAt:   rec.RunAt,
				Period:  time.Duration(rec.Period) * time.Millisecond,
				Payload: rec.Payload,
			}
			def := &jobDef{spec: spec}
			s.defs[spec.ID] = def
			restored++
		}
	}

	for _, def := range s.defs {
		s.armLocked(def)
	}
	s.c.Start()
	s.mu.Unlock()

	s.log.Info("job runtime started",
		logx.String("tz", loc.String()),
		logx.Int("workers", s.cfg.Workers),
		logx.Int("restored", restored))
	return nil
}

// Stop halts triggering and waits for in-flight fires to drain, bounded by ctx.
// Persisted definitions remain in the store and resume on the next Start.
func (s *Service) Stop(ctx context.Context) {
	start := time.Now()

	s.mu.Lock()
	c := s.c
	s.c = nil
	for _, def := range s.defs {
		if def.timer != nil {
			def.timer.Stop()
			def.timer = nil
		}
		def.entryID = 0
	}
	stopCh := s.stopCh
	s.stopCh = nil
	s.queue = nil
	s.mu.Unlock()

	if c != nil {
		select {
		case <-c.Stop().Done():
		case <-ctx.Done():
		}
	}
	if stopCh != nil {
		close(stopCh)
	}

	done := make(chan struct{})
	go func() {
		s.workerWG.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}

	s.log.Info("job runtime stopped", logx.Duration("took", time.Since(start)))
}

// EnqueueUnique registers or replaces the job with spec.ID.
func (s *Service) EnqueueUnique(ctx context.Context, spec Spec) error {
	if strings.TrimSpace(spec.ID) == "" {
		return errors.New("job id required")
	}
	if spec.RunAt.IsZero() {
		return errors.New("run_at required")
	}
	if spec.Period < 0 {
		return errors.New("negative period")
	}

	s.mu.Lock()
	s.disarmLocked(spec.ID)
	def := &jobDef{spec: spec}
	s.defs[spec.ID] = def
	if s.c != nil {
		s.armLocked(def)
	}
	s.mu.Unlock()

	if err := s.persist(ctx, spec); err != nil {
		return err
	}
	if s.bus != nil {
		s.bus.Publish(eventbus.Event{
			Type: eventbus.TypeJobArmed,
			Data: JobEvent{ID: spec.ID, RunAt: spec.RunAt, Period: spec.Period},
		})
	}
	s.log.Debug("job armed",
		logx.String("id", spec.ID),
		logx.Time("run_at", spec.RunAt),
		logx.Duration("period", spec.Period))
	return nil
}

// CancelByID removes the job. Cancelling an unknown ID is a no-op.
func (s *Service) CancelByID(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("job id required")
	}

	s.mu.Lock()
	removed := s.disarmLocked(id)
	delete(s.defs, id)
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.DeleteJob(ctx, id); err != nil {
			return fmt.Errorf("delete job %s: %w", id, err)
		}
	}
	if removed {
		if s.bus != nil {
			s.bus.Publish(eventbus.Event{Type: eventbus.TypeJobCancelled, Data: JobEvent{ID: id}})
		}
		s.log.Debug("job cancelled", logx.String("id", id))
	}
	return nil
}

// Snapshot returns a diagnostic view of armed jobs and recent history.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{
		Workers:  s.cfg.Workers,
		QueueCap: s.cfg.QueueSize,
	}
	if s.loc != nil {
		snap.Timezone = s.loc.String()
	}
	if s.queue != nil {
		snap.QueueLen = len(s.queue)
	}
	now := time.Now()
	for _, def := range s.defs {
		info := ScheduleInfo{ID: def.spec.ID, RunAt: def.spec.RunAt, Period: def.spec.Period}
		info.Next = def.spec.RunAt
		if !info.Next.After(now) && def.spec.Period > 0 {
			info.Next = nextOccurrence(def.spec.RunAt, def.spec.Period, now)
		}
		snap.Jobs = append(snap.Jobs, info)
	}
	s.mu.Unlock()
	sort.Slice(snap.Jobs, func(i, j int) bool { return snap.Jobs[i].ID < snap.Jobs[j].ID })

	s.hmu.Lock()
	snap.History = append([]HistoryItem(nil), s.history...)
	s.hmu.Unlock()
	return snap
}

// armLocked schedules the initial fire for def. Call with s.mu held and s.c set.
func (s *Service) armLocked(def *jobDef) {
	if s.c == nil {
		return
	}
	now := time.Now()
	runAt := def.spec.RunAt
	if !runAt.After(now) && def.spec.Period > 0 {
		// Overdue periodic job: skip missed occurrences, fire at the next one.
		runAt = nextOccurrence(def.spec.RunAt, def.spec.Period, now)
		def.spec.RunAt = runAt
	}
	delay := time.Until(runAt)
	if delay < 0 {
		// Overdue one-shot: fire promptly rather than silently dropping it.
		delay = 0
	}
	id := def.spec.ID
	def.timer = time.AfterFunc(delay, func() { s.onInitialFire(id, def) })
}

// onInitialFire runs from the timer goroutine when the first occurrence is due.
func (s *Service) onInitialFire(id string, armed *jobDef) {
	s.mu.Lock()
	def, ok := s.defs[id]
	if !ok || def != armed || s.c == nil {
		// Replaced, cancelled, or runtime stopped since the timer was armed.
		s.mu.Unlock()
		return
	}
	def.timer = nil
	spec := def.spec
	if spec.Period > 0 {
		// Hand the steady state to cron and record the next occurrence.
		entrySpec := fmt.Sprintf("@every %s", spec.Period.String())
		eid, err := s.c.AddFunc(entrySpec, func() { s.onPeriodicFire(id, armed) })
		if err != nil {
			s.log.Error("periodic arm failed", logx.String("id", id), logx.Err(err))
		} else {
			def.entryID = eid
		}
		def.spec.RunAt = spec.RunAt.Add(spec.Period)
	} else {
		delete(s.defs, id)
	}
	next := def.spec
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if spec.Period > 0 {
		if err := s.persist(ctx, next); err != nil {
			s.log.Warn("job persist failed", logx.String("id", id), logx.Err(err))
		}
	} else if s.store != nil {
		if err := s.store.DeleteJob(ctx, id); err != nil {
			s.log.Warn("job cleanup failed", logx.String("id", id), logx.Err(err))
		}
	}

	s.enqueue(execTask{id: id, payload: spec.Payload, firing: time.Now()})
}

// onPeriodicFire runs from the cron goroutine on every steady-state occurrence.
func (s *Service) onPeriodicFire(id string, armed *jobDef) {
	s.mu.Lock()
	def, ok := s.defs[id]
	if !ok || def != armed {
		s.mu.Unlock()
		return
	}
	spec := def.spec
	def.spec.RunAt = time.Now().Add(spec.Period)
	next := def.spec
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.persist(ctx, next); err != nil {
		s.log.Warn("job persist failed", logx.String("id", id), logx.Err(err))
	}

	s.enqueue(execTask{id: id, payload: spec.Payload, firing: time.Now()})
}

// disarmLocked stops the timer and cron entry for id. Call with s.mu held.
func (s *Service) disarmLocked(id string) bool {
	def, ok := s.defs[id]
	if !ok {
		return false
	}
	if def.timer != nil {
		def.timer.Stop()
		def.timer = nil
	}
	if def.entryID != 0 && s.c != nil {
		s.c.Remove(def.entryID)
		def.entryID = 0
	}
	return true
}

func (s *Service) persist(ctx context.Context, spec Spec) error {
	if s.store == nil {
		return nil
	}
	rec := storage.JobRecord{
		ID:        spec.ID,
		RunAt:     spec.RunAt,
		Period:    spec.Period.Milliseconds(),
		Payload:   spec.Payload,
		UpdatedAt: time.Now(),
	}
	if err := s.store.PutJob(ctx, rec); err != nil {
		return fmt.Errorf("persist job %s: %w", spec.ID, err)
	}
	return nil
}

func (s *Service) loadLocationLocked() *time.Location {
	tz := strings.TrimSpace(s.cfg.Timezone)
	if tz == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		s.log.Warn("invalid timezone; falling back to Local", logx.String("tz", tz), logx.Err(err))
		return time.Local
	}
	return loc
}

// nextOccurrence returns the first anchor+k*period strictly after now.
func nextOccurrence(anchor time.Time, period time.Duration, now time.Time) time.Time {
	if period <= 0 || anchor.After(now) {
		return anchor
	}
	steps := now.Sub(anchor)/period + 1
	return anchor.Add(steps * period)
}
