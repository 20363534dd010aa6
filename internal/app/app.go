// Package app wires the daemon together: config, logging, storage, the job
// runtime, the notification dispatcher, and the reminder engine.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"remindd/internal/config"
	"remindd/internal/eventbus"
	"remindd/internal/jobrt"
	"remindd/internal/notify"
	"remindd/internal/reminder"
	"remindd/internal/runtime/supervisor"
	"remindd/internal/storage"
	logx "remindd/pkg/logx"
)

type App struct {
	cfgPath string

	cfgm *config.Manager
	sup  *supervisor.Supervisor

	log   logx.Logger
	logs  *logx.Service
	bus   eventbus.Bus
	store storage.Store

	runtime    *jobrt.Service
	dispatcher *notify.Dispatcher
	engine     *reminder.Engine
	fires      *reminder.FireHandler
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log = log.With(logx.String("comp", "app"))

	bus := eventbus.New()

	// Storage (optional)
	storeCfg, err := cfg.Store()
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(storeCfg, log.With(logx.String("comp", "storage")))
	if err != nil {
		return nil, err
	}
	if store != nil {
		log.Info("storage enabled", logx.String("driver", storeCfg.Driver))
	}

	// Notification pipeline
	notifyCfg, err := cfg.Notifier()
	if err != nil {
		return nil, err
	}
	backend, err := notify.NewBackend(notifyCfg, log.With(logx.String("comp", "notify")))
	if err != nil {
		return nil, err
	}
	dispatcher := notify.NewDispatcher(notifyCfg, backend, log.With(logx.String("comp", "notify")), bus)

	// Fire path: job payload -> day/window filter -> dispatcher.
	fires := reminder.NewFireHandler(dispatcher, nil, log.With(logx.String("comp", "fire")))
	handler := func(ctx context.Context, job jobrt.Job) error {
		p, err := reminder.DecodePayload(job.Payload)
		if err != nil {
			return err
		}
		return fires.OnFire(ctx, p)
	}

	rtCfg, err := cfg.JobRuntime()
	if err != nil {
		return nil, err
	}
	runtime := jobrt.New(rtCfg, handler, store, log.With(logx.String("comp", "jobrt")), bus)

	engine := reminder.NewEngine(gateway{rt: runtime}, nil, log.With(logx.String("comp", "engine")))

	return &App{
		cfgPath:    cfgPath,
		cfgm:       cfgm,
		log:        log,
		logs:       logSvc,
		bus:        bus,
		store:      store,
		runtime:    runtime,
		dispatcher: dispatcher,
		engine:     engine,
		fires:      fires,
	}, nil
}

// gateway adapts the job runtime to the engine's boundary, serializing the
// payload for durable storage.
type gateway struct {
	rt *jobrt.Service
}

func (g gateway) EnqueueUnique(ctx context.Context, spec reminder.JobSpec) error {
	payload, err := spec.Payload.Encode()
	if err != nil {
		return err
	}
	return g.rt.EnqueueUnique(ctx, jobrt.Spec{
		ID:      spec.ID,
		RunAt:   spec.RunAt,
		Period:  spec.Period,
		Payload: payload,
	})
}

func (g gateway) CancelByID(ctx context.Context, id string) error {
	return g.rt.CancelByID(ctx, id)
}

// Done is closed when the app supervisor context is cancelled.
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor.
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Start(ctx context.Context) error {
	a.sup = supervisor.New(ctx,
		supervisor.WithLogger(a.log),
		supervisor.WithCancelOnError(true))

	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
	a.cfgm.SetValidator(func(_ context.Context, cfg *config.Config) error {
		return cfg.Validate()
	})

	if err := a.runtime.Start(a.sup.Context()); err != nil {
		return err
	}

	cfg := a.cfgm.Get()
	if err := a.applyReminders(a.sup.Context(), cfg); err != nil {
		return err
	}

	// Hot reload: watch the file and reconcile on publish.
	a.sup.Go("config.watch", a.cfgm.Watch)
	updates := a.cfgm.Subscribe(4)
	a.sup.Go0("config.apply", func(ctx context.Context) {
		defer a.cfgm.Unsubscribe(updates)
		prev := cfg
		for {
			select {
			case <-ctx.Done():
				return
			case next, ok := <-updates:
				if !ok {
					return
				}
				a.onReload(ctx, prev, next)
				prev = next
			}
		}
	})

	a.sup.Go0("bus.watch", a.watchEvents)

	a.log.Info("started", logx.String("config", a.cfgPath))
	return nil
}

func (a *App) Stop(ctx context.Context) error {
	a.log.Info("stopping")
	a.runtime.Stop(ctx)
	if a.sup != nil {
		_ = a.sup.Stop(ctx)
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("store close failed", logx.Err(err))
		}
	}
	if a.logs != nil {
		_ = a.logs.Close()
	}
	return nil
}

func (a *App) onReload(ctx context.Context, prev, next *config.Config) {
	sections, attrs, reminderIDs := config.SummarizeConfigChange(prev, next)
	if len(sections) == 0 {
		return
	}
	a.log.Info("config reloaded",
		append([]logx.Field{logx.Any("sections", sections)}, attrs...)...)

	for _, section := range sections {
		switch section {
		case "logging":
			a.logs.Apply(logx.Config{
				Level:   next.Logging.Level,
				Console: next.Logging.Console,
				File: logx.FileConfig{
					Enabled: next.Logging.File.Enabled,
					Path:    next.Logging.File.Path,
				},
			})
		case "reminders":
			if err := a.applyReminders(ctx, next); err != nil {
				a.log.Warn("reminder reconcile failed", logx.Err(err))
			}
			a.log.Info("reminders reconciled", logx.Any("changed", reminderIDs))
		case "storage", "runtime", "notify":
			// These sections are bound at startup; a restart picks them up.
			a.log.Warn("section change requires restart", logx.String("section", section))
		}
	}
}

// applyReminders reconciles the runtime with the config: every declared
// reminder is (re)scheduled, and anything previously applied but no longer
// declared is cancelled.
func (a *App) applyReminders(ctx context.Context, cfg *config.Config) error {
	if cfg == nil {
		return nil
	}
	now := time.Now().In(cfg.Location())

	declared := map[string]struct{}{}
	for _, rc := range cfg.Reminders {
		r, err := rc.ToReminder(now)
		if err != nil {
			return err
		}
		declared[r.ID] = struct{}{}
		if err := a.engine.Schedule(ctx, r); err != nil {
			return err
		}
		if a.store != nil {
			raw, err := json.Marshal(rc)
			if err != nil {
				return err
			}
			rec := storage.ReminderRecord{ID: r.ID, Config: raw, UpdatedAt: time.Now()}
			if err := a.store.PutReminder(ctx, rec); err != nil {
				return err
			}
		}
	}

	if a.store != nil {
		stored, err := a.store.ListReminders(ctx)
		if err != nil {
			return err
		}
		for _, rec := range stored {
			if _, ok := declared[rec.ID]; ok {
				continue
			}
			if err := a.engine.Cancel(ctx, rec.ID); err != nil {
				return err
			}
			if err := a.store.DeleteReminder(ctx, rec.ID); err != nil {
				return err
			}
			a.log.Info("removed reminder cleaned up", logx.String("id", rec.ID))
		}
	}
	return nil
}

// watchEvents surfaces job and notification failures that the components
// themselves only record in their histories.
func (a *App) watchEvents(ctx context.Context) {
	events, unsubscribe := a.bus.Subscribe(32)
	defer unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Type {
			case eventbus.TypeJobFailed:
				if je, ok := ev.Data.(jobrt.JobEvent); ok {
					a.log.Warn("reminder fire failed",
						logx.String("id", je.ID),
						logx.Int("attempts", je.Attempts),
						logx.String("err", je.Error))
				}
			case eventbus.TypeNotifySkip:
				if se, ok := ev.Data.(notify.SentEvent); ok && se.Reason == "error" {
					a.log.Warn("notification delivery failed",
						logx.Int64("id", se.ID),
						logx.String("err", se.Error))
				}
			}
		}
	}
}
