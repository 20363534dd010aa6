package config

import (
	"fmt"
	"strings"
	"time"

	"remindd/internal/jobrt"
	"remindd/internal/notify"
	"remindd/internal/reminder"
	"remindd/internal/storage"
)

// ParseFrequency maps the config keyword to a recurrence.
func ParseFrequency(s string) (reminder.Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "once":
		return reminder.Once, nil
	case "daily":
		return reminder.Daily, nil
	case "days", "specific_days":
		return reminder.SpecificDays, nil
	case "hourly":
		return reminder.Hourly, nil
	case "interval", "every_x_minutes":
		return reminder.EveryXMinutes, nil
	default:
		return 0, fmt.Errorf("unknown frequency %q", s)
	}
}

// ToReminder converts one declaration into the engine's config. now anchors
// an omitted start_date at today in the runtime zone.
func (rc ReminderConfig) ToReminder(now time.Time) (reminder.Config, error) {
	out := reminder.Config{
		ID:      strings.TrimSpace(rc.ID),
		Title:   strings.TrimSpace(rc.Title),
		Body:    strings.TrimSpace(rc.Body),
		Enabled: rc.Enabled == nil || *rc.Enabled,
	}

	freq, err := ParseFrequency(rc.Frequency)
	if err != nil {
		return reminder.Config{}, fmt.Errorf("reminder %q: %w", rc.ID, err)
	}
	out.Frequency = freq

	if strings.TrimSpace(rc.Time) != "" {
		tod, err := reminder.ParseTimeOfDay(rc.Time)
		if err != nil {
			return reminder.Config{}, fmt.Errorf("reminder %q: %w", rc.ID, err)
		}
		out.Time = tod
	}

	if s := strings.TrimSpace(rc.StartDate); s != "" {
		d, err := time.ParseInLocation("2006-01-02", s, now.Location())
		if err != nil {
			return reminder.Config{}, fmt.Errorf("reminder %q: invalid start_date %q: %w", rc.ID, s, err)
		}
		out.StartDate = d
	} else {
		out.StartDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}

	if len(rc.Days) > 0 {
		days := make([]time.Weekday, 0, len(rc.Days))
		for _, name := range rc.Days {
			wd, err := reminder.ParseWeekday(name)
			if err != nil {
				return reminder.Config{}, fmt.Errorf("reminder %q: %w", rc.ID, err)
			}
			days = append(days, wd)
		}
		out.Days = reminder.NewDaySet(days...)
	}

	if rc.IntervalMinutes > 0 {
		out.Interval = time.Duration(rc.IntervalMinutes) * time.Minute
	}

	if rc.ActiveHours != nil {
		from, err := reminder.ParseTimeOfDay(rc.ActiveHours.From)
		if err != nil {
			return reminder.Config{}, fmt.Errorf("reminder %q: active_hours.from: %w", rc.ID, err)
		}
		to, err := reminder.ParseTimeOfDay(rc.ActiveHours.To)
		if err != nil {
			return reminder.Config{}, fmt.Errorf("reminder %q: active_hours.to: %w", rc.ID, err)
		}
		out.ActiveHours = &reminder.HourRange{From: from, To: to}
	}

	return out, nil
}

// JobRuntime converts the runtime section.
func (c *Config) JobRuntime() (jobrt.Config, error) {
	timeout, err := ParseDurationField("runtime.default_timeout", c.Runtime.DefaultTimeout)
	if err != nil {
		return jobrt.Config{}, err
	}
	return jobrt.Config{
		Workers:        c.Runtime.Workers,
		QueueSize:      c.Runtime.QueueSize,
		DefaultTimeout: timeout,
		HistorySize:    c.Runtime.HistorySize,
		Timezone:       c.Runtime.Timezone,
		RetryMax:       c.Runtime.RetryMax,
	}, nil
}

// Store converts the storage section. A nil section disables persistence.
func (c *Config) Store() (storage.Config, error) {
	if c.Storage == nil {
		return storage.Config{}, nil
	}
	busy, err := ParseDurationField("storage.busy_timeout", c.Storage.BusyTimeout)
	if err != nil {
		return storage.Config{}, err
	}
	return storage.Config{
		Driver:      c.Storage.Driver,
		Path:        c.Storage.Path,
		BusyTimeout: busy,
	}, nil
}

// Notifier converts the notify section. A nil section means the log backend.
func (c *Config) Notifier() (notify.Config, error) {
	if c.Notify == nil {
		return notify.Config{}, nil
	}
	dedup, err := ParseDurationField("notify.dedup_window", c.Notify.DedupWindow)
	if err != nil {
		return notify.Config{}, err
	}
	out := notify.Config{
		Backend:         c.Notify.Backend,
		RatePerSec:      c.Notify.RatePerSec,
		DedupWindow:     dedup,
		DedupMaxEntries: c.Notify.DedupMaxEntries,
		HistorySize:     c.Notify.HistorySize,
	}
	if c.Notify.Command != nil {
		cmdTimeout, err := ParseDurationField("notify.command.timeout", c.Notify.Command.Timeout)
		if err != nil {
			return notify.Config{}, err
		}
		out.Command = notify.CommandConfig{
			Program: c.Notify.Command.Program,
			Args:    append([]string(nil), c.Notify.Command.Args...),
			Timeout: cmdTimeout,
		}
	}
	if c.Notify.Telegram != nil {
		out.Telegram = notify.TelegramConfig{
			Token:  c.Notify.Telegram.Token,
			ChatID: c.Notify.Telegram.ChatID,
		}
	}
	return out, nil
}

// Location resolves the runtime timezone, falling back to Local.
func (c *Config) Location() *time.Location {
	tz := strings.TrimSpace(c.Runtime.Timezone)
	if tz == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Local
	}
	return loc
}

// Validate checks the whole document: section durations parse, reminder IDs
// are unique, and every reminder converts and passes engine validation.
func (c *Config) Validate() error {
	if _, err := c.JobRuntime(); err != nil {
		return err
	}
	if _, err := c.Store(); err != nil {
		return err
	}
	if _, err := c.Notifier(); err != nil {
		return err
	}
	if c.Notify != nil {
		switch strings.ToLower(strings.TrimSpace(c.Notify.Backend)) {
		case "", "log":
		case "command":
			if c.Notify.Command == nil || strings.TrimSpace(c.Notify.Command.Program) == "" {
				return fmt.Errorf("notify.command.program is required for the command backend")
			}
		case "telegram":
			if c.Notify.Telegram == nil || strings.TrimSpace(c.Notify.Telegram.Token) == "" {
				return fmt.Errorf("notify.telegram.token is required for the telegram backend")
			}
		default:
			return fmt.Errorf("unknown notify backend %q", c.Notify.Backend)
		}
	}

	now := time.Now().In(c.Location())
	seen := map[string]struct{}{}
	for i, rc := range c.Reminders {
		id := strings.TrimSpace(rc.ID)
		if id == "" {
			return fmt.Errorf("reminders[%d]: id is required", i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("reminders[%d]: duplicate id %q", i, id)
		}
		seen[id] = struct{}{}
		r, err := rc.ToReminder(now)
		if err != nil {
			return err
		}
		if err := r.Validate(); err != nil {
			return fmt.Errorf("reminders[%d]: %w", i, err)
		}
	}
	return nil
}
