package reminder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinInterval is the periodic floor of the underlying job runtime.
// EveryXMinutes intervals below this are clamped before handoff.
const MinInterval = 15 * time.Minute

var (
	ErrEmptyID      = errors.New("reminder id is required")
	ErrEmptyTitle   = errors.New("reminder title is required")
	ErrEmptyDaySet  = errors.New("specific-days reminder needs at least one weekday")
	ErrBadInterval  = errors.New("interval must be positive")
	ErrBadFrequency = errors.New("unknown frequency")
)

// Frequency selects one of the five recurrence semantics.
type Frequency int

const (
	Once Frequency = iota
	Daily
	SpecificDays
	Hourly
	EveryXMinutes
)

func (f Frequency) String() string {
	switch f {
	case Once:
		return "once"
	case Daily:
		return "daily"
	case SpecificDays:
		return "days"
	case Hourly:
		return "hourly"
	case EveryXMinutes:
		return "interval"
	default:
		return "unknown"
	}
}

// TimeOfDay is a wall-clock time with minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns the offset from midnight.
func (t TimeOfDay) Minutes() int { return t.Hour*60 + t.Minute }

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q", s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("time of day: %w", err)
	}
	v, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// HourRange is an optional fire-time window. Fires outside the window are
// skipped the same way a day-filter mismatch is. A range with To before
// From wraps past midnight (e.g. 22:00-06:00).
type HourRange struct {
	From TimeOfDay `json:"from"`
	To   TimeOfDay `json:"to"`
}

// Contains reports whether t falls inside the range (bounds inclusive).
func (r HourRange) Contains(t TimeOfDay) bool {
	v, from, to := t.Minutes(), r.From.Minutes(), r.To.Minutes()
	if from <= to {
		return v >= from && v <= to
	}
	return v >= from || v <= to
}

// Config describes one reminder. It is a value type: the engine never
// mutates it and holds no reference to it after Schedule returns.
type Config struct {
	// ID is the stable identity of the reminder slot (e.g. "eye_reminder").
	// At most one live job exists per ID.
	ID    string
	Title string

	// Body overrides the rendered notification text. Empty means the
	// default "It's time for your <title> reminder!".
	Body string

	Time      TimeOfDay
	Frequency Frequency

	// StartDate anchors the first occurrence and the weekday search.
	// Only the date part is semantically used.
	StartDate time.Time

	// Days is consulted for SpecificDays only.
	Days DaySet

	// Interval is consulted for EveryXMinutes only.
	Interval time.Duration

	// ActiveHours optionally restricts notification delivery to a
	// wall-clock window, checked at fire time.
	ActiveHours *HourRange

	Enabled bool
}

// NotificationBody renders the notification text for this reminder.
func (c Config) NotificationBody() string {
	if strings.TrimSpace(c.Body) != "" {
		return c.Body
	}
	return fmt.Sprintf("It's time for your %s reminder!", c.Title)
}

// Validate rejects configurations that cannot be scheduled safely.
// An empty weekday set on SpecificDays is an error rather than a silent
// fallback to daily firing.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("%w (id %q)", ErrEmptyTitle, c.ID)
	}
	switch c.Frequency {
	case Once, Daily, Hourly:
	case SpecificDays:
		if c.Days.Empty() {
			return fmt.Errorf("%w (id %q)", ErrEmptyDaySet, c.ID)
		}
	case EveryXMinutes:
		if c.Interval <= 0 {
			return fmt.Errorf("%w (id %q, got %s)", ErrBadInterval, c.ID, c.Interval)
		}
	default:
		return fmt.Errorf("%w (id %q, value %d)", ErrBadFrequency, c.ID, int(c.Frequency))
	}
	return nil
}

// Normalize validates and returns a copy with platform floors applied:
// EveryXMinutes intervals shorter than MinInterval are clamped.
func (c Config) Normalize() (Config, error) {
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	if c.Frequency == EveryXMinutes && c.Interval < MinInterval {
		c.Interval = MinInterval
	}
	return c, nil
}
