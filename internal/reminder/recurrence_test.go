package reminder

import (
	"testing"
	"time"
)

// Monday noon, a fixed reference point for every table below.
var monNoon = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func TestNextFireTimeDaily(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		start time.Time
		tod   TimeOfDay
		want  time.Time
	}{
		{
			name:  "later today",
			start: dateOnly(monNoon),
			tod:   TimeOfDay{Hour: 15, Minute: 4},
			want:  time.Date(2024, 1, 1, 15, 4, 0, 0, time.UTC),
		},
		{
			name:  "already passed today",
			start: dateOnly(monNoon),
			tod:   TimeOfDay{Hour: 9, Minute: 0},
			want:  time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
		},
		{
			name:  "ancient start date",
			start: time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC),
			tod:   TimeOfDay{Hour: 9, Minute: 30},
			want:  time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC),
		},
		{
			name:  "start date in the future",
			start: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			tod:   TimeOfDay{Hour: 8, Minute: 0},
			want:  time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{ID: "r", Title: "r", Frequency: Daily, StartDate: tt.start, Time: tt.tod, Enabled: true}
			got, ok := NextFireTime(cfg, monNoon)
			if !ok {
				t.Fatal("expected a fire time")
			}
			if !got.Equal(tt.want) {
				t.Fatalf("NextFireTime = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextFireTimeOnce(t *testing.T) {
	t.Parallel()

	future := Config{ID: "r", Title: "r", Frequency: Once, StartDate: dateOnly(monNoon), Time: TimeOfDay{Hour: 18, Minute: 0}, Enabled: true}
	got, ok := NextFireTime(future, monNoon)
	if !ok {
		t.Fatal("future one-time reminder should resolve")
	}
	if want := time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("NextFireTime = %v, want %v", got, want)
	}

	// One hour in the past: abandoned, never rescheduled.
	past := future
	past.Time = TimeOfDay{Hour: 11, Minute: 0}
	if _, ok := NextFireTime(past, monNoon); ok {
		t.Fatal("past one-time reminder must return no fire time")
	}
}

func TestNextFireTimeHourly(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "minute still ahead this hour",
			now:  monNoon, // 12:00
			want: time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC),
		},
		{
			name: "minute already passed",
			now:  time.Date(2024, 1, 1, 12, 45, 0, 0, time.UTC),
			want: time.Date(2024, 1, 1, 13, 30, 0, 0, time.UTC),
		},
		{
			name: "exactly on the minute",
			now:  time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC),
			want: time.Date(2024, 1, 1, 13, 30, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{ID: "r", Title: "r", Frequency: Hourly, StartDate: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), Time: TimeOfDay{Hour: 9, Minute: 30}, Enabled: true}
			got, ok := NextFireTime(cfg, tt.now)
			if !ok {
				t.Fatal("expected a fire time")
			}
			if !got.Equal(tt.want) {
				t.Fatalf("NextFireTime = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextFireTimeEveryXMinutes(t *testing.T) {
	t.Parallel()

	// Anchor 67 minutes ago, interval 30m: occurrences at -67m, -37m, -7m,
	// +23m. Must land on +23m without looping per minute.
	start := monNoon.Add(-67 * time.Minute)
	cfg := Config{
		ID: "r", Title: "r", Frequency: EveryXMinutes, Interval: 30 * time.Minute,
		StartDate: start, Time: TimeOfDay{Hour: start.Hour(), Minute: start.Minute()}, Enabled: true,
	}
	got, ok := NextFireTime(cfg, monNoon)
	if !ok {
		t.Fatal("expected a fire time")
	}
	if want := monNoon.Add(23 * time.Minute); !got.Equal(want) {
		t.Fatalf("NextFireTime = %v, want %v", got, want)
	}

	// A start date years back must still resolve to a near-future slot.
	cfg.StartDate = time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)
	cfg.Time = TimeOfDay{Hour: 0, Minute: 0}
	got, ok = NextFireTime(cfg, monNoon)
	if !ok {
		t.Fatal("expected a fire time")
	}
	if !got.After(monNoon) || got.Sub(monNoon) > 30*time.Minute {
		t.Fatalf("distant anchor resolved to %v (now %v)", got, monNoon)
	}
}

func TestNextFireTimeSpecificDays(t *testing.T) {
	t.Parallel()

	// Wednesday-only reminder, evaluated on a Monday after the configured
	// time has passed: next fire must be a Wednesday.
	cfg := Config{
		ID: "r", Title: "r", Frequency: SpecificDays,
		Days:      NewDaySet(time.Wednesday),
		StartDate: dateOnly(monNoon),
		Time:      TimeOfDay{Hour: 9, Minute: 0},
		Enabled:   true,
	}
	got, ok := NextFireTime(cfg, monNoon)
	if !ok {
		t.Fatal("expected a fire time")
	}
	if got.Weekday() != time.Wednesday {
		t.Fatalf("weekday = %v, want Wednesday", got.Weekday())
	}
	delay := got.Sub(monNoon)
	if delay < 24*time.Hour || delay > 3*24*time.Hour {
		t.Fatalf("delay = %v, want between 1 and 3 days", delay)
	}

	// Today matches and the time is still ahead: fire today.
	cfg.Days = NewDaySet(time.Monday, time.Friday)
	cfg.Time = TimeOfDay{Hour: 18, Minute: 0}
	got, ok = NextFireTime(cfg, monNoon)
	if !ok {
		t.Fatal("expected a fire time")
	}
	if want := time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("NextFireTime = %v, want %v", got, want)
	}
}

// Every repeating frequency must always resolve strictly after now.
func TestNextFireTimeAlwaysFuture(t *testing.T) {
	t.Parallel()
	configs := []Config{
		{ID: "a", Title: "a", Frequency: Daily, StartDate: dateOnly(monNoon), Time: TimeOfDay{Hour: 12, Minute: 0}},
		{ID: "b", Title: "b", Frequency: Hourly, StartDate: dateOnly(monNoon), Time: TimeOfDay{Hour: 12, Minute: 0}},
		{ID: "c", Title: "c", Frequency: EveryXMinutes, Interval: MinInterval, StartDate: dateOnly(monNoon), Time: TimeOfDay{Hour: 0, Minute: 0}},
		{ID: "d", Title: "d", Frequency: SpecificDays, Days: NewDaySet(time.Monday), StartDate: dateOnly(monNoon), Time: TimeOfDay{Hour: 12, Minute: 0}},
	}
	for _, cfg := range configs {
		cfg.Enabled = true
		got, ok := NextFireTime(cfg, monNoon)
		if !ok {
			t.Fatalf("%s: expected a fire time", cfg.ID)
		}
		if !got.After(monNoon) {
			t.Fatalf("%s: NextFireTime %v is not after now %v", cfg.ID, got, monNoon)
		}
	}
}

func TestNormalizeClampsInterval(t *testing.T) {
	t.Parallel()
	cfg := Config{ID: "r", Title: "r", Frequency: EveryXMinutes, Interval: 5 * time.Minute, Enabled: true}
	norm, err := cfg.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if norm.Interval != MinInterval {
		t.Fatalf("Interval = %v, want %v", norm.Interval, MinInterval)
	}

	cfg.Interval = 0
	if _, err := cfg.Normalize(); err == nil {
		t.Fatal("expected error for non-positive interval")
	}
}

func TestValidateRejectsEmptyDaySet(t *testing.T) {
	t.Parallel()
	cfg := Config{ID: "r", Title: "r", Frequency: SpecificDays, Enabled: true}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty day set")
	}
}
