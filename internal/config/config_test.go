package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"remindd/internal/reminder"
)

func writeConfig(t *testing.T, name, body string) *Manager {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return NewManager(path)
}

const sampleYAML = `
logging:
  level: debug
  console: true
runtime:
  timezone: UTC
  workers: 2
storage:
  driver: sqlite
  path: ./remindd.db
notify:
  backend: log
  dedup_window: 1m
reminders:
  - id: eye_reminder
    title: Eye Care
    frequency: interval
    interval_minutes: 20
    active_hours:
      from: "09:00"
      to: "21:00"
  - id: water_reminder
    title: Water
    frequency: days
    time: "10:30"
    days: [mon, wed, fri]
  - id: pills
    title: Pills
    frequency: once
    time: "08:00"
    start_date: "2024-06-01"
    enabled: false
`

func TestLoadYAML(t *testing.T) {
	m := writeConfig(t, "config.yaml", sampleYAML)
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.Console {
		t.Fatalf("unexpected logging: %+v", cfg.Logging)
	}
	if cfg.Storage == nil || cfg.Storage.Driver != "sqlite" {
		t.Fatalf("unexpected storage: %+v", cfg.Storage)
	}
	if len(cfg.Reminders) != 3 {
		t.Fatalf("expected 3 reminders, got %d", len(cfg.Reminders))
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if m.Get() != cfg {
		t.Fatal("Get() should return the committed config")
	}
}

func TestLoadRejectsUnknownField(t *testing.T) {
	m := writeConfig(t, "config.yaml", `
logging:
  level: info
runtime:
  timzone: UTC
reminders: []
`)
	if _, err := m.Load(); err == nil {
		t.Fatal("expected error for misspelled field")
	}
}

func TestToReminderInterval(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rc := ReminderConfig{
		ID:              "eye_reminder",
		Title:           "Eye Care",
		Frequency:       "interval",
		IntervalMinutes: 20,
		ActiveHours:     &ActiveHours{From: "09:00", To: "21:00"},
	}
	r, err := rc.ToReminder(now)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if r.Frequency != reminder.EveryXMinutes {
		t.Fatalf("unexpected frequency: %v", r.Frequency)
	}
	if r.Interval != 20*time.Minute {
		t.Fatalf("unexpected interval: %v", r.Interval)
	}
	if !r.Enabled {
		t.Fatal("enabled should default to true")
	}
	if r.ActiveHours == nil || r.ActiveHours.From.Hour != 9 || r.ActiveHours.To.Hour != 21 {
		t.Fatalf("unexpected active hours: %+v", r.ActiveHours)
	}
	// Omitted start_date anchors at today.
	if !r.StartDate.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start date: %v", r.StartDate)
	}
}

func TestToReminderDays(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rc := ReminderConfig{
		ID:        "water_reminder",
		Title:     "Water",
		Frequency: "days",
		Time:      "10:30",
		Days:      []string{"mon", "wed", "fri"},
	}
	r, err := rc.ToReminder(now)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if r.Frequency != reminder.SpecificDays {
		t.Fatalf("unexpected frequency: %v", r.Frequency)
	}
	for _, wd := range []time.Weekday{time.Monday, time.Wednesday, time.Friday} {
		if !r.Days.Contains(wd) {
			t.Fatalf("day set missing %v", wd)
		}
	}
	if r.Days.Contains(time.Sunday) {
		t.Fatal("day set should not contain sunday")
	}
	if r.Time.Hour != 10 || r.Time.Minute != 30 {
		t.Fatalf("unexpected time: %v", r.Time)
	}
}

func TestToReminderErrors(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		rc   ReminderConfig
	}{
		{"bad frequency", ReminderConfig{ID: "a", Title: "A", Frequency: "fortnightly"}},
		{"bad time", ReminderConfig{ID: "a", Title: "A", Frequency: "daily", Time: "25:00"}},
		{"bad start date", ReminderConfig{ID: "a", Title: "A", Frequency: "daily", StartDate: "01-06-2024"}},
		{"bad weekday", ReminderConfig{ID: "a", Title: "A", Frequency: "days", Days: []string{"noday"}}},
		{"bad active hours", ReminderConfig{ID: "a", Title: "A", Frequency: "daily", ActiveHours: &ActiveHours{From: "9", To: "21:00"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.rc.ToReminder(now); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestValidateDuplicateIDs(t *testing.T) {
	cfg := &Config{
		Reminders: []ReminderConfig{
			{ID: "x", Title: "One", Frequency: "daily", Time: "09:00"},
			{ID: "x", Title: "Two", Frequency: "daily", Time: "10:00"},
		},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for duplicate reminder ids")
	}
}

func TestValidateEmptyDays(t *testing.T) {
	cfg := &Config{
		Reminders: []ReminderConfig{
			{ID: "x", Title: "One", Frequency: "days", Time: "09:00"},
		},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for days frequency with no days")
	}
}

func TestValidateBackendRequirements(t *testing.T) {
	cfg := &Config{Notify: &NotifyConfig{Backend: "command"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for command backend without program")
	}
	cfg = &Config{Notify: &NotifyConfig{Backend: "telegram"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for telegram backend without token")
	}
}

func TestSummarizeConfigChange(t *testing.T) {
	oldCfg := &Config{
		Logging: LoggingConfig{Level: "info"},
		Reminders: []ReminderConfig{
			{ID: "keep", Title: "Keep", Frequency: "daily", Time: "09:00"},
			{ID: "gone", Title: "Gone", Frequency: "daily", Time: "10:00"},
			{ID: "edit", Title: "Old", Frequency: "daily", Time: "11:00"},
		},
	}
	newCfg := &Config{
		Logging: LoggingConfig{Level: "debug"},
		Reminders: []ReminderConfig{
			{ID: "keep", Title: "Keep", Frequency: "daily", Time: "09:00"},
			{ID: "edit", Title: "New", Frequency: "daily", Time: "11:00"},
			{ID: "added", Title: "Added", Frequency: "hourly"},
		},
	}
	sections, _, reminderIDs := SummarizeConfigChange(oldCfg, newCfg)

	wantSections := []string{"logging", "reminders"}
	if len(sections) != len(wantSections) {
		t.Fatalf("sections: got %v want %v", sections, wantSections)
	}
	for i := range wantSections {
		if sections[i] != wantSections[i] {
			t.Fatalf("sections: got %v want %v", sections, wantSections)
		}
	}
	wantIDs := []string{"added", "edit", "gone"}
	if len(reminderIDs) != len(wantIDs) {
		t.Fatalf("reminder ids: got %v want %v", reminderIDs, wantIDs)
	}
	for i := range wantIDs {
		if reminderIDs[i] != wantIDs[i] {
			t.Fatalf("reminder ids: got %v want %v", reminderIDs, wantIDs)
		}
	}
}

func TestParseDurationField(t *testing.T) {
	if d, err := ParseDurationField("x", "1m30s"); err != nil || d != 90*time.Second {
		t.Fatalf("got %v, %v", d, err)
	}
	if d, err := ParseDurationField("x", ""); err != nil || d != 0 {
		t.Fatalf("empty: got %v, %v", d, err)
	}
	if _, err := ParseDurationField("x", "-5s"); err == nil {
		t.Fatal("expected error for negative duration")
	}
	if _, err := ParseDurationField("x", "soon"); err == nil {
		t.Fatal("expected error for junk")
	}
}
