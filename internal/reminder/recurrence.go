package reminder

import "time"

// NextFireTime computes the next concrete fire time for cfg, strictly
// after now. It is a pure function; cfg is expected to be normalized.
//
// The second return value is false only for a one-time reminder whose
// moment has already passed: such a reminder is abandoned, not
// rescheduled, and the caller must skip scheduling entirely.
func NextFireTime(cfg Config, now time.Time) (time.Time, bool) {
	loc := now.Location()
	anchor := cfg.StartDate
	if anchor.IsZero() {
		anchor = now
	}
	y, m, d := anchor.In(loc).Date()
	candidate := time.Date(y, m, d, cfg.Time.Hour, cfg.Time.Minute, 0, 0, loc)

	if !candidate.After(now) {
		switch cfg.Frequency {
		case Once:
			return time.Time{}, false

		case Daily, SpecificDays:
			candidate = nextDay(candidate, now)

		case Hourly:
			// The hour component only matters for the first occurrence;
			// afterwards the reminder fires at cfg.Time.Minute past every hour.
			candidate = time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), cfg.Time.Minute, 0, 0, loc)
			if !candidate.After(now) {
				candidate = candidate.Add(time.Hour)
			}

		case EveryXMinutes:
			// Modular arithmetic rather than a per-interval loop, so a very
			// distant start date stays O(1).
			interval := cfg.Interval
			elapsed := now.Sub(candidate)
			steps := elapsed/interval + 1
			candidate = candidate.Add(steps * interval)
			for !candidate.After(now) {
				candidate = candidate.Add(interval)
			}
		}
	}

	if cfg.Frequency == SpecificDays && !cfg.Days.Empty() {
		for i := 0; i < 7 && !cfg.Days.Contains(candidate.Weekday()); i++ {
			candidate = candidate.AddDate(0, 0, 1)
		}
	}

	return candidate, true
}

// nextDay advances candidate in whole-day steps until it is after now.
// The big jump keeps ancient start dates from looping per day; AddDate is
// used so the wall-clock time survives DST transitions.
func nextDay(candidate, now time.Time) time.Time {
	if behind := now.Sub(candidate); behind > 48*time.Hour {
		candidate = candidate.AddDate(0, 0, int(behind/(24*time.Hour))-1)
	}
	for !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}
