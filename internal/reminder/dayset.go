package reminder

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DaySet is a set of weekdays, stored as a bitmask over time.Weekday
// (Sunday = bit 0).
type DaySet uint8

func NewDaySet(days ...time.Weekday) DaySet {
	var s DaySet
	for _, d := range days {
		s |= 1 << uint(d)
	}
	return s
}

func (s DaySet) Contains(d time.Weekday) bool { return s&(1<<uint(d)) != 0 }

func (s DaySet) Empty() bool { return s == 0 }

// Weekdays returns the members in Sunday-first order.
func (s DaySet) Weekdays() []time.Weekday {
	if s.Empty() {
		return nil
	}
	out := make([]time.Weekday, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Contains(d) {
			out = append(out, d)
		}
	}
	return out
}

var dayNames = map[time.Weekday]string{
	time.Sunday:    "sun",
	time.Monday:    "mon",
	time.Tuesday:   "tue",
	time.Wednesday: "wed",
	time.Thursday:  "thu",
	time.Friday:    "fri",
	time.Saturday:  "sat",
}

// String renders the set as a comma-joined list, e.g. "mon,wed,fri".
func (s DaySet) String() string {
	if s.Empty() {
		return ""
	}
	parts := make([]string, 0, 7)
	for _, d := range s.Weekdays() {
		parts = append(parts, dayNames[d])
	}
	return strings.Join(parts, ",")
}

// ParseWeekday accepts short ("wed") and long ("wednesday") English names.
func ParseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sun", "sunday":
		return time.Sunday, nil
	case "mon", "monday":
		return time.Monday, nil
	case "tue", "tues", "tuesday":
		return time.Tuesday, nil
	case "wed", "wednesday":
		return time.Wednesday, nil
	case "thu", "thur", "thurs", "thursday":
		return time.Thursday, nil
	case "fri", "friday":
		return time.Friday, nil
	case "sat", "saturday":
		return time.Saturday, nil
	default:
		return 0, fmt.Errorf("unknown weekday %q", s)
	}
}

// ParseDaySet parses a comma-separated weekday list. An empty string is a
// valid empty set; callers decide whether that is acceptable.
func ParseDaySet(raw string) (DaySet, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	var s DaySet
	for _, tok := range strings.Split(raw, ",") {
		if strings.TrimSpace(tok) == "" {
			continue
		}
		d, err := ParseWeekday(tok)
		if err != nil {
			return 0, err
		}
		s |= 1 << uint(d)
	}
	return s, nil
}

// JSON form is the comma-joined string, matching the serialized weekday
// set carried in job payloads.

func (s DaySet) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(s.String())), nil
}

func (s *DaySet) UnmarshalJSON(b []byte) error {
	raw, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("day set: %w", err)
	}
	v, err := ParseDaySet(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}
