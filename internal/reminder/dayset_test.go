package reminder

import (
	"testing"
	"time"
)

func TestParseDaySet(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "short names", raw: "mon,wed,fri", want: "mon,wed,fri"},
		{name: "long names and spaces", raw: "Monday, wednesday ,FRI", want: "mon,wed,fri"},
		{name: "unordered input normalizes", raw: "sat,sun", want: "sun,sat"},
		{name: "empty set", raw: "", want: ""},
		{name: "unknown token", raw: "mon,funday", wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseDaySet(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDaySet(%q) expected error", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDaySet(%q): %v", tt.raw, err)
			}
			if got := s.String(); got != tt.want {
				t.Fatalf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDaySetContains(t *testing.T) {
	t.Parallel()
	s := NewDaySet(time.Monday, time.Wednesday)
	if !s.Contains(time.Monday) || !s.Contains(time.Wednesday) {
		t.Fatal("expected members missing")
	}
	if s.Contains(time.Sunday) || s.Contains(time.Saturday) {
		t.Fatal("unexpected members present")
	}
	if s.Empty() {
		t.Fatal("set should not be empty")
	}
	if !NewDaySet().Empty() {
		t.Fatal("empty set should report Empty")
	}
}

func TestHourRangeContains(t *testing.T) {
	t.Parallel()
	day := HourRange{From: TimeOfDay{Hour: 9}, To: TimeOfDay{Hour: 17}}
	if !day.Contains(TimeOfDay{Hour: 9}) || !day.Contains(TimeOfDay{Hour: 17}) {
		t.Fatal("bounds should be inclusive")
	}
	if day.Contains(TimeOfDay{Hour: 17, Minute: 1}) || day.Contains(TimeOfDay{Hour: 8, Minute: 59}) {
		t.Fatal("values outside the window accepted")
	}

	night := HourRange{From: TimeOfDay{Hour: 22}, To: TimeOfDay{Hour: 6}}
	if !night.Contains(TimeOfDay{Hour: 23}) || !night.Contains(TimeOfDay{Hour: 2}) {
		t.Fatal("overnight window should wrap past midnight")
	}
	if night.Contains(TimeOfDay{Hour: 12}) {
		t.Fatal("noon is outside the overnight window")
	}
}

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()
	got, err := ParseTimeOfDay("23:15")
	if err != nil {
		t.Fatalf("ParseTimeOfDay: %v", err)
	}
	if got.Hour != 23 || got.Minute != 15 {
		t.Fatalf("unexpected result: %v", got)
	}

	for _, bad := range []string{"24:00", "12:60", "noon", "1"} {
		if _, err := ParseTimeOfDay(bad); err == nil {
			t.Fatalf("ParseTimeOfDay(%q) expected error", bad)
		}
	}
}
