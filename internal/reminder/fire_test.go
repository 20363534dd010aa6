package reminder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jmhodges/clock"

	logx "remindd/pkg/logx"
)

func testLogger() logx.Logger { return logx.Nop() }

type fakeNotifier struct {
	mu    sync.Mutex
	calls []struct {
		id          int64
		title, body string
	}
	err error
}

func (n *fakeNotifier) Notify(_ context.Context, id int64, title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.calls = append(n.calls, struct {
		id          int64
		title, body string
	}{id, title, body})
	return nil
}

func fireAt(t *testing.T, at time.Time) (*FireHandler, *fakeNotifier) {
	t.Helper()
	n := &fakeNotifier{}
	clk := clock.NewFake()
	clk.Set(at)
	return NewFireHandler(n, clk, testLogger()), n
}

func TestOnFireDayFilterSkips(t *testing.T) {
	t.Parallel()
	// monNoon is a Monday; the filter selects Wednesday only.
	h, n := fireAt(t, monNoon)
	p := Payload{ReminderID: "gym", Title: "Gym", Body: "go", Days: NewDaySet(time.Wednesday)}

	if err := h.OnFire(context.Background(), p); err != nil {
		t.Fatalf("OnFire: %v", err)
	}
	if len(n.calls) != 0 {
		t.Fatalf("notifier called %d times on a filtered day, want 0", len(n.calls))
	}
}

func TestOnFireDayFilterMatches(t *testing.T) {
	t.Parallel()
	h, n := fireAt(t, monNoon)
	p := Payload{ReminderID: "gym", Title: "Gym", Body: "go", Days: NewDaySet(time.Monday, time.Wednesday)}

	if err := h.OnFire(context.Background(), p); err != nil {
		t.Fatalf("OnFire: %v", err)
	}
	if len(n.calls) != 1 {
		t.Fatalf("notifier calls = %d, want exactly 1", len(n.calls))
	}
	if n.calls[0].title != "Gym" || n.calls[0].body != "go" {
		t.Fatalf("unexpected notification: %+v", n.calls[0])
	}
	if n.calls[0].id != p.NotificationID() {
		t.Fatalf("notification id = %d, want %d", n.calls[0].id, p.NotificationID())
	}
}

func TestOnFireNoFilterNotifies(t *testing.T) {
	t.Parallel()
	h, n := fireAt(t, monNoon)
	p := Payload{ReminderID: "water_reminder", Title: "Drink water", Body: "It's time for your Drink water reminder!"}

	if err := h.OnFire(context.Background(), p); err != nil {
		t.Fatalf("OnFire: %v", err)
	}
	if len(n.calls) != 1 {
		t.Fatalf("notifier calls = %d, want 1", len(n.calls))
	}
}

func TestOnFireActiveHours(t *testing.T) {
	t.Parallel()
	window := &HourRange{From: TimeOfDay{Hour: 9}, To: TimeOfDay{Hour: 17}}

	tests := []struct {
		name   string
		at     time.Time
		window *HourRange
		want   int
	}{
		{name: "inside window", at: monNoon, window: window, want: 1},
		{name: "outside window", at: monNoon.Add(8 * time.Hour), window: window, want: 0},
		{name: "overnight window wraps", at: monNoon.Add(11 * time.Hour), window: &HourRange{From: TimeOfDay{Hour: 22}, To: TimeOfDay{Hour: 6}}, want: 1},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			h, n := fireAt(t, tt.at)
			p := Payload{ReminderID: "eye", Title: "Eye break", Body: "look away", ActiveHours: tt.window}
			if err := h.OnFire(context.Background(), p); err != nil {
				t.Fatalf("OnFire: %v", err)
			}
			if len(n.calls) != tt.want {
				t.Fatalf("notifier calls = %d, want %d", len(n.calls), tt.want)
			}
		})
	}
}

func TestOnFireNotifierErrorPropagates(t *testing.T) {
	t.Parallel()
	h, n := fireAt(t, monNoon)
	n.err = errors.New("sink unavailable")

	p := Payload{ReminderID: "eye", Title: "Eye break", Body: "look away"}
	if err := h.OnFire(context.Background(), p); err == nil {
		t.Fatal("expected notifier error to propagate")
	}
}

// Duplicate at-least-once delivery: firing twice is at most a duplicate
// notification, never corrupted state.
func TestOnFireIdempotent(t *testing.T) {
	t.Parallel()
	h, n := fireAt(t, monNoon)
	p := Payload{ReminderID: "eye", Title: "Eye break", Body: "look away"}

	for i := 0; i < 2; i++ {
		if err := h.OnFire(context.Background(), p); err != nil {
			t.Fatalf("OnFire #%d: %v", i+1, err)
		}
	}
	if len(n.calls) != 2 {
		t.Fatalf("notifier calls = %d, want 2", len(n.calls))
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	t.Parallel()
	p := Payload{
		ReminderID:  "gym",
		Title:       "Gym",
		Body:        "It's time for your Gym reminder!",
		Days:        NewDaySet(time.Monday, time.Friday),
		ActiveHours: &HourRange{From: TimeOfDay{Hour: 8}, To: TimeOfDay{Hour: 20}},
	}
	b, err := p.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := DecodePayload(b)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if got.ReminderID != p.ReminderID || got.Days != p.Days || got.ActiveHours == nil || *got.ActiveHours != *p.ActiveHours {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	if _, err := DecodePayload([]byte(`{}`)); err == nil {
		t.Fatal("expected error for payload without reminder_id")
	}
}
