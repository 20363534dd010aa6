package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	logx "remindd/pkg/logx"
)

type fakeBackend struct {
	mu   sync.Mutex
	sent []Notification
	fail error
	name string
}

func (f *fakeBackend) Name() string {
	if f.name != "" {
		return f.name
	}
	return "fake"
}

func (f *fakeBackend) Send(ctx context.Context, n Notification) error {
	_ = ctx
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeBackend) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func TestNotifyDelivers(t *testing.T) {
	be := &fakeBackend{}
	d := NewDispatcher(Config{RatePerSec: 100}, be, logx.Nop(), nil)

	if err := d.Notify(context.Background(), 42, "Eye Care", "It's time for your Eye Care reminder!"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if be.count() != 1 {
		t.Fatalf("expected 1 send, got %d", be.count())
	}
	got := be.sent[0]
	if got.ID != 42 || got.Title != "Eye Care" {
		t.Fatalf("unexpected notification: %+v", got)
	}
	hist := d.History()
	if len(hist) != 1 || hist[0].ID != 42 || hist[0].Title != "Eye Care" {
		t.Fatalf("unexpected history: %+v", hist)
	}
}

func TestNotifyDedupWindow(t *testing.T) {
	be := &fakeBackend{}
	d := NewDispatcher(Config{RatePerSec: 100, DedupWindow: time.Minute}, be, logx.Nop(), nil)
	ctx := context.Background()

	if err := d.Notify(ctx, 7, "Water", "drink"); err != nil {
		t.Fatalf("first notify: %v", err)
	}
	// Same ID inside the window is suppressed, not an error.
	if err := d.Notify(ctx, 7, "Water", "drink"); err != nil {
		t.Fatalf("duplicate notify: %v", err)
	}
	// Different ID is unaffected.
	if err := d.Notify(ctx, 8, "Eye", "blink"); err != nil {
		t.Fatalf("other notify: %v", err)
	}
	if be.count() != 2 {
		t.Fatalf("expected 2 sends, got %d", be.count())
	}
}

func TestNotifyBackendError(t *testing.T) {
	sendErr := errors.New("boom")
	be := &fakeBackend{fail: sendErr}
	d := NewDispatcher(Config{RatePerSec: 100, DedupWindow: time.Minute}, be, logx.Nop(), nil)
	ctx := context.Background()

	if err := d.Notify(ctx, 1, "t", "b"); !errors.Is(err, sendErr) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
	// Failed sends must not populate the dedup window.
	be.mu.Lock()
	be.fail = nil
	be.mu.Unlock()
	if err := d.Notify(ctx, 1, "t", "b"); err != nil {
		t.Fatalf("retry notify: %v", err)
	}
	if be.count() != 1 {
		t.Fatalf("expected 1 send after recovery, got %d", be.count())
	}
}

func TestNotifyNoBackend(t *testing.T) {
	d := NewDispatcher(Config{}, nil, logx.Nop(), nil)
	if err := d.Notify(context.Background(), 1, "t", "b"); !errors.Is(err, ErrNoBackend) {
		t.Fatalf("expected ErrNoBackend, got %v", err)
	}
}

func TestNewBackendSelection(t *testing.T) {
	if _, err := NewBackend(Config{Backend: "log"}, logx.Nop()); err != nil {
		t.Fatalf("log backend: %v", err)
	}
	if _, err := NewBackend(Config{}, logx.Nop()); err != nil {
		t.Fatalf("default backend: %v", err)
	}
	if _, err := NewBackend(Config{Backend: "pager"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	// Misconfigured command backend surfaces at construction time.
	if _, err := NewBackend(Config{Backend: "command"}, logx.Nop()); err == nil {
		t.Fatal("expected error for command backend without program")
	}
}

func TestEscapeMarkdown(t *testing.T) {
	got := escapeMarkdown("Eye. Care!")
	want := `Eye\. Care\!`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if escapeMarkdown("plain") != "plain" {
		t.Fatal("plain text should pass through")
	}
}
