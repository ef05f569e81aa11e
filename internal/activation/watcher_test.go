package activation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/freelancekenya/kazi/internal/api"
)

// fakeOverview serves a scripted sequence of poll responses
type fakeOverview struct {
	mu            sync.Mutex
	calls         int
	activateAfter int  // poll number on which is_activated flips true, 0 = never
	failFirst     int  // number of leading polls that return an error
	block         bool // never respond until ctx ends
}

func (f *fakeOverview) GetOverview(ctx context.Context, userID string) (*api.Overview, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	f.mu.Lock()
	f.calls++
	calls := f.calls
	f.mu.Unlock()

	if calls <= f.failFirst {
		return nil, fmt.Errorf("overview unavailable")
	}
	activated := f.activateAfter > 0 && calls >= f.activateAfter
	return &api.Overview{IsActivated: activated}, nil
}

func (f *fakeOverview) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWatcherActivated(t *testing.T) {
	backend := &fakeOverview{activateAfter: 3}
	w := NewWatcher(backend, testLogger(), WithSchedule(time.Millisecond, 30))

	got := w.Wait(context.Background(), "user-42")
	if got != Activated {
		t.Fatalf("outcome = %v, want %v", got, Activated)
	}
	if backend.callCount() != 3 {
		t.Errorf("polls = %d, want 3", backend.callCount())
	}
}

func TestWatcherTimedOut(t *testing.T) {
	backend := &fakeOverview{}
	w := NewWatcher(backend, testLogger(), WithSchedule(time.Millisecond, 5))

	got := w.Wait(context.Background(), "user-42")
	if got != TimedOut {
		t.Fatalf("outcome = %v, want %v", got, TimedOut)
	}
	if backend.callCount() != 5 {
		t.Errorf("polls = %d, want the full attempt budget of 5", backend.callCount())
	}
}

func TestWatcherPollErrorsConsumeAttempts(t *testing.T) {
	backend := &fakeOverview{failFirst: 2, activateAfter: 4}
	w := NewWatcher(backend, testLogger(), WithSchedule(time.Millisecond, 30))

	got := w.Wait(context.Background(), "user-42")
	if got != Activated {
		t.Fatalf("outcome = %v, want %v after transient poll errors", got, Activated)
	}
}

func TestWatcherCancelledBeforeFirstPoll(t *testing.T) {
	backend := &fakeOverview{}
	w := NewWatcher(backend, testLogger(), WithSchedule(time.Hour, 30))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := w.Wait(ctx, "user-42"); got != Cancelled {
		t.Fatalf("outcome = %v, want %v", got, Cancelled)
	}
	if backend.callCount() != 0 {
		t.Errorf("polls = %d, want 0 when cancelled before the first tick", backend.callCount())
	}
}

func TestWatcherCancelledMidPoll(t *testing.T) {
	backend := &fakeOverview{block: true}
	w := NewWatcher(backend, testLogger(), WithSchedule(time.Millisecond, 30))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Outcome, 1)
	go func() { done <- w.Wait(ctx, "user-42") }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case got := <-done:
		if got != Cancelled {
			t.Fatalf("outcome = %v, want %v", got, Cancelled)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancellation")
	}
}

func TestOutcomeString(t *testing.T) {
	for outcome, want := range map[Outcome]string{
		Activated: "activated",
		TimedOut:  "timed-out",
		Cancelled: "cancelled",
	} {
		if got := outcome.String(); got != want {
			t.Errorf("Outcome(%d).String() = %q, want %q", outcome, got, want)
		}
	}
}
