package session

import (
	"testing"
	"time"
)

func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}

func TestManagerBeginGet(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	m := NewManager(30*time.Minute, WithClock(fixedClock(&now)))

	m.Begin(7, 42, StepAwaitMethod)

	s, ok := m.Get(7)
	if !ok {
		t.Fatal("expected live session")
	}
	if s.Step != StepAwaitMethod || s.OrderID != 42 {
		t.Fatalf("unexpected session: %+v", s)
	}

	if _, ok := m.Get(99); ok {
		t.Fatal("expected no session for unknown user")
	}
}

func TestManagerExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	m := NewManager(30*time.Minute, WithClock(fixedClock(&now)))

	m.Begin(7, 42, StepAwaitMethod)

	now = now.Add(29 * time.Minute)
	if _, ok := m.Get(7); !ok {
		t.Fatal("session should still be live before TTL")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := m.Get(7); ok {
		t.Fatal("session should have expired")
	}
	if m.Len() != 0 {
		t.Fatalf("expired session should be removed lazily, len=%d", m.Len())
	}
}

func TestManagerAdvanceRefreshesDeadline(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	m := NewManager(30*time.Minute, WithClock(fixedClock(&now)))

	m.Begin(7, 42, StepAwaitMethod)

	now = now.Add(20 * time.Minute)
	if !m.Advance(7, StepAwaitAccount) {
		t.Fatal("advance on live session should succeed")
	}

	// 25 minutes past the original deadline would have expired without the
	// refresh on Advance.
	now = now.Add(25 * time.Minute)
	s, ok := m.Get(7)
	if !ok {
		t.Fatal("deadline should have been refreshed by Advance")
	}
	if s.Step != StepAwaitAccount {
		t.Fatalf("step = %q, want %q", s.Step, StepAwaitAccount)
	}
}

func TestManagerAdvanceExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	m := NewManager(10*time.Minute, WithClock(fixedClock(&now)))

	m.Begin(7, 42, StepAwaitMethod)
	now = now.Add(11 * time.Minute)

	if m.Advance(7, StepAwaitAccount) {
		t.Fatal("advance on expired session must fail")
	}
	if m.Len() != 0 {
		t.Fatal("expired session should be dropped by Advance")
	}
}

func TestManagerBeginReplaces(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	m := NewManager(30*time.Minute, WithClock(fixedClock(&now)))

	m.Begin(7, 42, StepAwaitReceipt)
	m.Begin(7, 43, StepAwaitMethod)

	s, _ := m.Get(7)
	if s.OrderID != 43 || s.Step != StepAwaitMethod {
		t.Fatalf("begin should replace existing session, got %+v", s)
	}
}

func TestManagerSweep(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	m := NewManager(10*time.Minute, WithClock(fixedClock(&now)))

	m.Begin(1, 10, StepAwaitMethod)
	m.Begin(2, 20, StepAwaitMethod)
	now = now.Add(5 * time.Minute)
	m.Begin(3, 30, StepAwaitMethod)
	now = now.Add(6 * time.Minute)

	if dropped := m.Sweep(); dropped != 2 {
		t.Fatalf("dropped = %d, want 2", dropped)
	}
	if _, ok := m.Get(3); !ok {
		t.Fatal("session 3 should survive the sweep")
	}
}

func TestManagerClear(t *testing.T) {
	m := NewManager(time.Minute)
	m.Begin(7, 42, StepAwaitMethod)
	m.Clear(7)
	if _, ok := m.Get(7); ok {
		t.Fatal("cleared session should be gone")
	}
}
