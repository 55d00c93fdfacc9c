package dice

import (
	"testing"
	"time"
)

func waitSettle(t *testing.T, ch <-chan struct{}, within time.Duration) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(within):
		t.Fatalf("timed out waiting for settle")
	}
}

func TestHandshake_HappyPath(t *testing.T) {
	settled := make(chan struct{}, 1)
	h := New(time.Second, func() { settled <- struct{}{} })

	if h.Phase() != Idle {
		t.Fatalf("want Idle, got %v", h.Phase())
	}

	h.RollRequested()
	if h.Phase() != AwaitingRoll {
		t.Fatalf("want AwaitingRoll, got %v", h.Phase())
	}

	h.RollArrived()
	if h.Phase() != AnimatingRoll {
		t.Fatalf("want AnimatingRoll, got %v", h.Phase())
	}

	h.AnimationDone()
	waitSettle(t, settled, 100*time.Millisecond)
	if h.Phase() != Settled {
		t.Fatalf("want Settled, got %v", h.Phase())
	}

	// Next roll starts over.
	h.RollRequested()
	if h.Phase() != AwaitingRoll {
		t.Fatalf("want AwaitingRoll after settle, got %v", h.Phase())
	}
}

func TestHandshake_FallbackFiresWithoutAnimation(t *testing.T) {
	settled := make(chan struct{}, 1)
	h := New(50*time.Millisecond, func() { settled <- struct{}{} })

	h.RollRequested()
	h.RollArrived()

	// No AnimationDone ever: the fallback must settle within its bound.
	waitSettle(t, settled, time.Second)
	if h.Phase() != Settled {
		t.Fatalf("want Settled via fallback, got %v", h.Phase())
	}
}

func TestHandshake_SettleFiresOnce(t *testing.T) {
	settled := make(chan struct{}, 4)
	h := New(50*time.Millisecond, func() { settled <- struct{}{} })

	h.RollRequested()
	h.RollArrived()
	h.AnimationDone()
	h.AnimationDone() // double callback

	waitSettle(t, settled, 100*time.Millisecond)
	// Give the fallback timer a chance to misfire.
	time.Sleep(100 * time.Millisecond)
	select {
	case <-settled:
		t.Fatalf("settle fired more than once")
	default:
	}
}

func TestHandshake_AbortReturnsToIdle(t *testing.T) {
	h := New(time.Second, nil)

	h.RollRequested()
	h.Abort()
	if h.Phase() != Idle {
		t.Fatalf("want Idle after abort, got %v", h.Phase())
	}

	// Abort after the result arrived is a no-op.
	h.RollRequested()
	h.RollArrived()
	h.Abort()
	if h.Phase() != AnimatingRoll {
		t.Fatalf("abort must not interrupt animation, got %v", h.Phase())
	}
}
