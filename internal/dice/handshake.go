// Package dice coordinates the server-authoritative roll result with the
// client-local roll animation. The outcome is true on the server the
// moment it arrives; the handshake only controls when the UI may reveal
// it, and guarantees a missing animation callback can never wedge the
// turn.
package dice

import (
	"sync"
	"time"
)

// Phase is the handshake state.
type Phase string

const (
	Idle          Phase = "idle"
	AwaitingRoll  Phase = "awaitingRoll"
	AnimatingRoll Phase = "animatingRoll"
	Settled       Phase = "settled"
)

// Handshake is a small state machine: Idle -> AwaitingRoll on request,
// AwaitingRoll -> AnimatingRoll on the server result, AnimatingRoll ->
// Settled on animation completion or the fallback timer, Settled -> Idle
// on the next request.
type Handshake struct {
	mu       sync.Mutex
	phase    Phase
	fallback time.Duration
	timer    *time.Timer
	onSettle func()
}

// New builds a handshake. onSettle fires exactly once per roll, on
// whichever of the animation callback and the fallback timer comes first.
func New(fallback time.Duration, onSettle func()) *Handshake {
	if fallback <= 0 {
		fallback = 5 * time.Second
	}
	return &Handshake{phase: Idle, fallback: fallback, onSettle: onSettle}
}

// Phase returns the current state.
func (h *Handshake) Phase() Phase {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.phase
}

// RollRequested moves Idle or Settled to AwaitingRoll.
func (h *Handshake) RollRequested() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.phase == Idle || h.phase == Settled {
		h.phase = AwaitingRoll
	}
}

// RollArrived records the server result and starts the animation window,
// arming the fallback timer. If no roll was awaited (a resync or another
// player's roll replayed oddly) the animation still runs so the flag
// clears on its own.
func (h *Handshake) RollArrived() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.phase == AnimatingRoll {
		return
	}
	h.phase = AnimatingRoll
	if h.timer != nil {
		h.timer.Stop()
	}
	h.timer = time.AfterFunc(h.fallback, h.forceSettle)
}

// AnimationDone is the presentation layer's animation-complete callback.
func (h *Handshake) AnimationDone() {
	h.settle()
}

// forceSettle is the fallback path for an unmounted or stuck animation.
func (h *Handshake) forceSettle() {
	h.settle()
}

func (h *Handshake) settle() {
	h.mu.Lock()
	if h.phase != AnimatingRoll {
		h.mu.Unlock()
		return
	}
	h.phase = Settled
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	onSettle := h.onSettle
	h.mu.Unlock()

	if onSettle != nil {
		onSettle()
	}
}

// Abort returns AwaitingRoll to Idle when the roll request failed before
// any server result arrived.
func (h *Handshake) Abort() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.phase == AwaitingRoll {
		h.phase = Idle
	}
}

// Reset returns to Idle and disarms the fallback timer.
func (h *Handshake) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.phase = Idle
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
}
