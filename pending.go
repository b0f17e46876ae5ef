package videofx

import (
	"sync"
	"time"
)

// pendingGate turns the raw per-operation pending flag into a debounced
// UI-facing signal: true is only emitted if an operation outlives the
// reveal delay, and false is emitted the instant the operation completes,
// regardless of the timer. Fast operations emit nothing at all.
type pendingGate struct {
	mu       sync.Mutex
	delay    time.Duration
	pending  bool
	revealed bool
	timer    *time.Timer
	ch       chan bool
}

func newPendingGate(delay time.Duration) *pendingGate {
	return &pendingGate{
		delay: delay,
		ch:    make(chan bool, 16),
	}
}

// signal returns the debounced boolean stream. Emissions are dropped if
// the consumer falls more than a buffer behind; the signal is advisory UI
// state, not a ledger.
func (g *pendingGate) signal() <-chan bool {
	return g.ch
}

// isPending returns the raw pending flag, which flips synchronously with
// the operation.
func (g *pendingGate) isPending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending
}

// begin marks an operation as in flight and arms the reveal timer.
func (g *pendingGate) begin() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.pending = true
	if g.timer != nil {
		g.timer.Stop()
	}
	g.timer = time.AfterFunc(g.delay, g.reveal)
}

func (g *pendingGate) reveal() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.pending || g.revealed {
		return
	}
	g.revealed = true
	g.emit(true)
}

// end marks the operation complete. If the pending state was revealed, the
// matching false is emitted immediately.
func (g *pendingGate) end() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.pending = false
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	if g.revealed {
		g.revealed = false
		g.emit(false)
	}
}

// emit is non-blocking; called with g.mu held.
func (g *pendingGate) emit(v bool) {
	select {
	case g.ch <- v:
	default:
	}
}
