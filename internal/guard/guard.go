// Package guard blocks navigation away from a workflow with unsaved
// changes until the user confirms.
package guard

import (
	"path"
	"strings"
	"sync"
)

// State is the guard's confirmation state.
type State int

const (
	Idle State = iota
	PendingConfirmation
	Proceeding
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PendingConfirmation:
		return "pending"
	case Proceeding:
		return "proceeding"
	default:
		return "unknown"
	}
}

// Decision is the outcome of a navigation attempt.
type Decision int

const (
	// Allowed means the caller may navigate now.
	Allowed Decision = iota
	// Prompt means navigation was held and a confirmation should be shown.
	Prompt
	// Replaced means a prompt is already showing; its target was updated.
	Replaced
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case Prompt:
		return "prompt"
	case Replaced:
		return "replaced"
	default:
		return "unknown"
	}
}

// Guard tracks one pending navigation at a time.
type Guard struct {
	mu       sync.Mutex
	dirty    func() bool
	disarmed bool
	state    State
	pending  string
}

// New creates a guard that blocks while dirty returns true.
func New(dirty func() bool) *Guard {
	if dirty == nil {
		dirty = func() bool { return false }
	}
	return &Guard{dirty: dirty}
}

// ShouldBlock reports whether navigation away is currently held.
func (g *Guard) ShouldBlock() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.shouldBlock()
}

func (g *Guard) shouldBlock() bool {
	return !g.disarmed && g.dirty()
}

// Navigate asks to move from one location to another.
func (g *Guard) Navigate(from, to string) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == Proceeding {
		if samePath(to, g.pending) {
			g.state = Idle
			g.pending = ""
			return Allowed
		}
		g.state = Idle
		g.pending = ""
	}

	if samePath(from, to) || !g.shouldBlock() {
		return Allowed
	}

	switch g.state {
	case PendingConfirmation:
		g.pending = to
		return Replaced
	default:
		g.state = PendingConfirmation
		g.pending = to
		return Prompt
	}
}

// Confirm accepts the pending navigation and returns its target. The
// next Navigate to that target is allowed.
func (g *Guard) Confirm() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != PendingConfirmation {
		return "", false
	}
	g.state = Proceeding
	return g.pending, true
}

// Cancel discards the pending navigation.
func (g *Guard) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == PendingConfirmation {
		g.state = Idle
		g.pending = ""
	}
}

// Settle returns to Idle once a confirmed navigation has happened.
func (g *Guard) Settle() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = Idle
	g.pending = ""
}

// BeforeUnload reports whether closing the tab must be confirmed.
func (g *Guard) BeforeUnload() bool {
	return g.ShouldBlock()
}

// Disarm stops the guard from blocking regardless of dirtiness.
func (g *Guard) Disarm() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.disarmed = true
	g.state = Idle
	g.pending = ""
}

// Arm re-enables blocking.
func (g *Guard) Arm() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.disarmed = false
}

// State returns the current state and pending target.
func (g *Guard) State() (State, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state, g.pending
}

// samePath compares logical locations, ignoring query strings and
// trailing slashes.
func samePath(a, b string) bool {
	return clean(a) == clean(b)
}

func clean(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "/"
	}
	return path.Clean("/" + p)
}
