package tui

import (
	"time"

	"github.com/vovakirdan/marble-race/internal/core"
)

// DefaultHoldDuration is used when the game does not configure one.
const DefaultHoldDuration = 180 * time.Millisecond

// HeldKeys turns key-press events into held actions.
//
// Terminals report presses (and auto-repeat) but never releases, so an
// action counts as held until hold has passed since its latest press.
// Auto-repeat refreshes the deadline, which keeps a held key continuous and
// gives edge-triggered actions (jump, restart) a single rising edge.
type HeldKeys struct {
	hold  time.Duration
	until map[core.Action]time.Time
}

// NewHeldKeys creates a tracker. A non-positive hold uses DefaultHoldDuration.
func NewHeldKeys(hold time.Duration) *HeldKeys {
	if hold <= 0 {
		hold = DefaultHoldDuration
	}
	return &HeldKeys{
		hold:  hold,
		until: make(map[core.Action]time.Time),
	}
}

// Hold returns the hold window.
func (h *HeldKeys) Hold() time.Duration { return h.hold }

// SetHold changes the hold window. A non-positive hold is ignored.
func (h *HeldKeys) SetHold(hold time.Duration) {
	if hold > 0 {
		h.hold = hold
	}
}

// Press records a press of a at now.
func (h *HeldKeys) Press(a core.Action, now time.Time) {
	if a == core.ActionNone {
		return
	}
	h.until[a] = now.Add(h.hold)
}

// Frame returns the actions held at now and forgets the expired ones.
func (h *HeldKeys) Frame(now time.Time) core.InputFrame {
	frame := core.NewInputFrame()
	for a, deadline := range h.until {
		if now.Before(deadline) {
			frame.Set(a)
			continue
		}
		delete(h.until, a)
	}
	return frame
}

// Release forgets every held action.
func (h *HeldKeys) Release() {
	clear(h.until)
}
