package core

// Action is a semantic control, independent of the key that produced it.
type Action uint8

const (
	ActionNone     Action = iota
	ActionForward         // W, Up arrow - roll away from the camera
	ActionBackward        // S, Down arrow - roll toward the camera
	ActionLeft            // A, Left arrow
	ActionRight           // D, Right arrow
	ActionJump            // Space
	ActionRestart         // R - new course
	ActionBack            // Esc - back to the course picker
	ActionQuit            // Q, Ctrl+C

	actionCount
)

var actionNames = [actionCount]string{
	"None", "Forward", "Backward", "Left", "Right", "Jump", "Restart", "Back", "Quit",
}

// String returns the action name.
func (a Action) String() string {
	if a < actionCount {
		return actionNames[a]
	}
	return "Unknown"
}

// GameplayActions lists the actions that drive the marble. Any of them
// starting this frame counts as the first input of a run.
var GameplayActions = []Action{ActionForward, ActionBackward, ActionLeft, ActionRight, ActionJump}

// InputFrame is the set of actions held during one frame. The zero value is
// empty and frames are plain values, so copies never alias.
type InputFrame struct {
	held uint32
}

// NewInputFrame returns a frame holding the given actions.
func NewInputFrame(actions ...Action) InputFrame {
	var f InputFrame
	for _, a := range actions {
		f.Set(a)
	}
	return f
}

// Set marks a as held. ActionNone and unknown actions are ignored.
func (f *InputFrame) Set(a Action) {
	if a != ActionNone && a < actionCount {
		f.held |= 1 << a
	}
}

// Has reports whether a is held.
func (f InputFrame) Has(a Action) bool {
	return a < actionCount && f.held&(1<<a) != 0
}

// HasAny reports whether any of the actions is held.
func (f InputFrame) HasAny(actions ...Action) bool {
	for _, a := range actions {
		if f.Has(a) {
			return true
		}
	}
	return false
}

// Empty reports whether nothing is held.
func (f InputFrame) Empty() bool { return f.held == 0 }

// Pressed returns the actions held in f but not in prev: the rising edges.
func (f InputFrame) Pressed(prev InputFrame) InputFrame {
	return InputFrame{held: f.held &^ prev.held}
}

// Clear releases every action.
func (f *InputFrame) Clear() { f.held = 0 }

// Clone returns a copy of f.
func (f InputFrame) Clone() InputFrame { return f }
