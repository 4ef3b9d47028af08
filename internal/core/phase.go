package core

// Phase is the discrete gameplay state of a run.
type Phase int

const (
	PhaseReady   Phase = iota // Waiting for the first input at the start line
	PhasePlaying              // Timer running
	PhaseEnded                // Finish line crossed
)

// String returns the lower-case phase name.
func (p Phase) String() string {
	switch p {
	case PhaseReady:
		return "ready"
	case PhasePlaying:
		return "playing"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}
