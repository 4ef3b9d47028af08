package marble

import (
	"math/rand"
	"time"

	"github.com/vovakirdan/marble-race/internal/core"
)

// PhaseChange describes one transition. Seed is the course seed after it.
type PhaseChange struct {
	From core.Phase
	To   core.Phase
	Seed int64
}

type phaseObserver struct {
	id int
	fn func(PhaseChange)
}

// PhaseMachine tracks ready/playing/ended for a run. Requests that do not
// match an allowed transition are ignored.
//
//	Ready   --Start-->   Playing  (start time recorded)
//	Playing --End-->     Ended    (end time recorded)
//	Playing --Fall-->    Ready    (new seed)
//	Playing,Ended --Restart--> Ready (new seed)
type PhaseMachine struct {
	phase  core.Phase
	start  time.Time
	end    time.Time
	blocks int
	seed   int64

	now       func() time.Time
	rng       *rand.Rand
	observers []phaseObserver
	nextID    int
}

// NewPhaseMachine starts in Ready with the given course. now supplies
// timestamps; nil means time.Now.
func NewPhaseMachine(blocks int, seed int64, now func() time.Time) *PhaseMachine {
	if now == nil {
		now = time.Now
	}
	return &PhaseMachine{
		phase:  core.PhaseReady,
		blocks: blocks,
		seed:   seed,
		now:    now,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Phase returns the current phase.
func (m *PhaseMachine) Phase() core.Phase { return m.phase }

// Seed returns the current course seed.
func (m *PhaseMachine) Seed() int64 { return m.seed }

// Blocks returns the obstacle count of the current course.
func (m *PhaseMachine) Blocks() int { return m.blocks }

// StartTime returns when the current run started (zero in Ready).
func (m *PhaseMachine) StartTime() time.Time { return m.start }

// EndTime returns when the current run finished (zero unless Ended).
func (m *PhaseMachine) EndTime() time.Time { return m.end }

// Elapsed returns the run time: end (or now) minus start. Zero in Ready.
func (m *PhaseMachine) Elapsed() time.Duration {
	switch m.phase {
	case core.PhasePlaying:
		return m.now().Sub(m.start)
	case core.PhaseEnded:
		return m.end.Sub(m.start)
	default:
		return 0
	}
}

// Start begins the run on the first input.
func (m *PhaseMachine) Start() bool {
	if m.phase != core.PhaseReady {
		return false
	}
	m.start = m.now()
	m.end = time.Time{}
	m.set(core.PhasePlaying)
	return true
}

// End finishes the run when the marble crosses the finish line.
func (m *PhaseMachine) End() bool {
	if m.phase != core.PhasePlaying {
		return false
	}
	m.end = m.now()
	m.set(core.PhaseEnded)
	return true
}

// Fall sends the marble back to the start with a fresh course.
func (m *PhaseMachine) Fall() bool {
	if m.phase != core.PhasePlaying {
		return false
	}
	m.reset()
	return true
}

// Restart abandons or closes the run and draws a fresh course.
func (m *PhaseMachine) Restart() bool {
	if m.phase != core.PhasePlaying && m.phase != core.PhaseEnded {
		return false
	}
	m.reset()
	return true
}

func (m *PhaseMachine) reset() {
	next := m.rng.Int63()
	for next == m.seed {
		next = m.rng.Int63()
	}
	m.seed = next
	m.start = time.Time{}
	m.end = time.Time{}
	m.set(core.PhaseReady)
}

func (m *PhaseMachine) set(to core.Phase) {
	change := PhaseChange{From: m.phase, To: to, Seed: m.seed}
	m.phase = to
	// Copy so observers may unsubscribe while being notified.
	obs := append([]phaseObserver(nil), m.observers...)
	for _, o := range obs {
		o.fn(change)
	}
}

// Subscribe registers fn to run after every transition. The returned func
// removes it.
func (m *PhaseMachine) Subscribe(fn func(PhaseChange)) (unsubscribe func()) {
	m.nextID++
	id := m.nextID
	m.observers = append(m.observers, phaseObserver{id: id, fn: fn})
	return func() {
		for i, o := range m.observers {
			if o.id == id {
				m.observers = append(m.observers[:i:i], m.observers[i+1:]...)
				return
			}
		}
	}
}
