package marble

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/marble-race/internal/core"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestPhaseMachineStartsReady(t *testing.T) {
	m := NewPhaseMachine(3, 42, newFakeClock().Now)

	assert.Equal(t, core.PhaseReady, m.Phase())
	assert.Equal(t, int64(42), m.Seed())
	assert.Equal(t, 3, m.Blocks())
	assert.Zero(t, m.Elapsed())
	assert.True(t, m.StartTime().IsZero())
}

func TestPhaseMachineRun(t *testing.T) {
	clk := newFakeClock()
	m := NewPhaseMachine(3, 42, clk.Now)

	require.True(t, m.Start())
	assert.Equal(t, core.PhasePlaying, m.Phase())
	assert.Equal(t, clk.Now(), m.StartTime())
	assert.False(t, m.Start(), "start while playing")

	clk.Advance(1500 * time.Millisecond)
	assert.Equal(t, 1500*time.Millisecond, m.Elapsed())

	require.True(t, m.End())
	assert.Equal(t, core.PhaseEnded, m.Phase())
	assert.Equal(t, clk.Now(), m.EndTime())

	// The result is frozen once the run ends.
	clk.Advance(time.Minute)
	assert.Equal(t, 1500*time.Millisecond, m.Elapsed())
	assert.False(t, m.End())
	assert.False(t, m.Fall())
	assert.False(t, m.Start())
	assert.Equal(t, core.PhaseEnded, m.Phase())
	assert.Equal(t, int64(42), m.Seed())
}

func TestPhaseMachineGuards(t *testing.T) {
	m := NewPhaseMachine(3, 42, newFakeClock().Now)

	assert.False(t, m.Restart(), "restart in ready")
	assert.False(t, m.End(), "end in ready")
	assert.False(t, m.Fall(), "fall in ready")
	assert.Equal(t, core.PhaseReady, m.Phase())
	assert.Equal(t, int64(42), m.Seed())
}

func TestPhaseMachineFallReseeds(t *testing.T) {
	m := NewPhaseMachine(3, 42, newFakeClock().Now)
	m.Start()

	require.True(t, m.Fall())
	assert.Equal(t, core.PhaseReady, m.Phase())
	assert.NotEqual(t, int64(42), m.Seed())
	assert.Zero(t, m.Elapsed())
	assert.True(t, m.StartTime().IsZero())
	assert.Equal(t, 3, m.Blocks())
}

func TestPhaseMachineRestart(t *testing.T) {
	m := NewPhaseMachine(3, 42, newFakeClock().Now)

	m.Start()
	require.True(t, m.Restart(), "restart while playing")
	first := m.Seed()
	assert.NotEqual(t, int64(42), first)
	assert.Equal(t, core.PhaseReady, m.Phase())

	m.Start()
	m.End()
	require.True(t, m.Restart(), "restart when ended")
	assert.NotEqual(t, first, m.Seed())
	assert.Equal(t, core.PhaseReady, m.Phase())
	assert.True(t, m.EndTime().IsZero())
}

func TestPhaseMachineSeedsReproducible(t *testing.T) {
	a := NewPhaseMachine(3, 7, newFakeClock().Now)
	b := NewPhaseMachine(3, 7, newFakeClock().Now)
	for i := 0; i < 5; i++ {
		a.Start()
		b.Start()
		a.Fall()
		b.Fall()
		assert.Equal(t, a.Seed(), b.Seed())
	}
}

func TestPhaseMachineSubscribe(t *testing.T) {
	m := NewPhaseMachine(3, 42, newFakeClock().Now)

	var got []PhaseChange
	unsubscribe := m.Subscribe(func(c PhaseChange) { got = append(got, c) })

	m.Start()
	m.End()
	m.Restart()
	require.Len(t, got, 3)
	assert.Equal(t, PhaseChange{From: core.PhaseReady, To: core.PhasePlaying, Seed: 42}, got[0])
	assert.Equal(t, PhaseChange{From: core.PhasePlaying, To: core.PhaseEnded, Seed: 42}, got[1])
	assert.Equal(t, core.PhaseEnded, got[2].From)
	assert.Equal(t, core.PhaseReady, got[2].To)
	assert.Equal(t, m.Seed(), got[2].Seed)

	unsubscribe()
	m.Start()
	assert.Len(t, got, 3)
}

func TestPhaseMachineObserverSeesNewPhase(t *testing.T) {
	clk := newFakeClock()
	m := NewPhaseMachine(3, 42, clk.Now)

	var elapsed time.Duration
	m.Subscribe(func(c PhaseChange) {
		if c.To == core.PhaseEnded {
			elapsed = m.Elapsed()
		}
	})
	m.Start()
	clk.Advance(2 * time.Second)
	m.End()
	assert.Equal(t, 2*time.Second, elapsed)
}
