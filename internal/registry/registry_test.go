package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/marble-race/internal/core"
)

type stubGame struct {
	steps int
	state core.GameState
}

func (g *stubGame) ID() string                   { return "stub" }
func (g *stubGame) Title() string                { return "Stub Game" }
func (g *stubGame) Reset(cfg core.RuntimeConfig) { g.state = core.GameState{Seed: cfg.Seed} }
func (g *stubGame) Render(dst *core.Screen)      { dst.DrawText(0, 0, "stub") }
func (g *stubGame) State() core.GameState        { return g.state }

func (g *stubGame) Step(in core.InputFrame, dt time.Duration) core.StepResult {
	g.steps++
	return core.StepResult{State: g.state}
}

func TestRegisterAndCreate(t *testing.T) {
	Register("stub", func() Game { return &stubGame{} })

	assert.True(t, Exists("stub"))
	assert.False(t, Exists("missing"))

	g, err := Create("stub")
	require.NoError(t, err)
	assert.Equal(t, "Stub Game", g.Title())

	g.Reset(core.RuntimeConfig{Seed: 9})
	res := g.Step(core.NewInputFrame(), 16*time.Millisecond)
	assert.Equal(t, int64(9), res.State.Seed)

	// Every Create returns a fresh instance.
	other, err := Create("stub")
	require.NoError(t, err)
	assert.NotSame(t, g, other)

	var found bool
	for _, info := range List() {
		if info.ID == "stub" {
			found = true
			assert.Equal(t, "Stub Game", info.Title)
		}
	}
	assert.True(t, found)

	info, ok := Info("stub")
	assert.True(t, ok)
	assert.Equal(t, GameInfo{ID: "stub", Title: "Stub Game"}, info)

	assert.Panics(t, func() {
		Register("stub", func() Game { return &stubGame{} })
	})
	assert.Panics(t, func() {
		Register("", func() Game { return &stubGame{} })
	})
}

func TestCreateUnknown(t *testing.T) {
	_, err := Create("missing")
	assert.ErrorIs(t, err, ErrUnknownGame)

	_, ok := Info("missing")
	assert.False(t, ok)
}
