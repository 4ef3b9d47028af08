package marble

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/marble-race/internal/config"
	"github.com/vovakirdan/marble-race/internal/core"
	"github.com/vovakirdan/marble-race/internal/registry"
)

func newTestGame(t *testing.T, rc core.RuntimeConfig) (*Game, *fakeClock) {
	t.Helper()
	clk := newFakeClock()
	g := NewWithConfig(config.DefaultMarbleConfig())
	g.SetClock(clk.Now)
	g.Reset(rc)
	require.NotNil(t, g.Simulation())
	return g, clk
}

func TestGameRegistered(t *testing.T) {
	assert.True(t, registry.Exists(GameID))
	g, err := registry.Create(GameID)
	require.NoError(t, err)
	assert.Equal(t, "marble", g.ID())
	assert.Equal(t, "Marble Race", g.Title())
}

func TestGameReset(t *testing.T) {
	g, _ := newTestGame(t, core.RuntimeConfig{Blocks: 4, Seed: 7})

	st := g.State()
	assert.Equal(t, core.PhaseReady, st.Phase)
	assert.Equal(t, 4, st.Blocks)
	assert.Equal(t, int64(7), st.Seed)
	assert.Equal(t, 4, g.Simulation().Level().Course().Count)
}

func TestGameResetDifficulty(t *testing.T) {
	g, _ := newTestGame(t, core.RuntimeConfig{Seed: 1, Difficulty: "hard"})
	assert.Equal(t, 10, g.State().Blocks)

	def := config.DefaultMarbleConfig()
	assert.InDelta(t, def.Obstacles.Spinner.MaxSpeed*1.5, g.Config().Obstacles.Spinner.MaxSpeed, 1e-12)

	// Explicit blocks win over the preset.
	g.Reset(core.RuntimeConfig{Seed: 1, Blocks: 2, Difficulty: "marathon"})
	assert.Equal(t, 2, g.State().Blocks)

	// Unknown names fall back to normal.
	g.Reset(core.RuntimeConfig{Seed: 1, Difficulty: "nightmare"})
	assert.Equal(t, 5, g.State().Blocks)
}

func TestGameStep(t *testing.T) {
	g, clk := newTestGame(t, core.RuntimeConfig{Blocks: 3, Seed: 42})

	res := g.Step(input(core.ActionForward), 16*time.Millisecond)
	assert.Equal(t, core.PhasePlaying, res.State.Phase)

	clk.Advance(750 * time.Millisecond)
	res = g.Step(input(core.ActionForward), 16*time.Millisecond)
	assert.Equal(t, 750*time.Millisecond, res.State.Elapsed)

	assert.True(t, g.Restart())
	assert.Equal(t, core.PhaseReady, g.State().Phase)
}

func TestGameInvalidConfig(t *testing.T) {
	cfg := config.DefaultMarbleConfig()
	cfg.Level.Spacing = 0
	g := NewWithConfig(cfg)
	g.Reset(core.RuntimeConfig{Seed: 3})

	assert.Nil(t, g.Simulation())
	assert.Equal(t, core.PhaseReady, g.State().Phase)
	assert.Equal(t, int64(3), g.State().Seed)
	assert.False(t, g.Restart())

	res := g.Step(input(core.ActionForward), 16*time.Millisecond)
	assert.Equal(t, core.PhaseReady, res.State.Phase)

	scr := core.NewScreen(120, 10)
	g.Render(scr)
	assert.Contains(t, scr.String(), "level.spacing")
}

func TestGameRender(t *testing.T) {
	g, _ := newTestGame(t, core.RuntimeConfig{Blocks: 3, Seed: 42})
	g.Step(input(), 16*time.Millisecond)

	scr := core.NewScreen(80, 24)
	g.Render(scr)

	assert.Contains(t, scr.Row(0), "MARBLE RACE")
	assert.Contains(t, scr.Row(0), "seed 42")
	assert.Contains(t, scr.Row(0), "0.00")
	assert.Contains(t, scr.Row(1), "start")
	assert.Contains(t, scr.Row(23), "[space]")
	assert.Contains(t, scr.String(), "@")
}

func TestGameRenderFinished(t *testing.T) {
	g, clk := newTestGame(t, core.RuntimeConfig{Blocks: 3, Seed: 42})
	g.Step(input(core.ActionForward), 16*time.Millisecond)
	clk.Advance(3210 * time.Millisecond)
	place(g.Simulation(), mgl64.Vec3{0, 0.3, -17})
	g.Step(input(), 16*time.Millisecond)
	require.Equal(t, core.PhaseEnded, g.State().Phase)

	scr := core.NewScreen(80, 24)
	g.Render(scr)
	assert.Contains(t, scr.Row(1), "FINISHED in 3.21s")
}

func TestGameRenderTinyScreen(t *testing.T) {
	g, _ := newTestGame(t, core.RuntimeConfig{Blocks: 3, Seed: 42})
	assert.NotPanics(t, func() {
		g.Render(core.NewScreen(4, 2))
		g.Render(core.NewScreen(1, 1))
	})
}

func TestGameSnapshot(t *testing.T) {
	g, _ := newTestGame(t, core.RuntimeConfig{Blocks: 3, Seed: 42})

	f := g.Snapshot()
	assert.Equal(t, "ready", f.Phase)
	assert.Equal(t, int64(42), f.Seed)
	assert.Equal(t, g.Simulation().Scene().Len(), len(f.Scene.Proxies))

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"phase":"ready"`))
	assert.True(t, strings.Contains(string(data), `"kind":"player"`))
}

func TestClipSegment(t *testing.T) {
	x0, y0, x1, y1, ok := clipSegment(-5, 5, 15, 5, 0, 0, 10, 10)
	require.True(t, ok)
	assert.Equal(t, []float64{0, 5, 10, 5}, []float64{x0, y0, x1, y1})

	_, _, _, _, ok = clipSegment(-5, -5, -1, -1, 0, 0, 10, 10)
	assert.False(t, ok)

	x0, y0, x1, y1, ok = clipSegment(2, 2, 3, 4, 0, 0, 10, 10)
	require.True(t, ok)
	assert.Equal(t, []float64{2, 2, 3, 4}, []float64{x0, y0, x1, y1})
}

func TestSlopeRune(t *testing.T) {
	assert.Equal(t, '-', slopeRune(10, 0))
	assert.Equal(t, '|', slopeRune(0, 5))
	assert.Equal(t, '\\', slopeRune(4, 2))
	assert.Equal(t, '/', slopeRune(4, -2))
}
