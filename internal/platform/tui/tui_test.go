package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/marble-race/internal/core"
	"github.com/vovakirdan/marble-race/internal/registry"
	"github.com/vovakirdan/marble-race/internal/storage"
)

const stubGameID = "tui-stub"

func init() {
	registry.Register(stubGameID, func() registry.Game { return &stubGame{} })
}

// stubGame records what the model feeds it.
type stubGame struct {
	resets int
	cfg    core.RuntimeConfig
	frames []core.InputFrame
	dts    []time.Duration
	state  core.GameState
	hold   time.Duration
}

func (g *stubGame) ID() string                  { return stubGameID }
func (g *stubGame) Title() string               { return "Stub Race" }
func (g *stubGame) State() core.GameState       { return g.state }
func (g *stubGame) HoldDuration() time.Duration { return g.hold }
func (g *stubGame) Render(dst *core.Screen)     { dst.DrawText(0, 0, "stub race") }

func (g *stubGame) Reset(cfg core.RuntimeConfig) {
	g.resets++
	g.cfg = cfg
}

func (g *stubGame) Step(in core.InputFrame, dt time.Duration) core.StepResult {
	g.frames = append(g.frames, in.Clone())
	g.dts = append(g.dts, dt)
	return core.StepResult{State: g.state}
}

func (g *stubGame) lastFrame() core.InputFrame { return g.frames[len(g.frames)-1] }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T, g *stubGame, store *storage.Store, opts Options) Model {
	t.Helper()
	m := NewModel(g, store, core.RuntimeConfig{ScreenW: 40, ScreenH: 10, TickRate: 60, Seed: 5}, opts)
	m.now = func() time.Time { return t0 }
	m.Init()
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestKeyMapperMapKey(t *testing.T) {
	km := NewKeyMapper()
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want core.Action
		quit bool
	}{
		{"up arrow", tea.KeyMsg{Type: tea.KeyUp}, core.ActionForward, false},
		{"w", runes("w"), core.ActionForward, false},
		{"down arrow", tea.KeyMsg{Type: tea.KeyDown}, core.ActionBackward, false},
		{"s", runes("s"), core.ActionBackward, false},
		{"left arrow", tea.KeyMsg{Type: tea.KeyLeft}, core.ActionLeft, false},
		{"a", runes("a"), core.ActionLeft, false},
		{"right arrow", tea.KeyMsg{Type: tea.KeyRight}, core.ActionRight, false},
		{"d", runes("d"), core.ActionRight, false},
		{"space", runes(" "), core.ActionJump, false},
		{"r", runes("r"), core.ActionRestart, false},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}, core.ActionBack, false},
		{"q", runes("q"), core.ActionQuit, true},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit, true},
		{"ctrl+s", tea.KeyMsg{Type: tea.KeyCtrlS}, core.ActionNone, false},
		{"x", runes("x"), core.ActionNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, quit := km.MapKey(tt.msg)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.quit, quit)
		})
	}
}

func TestKeyMapperMenuActions(t *testing.T) {
	km := NewKeyMapper()
	assert.Equal(t, MenuActionUp, km.MapKeyToMenuAction(runes("k")))
	assert.Equal(t, MenuActionDown, km.MapKeyToMenuAction(tea.KeyMsg{Type: tea.KeyDown}))
	assert.Equal(t, MenuActionSelect, km.MapKeyToMenuAction(tea.KeyMsg{Type: tea.KeyEnter}))
	assert.Equal(t, MenuActionScoreboard, km.MapKeyToMenuAction(tea.KeyMsg{Type: tea.KeyTab}))
	assert.Equal(t, MenuActionBack, km.MapKeyToMenuAction(tea.KeyMsg{Type: tea.KeyEsc}))
	assert.Equal(t, MenuActionQuit, km.MapKeyToMenuAction(runes("q")))
	assert.Equal(t, MenuActionNone, km.MapKeyToMenuAction(runes("z")))
}

func TestGameKeyMapHelp(t *testing.T) {
	keys := DefaultGameKeyMap()
	assert.Len(t, keys.ShortHelp(), 4)
	full := keys.FullHelp()
	require.Len(t, full, 2)
	assert.Len(t, full[0], 5)
}

func TestHeldKeys(t *testing.T) {
	h := NewHeldKeys(100 * time.Millisecond)

	h.Press(core.ActionForward, t0)
	h.Press(core.ActionNone, t0)
	assert.True(t, h.Frame(t0.Add(50*time.Millisecond)).Has(core.ActionForward))
	assert.False(t, h.Frame(t0.Add(50*time.Millisecond)).Has(core.ActionNone))

	// Auto-repeat keeps the key held past the first window.
	h.Press(core.ActionForward, t0.Add(80*time.Millisecond))
	assert.True(t, h.Frame(t0.Add(150*time.Millisecond)).Has(core.ActionForward))

	assert.False(t, h.Frame(t0.Add(180*time.Millisecond)).Has(core.ActionForward))
	assert.Empty(t, h.until)

	h.Press(core.ActionJump, t0)
	h.Release()
	assert.False(t, h.Frame(t0).Has(core.ActionJump))
}

func TestHeldKeysHold(t *testing.T) {
	h := NewHeldKeys(0)
	assert.Equal(t, DefaultHoldDuration, h.Hold())

	h.SetHold(-time.Second)
	assert.Equal(t, DefaultHoldDuration, h.Hold())

	h.SetHold(250 * time.Millisecond)
	assert.Equal(t, 250*time.Millisecond, h.Hold())
}

func TestRenderScreen(t *testing.T) {
	scr := core.NewScreen(12, 3)
	scr.DrawText(0, 0, "plain")
	scr.DrawTextColored(0, 1, "red", core.ColorBrightRed)
	scr.DrawTextColored(4, 1, "gray", core.ColorDarkGray)
	scr.SetColored(0, 2, '@', core.Color(200))

	out := RenderScreen(scr)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "plain")
	assert.Contains(t, lines[1], "red")
	assert.Contains(t, lines[1], "gray")
	assert.Contains(t, lines[2], "@")
}

func TestModelInitResetsGame(t *testing.T) {
	g := &stubGame{hold: 300 * time.Millisecond}
	m := newTestModel(t, g, nil, Options{})

	assert.Equal(t, 1, g.resets)
	assert.Equal(t, int64(5), g.cfg.Seed)
	assert.Equal(t, 300*time.Millisecond, m.held.Hold())
}

func TestModelTickUsesRealFrameTime(t *testing.T) {
	g := &stubGame{}
	m := newTestModel(t, g, nil, Options{})

	m, cmd := update(t, m, TickMsg(t0))
	assert.NotNil(t, cmd)
	m, _ = update(t, m, TickMsg(t0.Add(25*time.Millisecond)))
	update(t, m, TickMsg(t0.Add(70*time.Millisecond)))

	assert.Equal(t, []time.Duration{time.Second / 60, 25 * time.Millisecond, 45 * time.Millisecond}, g.dts)
}

func TestModelHeldKeysReachTheGame(t *testing.T) {
	g := &stubGame{hold: 100 * time.Millisecond}
	m := newTestModel(t, g, nil, Options{})

	m, _ = update(t, m, runes("w"))
	m, _ = update(t, m, runes(" "))
	m, _ = update(t, m, TickMsg(t0.Add(10*time.Millisecond)))
	assert.True(t, g.lastFrame().Has(core.ActionForward))
	assert.True(t, g.lastFrame().Has(core.ActionJump))

	m, _ = update(t, m, TickMsg(t0.Add(60*time.Millisecond)))
	assert.True(t, g.lastFrame().Has(core.ActionForward), "still inside the hold window")

	update(t, m, TickMsg(t0.Add(120*time.Millisecond)))
	assert.False(t, g.lastFrame().Has(core.ActionForward))
	assert.False(t, g.lastFrame().Has(core.ActionJump))
}

func TestModelSavesFinishedRunOnce(t *testing.T) {
	store := openStore(t)
	g := &stubGame{}
	m := newTestModel(t, g, store, Options{Player: "ann"})

	g.state = core.GameState{Phase: core.PhaseEnded, Elapsed: 3210 * time.Millisecond, Blocks: 3, Seed: 9, Bumps: 2}
	m, _ = update(t, m, TickMsg(t0))
	m, _ = update(t, m, TickMsg(t0.Add(16*time.Millisecond)))

	runs, err := store.BestRuns(stubGameID, 0, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, storage.Run{
		ID:        runs[0].ID,
		GameID:    stubGameID,
		Blocks:    3,
		Seed:      9,
		Duration:  3210 * time.Millisecond,
		Bumps:     2,
		Player:    "ann",
		CreatedAt: runs[0].CreatedAt,
	}, runs[0])

	// A new course re-arms saving.
	g.state = core.GameState{Phase: core.PhaseReady, Blocks: 3, Seed: 10}
	m, _ = update(t, m, TickMsg(t0.Add(32*time.Millisecond)))
	g.state = core.GameState{Phase: core.PhaseEnded, Elapsed: 4 * time.Second, Blocks: 3, Seed: 10}
	update(t, m, TickMsg(t0.Add(48*time.Millisecond)))

	runs, err = store.BestRuns(stubGameID, 3, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestModelWithoutStore(t *testing.T) {
	g := &stubGame{state: core.GameState{Phase: core.PhaseEnded, Elapsed: time.Second}}
	m := newTestModel(t, g, nil, Options{})

	assert.NotPanics(t, func() {
		m, _ = update(t, m, TickMsg(t0))
	})
	assert.True(t, m.State().Finished())
}

func TestModelOnFrame(t *testing.T) {
	var frames int
	g := &stubGame{}
	m := newTestModel(t, g, nil, Options{OnFrame: func(game registry.Game) {
		assert.Equal(t, stubGameID, game.ID())
		frames++
	}})

	m, _ = update(t, m, TickMsg(t0))
	update(t, m, TickMsg(t0.Add(time.Millisecond)))
	assert.Equal(t, 2, frames)
}

func TestModelResizeKeepsRace(t *testing.T) {
	g := &stubGame{}
	m := newTestModel(t, g, nil, Options{})

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Equal(t, 1, g.resets)
	assert.Equal(t, 100, m.Config().ScreenW)
	assert.Equal(t, 100, m.screen.Width())
	assert.Equal(t, 30, m.screen.Height())
}

func TestModelQuitAndBack(t *testing.T) {
	g := &stubGame{}
	m := newTestModel(t, g, nil, Options{})

	// Standalone play ignores Esc.
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.BackToMenu())

	m, cmd := update(t, m, runes("q"))
	assert.True(t, m.IsQuitting())
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())

	embedded := newTestModel(t, &stubGame{}, nil, Options{Embedded: true})
	embedded, _ = update(t, embedded, tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, embedded.BackToMenu())

	// Ticks stop once the race is left.
	_, cmd = update(t, embedded, TickMsg(t0))
	assert.Nil(t, cmd)
}

func TestModelScreenshot(t *testing.T) {
	dir := t.TempDir()
	g := &stubGame{}
	m := newTestModel(t, g, nil, Options{ScreenshotDir: dir})

	update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})

	matches, err := filepath.Glob(filepath.Join(dir, stubGameID+"_*.txt"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestModelView(t *testing.T) {
	m := newTestModel(t, &stubGame{}, nil, Options{})
	assert.Contains(t, m.View(), "stub race")
}
