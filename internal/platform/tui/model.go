package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/marble-race/internal/core"
	"github.com/vovakirdan/marble-race/internal/registry"
	"github.com/vovakirdan/marble-race/internal/storage"
)

// Options carries the optional collaborators of a Model.
type Options struct {
	// Player is recorded with every saved run.
	Player string

	// Logger receives run and storage events. Nil discards them.
	Logger *log.Logger

	// OnFrame is called after every simulated frame, e.g. to publish the
	// scene to spectators. It must not block.
	OnFrame func(registry.Game)

	// Embedded makes Esc request a return to the course picker instead of
	// being ignored. Used by SSH sessions.
	Embedded bool

	// ScreenshotDir overrides ~/.marble/screenshots.
	ScreenshotDir string
}

// loggerSetter is implemented by games that log.
type loggerSetter interface {
	SetLogger(*log.Logger)
}

// holdConfigurer is implemented by games that configure the key hold window.
type holdConfigurer interface {
	HoldDuration() time.Duration
}

// Model is the Bubble Tea model for running a race.
type Model struct {
	game      registry.Game
	screen    *core.Screen
	store     *storage.Store
	config    core.RuntimeConfig
	opts      Options
	logger    *log.Logger
	keys      *KeyMapper
	held      *HeldKeys
	now       func() time.Time
	gameState core.GameState
	lastTick  time.Time
	quitting  bool
	back      bool
	runSaved  bool // Whether the finished run has been saved
}

// NewModel creates a new Bubble Tea model for the given game.
func NewModel(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, opts Options) Model {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = defaultTickRate
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if ls, ok := game.(loggerSetter); ok {
		ls.SetLogger(logger)
	}

	return Model{
		game:   game,
		screen: core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		store:  store,
		config: cfg,
		opts:   opts,
		logger: logger,
		keys:   NewKeyMapper(),
		held:   NewHeldKeys(0),
		now:    time.Now,
	}
}

// Init initializes the model and starts the game.
func (m Model) Init() tea.Cmd {
	m.start()
	return tickCmd(m.config.TickRate)
}

// start resets the game. The hold window is read afterwards because games
// load their config on Reset.
func (m Model) start() {
	m.game.Reset(m.config)
	if hc, ok := m.game.(holdConfigurer); ok {
		m.held.SetHold(hc.HoldDuration())
	}
	m.held.Release()
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick(time.Time(msg))
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, isQuit := m.keys.MapKey(msg)
	if isQuit {
		m.quitting = true
		return m, tea.Quit
	}

	switch action {
	case core.ActionNone:
		if key.Matches(msg, m.keys.Keys().Screenshot) {
			m.saveScreenshot()
		}
	case core.ActionBack:
		if m.opts.Embedded {
			m.back = true
		}
	default:
		m.held.Press(action, m.now())
	}

	return m, nil
}

// handleResize resizes the frame buffer. The race keeps running.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)
	return m, nil
}

// handleTick advances the game by the real time since the previous tick.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	if m.quitting || m.back {
		return m, nil
	}

	dt := frameInterval(m.config.TickRate)
	if !m.lastTick.IsZero() {
		dt = now.Sub(m.lastTick)
	}
	m.lastTick = now

	result := m.game.Step(m.held.Frame(now), dt)
	m.gameState = result.State
	m.recordRun()

	if m.opts.OnFrame != nil {
		m.opts.OnFrame(m.game)
	}

	return m, tickCmd(m.config.TickRate)
}

// recordRun saves a finished run once. Leaving the Ended phase re-arms it.
func (m *Model) recordRun() {
	if !m.gameState.Finished() {
		m.runSaved = false
		return
	}
	if m.runSaved {
		return
	}
	m.runSaved = true

	st := m.gameState
	m.logger.Info("run finished",
		"blocks", st.Blocks,
		"seed", st.Seed,
		"time", st.Elapsed.Round(time.Millisecond),
		"bumps", st.Bumps,
	)
	if m.store == nil {
		return
	}
	_, err := m.store.SaveRun(storage.Run{
		GameID:   m.game.ID(),
		Blocks:   st.Blocks,
		Seed:     st.Seed,
		Duration: st.Elapsed,
		Bumps:    st.Bumps,
		Player:   m.opts.Player,
	})
	if err != nil {
		// Best-effort save, the race continues regardless
		m.logger.Warn("could not save run", "err", err)
	}
}

// saveScreenshot saves the current screen to a text file.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	dir := m.opts.ScreenshotDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			m.logger.Warn("cannot resolve screenshot directory", "err", err)
			return
		}
		dir = filepath.Join(home, ".marble", "screenshots")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.logger.Warn("cannot create screenshot directory", "dir", dir, "err", err)
		return
	}

	timestamp := m.now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.logger.Warn("cannot save screenshot", "path", path, "err", err)
		return
	}
	m.logger.Info("screenshot saved", "path", path)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting || m.back {
		return ""
	}

	m.game.Render(m.screen)
	return RenderScreen(m.screen)
}

// State returns the game state after the latest tick.
func (m Model) State() core.GameState {
	return m.gameState
}

// IsQuitting returns true if the user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if the user asked for the course picker.
func (m Model) BackToMenu() bool {
	return m.back
}

// Config returns the runtime config, including the latest window size.
func (m Model) Config() core.RuntimeConfig {
	return m.config
}

// Run starts the Bubble Tea program with the given model.
func Run(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, opts Options) error {
	model := NewModel(game, store, cfg, opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	_, err := p.Run()
	return err
}
