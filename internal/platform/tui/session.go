package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/marble-race/internal/core"
	"github.com/vovakirdan/marble-race/internal/registry"
	"github.com/vovakirdan/marble-race/internal/storage"
)

// sessionScreen is the screen a session is showing.
type sessionScreen int

const (
	screenMenu sessionScreen = iota
	screenScoreboard
	screenGame
)

// SessionModel is one SSH connection. It cycles picker, race, picker, with
// the leaderboard reachable from the picker, all inside a single program.
type SessionModel struct {
	gameID   string
	store    *storage.Store
	config   core.RuntimeConfig
	username string
	logger   *log.Logger
	races    int

	screen     sessionScreen
	menu       MenuModel
	scoreboard ScoreboardModel
	race       Model
	quitting   bool
}

func NewSessionModel(gameID string, store *storage.Store, cfg core.RuntimeConfig, username string, logger *log.Logger) SessionModel {
	return SessionModel{
		gameID:   gameID,
		store:    store,
		config:   cfg,
		username: username,
		logger:   logger,
		menu:     NewMenuModel(gameID, store, cfg),
	}
}

func (m SessionModel) Init() tea.Cmd { return m.menu.Init() }

// Update routes msg to the active screen. Window sizes are remembered so
// the next screen opens at the current size.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW, m.config.ScreenH = size.Width, size.Height
	}

	switch m.screen {
	case screenGame:
		return m.updateRace(msg)
	case screenScoreboard:
		return m.updateScoreboard(msg)
	default:
		return m.updateMenu(msg)
	}
}

func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.menu.Update(msg)
	m.menu = next.(MenuModel)

	switch {
	case m.menu.IsQuitting():
		return m.quit()
	case m.menu.WantsScoreboard():
		m.screen = screenScoreboard
		m.scoreboard = NewScoreboardModel(m.gameID, m.store, m.config.ScreenW, m.config.ScreenH)
		return m, m.scoreboard.Init()
	case m.menu.Selected() != nil:
		return m.startRace()
	}
	return m, filterQuit(cmd)
}

// startRace creates a fresh game on a new seed for the picked course.
func (m SessionModel) startRace() (tea.Model, tea.Cmd) {
	game, err := registry.Create(m.gameID)
	if err != nil {
		m.logger.Error("cannot create game", "err", err)
		return m.quit()
	}

	cfg := m.menu.result().Config
	cfg.ScreenW, cfg.ScreenH = m.config.ScreenW, m.config.ScreenH
	cfg.Seed = time.Now().UnixNano()

	m.races++
	m.logger.Info("race started", "difficulty", cfg.Difficulty, "race", m.races)
	m.race = NewModel(game, m.store, cfg, Options{
		Player:   m.username,
		Logger:   m.logger,
		Embedded: true,
	})
	m.screen = screenGame
	return m, m.race.Init()
}

func (m SessionModel) updateScoreboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.scoreboard.Update(msg)
	m.scoreboard = next.(ScoreboardModel)

	switch {
	case m.scoreboard.IsQuitting():
		return m.quit()
	case m.scoreboard.IsGoingBack():
		return m.backToMenu()
	}
	return m, filterQuit(cmd)
}

func (m SessionModel) updateRace(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.race.Update(msg)
	m.race = next.(Model)

	switch {
	case m.race.IsQuitting():
		return m.quit()
	case m.race.BackToMenu():
		return m.backToMenu()
	}
	return m, cmd
}

// backToMenu rebuilds the picker so it shows fresh best times.
func (m SessionModel) backToMenu() (tea.Model, tea.Cmd) {
	m.screen = screenMenu
	m.menu = NewMenuModel(m.gameID, m.store, m.config)
	return m, m.menu.Init()
}

func (m SessionModel) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.logger.Info("session closing", "races", m.races)
	return m, tea.Quit
}

// filterQuit drops tea.Quit from cmd. Sub-models quit to hand back a result
// when run standalone; inside a session that is only a screen change.
func filterQuit(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		if msg := cmd(); msg != nil {
			if _, ok := msg.(tea.QuitMsg); !ok {
				return msg
			}
		}
		return nil
	}
}

func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}
	switch m.screen {
	case screenGame:
		return m.race.View()
	case screenScoreboard:
		return m.scoreboard.View()
	default:
		return m.menu.View()
	}
}
