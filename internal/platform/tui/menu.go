package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/marble-race/internal/config"
	"github.com/vovakirdan/marble-race/internal/core"
	"github.com/vovakirdan/marble-race/internal/storage"
)

const menuTitle = "M A R B L E   R A C E"

// MenuItem is one course length offered by the picker.
type MenuItem struct {
	Difficulty config.DifficultyPreset
	Title      string
	Blocks     int
	Best       time.Duration // Zero when no run is recorded
}

// menuOutcome is how the picker was left.
type menuOutcome int

const (
	menuOpen menuOutcome = iota
	menuRace
	menuScoreboard
	menuQuit
)

// MenuModel is the Bubble Tea model for the course picker.
type MenuModel struct {
	items   []MenuItem
	cursor  int
	config  core.RuntimeConfig
	keys    *KeyMapper
	help    help.Model
	outcome menuOutcome
}

// NewMenuModel lists the difficulty presets with the best recorded time of
// each course length. A nil store shows no times.
func NewMenuModel(gameID string, store *storage.Store, cfg core.RuntimeConfig) MenuModel {
	items := make([]MenuItem, 0, len(config.Presets))
	cursor := 0
	for i, p := range config.Presets {
		item := MenuItem{
			Difficulty: p,
			Title:      strings.ToUpper(string(p[:1])) + string(p[1:]),
			Blocks:     config.BlocksForPreset(p),
		}
		if store != nil {
			if best, ok, err := store.BestTime(gameID, item.Blocks); err == nil && ok {
				item.Best = best
			}
		}
		if p == config.DifficultyNormal {
			cursor = i
		}
		items = append(items, item)
	}

	h := help.New()
	h.ShowAll = true
	h.Width = cfg.ScreenW

	return MenuModel{
		items:  items,
		cursor: cursor,
		config: cfg,
		keys:   NewKeyMapper(),
		help:   h,
	}
}

func (m MenuModel) Init() tea.Cmd { return nil }

// Update moves the cursor and ends the program once the user decides.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.config.ScreenW, m.config.ScreenH = msg.Width, msg.Height
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keys.MapKeyToMenuAction(msg) {
	case MenuActionUp:
		m.cursor = max(m.cursor-1, 0)
	case MenuActionDown:
		m.cursor = min(m.cursor+1, len(m.items)-1)
	case MenuActionSelect:
		if len(m.items) > 0 {
			return m.leave(menuRace)
		}
	case MenuActionScoreboard:
		return m.leave(menuScoreboard)
	case MenuActionQuit, MenuActionBack:
		return m.leave(menuQuit)
	}
	return m, nil
}

func (m MenuModel) leave(o menuOutcome) (tea.Model, tea.Cmd) {
	m.outcome = o
	return m, tea.Quit
}

// View renders the picker.
func (m MenuModel) View() string {
	if m.outcome == menuQuit {
		return ""
	}
	w := m.config.ScreenW

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render(menuTitle), w))
	b.WriteString("\n\n")
	b.WriteString(centerText("Pick a course", w))
	b.WriteString("\n\n")

	for i, item := range m.items {
		best := "--"
		if item.Best > 0 {
			best = fmt.Sprintf("%.2fs", item.Best.Seconds())
		}
		line := fmt.Sprintf("%-9s %-26s best %s", item.Title, item.Difficulty.Description(), best)
		if i == m.cursor {
			line = activeStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(centerText(line, w))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText(dimStyle.Render("↑/↓ choose  |  enter race  |  tab leaderboard  |  q quit"), w))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render(m.help.View(m.keys.Keys())))
	b.WriteString("\n")
	return b.String()
}

// Selected returns the chosen course, or nil before a choice.
func (m MenuModel) Selected() *MenuItem {
	if m.outcome != menuRace {
		return nil
	}
	item := m.items[m.cursor]
	return &item
}

// IsQuitting reports whether the user quit from the picker.
func (m MenuModel) IsQuitting() bool { return m.outcome == menuQuit }

// WantsScoreboard reports whether the user asked for the leaderboard.
func (m MenuModel) WantsScoreboard() bool { return m.outcome == menuScoreboard }

// Config returns the runtime config, including the latest window size.
func (m MenuModel) Config() core.RuntimeConfig { return m.config }

// MenuResult is what the picker decided.
type MenuResult struct {
	Difficulty      config.DifficultyPreset
	Blocks          int
	Config          core.RuntimeConfig
	WantsScoreboard bool
	Quit            bool
}

func (m MenuModel) result() MenuResult {
	res := MenuResult{Config: m.config}
	switch m.outcome {
	case menuScoreboard:
		res.WantsScoreboard = true
	case menuRace:
		item := m.items[m.cursor]
		res.Difficulty = item.Difficulty
		res.Blocks = item.Blocks
		res.Config.Difficulty = string(item.Difficulty)
	default:
		res.Quit = true
	}
	return res
}

// RunMenu shows the picker and returns the user's decision.
func RunMenu(gameID string, store *storage.Store, cfg core.RuntimeConfig) (MenuResult, error) {
	final, err := tea.NewProgram(NewMenuModel(gameID, store, cfg), tea.WithAltScreen()).Run()
	if err != nil {
		return MenuResult{Config: cfg}, err
	}
	m, ok := final.(MenuModel)
	if !ok {
		return MenuResult{Config: cfg, Quit: true}, nil
	}
	return m.result(), nil
}
