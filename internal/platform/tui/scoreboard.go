package tui

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/marble-race/internal/storage"
)

const (
	minWidthForSidebar = 80 // Narrower windows show the course as a tab line
	sidebarWidth       = 20
	maxRuns            = 100
)

// ScoreboardKeyMap holds the leaderboard bindings.
type ScoreboardKeyMap struct {
	Up         key.Binding
	Down       key.Binding
	NextCourse key.Binding
	PrevCourse key.Binding
	Back       key.Binding
	Quit       key.Binding
}

func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextCourse, k.PrevCourse, k.Back, k.Quit}
}

func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, k.ShortHelp()}
}

// DefaultScoreboardKeyMap returns the leaderboard bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll down")),
		NextCourse: key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab/→", "next course")),
		PrevCourse: key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("S-tab/←", "prev course")),
		Back:       key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc", "back")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// courseTab is one leaderboard page. Blocks 0 lists every course length.
type courseTab struct {
	Blocks int
	Title  string
	Stats  storage.RunStats
}

// summary is the one-line stats footer of the page.
func (c courseTab) summary() string {
	if c.Stats.Runs == 0 {
		return ""
	}
	return fmt.Sprintf("%d runs  |  best %.2fs  |  average %.2fs  |  %d bumps",
		c.Stats.Runs, c.Stats.BestTime.Seconds(), c.Stats.AvgTime.Seconds(), c.Stats.TotalBumps)
}

// loadCourses returns an all-courses page followed by one page per recorded
// course length, shortest first.
func loadCourses(gameID string, store *storage.Store) []courseTab {
	all := courseTab{Title: "All courses"}
	if store == nil {
		return []courseTab{all}
	}
	stats, err := store.Stats(gameID)
	if err != nil {
		return []courseTab{all}
	}

	courses := []courseTab{all}
	for _, b := range slices.Sorted(maps.Keys(stats)) {
		st := *stats[b]
		courses = append(courses, courseTab{Blocks: b, Title: fmt.Sprintf("%d blocks", b), Stats: st})
		courses[0].Stats = merge(courses[0].Stats, st)
	}
	return courses
}

// merge folds b into the running total a.
func merge(a, b storage.RunStats) storage.RunStats {
	if a.Runs == 0 {
		return b
	}
	runs := a.Runs + b.Runs
	a.AvgTime = (a.AvgTime*time.Duration(a.Runs) + b.AvgTime*time.Duration(b.Runs)) / time.Duration(runs)
	a.BestTime = min(a.BestTime, b.BestTime)
	a.TotalBumps += b.TotalBumps
	a.Runs = runs
	return a
}

// ScoreboardModel is the Bubble Tea model for the leaderboard screen.
type ScoreboardModel struct {
	gameID    string
	store     *storage.Store
	courses   []courseTab
	cursor    int
	runs      []storage.Run
	table     table.Model
	help      help.Model
	keys      ScoreboardKeyMap
	width     int
	height    int
	quitting  bool
	goingBack bool
}

// NewScoreboardModel creates a leaderboard sized to the window.
func NewScoreboardModel(gameID string, store *storage.Store, width, height int) ScoreboardModel {
	m := ScoreboardModel{
		gameID:  gameID,
		store:   store,
		courses: loadCourses(gameID, store),
		help:    help.New(),
		keys:    DefaultScoreboardKeyMap(),
		width:   width,
		height:  height,
	}
	m.table = m.newTable()
	m.loadRuns()
	return m
}

func (m ScoreboardModel) sidebar() bool { return m.width >= minWidthForSidebar }

func (m ScoreboardModel) course() courseTab { return m.courses[m.cursor] }

func (m *ScoreboardModel) newTable() table.Model {
	columns := []table.Column{
		{Title: "Rank", Width: 5},
		{Title: "Time", Width: 9},
		{Title: "Blocks", Width: 6},
		{Title: "Bumps", Width: 5},
		{Title: "Player", Width: 10},
		{Title: "Date", Width: 12},
	}

	avail := m.width - 4
	if m.sidebar() {
		avail -= sidebarWidth + 3
	}
	used := 0
	for _, c := range columns {
		used += c.Width + 2
	}
	// Spare width goes to player names.
	if extra := avail - used; extra > 0 {
		columns[4].Width += min(extra, 10)
	}

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(frame).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(accent).
		Background(lipgloss.Color("57")).
		Bold(false)

	return table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-9, 3)),
		table.WithStyles(styles),
	)
}

// loadRuns reloads the fastest runs of the selected page.
func (m *ScoreboardModel) loadRuns() {
	m.runs = nil
	if m.store != nil {
		if runs, err := m.store.BestRuns(m.gameID, m.course().Blocks, maxRuns); err == nil {
			m.runs = runs
		}
	}
	m.table.SetRows(runRows(m.runs))
	m.table.GotoTop()
}

// runRows formats runs as ranked table rows.
func runRows(runs []storage.Run) []table.Row {
	rows := make([]table.Row, 0, len(runs))
	for i, r := range runs {
		player := r.Player
		if player == "" {
			player = "-"
		}
		rows = append(rows, table.Row{
			"#" + strconv.Itoa(i+1),
			fmt.Sprintf("%.2fs", r.Duration.Seconds()),
			strconv.Itoa(r.Blocks),
			strconv.Itoa(r.Bumps),
			player,
			r.CreatedAt.Local().Format("Jan 02 15:04"),
		})
	}
	return rows
}

func (m ScoreboardModel) Init() tea.Cmd { return nil }

// Update handles course switching, scrolling and leaving.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.NextCourse):
			m.cursor = (m.cursor + 1) % len(m.courses)
			m.loadRuns()
			return m, nil
		case key.Matches(msg, m.keys.PrevCourse):
			m.cursor = (m.cursor + len(m.courses) - 1) % len(m.courses)
			m.loadRuns()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.table = m.newTable()
		m.table.SetRows(runRows(m.runs))
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the leaderboard.
func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder
	title := "FASTEST RUNS - " + m.course().Title
	b.WriteString(centerText(titleStyle.Render(title), m.width))
	b.WriteString("\n\n")

	body := panelStyle.Render(m.tableContent())
	if m.sidebar() {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.courseList(), "  ", body))
	} else {
		b.WriteString(centerText("< "+m.course().Title+" >", m.width))
		b.WriteString("\n\n")
		b.WriteString(body)
	}
	b.WriteString("\n")

	if s := m.course().summary(); s != "" {
		b.WriteString(dimStyle.Render(s))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m ScoreboardModel) courseList() string {
	var list strings.Builder
	list.WriteString("Courses\n")
	list.WriteString(strings.Repeat("-", sidebarWidth-4))
	for i, c := range m.courses {
		list.WriteString("\n")
		if i == m.cursor {
			list.WriteString(activeStyle.Render("> " + c.Title))
			continue
		}
		list.WriteString("  " + c.Title)
	}
	return panelStyle.Width(sidebarWidth).Render(list.String())
}

func (m ScoreboardModel) tableContent() string {
	if len(m.runs) == 0 {
		return emptyStyle.Render("No runs recorded yet.\nReach the finish line to set a time!")
	}
	return m.table.View()
}

// IsGoingBack reports whether the user asked for the course picker.
func (m ScoreboardModel) IsGoingBack() bool { return m.goingBack }

// IsQuitting reports whether the user asked to quit.
func (m ScoreboardModel) IsQuitting() bool { return m.quitting }

// RunScoreboard shows the leaderboard until the user leaves it. goBack is
// false when the user quit.
func RunScoreboard(gameID string, store *storage.Store, width, height int) (goBack bool, err error) {
	final, err := tea.NewProgram(NewScoreboardModel(gameID, store, width, height), tea.WithAltScreen()).Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(ScoreboardModel)
	return ok && m.IsGoingBack(), nil
}
