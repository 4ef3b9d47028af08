// Package tui runs races in the terminal with Bubble Tea: the frame loop,
// held-key input, the course picker, the leaderboard and the SSH server.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const defaultTickRate = 60

// TickMsg carries the wall-clock time a frame timer fired. The model derives
// the frame delta from consecutive ticks.
type TickMsg time.Time

// frameInterval is the timer period for rate frames per second.
func frameInterval(rate int) time.Duration {
	if rate <= 0 {
		rate = defaultTickRate
	}
	return time.Second / time.Duration(rate)
}

func tickCmd(rate int) tea.Cmd {
	return tea.Tick(frameInterval(rate), func(t time.Time) tea.Msg { return TickMsg(t) })
}
