package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("229")
	muted  = lipgloss.Color("241")
	frame  = lipgloss.Color("240")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	dimStyle    = lipgloss.NewStyle().Foreground(muted)
	activeStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(frame).Padding(0, 1)
	emptyStyle  = lipgloss.NewStyle().Foreground(muted).Italic(true).Padding(2, 4)
)

// centerText left-pads text to center it in width. Styled text is measured
// without its escape sequences.
func centerText(text string, width int) string {
	visible := lipgloss.Width(text)
	if visible >= width {
		return text
	}
	return lipgloss.PlaceHorizontal(visible+(width-visible)/2, lipgloss.Right, text)
}
