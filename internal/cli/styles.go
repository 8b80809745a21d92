package cli

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00BFFF"))

	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD93D"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF7F"))

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

// style applies a lipgloss style unless color output is disabled.
func (a *App) style(s lipgloss.Style, text string) string {
	if !a.Settings.Output.Color {
		return text
	}
	return s.Render(text)
}
