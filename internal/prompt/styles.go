package prompt

import "github.com/charmbracelet/lipgloss"

var (
	colorCyan     = lipgloss.Color("#00FFFF")
	colorGreen    = lipgloss.Color("#00FF00")
	colorDarkGray = lipgloss.Color("8")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	selectedStyle = lipgloss.NewStyle().Foreground(colorGreen)
	helpStyle     = lipgloss.NewStyle().Foreground(colorDarkGray)
)
