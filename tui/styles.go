package tui

import "github.com/charmbracelet/lipgloss"

var (
	userLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	botLabelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))

	bodyStyle   = lipgloss.NewStyle()
	titleStyle  = lipgloss.NewStyle().Bold(true)
	authorStyle = lipgloss.NewStyle().Italic(true)
	priceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	linkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Underline(true)

	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	statusStyle  = lipgloss.NewStyle().Faint(true)
)
