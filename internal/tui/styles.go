package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	primaryColor = lipgloss.Color("39")  // Cyan
	successColor = lipgloss.Color("82")  // Green
	errorColor   = lipgloss.Color("196") // Red
	dimColor     = lipgloss.Color("240") // Gray
	answerColor  = lipgloss.Color("252") // Light gray
)

// Styles
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	headerModelStyle = lipgloss.NewStyle().
				Foreground(dimColor)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(primaryColor)

	questionStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	thinkingStyle = lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true)

	toolStartStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	toolEndStyle = lipgloss.NewStyle().
			Foreground(successColor)

	toolErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	answerStyle = lipgloss.NewStyle().
			Foreground(answerColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(dimColor)
)
