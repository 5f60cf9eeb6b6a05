package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abdul-hamid-achik/marketscout/internal/agent"
)

// IsTTYAvailable reports whether stdout is attached to a terminal
func IsTTYAvailable() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// Run starts the interactive TUI session and blocks until the user quits
func Run(ag *agent.Agent, modelName string) error {
	if !IsTTYAvailable() {
		return fmt.Errorf("interactive mode requires a terminal")
	}

	program := tea.NewProgram(
		NewModel(ag, modelName),
		tea.WithAltScreen(),
	)

	_, err := program.Run()
	return err
}
