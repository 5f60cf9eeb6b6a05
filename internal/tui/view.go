package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if !m.ready {
		return "Starting..."
	}

	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.footerView())

	return b.String()
}

func (m Model) headerView() string {
	title := "marketscout"
	model := headerModelStyle.Render(m.modelName)
	padding := m.width - lipgloss.Width(title) - lipgloss.Width(model) - 2
	if padding < 1 {
		padding = 1
	}
	return headerStyle.Width(m.width).Render(title + strings.Repeat(" ", padding) + model)
}

func (m Model) footerView() string {
	if m.running {
		status := m.spinner.View() + " researching"
		if m.activeTool != "" {
			status += " " + helpStyle.Render(fmt.Sprintf("(%s)", m.activeTool))
		}
		return footerStyle.Width(m.width).Render(status) + "\n" + helpStyle.Render(" ctrl+c quit")
	}
	return footerStyle.Width(m.width).Render(m.textInput.View()) + "\n" + helpStyle.Render(" enter ask · esc quit")
}
