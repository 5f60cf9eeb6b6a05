package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abdul-hamid-achik/marketscout/internal/agent"
	"github.com/abdul-hamid-achik/marketscout/internal/store"
)

// eventMsg wraps one agent event for the update loop
type eventMsg agent.Event

// runClosedMsg signals that the run's event channel closed
type runClosedMsg struct{}

// Model is the live view of a research session: a transcript viewport,
// an input line, and a spinner while a run is in flight
type Model struct {
	agent     *agent.Agent
	modelName string

	viewport  viewport.Model
	textInput textinput.Model
	spinner   spinner.Model

	transcript []string
	answer     strings.Builder
	history    []string
	activeTool string

	run     *agent.Run
	running bool
	ready   bool
	width   int
	height  int
}

// NewModel creates the TUI model for a session against the given agent
func NewModel(ag *agent.Agent, modelName string) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about stocks, fundamentals, or market news"
	ti.Prompt = "> "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return Model{
		agent:     ag,
		modelName: modelName,
		textInput: ti,
		spinner:   sp,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// waitForEvent reads the next event off the run's channel
func waitForEvent(ch <-chan agent.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return runClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if !m.running {
				return m, tea.Quit
			}
		case "enter":
			if !m.running {
				question := strings.TrimSpace(m.textInput.Value())
				if question != "" {
					return m.startRun(question)
				}
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		viewportHeight := m.height - 4 // header, footer, input line
		if !m.ready {
			m.viewport = viewport.New(m.width, viewportHeight)
			m.textInput.Width = m.width - 4
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = viewportHeight
		}
		m.refreshViewport()

	case eventMsg:
		m.applyEvent(agent.Event(msg))
		m.refreshViewport()
		cmds = append(cmds, waitForEvent(m.run.Events()))

	case runClosedMsg:
		if err := m.run.Err(); err != nil {
			m.transcript = append(m.transcript, errorStyle.Render("Error: "+err.Error()), "")
		}
		m.running = false
		m.activeTool = ""
		m.textInput.Focus()
		m.refreshViewport()
		cmds = append(cmds, textinput.Blink)

	case spinner.TickMsg:
		if m.running {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.running {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// startRun begins answering the entered question
func (m Model) startRun(question string) (tea.Model, tea.Cmd) {
	m.transcript = append(m.transcript, questionStyle.Render("> "+question), "")
	m.answer.Reset()
	m.textInput.SetValue("")
	m.textInput.Blur()
	m.running = true

	m.run = m.agent.Start(context.Background(), question, m.history)
	m.history = append(m.history, question)

	m.refreshViewport()
	return m, tea.Batch(waitForEvent(m.run.Events()), m.spinner.Tick)
}

// applyEvent folds one agent event into the transcript
func (m *Model) applyEvent(ev agent.Event) {
	switch ev.Type {
	case agent.EventThinking:
		m.transcript = append(m.transcript, thinkingStyle.Render(ev.Text))

	case agent.EventToolStart:
		m.activeTool = ev.ToolName
		m.transcript = append(m.transcript, toolStartStyle.Render("⚡ "+store.Describe(ev.ToolName, ev.ToolArgs)))

	case agent.EventToolEnd:
		m.activeTool = ""
		m.transcript = append(m.transcript, toolEndStyle.Render(fmt.Sprintf("✓ %s (%s)", ev.ToolName, ev.Duration.Round(10*time.Millisecond))))

	case agent.EventToolError:
		m.activeTool = ""
		m.transcript = append(m.transcript, toolErrorStyle.Render("✗ "+ev.ToolName+": "+ev.Text))

	case agent.EventAnswerStart:
		m.transcript = append(m.transcript, "")

	case agent.EventAnswerChunk:
		m.answer.WriteString(ev.Text)

	case agent.EventDone:
		if m.answer.Len() > 0 {
			m.transcript = append(m.transcript, answerStyle.Render(m.answer.String()), "")
			m.answer.Reset()
		}
	}
}

// refreshViewport re-renders the transcript, keeping the tail visible
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	content := strings.Join(m.transcript, "\n")
	if m.answer.Len() > 0 {
		content += "\n" + answerStyle.Render(m.answer.String())
	}
	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}
