package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/marketscout/internal/agent"
)

func TestApplyEvent_Transcript(t *testing.T) {
	m := NewModel(nil, "test-model")

	m.applyEvent(agent.Event{Type: agent.EventThinking, Text: "need prices"})
	m.applyEvent(agent.Event{Type: agent.EventToolStart, ToolName: "stock_prices", ToolArgs: map[string]any{"symbol": "AAPL"}})
	m.applyEvent(agent.Event{Type: agent.EventToolEnd, ToolName: "stock_prices", Duration: 120 * time.Millisecond})

	joined := strings.Join(m.transcript, "\n")
	if !strings.Contains(joined, "need prices") {
		t.Error("thinking text missing from transcript")
	}
	if !strings.Contains(joined, "stock_prices(symbol=AAPL)") {
		t.Error("tool description missing from transcript")
	}
	if m.activeTool != "" {
		t.Errorf("activeTool = %q after tool_end, want empty", m.activeTool)
	}
}

func TestApplyEvent_AnswerAccumulates(t *testing.T) {
	m := NewModel(nil, "test-model")

	m.applyEvent(agent.Event{Type: agent.EventAnswerStart})
	m.applyEvent(agent.Event{Type: agent.EventAnswerChunk, Text: "AAPL closed "})
	m.applyEvent(agent.Event{Type: agent.EventAnswerChunk, Text: "higher."})

	if m.answer.String() != "AAPL closed higher." {
		t.Errorf("answer buffer = %q", m.answer.String())
	}

	m.applyEvent(agent.Event{Type: agent.EventDone, Answer: "AAPL closed higher."})

	if m.answer.Len() != 0 {
		t.Error("answer buffer not flushed on done")
	}
	if !strings.Contains(strings.Join(m.transcript, "\n"), "AAPL closed higher.") {
		t.Error("answer missing from transcript")
	}
}

func TestApplyEvent_ToolError(t *testing.T) {
	m := NewModel(nil, "test-model")

	m.applyEvent(agent.Event{Type: agent.EventToolStart, ToolName: "market_news", ToolArgs: nil})
	m.applyEvent(agent.Event{Type: agent.EventToolError, ToolName: "market_news", Text: "provider down"})

	if m.activeTool != "" {
		t.Errorf("activeTool = %q after tool_error, want empty", m.activeTool)
	}
	if !strings.Contains(strings.Join(m.transcript, "\n"), "provider down") {
		t.Error("tool error missing from transcript")
	}
}
