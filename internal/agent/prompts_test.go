package agent

import (
	"strings"
	"testing"
)

func TestBuildIterationPrompt_History(t *testing.T) {
	history := []string{"q1", "q2", "q3", "q4", "q5", "q6", "q7"}

	prompt := buildIterationPrompt("current question", history, 5, nil)

	if !strings.Contains(prompt, "(2 earlier questions omitted)") {
		t.Error("missing truncation note for dropped history")
	}
	if strings.Contains(prompt, "- q2\n") {
		t.Error("dropped history entry present in prompt")
	}
	for _, q := range []string{"q3", "q4", "q5", "q6", "q7"} {
		if !strings.Contains(prompt, "- "+q+"\n") {
			t.Errorf("history entry %s missing from prompt", q)
		}
	}
	if !strings.Contains(prompt, "Question: current question") {
		t.Error("question missing from prompt")
	}
}

func TestBuildIterationPrompt_NoHistory(t *testing.T) {
	prompt := buildIterationPrompt("q", nil, 5, nil)
	if strings.Contains(prompt, "Earlier questions") {
		t.Error("empty history should not add a history section")
	}
}

func TestBuildIterationPrompt_Scratchpad(t *testing.T) {
	scratchpad := []string{
		"- stock_prices(symbol=AAPL): closed higher all week",
		"- market_news(tickers=AAPL): [FAILED] provider down",
	}

	prompt := buildIterationPrompt("q", nil, 5, scratchpad)

	if !strings.Contains(prompt, "Findings so far:") {
		t.Error("scratchpad section missing")
	}
	for _, line := range scratchpad {
		if !strings.Contains(prompt, line) {
			t.Errorf("scratchpad line missing: %s", line)
		}
	}
}
