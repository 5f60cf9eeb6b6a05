package tokens

import (
	"math"
	"strings"
)

// Kind selects the estimation ratio. JSON and code pack more tokens per
// character than prose because of punctuation-heavy structure.
type Kind string

const (
	KindText Kind = "text"
	KindJSON Kind = "json"
)

const (
	charsPerTextToken = 4.0
	charsPerJSONToken = 3.5
)

// Estimate returns an approximate token count for text. This is a
// deliberate character heuristic, not a real tokenizer: it only needs to be
// consistent enough for budget allocation, and it must never require a
// network round trip or a BPE table.
func Estimate(text string, kind Kind) int {
	if text == "" {
		return 0
	}
	ratio := charsPerTextToken
	if kind == KindJSON {
		ratio = charsPerJSONToken
	}
	return int(math.Ceil(float64(len(text)) / ratio))
}

// Budget describes how the input context window is split for one model.
type Budget struct {
	MaxInput      int // total input ceiling
	ToolResults   int // shared across all tool results in the answer prompt
	PerToolResult int // cap for any single tool result
	ChatHistory   int // reserved for prior conversation turns
}

var (
	// largeBudget covers current 200K-context Claude models.
	largeBudget = Budget{
		MaxInput:      180000,
		ToolResults:   120000,
		PerToolResult: 30000,
		ChatHistory:   40000,
	}

	// smallBudget covers legacy low-context models.
	smallBudget = Budget{
		MaxInput:      28000,
		ToolResults:   16000,
		PerToolResult: 4000,
		ChatHistory:   6000,
	}
)

// smallModelMarkers are substrings that identify legacy low-context models.
var smallModelMarkers = []string{
	"claude-2",
	"claude-instant",
}

// BudgetFor returns the token budget preset for a model identifier,
// selected by substring match.
func BudgetFor(model string) Budget {
	lower := strings.ToLower(model)
	for _, marker := range smallModelMarkers {
		if strings.Contains(lower, marker) {
			return smallBudget
		}
	}
	return largeBudget
}
