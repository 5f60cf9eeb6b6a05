package tokens

import "testing"

func TestEstimate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		kind     Kind
		expected int
	}{
		{
			name:     "plain text",
			input:    "Hello world",
			kind:     KindText,
			expected: 3, // 11 chars / 4, rounded up
		},
		{
			name:     "json",
			input:    `{"key":"value"}`,
			kind:     KindJSON,
			expected: 5, // 15 chars / 3.5, rounded up
		},
		{
			name:     "empty string",
			input:    "",
			kind:     KindText,
			expected: 0,
		},
		{
			name:     "single char text",
			input:    "a",
			kind:     KindText,
			expected: 1,
		},
		{
			name:     "exact multiple",
			input:    "12345678",
			kind:     KindText,
			expected: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Estimate(tt.input, tt.kind)
			if got != tt.expected {
				t.Errorf("Estimate(%q, %q) = %d, expected %d", tt.input, tt.kind, got, tt.expected)
			}
		})
	}
}

func TestBudgetFor(t *testing.T) {
	tests := []struct {
		model string
		small bool
	}{
		{"claude-sonnet-4-5-20250929", false},
		{"claude-haiku-4-5-20251015", false},
		{"claude-2.1", true},
		{"claude-instant-1.2", true},
		{"Claude-Instant-1.2", true},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			b := BudgetFor(tt.model)
			if tt.small && b != smallBudget {
				t.Errorf("expected small budget for %q", tt.model)
			}
			if !tt.small && b != largeBudget {
				t.Errorf("expected large budget for %q", tt.model)
			}
		})
	}
}

func TestBudgetPresetsAreConsistent(t *testing.T) {
	for name, b := range map[string]Budget{"small": smallBudget, "large": largeBudget} {
		if b.ToolResults >= b.MaxInput {
			t.Errorf("%s: ToolResults %d must be below MaxInput %d", name, b.ToolResults, b.MaxInput)
		}
		if b.PerToolResult > b.ToolResults {
			t.Errorf("%s: PerToolResult %d must not exceed ToolResults %d", name, b.PerToolResult, b.ToolResults)
		}
	}
}
