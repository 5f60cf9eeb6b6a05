package agent

import "time"

// EventType identifies a progress event emitted during a run
type EventType string

const (
	EventThinking    EventType = "thinking"
	EventToolStart   EventType = "tool_start"
	EventToolEnd     EventType = "tool_end"
	EventToolError   EventType = "tool_error"
	EventAnswerStart EventType = "answer_start"
	EventAnswerChunk EventType = "answer_chunk"
	EventDone        EventType = "done"
)

// Event is one entry in a run's progress stream. Which fields are set
// depends on Type. Exactly one done event is emitted per completed run,
// always last, and whenever answer chunks are streamed their concatenation
// equals the done event's Answer. A run with no tools configured emits
// only the done event.
type Event struct {
	Type EventType

	// Text carries thinking text, an answer chunk, or a tool error message
	Text string

	// Tool fields, set on tool_start, tool_end, and tool_error
	ToolName string
	ToolArgs map[string]any
	Result   string        // tool_end only: the raw tool result
	Duration time.Duration // tool_end only

	// Done fields
	Answer     string
	ToolCalls  []ToolCallRecord
	Iterations int
}

// ToolCallRecord describes one tool invocation made during a run
type ToolCallRecord struct {
	Tool        string
	Args        map[string]any
	Result      string // raw tool result, empty when the call failed
	Description string
	Summary     string
	Failed      bool
}
