package llm

import "context"

// ToolCall is a tool invocation requested by the model
type ToolCall struct {
	ID    string
	Name  string
	Input map[string]any
}

// Message is a complete model reply: free text, tool calls, or both
type Message struct {
	Text       string
	ToolCalls  []ToolCall
	StopReason string
}

// ToolDefinition describes a tool to the model
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// InvokeOptions configures a blocking model call
type InvokeOptions struct {
	Model        string
	SystemPrompt string
	Tools        []ToolDefinition
}

// StreamOptions configures a streaming model call. Streaming is used only
// for final answers, so it carries no tool definitions.
type StreamOptions struct {
	Model        string
	SystemPrompt string
}

// StreamChunk is one fragment of a streamed reply. A non-nil Err terminates
// the stream; the channel is closed afterwards.
type StreamChunk struct {
	Text string
	Err  error
}

// Client is the gateway to the language model
type Client interface {
	Invoke(ctx context.Context, prompt string, opts InvokeOptions) (*Message, error)
	Stream(ctx context.Context, prompt string, opts StreamOptions) <-chan StreamChunk
}
