package llm

import (
	"context"
	"sync"
)

// MockClient implements Client for testing.
type MockClient struct {
	// Injectable behavior
	InvokeFunc func(ctx context.Context, prompt string, opts InvokeOptions) (*Message, error)
	StreamFunc func(ctx context.Context, prompt string, opts StreamOptions) <-chan StreamChunk

	mu sync.Mutex

	// Call recording
	InvokeCalls []InvokeCall
	StreamCalls []StreamCall
}

// InvokeCall records the arguments of an Invoke invocation.
type InvokeCall struct {
	Prompt string
	Opts   InvokeOptions
}

// StreamCall records the arguments of a Stream invocation.
type StreamCall struct {
	Prompt string
	Opts   StreamOptions
}

// NewMockClient creates a mock client with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Invoke calls the injected InvokeFunc or returns a default reply.
func (m *MockClient) Invoke(ctx context.Context, prompt string, opts InvokeOptions) (*Message, error) {
	m.mu.Lock()
	m.InvokeCalls = append(m.InvokeCalls, InvokeCall{Prompt: prompt, Opts: opts})
	m.mu.Unlock()

	if m.InvokeFunc != nil {
		return m.InvokeFunc(ctx, prompt, opts)
	}
	return &Message{Text: "mock response", StopReason: "end_turn"}, nil
}

// Stream calls the injected StreamFunc or returns a default stream.
func (m *MockClient) Stream(ctx context.Context, prompt string, opts StreamOptions) <-chan StreamChunk {
	m.mu.Lock()
	m.StreamCalls = append(m.StreamCalls, StreamCall{Prompt: prompt, Opts: opts})
	m.mu.Unlock()

	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, prompt, opts)
	}

	ch := make(chan StreamChunk, 1)
	go func() {
		defer close(ch)
		ch <- StreamChunk{Text: "mock response"}
	}()
	return ch
}
