package llm

import (
	"context"
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	scouterr "github.com/abdul-hamid-achik/marketscout/internal/errors"
	"github.com/abdul-hamid-achik/marketscout/internal/logger"
)

// AnthropicClient talks to the Anthropic Messages API
type AnthropicClient struct {
	client    anthropic.Client
	maxTokens int
}

// NewAnthropicClient creates a client with the given API key. maxTokens caps
// the length of each model reply.
func NewAnthropicClient(apiKey string, maxTokens int) *AnthropicClient {
	return &AnthropicClient{
		client: anthropic.NewClient(
			option.WithAPIKey(apiKey),
			option.WithMaxRetries(0), // retries are handled by RateLimitedClient
		),
		maxTokens: maxTokens,
	}
}

// Invoke sends a single prompt and blocks until the full reply arrives
func (c *AnthropicClient) Invoke(ctx context.Context, prompt string, opts InvokeOptions) (*Message, error) {
	params := c.buildParams(prompt, opts.Model, opts.SystemPrompt)
	if len(opts.Tools) > 0 {
		params.Tools = buildToolParams(opts.Tools)
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, scouterr.LLMRequestFailed(opts.Model, err)
	}

	return parseMessage(resp), nil
}

// Stream sends a single prompt and returns reply text incrementally.
// The channel is closed when the reply completes or fails.
func (c *AnthropicClient) Stream(ctx context.Context, prompt string, opts StreamOptions) <-chan StreamChunk {
	out := make(chan StreamChunk)

	go func() {
		defer close(out)

		params := c.buildParams(prompt, opts.Model, opts.SystemPrompt)
		stream := c.client.Messages.NewStreaming(ctx, params)

		for stream.Next() {
			event := stream.Current()
			switch ev := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				if ev.Delta.Text != "" {
					select {
					case out <- StreamChunk{Text: ev.Delta.Text}:
					case <-ctx.Done():
						return
					}
				}
			}
		}

		if err := stream.Err(); err != nil {
			logger.Error("stream failed (model=%s): %v", opts.Model, err)
			select {
			case out <- StreamChunk{Err: scouterr.LLMStreamFailed(opts.Model, err)}:
			case <-ctx.Done():
			}
		}
	}()

	return out
}

func (c *AnthropicClient) buildParams(prompt, model, system string) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	return params
}

func buildToolParams(tools []ToolDefinition) []anthropic.ToolUnionParam {
	params := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		var required []string
		var properties any
		if t.InputSchema != nil {
			properties = t.InputSchema["properties"]
			switch req := t.InputSchema["required"].(type) {
			case []string:
				required = req
			case []any:
				for _, r := range req {
					if s, ok := r.(string); ok {
						required = append(required, s)
					}
				}
			}
		}
		params = append(params, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: properties,
					Required:   required,
				},
			},
		})
	}
	return params
}

func parseMessage(resp *anthropic.Message) *Message {
	msg := &Message{StopReason: string(resp.StopReason)}
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			msg.Text += block.Text
		case "tool_use":
			input := map[string]any{}
			if len(block.Input) > 0 {
				if err := json.Unmarshal(block.Input, &input); err != nil {
					logger.Warn("unparseable input for tool %s: %v", block.Name, err)
				}
			}
			msg.ToolCalls = append(msg.ToolCalls, ToolCall{
				ID:    block.ID,
				Name:  block.Name,
				Input: input,
			})
		}
	}
	return msg
}
