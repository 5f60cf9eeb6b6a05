package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/marketscout/internal/compact"
	"github.com/abdul-hamid-achik/marketscout/internal/llm"
	"github.com/abdul-hamid-achik/marketscout/internal/logger"
	"github.com/abdul-hamid-achik/marketscout/internal/query"
	"github.com/abdul-hamid-achik/marketscout/internal/store"
	"github.com/abdul-hamid-achik/marketscout/internal/tokens"
)

// executeToolCalls runs the model's requested tool calls strictly in order.
// Tool failures are recorded and the run continues; only event delivery
// failures (context cancellation) abort.
func (a *Agent) executeToolCalls(ctx context.Context, r *Run, state *runState, question string, qctx *query.Context, calls []llm.ToolCall) error {
	for _, call := range calls {
		description := store.Describe(call.Name, call.Input)

		if err := a.emit(ctx, r, Event{Type: EventToolStart, ToolName: call.Name, ToolArgs: call.Input}); err != nil {
			return err
		}

		tool, ok := a.registry.Get(call.Name)
		if !ok {
			if err := a.recordFailure(ctx, r, state, call, description, fmt.Sprintf("tool %q not found", call.Name)); err != nil {
				return err
			}
			continue
		}

		start := time.Now()
		result, err := tool.Execute(ctx, call.Input)
		if err != nil {
			logger.Warn("tool %s failed: %v", call.Name, err)
			if err := a.recordFailure(ctx, r, state, call, description, err.Error()); err != nil {
				return err
			}
			continue
		}
		elapsed := time.Since(start)

		sum := a.store.Save(call.Name, call.Input, result)
		state.summaries = append(state.summaries, sum)

		digest := a.summarize(ctx, question, description, result, qctx, sum.Digest)

		if err := a.emit(ctx, r, Event{
			Type:     EventToolEnd,
			ToolName: call.Name,
			ToolArgs: call.Input,
			Result:   result,
			Duration: elapsed,
		}); err != nil {
			return err
		}

		state.scratchpad = append(state.scratchpad, fmt.Sprintf("- %s: %s", description, digest))
		state.records = append(state.records, ToolCallRecord{
			Tool:        call.Name,
			Args:        call.Input,
			Result:      result,
			Description: description,
			Summary:     digest,
		})
	}

	return nil
}

// recordFailure emits a tool_error event and records the failure in the
// scratchpad so the model sees what went wrong
func (a *Agent) recordFailure(ctx context.Context, r *Run, state *runState, call llm.ToolCall, description, reason string) error {
	if err := a.emit(ctx, r, Event{
		Type:     EventToolError,
		ToolName: call.Name,
		ToolArgs: call.Input,
		Text:     reason,
	}); err != nil {
		return err
	}

	failed := fmt.Sprintf("[FAILED] %s", reason)
	state.scratchpad = append(state.scratchpad, fmt.Sprintf("- %s: %s", description, failed))
	state.records = append(state.records, ToolCallRecord{
		Tool:        call.Name,
		Args:        call.Input,
		Description: description,
		Summary:     failed,
		Failed:      true,
	})
	return nil
}

// summarize asks the summary model for a one-sentence digest of a tool
// result. Failures fall back to the store's structural digest.
func (a *Agent) summarize(ctx context.Context, question, description, result string, qctx *query.Context, fallback string) string {
	opts := compact.DefaultOptions()
	opts.Query = qctx
	opts.MaxTokens = tokens.BudgetFor(a.cfg.SummaryModel).PerToolResult
	compacted := compact.JSON(result, opts)

	msg, err := a.llm.Invoke(ctx, buildSummaryPrompt(question, description, compacted), llm.InvokeOptions{
		Model: a.cfg.SummaryModel,
	})
	if err != nil {
		logger.Warn("summary model failed, using structural digest: %v", err)
		return fallback
	}

	digest := strings.TrimSpace(msg.Text)
	if digest == "" {
		return fallback
	}
	return digest
}
