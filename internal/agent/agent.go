package agent

import (
	"context"
	"strings"

	"github.com/abdul-hamid-achik/marketscout/internal/compact"
	"github.com/abdul-hamid-achik/marketscout/internal/config"
	"github.com/abdul-hamid-achik/marketscout/internal/llm"
	"github.com/abdul-hamid-achik/marketscout/internal/logger"
	"github.com/abdul-hamid-achik/marketscout/internal/query"
	"github.com/abdul-hamid-achik/marketscout/internal/store"
	"github.com/abdul-hamid-achik/marketscout/internal/tokens"
	"github.com/abdul-hamid-achik/marketscout/internal/tools"
)

// Agent answers market research questions by iterating between the model
// and the data tools
type Agent struct {
	llm      llm.Client
	registry *tools.Registry
	store    *store.ResultStore
	cfg      *config.Config
	budget   tokens.Budget
}

// New creates an agent. The token budget is derived from the configured
// primary model.
func New(client llm.Client, registry *tools.Registry, st *store.ResultStore, cfg *config.Config) *Agent {
	return &Agent{
		llm:      client,
		registry: registry,
		store:    st,
		cfg:      cfg,
		budget:   tokens.BudgetFor(cfg.Model),
	}
}

// Start begins answering a question. history carries prior user questions
// from this session, oldest first. The returned Run streams progress events;
// consume Events() until it closes, then check Err().
func (a *Agent) Start(ctx context.Context, question string, history []string) *Run {
	r := &Run{events: make(chan Event)}
	go func() {
		defer close(r.events)
		r.err = a.run(ctx, r, question, history)
		if r.err != nil {
			logger.Error("run failed: %v", r.err)
		}
	}()
	return r
}

func (a *Agent) run(ctx context.Context, r *Run, question string, history []string) error {
	maxIterations := a.cfg.Agent.MaxIterations
	if maxIterations <= 0 {
		maxIterations = 10
	}

	toolDefs := a.toolDefinitions()
	if len(toolDefs) == 0 {
		// No model calls and no other events, just the terminal done
		return a.emit(ctx, r, Event{Type: EventDone, Answer: noToolsAnswer})
	}

	qctx := query.Analyze(question)
	logger.Debug("analyzed query: tickers=%v years=%v fullData=%v", qctx.Tickers, qctx.Years, qctx.RequiresFullData)

	state := runState{phase: phaseIterating}

	for state.phase == phaseIterating {
		state.iteration++

		prompt := buildIterationPrompt(question, history, a.cfg.Agent.HistoryLimit, state.scratchpad)
		msg, err := a.llm.Invoke(ctx, prompt, llm.InvokeOptions{
			Model:        a.cfg.Model,
			SystemPrompt: systemPrompt,
			Tools:        toolDefs,
		})
		if err != nil {
			// Primary model failures terminate the run without a done event
			return err
		}

		wantsTools := len(msg.ToolCalls) > 0

		if msg.Text != "" && wantsTools {
			if err := a.emit(ctx, r, Event{Type: EventThinking, Text: msg.Text}); err != nil {
				return err
			}
			// Reasoning feeds the next iteration's prompt alongside tool summaries
			state.scratchpad = append(state.scratchpad, msg.Text)
		}

		switch nextPhase(state, maxIterations, wantsTools) {
		case phaseDone:
			return a.answerDirect(ctx, r, msg.Text, state)

		case phaseGeneratingFinalAnswer:
			state.phase = phaseGeneratingFinalAnswer

		case phaseExecutingTools:
			state.phase = phaseExecutingTools
			if err := a.executeToolCalls(ctx, r, &state, question, &qctx, msg.ToolCalls); err != nil {
				return err
			}
			state.phase = nextPhase(state, maxIterations, false)
		}
	}

	return a.finalAnswer(ctx, r, state, question, &qctx)
}

// answerDirect emits the model's own text as the complete answer. Used when
// the first model call answers without gathering any data.
func (a *Agent) answerDirect(ctx context.Context, r *Run, text string, state runState) error {
	if err := a.emit(ctx, r, Event{Type: EventAnswerStart}); err != nil {
		return err
	}
	if text == "" {
		text = fallbackAnswer
	}
	if err := a.emit(ctx, r, Event{Type: EventAnswerChunk, Text: text}); err != nil {
		return err
	}
	return a.emit(ctx, r, Event{
		Type:       EventDone,
		Answer:     text,
		ToolCalls:  state.records,
		Iterations: state.iteration,
	})
}

// finalAnswer loads everything gathered, compacts it under the model budget,
// and streams the composed answer
func (a *Agent) finalAnswer(ctx context.Context, r *Run, state runState, question string, qctx *query.Context) error {
	ids := make([]string, 0, len(state.summaries))
	byID := make(map[string]store.Summary, len(state.summaries))
	for _, sum := range state.summaries {
		ids = append(ids, sum.ID)
		byID[sum.ID] = sum
	}

	results := make([]compact.Result, 0, len(ids))
	for _, loaded := range a.store.LoadMany(ids) {
		sum := byID[loaded.ID]
		results = append(results, compact.Result{
			Description: store.Describe(sum.ToolName, sum.Args),
			Data:        loaded.Data,
		})
	}

	opts := compact.DefaultOptions()
	opts.Query = qctx
	opts.MaxTokens = a.budget.PerToolResult
	compacted := compact.Results(results, a.budget.ToolResults, opts)

	prompt := buildFinalAnswerPrompt(question, compacted)

	if err := a.emit(ctx, r, Event{Type: EventAnswerStart}); err != nil {
		return err
	}

	var answer strings.Builder
	for chunk := range a.llm.Stream(ctx, prompt, llm.StreamOptions{
		Model:        a.cfg.Model,
		SystemPrompt: systemPrompt,
	}) {
		if chunk.Err != nil {
			return chunk.Err
		}
		if chunk.Text == "" {
			continue
		}
		answer.WriteString(chunk.Text)
		if err := a.emit(ctx, r, Event{Type: EventAnswerChunk, Text: chunk.Text}); err != nil {
			return err
		}
	}

	final := answer.String()
	if final == "" {
		final = fallbackAnswer
		if err := a.emit(ctx, r, Event{Type: EventAnswerChunk, Text: final}); err != nil {
			return err
		}
	}

	return a.emit(ctx, r, Event{
		Type:       EventDone,
		Answer:     final,
		ToolCalls:  state.records,
		Iterations: state.iteration,
	})
}

func (a *Agent) toolDefinitions() []llm.ToolDefinition {
	defs := a.registry.GetDefinitions()
	out := make([]llm.ToolDefinition, 0, len(defs))
	for _, def := range defs {
		out = append(out, llm.ToolDefinition{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		})
	}
	return out
}

// emit sends an event unless the context is cancelled first
func (a *Agent) emit(ctx context.Context, r *Run, ev Event) error {
	select {
	case r.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
