package tools

import (
	"context"
	"sort"
	"sync"

	scouterr "github.com/abdul-hamid-achik/marketscout/internal/errors"
)

// Tool defines the interface all data tools must implement
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]any
	Execute(ctx context.Context, input map[string]any) (string, error)
}

// Registry manages available tools
type Registry struct {
	tools map[string]Tool
	mu    sync.RWMutex
}

// Keys holds API keys for the market data providers. Empty keys skip
// registration of the tools that need them.
type Keys struct {
	FMP          string
	AlphaVantage string
}

// NewRegistry creates a tool registry with the data tools the given keys
// allow
func NewRegistry(keys Keys) *Registry {
	r := &Registry{
		tools: make(map[string]Tool),
	}

	if keys.FMP != "" {
		r.Register(NewStockPricesTool(keys.FMP))
		r.Register(NewCompanyFinancialsTool(keys.FMP))
	}
	if keys.AlphaVantage != "" {
		r.Register(NewMarketNewsTool(keys.AlphaVantage))
	}

	return r
}

// Register adds a tool to the registry
func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
}

// Get returns a tool by name
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// List returns all registered tools sorted by name
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name() < tools[j].Name() })
	return tools
}

// Execute runs a tool by name with the given input
func (r *Registry) Execute(ctx context.Context, name string, input map[string]any) (string, error) {
	tool, ok := r.Get(name)
	if !ok {
		return "", scouterr.ToolNotFound(name)
	}
	return tool.Execute(ctx, input)
}

// GetDefinitions returns tool definitions for the model, sorted by name
func (r *Registry) GetDefinitions() []ToolDefinition {
	list := r.List()
	defs := make([]ToolDefinition, 0, len(list))
	for _, tool := range list {
		defs = append(defs, ToolDefinition{
			Name:        tool.Name(),
			Description: tool.Description(),
			InputSchema: tool.InputSchema(),
		})
	}
	return defs
}

// ToolDefinition is used to pass tool info to the model
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}
