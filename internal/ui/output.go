package ui

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/marketscout/internal/agent"
	"github.com/abdul-hamid-achik/marketscout/internal/store"
	"github.com/abdul-hamid-achik/marketscout/internal/ui/highlight"
)

// ANSI color codes
const (
	Reset     = "\033[0m"
	Bold      = "\033[1m"
	Dim       = "\033[2m"
	Italic    = "\033[3m"
	Underline = "\033[4m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Cyan    = "\033[36m"
)

// ANSI cursor control codes
const (
	CursorStart = "\r"      // Move cursor to start of line
	ClearLine   = "\033[2K" // Clear entire line
)

// Renderer writes a run's event stream to the terminal
type Renderer struct {
	useColors   bool
	verbose     bool
	highlighter *highlight.Highlighter
}

// NewRenderer creates a renderer. verbose additionally prints tool arguments
// as highlighted JSON.
func NewRenderer(verbose bool) *Renderer {
	useColors := true
	if fileInfo, _ := os.Stdout.Stat(); (fileInfo.Mode() & os.ModeCharDevice) == 0 {
		useColors = false
	}
	if os.Getenv("NO_COLOR") != "" {
		useColors = false
	}

	return &Renderer{
		useColors:   useColors,
		verbose:     verbose,
		highlighter: highlight.New(useColors),
	}
}

// color applies color if colors are enabled
func (r *Renderer) color(color, text string) string {
	if !r.useColors {
		return text
	}
	return color + text + Reset
}

// IsTTY returns true if the output is a terminal (not piped/redirected)
func (r *Renderer) IsTTY() bool {
	return r.useColors
}

// UseColors returns true if colors are enabled
func (r *Renderer) UseColors() bool {
	return r.useColors
}

// HandleEvent renders one agent event
func (r *Renderer) HandleEvent(ev agent.Event) {
	switch ev.Type {
	case agent.EventThinking:
		fmt.Println(r.color(Dim+Italic, ev.Text))

	case agent.EventToolStart:
		prefix := r.color(Cyan+Bold, "⚡ ")
		fmt.Println(prefix + r.color(Cyan, store.Describe(ev.ToolName, ev.ToolArgs)))
		if r.verbose && len(ev.ToolArgs) > 0 {
			if args, err := json.MarshalIndent(ev.ToolArgs, "  ", "  "); err == nil {
				fmt.Println("  " + r.highlighter.JSON(string(args)))
			}
		}

	case agent.EventToolEnd:
		prefix := r.color(Green, "✓ ")
		fmt.Printf("%s%s %s\n", prefix, r.color(Green, ev.ToolName), r.color(Dim, fmt.Sprintf("(%s)", ev.Duration.Round(10*time.Millisecond))))

	case agent.EventToolError:
		prefix := r.color(Red+Bold, "✗ ")
		fmt.Println(prefix + r.color(Red, ev.ToolName+": ") + ev.Text)

	case agent.EventAnswerStart:
		fmt.Println()

	case agent.EventAnswerChunk:
		fmt.Print(ev.Text)

	case agent.EventDone:
		fmt.Println()
		if r.verbose && len(ev.ToolCalls) > 0 {
			fmt.Println(r.color(Dim, fmt.Sprintf("(%d iterations, %d tool calls)", ev.Iterations, len(ev.ToolCalls))))
		}
	}
}

// RenderAnswer prints a complete answer with markdown code blocks highlighted
func (r *Renderer) RenderAnswer(answer string) {
	fmt.Println(r.highlighter.MarkdownCodeBlocks(answer))
}

// Error outputs an error message
func (r *Renderer) Error(err error) {
	prefix := r.color(Red+Bold, "Error: ")
	fmt.Fprintln(os.Stderr, prefix+err.Error())
}

// Warning outputs a warning message
func (r *Renderer) Warning(msg string) {
	prefix := r.color(Yellow+Bold, "Warning: ")
	fmt.Fprintln(os.Stderr, prefix+msg)
}

// Info outputs an info message
func (r *Renderer) Info(msg string) {
	prefix := r.color(Blue, "ℹ ")
	fmt.Println(prefix + msg)
}

// Prompt outputs the interactive prompt
func (r *Renderer) Prompt(prompt string) {
	fmt.Print(r.color(Bold+Green, prompt))
}

// Header outputs a header
func (r *Renderer) Header(text string) {
	fmt.Println()
	fmt.Println(r.color(Bold+Underline, text))
	fmt.Println()
}

// Separator outputs a horizontal line
func (r *Renderer) Separator() {
	fmt.Println(r.color(Dim, strings.Repeat("─", 40)))
}

// ModelInfo outputs the current model info
func (r *Renderer) ModelInfo(model string) {
	fmt.Println(r.color(Dim, "Using model: ") + r.color(Cyan, model))
}
