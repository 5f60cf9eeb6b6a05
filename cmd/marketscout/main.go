package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/marketscout/internal/agent"
	"github.com/abdul-hamid-achik/marketscout/internal/config"
	"github.com/abdul-hamid-achik/marketscout/internal/llm"
	"github.com/abdul-hamid-achik/marketscout/internal/logger"
	"github.com/abdul-hamid-achik/marketscout/internal/session"
	"github.com/abdul-hamid-achik/marketscout/internal/store"
	"github.com/abdul-hamid-achik/marketscout/internal/tools"
	"github.com/abdul-hamid-achik/marketscout/internal/tui"
	"github.com/abdul-hamid-achik/marketscout/internal/ui"
)

var Version = "dev"

func main() {
	defer logger.CloseLogFile()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	args := os.Args[1:]

	if len(args) > 0 && (args[0] == "--version" || args[0] == "-v" || args[0] == "version") {
		fmt.Printf("marketscout version %s\n", Version)
		return nil
	}
	if len(args) > 0 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		printHelp()
		return nil
	}

	logger.Debug("marketscout session started, args=%v", args)

	var (
		plain    bool
		verbose  bool
		model    string
		maxIters int
	)

	rest := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--plain":
			plain = true
		case arg == "--verbose":
			verbose = true
		case arg == "--model" && i+1 < len(args):
			i++
			model = args[i]
		case strings.HasPrefix(arg, "--model="):
			model = strings.TrimPrefix(arg, "--model=")
		case arg == "--max-iterations" && i+1 < len(args):
			i++
			n, err := strconv.Atoi(args[i])
			if err != nil {
				return fmt.Errorf("invalid --max-iterations value %q", args[i])
			}
			maxIters = n
		case strings.HasPrefix(arg, "--max-iterations="):
			n, err := strconv.Atoi(strings.TrimPrefix(arg, "--max-iterations="))
			if err != nil {
				return fmt.Errorf("invalid --max-iterations value %q", arg)
			}
			maxIters = n
		default:
			rest = append(rest, arg)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if model != "" {
		cfg.Model = model
	}
	if maxIters > 0 {
		cfg.Agent.MaxIterations = maxIters
	}

	output := ui.NewRenderer(verbose)

	baseClient := llm.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.MaxTokens)

	var client llm.Client = baseClient
	if cfg.RateLimit.EnableRateLimiting {
		limited := llm.NewRateLimitedClient(baseClient, &cfg.RateLimit)
		if plain || !tui.IsTTYAvailable() {
			spinner := ui.NewSpinner(output)
			limited.SetWaitCallback(spinner.Wait)
		}
		client = limited
	}

	registry := tools.NewRegistry(tools.Keys{
		FMP:          cfg.FMPAPIKey,
		AlphaVantage: cfg.AlphaVantageKey,
	})
	if len(registry.List()) == 0 {
		output.Warning("no data source API keys set; tools are disabled")
	}

	resultStore := store.New(cfg.Store.TTL)
	defer resultStore.Close()

	a := agent.New(client, registry, resultStore, cfg)

	// One-shot mode if a question was given
	if len(rest) > 0 {
		question := strings.Join(rest, " ")
		logger.Debug("one-shot question: %s", question)
		_, err := runOnce(a, output, question, nil)
		return err
	}

	// Interactive: TUI when attached to a terminal, line mode otherwise
	if !plain && tui.IsTTYAvailable() {
		return tui.Run(a, cfg.Model)
	}
	return runInteractive(a, output, cfg.Model)
}

// runOnce answers a single question, renders its event stream, and
// returns the final answer text
func runOnce(a *agent.Agent, output *ui.Renderer, question string, history []string) (string, error) {
	run := a.Start(context.Background(), question, history)
	var answer string
	for ev := range run.Events() {
		output.HandleEvent(ev)
		if ev.Type == agent.EventDone {
			answer = ev.Answer
		}
	}
	return answer, run.Err()
}

// runInteractive reads questions in a loop until EOF or /exit
func runInteractive(a *agent.Agent, output *ui.Renderer, model string) error {
	input := ui.NewInputHandler()

	var history []string
	sessions, err := session.NewManager()
	if err != nil {
		logger.Warn("session persistence disabled: %v", err)
		sessions = nil
	} else if prev, err := sessions.GetCurrent(); err == nil && prev != nil {
		sessions.Resume(prev)
		history = prev.Questions()
		if len(history) > 0 {
			output.Info(fmt.Sprintf("Resumed session from %s (%d questions)",
				session.FormatRelativeTime(prev.UpdatedAt), len(history)))
		}
	}

	output.Info("Ask about stocks, fundamentals, or market news. /exit to quit.")

	for {
		question, err := input.ReadInput("> ")
		if err != nil {
			// EOF ends the session
			fmt.Println()
			return nil
		}
		question = strings.TrimSpace(question)
		if question == "" {
			continue
		}
		if question == "/exit" || question == "/quit" {
			return nil
		}
		if question == "/new" {
			if sessions != nil {
				_, _ = sessions.StartNew()
			}
			history = nil
			output.Info("Started a new session.")
			continue
		}

		answer, err := runOnce(a, output, question, history)
		if err != nil {
			output.Error(err)
			continue
		}
		history = append(history, question)
		if sessions != nil {
			if err := sessions.Record(question, answer, model); err != nil {
				logger.Warn("failed to save session: %v", err)
			}
		}
	}
}

func printHelp() {
	fmt.Print(`marketscout - market research assistant

Usage:
  marketscout [question]  Answer a one-shot question
  marketscout             Start interactive mode
  marketscout version     Show version
  marketscout help        Show this help

Flags:
  --plain                 Line-mode output instead of the TUI
  --verbose               Show tool arguments and run statistics
  --model <name>          Override the primary model
  --max-iterations <n>    Cap data-gathering iterations per question
  -v, --version           Show version
  -h, --help              Show help

Environment:
  ANTHROPIC_API_KEY       Anthropic API key (required)
  FMP_API_KEY             Financial Modeling Prep key (prices, financials)
  ALPHAVANTAGE_API_KEY    Alpha Vantage key (market news)

Config Files (in priority order):
  ./marketscout.yaml
  ./.marketscout/config.yaml
  ~/.config/marketscout/config.yaml
`)
}
