package agent

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a market research assistant. You answer questions about stocks, company fundamentals, and market news.

You have access to market data tools. Call them to gather the data a question needs; when you have enough, reply with your analysis in plain text instead of calling more tools. Prefer bounded date ranges when the question concerns a specific period. Cite concrete figures from the data you gathered.`

const noToolsAnswer = "No market data sources are configured. Set FMP_API_KEY and/or ALPHAVANTAGE_API_KEY to enable data tools."

const fallbackAnswer = "I gathered market data but could not compose a final answer. Try narrowing the question or asking again."

// buildIterationPrompt assembles the prompt for one loop iteration: prior
// queries for context, the question, and everything gathered so far.
func buildIterationPrompt(query string, history []string, historyLimit int, scratchpad []string) string {
	var sb strings.Builder

	if len(history) > 0 && historyLimit > 0 {
		sb.WriteString("Earlier questions in this session:\n")
		start := 0
		if len(history) > historyLimit {
			start = len(history) - historyLimit
			fmt.Fprintf(&sb, "(%d earlier questions omitted)\n", start)
		}
		for _, q := range history[start:] {
			fmt.Fprintf(&sb, "- %s\n", q)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "Question: %s\n", query)

	if len(scratchpad) > 0 {
		sb.WriteString("\nFindings so far:\n")
		for _, line := range scratchpad {
			fmt.Fprintf(&sb, "%s\n", line)
		}
		sb.WriteString("\nGather more data with tools if needed, or reply with your analysis.")
	}

	return sb.String()
}

// buildSummaryPrompt asks the summary model for a one-sentence digest of a
// tool result, scoped to the question being answered
func buildSummaryPrompt(query, description, data string) string {
	return fmt.Sprintf(`Summarize in one sentence the facts in this %s result that matter for answering: %q

%s`, description, query, data)
}

// buildFinalAnswerPrompt assembles the prompt for the final answer once data
// gathering is finished
func buildFinalAnswerPrompt(query string, compacted string) string {
	return fmt.Sprintf(`Question: %s

Data gathered:

%s

Answer the question using this data. Cite concrete figures.`, query, compacted)
}
