package tools

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	scouterr "github.com/abdul-hamid-achik/marketscout/internal/errors"
)

// CompanyFinancialsTool fetches income statements for a ticker
type CompanyFinancialsTool struct {
	ds      *dataSource
	apiKey  string
	baseURL string
}

// NewCompanyFinancialsTool creates the tool with the given FMP API key
func NewCompanyFinancialsTool(apiKey string) *CompanyFinancialsTool {
	return &CompanyFinancialsTool{
		ds:      newDataSource("company_financials", 4),
		apiKey:  apiKey,
		baseURL: fmpBaseURL,
	}
}

func (t *CompanyFinancialsTool) Name() string {
	return "company_financials"
}

func (t *CompanyFinancialsTool) Description() string {
	return "Get income statements for a company (revenue, gross profit, operating income, net income, EPS). Returns one record per fiscal period, newest first. Use period=quarter for quarterly statements."
}

func (t *CompanyFinancialsTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"symbol": map[string]any{
				"type":        "string",
				"description": "Stock ticker symbol, e.g. MSFT.",
			},
			"period": map[string]any{
				"type":        "string",
				"description": "Reporting period.",
				"enum":        []string{"annual", "quarter"},
				"default":     "annual",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Number of periods to return (1-40, default: 8).",
				"default":     8,
				"minimum":     1,
				"maximum":     40,
			},
		},
		"required": []string{"symbol"},
	}
}

func (t *CompanyFinancialsTool) Execute(ctx context.Context, input map[string]any) (string, error) {
	symbol, ok := input["symbol"].(string)
	if !ok || symbol == "" {
		return "", fmt.Errorf("symbol is required")
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	period := "annual"
	if p, ok := input["period"].(string); ok && (p == "annual" || p == "quarter") {
		period = p
	}

	limit := 8
	if l, ok := input["limit"].(float64); ok {
		limit = int(l)
		if limit < 1 {
			limit = 1
		} else if limit > 40 {
			limit = 40
		}
	}

	q := url.Values{}
	q.Set("apikey", t.apiKey)
	q.Set("period", period)
	q.Set("limit", fmt.Sprintf("%d", limit))

	endpoint := fmt.Sprintf("%s/income-statement/%s?%s", t.baseURL, url.PathEscape(symbol), q.Encode())

	body, err := t.ds.get(ctx, endpoint)
	if err != nil {
		return "", err
	}

	parsed := gjson.Parse(body)
	if !parsed.IsArray() {
		if msg := gjson.Get(body, "Error Message"); msg.Exists() {
			return "", scouterr.ToolExecutionFailed(t.Name(), fmt.Errorf("%s", msg.String()))
		}
		return "[]", nil
	}

	// Keep the reporting metadata the provider sends; downstream compaction
	// decides what survives into the model context.
	fields := []string{
		"date", "fiscalDateEnding", "reportedCurrency", "cik",
		"fillingDate", "acceptedDate", "period", "link", "finalLink",
		"revenue", "grossProfit", "operatingIncome", "netIncome",
		"eps", "epsdiluted", "ebitda",
	}

	out := "[]"
	parsed.ForEach(func(_, stmt gjson.Result) bool {
		row := "{}"
		for _, f := range fields {
			if v := stmt.Get(f); v.Exists() {
				row, _ = sjson.Set(row, f, v.Value())
			}
		}
		out, _ = sjson.SetRaw(out, "-1", row)
		return true
	})

	return out, nil
}
