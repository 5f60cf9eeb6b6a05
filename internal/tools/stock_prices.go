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

const fmpBaseURL = "https://financialmodelingprep.com/api/v3"

// StockPricesTool fetches daily price history for a ticker
type StockPricesTool struct {
	ds      *dataSource
	apiKey  string
	baseURL string
}

// NewStockPricesTool creates the tool with the given FMP API key
func NewStockPricesTool(apiKey string) *StockPricesTool {
	return &StockPricesTool{
		ds:      newDataSource("stock_prices", 4),
		apiKey:  apiKey,
		baseURL: fmpBaseURL,
	}
}

func (t *StockPricesTool) Name() string {
	return "stock_prices"
}

func (t *StockPricesTool) Description() string {
	return "Get daily historical stock prices (open, high, low, close, volume) for a stock ticker. Results are sorted newest first. Use the from/to parameters to bound the date range when the question concerns a specific period."
}

func (t *StockPricesTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"symbol": map[string]any{
				"type":        "string",
				"description": "Stock ticker symbol, e.g. AAPL.",
			},
			"from": map[string]any{
				"type":        "string",
				"description": "Start date in YYYY-MM-DD format (optional).",
			},
			"to": map[string]any{
				"type":        "string",
				"description": "End date in YYYY-MM-DD format (optional).",
			},
		},
		"required": []string{"symbol"},
	}
}

func (t *StockPricesTool) Execute(ctx context.Context, input map[string]any) (string, error) {
	symbol, ok := input["symbol"].(string)
	if !ok || symbol == "" {
		return "", fmt.Errorf("symbol is required")
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	q := url.Values{}
	q.Set("apikey", t.apiKey)
	if from, ok := input["from"].(string); ok && from != "" {
		q.Set("from", from)
	}
	if to, ok := input["to"].(string); ok && to != "" {
		q.Set("to", to)
	}

	endpoint := fmt.Sprintf("%s/historical-price-full/%s?%s", t.baseURL, url.PathEscape(symbol), q.Encode())

	body, err := t.ds.get(ctx, endpoint)
	if err != nil {
		return "", err
	}

	historical := gjson.Get(body, "historical")
	if !historical.Exists() {
		if msg := gjson.Get(body, "Error Message"); msg.Exists() {
			return "", scouterr.ToolExecutionFailed(t.Name(), fmt.Errorf("%s", msg.String()))
		}
		return "[]", nil
	}

	// Normalize to a flat array the model and compactor both understand
	out := "[]"
	historical.ForEach(func(_, bar gjson.Result) bool {
		row := "{}"
		row, _ = sjson.Set(row, "date", bar.Get("date").String())
		row, _ = sjson.Set(row, "open", bar.Get("open").Float())
		row, _ = sjson.Set(row, "high", bar.Get("high").Float())
		row, _ = sjson.Set(row, "low", bar.Get("low").Float())
		row, _ = sjson.Set(row, "close", bar.Get("close").Float())
		row, _ = sjson.Set(row, "volume", bar.Get("volume").Int())
		out, _ = sjson.SetRaw(out, "-1", row)
		return true
	})

	return out, nil
}
