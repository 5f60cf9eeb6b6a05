package tools

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	scouterr "github.com/abdul-hamid-achik/marketscout/internal/errors"
)

const alphaVantageBaseURL = "https://www.alphavantage.co"

// avTimeLayout is Alpha Vantage's compact timestamp format
const avTimeLayout = "20060102T150405"

// MarketNewsTool fetches market news and sentiment for tickers or topics
type MarketNewsTool struct {
	ds      *dataSource
	apiKey  string
	baseURL string
}

// NewMarketNewsTool creates the tool with the given Alpha Vantage API key
func NewMarketNewsTool(apiKey string) *MarketNewsTool {
	return &MarketNewsTool{
		ds:      newDataSource("market_news", 1),
		apiKey:  apiKey,
		baseURL: alphaVantageBaseURL,
	}
}

func (t *MarketNewsTool) Name() string {
	return "market_news"
}

func (t *MarketNewsTool) Description() string {
	return "Get recent market news articles with sentiment scores. Filter by ticker symbols or a topic (e.g. technology, earnings, ipo). Articles are sorted newest first."
}

func (t *MarketNewsTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tickers": map[string]any{
				"type":        "string",
				"description": "Comma-separated ticker symbols to filter by, e.g. AAPL,MSFT (optional).",
			},
			"topic": map[string]any{
				"type":        "string",
				"description": "News topic to filter by, e.g. technology, earnings, ipo (optional).",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Maximum number of articles to return (1-50, default: 20).",
				"default":     20,
				"minimum":     1,
				"maximum":     50,
			},
		},
	}
}

func (t *MarketNewsTool) Execute(ctx context.Context, input map[string]any) (string, error) {
	q := url.Values{}
	q.Set("function", "NEWS_SENTIMENT")
	q.Set("apikey", t.apiKey)
	q.Set("sort", "LATEST")

	if tickers, ok := input["tickers"].(string); ok && tickers != "" {
		q.Set("tickers", strings.ToUpper(strings.ReplaceAll(tickers, " ", "")))
	}
	if topic, ok := input["topic"].(string); ok && topic != "" {
		q.Set("topics", strings.ToLower(strings.TrimSpace(topic)))
	}

	limit := 20
	if l, ok := input["limit"].(float64); ok {
		limit = int(l)
		if limit < 1 {
			limit = 1
		} else if limit > 50 {
			limit = 50
		}
	}
	q.Set("limit", fmt.Sprintf("%d", limit))

	endpoint := fmt.Sprintf("%s/query?%s", t.baseURL, q.Encode())

	body, err := t.ds.get(ctx, endpoint)
	if err != nil {
		return "", err
	}

	if msg := gjson.Get(body, "Error Message"); msg.Exists() {
		return "", scouterr.ToolExecutionFailed(t.Name(), fmt.Errorf("%s", msg.String()))
	}
	if note := gjson.Get(body, "Note"); note.Exists() {
		// The provider signals rate limiting through a Note payload
		return "", scouterr.DataSourceError(t.Name(), 429, fmt.Errorf("%s", note.String()))
	}

	feed := gjson.Get(body, "feed")
	if !feed.Exists() {
		return "[]", nil
	}

	out := "[]"
	count := 0
	feed.ForEach(func(_, article gjson.Result) bool {
		if count >= limit {
			return false
		}
		row := "{}"
		row, _ = sjson.Set(row, "title", article.Get("title").String())
		row, _ = sjson.Set(row, "publishedDate", normalizeNewsDate(article.Get("time_published").String()))
		row, _ = sjson.Set(row, "summary", article.Get("summary").String())
		row, _ = sjson.Set(row, "source", article.Get("source").String())
		row, _ = sjson.Set(row, "source_url", article.Get("url").String())
		if img := article.Get("banner_image"); img.Exists() && img.String() != "" {
			row, _ = sjson.Set(row, "banner_image", img.String())
		}
		if sentiment := article.Get("overall_sentiment_label"); sentiment.Exists() {
			row, _ = sjson.Set(row, "sentiment", sentiment.String())
		}
		out, _ = sjson.SetRaw(out, "-1", row)
		count++
		return true
	})

	return out, nil
}

// normalizeNewsDate converts the provider's compact timestamp to ISO date
// format. Unparseable values pass through unchanged.
func normalizeNewsDate(s string) string {
	ts, err := time.Parse(avTimeLayout, s)
	if err != nil {
		return s
	}
	return ts.Format("2006-01-02")
}
