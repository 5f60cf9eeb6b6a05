package compact

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/abdul-hamid-achik/marketscout/internal/query"
)

func opts(mutate func(*Options)) Options {
	o := DefaultOptions()
	if mutate != nil {
		mutate(&o)
	}
	return o
}

func TestNewestFirstTruncation(t *testing.T) {
	data := `{"prices":[
		{"date":"2026-01-20","close":101},
		{"date":"2026-01-19","close":100},
		{"date":"2026-01-18","close":99},
		{"date":"2026-01-17","close":98},
		{"date":"2026-01-16","close":97},
		{"date":"2026-01-15","close":96}
	]}`

	out := JSON(data, opts(func(o *Options) { o.MaxArrayLength = 3 }))

	var parsed struct {
		Prices []struct {
			Date string `json:"date"`
		} `json:"prices"`
	}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	if len(parsed.Prices) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(parsed.Prices))
	}
	want := []string{"2026-01-20", "2026-01-19", "2026-01-18"}
	for i, w := range want {
		if parsed.Prices[i].Date != w {
			t.Errorf("prices[%d].date = %q, expected %q", i, parsed.Prices[i].Date, w)
		}
	}
}

func TestOldestFirstTruncationKeepsTail(t *testing.T) {
	data := `{"prices":[
		{"date":"2026-01-15","close":96},
		{"date":"2026-01-16","close":97},
		{"date":"2026-01-17","close":98},
		{"date":"2026-01-18","close":99},
		{"date":"2026-01-19","close":100},
		{"date":"2026-01-20","close":101}
	]}`

	out := JSON(data, opts(func(o *Options) { o.MaxArrayLength = 3 }))

	var parsed struct {
		Prices []struct {
			Date string `json:"date"`
		} `json:"prices"`
	}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	want := []string{"2026-01-18", "2026-01-19", "2026-01-20"}
	if len(parsed.Prices) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(parsed.Prices))
	}
	for i, w := range want {
		if parsed.Prices[i].Date != w {
			t.Errorf("prices[%d].date = %q, expected %q", i, parsed.Prices[i].Date, w)
		}
	}
}

func TestUnknownOrderKeepsHead(t *testing.T) {
	data := `[{"name":"a"},{"name":"b"},{"name":"c"},{"name":"d"}]`
	out := JSON(data, opts(func(o *Options) { o.MaxArrayLength = 2 }))

	var parsed []map[string]string
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(parsed) != 2 || parsed[0]["name"] != "a" || parsed[1]["name"] != "b" {
		t.Errorf("expected head slice [a b], got %v", parsed)
	}
}

func TestRemoveVerboseFields(t *testing.T) {
	data := `{"ticker":"AAPL","price":178.5,"reportedCurrency":"USD","acceptedDate":"2026-02-01","cik":"0000320193"}`
	out := JSON(data, opts(nil))

	var parsed map[string]any
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, gone := range []string{"reportedCurrency", "acceptedDate", "cik"} {
		if _, ok := parsed[gone]; ok {
			t.Errorf("field %q should have been removed", gone)
		}
	}
	for _, kept := range []string{"ticker", "price"} {
		if _, ok := parsed[kept]; !ok {
			t.Errorf("field %q should have been kept", kept)
		}
	}
}

func TestVerboseFieldsKeptWhenDisabled(t *testing.T) {
	data := `{"cik":"0000320193","ticker":"AAPL"}`
	out := JSON(data, opts(func(o *Options) { o.RemoveVerboseFields = false }))
	if !strings.Contains(out, "cik") {
		t.Errorf("cik should survive with RemoveVerboseFields=false: %s", out)
	}
}

func TestTruncateURLs(t *testing.T) {
	long := "https://cdn.example.com/media/images/2026/02/really/deep/path/banner-image-with-a-long-name.png?size=large&v=2"
	data := `{"banner_image":"` + long + `","source_url":"` + long + `","url":"` + long + `"}`

	out := JSON(data, opts(nil))

	var parsed map[string]string
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed["banner_image"] != "https://cdn.example.com/..." {
		t.Errorf("banner_image = %q", parsed["banner_image"])
	}
	if parsed["source_url"] != "https://cdn.example.com/..." {
		t.Errorf("source_url = %q", parsed["source_url"])
	}
	// A generic url field is never truncated.
	if parsed["url"] != long {
		t.Errorf("url should be untouched, got %q", parsed["url"])
	}
}

func TestTruncateNonURLLongText(t *testing.T) {
	long := strings.Repeat("x y ", 50) // spaces prevent URL parsing from yielding a host
	data, _ := json.Marshal(map[string]string{"banner_image": long})

	out := JSON(string(data), opts(nil))

	var parsed map[string]string
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	want := long[:100] + "..."
	if parsed["banner_image"] != want {
		t.Errorf("banner_image = %q, expected 100-char prefix", parsed["banner_image"])
	}
}

func TestQueryFilterDropsIrrelevantDates(t *testing.T) {
	qctx := query.Analyze("compare revenue between 2019 and 2020")
	data := `[
		{"fiscalDateEnding":"2020-12-31","revenue":1},
		{"fiscalDateEnding":"2019-12-31","revenue":2},
		{"fiscalDateEnding":"2012-12-31","revenue":3},
		{"fiscalDateEnding":"2011-12-31","revenue":4}
	]`

	out := JSON(data, opts(func(o *Options) { o.Query = &qctx }))

	var parsed []map[string]any
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("expected 2 relevant elements, got %d: %s", len(parsed), out)
	}
}

func TestQueryFilterNeverEmptiesArray(t *testing.T) {
	qctx := query.Analyze("what happened in 2019")
	var elems []string
	for i := 0; i < 30; i++ {
		elems = append(elems, `{"date":"1995-01-01","v":`+strings.Repeat("1", 1)+`}`)
	}
	data := "[" + strings.Join(elems, ",") + "]"

	out := JSON(data, opts(func(o *Options) {
		o.Query = &qctx
		o.MaxArrayLength = 100
	}))

	var parsed []map[string]any
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(parsed) != 20 {
		t.Errorf("expected filter floor of 20 elements, got %d", len(parsed))
	}
}

func TestNonJSONHardTruncation(t *testing.T) {
	raw := strings.Repeat("plain text result ", 100)
	out := JSON(raw, opts(func(o *Options) { o.MaxTokens = 10 }))

	if !strings.HasSuffix(out, "...[truncated]") {
		t.Errorf("expected truncation marker, got %q", out)
	}
	if len(out) > 35+len("...[truncated]") {
		t.Errorf("output too long: %d chars", len(out))
	}
}

func TestHardTruncationKeepsValidUTF8(t *testing.T) {
	// Multi-byte runes must not be split at the cut point
	raw := strings.Repeat("日本語テキスト", 200)
	for budget := 1; budget <= 5; budget++ {
		out := hardTruncate(raw, budget)
		if !utf8.ValidString(out) {
			t.Errorf("budget %d produced invalid UTF-8: %q", budget, out)
		}
		if !strings.HasSuffix(out, "...[truncated]") {
			t.Errorf("budget %d missing truncation marker", budget)
		}
	}
}

func TestShortNonJSONPassesThrough(t *testing.T) {
	out := JSON("all good", opts(nil))
	if out != "all good" {
		t.Errorf("got %q", out)
	}
}

func TestShrinkLoopConverges(t *testing.T) {
	var elems []string
	for i := 0; i < 200; i++ {
		elems = append(elems, `{"name":"item","description":"`+strings.Repeat("d", 80)+`"}`)
	}
	data := "[" + strings.Join(elems, ",") + "]"

	out := JSON(data, opts(func(o *Options) {
		o.MaxTokens = 300
		o.MaxArrayLength = 50
	}))

	// Either the shrink loop converged to valid JSON within budget, or the
	// hard fallback kicked in; both must respect the character ceiling.
	if len(out) > int(300*3.5)+len("...[truncated]") {
		t.Errorf("output exceeds budget ceiling: %d chars", len(out))
	}
}

func TestArraysNeverExceedCap(t *testing.T) {
	data := `{"a":[1,2,3,4,5,6,7,8],"b":{"c":[[1,2,3,4,5,6],[9,8,7,6,5,4]]}}`
	out := JSON(data, opts(func(o *Options) { o.MaxArrayLength = 4 }))

	var parsed map[string]any
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	var walk func(v any)
	walk = func(v any) {
		switch val := v.(type) {
		case []any:
			if len(val) > 4 {
				t.Errorf("array of %d elements exceeds cap", len(val))
			}
			for _, e := range val {
				walk(e)
			}
		case map[string]any:
			for _, e := range val {
				walk(e)
			}
		}
	}
	walk(parsed)
}

func TestIdempotentOnCompactInput(t *testing.T) {
	data := `{"prices":[{"date":"2026-01-20","close":101},{"date":"2026-01-19","close":100}],"ticker":"AAPL"}`
	o := opts(nil)

	once := JSON(data, o)
	twice := JSON(once, o)
	if once != twice {
		t.Errorf("not idempotent:\nonce:  %s\ntwice: %s", once, twice)
	}
}

func TestMinifyDefault(t *testing.T) {
	out := JSON(`{"a": 1}`, opts(nil))
	if out != `{"a":1}` {
		t.Errorf("expected minified output, got %q", out)
	}
}

func TestIndentedWhenMinifyOff(t *testing.T) {
	out := JSON(`{"a":1}`, opts(func(o *Options) { o.Minify = false }))
	if !strings.Contains(out, "\n") {
		t.Errorf("expected indented output, got %q", out)
	}
}
