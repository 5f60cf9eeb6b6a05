package compact

import (
	"strings"
	"testing"
)

func TestResultsHeadingsAndOrder(t *testing.T) {
	results := []Result{
		{Description: "Daily prices for AAPL", Data: `{"a":1}`},
		{Description: "Recent news for AAPL", Data: `{"b":2}`},
	}

	out := Results(results, 1000, DefaultOptions())

	first := strings.Index(out, "### Daily prices for AAPL")
	second := strings.Index(out, "### Recent news for AAPL")
	if first == -1 || second == -1 {
		t.Fatalf("missing headings:\n%s", out)
	}
	if first > second {
		t.Error("results rendered out of order")
	}
	if !strings.Contains(out, `{"a":1}`) || !strings.Contains(out, `{"b":2}`) {
		t.Errorf("compacted data missing:\n%s", out)
	}
}

func TestResultsEmpty(t *testing.T) {
	if out := Results(nil, 1000, DefaultOptions()); out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
}

func TestResultsWeightsFavorLaterItems(t *testing.T) {
	big := `["` + strings.Repeat("x", 4000) + `"]`
	results := []Result{
		{Description: "first", Data: big},
		{Description: "last", Data: big},
	}

	out := Results(results, 300, DefaultOptions())

	// Budget splits 1:2, so the later result keeps more characters.
	sections := strings.Split(out, "### ")
	if len(sections) != 3 {
		t.Fatalf("expected 2 sections, got %d", len(sections)-1)
	}
	if len(sections[1]) >= len(sections[2]) {
		t.Errorf("later result should receive the larger share: first=%d last=%d",
			len(sections[1]), len(sections[2]))
	}
}

func TestDataSummaryArray(t *testing.T) {
	out := DataSummary(`[{"v":1},{"v":2},{"v":3},{"v":4},{"v":5}]`)
	if !strings.Contains(out, "Array with 5 elements") {
		t.Errorf("missing count: %q", out)
	}
	if !strings.Contains(out, `{"v":3}`) || !strings.Contains(out, `{"v":5}`) {
		t.Errorf("expected last 3 elements in summary: %q", out)
	}
	if strings.Contains(out, `{"v":1}`) {
		t.Errorf("head elements should not appear: %q", out)
	}
}

func TestDataSummaryObject(t *testing.T) {
	out := DataSummary(`{"symbol":"AAPL","open":1,"high":2,"low":3,"close":4,"volume":5,"k7":7,"k8":8,"k9":9,"ka":10,"kb":11,"kc":12}`)
	if !strings.HasPrefix(out, "Object with keys: ") {
		t.Fatalf("unexpected prefix: %q", out)
	}
	if !strings.Contains(out, "and 2 more") {
		t.Errorf("expected overflow note for 12 keys: %q", out)
	}
}

func TestDataSummaryNonJSON(t *testing.T) {
	long := strings.Repeat("log line\n", 100)
	out := DataSummary(long)
	if len(out) > 310 {
		t.Errorf("raw summary too long: %d", len(out))
	}
	if !strings.HasSuffix(out, "...") {
		t.Errorf("expected ellipsis: %q", out)
	}
}
