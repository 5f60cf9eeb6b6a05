package query

import (
	"testing"
	"time"
)

var testNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func TestAnalyzeCalculationQuery(t *testing.T) {
	ctx := analyzeAt("What was AAPL's return over the past 2 years?", testNow)

	if len(ctx.Tickers) != 1 || ctx.Tickers[0] != "AAPL" {
		t.Errorf("expected tickers [AAPL], got %v", ctx.Tickers)
	}
	if len(ctx.DateRanges) != 1 {
		t.Fatalf("expected 1 date range, got %d", len(ctx.DateRanges))
	}
	wantStart := testNow.AddDate(-2, 0, 0)
	if !ctx.DateRanges[0].Start.Equal(wantStart) {
		t.Errorf("range start = %v, expected %v", ctx.DateRanges[0].Start, wantStart)
	}
	if !ctx.DateRanges[0].End.Equal(testNow) {
		t.Errorf("range end = %v, expected %v", ctx.DateRanges[0].End, testNow)
	}
	if !ctx.RequiresFullData {
		t.Error("expected RequiresFullData=true (calculation keyword present)")
	}
}

func TestExtractYears(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected []int
	}{
		{"single year", "revenue in 2023", []int{2023}},
		{"multiple years sorted", "compare 2024 and 2021", []int{2021, 2024}},
		{"fiscal shorthand 2-digit", "earnings for FY23", []int{2023}},
		{"fiscal shorthand 4-digit", "guidance for FY2024", []int{2024}},
		{"fiscal maps to 1900s", "back in FY85", []int{1985}},
		{"out of window ignored", "founded in 1975", nil},
		{"upper bound", "projections for 2039", []int{2039}},
		{"beyond upper bound", "projections for 2040", nil},
		{"dedup", "2022 vs 2022", []int{2022}},
		{"none", "how are margins trending", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractYears(tt.query)
			if len(got) != len(tt.expected) {
				t.Fatalf("extractYears(%q) = %v, expected %v", tt.query, got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("extractYears(%q) = %v, expected %v", tt.query, got, tt.expected)
				}
			}
		})
	}
}

func TestExtractDateRanges(t *testing.T) {
	t.Run("explicit from-to ISO", func(t *testing.T) {
		ranges := extractDateRanges("prices from 2023-01-15 to 2024-06-30", testNow)
		if len(ranges) != 1 {
			t.Fatalf("expected 1 range, got %d", len(ranges))
		}
		if ranges[0].Start.Format("2006-01-02") != "2023-01-15" {
			t.Errorf("start = %v", ranges[0].Start)
		}
		if ranges[0].End.Format("2006-01-02") != "2024-06-30" {
			t.Errorf("end = %v", ranges[0].End)
		}
	})

	t.Run("between bare years", func(t *testing.T) {
		ranges := extractDateRanges("revenue between 2020 and 2023", testNow)
		if len(ranges) != 1 {
			t.Fatalf("expected 1 range, got %d", len(ranges))
		}
		if ranges[0].Start.Year() != 2020 || ranges[0].Start.Month() != time.January || ranges[0].Start.Day() != 1 {
			t.Errorf("bare year should resolve to Jan 1, got %v", ranges[0].Start)
		}
		if ranges[0].End.Year() != 2023 {
			t.Errorf("end year = %d", ranges[0].End.Year())
		}
	})

	t.Run("long form dates", func(t *testing.T) {
		ranges := extractDateRanges("from January 5, 2024 to March 1, 2024", testNow)
		if len(ranges) != 1 {
			t.Fatalf("expected 1 range, got %d", len(ranges))
		}
		if ranges[0].Start.Day() != 5 {
			t.Errorf("start day = %d", ranges[0].Start.Day())
		}
	})

	t.Run("relative last N months", func(t *testing.T) {
		ranges := extractDateRanges("news from the last 6 months", testNow)
		if len(ranges) != 1 {
			t.Fatalf("expected 1 range, got %d", len(ranges))
		}
		if !ranges[0].Start.Equal(testNow.AddDate(0, -6, 0)) {
			t.Errorf("start = %v", ranges[0].Start)
		}
	})

	t.Run("relative past N weeks", func(t *testing.T) {
		ranges := extractDateRanges("past 3 weeks of trading", testNow)
		if len(ranges) != 1 {
			t.Fatalf("expected 1 range, got %d", len(ranges))
		}
		if !ranges[0].Start.Equal(testNow.AddDate(0, 0, -21)) {
			t.Errorf("start = %v", ranges[0].Start)
		}
	})

	t.Run("inverted range rejected", func(t *testing.T) {
		ranges := extractDateRanges("from 2024-06-30 to 2023-01-15", testNow)
		if len(ranges) != 0 {
			t.Errorf("expected no ranges, got %v", ranges)
		}
	})
}

func TestExtractTimePeriods(t *testing.T) {
	tests := []struct {
		query    string
		expected []string
	}{
		{"what is the YTD performance", []string{"ytd"}},
		{"TTM revenue please", []string{"ttm"}},
		{"last quarter results", []string{"last quarter"}},
		{"Q3 earnings", []string{"q3"}},
		{"all-time high", []string{"all-time"}},
		{"growth since inception", []string{"since inception"}},
		{"5-year chart", []string{"5-year"}},
		{"what happened this week", []string{"this week"}},
		{"nothing temporal here", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := extractTimePeriods(tt.query)
			if len(got) != len(tt.expected) {
				t.Fatalf("extractTimePeriods(%q) = %v, expected %v", tt.query, got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("extractTimePeriods(%q) = %v, expected %v", tt.query, got, tt.expected)
				}
			}
		})
	}
}

func TestExtractTickers(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{"whitelisted ticker", "how is MSFT doing", []string{"MSFT"}},
		{"excluded word", "THE CEO announced GDP numbers", nil},
		{"dollar prefix bypasses whitelist", "thoughts on $ZZZZ", []string{"ZZZZ"}},
		{"dollar and bare mixed", "$RBLX vs NVDA", []string{"RBLX", "NVDA"}},
		{"unknown bare token ignored", "check XQJW today", nil},
		{"dedup", "AAPL and AAPL again", []string{"AAPL"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractTickers(tt.query)
			if len(got) != len(tt.expected) {
				t.Fatalf("extractTickers(%q) = %v, expected %v", tt.query, got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("extractTickers(%q) = %v, expected %v", tt.query, got, tt.expected)
				}
			}
		})
	}
}

func TestRequiresFullData(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected bool
	}{
		{"calculation keyword", "calculate the CAGR for MSFT", true},
		{"multiple years", "compare 2021 and 2024 revenue", true},
		{"explicit range", "prices from 2023-01-01 to 2023-12-31", true},
		{"year-scale period", "show the 10-year chart", true},
		{"plain lookup", "current price of AAPL", false},
		{"short period", "news from this week", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := analyzeAt(tt.query, testNow)
			if ctx.RequiresFullData != tt.expected {
				t.Errorf("RequiresFullData for %q = %v, expected %v", tt.query, ctx.RequiresFullData, tt.expected)
			}
		})
	}
}

func TestIsDateRelevant(t *testing.T) {
	restore := timeNow
	timeNow = func() time.Time { return testNow }
	defer func() { timeNow = restore }()

	noAnchors := Context{}
	withYear := Context{Years: []int{2020}}
	withRange := Context{DateRanges: []DateRange{{
		Start: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC),
	}}}

	tests := []struct {
		name     string
		dateStr  string
		ctx      Context
		expected bool
	}{
		{"unparseable kept", "not a date", noAnchors, true},
		{"empty kept", "", noAnchors, true},
		{"recent without anchors", "2025-06-01", noAnchors, true},
		{"old without anchors", "2019-06-01", noAnchors, false},
		{"boundary of 3-year window", "2023-01-01", noAnchors, true},
		{"within tolerance of year", "2021-03-01", withYear, true},
		{"outside tolerance of year", "2024-03-01", withYear, false},
		{"inside range", "2022-05-01", withRange, true},
		{"within range tolerance", "2023-05-01", withRange, true},
		{"outside range tolerance", "2025-05-01", withRange, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsDateRelevant(tt.dateStr, tt.ctx, 1)
			if got != tt.expected {
				t.Errorf("IsDateRelevant(%q) = %v, expected %v", tt.dateStr, got, tt.expected)
			}
		})
	}
}

func TestMinRelevantDate(t *testing.T) {
	restore := timeNow
	timeNow = func() time.Time { return testNow }
	defer func() { timeNow = restore }()

	t.Run("default two years back", func(t *testing.T) {
		got := MinRelevantDate(Context{})
		if !got.Equal(testNow.AddDate(-2, 0, 0)) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("earliest year wins", func(t *testing.T) {
		got := MinRelevantDate(Context{Years: []int{2019, 2023}})
		if got.Year() != 2019 || got.Month() != time.January {
			t.Errorf("got %v", got)
		}
	})

	t.Run("earliest range start wins", func(t *testing.T) {
		start := time.Date(2018, 6, 1, 0, 0, 0, 0, time.UTC)
		got := MinRelevantDate(Context{
			Years:      []int{2020},
			DateRanges: []DateRange{{Start: start, End: testNow}},
		})
		if !got.Equal(start) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("recent anchors do not pull forward", func(t *testing.T) {
		got := MinRelevantDate(Context{Years: []int{2026}})
		if !got.Equal(testNow.AddDate(-2, 0, 0)) {
			t.Errorf("got %v", got)
		}
	})
}
