package query

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// timeNow is a hook for tests; everything in this package derives "now" from it.
var timeNow = time.Now

// DateRange is an inclusive time span extracted from a query.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Context holds the temporal and entity signals extracted from a query.
// It is computed once per query, is immutable afterwards, and is cheap
// enough to recompute on every compaction request.
type Context struct {
	Years               []int
	DateRanges          []DateRange
	TimePeriods         []string
	Tickers             []string
	RequiresFullData    bool
	CalculationKeywords []string
}

var (
	yearRe       = regexp.MustCompile(`\b(19[89]\d|20[0-3]\d)\b`)
	fiscalYearRe = regexp.MustCompile(`\bFY\s?(\d{2,4})\b`)

	// datePart matches a single range endpoint: ISO date, long-form date,
	// or a bare year (resolved to January 1).
	datePart = `(\d{4}-\d{2}-\d{2}|[A-Za-z]+\s+\d{1,2},?\s+\d{4}|\d{4})`

	explicitRangeRe = regexp.MustCompile(`(?i)\b(?:from|between)\s+` + datePart + `\s+(?:to|and|through)\s+` + datePart)
	relativeRangeRe = regexp.MustCompile(`(?i)\b(?:past|last)\s+(\d+)\s+(year|month|week|day)s?\b`)

	timePeriodRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bYTD\b|\byear[\s-]to[\s-]date\b`),
		regexp.MustCompile(`(?i)\bMTD\b|\bmonth[\s-]to[\s-]date\b`),
		regexp.MustCompile(`(?i)\bQTD\b|\bquarter[\s-]to[\s-]date\b`),
		regexp.MustCompile(`(?i)\bTTM\b|\btrailing\s+twelve\s+months\b`),
		regexp.MustCompile(`(?i)\blast\s+quarter\b`),
		regexp.MustCompile(`(?i)\bQ[1-4]\b`),
		regexp.MustCompile(`(?i)\ball[\s-]time\b`),
		regexp.MustCompile(`(?i)\bsince\s+inception\b`),
		regexp.MustCompile(`(?i)\b\d+[\s-]year\b`),
		regexp.MustCompile(`(?i)\byesterday\b|\btoday\b|\bthis\s+week\b|\bthis\s+month\b|\bthis\s+year\b`),
	}

	tickerCandidateRe = regexp.MustCompile(`\b[A-Z]{1,5}\b`)
	dollarTickerRe    = regexp.MustCompile(`\$([A-Z]{1,5})\b`)
)

// calculationKeywords trigger RequiresFullData: answering these well needs
// complete series, not a truncated sample.
var calculationKeywords = []string{
	"return", "cagr", "volatility", "sharpe", "correlation", "drawdown",
	"ytd", "growth rate", "performance", "average", "percent change",
	"moving average", "beta", "standard deviation",
}

// knownTickers is a whitelist of common symbols; bare uppercase words are
// only treated as tickers when they appear here. $-prefixed symbols bypass
// the whitelist entirely.
var knownTickers = map[string]bool{
	"AAPL": true, "MSFT": true, "GOOGL": true, "GOOG": true, "AMZN": true,
	"META": true, "NVDA": true, "TSLA": true, "BRK": true, "JPM": true,
	"V": true, "MA": true, "UNH": true, "HD": true, "PG": true,
	"XOM": true, "JNJ": true, "AVGO": true, "LLY": true, "WMT": true,
	"KO": true, "PEP": true, "MRK": true, "COST": true, "ABBV": true,
	"CRM": true, "AMD": true, "NFLX": true, "INTC": true, "ORCL": true,
	"DIS": true, "CSCO": true, "TMO": true, "ADBE": true, "QCOM": true,
	"IBM": true, "GE": true, "CAT": true, "BA": true, "NKE": true,
	"BAC": true, "WFC": true, "GS": true, "MS": true, "C": true,
	"T": true, "VZ": true, "PFE": true, "BMY": true, "GILD": true,
	"AMGN": true, "MRNA": true, "F": true, "GM": true, "UBER": true,
	"ABNB": true, "SHOP": true, "PLTR": true, "SNOW": true, "COIN": true,
	"PYPL": true, "SQ": true, "BABA": true, "TSM": true, "ASML": true,
	"SPY": true, "QQQ": true, "VTI": true, "VOO": true, "DIA": true,
	"IWM": true, "GLD": true, "SLV": true, "TLT": true, "BND": true,
}

// tickerExclusions are common uppercase words that collide with the 1-5
// letter ticker pattern and must never be treated as symbols.
var tickerExclusions = map[string]bool{
	"THE": true, "A": true, "I": true, "AND": true, "OR": true, "FOR": true,
	"NOT": true, "WAS": true, "ARE": true, "HAS": true, "HAD": true,
	"CAN": true, "DID": true, "HOW": true, "WHO": true, "WHY": true,
	"WHAT": true, "WHEN": true, "ALL": true, "NEW": true, "TOP": true,
	"VS": true, "CEO": true, "CFO": true, "CTO": true, "GDP": true,
	"IPO": true, "ETF": true, "API": true, "USA": true, "USD": true,
	"EUR": true, "GBP": true, "YTD": true, "MTD": true, "QTD": true,
	"TTM": true, "AI": true, "ML": true, "IT": true, "US": true,
	"UK": true, "EU": true, "Q1": true, "Q2": true, "Q3": true, "Q4": true,
	"FY": true, "PE": true, "EPS": true, "ROI": true, "ROE": true,
	"SEC": true, "NYSE": true, "CAGR": true, "OHLCV": true,
}

// Analyze extracts temporal and entity context from a free-text query.
// It is pure and deterministic for a fixed clock.
func Analyze(q string) Context {
	return analyzeAt(q, timeNow())
}

func analyzeAt(q string, now time.Time) Context {
	ctx := Context{
		Years:               extractYears(q),
		DateRanges:          extractDateRanges(q, now),
		TimePeriods:         extractTimePeriods(q),
		Tickers:             extractTickers(q),
		CalculationKeywords: extractCalculationKeywords(q),
	}
	ctx.RequiresFullData = requiresFullData(ctx)
	return ctx
}

func extractYears(q string) []int {
	seen := make(map[int]bool)

	for _, m := range yearRe.FindAllString(q, -1) {
		y, err := strconv.Atoi(m)
		if err == nil {
			seen[y] = true
		}
	}

	// Fiscal-year shorthand: FY23, FY2024. Two-digit years below 50 map to
	// the 2000s, the rest to the 1900s.
	for _, m := range fiscalYearRe.FindAllStringSubmatch(q, -1) {
		y, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if y < 100 {
			if y < 50 {
				y += 2000
			} else {
				y += 1900
			}
		}
		seen[y] = true
	}

	if len(seen) == 0 {
		return nil
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func extractDateRanges(q string, now time.Time) []DateRange {
	var ranges []DateRange

	for _, m := range explicitRangeRe.FindAllStringSubmatch(q, -1) {
		start, okStart := parseDateToken(m[1])
		end, okEnd := parseDateToken(m[2])
		if okStart && okEnd && !end.Before(start) {
			ranges = append(ranges, DateRange{Start: start, End: end})
		}
	}

	for _, m := range relativeRangeRe.FindAllStringSubmatch(q, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			continue
		}
		var start time.Time
		switch strings.ToLower(m[2]) {
		case "year":
			start = now.AddDate(-n, 0, 0)
		case "month":
			start = now.AddDate(0, -n, 0)
		case "week":
			start = now.AddDate(0, 0, -7*n)
		case "day":
			start = now.AddDate(0, 0, -n)
		default:
			continue
		}
		ranges = append(ranges, DateRange{Start: start, End: now})
	}

	return ranges
}

// parseDateToken parses a range endpoint: ISO date, long-form date, or a
// bare year resolved to January 1.
func parseDateToken(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)

	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	for _, layout := range []string{"January 2, 2006", "January 2 2006", "Jan 2, 2006", "Jan 2 2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if y, err := strconv.Atoi(s); err == nil && y >= 1900 && y <= 2100 {
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

func extractTimePeriods(q string) []string {
	var periods []string
	seen := make(map[string]bool)
	for _, re := range timePeriodRes {
		for _, m := range re.FindAllString(q, -1) {
			norm := strings.ToLower(strings.Join(strings.Fields(m), " "))
			if !seen[norm] {
				seen[norm] = true
				periods = append(periods, norm)
			}
		}
	}
	return periods
}

func extractTickers(q string) []string {
	var tickers []string
	seen := make(map[string]bool)

	// $-prefixed symbols are explicit and always accepted.
	for _, m := range dollarTickerRe.FindAllStringSubmatch(q, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			tickers = append(tickers, m[1])
		}
	}

	for _, m := range tickerCandidateRe.FindAllString(q, -1) {
		if seen[m] || tickerExclusions[m] || !knownTickers[m] {
			continue
		}
		seen[m] = true
		tickers = append(tickers, m)
	}

	return tickers
}

func extractCalculationKeywords(q string) []string {
	lower := strings.ToLower(q)
	var found []string
	for _, kw := range calculationKeywords {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}
	return found
}

// requiresFullData reports whether a query likely needs complete series
// data rather than a truncated sample: any calculation intent, multiple
// years, an explicit range, or a year-scale period.
func requiresFullData(ctx Context) bool {
	if len(ctx.CalculationKeywords) > 0 {
		return true
	}
	if len(ctx.Years) > 1 {
		return true
	}
	if len(ctx.DateRanges) > 0 {
		return true
	}
	for _, p := range ctx.TimePeriods {
		if strings.Contains(p, "year") || strings.Contains(p, "annual") || strings.Contains(p, "all-time") || strings.Contains(p, "all time") {
			return true
		}
	}
	return false
}

// dateLayouts are the formats tried when deciding relevance of a data point.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"20060102T150405",
	"2006-01",
	"2006",
}

// IsDateRelevant reports whether a date string matters for the query
// context. Unparseable dates are kept: dropping data we cannot interpret
// loses more than it saves.
func IsDateRelevant(dateStr string, ctx Context, toleranceYears int) bool {
	t, ok := ParseDate(dateStr)
	if !ok {
		return true
	}
	year := t.Year()
	now := timeNow()

	// No explicit temporal anchors: recent data only.
	if len(ctx.Years) == 0 && len(ctx.DateRanges) == 0 {
		return year >= now.Year()-3
	}

	for _, y := range ctx.Years {
		if abs(year-y) <= toleranceYears {
			return true
		}
	}
	for _, r := range ctx.DateRanges {
		if year >= r.Start.Year()-toleranceYears && year <= r.End.Year()+toleranceYears {
			return true
		}
	}
	return false
}

// ParseDate parses a date-like string against the known data-source layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// MinRelevantDate returns the earliest date worth keeping for the query:
// two years back by default, pulled earlier by any explicit range start or
// mentioned year.
func MinRelevantDate(ctx Context) time.Time {
	min := timeNow().AddDate(-2, 0, 0)

	for _, r := range ctx.DateRanges {
		if r.Start.Before(min) {
			min = r.Start
		}
	}
	for _, y := range ctx.Years {
		candidate := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
		if candidate.Before(min) {
			min = candidate
		}
	}
	return min
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
