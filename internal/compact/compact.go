package compact

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/abdul-hamid-achik/marketscout/internal/query"
	"github.com/abdul-hamid-achik/marketscout/internal/tokens"
)

// Options configures a compaction pass. The zero value is not useful; start
// from DefaultOptions.
type Options struct {
	// MaxTokens is the estimated-token budget for the output. Default 2000.
	MaxTokens int
	// MaxArrayLength caps every array in the structure. Default 20.
	MaxArrayLength int
	// RemoveVerboseFields strips known low-value fields. Default true.
	RemoveVerboseFields bool
	// TruncateURLs shortens known long-URL fields. Default true.
	TruncateURLs bool
	// Minify serializes without whitespace. Default true.
	Minify bool
	// Query enables query-aware date filtering when non-nil. Default nil.
	Query *query.Context
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		MaxTokens:           2000,
		MaxArrayLength:      20,
		RemoveVerboseFields: true,
		TruncateURLs:        true,
		Minify:              true,
	}
}

// dateFields are checked, in order, to find the date-like field of an
// object inside a data array.
var dateFields = []string{
	"date", "timestamp", "time", "period",
	"fiscalDateEnding", "reportDate", "publishedDate",
}

// verboseFields add bytes without adding decisions; they are stripped when
// RemoveVerboseFields is set.
var verboseFields = map[string]bool{
	"reportedCurrency": true,
	"acceptedDate":     true,
	"fillingDate":      true,
	"link":             true,
	"finalLink":        true,
	"cik":              true,
}

// urlFields are the only fields subject to URL truncation. A generic "url"
// field is deliberately not listed.
var urlFields = map[string]bool{
	"banner_image": true,
	"source_url":   true,
	"article_url":  true,
	"image":        true,
}

const (
	// filterFloor is how many elements survive when query filtering would
	// otherwise empty an array.
	filterFloor = 20
	// shrinkFactor reduces the array cap between budget-convergence rounds.
	shrinkFactor = 0.7
	// minArrayCap is the smallest array cap the shrink loop will try.
	minArrayCap = 5
	// charsPerToken converts the token budget to the hard character limit
	// of the last-resort truncation.
	charsPerToken = 3.5
)

// JSON reduces a JSON document until its estimated token count fits
// opts.MaxTokens. Structure-aware passes run first; if they cannot converge
// the serialized text is hard-truncated. Non-JSON input goes straight to
// hard truncation. This function never fails.
func JSON(data string, opts Options) string {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultOptions().MaxTokens
	}
	if opts.MaxArrayLength <= 0 {
		opts.MaxArrayLength = DefaultOptions().MaxArrayLength
	}

	if _, ok := parseJSON(data); !ok {
		return hardTruncate(data, opts.MaxTokens)
	}

	// Each round re-parses the input so that successive shrink attempts
	// reduce the original data, not an already-lossy intermediate.
	arrCap := opts.MaxArrayLength
	out := reduceOnce(data, opts, arrCap)
	for tokens.Estimate(out, tokens.KindJSON) > opts.MaxTokens && arrCap > minArrayCap {
		arrCap = int(float64(arrCap) * shrinkFactor)
		if arrCap < minArrayCap {
			arrCap = minArrayCap
		}
		out = reduceOnce(data, opts, arrCap)
	}

	if tokens.Estimate(out, tokens.KindJSON) > opts.MaxTokens {
		return hardTruncate(out, opts.MaxTokens)
	}
	return out
}

// reduceOnce runs the full pass pipeline against a fresh parse of data with
// the given array cap.
func reduceOnce(data string, opts Options, arrayCap int) string {
	v, _ := parseJSON(data)

	if opts.Query != nil {
		v = filterByQuery(v, opts.Query)
	}
	v = truncateArrays(v, arrayCap)
	if opts.RemoveVerboseFields {
		v = stripVerboseFields(v)
	}
	if opts.TruncateURLs {
		v = truncateURLFields(v)
	}
	return serialize(v, opts.Minify)
}

func parseJSON(data string) (any, bool) {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}

func serialize(v any, minify bool) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if !minify {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimRight(buf.String(), "\n")
}

// filterByQuery drops array elements whose date-like field is irrelevant to
// the query, with a ±1 year tolerance. Filtering never empties an array: if
// nothing survives, the first filterFloor elements are kept instead.
func filterByQuery(v any, qctx *query.Context) any {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			val[k] = filterByQuery(child, qctx)
		}
		return val
	case []any:
		filtered := val
		if _, ok := elementDateField(val); ok {
			kept := make([]any, 0, len(val))
			for _, elem := range val {
				obj, isObj := elem.(map[string]any)
				if !isObj {
					kept = append(kept, elem)
					continue
				}
				dateStr, has := objectDate(obj)
				if !has || query.IsDateRelevant(dateStr, *qctx, 1) {
					kept = append(kept, elem)
				}
			}
			if len(kept) == 0 && len(val) > 0 {
				kept = val
				if len(kept) > filterFloor {
					kept = kept[:filterFloor]
				}
			}
			filtered = kept
		}
		for i, elem := range filtered {
			filtered[i] = filterByQuery(elem, qctx)
		}
		return filtered
	default:
		return v
	}
}

// arrayOrder is the detected chronological ordering of a data array.
type arrayOrder int

const (
	orderUnknown arrayOrder = iota
	orderNewestFirst
	orderOldestFirst
)

// detectOrder compares the date-like field of the first two elements.
func detectOrder(arr []any) arrayOrder {
	if len(arr) < 2 {
		return orderUnknown
	}
	first, ok1 := elementDate(arr[0])
	second, ok2 := elementDate(arr[1])
	if !ok1 || !ok2 {
		return orderUnknown
	}
	t1, p1 := query.ParseDate(first)
	t2, p2 := query.ParseDate(second)
	if !p1 || !p2 {
		return orderUnknown
	}
	switch {
	case t1.After(t2):
		return orderNewestFirst
	case t2.After(t1):
		return orderOldestFirst
	default:
		return orderUnknown
	}
}

// truncateArrays caps every array at max elements, keeping the most recent
// data when the ordering is detectable.
func truncateArrays(v any, max int) any {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			val[k] = truncateArrays(child, max)
		}
		return val
	case []any:
		kept := val
		if len(val) > max {
			switch detectOrder(val) {
			case orderOldestFirst:
				kept = val[len(val)-max:]
			default:
				// newest-first and unknown both keep the head
				kept = val[:max]
			}
		}
		for i, elem := range kept {
			kept[i] = truncateArrays(elem, max)
		}
		return kept
	default:
		return v
	}
}

func stripVerboseFields(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			if verboseFields[k] {
				delete(val, k)
				continue
			}
			val[k] = stripVerboseFields(child)
		}
		return val
	case []any:
		for i, elem := range val {
			val[i] = stripVerboseFields(elem)
		}
		return val
	default:
		return v
	}
}

const (
	urlTruncateThreshold = 50
	urlPrefixLength      = 100
)

func truncateURLFields(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			if urlFields[k] {
				if s, ok := child.(string); ok && len(s) > urlTruncateThreshold {
					val[k] = shortenURL(s)
					continue
				}
			}
			val[k] = truncateURLFields(child)
		}
		return val
	case []any:
		for i, elem := range val {
			val[i] = truncateURLFields(elem)
		}
		return val
	default:
		return v
	}
}

// shortenURL keeps the origin of a real URL; anything else becomes a
// fixed-length prefix.
func shortenURL(s string) string {
	if u, err := url.Parse(s); err == nil && u.Scheme != "" && u.Host != "" {
		return u.Scheme + "://" + u.Host + "/..."
	}
	if len(s) > urlPrefixLength {
		return s[:urlPrefixLength] + "..."
	}
	return s
}

// hardTruncate is the last resort: a raw character cut at the budget's
// character equivalent. Output may no longer be valid JSON but stays
// valid UTF-8.
func hardTruncate(s string, maxTokens int) string {
	limit := int(float64(maxTokens) * charsPerToken)
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit] + "...[truncated]"
}

// elementDateField returns the first date-like field name present on any
// object element of the array.
func elementDateField(arr []any) (string, bool) {
	for _, elem := range arr {
		obj, ok := elem.(map[string]any)
		if !ok {
			continue
		}
		for _, f := range dateFields {
			if _, has := obj[f]; has {
				return f, true
			}
		}
	}
	return "", false
}

// objectDate returns the value of the object's date-like field.
func objectDate(obj map[string]any) (string, bool) {
	for _, f := range dateFields {
		if raw, has := obj[f]; has {
			if s, ok := raw.(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

func elementDate(elem any) (string, bool) {
	obj, ok := elem.(map[string]any)
	if !ok {
		return "", false
	}
	return objectDate(obj)
}
