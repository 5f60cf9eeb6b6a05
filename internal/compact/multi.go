package compact

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Result is one tool result queued for budgeted assembly into the final
// answer context.
type Result struct {
	Description string
	Data        string
}

// Results compacts an ordered list of results into one document under a
// shared token budget. Later results carry more weight on the premise that
// they are more relevant to where the investigation ended up: the first item
// has weight 1, the last weight 2, with linear interpolation in between.
func Results(results []Result, totalBudget int, opts Options) string {
	if len(results) == 0 {
		return ""
	}

	weights := make([]float64, len(results))
	var sum float64
	for i := range results {
		w := 1.0
		if len(results) > 1 {
			w = 1.0 + float64(i)/float64(len(results)-1)
		}
		weights[i] = w
		sum += w
	}

	var b strings.Builder
	for i, r := range results {
		share := int(float64(totalBudget) * weights[i] / sum)
		itemOpts := opts
		itemOpts.MaxTokens = share

		fmt.Fprintf(&b, "### %s\n\n", r.Description)
		b.WriteString(JSON(r.Data, itemOpts))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

const (
	summaryTailElements = 3
	summaryMaxKeys      = 10
	summaryMaxRaw       = 300
)

// DataSummary produces a short, non-budgeted description of a result: for
// arrays the element count plus the last few elements, for objects the
// leading keys. Used where full compaction is not applicable, e.g. the
// stored-result digest.
func DataSummary(data string) string {
	v, ok := parseJSON(data)
	if !ok {
		if len(data) > summaryMaxRaw {
			return data[:summaryMaxRaw] + "..."
		}
		return data
	}

	switch val := v.(type) {
	case []any:
		tail := val
		if len(tail) > summaryTailElements {
			tail = tail[len(tail)-summaryTailElements:]
		}
		tailJSON, err := json.Marshal(tail)
		if err != nil {
			return fmt.Sprintf("Array with %d elements", len(val))
		}
		return fmt.Sprintf("Array with %d elements. Last %d: %s", len(val), len(tail), tailJSON)
	case map[string]any:
		keys := sortedKeys(val)
		shown := keys
		if len(shown) > summaryMaxKeys {
			shown = shown[:summaryMaxKeys]
		}
		suffix := ""
		if len(keys) > summaryMaxKeys {
			suffix = fmt.Sprintf(" (and %d more)", len(keys)-summaryMaxKeys)
		}
		return fmt.Sprintf("Object with keys: %s%s", strings.Join(shown, ", "), suffix)
	default:
		return serialize(v, true)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// json.Marshal sorts map keys; match that for stable output
	sort.Strings(keys)
	return keys
}
