package aggregating

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vfg2006/ads-insights-api/internal/domain"
)

// buildPrompt renders the bundle as the plain-text prompt sent to the
// summarization service. Deterministic for a given bundle: blocks follow the
// catalog order and summary fields are sorted.
func buildPrompt(bundle *domain.Bundle, blockOrder []string) string {
	var b strings.Builder

	b.WriteString("You are a Google Ads specialist. Analyze the following account report")
	if bundle.TimeRange != "" {
		fmt.Fprintf(&b, " for the period %q", bundle.TimeRange)
	}
	b.WriteString(" and highlight wins, problems and concrete optimization steps.\n")

	for _, key := range blockOrder {
		payload, ok := bundle.Blocks[key]
		if !ok {
			continue
		}

		fmt.Fprintf(&b, "\n## %s\n", payload.Title)
		fmt.Fprintf(&b, "Rows: %d\n", len(payload.Rows))

		if len(payload.Summary) == 0 {
			continue
		}
		fields := make([]string, 0, len(payload.Summary))
		for field := range payload.Summary {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			fmt.Fprintf(&b, "- %s: %v\n", field, payload.Summary[field])
		}
	}

	return b.String()
}
