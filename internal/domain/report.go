package domain

// ReportPayload is the display-ready result of one report: a tabular block
// plus summary aggregates. Built fresh per request and never mutated after
// construction.
type ReportPayload struct {
	Key     string             `json:"key"`
	Title   string             `json:"title"`
	Headers []string           `json:"headers"`
	Rows    [][]any            `json:"rows"`
	Summary map[string]float64 `json:"summary,omitempty"`
}

// EmptyPayload returns a deterministic zero-valued payload with the same
// shape a successful run would have. Used by gracefully degrading reports
// when the upstream call fails.
func EmptyPayload(key, title string, headers []string, summaryKeys ...string) *ReportPayload {
	summary := make(map[string]float64, len(summaryKeys))
	for _, k := range summaryKeys {
		summary[k] = 0
	}
	return &ReportPayload{
		Key:     key,
		Title:   title,
		Headers: headers,
		Rows:    [][]any{},
		Summary: summary,
	}
}
