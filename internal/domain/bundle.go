package domain

import "time"

// ReportKind identifies a composite report artifact.
type ReportKind string

const (
	KindAIAnalysis ReportKind = "ai-analysis"
	KindWeekly     ReportKind = "weekly"
)

// Bundle is the union of several report payloads keyed by block name,
// optionally carrying the natural-language summary produced for AI reports.
// Immutable once cached.
type Bundle struct {
	Kind        ReportKind                `json:"kind"`
	CustomerID  string                    `json:"customer_id"`
	TimeRange   string                    `json:"time_range"`
	CampaignID  string                    `json:"campaign_id,omitempty"`
	Blocks      map[string]*ReportPayload `json:"blocks"`
	Summary     string                    `json:"summary,omitempty"`
	GeneratedAt time.Time                 `json:"generated_at"`
}
