// Package reporting runs the report catalog: one generic executor
// parameterized by data-driven definitions, instead of one hand-written
// handler per metric slice.
package reporting

import (
	"fmt"

	adsdomain "github.com/vfg2006/ads-insights-api/infrastructure/integrator/googleads/domain"
	"github.com/vfg2006/ads-insights-api/internal/domain"
	"github.com/vfg2006/ads-insights-api/internal/gaql"
)

// DegradePolicy decides what a report does when its upstream call fails.
type DegradePolicy int

const (
	// DegradeEmpty substitutes a deterministic zero-valued payload.
	DegradeEmpty DegradePolicy = iota
	// FailLoud propagates a typed error. Used by blocks whose absence must
	// never be silent, e.g. inside composite reports.
	FailLoud
)

// QuerySpec is one named query a definition wants executed. Queries in the
// same slice are independent and run concurrently.
type QuerySpec struct {
	Name  string
	Query gaql.Query
}

// BuildContext carries everything a definition needs to build its queries
// and reshape the response.
type BuildContext struct {
	Params domain.ReportParams
	Window gaql.Window
	Mode   domain.ReportMode
	Limit  int
}

// Definition declares one report as configuration: which queries to issue
// and how to reshape the rows. Control flow lives in the executor.
type Definition struct {
	Key         string
	Title       string
	Headers     []string
	SummaryKeys []string
	// ClampDays forces a short trailing window for resources that reject
	// long or absent date filters (change history). Zero means no clamp.
	ClampDays       int
	OnUpstreamError DegradePolicy
	Queries         func(bc BuildContext) []QuerySpec
	Map             func(bc BuildContext, results map[string][]adsdomain.Row) *domain.ReportPayload
}

// Empty returns this definition's zero-valued payload.
func (d *Definition) Empty() *domain.ReportPayload {
	return domain.EmptyPayload(d.Key, d.Title, d.Headers, d.SummaryKeys...)
}

// UpstreamError is the typed failure of one report's upstream call.
type UpstreamError struct {
	ReportKey  string
	QueryName  string
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("report %s: upstream query %s failed with status %d: %s",
		e.ReportKey, e.QueryName, e.StatusCode, e.Message)
}

// RowLimits is the explicit report-key × mode → row cap lookup injected into
// query building.
type RowLimits struct {
	overrides map[string]map[domain.ReportMode]int
	fallback  map[domain.ReportMode]int
}

// DefaultRowLimits mirrors the caps the dashboard was tuned with: weekly
// variants are kept small, full reports go deeper, and a few heavy resources
// get their own caps.
func DefaultRowLimits() RowLimits {
	return RowLimits{
		fallback: map[domain.ReportMode]int{
			domain.ModeFull:   200,
			domain.ModeWeekly: 50,
		},
		overrides: map[string]map[domain.ReportMode]int{
			KeySearchTerms: {
				domain.ModeFull:   500,
				domain.ModeWeekly: 100,
			},
			KeySearchTermGap: {
				domain.ModeFull:   500,
				domain.ModeWeekly: 100,
			},
			KeyChangeHistory: {
				domain.ModeFull:   100,
				domain.ModeWeekly: 50,
			},
		},
	}
}

// For returns the row cap for one report in one mode.
func (l RowLimits) For(key string, mode domain.ReportMode) int {
	if byMode, ok := l.overrides[key]; ok {
		if limit, ok := byMode[mode]; ok {
			return limit
		}
	}
	return l.fallback[mode]
}
