package aggregating

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/vfg2006/ads-insights-api/internal/domain"
)

// Collaborator errors
var (
	ErrUsageCheck = errors.New("error checking usage limit")
	ErrSummarizer = errors.New("error summarizing report bundle")
)

// LimitExceededError means the user spent this month's generation budget.
// Carries the structured limit metadata the API returns with a 429.
type LimitExceededError struct {
	Status *domain.LimitStatus
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("monthly report limit reached (%d/%d, resets at %s)",
		e.Status.CurrentUsage, e.Status.Limit, e.Status.ResetsAt.Format("2006-01-02"))
}

// ConstituentError means one or more constituent reports failed, which fails
// the whole aggregate: no partial bundles are ever cached or returned.
type ConstituentError struct {
	Kind   domain.ReportKind
	Failed []string
}

func (e *ConstituentError) Error() string {
	return fmt.Sprintf("aggregate %s: %d constituent report(s) failed: %s",
		e.Kind, len(e.Failed), strings.Join(e.Failed, ", "))
}
