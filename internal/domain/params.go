package domain

// ReportMode selects the row caps applied to report queries.
type ReportMode string

const (
	ModeFull   ReportMode = "full"
	ModeWeekly ReportMode = "weekly"
)

// ReportParams is the validated per-request input shared by every report.
// RefreshIdentity, when present, lets the Ads client recover once from an
// expired access token on the caller's behalf.
type ReportParams struct {
	AccessToken     string
	CustomerID      string
	TimeRange       string
	CampaignID      string
	RefreshIdentity string
}
