package domain

import "time"

// LimitStatus is the result of a usage-limit check for one user.
type LimitStatus struct {
	CanGenerate  bool      `json:"can_generate"`
	CurrentUsage int       `json:"current_usage"`
	Limit        int       `json:"limit"`
	ResetsAt     time.Time `json:"resets_at"`
}

// UsageRecord registers one successful fresh report generation.
type UsageRecord struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Kind       ReportKind `json:"kind"`
	CustomerID string     `json:"customer_id"`
	TimeRange  string     `json:"time_range"`
	CampaignID string     `json:"campaign_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
