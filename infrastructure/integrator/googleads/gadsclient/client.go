// Package gadsclient issues search calls against the Google Ads REST API,
// recovering exactly once from an expired access token.
package gadsclient

import (
	"context"
	"net/http"
	"time"

	"github.com/vfg2006/ads-insights-api/internal/config"
)

// TokenRefresher exchanges a stored long-lived credential for a fresh access
// token. It is injected at construction so the client never reaches into the
// auth layer itself. Implementations persist whatever they mint.
type TokenRefresher interface {
	Refresh(ctx context.Context, identity string) (string, error)
}

// Client is the outbound Google Ads search capability.
type Client interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResult, error)
}

// GoogleAdsClient implements Client over the REST search endpoint.
type GoogleAdsClient struct {
	cfg        *config.Config
	httpClient *http.Client
	refresher  TokenRefresher
}

// NewClient builds the Google Ads client. The refresher may be nil; the
// client then returns unauthorized responses as-is.
func NewClient(cfg *config.Config, refresher TokenRefresher) *GoogleAdsClient {
	return &GoogleAdsClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		refresher: refresher,
	}
}
