package gadsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	adsdomain "github.com/vfg2006/ads-insights-api/infrastructure/integrator/googleads/domain"
	"github.com/vfg2006/ads-insights-api/pkg/log"
)

// SearchRequest is one logical search call. RefreshIdentity, when present,
// names the user whose stored credential can be exchanged for a new access
// token if the supplied one is rejected.
type SearchRequest struct {
	AccessToken     string
	CustomerID      string
	Query           string
	RefreshIdentity string
}

// SearchResult is the final outcome of a search call, successful or not.
// Ordinary HTTP failures are carried here rather than as Go errors; only
// fatal local errors (context cancellation, transport failure) surface as
// errors from Search.
type SearchResult struct {
	StatusCode int
	Response   *adsdomain.SearchResponse
	ErrorBody  *adsdomain.ErrorResponse
	Body       []byte
}

// OK reports whether the upstream call succeeded.
func (r *SearchResult) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Unauthorized reports whether the upstream rejected the access token.
func (r *SearchResult) Unauthorized() bool {
	if r.StatusCode == http.StatusUnauthorized {
		return true
	}
	return r.ErrorBody != nil && r.ErrorBody.IsUnauthenticated()
}

type searchBody struct {
	Query string `json:"query"`
}

// Search executes the query against the customer's search endpoint. On an
// unauthorized response it asks the refresher for a replacement token and
// retries the identical request exactly once; if no refresh identity was
// supplied or the refresh fails, the original unauthorized result is
// returned unchanged. Never more than one retry per logical call.
func (c *GoogleAdsClient) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	logger := log.ForContext(ctx)

	result, err := c.doSearch(ctx, req.AccessToken, req.CustomerID, req.Query)
	if err != nil {
		return nil, err
	}

	if !result.Unauthorized() {
		return result, nil
	}

	if req.RefreshIdentity == "" || c.refresher == nil {
		// The caller cannot be refreshed on our behalf; hand the 401 back.
		return result, nil
	}

	logger.WithFields(log.Fields{
		"customer_id": req.CustomerID,
	}).Warn("ads: access token rejected, attempting refresh")

	newToken, refreshErr := c.refresher.Refresh(ctx, req.RefreshIdentity)
	if refreshErr != nil || newToken == "" {
		logger.WithFields(log.Fields{
			"customer_id": req.CustomerID,
			"error":       fmt.Sprintf("%v", refreshErr),
		}).Error("ads: token refresh failed, returning original unauthorized response")
		return result, nil
	}

	retried, err := c.doSearch(ctx, newToken, req.CustomerID, req.Query)
	if err != nil {
		return nil, err
	}

	// The retry outcome is final, success or not.
	return retried, nil
}

func (c *GoogleAdsClient) doSearch(ctx context.Context, accessToken, customerID, query string) (*SearchResult, error) {
	url := fmt.Sprintf("%s/customers/%s/googleAds:search", c.cfg.GoogleAds.URL, customerID)

	payload, err := json.Marshal(searchBody{Query: query})
	if err != nil {
		return nil, fmt.Errorf("ads: error encoding search body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("ads: error creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+accessToken)
	httpReq.Header.Set("developer-token", c.cfg.GoogleAds.DeveloperToken)
	if c.cfg.GoogleAds.LoginCustomerID != "" {
		httpReq.Header.Set("login-customer-id", c.cfg.GoogleAds.LoginCustomerID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ads: error executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ads: error reading response: %w", err)
	}

	result := &SearchResult{
		StatusCode: resp.StatusCode,
		Body:       body,
	}

	if result.OK() {
		var searchResp adsdomain.SearchResponse
		if err := json.Unmarshal(body, &searchResp); err != nil {
			return nil, fmt.Errorf("ads: error decoding search response: %w", err)
		}
		result.Response = &searchResp
		return result, nil
	}

	var errResp adsdomain.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		result.ErrorBody = &errResp
	}

	return result, nil
}
