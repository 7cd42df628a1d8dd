package gadsclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/ads-insights-api/internal/config"
)

type stubRefresher struct {
	token string
	err   error
	calls int
}

func (s *stubRefresher) Refresh(ctx context.Context, identity string) (string, error) {
	s.calls++
	return s.token, s.err
}

func newTestClient(serverURL string, refresher TokenRefresher) *GoogleAdsClient {
	cfg := &config.Config{}
	cfg.GoogleAds.URL = serverURL
	cfg.GoogleAds.DeveloperToken = "dev-token"
	return NewClient(cfg, refresher)
}

func TestSearch_Success(t *testing.T) {
	var gotAuth, gotDevToken, gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotDevToken = r.Header.Get("developer-token")
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"results":[{"campaign":{"id":"1","name":"Brand"}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	result, err := client.Search(context.Background(), SearchRequest{
		AccessToken: "token-a",
		CustomerID:  "1234567890",
		Query:       "SELECT campaign.id FROM campaign",
	})

	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, "Bearer token-a", gotAuth)
	assert.Equal(t, "dev-token", gotDevToken)
	assert.Equal(t, "/customers/1234567890/googleAds:search", gotPath)
	require.NotNil(t, result.Response)
	require.Len(t, result.Response.Results, 1)
	assert.Equal(t, "Brand", result.Response.Results[0].Campaign.Name)
}

func TestSearch_UnauthorizedThenRefreshRetriesExactlyOnce(t *testing.T) {
	var calls int
	var authHeaders []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		authHeaders = append(authHeaders, r.Header.Get("Authorization"))
		if calls == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"code":401,"status":"UNAUTHENTICATED","message":"expired"}}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	refresher := &stubRefresher{token: "token-b"}
	client := newTestClient(server.URL, refresher)

	result, err := client.Search(context.Background(), SearchRequest{
		AccessToken:     "token-a",
		CustomerID:      "1234567890",
		Query:           "SELECT campaign.id FROM campaign",
		RefreshIdentity: "user-1",
	})

	require.NoError(t, err)
	// exactly two upstream calls: original plus one retry with the new token
	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{"Bearer token-a", "Bearer token-b"}, authHeaders)
	assert.Equal(t, 1, refresher.calls)
	assert.True(t, result.OK())
}

func TestSearch_RefreshFailureReturnsOriginalUnauthorized(t *testing.T) {
	var calls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":401,"status":"UNAUTHENTICATED","message":"expired"}}`))
	}))
	defer server.Close()

	refresher := &stubRefresher{err: errors.New("no stored credential")}
	client := newTestClient(server.URL, refresher)

	result, err := client.Search(context.Background(), SearchRequest{
		AccessToken:     "token-a",
		CustomerID:      "1234567890",
		Query:           "SELECT campaign.id FROM campaign",
		RefreshIdentity: "user-1",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.False(t, result.OK())
	assert.True(t, result.Unauthorized())
	assert.Equal(t, http.StatusUnauthorized, result.StatusCode)
	require.NotNil(t, result.ErrorBody)
	assert.Equal(t, "expired", result.ErrorBody.Error.Message)
}

func TestSearch_NoRefreshIdentityReturnsUnauthorizedAsIs(t *testing.T) {
	var calls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":401,"status":"UNAUTHENTICATED","message":"expired"}}`))
	}))
	defer server.Close()

	refresher := &stubRefresher{token: "token-b"}
	client := newTestClient(server.URL, refresher)

	result, err := client.Search(context.Background(), SearchRequest{
		AccessToken: "token-a",
		CustomerID:  "1234567890",
		Query:       "SELECT campaign.id FROM campaign",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, refresher.calls, "refresher must not be consulted without an identity")
	assert.True(t, result.Unauthorized())
}

func TestSearch_RetryOutcomeIsFinalEvenWhenStillUnauthorized(t *testing.T) {
	var calls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":401,"status":"UNAUTHENTICATED","message":"still expired"}}`))
	}))
	defer server.Close()

	refresher := &stubRefresher{token: "token-b"}
	client := newTestClient(server.URL, refresher)

	result, err := client.Search(context.Background(), SearchRequest{
		AccessToken:     "token-a",
		CustomerID:      "1234567890",
		Query:           "SELECT campaign.id FROM campaign",
		RefreshIdentity: "user-1",
	})

	require.NoError(t, err)
	// one original call plus one retry, never a third
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, refresher.calls)
	assert.True(t, result.Unauthorized())
}

func TestSearch_NonAuthFailurePassesThrough(t *testing.T) {
	var calls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"status":"INVALID_ARGUMENT","message":"bad query"}}`))
	}))
	defer server.Close()

	refresher := &stubRefresher{token: "token-b"}
	client := newTestClient(server.URL, refresher)

	result, err := client.Search(context.Background(), SearchRequest{
		AccessToken:     "token-a",
		CustomerID:      "1234567890",
		Query:           "SELECT nonsense FROM campaign",
		RefreshIdentity: "user-1",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, refresher.calls)
	assert.False(t, result.OK())
	assert.False(t, result.Unauthorized())
	require.NotNil(t, result.ErrorBody)
	assert.Equal(t, "INVALID_ARGUMENT", result.ErrorBody.Error.Status)
}
