// Package oauth exchanges stored Google refresh tokens for fresh access
// tokens. This is the refresh collaborator the Ads client leans on when an
// access token is rejected mid-request.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vfg2006/ads-insights-api/infrastructure/repository"
	"github.com/vfg2006/ads-insights-api/internal/config"
	"github.com/vfg2006/ads-insights-api/pkg/log"
)

// TokenResponse is the OAuth token endpoint's reply to a refresh grant.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Refresher implements gadsclient.TokenRefresher against the Google OAuth
// token endpoint, persisting what it mints through the credential repository.
type Refresher struct {
	cfg         *config.Config
	credentials repository.CredentialRepository
	httpClient  *http.Client
}

func NewRefresher(cfg *config.Config, credentials repository.CredentialRepository) *Refresher {
	return &Refresher{
		cfg:         cfg,
		credentials: credentials,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Refresh exchanges the user's stored refresh token for a new access token.
// The new token is persisted here, not by the caller.
func (r *Refresher) Refresh(ctx context.Context, identity string) (string, error) {
	logger := log.ForContext(ctx)

	cred, err := r.credentials.GetByUserID(identity)
	if err != nil {
		return "", fmt.Errorf("oauth: error loading credential: %w", err)
	}

	if cred == nil || cred.RefreshToken == "" {
		return "", fmt.Errorf("oauth: no refresh token stored for user %s", identity)
	}

	tokenResp, err := r.exchange(ctx, cred.RefreshToken)
	if err != nil {
		logger.WithFields(log.Fields{
			"user_id": identity,
			"error":   err.Error(),
		}).Error("oauth: refresh grant failed")
		return "", err
	}

	expiresAt := calculateExpiration(tokenResp.ExpiresIn)
	if err := r.credentials.SaveAccessToken(identity, tokenResp.AccessToken, expiresAt); err != nil {
		// The token is still usable for this request even if persisting failed.
		logger.WithFields(log.Fields{
			"user_id": identity,
			"error":   err.Error(),
		}).Warn("oauth: could not persist refreshed access token")
	}

	logger.WithField("user_id", identity).Info("oauth: access token refreshed")

	return tokenResp.AccessToken, nil
}

func (r *Refresher) exchange(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	form := url.Values{}
	form.Add("grant_type", "refresh_token")
	form.Add("client_id", r.cfg.OAuth.ClientID)
	form.Add("client_secret", r.cfg.OAuth.ClientSecret)
	form.Add("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.OAuth.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("error creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling token endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, body)
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("error decoding token response: %w", err)
	}

	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned an empty access token")
	}

	return &tokenResp, nil
}

// calculateExpiration converts expires_in into an absolute instant, shaving
// a safety margin so we refresh before the token actually dies.
func calculateExpiration(expiresIn int64) time.Time {
	margin := int64(60) // seconds
	safeExpiresIn := expiresIn - margin

	if safeExpiresIn < 0 {
		safeExpiresIn = expiresIn / 2
	}

	return time.Now().Add(time.Duration(safeExpiresIn) * time.Second)
}
