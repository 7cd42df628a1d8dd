// Package summarizer calls the external summarization service that turns an
// aggregate report bundle into a natural-language analysis.
package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/vfg2006/ads-insights-api/internal/config"
	"github.com/vfg2006/ads-insights-api/pkg/log"
)

// Summarizer produces a natural-language summary for an assembled prompt.
// Called at most once per report generation.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// ErrTimeout marks a summarization attempt that ran past its deadline. It is
// terminal for the generation attempt, never retried automatically.
var ErrTimeout = errors.New("summarizer: request timed out")

type summarizeRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

// Client implements Summarizer over HTTP.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg: cfg,
		// No client-level timeout: the per-call deadline governs, and it is
		// deliberately long (summarization of a full bundle is slow).
		httpClient: &http.Client{},
	}
}

// Summarize posts the prompt and waits up to the configured deadline
// (5 minutes by default). A deadline overrun fails the whole generation.
func (c *Client) Summarize(ctx context.Context, prompt string) (string, error) {
	logger := log.ForContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Summarizer.Timeout)
	defer cancel()

	payload, err := json.Marshal(summarizeRequest{
		Model:  c.cfg.Summarizer.Model,
		Prompt: prompt,
	})
	if err != nil {
		return "", fmt.Errorf("summarizer: error encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Summarizer.URL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("summarizer: error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Summarizer.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Summarizer.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			logger.Error("summarizer: call exceeded deadline")
			return "", ErrTimeout
		}
		return "", fmt.Errorf("summarizer: error executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("summarizer: error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("summarizer: unexpected status %d: %s", resp.StatusCode, body)
	}

	var summResp summarizeResponse
	if err := json.Unmarshal(body, &summResp); err != nil {
		return "", fmt.Errorf("summarizer: error decoding response: %w", err)
	}

	if summResp.Summary == "" {
		return "", fmt.Errorf("summarizer: empty summary returned")
	}

	return summResp.Summary, nil
}
