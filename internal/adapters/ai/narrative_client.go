package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/healthup/insight-engine/internal/core/domain"
)

// Client calls the external text-generation service that writes the
// weekly analysis narrative. The engine treats the returned strings as
// opaque; it never parses or interprets them.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type narrateRequest struct {
	Stats  domain.WeeklyStats    `json:"stats"`
	Trends *domain.TrendAnalysis `json:"trends,omitempty"`
}

type narrateResponse struct {
	Analysis        string   `json:"analysis"`
	Recommendations []string `json:"recommendations"`
}

func (c *Client) Narrate(ctx context.Context, stats domain.WeeklyStats, trends *domain.TrendAnalysis) (string, []string, error) {
	payload, err := json.Marshal(narrateRequest{Stats: stats, Trends: trends})
	if err != nil {
		return "", nil, fmt.Errorf("narrative client: encode failed: %w", err)
	}

	url := fmt.Sprintf("%s/v1/narratives/weekly", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return "", nil, fmt.Errorf("narrative client: request failed: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("narrative client: call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("narrative client: read failed: %w", err)
	}

	if resp.StatusCode >= 400 {
		return "", nil, fmt.Errorf("narrative client: service error (status %d): %s", resp.StatusCode, string(body))
	}

	var out narrateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", nil, fmt.Errorf("narrative client: decode failed: %w", err)
	}

	return out.Analysis, out.Recommendations, nil
}
