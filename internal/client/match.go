package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/abaanfida/unixora/internal/model/match"
)

// MatchClient calls the match service.
type MatchClient struct {
	baseURL string
	client  *http.Client
}

// NewMatchClient returns a client for the match service at baseURL.
func NewMatchClient(baseURL string, timeout time.Duration) *MatchClient {
	return &MatchClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Match posts a normalized preference payload and returns the ranked
// results. Any non-2xx status is reported as an error.
func (c *MatchClient) Match(ctx context.Context, request match.Request) (match.Response, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return match.Response{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/match", bytes.NewReader(body))
	if err != nil {
		return match.Response{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return match.Response{}, fmt.Errorf("match service call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return match.Response{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return match.Response{}, fmt.Errorf("match service error %d: %s", resp.StatusCode, string(respBody))
	}

	var result match.Response
	if err := json.Unmarshal(respBody, &result); err != nil {
		return match.Response{}, fmt.Errorf("unmarshal response: %w", err)
	}
	return result, nil
}
