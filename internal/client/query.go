// Package client holds HTTP clients for the external RAG backends: the
// query service answering free-form questions and the match service
// ranking universities against a preference payload.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/abaanfida/unixora/internal/model/chat"
)

// QueryResult is the answer payload for a single question.
type QueryResult struct {
	Answer     string        `json:"answer"`
	Sources    []chat.Source `json:"sources"`
	Confidence float64       `json:"confidence"`
	TavilyUsed bool          `json:"tavily_used"`
}

type queryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// QueryClient calls the query service.
type QueryClient struct {
	baseURL string
	client  *http.Client
}

// NewQueryClient returns a client for the query service at baseURL.
func NewQueryClient(baseURL string, timeout time.Duration) *QueryClient {
	return &QueryClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Query posts a question and returns the answer with its citations. Any
// non-2xx status is reported as an error.
func (c *QueryClient) Query(ctx context.Context, query string, topK int) (QueryResult, error) {
	body, err := json.Marshal(queryRequest{Query: query, TopK: topK})
	if err != nil {
		return QueryResult{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query", bytes.NewReader(body))
	if err != nil {
		return QueryResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return QueryResult{}, fmt.Errorf("query service call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return QueryResult{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return QueryResult{}, fmt.Errorf("query service error %d: %s", resp.StatusCode, string(respBody))
	}

	var result QueryResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return QueryResult{}, fmt.Errorf("unmarshal response: %w", err)
	}
	return result, nil
}
