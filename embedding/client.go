// Package embedding requests fixed-dimension text embeddings from an
// external HTTP service for the semantic cache tier.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Dimension is the number of components every embedding must have.
// A response of any other length is a transient error, never a panic.
const Dimension = 384

type request struct {
	Text string `json:"text"`
}

type response struct {
	Embedding []float32 `json:"embedding"`
}

// Client requests embeddings over HTTP from a single configured
// endpoint. It holds a pooled *http.Client and is safe to share across
// many concurrent request tasks.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a Client targeting baseURL (e.g. "http://localhost:8000/embed").
func New(baseURL string) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Transport: transport,
			Timeout:   10 * time.Second,
		},
	}
}

// Embed requests a vector embedding of text. It returns an error when
// the service is unreachable, returns a non-2xx status, or returns a
// vector whose length is not exactly Dimension — all of which the
// pipeline treats as transient and skips the semantic tier for.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(request{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embedding request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding service returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var embResp response
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(embResp.Embedding) != Dimension {
		return nil, fmt.Errorf("embedding service returned %d components, want %d", len(embResp.Embedding), Dimension)
	}
	return embResp.Embedding, nil
}

// HealthCheck reports whether the embedding service answers a trivial
// request within a short budget.
func (c *Client) HealthCheck(ctx context.Context) bool {
	cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_, err := c.Embed(cctx, "healthcheck")
	return err == nil
}
