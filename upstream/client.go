// Package upstream forwards chat-completion requests to the configured
// provider and parses its response.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/relaycache/llmproxy/chatapi"
)

// Timeout is the fixed per-call budget for the upstream call. This
// proxy talks to exactly one configured provider, so the timeout is
// not user-configurable.
const Timeout = 60 * time.Second

// Client forwards chat-completion requests to a single configured
// provider endpoint over a shared, pooled *http.Client.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// New creates a Client targeting baseURL (e.g. "https://api.openai.com/v1")
// authenticating with apiKey as a bearer token.
func New(baseURL, apiKey string) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Transport: transport,
			Timeout:   Timeout,
		},
	}
}

// Complete posts req as JSON to the provider's chat-completions endpoint
// and returns its response verbatim — the pipeline must not reshape it.
// Any transport failure or non-2xx status is a transport error.
func (c *Client) Complete(ctx context.Context, req *chatapi.Request) (*chatapi.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal upstream request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create upstream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("upstream returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var chatResp chatapi.Response
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("decode upstream response: %w", err)
	}
	return &chatResp, nil
}
