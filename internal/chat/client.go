// Package chat proxies the storefront's AI helper to an external
// language-model API. It carries no prompt or conversation logic of its own.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client forwards a single user message and returns the model's reply.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

type upstreamRequest struct {
	Message string `json:"message"`
}

type upstreamResponse struct {
	Reply string `json:"reply"`
}

// Send forwards message to the configured endpoint and returns the reply.
func (c *Client) Send(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(upstreamRequest{Message: message})
	if err != nil {
		return "", fmt.Errorf("chat: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("chat: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat: call upstream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat: upstream returned %d", resp.StatusCode)
	}

	var out upstreamResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("chat: decode reply: %w", err)
	}
	return out.Reply, nil
}
