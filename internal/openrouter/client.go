// Package openrouter provides a client for an OpenRouter-style
// chat-completions endpoint. It reports transport outcomes (status code,
// payload shape) verbatim so callers can classify failures themselves.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/zblgg/ai-debate-tool/internal/config"
)

// Message is one chat message in a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
}

// Reply is the raw result of one completion request. A Reply is returned
// whenever the HTTP exchange itself completed; the caller decides whether a
// non-2xx status or a missing message field is acceptable.
type Reply struct {
	StatusCode int
	Body       []byte
	Content    string
	HasContent bool
}

// Client talks to one chat-completions endpoint. The underlying connection
// pool is safe for concurrent requests; per-request deadlines come from the
// context passed to Complete, not from a client-wide timeout.
type Client struct {
	baseURL     string
	apiKey      string
	maxTokens   int
	temperature float64
	http        *http.Client
}

// NewClient creates a client for the configured endpoint.
func NewClient(cfg config.OpenRouterConfig, apiKey string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      apiKey,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		http: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
	}
}

// Complete sends a single-message completion request to a model, bounded by
// the given timeout. It returns an error only for transport-level failures
// (connect, timeout, broken body); any completed exchange yields a Reply.
func (c *Client) Complete(ctx context.Context, model, role, prompt string, timeout time.Duration) (*Reply, error) {
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if prompt == "" {
		return nil, fmt.Errorf("prompt is required")
	}
	if role == "" {
		role = "user"
	}

	payload, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    []Message{{Role: role, Content: prompt}},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		request.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(request)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var body bytes.Buffer
	if _, err := body.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	reply := &Reply{
		StatusCode: resp.StatusCode,
		Body:       body.Bytes(),
	}

	var decoded chatResponse
	if err := json.Unmarshal(reply.Body, &decoded); err == nil && len(decoded.Choices) > 0 {
		reply.Content = decoded.Choices[0].Message.Content
		reply.HasContent = strings.TrimSpace(reply.Content) != ""
	}

	return reply, nil
}
