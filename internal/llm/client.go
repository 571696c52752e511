// Package llm provides the language-model client used for agent
// cognition: planning, reactions, reflection, and conversation.
package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
	model      = "claude-haiku-4-5-20251001"
)

// Options tunes a single generation call.
type Options struct {
	MaxTokens   int
	Stop        []string
	Temperature float64
	TopP        float64

	// Allowed, when non-empty, constrains the reply to one of the given
	// strings: the first allowed value found in the raw output wins.
	// Generate returns an error if none match, so callers can fall back
	// to a safe default.
	Allowed []string
}

// Generator produces a completion for a prompt. Implementations may be
// remote model clients or deterministic test fakes.
type Generator interface {
	Generate(prompt string, opts Options) (string, error)
}

// Client wraps the Anthropic Messages API.
type Client struct {
	apiKey     string
	httpClient *http.Client

	// Rate limiting: max calls per minute.
	mu        sync.Mutex
	callCount int
	resetAt   time.Time
	maxPerMin int
}

// NewClient creates a new API client.
// Returns nil if apiKey is empty (LLM features disabled).
func NewClient(apiKey string) *Client {
	if apiKey == "" {
		return nil
	}
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxPerMin: 20,
	}
}

// Enabled returns true if the client has a valid API key.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// request is the API request body.
type request struct {
	Model         string    `json:"model"`
	MaxTokens     int       `json:"max_tokens"`
	Temperature   *float64  `json:"temperature,omitempty"`
	TopP          *float64  `json:"top_p,omitempty"`
	StopSequences []string  `json:"stop_sequences,omitempty"`
	Messages      []Message `json:"messages"`
}

// response is the API response body.
type response struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Generate sends the prompt and returns the model's reply, post-processed
// per opts.
func (c *Client) Generate(prompt string, opts Options) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("llm client not configured")
	}
	if err := c.reserveCall(); err != nil {
		return "", err
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 256
	}
	req := request{
		Model:         model,
		MaxTokens:     maxTokens,
		StopSequences: opts.Stop,
		Messages: []Message{
			{Role: "user", Content: prompt},
		},
	}
	if opts.Temperature > 0 {
		req.Temperature = &opts.Temperature
	}
	if opts.TopP > 0 {
		req.TopP = &opts.TopP
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequest("POST", apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("API call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if len(apiResp.Content) == 0 {
		return "", fmt.Errorf("empty response")
	}

	slog.Debug("llm call",
		"input_tokens", apiResp.Usage.InputTokens,
		"output_tokens", apiResp.Usage.OutputTokens,
	)

	out := strings.TrimSpace(apiResp.Content[0].Text)
	if len(opts.Allowed) > 0 {
		return matchAllowed(out, opts.Allowed)
	}
	return out, nil
}

// reserveCall admits one call under the per-minute budget.
func (c *Client) reserveCall() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	if now.After(c.resetAt) {
		c.callCount = 0
		c.resetAt = now.Add(time.Minute)
	}
	if c.callCount >= c.maxPerMin {
		return fmt.Errorf("rate limit exceeded (%d calls/min)", c.maxPerMin)
	}
	c.callCount++
	return nil
}

// matchAllowed picks the first allowed value present in the raw reply.
func matchAllowed(raw string, allowed []string) (string, error) {
	lower := strings.ToLower(raw)
	for _, a := range allowed {
		if strings.Contains(lower, strings.ToLower(a)) {
			return a, nil
		}
	}
	return "", fmt.Errorf("reply %q matched none of %v", raw, allowed)
}
