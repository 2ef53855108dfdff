// Package llm provides the decision-oracle layer: an HTTP client for the
// completion service and the Oracle that turns completions into agent goals.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/talgya/lifesim/internal/config"
)

// Client wraps the completion endpoint (llama.cpp server wire format).
type Client struct {
	cfg        config.Oracle
	httpClient *http.Client
}

// NewClient creates a completion client with the configured hard timeout.
func NewClient(cfg config.Oracle) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout.Std(),
		},
	}
}

// completionRequest is the service request body.
type completionRequest struct {
	Prompt      string   `json:"prompt"`
	NPredict    int      `json:"n_predict"`
	Temperature float64  `json:"temperature"`
	Stop        []string `json:"stop"`
	Stream      bool     `json:"stream"`
}

// completionResponse is the service response body.
type completionResponse struct {
	Content string `json:"content"`
}

// Complete sends a system prompt to the completion service and returns the
// generated text. Non-200 statuses and timeouts surface as errors.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	req := completionRequest{
		Prompt:      fmt.Sprintf("<|im_start|>system\n%s<|im_end|>\n<|im_start|>assistant\n", prompt),
		NPredict:    c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Stop:        c.cfg.Stop,
		Stream:      false,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("completion call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp completionResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	return apiResp.Content, nil
}
