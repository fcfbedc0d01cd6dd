package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/taskweave/taskweave/internal/config"
	"github.com/taskweave/taskweave/internal/metrics"
)

const (
	// A moderate temperature favors structural consistency over creativity.
	modelTemperature = 0.7
	// Sized to comfortably fit the largest allowed task count.
	modelMaxTokens = 4096

	// How much upstream text may survive into an error detail.
	diagnosticLimit = 200

	maxResponseBody = 1 << 20
)

// ModelClient performs the network call to the generative model endpoint
// and classifies transport/HTTP failures. It holds no mutable state.
type ModelClient struct {
	cfg        config.AIConfig
	httpClient *http.Client
}

func NewModelClient(cfg config.AIConfig) *ModelClient {
	return &ModelClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate sends the prompt to the model endpoint and returns the raw text
// reply. Failures come back as classified errors, never as raw provider
// payloads beyond a short truncated diagnostic.
func (c *ModelClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", newError(KindUnconfigured, "AI_API_KEY is not set")
	}

	reqBody, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: modelTemperature,
		MaxTokens:   modelMaxTokens,
	})
	if err != nil {
		return "", newError(KindTransport, fmt.Sprintf("marshaling request: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(reqBody))
	if err != nil {
		return "", newError(KindTransport, fmt.Sprintf("creating request: %v", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	metrics.ModelCallDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", newError(KindTransport, truncate(err.Error(), diagnosticLimit))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", newError(KindTransport, fmt.Sprintf("reading response: %v", err))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", newError(KindAuth, fmt.Sprintf("status %d: %s", resp.StatusCode, truncate(string(body), diagnosticLimit)))
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", newError(KindRateLimited, fmt.Sprintf("status %d", resp.StatusCode))
	case resp.StatusCode >= 500:
		return "", newError(KindServiceUnavailable, fmt.Sprintf("status %d: %s", resp.StatusCode, truncate(string(body), diagnosticLimit)))
	case resp.StatusCode != http.StatusOK:
		return "", newError(KindTransport, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, truncate(string(body), diagnosticLimit)))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", newError(KindMalformedUpstream, fmt.Sprintf("decoding response: %v", err))
	}
	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return "", newError(KindMalformedUpstream, "reply is missing choices[0].message.content")
	}

	return chatResp.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
