package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jstittsworth/monster-team-builder/pkg/config"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const anthropicVersion = "2023-06-01"

// ErrAPIKeyMissing is returned when no Anthropic key is configured.
var ErrAPIKeyMissing = errors.New("anthropic API key not configured")

// ClaudeClient handles interaction with the Claude Messages API
type ClaudeClient struct {
	httpClient     *http.Client
	logger         *logrus.Logger
	apiKey         string
	baseURL        string
	model          string
	maxTokens      int
	limiter        *rate.Limiter
	circuitBreaker *gobreaker.CircuitBreaker
	retryAttempts  int
	retryBackoff   time.Duration
}

// ClaudeMessage represents a message in the conversation
type ClaudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ClaudeRequest represents the request payload for Claude API
type ClaudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature,omitempty"`
	Messages    []ClaudeMessage `json:"messages"`
	System      string          `json:"system,omitempty"`
}

// ClaudeResponse represents the response from Claude API
type ClaudeResponse struct {
	ID         string               `json:"id"`
	Type       string               `json:"type"`
	Role       string               `json:"role"`
	Content    []ClaudeContentBlock `json:"content"`
	Model      string               `json:"model"`
	StopReason string               `json:"stop_reason"`
	Usage      ClaudeUsage          `json:"usage"`
}

// ClaudeContentBlock represents content blocks in the response
type ClaudeContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ClaudeUsage represents token usage information
type ClaudeUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type claudeErrorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Text joins the text blocks of a response.
func (r *ClaudeResponse) Text() string {
	var sb strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}

// NewClaudeClient creates a Claude API client with rate limiting and a circuit breaker
func NewClaudeClient(cfg *config.Config, logger *logrus.Logger) *ClaudeClient {
	threshold := uint32(cfg.CircuitBreakerThreshold)
	if threshold == 0 {
		threshold = 5
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "claude-api",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"circuit":    name,
				"from_state": from.String(),
				"to_state":   to.String(),
			}).Warn("Claude API circuit breaker state changed")
		},
	})

	perMinute := cfg.AIRateLimit
	if perMinute <= 0 {
		perMinute = 60
	}

	return &ClaudeClient{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger:         logger,
		apiKey:         cfg.AnthropicAPIKey,
		baseURL:        strings.TrimRight(cfg.AnthropicBaseURL, "/"),
		model:          cfg.AIModel,
		maxTokens:      cfg.AIMaxTokens,
		limiter:        rate.NewLimiter(rate.Limit(float64(perMinute)/60), 6),
		circuitBreaker: cb,
		retryAttempts:  cfg.AIRetryAttempts + 1,
		retryBackoff:   500 * time.Millisecond,
	}
}

// SendMessage sends a single-turn prompt through the rate limiter and circuit breaker
func (c *ClaudeClient) SendMessage(ctx context.Context, prompt, systemPrompt string) (*ClaudeResponse, error) {
	if c.apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	request := ClaudeRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: 0.3,
		Messages: []ClaudeMessage{
			{Role: "user", Content: prompt},
		},
		System: systemPrompt,
	}

	response, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return c.makeRequest(ctx, request)
	})
	if err != nil {
		return nil, fmt.Errorf("claude API request failed: %w", err)
	}

	claudeResponse := response.(*ClaudeResponse)
	c.logger.WithFields(logrus.Fields{
		"input_tokens":  claudeResponse.Usage.InputTokens,
		"output_tokens": claudeResponse.Usage.OutputTokens,
	}).Debug("Claude API call completed")

	return claudeResponse, nil
}

// GenerateJSON asks for a JSON-only reply and returns the raw text.
func (c *ClaudeClient) GenerateJSON(ctx context.Context, prompt, systemPrompt string) (string, error) {
	resp, err := c.SendMessage(ctx, prompt, systemPrompt)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("empty response from Claude API")
	}
	return text, nil
}

// makeRequest handles the HTTP request with retries on transient failures
func (c *ClaudeClient) makeRequest(ctx context.Context, request ClaudeRequest) (*ClaudeResponse, error) {
	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			backoff := c.retryBackoff * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, retry, err := c.doRequest(ctx, requestBody)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !retry {
			return nil, err
		}
		c.logger.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"error":   err.Error(),
		}).Debug("Retrying Claude API request")
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", c.retryAttempts, lastErr)
}

// doRequest performs one attempt. retry reports whether the failure is transient.
func (c *ClaudeClient) doRequest(ctx context.Context, body []byte) (*ClaudeResponse, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		var claudeResp ClaudeResponse
		if err := json.NewDecoder(resp.Body).Decode(&claudeResp); err != nil {
			return nil, false, fmt.Errorf("failed to decode response: %w", err)
		}
		return &claudeResp, false, nil
	}

	var errBody claudeErrorBody
	_ = json.NewDecoder(resp.Body).Decode(&errBody)
	message := errBody.Error.Message
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, false, fmt.Errorf("invalid API credentials: %s", message)
	case resp.StatusCode == http.StatusBadRequest:
		return nil, false, fmt.Errorf("bad request: %s", message)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, fmt.Errorf("rate limit exceeded: %s", message)
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("claude API error (status %d): %s", resp.StatusCode, message)
	default:
		return nil, false, fmt.Errorf("unexpected error (status %d): %s", resp.StatusCode, message)
	}
}

// IsHealthy checks if the Claude API client is healthy
func (c *ClaudeClient) IsHealthy() bool {
	return c.apiKey != "" && c.circuitBreaker.State() == gobreaker.StateClosed
}

// GetCircuitBreakerState returns the current circuit breaker state
func (c *ClaudeClient) GetCircuitBreakerState() gobreaker.State {
	return c.circuitBreaker.State()
}
