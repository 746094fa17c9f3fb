package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Config configures the OpenRouter provider.
type Config struct {
	// BaseURL of the OpenAI-compatible API (default https://openrouter.ai/api).
	BaseURL string `yaml:"base_url"`

	// Model identifier, e.g. "openai/gpt-4o-mini".
	Model string `yaml:"model"`

	// APIKey is the bearer token. Usually sourced from OPENROUTER_API_KEY.
	APIKey string `yaml:"-"`

	// Timeout bounds a single round trip.
	Timeout time.Duration `yaml:"timeout"`

	// Temperature and MaxTokens are per-request defaults.
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`

	// Retry controls backoff between attempts.
	Retry RetryPolicy `yaml:"retry"`
}

// DefaultConfig returns defaults matching the hosted OpenRouter endpoint.
func DefaultConfig() Config {
	return Config{
		BaseURL:     "https://openrouter.ai/api",
		Model:       "openai/gpt-4o-mini",
		Timeout:     60 * time.Second,
		Temperature: 0.1,
		MaxTokens:   4000,
		Retry:       DefaultRetryPolicy(),
	}
}

// OpenRouterProvider implements Provider against an OpenAI-compatible chat
// completion endpoint.
type OpenRouterProvider struct {
	config     Config
	httpClient *http.Client
	name       string
}

// NewOpenRouterProvider creates a provider from cfg, filling zero values
// with defaults.
func NewOpenRouterProvider(cfg Config) *OpenRouterProvider {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.Retry == (RetryPolicy{}) {
		cfg.Retry = def.Retry
	}
	return &OpenRouterProvider{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		name:       fmt.Sprintf("openrouter-%s", cfg.Model),
	}
}

// Name returns the provider identifier.
func (p *OpenRouterProvider) Name() string {
	return p.name
}

// chatMessage represents a message in the chat conversation.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the OpenAI-compatible chat completion request.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// chatChoice represents a completion choice.
type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// chatUsage represents token usage.
type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// chatResponse is the OpenAI-compatible chat completion response.
type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

// Complete sends a single completion round trip and returns the raw response.
func (p *OpenRouterProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	var messages []chatMessage
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	chatReq := chatRequest{
		Model:    p.config.Model,
		Messages: messages,
	}
	if req.Temperature > 0 {
		chatReq.Temperature = req.Temperature
	} else {
		chatReq.Temperature = p.config.Temperature
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	} else {
		chatReq.MaxTokens = p.config.MaxTokens
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, &Error{Code: ErrCodeParseFailure, Message: fmt.Sprintf("marshal request: %v", err)}
	}

	url := fmt.Sprintf("%s/v1/chat/completions", strings.TrimSuffix(p.config.BaseURL, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Code: ErrCodeUnavailable, Message: fmt.Sprintf("create request: %v", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, &Error{Code: ErrCodeTimeout, Message: "request timeout"}
		}
		return nil, &Error{Code: ErrCodeUnavailable, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Code: ErrCodeParseFailure, Message: fmt.Sprintf("read response: %v", err)}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &Error{Code: ErrCodeRateLimit, Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(respBody))}
	case resp.StatusCode != http.StatusOK:
		return nil, &Error{Code: ErrCodeUnavailable, Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(respBody))}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, &Error{Code: ErrCodeParseFailure, Message: fmt.Sprintf("parse response: %v", err)}
	}
	if len(chatResp.Choices) == 0 {
		return nil, &Error{Code: ErrCodeParseFailure, Message: "no choices in response"}
	}

	return &CompletionResponse{
		Content:      strings.TrimSpace(chatResp.Choices[0].Message.Content),
		FinishReason: chatResp.Choices[0].FinishReason,
		LatencyMs:    int(time.Since(start).Milliseconds()),
		Model:        chatResp.Model,
		TokensUsed: TokenUsage{
			Prompt:     chatResp.Usage.PromptTokens,
			Completion: chatResp.Usage.CompletionTokens,
			Total:      chatResp.Usage.TotalTokens,
		},
	}, nil
}

// CompleteStructured sends a request expecting JSON output and parses it
// into target. Transport and parse failures are retried with exponential
// backoff until the policy is exhausted; the last error is returned.
func (p *OpenRouterProvider) CompleteStructured(ctx context.Context, req CompletionRequest, target interface{}) error {
	if !strings.Contains(req.Prompt, "JSON") && !strings.Contains(req.Prompt, "json") {
		req.Prompt += "\n\nRespond with valid JSON only."
	}

	var lastErr error
	for attempt := 0; attempt <= p.config.Retry.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := p.config.Retry.Sleep(ctx, attempt-1); err != nil {
				return lastErr
			}
		}

		resp, err := p.Complete(ctx, req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return err
			}
			continue
		}

		content := CleanFences(resp.Content)
		if err := json.Unmarshal([]byte(content), target); err != nil {
			lastErr = &Error{
				Code:    ErrCodeParseFailure,
				Message: fmt.Sprintf("parse JSON: %v", err),
				Details: resp.Content,
			}
			// Retry with a stronger hint about the format.
			if attempt < p.config.Retry.MaxRetries {
				req.Prompt += "\n\nIMPORTANT: Respond with valid JSON only. No markdown, no explanations."
			}
			continue
		}
		return nil
	}
	return lastErr
}

// Close releases provider resources.
func (p *OpenRouterProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}
