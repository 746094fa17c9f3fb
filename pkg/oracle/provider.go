// Package oracle provides the probabilistic text-understanding capability
// the pipeline falls back to when deterministic rules fail.
//
// The boundary is a request/response contract over structured text: prompt
// in, JSON-shaped answer out. Providers may fail or return malformed
// output; callers must treat both as recoverable. The typed Client wraps a
// Provider with the batch call shapes the stages use.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	merrors "github.com/otherjamesbrown/minutes-cli/pkg/errors"
)

// Provider defines the interface for oracle backends.
type Provider interface {
	// Name returns the provider identifier (e.g., "openrouter-gpt-4o-mini").
	Name() string

	// Complete sends a completion request and returns the raw response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// CompleteStructured sends a request expecting JSON output and parses it
	// into target, retrying with backoff on transport and parse failures.
	CompleteStructured(ctx context.Context, req CompletionRequest, target interface{}) error

	// Close releases provider resources.
	Close() error
}

// CompletionRequest represents a request to the oracle.
type CompletionRequest struct {
	// Prompt is the full prompt text.
	Prompt string `json:"prompt"`

	// SystemPrompt is an optional system-level instruction.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// MaxTokens limits response length (0 = provider default).
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0 = provider default).
	Temperature float64 `json:"temperature,omitempty"`
}

// CompletionResponse represents a raw response from the oracle.
type CompletionResponse struct {
	// Content is the raw text response.
	Content string `json:"content"`

	// TokensUsed tracks token consumption.
	TokensUsed TokenUsage `json:"tokens_used"`

	// LatencyMs is the response time in milliseconds.
	LatencyMs int `json:"latency_ms"`

	// Model is the actual model used (may differ from requested).
	Model string `json:"model"`

	// FinishReason indicates why the model stopped generating.
	FinishReason string `json:"finish_reason,omitempty"`
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
	Total      int `json:"total"`
}

// ErrorCode identifies the type of oracle error.
type ErrorCode string

const (
	ErrCodeTimeout      ErrorCode = "timeout"
	ErrCodeUnavailable  ErrorCode = "unavailable"
	ErrCodeRateLimit    ErrorCode = "rate_limit"
	ErrCodeParseFailure ErrorCode = "parse_failure"
)

// Error represents an error from the oracle provider.
type Error struct {
	Code    ErrorCode
	Message string
	Details string
}

func (e *Error) Error() string {
	return fmt.Sprintf("oracle %s: %s", e.Code, e.Message)
}

// Unwrap maps provider error codes onto the domain sentinels so call sites
// can distinguish malformed answers from transport failures with errors.Is.
func (e *Error) Unwrap() error {
	if e.Code == ErrCodeParseFailure {
		return merrors.ErrMalformedAnswer
	}
	return merrors.ErrOracleUnavailable
}

// CleanFences strips markdown code fences from an oracle answer. Models
// routinely wrap JSON in ```json blocks despite instructions not to.
func CleanFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// FlexFloat64 is a float64 that unmarshals from both JSON numbers and
// quoted strings. Models frequently quote confidence values.
type FlexFloat64 float64

func (f *FlexFloat64) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexFloat64(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("FlexFloat64: cannot parse %q: %w", s, err)
		}
		*f = FlexFloat64(n)
		return nil
	}
	return fmt.Errorf("FlexFloat64: cannot unmarshal %s", string(data))
}

func (f FlexFloat64) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(f))
}

func (f FlexFloat64) Float64() float64 {
	return float64(f)
}
