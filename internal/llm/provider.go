package llm

import (
	"context"

	"github.com/zhikangxie107/intr.vu/internal/models"
)

// Message is one turn of a chat-completion request.
type Message struct {
	Role    models.Role
	Content string
}

// Request is a single chat-completion call: a fixed system instruction, an
// ordered message list, sampling parameters, and an optional structured
// JSON output hint used by the review flow.
type Request struct {
	System          string
	Messages        []Message
	Temperature     float64
	MaxOutputTokens int
	StopSequences   []string
	JSONOutput      bool
}

// Response carries the generated text plus token usage metadata.
type Response struct {
	Text           string
	Usage          models.TokenUsage
	Model          string
	ProcessingTime int
}

// Provider is the interface LLM backends implement.
type Provider interface {
	Generate(ctx context.Context, req *Request) (*Response, error)
	GetProviderName() string
}

// ProviderError represents an error from an LLM provider.
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Common error codes shared across providers.
const (
	ErrCodeAPIKey       = "invalid_api_key"
	ErrCodeRateLimit    = "rate_limit_exceeded"
	ErrCodeServiceDown  = "service_unavailable"
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeTimeout      = "timeout"
)
