package providers

import (
	"context"
	"time"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// LLMClient is the interface every recognition/verification backend implements.
// Implementations must be safe for concurrent use: the pipeline shares one
// client across all goroutines of a fan-out.
type LLMClient interface {
	// Chat sends a single request and returns the model's text.
	// A non-nil error always comes with a non-nil result describing the failure.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)

	// Name returns the client identifier (e.g., "gemini").
	Name() string

	// Rate limiting properties
	RequestsPerSecond() float64
	MaxRetries() int
	RetryDelayBase() time.Duration
}

// Image is an inline image attached to a message.
type Image struct {
	Data     []byte `json:"-"`
	MimeType string `json:"mime_type"`
}

// Message represents a chat message.
type Message struct {
	Role    string  `json:"role"` // "system", "user", "assistant"
	Content string  `json:"content"`
	Images  []Image `json:"-"` // For vision models
}

// ChatRequest is a request to an LLM.
type ChatRequest struct {
	// Required
	Messages []Message `json:"messages"`

	// Model selection (uses client default if empty)
	Model string `json:"model,omitempty"`

	// Generation parameters. Temperature is a pointer so an explicit 0 is
	// distinguishable from "provider default".
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`

	// Grounded enables the provider's web search tool so the answer is
	// checked against live sources instead of model memory alone.
	Grounded bool `json:"grounded,omitempty"`

	// Request tracking
	RequestID string `json:"-"`
}

// Temperature returns a pointer to t for ChatRequest.Temperature.
func Temperature(t float64) *float64 {
	return &t
}

// UserPrompt builds a single-message request.
func UserPrompt(prompt string, images ...Image) *ChatRequest {
	return &ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: prompt, Images: images}},
	}
}

// Source is one web page a grounded answer cited.
type Source struct {
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	URI   string `json:"uri" yaml:"uri"`
}

// ChatResult is the complete response from an LLM call.
type ChatResult struct {
	// Response content
	Content string   `json:"content"`
	Sources []Source `json:"sources,omitempty"`

	// Token counts
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	// Timing
	ExecutionTime time.Duration `json:"execution_time"`

	// Provider info
	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`

	// Request tracking
	RequestID string `json:"request_id"`
	Attempts  int    `json:"attempts"`

	// Success/error
	Success      bool   `json:"success"`
	ErrorType    string `json:"error_type,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// fail fills the error fields of r and returns err for one-line returns.
func (r *ChatResult) fail(errorType string, err error, start time.Time) (*ChatResult, error) {
	r.Success = false
	r.ErrorType = errorType
	r.ErrorMessage = err.Error()
	r.ExecutionTime = time.Since(start)
	return r, err
}
