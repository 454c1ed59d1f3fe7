// Package llmcall provides LLM call recording for traceability.
// Every LLM API call is recorded with its prompt key, response, and usage.
package llmcall

import (
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/rxscan/internal/providers"
)

// Call represents a recorded LLM API call.
type Call struct {
	// Unique identifier
	ID string `json:"id" yaml:"id"`

	// Timing
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	LatencyMs int       `json:"latency_ms" yaml:"latency_ms"`

	// Context references
	RunID   string `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Stage   string `json:"stage,omitempty" yaml:"stage,omitempty"`
	ItemKey string `json:"item_key,omitempty" yaml:"item_key,omitempty"`

	// Prompt traceability
	PromptKey string `json:"prompt_key" yaml:"prompt_key"`

	// Model info
	Provider    string   `json:"provider" yaml:"provider"`
	Model       string   `json:"model" yaml:"model"`
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	Grounded    bool     `json:"grounded,omitempty" yaml:"grounded,omitempty"`

	// Token usage
	InputTokens  int `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int `json:"output_tokens" yaml:"output_tokens"`

	// Response
	Response string             `json:"response" yaml:"response"`
	Sources  []providers.Source `json:"sources,omitempty" yaml:"sources,omitempty"`
	Attempts int                `json:"attempts" yaml:"attempts"`

	// Status
	Success bool   `json:"success" yaml:"success"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// RecordOptions provides context for recording an LLM call.
type RecordOptions struct {
	// Context references (all optional)
	RunID   string
	Stage   string
	ItemKey string

	// Prompt identification (required for traceability)
	PromptKey string

	// Request parameters (pointer to distinguish "not set" from "set to 0")
	Temperature *float64
	Grounded    bool
}

// FromChatResult creates a Call from a ChatResult.
// Returns nil if result is nil.
func FromChatResult(result *providers.ChatResult, opts RecordOptions) *Call {
	if result == nil {
		return nil
	}

	call := &Call{
		ID:           uuid.New().String(),
		Timestamp:    time.Now(),
		LatencyMs:    int(result.ExecutionTime.Milliseconds()),
		RunID:        opts.RunID,
		Stage:        opts.Stage,
		ItemKey:      opts.ItemKey,
		PromptKey:    opts.PromptKey,
		Provider:     result.Provider,
		Model:        result.ModelUsed,
		Temperature:  opts.Temperature,
		Grounded:     opts.Grounded,
		InputTokens:  result.PromptTokens,
		OutputTokens: result.CompletionTokens,
		Response:     result.Content,
		Sources:      result.Sources,
		Attempts:     result.Attempts,
		Success:      result.Success,
	}

	if !result.Success {
		call.Error = result.ErrorMessage
	}

	return call
}
