// Package metrics provides usage tracking for LLM calls made during a run.
package metrics

import "time"

// Metric represents a single recorded metric for an LLM call.
// Metrics are append-only records with full attribution.
type Metric struct {
	// Attribution (for filtering/aggregation)
	RunID   string `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Stage   string `json:"stage,omitempty" yaml:"stage,omitempty"`
	ItemKey string `json:"item_key,omitempty" yaml:"item_key,omitempty"` // e.g., "pass_03", "position:2"

	// Provider info
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model    string `json:"model,omitempty" yaml:"model,omitempty"`

	// Tokens
	PromptTokens     int `json:"prompt_tokens,omitempty" yaml:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty" yaml:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty" yaml:"total_tokens,omitempty"`

	// Timing
	ExecutionSeconds float64 `json:"execution_seconds,omitempty" yaml:"execution_seconds,omitempty"`
	Attempts         int     `json:"attempts,omitempty" yaml:"attempts,omitempty"`

	// Status
	Success   bool   `json:"success" yaml:"success"`
	ErrorType string `json:"error_type,omitempty" yaml:"error_type,omitempty"`

	// Metadata
	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}
