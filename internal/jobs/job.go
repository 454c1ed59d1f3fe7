package jobs

import (
	"github.com/google/uuid"

	"github.com/jackzampolin/rxscan/internal/providers"
)

// WorkUnit is one LLM call inside a stage fan-out.
type WorkUnit struct {
	ID string

	// Attribution
	Stage     string // "recognize", "verify", "consolidate", "direct"
	ItemKey   string // e.g. "pass_03", "position:2"
	PromptKey string

	ChatRequest *providers.ChatRequest
}

// NewWorkUnit creates a work unit with a fresh ID.
func NewWorkUnit(stage, itemKey, promptKey string, req *providers.ChatRequest) *WorkUnit {
	id := uuid.New().String()
	if req != nil && req.RequestID == "" {
		req.RequestID = id
	}
	return &WorkUnit{
		ID:          id,
		Stage:       stage,
		ItemKey:     itemKey,
		PromptKey:   promptKey,
		ChatRequest: req,
	}
}

// WorkResult is the outcome of a WorkUnit. Failures are captured here
// rather than returned, so a fan-out can merge them at the join.
type WorkResult struct {
	WorkUnitID string
	ItemKey    string
	Success    bool
	Error      error

	ChatResult *providers.ChatResult
}

// Content returns the response text of a successful result.
func (r WorkResult) Content() string {
	if !r.Success || r.ChatResult == nil {
		return ""
	}
	return r.ChatResult.Content
}
