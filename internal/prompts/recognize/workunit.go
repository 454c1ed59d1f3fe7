package recognize

import (
	"fmt"

	"github.com/jackzampolin/rxscan/internal/jobs"
	"github.com/jackzampolin/rxscan/internal/prompts"
	"github.com/jackzampolin/rxscan/internal/providers"
)

// Stage is the stage name recognition work units carry.
const Stage = "recognize"

// Input contains the data needed for one recognition pass.
type Input struct {
	Key         string // PositionalKey or IdentityKey
	Pass        int    // 1-based pass number
	Image       providers.Image
	Temperature float64
	MaxTokens   int

	// PromptOverride replaces the embedded template when non-empty.
	PromptOverride string
}

// ItemKey names a pass for metrics and traces.
func ItemKey(pass int) string {
	return fmt.Sprintf("pass_%02d", pass)
}

// CreateWorkUnit creates a recognition LLM work unit.
func CreateWorkUnit(in Input) (*jobs.WorkUnit, error) {
	text := in.PromptOverride
	if text == "" {
		text = Prompt(in.Key)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: %s", prompts.ErrPromptNotFound, in.Key)
	}

	prompt, err := prompts.Render(in.Key, text, struct{}{})
	if err != nil {
		return nil, err
	}

	req := providers.UserPrompt(prompt, in.Image)
	req.Temperature = providers.Temperature(in.Temperature)
	req.MaxTokens = in.MaxTokens

	return jobs.NewWorkUnit(Stage, ItemKey(in.Pass), in.Key, req), nil
}
