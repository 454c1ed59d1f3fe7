package verify

import (
	"fmt"

	"github.com/jackzampolin/rxscan/internal/grouping"
	"github.com/jackzampolin/rxscan/internal/jobs"
	"github.com/jackzampolin/rxscan/internal/prompts"
	"github.com/jackzampolin/rxscan/internal/providers"
)

// Stage is the stage name verification work units carry.
const Stage = "verify"

// Input contains the data needed for one verification request.
type Input struct {
	Key         string // PositionalKey or IdentityKey
	Group       grouping.Group
	Region      string
	Registries  []string
	Temperature float64
	MaxTokens   int

	// PromptOverride replaces the embedded template when non-empty.
	PromptOverride string
}

// CreateWorkUnit creates a grounded verification LLM work unit for one group.
func CreateWorkUnit(in Input) (*jobs.WorkUnit, error) {
	text := in.PromptOverride
	if text == "" {
		text = Prompt(in.Key)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: %s", prompts.ErrPromptNotFound, in.Key)
	}

	data := PromptData{
		Position:   in.Group.Position,
		Summary:    in.Group.Summary,
		Name:       in.Group.Best().Name,
		Dosage:     in.Group.Dosage(),
		Region:     in.Region,
		Registries: prompts.JoinRegistries(in.Registries),
	}
	prompt, err := prompts.Render(in.Key, text, data)
	if err != nil {
		return nil, err
	}

	req := providers.UserPrompt(prompt)
	req.Temperature = providers.Temperature(in.Temperature)
	req.MaxTokens = in.MaxTokens
	req.Grounded = true

	return jobs.NewWorkUnit(Stage, in.Group.Key, in.Key, req), nil
}
