package consolidate

import (
	"fmt"

	"github.com/jackzampolin/rxscan/internal/jobs"
	"github.com/jackzampolin/rxscan/internal/prompts"
	"github.com/jackzampolin/rxscan/internal/providers"
)

// Stage is the stage name the consolidation work unit carries.
const Stage = "consolidate"

// ItemKey is the single item consolidation produces.
const ItemKey = "final"

// Input contains the data needed for the consolidation request.
type Input struct {
	Key         string // PositionalKey or IdentityKey
	Region      string
	Entries     []Entry
	Temperature float64
	Grounded    bool
	MaxTokens   int

	// PromptOverride replaces the embedded template when non-empty.
	PromptOverride string
}

// CreateWorkUnit creates the consolidation LLM work unit.
func CreateWorkUnit(in Input) (*jobs.WorkUnit, error) {
	text := in.PromptOverride
	if text == "" {
		text = Prompt(in.Key)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: %s", prompts.ErrPromptNotFound, in.Key)
	}

	prompt, err := prompts.Render(in.Key, text, PromptData{
		Region:  in.Region,
		Entries: in.Entries,
	})
	if err != nil {
		return nil, err
	}

	req := providers.UserPrompt(prompt)
	req.Temperature = providers.Temperature(in.Temperature)
	req.MaxTokens = in.MaxTokens
	req.Grounded = in.Grounded

	return jobs.NewWorkUnit(Stage, ItemKey, in.Key, req), nil
}
