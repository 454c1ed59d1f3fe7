package direct

import (
	"github.com/jackzampolin/rxscan/internal/jobs"
	"github.com/jackzampolin/rxscan/internal/prompts"
	"github.com/jackzampolin/rxscan/internal/providers"
)

// Stage is the stage name the direct work unit carries. Its result is the
// final text, so it is recorded under the consolidation stage.
const Stage = "consolidate"

// Input contains the data needed for the direct request.
type Input struct {
	Image       providers.Image
	Region      string
	Registries  []string
	Temperature float64
	MaxTokens   int

	// PromptOverride replaces the embedded template when non-empty.
	PromptOverride string
}

// CreateWorkUnit creates the grounded image work unit.
func CreateWorkUnit(in Input) (*jobs.WorkUnit, error) {
	text := in.PromptOverride
	if text == "" {
		text = directPrompt
	}

	prompt, err := prompts.Render(PromptKey, text, PromptData{
		Region:     in.Region,
		Registries: prompts.JoinRegistries(in.Registries),
	})
	if err != nil {
		return nil, err
	}

	req := providers.UserPrompt(prompt, in.Image)
	req.Temperature = providers.Temperature(in.Temperature)
	req.MaxTokens = in.MaxTokens
	req.Grounded = true

	return jobs.NewWorkUnit(Stage, "prescription", PromptKey, req), nil
}
