// Package direct holds the single-call prompt that reads, searches and
// corrects a prescription in one grounded request.
package direct

import (
	_ "embed"

	"github.com/jackzampolin/rxscan/internal/prompts"
)

//go:embed direct.tmpl
var directPrompt string

// PromptKey is the key for the direct extraction prompt.
const PromptKey = "direct.extract"

// PromptData is the template data for the direct prompt.
type PromptData struct {
	Region     string
	Registries string
}

// Prompt returns the embedded default.
func Prompt() string {
	return directPrompt
}

// RegisterPrompts registers the direct prompt with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         PromptKey,
		Text:        directPrompt,
		Description: "One grounded call that reads and verifies the whole prescription",
	})
}
