// Package verify holds the prompts for grounded per-group verification.
package verify

import (
	_ "embed"

	"github.com/jackzampolin/rxscan/internal/prompts"
)

//go:embed positional.tmpl
var positionalPrompt string

//go:embed identity.tmpl
var identityPrompt string

// Prompt keys
const (
	PositionalKey = "verify.positional"
	IdentityKey   = "verify.identity"
)

// PromptData is the template data for both verification prompts.
type PromptData struct {
	Position   int
	Summary    string // "Medicine 2: [Napa: 80%, Nappa: 60%]"
	Name       string // best candidate name
	Dosage     string
	Region     string
	Registries string // "MedEx or Arogga"
}

// Prompt returns the embedded default for key, or "" if unknown.
func Prompt(key string) string {
	switch key {
	case PositionalKey:
		return positionalPrompt
	case IdentityKey:
		return identityPrompt
	default:
		return ""
	}
}

// RegisterPrompts registers the verification prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         PositionalKey,
		Text:        positionalPrompt,
		Description: "Grounded verification of all interpretations at one list position",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         IdentityKey,
		Text:        identityPrompt,
		Description: "Grounded verification of one deduplicated medicine name",
	})
}
