// Package recognize holds the prompts for the multi-pass recognition stage.
package recognize

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
	PositionalKey = "recognize.positional"
	IdentityKey   = "recognize.identity"
)

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

// RegisterPrompts registers the recognition prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         PositionalKey,
		Text:        positionalPrompt,
		Description: "Recognition pass - numbered medicine list with confidence per line",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         IdentityKey,
		Text:        identityPrompt,
		Description: "Recognition pass - medicine list with confidence and dosage per line",
	})
}
