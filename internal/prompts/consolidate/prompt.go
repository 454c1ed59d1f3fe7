// Package consolidate holds the prompts for the fan-in consolidation call.
package consolidate

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
	PositionalKey = "consolidate.positional"
	IdentityKey   = "consolidate.identity"
)

// Entry is one verified group as the consolidation prompt quotes it.
type Entry struct {
	Index    int // 1-based
	Position int
	Original string
	Dosage   string
	Text     string
}

// PromptData is the template data for both consolidation prompts.
type PromptData struct {
	Region  string
	Entries []Entry
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

// RegisterPrompts registers the consolidation prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         PositionalKey,
		Text:        positionalPrompt,
		Description: "Final list from per-position verification results",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         IdentityKey,
		Text:        identityPrompt,
		Description: "Final deduplicated list from per-name verification results",
	})
}
