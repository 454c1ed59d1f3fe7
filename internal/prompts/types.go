// Package prompts provides prompt management with embedded defaults and
// file-based overrides.
//
// Embedded .tmpl files in each stage package are the source of truth for
// defaults. A prompts directory may override any of them: a file named
// <key>.tmpl (for example verify.positional.tmpl) replaces the embedded
// text for that key.
//
// Resolution order:
//  1. Override file in the prompts directory (if configured and present)
//  2. Embedded default (from .tmpl files in code)
package prompts

// ResolvedPrompt is the result of resolving a prompt key.
type ResolvedPrompt struct {
	Key        string   `json:"key" yaml:"key"`
	Text       string   `json:"text" yaml:"text"`
	Variables  []string `json:"variables,omitempty" yaml:"variables,omitempty"`
	IsOverride bool     `json:"is_override" yaml:"is_override"`
	Hash       string   `json:"hash" yaml:"hash"` // SHA256 of Text for traceability
}

// EmbeddedPrompt represents a prompt loaded from an embedded .tmpl file.
type EmbeddedPrompt struct {
	Key         string   `json:"key" yaml:"key"` // Hierarchical key: verify.positional
	Text        string   `json:"-" yaml:"-"`     // The prompt text (Go template)
	Description string   `json:"description" yaml:"description"`
	Variables   []string `json:"variables,omitempty" yaml:"variables,omitempty"`
	Hash        string   `json:"hash" yaml:"hash"`
}
