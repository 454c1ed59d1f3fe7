package pipeline

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jackzampolin/rxscan/internal/grouping"
	"github.com/jackzampolin/rxscan/internal/prompts/consolidate"
	"github.com/jackzampolin/rxscan/internal/prompts/recognize"
	"github.com/jackzampolin/rxscan/internal/prompts/verify"
)

// Sentinel errors for mode registration and lookup.
var (
	// ErrUnknownMode is returned for a mode name that is not registered.
	ErrUnknownMode = errors.New("unknown pipeline mode")

	// ErrModeAlreadyRegistered is returned when registering a duplicate mode.
	ErrModeAlreadyRegistered = errors.New("mode already registered")
)

// Mode names
const (
	ModePositional = "positional"
	ModeIdentity   = "identity"
	ModeDirect     = "direct"
)

// Mode is one variant of the extraction skeleton.
type Mode struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`

	// Strategy is the grouping strategy name. Empty for Direct modes.
	Strategy string `json:"strategy,omitempty" yaml:"strategy,omitempty"`

	// Prompt keys per stage
	RecognizeKey   string `json:"recognize_prompt,omitempty" yaml:"recognize_prompt,omitempty"`
	VerifyKey      string `json:"verify_prompt,omitempty" yaml:"verify_prompt,omitempty"`
	ConsolidateKey string `json:"consolidate_prompt,omitempty" yaml:"consolidate_prompt,omitempty"`

	// Temperature preset: pass i runs at TemperatureBase + i*TemperatureStep.
	TemperatureBase float64 `json:"temperature_base" yaml:"temperature_base"`
	TemperatureStep float64 `json:"temperature_step" yaml:"temperature_step"`

	// Direct skips recognition, grouping and verification and makes one
	// grounded call over the image.
	Direct bool `json:"direct,omitempty" yaml:"direct,omitempty"`
}

// ModeRegistry holds the available pipeline modes.
type ModeRegistry struct {
	mu    sync.RWMutex
	modes map[string]Mode
	order []string // Maintains registration order
}

// NewModeRegistry creates an empty mode registry.
func NewModeRegistry() *ModeRegistry {
	return &ModeRegistry{
		modes: make(map[string]Mode),
	}
}

// DefaultModes returns a registry with the built-in modes.
func DefaultModes() *ModeRegistry {
	r := NewModeRegistry()
	for _, m := range []Mode{
		{
			Name:            ModePositional,
			Description:     "Group readings by list position, verify each position",
			Strategy:        grouping.PositionalName,
			RecognizeKey:    recognize.PositionalKey,
			VerifyKey:       verify.PositionalKey,
			ConsolidateKey:  consolidate.PositionalKey,
			TemperatureBase: 0.7,
			TemperatureStep: 0.2,
		},
		{
			Name:            ModeIdentity,
			Description:     "Deduplicate readings by name, verify each distinct name",
			Strategy:        grouping.IdentityName,
			RecognizeKey:    recognize.IdentityKey,
			VerifyKey:       verify.IdentityKey,
			ConsolidateKey:  consolidate.IdentityKey,
			TemperatureBase: 1.0,
			TemperatureStep: 0.1,
		},
		{
			Name:        ModeDirect,
			Description: "One grounded call that reads and verifies the image",
			Direct:      true,
		},
	} {
		if err := r.Register(m); err != nil {
			panic(err) // built-in modes are static
		}
	}
	return r
}

// Register adds a mode to the registry.
// Returns an error if a mode with the same name is already registered or
// its grouping strategy is unknown.
func (r *ModeRegistry) Register(m Mode) error {
	if m.Name == "" {
		return fmt.Errorf("mode name is required")
	}
	if !m.Direct {
		if _, err := grouping.Lookup(m.Strategy); err != nil {
			return fmt.Errorf("mode %q: %w", m.Name, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modes[m.Name]; exists {
		return fmt.Errorf("%w: %s", ErrModeAlreadyRegistered, m.Name)
	}
	r.modes[m.Name] = m
	r.order = append(r.order, m.Name)
	return nil
}

// Get returns a mode by name.
func (r *ModeRegistry) Get(name string) (Mode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.modes[name]
	if !ok {
		return Mode{}, fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
	return m, nil
}

// List returns all modes in registration order.
func (r *ModeRegistry) List() []Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()

	modes := make([]Mode, 0, len(r.order))
	for _, name := range r.order {
		modes = append(modes, r.modes[name])
	}
	return modes
}

// Names returns all mode names in registration order.
func (r *ModeRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}
