// Package grouping clusters candidates from many recognition passes into
// per-item groups.
//
// Two strategies exist and are deliberately kept apart:
//   - positional trusts the ordinal each pass assigned to a line item
//   - identity trusts the spelling of the name and ignores position
//
// Prescriptions differ in which of the two signals is more stable across
// passes, so the caller picks one per run.
package grouping

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackzampolin/rxscan/internal/candidate"
)

// ErrUnknownStrategy is returned by Lookup for an unregistered name.
var ErrUnknownStrategy = errors.New("unknown grouping strategy")

// Group is a cluster of candidates believed to be the same prescription item.
type Group struct {
	// Key identifies the group: "position:N" or "name:<lowercased name>".
	Key      string                `json:"key" yaml:"key"`
	Position int                   `json:"position" yaml:"position"`
	Members  []candidate.Candidate `json:"members" yaml:"members"`
	// Summary is the compact text quoted verbatim in verification prompts.
	Summary string `json:"summary" yaml:"summary"`
}

// Best returns the highest-confidence member. Ties keep member order.
func (g Group) Best() candidate.Candidate {
	var best candidate.Candidate
	for i, m := range g.Members {
		if i == 0 || m.Confidence > best.Confidence {
			best = m
		}
	}
	return best
}

// Dosage returns the first non-empty dosage among members, best first.
func (g Group) Dosage() string {
	if d := g.Best().Dosage; d != "" {
		return d
	}
	for _, m := range g.Members {
		if m.Dosage != "" {
			return m.Dosage
		}
	}
	return ""
}

// Strategy turns a flat candidate list into ordered groups.
type Strategy interface {
	Name() string
	Group(candidates []candidate.Candidate) []Group
}

var strategies = map[string]Strategy{
	PositionalName: Positional{},
	IdentityName:   Identity{},
}

// Lookup returns the strategy registered under name.
func Lookup(name string) (Strategy, error) {
	s, ok := strategies[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return s, nil
}

// Names returns the registered strategy names, sorted.
func Names() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// summarize renders "Medicine 2: [Napa: 80%, Nappa: 60%]".
func summarize(label string, members []candidate.Candidate) string {
	parts := make([]string, len(members))
	for i, m := range members {
		parts[i] = m.String()
	}
	return fmt.Sprintf("Medicine %s: [%s]", label, strings.Join(parts, ", "))
}
