// Package candidate turns free-text recognition output into typed medicine candidates.
//
// The lexer is line oriented and tolerant: any line that does not look like
// a medicine entry is skipped, so a model that wraps its list in prose still
// yields usable candidates.
package candidate

import "fmt"

// MaxConfidence is the upper bound of Candidate.Confidence.
const MaxConfidence = 100

// Candidate is one reading of one prescription line from one recognition pass.
type Candidate struct {
	Name       string `json:"name" yaml:"name"`
	Confidence int    `json:"confidence" yaml:"confidence"`
	Position   int    `json:"position" yaml:"position"` // 0 when the line had no ordinal
	Dosage     string `json:"dosage,omitempty" yaml:"dosage,omitempty"`
}

// String renders the candidate the way group summaries quote it.
func (c Candidate) String() string {
	return fmt.Sprintf("%s: %d%%", c.Name, c.Confidence)
}

// clampConfidence keeps v inside [0, MaxConfidence].
func clampConfidence(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxConfidence {
		return MaxConfidence
	}
	return v
}
