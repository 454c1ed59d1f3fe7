package pipeline

import (
	"time"

	"github.com/jackzampolin/rxscan/internal/candidate"
	"github.com/jackzampolin/rxscan/internal/grouping"
	"github.com/jackzampolin/rxscan/internal/llmcall"
	"github.com/jackzampolin/rxscan/internal/metrics"
	"github.com/jackzampolin/rxscan/internal/providers"
)

// Pass is the raw text of one successful recognition pass.
type Pass struct {
	Index       int     `json:"index" yaml:"index"` // 1-based pass number
	Temperature float64 `json:"temperature" yaml:"temperature"`
	Text        string  `json:"text" yaml:"text"`
}

// Verification is the grounded check of one group. There is exactly one
// per group, in group order.
type Verification struct {
	Key      string             `json:"key" yaml:"key"`
	Position int                `json:"position" yaml:"position"`
	Original string             `json:"original" yaml:"original"`
	Dosage   string             `json:"dosage,omitempty" yaml:"dosage,omitempty"`
	Text     string             `json:"text" yaml:"text"`
	Sources  []providers.Source `json:"sources,omitempty" yaml:"sources,omitempty"`
	Failed   bool               `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// Report is everything a run produced.
type Report struct {
	RunID     string    `json:"run_id" yaml:"run_id"`
	Mode      string    `json:"mode" yaml:"mode"`
	Source    string    `json:"source,omitempty" yaml:"source,omitempty"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	Passes        []Pass                `json:"passes" yaml:"passes"`
	Candidates    []candidate.Candidate `json:"candidates" yaml:"candidates"`
	Groups        []grouping.Group      `json:"groups" yaml:"groups"`
	Verifications []Verification        `json:"verifications" yaml:"verifications"`
	Final         string                `json:"final" yaml:"final"`

	Timings Timings          `json:"timings" yaml:"timings"`
	Usage   *metrics.Summary `json:"usage,omitempty" yaml:"usage,omitempty"`
	Calls   []*llmcall.Call  `json:"calls,omitempty" yaml:"calls,omitempty"`
}

// String returns the final text.
func (r *Report) String() string {
	return r.Final
}

// errorText is the placeholder a failed call leaves in place of its answer.
func errorText(err error) string {
	if err == nil {
		return "Error: unknown failure"
	}
	return "Error: " + err.Error()
}
