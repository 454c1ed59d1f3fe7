package metrics

import (
	"sync"
	"time"

	"github.com/jackzampolin/rxscan/internal/providers"
)

// Recorder collects metrics in memory for one run. Safe for concurrent use.
type Recorder struct {
	runID string

	mu      sync.Mutex
	metrics []Metric
}

// NewRecorder creates a new metrics recorder attributing every metric to runID.
func NewRecorder(runID string) *Recorder {
	return &Recorder{runID: runID}
}

// RecordOpts provides context for a metric recording.
type RecordOpts struct {
	Stage   string
	ItemKey string
}

// Record stores a single metric.
func (r *Recorder) Record(m Metric) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	if m.RunID == "" {
		m.RunID = r.runID
	}
	r.mu.Lock()
	r.metrics = append(r.metrics, m)
	r.mu.Unlock()
}

// RecordLLMCall records metrics from an LLM chat result.
// A nil result is recorded as a failed call with no usage.
func (r *Recorder) RecordLLMCall(opts RecordOpts, result *providers.ChatResult) {
	m := Metric{
		Stage:   opts.Stage,
		ItemKey: opts.ItemKey,
	}
	if result != nil {
		m.Provider = result.Provider
		m.Model = result.ModelUsed
		m.PromptTokens = result.PromptTokens
		m.CompletionTokens = result.CompletionTokens
		m.TotalTokens = result.TotalTokens
		m.ExecutionSeconds = result.ExecutionTime.Seconds()
		m.Attempts = result.Attempts
		m.Success = result.Success
		m.ErrorType = result.ErrorType
	} else {
		m.ErrorType = "no_result"
	}
	r.Record(m)
}

// Metrics returns a copy of everything recorded so far, in record order.
func (r *Recorder) Metrics() []Metric {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Metric, len(r.metrics))
	copy(out, r.metrics)
	return out
}

// Summary aggregates everything recorded so far.
func (r *Recorder) Summary() *Summary {
	return Summarize(r.Metrics())
}
