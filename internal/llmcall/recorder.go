package llmcall

import (
	"sort"
	"sync"

	"github.com/jackzampolin/rxscan/internal/providers"
)

// Recorder keeps every call of a run in memory. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	calls []*Call
}

// NewRecorder creates a new LLM call recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record captures an LLM call. Nil results are ignored.
func (r *Recorder) Record(result *providers.ChatResult, opts RecordOptions) {
	r.RecordCall(FromChatResult(result, opts))
}

// RecordCall captures an already-constructed Call.
func (r *Recorder) RecordCall(call *Call) {
	if call == nil {
		return
	}
	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()
}

// Calls returns the recorded calls ordered by timestamp.
func (r *Recorder) Calls() []*Call {
	r.mu.Lock()
	out := make([]*Call, len(r.calls))
	copy(out, r.calls)
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// Len returns the number of recorded calls.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}
