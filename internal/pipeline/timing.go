package pipeline

import (
	"log/slog"
	"time"
)

// Stage names as they appear in timings, metrics and call traces.
const (
	StageRecognize   = "recognize"
	StageParse       = "parse"
	StageGroup       = "group"
	StageVerify      = "verify"
	StageConsolidate = "consolidate"
	StageTotal       = "total"
)

// StageTiming is the wall-clock duration of one stage.
type StageTiming struct {
	Stage   string  `json:"stage" yaml:"stage"`
	Seconds float64 `json:"seconds" yaml:"seconds"`
}

// Timings lists stage durations in execution order.
type Timings []StageTiming

// Get returns the duration recorded for stage.
func (t Timings) Get(stage string) (time.Duration, bool) {
	for _, st := range t {
		if st.Stage == stage {
			return time.Duration(st.Seconds * float64(time.Second)), true
		}
	}
	return 0, false
}

// stopwatch records stage durations for one run.
type stopwatch struct {
	start   time.Time
	timings Timings
	logger  *slog.Logger
}

func newStopwatch(logger *slog.Logger) *stopwatch {
	return &stopwatch{start: time.Now(), logger: logger}
}

// time runs fn and records its duration under stage.
func (s *stopwatch) time(stage string, fn func()) {
	start := time.Now()
	fn()
	s.record(stage, time.Since(start))
}

func (s *stopwatch) record(stage string, d time.Duration) {
	s.timings = append(s.timings, StageTiming{Stage: stage, Seconds: d.Seconds()})
	s.logger.Info("stage complete", "stage", stage, "duration_ms", d.Milliseconds())
}

// finish records the total and returns all timings.
func (s *stopwatch) finish() Timings {
	s.record(StageTotal, time.Since(s.start))
	return s.timings
}
