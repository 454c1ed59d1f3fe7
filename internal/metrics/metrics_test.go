package metrics

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/jackzampolin/rxscan/internal/providers"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder("run-1")

	r.RecordLLMCall(RecordOpts{Stage: "recognize", ItemKey: "pass_01"}, &providers.ChatResult{
		Provider:      "mock",
		ModelUsed:     "m",
		TotalTokens:   30,
		PromptTokens:  20,
		ExecutionTime: 2 * time.Second,
		Attempts:      2,
		Success:       true,
	})
	r.RecordLLMCall(RecordOpts{Stage: "recognize", ItemKey: "pass_02"}, &providers.ChatResult{
		ExecutionTime: time.Second,
		Attempts:      1,
		ErrorType:     "http_error",
	})
	r.RecordLLMCall(RecordOpts{Stage: "verify", ItemKey: "position:1"}, nil)

	got := r.Metrics()
	if len(got) != 3 {
		t.Fatalf("len(Metrics()) = %d, want 3", len(got))
	}
	if got[0].RunID != "run-1" || got[0].CreatedAt.IsZero() {
		t.Errorf("attribution missing: %+v", got[0])
	}
	if got[2].ErrorType != "no_result" || got[2].Success {
		t.Errorf("nil result metric = %+v", got[2])
	}

	s := r.Summary()
	if s.Count != 3 || s.SuccessCount != 1 || s.ErrorCount != 2 {
		t.Errorf("counts = %d/%d/%d", s.Count, s.SuccessCount, s.ErrorCount)
	}
	if s.TotalTokens != 30 {
		t.Errorf("TotalTokens = %d, want 30", s.TotalTokens)
	}
	if s.TotalTime != 3*time.Second {
		t.Errorf("TotalTime = %v, want 3s", s.TotalTime)
	}

	rec := s.ByStage["recognize"]
	if rec == nil {
		t.Fatal("missing recognize stage")
	}
	if rec.Count != 2 || rec.Retries != 1 {
		t.Errorf("recognize stats = %+v", rec)
	}
	if rec.LatencyMin != 1 || rec.LatencyMax != 2 || rec.LatencyAvg != 1.5 {
		t.Errorf("latency = %v/%v/%v", rec.LatencyMin, rec.LatencyMax, rec.LatencyAvg)
	}
	if s.ByStage["verify"].ErrorCount != 1 {
		t.Errorf("verify stats = %+v", s.ByStage["verify"])
	}
}

func TestRecorderConcurrent(t *testing.T) {
	r := NewRecorder("run")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Record(Metric{Stage: "verify", Success: true})
		}()
	}
	wg.Wait()
	if n := len(r.Metrics()); n != 50 {
		t.Errorf("len(Metrics()) = %d, want 50", n)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Count != 0 || s.ByStage != nil {
		t.Errorf("Summarize(nil) = %+v", s)
	}
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		values []float64
		p      float64
		want   float64
	}{
		{nil, 50, 0},
		{[]float64{3}, 95, 3},
		{[]float64{1, 2, 3, 4, 5}, 50, 3},
		{[]float64{1, 2, 3, 4, 5}, 100, 5},
		{[]float64{1, 2}, 50, 1.5},
	}
	for _, tt := range tests {
		if got := percentile(tt.values, tt.p); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("percentile(%v, %v) = %v, want %v", tt.values, tt.p, got, tt.want)
		}
	}
}
