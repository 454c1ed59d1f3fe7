package llmcall

import (
	"sync"
	"testing"
	"time"

	"github.com/jackzampolin/rxscan/internal/providers"
)

func TestFromChatResult(t *testing.T) {
	if FromChatResult(nil, RecordOptions{}) != nil {
		t.Error("expected nil call for nil result")
	}

	temp := 0.2
	call := FromChatResult(&providers.ChatResult{
		Content:          "Napa (Paracetamol 500mg)",
		Sources:          []providers.Source{{URI: "https://medex.com.bd"}},
		PromptTokens:     40,
		CompletionTokens: 12,
		ExecutionTime:    1500 * time.Millisecond,
		Provider:         "gemini",
		ModelUsed:        "gemini-2.0-flash",
		Attempts:         2,
		Success:          true,
	}, RecordOptions{
		RunID:       "run-1",
		Stage:       "verify",
		ItemKey:     "position:1",
		PromptKey:   "verify.positional",
		Temperature: &temp,
		Grounded:    true,
	})

	if call.ID == "" {
		t.Error("ID not set")
	}
	if call.LatencyMs != 1500 {
		t.Errorf("LatencyMs = %d, want 1500", call.LatencyMs)
	}
	if call.PromptKey != "verify.positional" || call.Stage != "verify" || !call.Grounded {
		t.Errorf("attribution = %+v", call)
	}
	if call.Temperature == nil || *call.Temperature != 0.2 {
		t.Errorf("Temperature = %v", call.Temperature)
	}
	if call.InputTokens != 40 || call.OutputTokens != 12 || call.Attempts != 2 {
		t.Errorf("usage = %+v", call)
	}
	if call.Error != "" {
		t.Errorf("Error = %q on success", call.Error)
	}

	failed := FromChatResult(&providers.ChatResult{ErrorMessage: "boom"}, RecordOptions{})
	if failed.Success || failed.Error != "boom" {
		t.Errorf("failed call = %+v", failed)
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.Record(nil, RecordOptions{})
	r.RecordCall(nil)
	if r.Len() != 0 {
		t.Fatalf("nil records stored: %d", r.Len())
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Record(&providers.ChatResult{Success: true}, RecordOptions{Stage: "recognize"})
		}()
	}
	wg.Wait()

	calls := r.Calls()
	if len(calls) != 20 {
		t.Fatalf("len(Calls()) = %d, want 20", len(calls))
	}
	for i := 1; i < len(calls); i++ {
		if calls[i].Timestamp.Before(calls[i-1].Timestamp) {
			t.Fatal("calls not ordered by timestamp")
		}
	}
}
