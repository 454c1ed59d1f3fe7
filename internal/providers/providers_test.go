package providers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMockClient(t *testing.T) {
	t.Run("chat", func(t *testing.T) {
		c := NewMockClient()
		c.ResponseText = "hello world"

		result, err := c.Chat(context.Background(), &ChatRequest{
			Model:    "test-model",
			Messages: []Message{{Role: RoleUser, Content: "test"}},
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if !result.Success {
			t.Errorf("Success = false, want true")
		}
		if result.Content != "hello world" {
			t.Errorf("Content = %q, want %q", result.Content, "hello world")
		}
		if c.RequestCount() != 1 {
			t.Errorf("RequestCount = %d, want 1", c.RequestCount())
		}
	})

	t.Run("respond hook", func(t *testing.T) {
		c := NewMockClient()
		c.Respond = func(req *ChatRequest) (string, error) {
			if *req.Temperature > 1 {
				return "", errors.New("too hot")
			}
			return fmt.Sprintf("t=%.1f", *req.Temperature), nil
		}

		req := UserPrompt("x")
		req.Temperature = Temperature(0.5)
		result, err := c.Chat(context.Background(), req)
		if err != nil || result.Content != "t=0.5" {
			t.Errorf("Chat() = %q, %v", result.Content, err)
		}

		req.Temperature = Temperature(1.5)
		result, err = c.Chat(context.Background(), req)
		if err == nil || result.Success {
			t.Errorf("expected failure, got %+v", result)
		}
	})

	t.Run("grounded answers carry sources", func(t *testing.T) {
		c := NewMockClient()
		req := UserPrompt("x")
		req.Grounded = true
		result, err := c.Chat(context.Background(), req)
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if len(result.Sources) == 0 {
			t.Error("expected sources")
		}
	})

	t.Run("should fail", func(t *testing.T) {
		c := NewMockClient()
		c.ShouldFail = true

		result, err := c.Chat(context.Background(), UserPrompt("test"))
		if err == nil {
			t.Error("expected error")
		}
		if result.Success {
			t.Error("Success = true, want false")
		}
		if IsRetryable(err) {
			t.Error("configured failure should not be retryable")
		}
	})

	t.Run("fail after", func(t *testing.T) {
		c := NewMockClient()
		c.FailAfter = 2
		c.Latency = 0

		for i := 0; i < 2; i++ {
			if _, err := c.Chat(context.Background(), UserPrompt("test")); err != nil {
				t.Errorf("request %d failed unexpectedly: %v", i+1, err)
			}
		}
		if _, err := c.Chat(context.Background(), UserPrompt("test")); err == nil {
			t.Error("expected error on 3rd request")
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		c := NewMockClient()
		c.Latency = time.Second

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		result, err := c.Chat(ctx, UserPrompt("test"))
		if err == nil {
			t.Error("expected error")
		}
		if result.ErrorType != "context_cancelled" {
			t.Errorf("ErrorType = %s, want context_cancelled", result.ErrorType)
		}
	})

	t.Run("concurrent requests", func(t *testing.T) {
		c := NewMockClient()
		c.Latency = time.Millisecond

		var wg sync.WaitGroup
		var successCount atomic.Int32

		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := c.Chat(context.Background(), UserPrompt("test")); err == nil {
					successCount.Add(1)
				}
			}()
		}
		wg.Wait()

		if successCount.Load() != 10 {
			t.Errorf("successCount = %d, want 10", successCount.Load())
		}
		if c.RequestCount() != 10 {
			t.Errorf("RequestCount = %d, want 10", c.RequestCount())
		}
	})
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), false},
		{"empty response", fmt.Errorf("x: %w", ErrEmptyResponse), true},
		{"429", &APIError{StatusCode: 429}, true},
		{"408", &APIError{StatusCode: 408}, true},
		{"500", &APIError{StatusCode: 500}, true},
		{"cloudflare", &APIError{StatusCode: 522}, true},
		{"400", &APIError{StatusCode: 400}, false},
		{"401", fmt.Errorf("wrapped: %w", &APIError{StatusCode: 401}), false},
		{"transport", errors.New("connection reset by peer"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := map[string]time.Duration{
		"":    0,
		"3":   3 * time.Second,
		" 1 ": time.Second,
		"-1":  0,
		"abc": 0,
	}
	for in, want := range tests {
		if got := parseRetryAfter(in); got != want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRateLimiter(t *testing.T) {
	t.Run("burst then wait", func(t *testing.T) {
		rl := NewRateLimiter(20)
		ctx := context.Background()

		start := time.Now()
		for i := 0; i < 21; i++ {
			if err := rl.Wait(ctx); err != nil {
				t.Fatalf("Wait() error = %v", err)
			}
		}
		// 20 burst tokens then one more at 20/s.
		if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
			t.Errorf("elapsed = %v, expected the 21st call to wait", elapsed)
		}

		status := rl.Status()
		if status.TotalConsumed != 21 {
			t.Errorf("TotalConsumed = %d, want 21", status.TotalConsumed)
		}
		if status.RequestsPerSecond != 20 {
			t.Errorf("RequestsPerSecond = %v", status.RequestsPerSecond)
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		rl := NewRateLimiter(1)
		rl.Wait(context.Background()) // drain

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		if err := rl.Wait(ctx); err == nil {
			t.Error("expected error from cancelled wait")
		}
	})

	t.Run("record 429 drains bucket", func(t *testing.T) {
		rl := NewRateLimiter(10)
		rl.Record429(time.Second)

		status := rl.Status()
		if status.Last429Time.IsZero() {
			t.Error("Last429Time not set")
		}
		if status.TokensAvailable >= 1 {
			t.Errorf("TokensAvailable = %v, want drained", status.TokensAvailable)
		}
	})

	t.Run("non-positive rps defaults", func(t *testing.T) {
		if got := NewRateLimiter(0).Status().RequestsPerSecond; got != 1 {
			t.Errorf("RequestsPerSecond = %v, want 1", got)
		}
	})
}
