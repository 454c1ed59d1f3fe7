package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/jackzampolin/rxscan/internal/llmcall"
	"github.com/jackzampolin/rxscan/internal/metrics"
	"github.com/jackzampolin/rxscan/internal/providers"
)

// maxRetryDelay caps the exponential backoff between attempts.
const maxRetryDelay = 10 * time.Second

// Worker wraps a single LLM provider with rate limiting, retries and
// call recording. Process is safe for concurrent use.
type Worker struct {
	name        string
	llmClient   providers.LLMClient
	rateLimiter *providers.RateLimiter
	logger      *slog.Logger

	runID   string
	metrics *metrics.Recorder
	calls   *llmcall.Recorder
}

// WorkerConfig configures a new worker.
type WorkerConfig struct {
	Name      string
	Logger    *slog.Logger
	LLMClient providers.LLMClient

	// RateLimiter is shared by every worker of the same provider. If nil a
	// new limiter is built from the client's RequestsPerSecond.
	RateLimiter *providers.RateLimiter

	// Recording (optional)
	RunID   string
	Metrics *metrics.Recorder
	Calls   *llmcall.Recorder
}

// NewWorker creates a new worker wrapping a provider.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.LLMClient == nil {
		return nil, fmt.Errorf("must provide LLMClient")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	name := cfg.Name
	if name == "" {
		name = cfg.LLMClient.Name()
	}

	rl := cfg.RateLimiter
	if rl == nil {
		rl = providers.NewRateLimiter(cfg.LLMClient.RequestsPerSecond())
	}

	return &Worker{
		name:        name,
		llmClient:   cfg.LLMClient,
		rateLimiter: rl,
		logger:      logger.With("worker", name),
		runID:       cfg.RunID,
		metrics:     cfg.Metrics,
		calls:       cfg.Calls,
	}, nil
}

// Name returns the worker name.
func (w *Worker) Name() string {
	return w.name
}

// Process executes a work unit and returns the result. Retryable provider
// failures are retried with exponential backoff up to the client's
// MaxRetries attempts; the final failure is reported in the result.
func (w *Worker) Process(ctx context.Context, unit *WorkUnit) WorkResult {
	result := WorkResult{
		WorkUnitID: unit.ID,
		ItemKey:    unit.ItemKey,
	}

	if unit.ChatRequest == nil {
		result.Error = fmt.Errorf("LLM work unit missing ChatRequest")
		return result
	}

	attempts := w.llmClient.MaxRetries()
	if attempts < 1 {
		attempts = 1
	}

	var chatResult *providers.ChatResult
	var tries int
	err := retry.Do(
		func() error {
			tries++
			if err := w.rateLimiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(fmt.Errorf("rate limit wait failed: %w", err))
			}

			res, err := w.llmClient.Chat(ctx, unit.ChatRequest)
			chatResult = res
			if err != nil {
				w.noteRateLimit(err)
				return err
			}
			if res == nil || !res.Success {
				return fmt.Errorf("%s: %w", w.name, providers.ErrEmptyResponse)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.Delay(w.llmClient.RetryDelayBase()),
		retry.MaxDelay(maxRetryDelay),
		retry.RetryIf(providers.IsRetryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			w.logger.Debug("retrying work unit", "unit_id", unit.ID, "attempt", n+1, "error", err)
		}),
	)

	if chatResult != nil {
		chatResult.Attempts = tries
	}
	result.ChatResult = chatResult
	result.Success = err == nil
	result.Error = err

	w.record(unit, &result)

	if result.Success {
		w.logger.Debug("work unit completed", "unit_id", unit.ID, "stage", unit.Stage, "item", unit.ItemKey)
	} else {
		w.logger.Warn("work unit failed", "unit_id", unit.ID, "stage", unit.Stage, "item", unit.ItemKey, "attempts", tries, "error", result.Error)
	}

	return result
}

// noteRateLimit drains the shared limiter after a 429 so sibling
// goroutines back off too.
func (w *Worker) noteRateLimit(err error) {
	var apiErr *providers.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		retryAfter := apiErr.RetryAfter
		if retryAfter == 0 {
			retryAfter = w.llmClient.RetryDelayBase()
		}
		w.rateLimiter.Record429(retryAfter)
	}
}

// record stores metrics and the call trace for a finished work unit.
func (w *Worker) record(unit *WorkUnit, result *WorkResult) {
	if w.metrics != nil {
		w.metrics.RecordLLMCall(metrics.RecordOpts{
			Stage:   unit.Stage,
			ItemKey: unit.ItemKey,
		}, result.ChatResult)
	}
	if w.calls != nil {
		w.calls.Record(result.ChatResult, llmcall.RecordOptions{
			RunID:       w.runID,
			Stage:       unit.Stage,
			ItemKey:     unit.ItemKey,
			PromptKey:   unit.PromptKey,
			Temperature: unit.ChatRequest.Temperature,
			Grounded:    unit.ChatRequest.Grounded,
		})
	}
}

// RateLimiterStatus returns the current rate limiter status.
func (w *Worker) RateLimiterStatus() providers.RateLimiterStatus {
	return w.rateLimiter.Status()
}
