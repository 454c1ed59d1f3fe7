package providers

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter is a token bucket shared by every goroutine calling one provider.
// It wraps x/time/rate and keeps the counters the run report shows.
type RateLimiter struct {
	limiter *rate.Limiter
	rps     float64

	mu            sync.Mutex
	totalConsumed int64
	totalWaited   time.Duration
	last429Time   time.Time
}

// RateLimiterStatus reports current limiter state.
type RateLimiterStatus struct {
	RequestsPerSecond float64       `json:"requests_per_second" yaml:"requests_per_second"`
	TokensAvailable   float64       `json:"tokens_available" yaml:"tokens_available"`
	TotalConsumed     int64         `json:"total_consumed" yaml:"total_consumed"`
	TotalWaited       time.Duration `json:"total_waited" yaml:"total_waited"`
	Last429Time       time.Time     `json:"last_429_time,omitempty" yaml:"last_429_time,omitempty"`
}

// NewRateLimiter creates a limiter allowing rps requests per second with a
// burst of one second's worth of requests.
func NewRateLimiter(rps float64) *RateLimiter {
	if rps <= 0 {
		rps = 1.0
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		rps:     rps,
	}
}

// Wait blocks until a token is available or ctx is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	start := time.Now()
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	waited := time.Since(start)

	r.mu.Lock()
	r.totalConsumed++
	r.totalWaited += waited
	r.mu.Unlock()
	return nil
}

// Record429 notes a rate-limit answer and drains the bucket so the next
// callers back off for at least retryAfter.
func (r *RateLimiter) Record429(retryAfter time.Duration) {
	r.mu.Lock()
	r.last429Time = time.Now()
	r.mu.Unlock()

	if retryAfter > 0 {
		r.limiter.ReserveN(time.Now(), r.limiter.Burst())
	}
}

// Status returns current limiter status.
func (r *RateLimiter) Status() RateLimiterStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RateLimiterStatus{
		RequestsPerSecond: r.rps,
		TokensAvailable:   r.limiter.Tokens(),
		TotalConsumed:     r.totalConsumed,
		TotalWaited:       r.totalWaited,
		Last429Time:       r.last429Time,
	}
}
