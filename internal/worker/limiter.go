package worker

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter implements per-service token-bucket rate limiting. Each
// external bibliographic service gets its own bucket, so calls to one
// service are throttled jointly and never steal tokens from another.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a new rate limiter with defaults applied to
// services that have no explicit rate configured
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// Wait blocks until a token is available for the service or ctx is done.
// Cancellation propagates through the wait.
func (l *Limiter) Wait(ctx context.Context, service string) error {
	return l.getLimiter(service).Wait(ctx)
}

// Allow checks if a request to the service is allowed without waiting
func (l *Limiter) Allow(service string) bool {
	return l.getLimiter(service).Allow()
}

// SetServiceRate sets a custom rate limit for a specific service
func (l *Limiter) SetServiceRate(service string, requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}

	l.limiters[service] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

// getLimiter returns the bucket for a service, creating it on first use
func (l *Limiter) getLimiter(service string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[service]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[service]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[service] = limiter

	return limiter
}
