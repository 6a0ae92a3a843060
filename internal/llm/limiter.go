package llm

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// limiter hands out one token bucket per model so a burst of vision calls
// does not starve chat completions.
type limiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newLimiter(requestsPerSecond float64, burst int) *limiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &limiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// Wait blocks until model may be called. A nil limiter never blocks.
func (l *limiter) Wait(ctx context.Context, model string) error {
	if l == nil {
		return nil
	}
	return l.get(model).Wait(ctx)
}

func (l *limiter) get(model string) *rate.Limiter {
	l.mu.RLock()
	lim, ok := l.limiters[model]
	l.mu.RUnlock()
	if ok {
		return lim
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.limiters[model]; ok {
		return lim
	}
	lim = rate.NewLimiter(l.rps, l.burst)
	l.limiters[model] = lim
	return lim
}
