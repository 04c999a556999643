package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter enforces a minimum gap between requests to the same host.
// Requests to different hosts never block each other.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter // key: host name
	minDelay time.Duration
}

// NewHostLimiter creates a limiter allowing one request per minDelay per host.
// A zero or negative minDelay disables limiting.
func NewHostLimiter(minDelay time.Duration) *HostLimiter {
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		minDelay: minDelay,
	}
}

func (h *HostLimiter) limiterFor(host string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()

	if lim, ok := h.limiters[host]; ok {
		return lim
	}
	limit := rate.Inf
	if h.minDelay > 0 {
		limit = rate.Every(h.minDelay)
	}
	lim := rate.NewLimiter(limit, 1)
	h.limiters[host] = lim
	return lim
}

// Wait blocks until a request to host is allowed.
// Returns an error if the context is cancelled while waiting.
func (h *HostLimiter) Wait(ctx context.Context, host string) error {
	if err := h.limiterFor(host).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", host, err)
	}
	return nil
}

// WaitURL is Wait keyed by the host of raw. Unparseable URLs share one bucket.
func (h *HostLimiter) WaitURL(ctx context.Context, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return h.Wait(ctx, "_")
	}
	return h.Wait(ctx, u.Host)
}
