package base

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultMaxHosts = 1024

// HostLimiter keeps one token bucket per retailer host. At most MaxHosts
// buckets are kept; idle ones are dropped first, then the least recently used.
type HostLimiter struct {
	MaxHosts int

	mu       sync.Mutex
	limiters map[string]*hostBucket
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

type hostBucket struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// NewHostLimiter allows perSecond requests per host with the given burst
func NewHostLimiter(perSecond float64, burst int) *HostLimiter {
	if burst < 1 {
		burst = 1
	}
	return &HostLimiter{
		MaxHosts: defaultMaxHosts,
		limiters: make(map[string]*hostBucket),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		now:      time.Now,
	}
}

// Wait blocks until the host of pageURL may be fetched again. A nil limiter never waits.
func (h *HostLimiter) Wait(ctx context.Context, pageURL string) error {
	if h == nil {
		return nil
	}
	return h.forHost(hostKey(pageURL)).Wait(ctx)
}

func (h *HostLimiter) forHost(host string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	b, ok := h.limiters[host]
	if !ok {
		if h.MaxHosts > 0 && len(h.limiters) >= h.MaxHosts {
			h.evict(now)
		}
		b = &hostBucket{limiter: rate.NewLimiter(h.limit, h.burst)}
		h.limiters[host] = b
	}
	b.lastUsed = now
	return b.limiter
}

// evict drops buckets that have refilled completely. If none has, the least
// recently used bucket goes. Callers hold mu.
func (h *HostLimiter) evict(now time.Time) {
	refill := time.Minute
	if h.limit > 0 {
		refill = max(refill, time.Duration(float64(h.burst)/float64(h.limit)*float64(time.Second)))
	}

	var oldestHost string
	var oldest time.Time
	for host, b := range h.limiters {
		if now.Sub(b.lastUsed) >= refill {
			delete(h.limiters, host)
			continue
		}
		if oldestHost == "" || b.lastUsed.Before(oldest) {
			oldestHost, oldest = host, b.lastUsed
		}
	}
	if len(h.limiters) >= h.MaxHosts && oldestHost != "" {
		delete(h.limiters, oldestHost)
	}
}

func (h *HostLimiter) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.limiters)
}

func hostKey(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return pageURL
	}
	return strings.ToLower(u.Hostname())
}
