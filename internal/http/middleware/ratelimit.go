package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// LimiterManager keeps one token-bucket limiter per client IP. Buckets idle
// for longer than the eviction age are dropped by a background sweep.
type LimiterManager struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	rate     rate.Limit
	burst    int
	done     chan struct{}
}

// NewLimiterManager creates a manager allowing requestsPerMin sustained
// requests with the given burst capacity per key.
func NewLimiterManager(requestsPerMin, burst int) *LimiterManager {
	m := &LimiterManager{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		rate:     rate.Limit(float64(requestsPerMin) / 60.0),
		burst:    burst,
		done:     make(chan struct{}),
	}

	go m.cleanupRoutine(10 * time.Minute)
	return m
}

// Allow reports whether a request for the given key may proceed. Non-blocking.
func (m *LimiterManager) Allow(key string) bool {
	m.mu.Lock()
	limiter, ok := m.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(m.rate, m.burst)
		m.limiters[key] = limiter
	}
	m.lastSeen[key] = time.Now()
	m.mu.Unlock()

	return limiter.Allow()
}

// Close stops the cleanup goroutine.
func (m *LimiterManager) Close() {
	close(m.done)
}

func (m *LimiterManager) cleanupRoutine(evictionAge time.Duration) {
	ticker := time.NewTicker(evictionAge)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup(evictionAge)
		case <-m.done:
			return
		}
	}
}

func (m *LimiterManager) cleanup(evictionAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for key, seen := range m.lastSeen {
		if now.Sub(seen) > evictionAge {
			delete(m.limiters, key)
			delete(m.lastSeen, key)
		}
	}
}

// RateLimit rejects requests over the per-IP budget with 429. Intended for
// the credential-handling POST routes, which face brute-force traffic.
func RateLimit(m *LimiterManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !m.Allow("ip:" + c.IP()) {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many attempts. Please try again in a minute.")
		}
		return c.Next()
	}
}
