package http

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mkrupp/fishpizzaria/internal/infra/logging"
)

const (
	rateLimiterIdleTTL       = 5 * time.Minute
	rateLimiterSweepInterval = time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client IP.
type RateLimiter struct {
	// Now is the clock buckets are filled by
	Now func() time.Time

	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	lastSweep time.Time
	rate      rate.Limit
	burst     int
}

// NewRateLimiter creates a per-IP rate limiter allowing perSecond requests
// per second with the given burst.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
		Now:      time.Now,
	}
}

// Allow reports whether a request from ip may proceed. Entries idle for
// rateLimiterIdleTTL are evicted by a sweep that runs at most once per
// rateLimiterSweepInterval.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.Now()

	if now.Sub(rl.lastSweep) >= rateLimiterSweepInterval {
		rl.lastSweep = now

		for key, cl := range rl.limiters {
			if now.Sub(cl.lastSeen) > rateLimiterIdleTTL {
				delete(rl.limiters, key)
			}
		}
	}

	cl, ok := rl.limiters[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[ip] = cl
	}

	cl.lastSeen = now

	return cl.limiter.AllowN(now, 1)
}

// Len returns the number of tracked client IPs.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return len(rl.limiters)
}

// RateLimitingMiddleware rejects requests with 429 once the client IP
// exhausts its bucket.
func RateLimitingMiddleware(next http.Handler, limiter *RateLimiter, log logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if !limiter.Allow(ip) {
			log.WarnContext(r.Context(), "rate limit exceeded", "ip", ip)
			w.Header().Set("Retry-After", "1")
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)

			return
		}

		next.ServeHTTP(w, r)
	})
}
