package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"byte-highlight/internal/handler/http/respond"
)

var rateLimitRejected = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rate_limit_rejected_total",
	Help: "Requests rejected by a per-client rate limiter",
}, []string{"limiter"})

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-client token bucket keyed by client IP.
type RateLimiter struct {
	name      string
	limit     rate.Limit
	burst     int
	extractor IPExtractor
	idleTTL   time.Duration
	now       func() time.Time

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

// NewRateLimiter allows requests per window for every client, with bursts of
// up to requests.
func NewRateLimiter(name string, requests int, window time.Duration, extractor IPExtractor) *RateLimiter {
	if extractor == nil {
		extractor = RemoteAddrExtractor{}
	}
	return &RateLimiter{
		name:      name,
		limit:     rate.Every(window / time.Duration(requests)),
		burst:     requests,
		extractor: extractor,
		idleTTL:   2 * window,
		now:       time.Now,
		visitors:  make(map[string]*visitor),
		lastSweep: time.Now(),
	}
}

// Allow reports whether key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	now := rl.now()
	rl.sweep(now)
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	rl.mu.Unlock()

	if v.limiter.AllowN(now, 1) {
		return true
	}
	rateLimitRejected.WithLabelValues(rl.name).Inc()
	return false
}

// Middleware rejects over-limit clients with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, err := rl.extractor.ExtractIP(r)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !rl.Allow(ip) {
			w.Header().Set("Retry-After", "60")
			respond.JSON(w, http.StatusTooManyRequests, map[string]string{"error": "Too many requests. Please try again later."})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ForPaths applies the limiter only to non-GET requests whose path is one of
// paths. Other requests pass through untouched.
func (rl *RateLimiter) ForPaths(paths ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		limited := rl.Middleware(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := set[r.URL.Path]; ok && r.Method != http.MethodGet {
				limited.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Len returns the number of tracked clients.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// sweep drops idle clients at most once per idleTTL. Caller holds mu.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.idleTTL {
		return
	}
	rl.lastSweep = now
	for k, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.idleTTL {
			delete(rl.visitors, k)
		}
	}
}
