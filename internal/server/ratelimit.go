package server

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/54b3r/microagents-go/internal/agent"
	"github.com/54b3r/microagents-go/internal/logging"
)

// kindRateLimited is the error_kind of a 429 body.
const kindRateLimited agent.Kind = "rate_limited"

// Token bucket defaults for the protected routes. Every agent request costs
// at least one completion, so these guard provider quota as well.
const (
	defaultRateLimit = 10
	defaultRateBurst = 20
	// bucketIdleTTL is how long a bucket may stay untouched before eviction.
	bucketIdleTTL = 5 * time.Minute
)

// bucketKey identifies one token bucket: a client on one route. Buckets are
// per route so a burst of video recommendations does not lock the same
// client out of AQI lookups.
type bucketKey struct {
	ip    string
	route string
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter hands out per-client, per-route token buckets.
type rateLimiter struct {
	mu      sync.Mutex
	buckets map[bucketKey]*bucket
	rps     rate.Limit
	burst   int
	log     *slog.Logger
	// onReject is called with the route name for every rejected request.
	onReject func(route string)
}

// newRateLimiter starts the eviction loop; call the returned func to stop it.
// The stop func is safe to call more than once.
func newRateLimiter(rps float64, burst int, log *slog.Logger) (*rateLimiter, func()) {
	rl := &rateLimiter{
		buckets:  make(map[bucketKey]*bucket),
		rps:      rate.Limit(rps),
		burst:    burst,
		log:      log,
		onReject: func(string) {},
	}

	stopCh := make(chan struct{})
	go rl.evictLoop(stopCh)

	return rl, sync.OnceFunc(func() { close(stopCh) })
}

func (rl *rateLimiter) bucketFor(k bucketKey) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[k]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.buckets[k] = b
	}
	b.lastSeen = time.Now()
	return b.limiter
}

func (rl *rateLimiter) evictLoop(stopCh <-chan struct{}) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			rl.evict(time.Now())
		}
	}
}

// evict drops buckets idle since before now-bucketIdleTTL.
func (rl *rateLimiter) evict(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-bucketIdleTTL)
	for k, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, k)
		}
	}
}

func (rl *rateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// middleware rejects requests over the route's budget with 429, a
// Retry-After hint in whole seconds and an error_kind of "rate_limited".
func (rl *rateLimiter) middleware(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		k := bucketKey{ip: clientIP(r), route: route}
		lim := rl.bucketFor(k)

		now := time.Now()
		res := lim.ReserveN(now, 1)
		if delay := res.DelayFrom(now); !res.OK() || delay > 0 {
			res.CancelAt(now)
			rl.onReject(route)
			logging.FromContext(r.Context()).Warn("rate limit exceeded",
				slog.String("ip", k.ip),
				slog.String("route", route),
				slog.Duration("retry_after", delay),
			)
			w.Header().Set("Retry-After", retryAfter(delay))
			writeJSON(r.Context(), w, http.StatusTooManyRequests, errorResponse{
				Error:     "rate limit exceeded",
				ErrorKind: kindRateLimited,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// retryAfter renders d as whole seconds, at least 1.
func retryAfter(d time.Duration) string {
	if d == rate.InfDuration {
		return "1"
	}
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// clientIP is the remote address without its port. X-Forwarded-For is not
// trusted.
func clientIP(r *http.Request) string {
	addr := r.RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	// A bare address, IPv6 included, has no port to strip.
	if net.ParseIP(addr) != nil {
		return addr
	}
	// Unbracketed IPv6 with a port, or no port at all.
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i]
		}
	}
	return addr
}
