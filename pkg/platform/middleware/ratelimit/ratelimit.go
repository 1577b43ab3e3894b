// Package ratelimit throttles callers per client IP with a token bucket.
package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"rentflow/pkg/platform/httputil"
	request "rentflow/pkg/platform/middleware/request"
	"rentflow/pkg/requestcontext"
)

// sweepEvery is the number of Allow calls between idle-entry sweeps.
const sweepEvery = 512

// Limiter keeps one token bucket per key and evicts idle keys.
type Limiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu    sync.Mutex
	byKey map[string]*entry
	hits  uint64
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New returns nil when rps or burst is not positive; a nil Limiter allows
// everything.
func New(rps float64, burst int, idleTTL time.Duration) *Limiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &Limiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		byKey:   make(map[string]*entry),
	}
}

// Allow reports whether one token can be consumed for key at now.
func (l *Limiter) Allow(key string, now time.Time) bool {
	if l == nil || key == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.byKey[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.byKey[key] = e
	}
	e.lastSeen = now
	allowed := e.limiter.AllowN(now, 1)

	l.hits++
	if l.hits%sweepEvery == 0 {
		cutoff := now.Add(-l.idleTTL)
		for k, v := range l.byKey {
			if v.lastSeen.Before(cutoff) {
				delete(l.byKey, k)
			}
		}
	}
	return allowed
}

// Len reports the number of tracked keys.
func (l *Limiter) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byKey)
}

type exceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// Middleware rejects requests over the per-IP budget with 429. It expects
// metadata.ClientMetadata to have run first.
func (l *Limiter) Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)
			if l.Allow(ip, requestcontext.Now(ctx)) {
				next.ServeHTTP(w, r)
				return
			}
			logger.WarnContext(ctx, "rate limit exceeded",
				"client_ip", ip,
				"request_id", request.GetRequestID(ctx),
			)
			retryAfter := 1
			if l.limit > 0 && l.limit < 1 {
				retryAfter = int(1 / float64(l.limit))
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			httputil.WriteJSON(w, http.StatusTooManyRequests, &exceededResponse{
				Error:      "rate_limit_exceeded",
				Message:    "Too many requests from this IP address. Please try again later.",
				RetryAfter: retryAfter,
			})
		})
	}
}
