package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/MuniTrack/MT-Backend/internal/utils"
	"golang.org/x/time/rate"
)

// LocationRateLimiter throttles location-bearing requests per worker. GPS
// spam (a client retry loop, or a spoofing script probing the geofence)
// burns polygon math and DB round trips, so each worker gets a small token
// bucket. Idle entries are evicted after ttl by a background sweep; the map
// never grows past the set of recently active workers.
type LocationRateLimiter struct {
	mu      sync.Mutex
	perKey  map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	stop    chan struct{}
	stopped sync.Once
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocationRateLimiter allows roughly perMinute requests per worker with
// the given burst. Entries idle longer than ttl are dropped.
func NewLocationRateLimiter(perMinute int, burst int, ttl time.Duration) *LocationRateLimiter {
	l := &LocationRateLimiter{
		perKey: make(map[string]*limiterEntry),
		limit:  rate.Limit(float64(perMinute) / 60.0),
		burst:  burst,
		ttl:    ttl,
		stop:   make(chan struct{}),
	}
	go l.sweep()
	return l
}

// Allow reports whether the given key may proceed right now.
func (l *LocationRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.perKey[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.perKey[key] = e
	}
	e.lastSeen = time.Now()
	return e.limiter.Allow()
}

// Close stops the background sweep.
func (l *LocationRateLimiter) Close() {
	l.stopped.Do(func() { close(l.stop) })
}

func (l *LocationRateLimiter) sweep() {
	interval := l.ttl
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-l.ttl)
			l.mu.Lock()
			for key, e := range l.perKey {
				if e.lastSeen.Before(cutoff) {
					delete(l.perKey, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Middleware wraps a handler, keying the limiter by the authenticated user.
// Must run after SessionMiddleware.
func (l *LocationRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := utils.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized: missing user ID in context", http.StatusUnauthorized)
			return
		}
		if !l.Allow(userID) {
			w.Header().Set("Retry-After", "10")
			http.Error(w, "Too many location requests, slow down", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
