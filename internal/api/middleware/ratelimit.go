package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/time/rate"

	"github.com/cloo-solutions/templeqa/internal/api"
	"github.com/cloo-solutions/templeqa/internal/domain"
)

// maxTrackedAskers bounds the number of per-asker limiters held in memory.
const maxTrackedAskers = 10000

// RateLimiter throttles requests per asker with a token bucket each.
// Askers without an identity header are keyed by client IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *lru.Cache
	limit    rate.Limit
	burst    int
}

// NewRateLimiter allows perMinute requests per asker, bursting up to the
// same amount. A non-positive perMinute yields nil.
func NewRateLimiter(perMinute int) (*RateLimiter, error) {
	if perMinute <= 0 {
		return nil, nil
	}
	cache, err := lru.New(maxTrackedAskers)
	if err != nil {
		return nil, err
	}
	return &RateLimiter{
		limiters: cache,
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
	}, nil
}

// Allow reports whether key may make a request now.
func (l *RateLimiter) Allow(key string) bool {
	return l.limiterFor(key).Allow()
}

func (l *RateLimiter) limiterFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.limiters.Get(key); ok {
		return v.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(l.limit, l.burst)
	l.limiters.Add(key, limiter)
	return limiter
}

// Handler rejects over-limit requests with 429. A nil limiter passes all.
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	if l == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := AskerID(r)
		if key == "" {
			key = "ip:" + clientIP(r)
		}
		if !l.Allow(key) {
			w.Header().Set("Retry-After", strconv.Itoa(l.retryAfterSeconds()))
			api.HandleError(w, domain.ErrRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) retryAfterSeconds() int {
	secs := int(time.Duration(float64(time.Second) / float64(l.limit)).Seconds())
	if secs < 1 {
		secs = 1
	}
	return secs
}
