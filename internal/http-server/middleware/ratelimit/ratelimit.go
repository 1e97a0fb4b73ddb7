// Package ratelimit throttles write endpoints per client address.
package ratelimit

import (
	"devEvents/internal/lib/api/response"
	"github.com/go-chi/render"
	"golang.org/x/time/rate"
	"log/slog"
	"net"
	"net/http"
	"sync"
)

// maxTracked bounds the number of remembered clients before the table is reset.
const maxTracked = 10000

type Limiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func New(rps float64, burst int) *Limiter {
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.RLock()
	limiter, ok := l.limiters[key]
	l.mu.RUnlock()

	if ok {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, ok = l.limiters[key]; ok {
		return limiter
	}

	if len(l.limiters) >= maxTracked {
		l.limiters = make(map[string]*rate.Limiter)
	}

	limiter = rate.NewLimiter(l.rate, l.burst)
	l.limiters[key] = limiter

	return limiter
}

// Middleware rejects requests over the per-client budget with 429.
// Put chi's RealIP in front when running behind a proxy.
func (l *Limiter) Middleware(log *slog.Logger) func(http.Handler) http.Handler {
	log = log.With(slog.String("component", "middleware/ratelimit"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !l.get(ip).Allow() {
				log.Warn("rate limit exceeded", slog.String("ip", ip), slog.String("path", r.URL.Path))
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Failure("Too Many Requests", "rate limit exceeded, please slow down"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
