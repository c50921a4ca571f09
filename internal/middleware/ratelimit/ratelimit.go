// Package ratelimit throttles requests per client address with a fixed
// one-minute window.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"centavo/internal/metrics"
)

const (
	window = time.Minute

	// Clients idle this long are forgotten by CleanExpired.
	idleTTL = 10 * time.Minute

	defaultPerMinute = 60
)

// Limiter counts requests per client address. It satisfies cache.Cleaner so
// the process cache manager can sweep idle clients.
type Limiter struct {
	mu        sync.Mutex
	clients   map[string]*clientWindow
	perMinute int
	now       func() time.Time
}

type clientWindow struct {
	start    time.Time
	lastSeen time.Time
	count    int
}

// NewLimiter allows perMinute requests per client per window. Non-positive
// values fall back to 60.
func NewLimiter(perMinute int) *Limiter {
	if perMinute <= 0 {
		perMinute = defaultPerMinute
	}
	return &Limiter{
		clients:   make(map[string]*clientWindow),
		perMinute: perMinute,
		now:       time.Now,
	}
}

// Allow records one request from ip and reports whether it fits the window.
func (l *Limiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.clients[ip]
	if !ok || now.Sub(w.start) >= window {
		l.clients[ip] = &clientWindow{start: now, lastSeen: now, count: 1}
		return true
	}
	w.count++
	w.lastSeen = now
	return w.count <= l.perMinute
}

// CleanExpired drops clients idle for longer than ten minutes.
func (l *Limiter) CleanExpired() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-idleTTL)
	removed := 0
	for ip, w := range l.clients {
		if w.lastSeen.Before(cutoff) {
			delete(l.clients, ip)
			removed++
		}
	}
	return removed
}

// Clients returns the number of tracked addresses.
func (l *Limiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Middleware rejects requests over the limit with 429. onLimit writes the
// body; nil sends plain text.
func (l *Limiter) Middleware(clientIP func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.Allow(clientIP(r)) {
				next.ServeHTTP(w, r)
				return
			}
			metrics.SecurityEvents.WithLabelValues("rate_limited").Inc()
			w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
			if onLimit == nil {
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}
			onLimit(w, r)
		})
	}
}
