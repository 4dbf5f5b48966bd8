// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter is a fixed-window counter keyed by an arbitrary string.
// It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type window struct {
	count     int
	expiresAt time.Time
}

// New returns a Limiter allowing limit hits per key in each period.
// A background sweep evicts expired keys until Stop is called.
func New(limit int, period time.Duration) *Limiter {
	l := &Limiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go l.sweep(2 * period)
	return l
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.period)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Remaining returns the hits left for key in its current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || !l.now().Before(w.expiresAt) {
		return l.limit
	}
	return max(l.limit-w.count, 0)
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// Stop ends the background sweep.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Limiter) sweep(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-t.C:
			l.mu.Lock()
			now := l.now()
			for k, w := range l.windows {
				if !now.Before(w.expiresAt) {
					delete(l.windows, k)
				}
			}
			l.mu.Unlock()
		}
	}
}

// ByIP returns middleware that rejects requests over the limit for the
// client address. reject writes the refusal response.
func (l *Limiter) ByIP(reject http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(ClientIP(r)) {
				reject(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the first X-Forwarded-For hop, then X-Real-IP, then the
// host part of RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
