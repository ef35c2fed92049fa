package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"tileledger/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// windowEntry tracks requests per client IP within a fixed window.
type windowEntry struct {
	count     int
	windowEnd time.Time
}

// Limiter is a per-IP fixed-window request limiter.
type Limiter struct {
	name    string
	limit   int
	window  time.Duration
	message string
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*windowEntry
}

func NewLimiter(name string, limit int, window time.Duration, message string) *Limiter {
	return &Limiter{
		name:    name,
		limit:   limit,
		window:  window,
		message: message,
		now:     time.Now,
		entries: make(map[string]*windowEntry),
	}
}

// LoginLimiter allows 20 login attempts per minute per IP.
func LoginLimiter() *Limiter {
	return NewLimiter("login", 20, time.Minute, "too many login attempts, retry in a minute")
}

// APILimiter is the general limiter for authenticated routes.
func APILimiter(limit int, window time.Duration) *Limiter {
	return NewLimiter("api", limit, window, "too many requests, retry shortly")
}

// Allow counts one request for key and reports whether it is within the limit,
// plus the end of the current window.
func (l *Limiter) Allow(key string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok {
		e = &windowEntry{}
		l.entries[key] = e
	}
	if now.After(e.windowEnd) {
		e.count = 0
		e.windowEnd = now.Add(l.window)
	}
	e.count++
	return e.count <= l.limit, e.windowEnd
}

// Purge drops entries whose window has ended and returns how many it removed.
func (l *Limiter) Purge() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	purged := 0
	for key, e := range l.entries {
		if now.After(e.windowEnd) {
			delete(l.entries, key)
			purged++
		}
	}
	return purged
}

// Handler rejects requests over the limit with 429.
func (l *Limiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, windowEnd := l.Allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", windowEnd.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.message))
			return
		}
		c.Next()
	}
}

const purgeInterval = 5 * time.Minute

// RunPurge periodically purges the given limiters until ctx is done.
func RunPurge(ctx context.Context, limiters ...*Limiter) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, l := range limiters {
				if n := l.Purge(); n > 0 {
					log.Debug().Str("limiter", l.name).Int("purged", n).Msg("rate limiter entries purged")
				}
			}
		}
	}
}
