package strava

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Strava enforces 100 requests per 15 minutes and 1000 per day. The limiter
// tracks both windows and trusts the X-RateLimit headers over its own counts.

type limitWindow struct {
	limit    int
	usage    int
	resetsAt time.Time
	span     time.Duration
}

func (w *limitWindow) tick(now time.Time) {
	if now.After(w.resetsAt) {
		w.usage = 0
		w.resetsAt = now.Add(w.span)
	}
}

// RateLimiter throttles requests to stay inside Strava's API quotas
type RateLimiter struct {
	mu    sync.Mutex
	short limitWindow
	daily limitWindow
}

// NewRateLimiter creates a rate limiter with Strava's published limits
func NewRateLimiter() *RateLimiter {
	now := time.Now()
	return &RateLimiter{
		short: limitWindow{limit: 100, resetsAt: now.Add(15 * time.Minute), span: 15 * time.Minute},
		daily: limitWindow{limit: 1000, resetsAt: now.Truncate(24 * time.Hour).Add(24 * time.Hour), span: 24 * time.Hour},
	}
}

// Wait blocks until a request can be made without exceeding either quota
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	now := time.Now()
	r.short.tick(now)
	r.daily.tick(now)

	var wait time.Duration
	if r.short.usage >= r.short.limit {
		wait = time.Until(r.short.resetsAt)
	} else if r.daily.usage >= r.daily.limit {
		wait = time.Until(r.daily.resetsAt)
	}
	r.mu.Unlock()

	if wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	r.mu.Lock()
	now = time.Now()
	r.short.tick(now)
	r.daily.tick(now)
	r.short.usage++
	r.daily.usage++
	r.mu.Unlock()

	return nil
}

// UpdateFromHeaders syncs the limiter with Strava's rate limit headers,
// which report "short,daily" pairs.
func (r *RateLimiter) UpdateFromHeaders(h http.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if short, daily, ok := splitPair(h.Get("X-RateLimit-Usage")); ok {
		r.short.usage = short
		r.daily.usage = daily
	}
	if short, daily, ok := splitPair(h.Get("X-RateLimit-Limit")); ok {
		r.short.limit = short
		r.daily.limit = daily
	}
}

// Remaining returns how many requests are left in each window
func (r *RateLimiter) Remaining() (short, daily int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.short.limit - r.short.usage, r.daily.limit - r.daily.usage
}

func splitPair(v string) (short, daily int, ok bool) {
	parts := strings.Split(v, ",")
	if len(parts) < 2 {
		return 0, 0, false
	}
	short, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	daily, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return short, daily, true
}
