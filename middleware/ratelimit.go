package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"menuqr/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SlidingWindow allows at most max hits per key within window
type SlidingWindow struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	hits   map[string][]time.Time
	now    func() time.Time
}

// NewSlidingWindow creates a limiter
func NewSlidingWindow(max int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		max:    max,
		window: window,
		hits:   make(map[string][]time.Time),
		now:    time.Now,
	}
}

// prune drops hits older than the window; caller holds mu
func (w *SlidingWindow) prune(key string, now time.Time) []time.Time {
	cutoff := now.Add(-w.window)
	kept := w.hits[key][:0]
	for _, t := range w.hits[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(w.hits, key)
		return nil
	}
	w.hits[key] = kept
	return kept
}

// Allow records a hit for key. When the key is over the limit the hit is not recorded
// and the time until the oldest hit leaves the window is returned.
func (w *SlidingWindow) Allow(key string) (bool, time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	hits := w.prune(key, now)
	if len(hits) >= w.max {
		return false, hits[0].Add(w.window).Sub(now)
	}
	w.hits[key] = append(hits, now)
	return true, 0
}

// Sweep prunes every key
func (w *SlidingWindow) Sweep() {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	for key := range w.hits {
		w.prune(key, now)
	}
}

// LoginRateLimit limits login attempts per client IP
func LoginRateLimit(maxAttempts int, window time.Duration) gin.HandlerFunc {
	limiter := NewSlidingWindow(maxAttempts, window)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			limiter.Sweep()
		}
	}()

	return func(c *gin.Context) {
		ip := c.ClientIP()
		ok, retryAfter := limiter.Allow(ip)
		if !ok {
			logger.FromGin(c).Warn("login rate limited", zap.String("ip", ip))
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "too many login attempts, try again later",
			})
			return
		}
		c.Next()
	}
}
