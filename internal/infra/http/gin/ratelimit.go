package ginserver

import (
	"context"
	"log/slog"
	"sync"
	"time"

	gin "github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	PerMinute int
	Burst     int
	IdleTTL   time.Duration
	Logger    *slog.Logger

	mu      sync.Mutex
	clients map[string]*clientLimiter
}

func NewRateLimiter(perMinute, burst int, logger *slog.Logger) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 30
	}
	if burst <= 0 {
		burst = 10
	}
	return &RateLimiter{
		PerMinute: perMinute,
		Burst:     burst,
		IdleTTL:   30 * time.Minute,
		Logger:    logger,
		clients:   make(map[string]*clientLimiter),
	}
}

// Allow reports whether the client identified by key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.limiterFor(key, time.Now()).Allow()
}

func (rl *RateLimiter) limiterFor(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.clients == nil {
		rl.clients = make(map[string]*clientLimiter)
	}
	entry, ok := rl.clients[key]
	if !ok {
		limit := rate.Limit(float64(rl.PerMinute) / 60)
		entry = &clientLimiter{limiter: rate.NewLimiter(limit, rl.Burst)}
		rl.clients[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// Sweep drops clients idle for longer than IdleTTL until ctx is done.
func (rl *RateLimiter) Sweep(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = 10 * time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := rl.evict(now); removed > 0 && rl.Logger != nil {
				rl.Logger.Debug("rate limiter cleanup", "removed", removed)
			}
		}
	}
}

func (rl *RateLimiter) evict(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	removed := 0
	for key, entry := range rl.clients {
		if now.Sub(entry.lastSeen) > rl.IdleTTL {
			delete(rl.clients, key)
			removed++
		}
	}
	return removed
}

func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP() + "|" + c.FullPath()
		if !rl.Allow(key) {
			if rl.Logger != nil {
				rl.Logger.Warn("rate limit exceeded", "client", c.ClientIP(), "path", c.FullPath())
			}
			respondError(c, rl.Logger, errRateLimited)
			return
		}
		c.Next()
	}
}
