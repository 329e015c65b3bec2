package middleware

import (
	"net/http"
	"sync"
	"time"

	"task-tracker/backend/internal/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a per-client-IP token bucket. It is mounted on the
// credential endpoints (login, register) to slow guessing.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientLimiter
	limit    rate.Limit
	burst    int
	idleFor  time.Duration
	disabled bool
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		clients:  make(map[string]*clientLimiter),
		limit:    rate.Limit(float64(cfg.RequestsPerMin) / 60.0),
		burst:    cfg.BurstSize,
		idleFor:  cfg.CleanupInterval,
		disabled: !cfg.Enabled,
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, ok := rl.clients[ip]
	if !ok {
		// Prune idle entries lazily; the map only grows while distinct
		// clients keep arriving, so this bounds it without a janitor.
		if len(rl.clients) >= 1024 {
			for addr, c := range rl.clients {
				if now.Sub(c.lastSeen) > rl.idleFor {
					delete(rl.clients, addr)
				}
			}
		}
		client = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = client
	}
	client.lastSeen = now

	return client.limiter.Allow()
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.disabled {
			c.Next()
			return
		}
		if !rl.allow(c.ClientIP()) {
			c.String(http.StatusTooManyRequests, "Too many requests. Try again later.")
			c.Abort()
			return
		}
		c.Next()
	}
}
