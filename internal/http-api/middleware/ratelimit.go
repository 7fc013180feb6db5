package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimit throttles the auth endpoints per client IP. With a Redis client
// the counter is shared across instances (INCR with a window TTL); without
// one it degrades to an in-process token bucket, which is enough for a
// single instance.
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	if rdb != nil {
		return redisRateLimit(rdb, limit, window)
	}
	return localRateLimit(limit, window)
}

func redisRateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s", c.FullPath(), c.ClientIP())

		count, err := rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			// broker trouble must not take the API down
			c.Next()
			return
		}
		if count == 1 {
			if err := rdb.Expire(c.Request.Context(), key, window).Err(); err != nil {
				// a counter without a TTL would lock the client out for good
				rdb.Del(c.Request.Context(), key)
			}
		}
		if count > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

func localRateLimit(limit int, window time.Duration) gin.HandlerFunc {
	pool := newClientPool(limit, window)

	return func(c *gin.Context) {
		if !pool.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

// clientPool hands out one limiter per client IP and drops entries once they
// have been idle for a full window, so the map stays bounded by the number of
// recently active clients.
type clientPool struct {
	mu        sync.Mutex
	clients   map[string]*client
	limit     int
	window    time.Duration
	lastSweep time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientPool(limit int, window time.Duration) *clientPool {
	return &clientPool{
		clients:   make(map[string]*client),
		limit:     limit,
		window:    window,
		lastSweep: time.Now(),
	}
}

func (p *clientPool) get(ip string) *rate.Limiter {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()

	if now.Sub(p.lastSweep) > p.window {
		p.sweepLocked(now)
	}
	cl, ok := p.clients[ip]
	if !ok {
		cl = &client{limiter: rate.NewLimiter(rate.Every(p.window/time.Duration(p.limit)), p.limit)}
		p.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// sweepLocked removes clients idle for longer than the window. Their bucket
// has refilled by then, so a returning client starts fresh either way.
func (p *clientPool) sweepLocked(now time.Time) {
	for ip, cl := range p.clients {
		if now.Sub(cl.lastSeen) > p.window {
			delete(p.clients, ip)
		}
	}
	p.lastSweep = now
}
