package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type actionLimit struct {
	Limit  int64
	Window time.Duration
}

var defaultLimits = map[string]actionLimit{
	"create": {Limit: 10, Window: time.Minute},
	"join":   {Limit: 30, Window: time.Minute},
}

// rateLimiter counts actions per client in fixed windows, backed by
// redis when configured and by an in-process map otherwise. Redis
// failures fail open: a throttling outage must not take sessions down.
type rateLimiter struct {
	client *redis.Client

	mu      sync.Mutex
	windows map[string]*localWindow
}

type localWindow struct {
	count   int64
	resetAt time.Time
}

func newRateLimiter(redisURL string) *rateLimiter {
	limiter := &rateLimiter{
		windows: make(map[string]*localWindow),
	}
	if redisURL == "" {
		return limiter
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("rate limiter redis disabled error=%v", err)
		return limiter
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("rate limiter redis disabled error=%v", err)
		return limiter
	}
	limiter.client = client
	return limiter
}

func (l *rateLimiter) allow(ctx context.Context, clientID, action string) bool {
	limit, ok := defaultLimits[action]
	if !ok {
		return true
	}
	key := fmt.Sprintf("rate:%s:%s", clientID, action)
	if l.client != nil {
		pipe := l.client.Pipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, limit.Window)
		if _, err := pipe.Exec(ctx); err != nil {
			return true
		}
		return incr.Val() <= limit.Limit
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	window := l.windows[key]
	if window == nil || now.After(window.resetAt) {
		window = &localWindow{resetAt: now.Add(limit.Window)}
		l.windows[key] = window
	}
	window.count++
	return window.count <= limit.Limit
}

func (s *Server) enforceRateLimit(c *gin.Context, action string) bool {
	if s.limiter == nil {
		return true
	}
	if s.limiter.allow(c.Request.Context(), c.ClientIP(), action) {
		return true
	}
	c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
	return false
}
