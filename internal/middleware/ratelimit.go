package middleware

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/JonnyWalker81/pulse/backend/internal/apierror"
	"github.com/JonnyWalker81/pulse/backend/internal/logger"
)

// Decision is the outcome of a single rate limit check.
type Decision struct {
	Allowed    bool
	Count      int
	Limit      int
	RetryAfter time.Duration
}

// Limiter counts requests per key in fixed windows.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Name() string
}

// RateLimiter provides request rate limiting per IP address
type RateLimiter struct {
	requests map[string]*clientInfo
	mu       sync.RWMutex
	rate     int           // requests per window
	window   time.Duration // time window
	name     string        // identifier for logging
	now      func() time.Time
}

type clientInfo struct {
	count       int
	windowStart time.Time
	lastSeen    time.Time
}

// NewRateLimiter creates an in-process limiter and starts its cleanup loop.
// name identifies the limiter in logs, e.g. "general" or "auth".
func NewRateLimiter(rate int, window time.Duration, name string) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string]*clientInfo),
		rate:     rate,
		window:   window,
		name:     name,
		now:      time.Now,
	}

	go rl.cleanup()

	logger.Default().Debug("rate limiter initialized",
		logger.String("name", name),
		logger.String("backend", "memory"),
		logger.Int("rate", rate),
		logger.Duration("window", window),
	)

	return rl
}

// cleanup removes stale entries periodically
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := rl.now()
		cleaned := 0
		for ip, info := range rl.requests {
			if now.Sub(info.lastSeen) > rl.window*2 {
				delete(rl.requests, ip)
				cleaned++
			}
		}
		remaining := len(rl.requests)
		rl.mu.Unlock()

		if cleaned > 0 {
			logger.Default().Debug("rate limiter cleanup completed",
				logger.String("name", rl.name),
				logger.Int("cleaned", cleaned),
				logger.Int("remaining", remaining),
			)
		}
	}
}

func (rl *RateLimiter) take(ip string) Decision {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	info, exists := rl.requests[ip]
	if !exists || now.Sub(info.windowStart) >= rl.window {
		info = &clientInfo{windowStart: now}
		rl.requests[ip] = info
	}

	info.count++
	info.lastSeen = now

	return Decision{
		Allowed:    info.count <= rl.rate,
		Count:      info.count,
		Limit:      rl.rate,
		RetryAfter: rl.window - now.Sub(info.windowStart),
	}
}

// isAllowed checks if a request from the given IP is allowed
func (rl *RateLimiter) isAllowed(ip string) (bool, int) {
	d := rl.take(ip)
	return d.Allowed, d.Count
}

// Allow implements Limiter.
func (rl *RateLimiter) Allow(_ context.Context, key string) (Decision, error) {
	return rl.take(key), nil
}

// Name implements Limiter.
func (rl *RateLimiter) Name() string { return rl.name }

// RedisLimiter shares fixed-window counters between API instances.
type RedisLimiter struct {
	client redis.Cmdable
	rate   int
	window time.Duration
	name   string
}

// NewRedisLimiter counts requests under "ratelimit:<name>:<key>".
func NewRedisLimiter(client redis.Cmdable, rate int, window time.Duration, name string) *RedisLimiter {
	logger.Default().Debug("rate limiter initialized",
		logger.String("name", name),
		logger.String("backend", "redis"),
		logger.Int("rate", rate),
		logger.Duration("window", window),
	)
	return &RedisLimiter{client: client, rate: rate, window: window, name: name}
}

// Allow increments the key's counter and sets its expiry on the first hit.
func (rl *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey := "ratelimit:" + rl.name + ":" + key

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := rl.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, rl.window)
		ttl = pipe.PTTL(ctx, redisKey)
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit %s: %w", rl.name, err)
	}

	retry := ttl.Val()
	if retry <= 0 {
		retry = rl.window
	}
	count := int(incr.Val())
	return Decision{
		Allowed:    count <= rl.rate,
		Count:      count,
		Limit:      rl.rate,
		RetryAfter: retry,
	}, nil
}

// Name implements Limiter.
func (rl *RedisLimiter) Name() string { return rl.name }

// RateLimitConfig sizes the general and auth limiters.
type RateLimitConfig struct {
	Window  time.Duration
	Max     int
	AuthMax int
	Redis   redis.Cmdable // nil keeps counters in memory
}

// NewLimiter builds the redis or memory limiter for name.
func (cfg RateLimitConfig) NewLimiter(rate int, name string) Limiter {
	if cfg.Redis != nil {
		return NewRedisLimiter(cfg.Redis, rate, cfg.Window, name)
	}
	return NewRateLimiter(rate, cfg.Window, name)
}

// RateLimit limits general API traffic per client IP.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	return RateLimitWith(cfg.NewLimiter(cfg.Max, "general"))
}

// RateLimitAuth is the stricter limiter in front of register and login.
func RateLimitAuth(cfg RateLimitConfig) gin.HandlerFunc {
	return RateLimitWith(cfg.NewLimiter(cfg.AuthMax, "auth"))
}

// RateLimitWith wraps any Limiter. Limiter errors fail open.
func RateLimitWith(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		log := logger.FromContext(c.Request.Context())

		d, err := limiter.Allow(c.Request.Context(), ip)
		if err != nil {
			log.Error("rate limiter unavailable",
				logger.String("limiter", limiter.Name()),
				logger.Err(err),
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(d.Limit-d.Count, 0)))

		if !d.Allowed {
			log.Warn("rate limit exceeded",
				logger.String("limiter", limiter.Name()),
				logger.String("client_ip", ip),
				logger.Int("request_count", d.Count),
				logger.Int("limit", d.Limit),
			)

			retry := int(math.Ceil(d.RetryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			apierror.WriteProblem(c, apierror.NewRateLimitError(apierror.GetRequestID(c), retry))
			return
		}

		c.Next()
	}
}
