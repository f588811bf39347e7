package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/betterwealth/workshop-booking/internal/config"
)

// tokenBucketScript refills by whole intervals and takes one token.  It
// returns {allowed, remaining, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])
if tokens == nil or last_refill == nil then
  tokens = capacity
  last_refill = now_ms
end

if interval_ms > 0 and refill_tokens > 0 then
  local intervals = math.floor(math.max(0, now_ms - last_refill) / interval_ms)
  if intervals > 0 then
    tokens = math.min(capacity, tokens + intervals * refill_tokens)
    last_refill = last_refill + intervals * interval_ms
  end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
  allowed = 1
  tokens = tokens - 1
else
  retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)
return { allowed, tokens, retry_after_ms }
`)

// NewRateLimiter picks the Redis token bucket when a client is available
// and the in-process limiter otherwise.
func NewRateLimiter(cfg config.RateLimitConfig, rdb *redis.Client, logger *zap.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if rdb == nil {
		logger.Warn("redis unavailable, using in-process rate limiter")
		return NewLocalLimiter(cfg)
	}
	return NewTokenBucket(cfg, rdb, logger)
}

// NewTokenBucket shares one bucket per key across all instances through
// Redis.  Redis errors let the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			vals, err := tokenBucketScript.Run(c.Request().Context(), rdb, []string{key},
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL/time.Second),
			).Slice()
			if err != nil || len(vals) != 3 {
				logger.Warn("rate limit script failed, allowing request", zap.String("key", key), zap.Error(err))
				return next(c)
			}

			remaining := asInt64(vals[1])
			setRateHeaders(c, cfg, remaining)
			if asInt64(vals[0]) != 1 {
				retry := time.Duration(asInt64(vals[2])) * time.Millisecond
				if cfg.Debug {
					logger.Debug("rate limited", zap.String("key", key), zap.Duration("retry_after", retry))
				}
				return tooManyRequests(c, retry)
			}
			return next(c)
		}
	}
}

// NewLocalLimiter keeps one x/time/rate limiter per key in memory.  Idle
// keys are dropped after cfg.TTL.
func NewLocalLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	every := rate.Every(cfg.RefillInterval / time.Duration(max(cfg.RefillTokens, 1)))
	ll := &localLimiters{
		limit: every,
		burst: cfg.Capacity,
		ttl:   cfg.TTL,
		m:     map[string]*localEntry{},
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lim := ll.get(buildRateKey(cfg, c), time.Now())
			r := lim.Reserve()
			if delay := r.Delay(); delay > 0 {
				r.Cancel()
				setRateHeaders(c, cfg, 0)
				return tooManyRequests(c, delay)
			}
			setRateHeaders(c, cfg, int64(lim.Tokens()))
			return next(c)
		}
	}
}

type localEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

type localLimiters struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	m        map[string]*localEntry
	lastScan time.Time
}

func (l *localLimiters) get(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if now.Sub(l.lastScan) > l.ttl {
		for k, e := range l.m {
			if now.Sub(e.seen) > l.ttl {
				delete(l.m, k)
			}
		}
		l.lastScan = now
	}
	e, ok := l.m[key]
	if !ok {
		e = &localEntry{lim: rate.NewLimiter(l.limit, l.burst)}
		l.m[key] = e
	}
	e.seen = now
	return e.lim
}

func setRateHeaders(c echo.Context, cfg config.RateLimitConfig, remaining int64) {
	h := c.Response().Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
	h.Set("X-RateLimit-Remaining", strconv.FormatInt(max(remaining, 0), 10))
}

func tooManyRequests(c echo.Context, retry time.Duration) error {
	secs := int(math.Ceil(retry.Seconds()))
	c.Response().Header().Set("Retry-After", strconv.Itoa(max(secs, 0)))
	return c.JSON(http.StatusTooManyRequests, echo.Map{
		"error":       "Too many requests",
		"retry_after": secs,
	})
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	}
	n, _ := strconv.ParseInt(fmt.Sprint(v), 10, 64)
	return n
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	uid, _ := c.Get("user_id").(string)
	if uid == "" {
		uid = "anon"
	}
	route := c.Request().Method + " " + c.Path()

	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "user":
		parts = append(parts, "user", uid)
	case "route":
		parts = append(parts, "route", route)
	case "ip_user":
		parts = append(parts, "ip", ip, "user", uid)
	case "ip_route":
		parts = append(parts, "ip", ip, "route", route)
	default:
		parts = append(parts, "ip", ip, "user", uid, "route", route)
	}
	return strings.Join(parts, ":")
}
