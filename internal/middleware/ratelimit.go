package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/zyhxx/classseat/internal/config"
)

// NewTokenBucket builds a Redis-backed token bucket limiter keyed by
// client identity and route. It is applied to the auth endpoints where
// password guessing is a concern. When rate limiting is disabled or no
// Redis client is available the middleware is a pass-through, and Redis
// errors at request time fail open so an unavailable Redis never takes
// the API down with it.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	// The whole take-or-refill step runs as one Lua script so concurrent
	// requests against the same bucket cannot interleave.
	limiterScript := redis.NewScript(`
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
            local elapsed = math.max(0, now_ms - last_refill)
            local intervals = math.floor(elapsed / interval_ms)
            if intervals > 0 then
                tokens = math.min(capacity, tokens + (intervals * refill_tokens))
                last_refill = last_refill + (intervals * interval_ms)
            end
        end

        local allowed = 0
        local retry_after_ms = 0
        if tokens > 0 then
            allowed = 1
            tokens = tokens - 1
        else
            local until_next = interval_ms - (now_ms - last_refill)
            if until_next < 0 then until_next = 0 end
            retry_after_ms = until_next
        end

        redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
        redis.call('EXPIRE', key, ttl_seconds)

        return { allowed, tokens, retry_after_ms }
    `)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg.Prefix, c)
			args := []interface{}{
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL / time.Second),
			}

			vals, err := limiterScript.Run(c.Request().Context(), rdb, []string{key}, args...).Result()
			if err != nil {
				return next(c)
			}

			res, ok := vals.([]interface{})
			if !ok || len(res) < 3 {
				return next(c)
			}
			allowed, _ := res[0].(int64)
			retryMs, _ := res[2].(int64)
			if allowed == 1 {
				return next(c)
			}

			retry := time.Duration(retryMs) * time.Millisecond
			c.Response().Header().Set("Retry-After", fmt.Sprintf("%d", int64(retry.Seconds())+1))
			return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many requests"})
		}
	}
}

// rateKey buckets by authenticated user when present, otherwise by
// client IP, always scoped to the matched route.
func rateKey(prefix string, c echo.Context) string {
	who := c.RealIP()
	if id, ok := userIDFrom(c); ok {
		who = fmt.Sprintf("u%d", id)
	}
	route := strings.ReplaceAll(c.Path(), "/", "_")
	return fmt.Sprintf("%s:%s:%s", prefix, route, who)
}
