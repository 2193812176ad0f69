// Package ratelimit provides redis-backed rate limiting and locking for the
// invitation endpoints.
package ratelimit

import (
	"context"
	"errors"
	"math"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const tokenBucketScript = `
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])

local nowData = redis.call("TIME")
local now = (nowData[1] * 1000) + math.floor(nowData[2] / 1000)

local data = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(data[1])
local ts = tonumber(data[2])

if tokens == nil then
  tokens = burst
  ts = now
else
  local delta = now - ts
  if delta < 0 then
    delta = 0
  end
  local refill = (delta / 1000) * rate
  tokens = math.min(burst, tokens + refill)
  ts = now
end

local allowed = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
end

redis.call("HMSET", KEYS[1], "tokens", tokens, "ts", ts)
redis.call("PEXPIRE", KEYS[1], ttl)

return {allowed, tokens, ts}
`

type TokenBucket struct {
	client *redis.Client
	script *redis.Script
}

type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

func NewTokenBucket(client *redis.Client) *TokenBucket {
	if client == nil {
		return nil
	}
	return &TokenBucket{
		client: client,
		script: redis.NewScript(tokenBucketScript),
	}
}

// Allow consumes one token from the bucket at key. rate is tokens per
// second, burst the bucket capacity.
func (t *TokenBucket) Allow(ctx context.Context, key string, rate float64, burst int) (*Result, error) {
	if t == nil || t.client == nil {
		return &Result{Allowed: false}, errors.New("rate limiter not configured")
	}
	if key == "" {
		return &Result{Allowed: false}, errors.New("rate limiter key is empty")
	}
	if rate <= 0 {
		return &Result{Allowed: false}, errors.New("rate limiter rate must be positive")
	}
	if burst <= 0 {
		return &Result{Allowed: false}, errors.New("rate limiter burst must be positive")
	}

	ttl := bucketTTL(rate, burst)
	res, err := t.script.Run(ctx, t.client, []string{key}, rate, burst, int64(ttl/time.Millisecond)).Slice()
	if err != nil {
		return &Result{Allowed: false}, err
	}
	if len(res) < 3 {
		return &Result{Allowed: false}, errors.New("invalid rate limit script response")
	}

	allowed := castToInt(res[0]) == 1
	remaining := castToFloat(res[1])

	retryAfter := time.Duration(0)
	if !allowed {
		// time to refill one token
		needed := 1.0 - remaining
		if needed > 0 {
			retryAfter = time.Duration(needed / rate * float64(time.Second))
		}
	}

	return &Result{
		Allowed:    allowed,
		Limit:      burst,
		Remaining:  int(remaining),
		RetryAfter: retryAfter,
	}, nil
}

func bucketTTL(rate float64, burst int) time.Duration {
	seconds := math.Ceil((float64(burst) / rate) * 2)
	if seconds < 1 {
		seconds = 1
	}
	return time.Duration(seconds) * time.Second
}

func castToInt(v interface{}) int64 {
	switch val := v.(type) {
	case int64:
		return val
	case int:
		return int64(val)
	case float64:
		return int64(val)
	default:
		return 0
	}
}

func castToFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int64:
		return float64(val)
	default:
		return 0
	}
}
