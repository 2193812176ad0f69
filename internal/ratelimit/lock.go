package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while the caller still holds it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out single-holder locks backed by redis SET NX. TryLock
// returns a token; Release is a no-op unless called with that token, so an
// expired lock reacquired by another holder is never released by the first.
type Locker struct {
	client *redis.Client
}

func NewLocker(client *redis.Client) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{client: client}
}

func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (token string, acquired bool, err error) {
	if l == nil || l.client == nil {
		return "", false, errors.New("ratelimit: lock client not configured")
	}
	if key == "" {
		return "", false, errors.New("ratelimit: lock key is empty")
	}
	if ttl <= 0 {
		return "", false, errors.New("ratelimit: lock ttl must be positive")
	}

	token = uuid.NewString()
	acquired, err = l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, acquired, nil
}

func (l *Locker) Release(ctx context.Context, key, token string) error {
	if l == nil || l.client == nil || key == "" || token == "" {
		return nil
	}
	return releaseScript.Run(ctx, l.client, []string{key}, token).Err()
}
