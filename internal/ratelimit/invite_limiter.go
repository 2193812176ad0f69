package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/procurehq/procure/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const (
	keyInviteUser = "invite:user:%s"
	keyBulkLock   = "invite:bulk:lock:%s"

	bulkLockTTL = 5 * time.Minute
)

// InviteLimiter throttles invitation traffic per inviter and serializes bulk
// uploads. A nil limiter allows everything.
type InviteLimiter struct {
	bucket *TokenBucket
	locker *Locker
	rate   float64
	burst  int
}

// NewInviteLimiter returns nil when redis is not configured; callers treat a
// nil limiter as disabled.
func NewInviteLimiter(cfg config.Config) *InviteLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})

	return &InviteLimiter{
		bucket: NewTokenBucket(client),
		locker: NewLocker(client),
		rate:   cfg.InviteRatePerMin / 60,
		burst:  cfg.InviteBurst,
	}
}

// Allow reports whether inviterID may issue another invitation right now.
func (l *InviteLimiter) Allow(ctx context.Context, inviterID string) (*Result, error) {
	if l == nil {
		return &Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyInviteUser, inviterID), l.rate, l.burst)
}

// LockBulkUpload takes the per-user bulk upload lock. The returned token
// releases it via UnlockBulkUpload.
func (l *InviteLimiter) LockBulkUpload(ctx context.Context, inviterID string) (string, bool, error) {
	if l == nil {
		return "", true, nil
	}
	return l.locker.TryLock(ctx, fmt.Sprintf(keyBulkLock, inviterID), bulkLockTTL)
}

func (l *InviteLimiter) UnlockBulkUpload(ctx context.Context, inviterID, token string) error {
	if l == nil {
		return nil
	}
	return l.locker.Release(ctx, fmt.Sprintf(keyBulkLock, inviterID), token)
}
