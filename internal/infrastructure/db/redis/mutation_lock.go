package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

const lockPrefix = "lock:"

// releaseScript deletes the lock only if it still holds our token, so an
// expired lock taken over by another instance is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// MutationLock is a MutationGuard shared by every instance of the service.
// Locks expire after ttl in case a holder dies before releasing.
type MutationLock struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

func NewMutationLock(client *redis.Client, ttl time.Duration, log zerolog.Logger) *MutationLock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &MutationLock{client: client, ttl: ttl, log: log}
}

func (l *MutationLock) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, lockPrefix+key, token, l.ttl).Result()
	if err != nil {
		return nil, unavailable("acquire "+key, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, domain.ErrMutationInFlight)
	}

	return func() {
		// The caller's context may already be cancelled.
		rctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()
		if err := releaseScript.Run(rctx, l.client, []string{lockPrefix + key}, token).Err(); err != nil {
			l.log.Warn().Err(err).Str("key", key).Msg("failed to release mutation lock")
		}
	}, nil
}
