package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore keeps token revocations in Redis.
// Key formats: session:revoked:<jti> and session:user:<user_id>.
type SessionStore struct {
	client   *redis.Client
	tokenTTL time.Duration
}

// NewSessionStore creates a SessionStore. tokenTTL bounds how long a user
// cut-off must be kept: older tokens have expired on their own.
func NewSessionStore(client *redis.Client, tokenTTL time.Duration) *SessionStore {
	return &SessionStore{client: client, tokenTTL: tokenTTL}
}

func (s *SessionStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.tokenKey(tokenID), "1", ttl).Err(); err != nil {
		return unavailable("revoke token", err)
	}
	return nil
}

func (s *SessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.tokenKey(tokenID)).Result()
	if err != nil {
		return false, unavailable("check token", err)
	}
	return n > 0, nil
}

// RevokeUser stores the cut-off in Unix milliseconds, the precision of
// the iat claim it is compared against.
func (s *SessionStore) RevokeUser(ctx context.Context, userID string, at time.Time) error {
	if err := s.client.Set(ctx, s.userKey(userID), at.UnixMilli(), s.tokenTTL).Err(); err != nil {
		return unavailable("revoke user sessions", err)
	}
	return nil
}

func (s *SessionStore) RevokedBefore(ctx context.Context, userID string) (time.Time, error) {
	raw, err := s.client.Get(ctx, s.userKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, unavailable("read user cut-off", err)
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

func (s *SessionStore) tokenKey(tokenID string) string { return "session:revoked:" + tokenID }

func (s *SessionStore) userKey(userID string) string { return "session:user:" + userID }
