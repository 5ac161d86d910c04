package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

const (
	clientListKey        = "clients:list"
	clientListVersionKey = "clients:list:version"
)

// fillScript stores the list only while the generation is unchanged.
// KEYS: list, version. ARGV: expected version, payload, ttl in ms (0 keeps it).
var fillScript = redis.NewScript(`
local current = redis.call("GET", KEYS[2]) or "0"
if current ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
else
	redis.call("SET", KEYS[1], ARGV[2])
end
return 1
`)

// invalidateScript bumps the generation and drops the list in one step.
var invalidateScript = redis.NewScript(`
redis.call("INCR", KEYS[2])
return redis.call("DEL", KEYS[1])
`)

// ClientCache stores the client list as one JSON value shared by every
// instance of the service, next to the generation counter guarding fills.
type ClientCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClientCache(client *redis.Client, ttl time.Duration) *ClientCache {
	return &ClientCache{client: client, ttl: ttl}
}

func (c *ClientCache) Get(ctx context.Context) ([]*domain.Client, bool, error) {
	raw, err := c.client.Get(ctx, clientListKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, unavailable("client cache get", err)
	}

	var clients []*domain.Client
	if err := json.Unmarshal(raw, &clients); err != nil {
		return nil, false, fmt.Errorf("client cache decode: %w", err)
	}
	return clients, true, nil
}

func (c *ClientCache) Version(ctx context.Context) (uint64, error) {
	v, err := c.client.Get(ctx, clientListVersionKey).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, unavailable("client cache version", err)
	}
	return v, nil
}

func (c *ClientCache) Fill(ctx context.Context, version uint64, clients []*domain.Client) (bool, error) {
	raw, err := json.Marshal(clients)
	if err != nil {
		return false, fmt.Errorf("client cache encode: %w", err)
	}
	stored, err := fillScript.Run(ctx, c.client,
		[]string{clientListKey, clientListVersionKey},
		strconv.FormatUint(version, 10), raw, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, unavailable("client cache fill", err)
	}
	return stored == 1, nil
}

func (c *ClientCache) Invalidate(ctx context.Context) error {
	err := invalidateScript.Run(ctx, c.client, []string{clientListKey, clientListVersionKey}).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return unavailable("client cache invalidate", err)
	}
	return nil
}
