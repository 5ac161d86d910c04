package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

// ClientCache keeps the client list in process memory. A zero ttl never expires.
type ClientCache struct {
	mu      sync.RWMutex
	clients []*domain.Client
	filled  bool
	version uint64
	expires time.Time
	ttl     time.Duration
	now     func() time.Time
}

func NewClientCache(ttl time.Duration) *ClientCache {
	return &ClientCache{ttl: ttl, now: time.Now}
}

func (c *ClientCache) Get(_ context.Context) ([]*domain.Client, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.filled {
		return nil, false, nil
	}
	if c.ttl > 0 && c.now().After(c.expires) {
		return nil, false, nil
	}
	return cloneClients(c.clients), true, nil
}

func (c *ClientCache) Version(_ context.Context) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version, nil
}

func (c *ClientCache) Fill(_ context.Context, version uint64, clients []*domain.Client) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if version != c.version {
		return false, nil
	}
	c.clients = cloneClients(clients)
	c.filled = true
	c.expires = c.now().Add(c.ttl)
	return true, nil
}

func (c *ClientCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.version++
	c.clients = nil
	c.filled = false
	return nil
}
