package ports

import (
	"context"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

// ClientRepository persists clients. Implementations wrap failures with the
// domain sentinels: ErrNotFound, ErrConflict on a uniqueness violation and
// ErrTransport when the store cannot be reached.
type ClientRepository interface {
	// List returns every client, newest first.
	List(ctx context.Context) ([]*domain.Client, error)
	FindByID(ctx context.Context, id string) (*domain.Client, error)
	Insert(ctx context.Context, c *domain.Client) error
	Replace(ctx context.Context, c *domain.Client) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, status domain.ClientStatus) (int64, error)
}

// ClientListCache holds the last list read from the store.
//
// The cache carries a generation that Invalidate bumps. A reader takes the
// generation before fetching from the store and fills the cache with Fill;
// the fill is dropped when a write invalidated in between, so a list read
// before an acknowledged write never lands after it.
type ClientListCache interface {
	// Get reports ok=false on a miss.
	Get(ctx context.Context) (clients []*domain.Client, ok bool, err error)
	Version(ctx context.Context) (uint64, error)
	// Fill stores clients only when the generation still equals version.
	Fill(ctx context.Context, version uint64, clients []*domain.Client) (stored bool, err error)
	Invalidate(ctx context.Context) error
}

// MutationGuard admits at most one mutation per key at a time.
type MutationGuard interface {
	// Acquire returns domain.ErrMutationInFlight when key is already held.
	// The returned release func must be called exactly once.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// SecretSealer encrypts credential values at rest.
type SecretSealer interface {
	Seal(plaintext string) (string, error)
	// Open returns values that were never sealed unchanged.
	Open(sealed string) (string, error)
}
