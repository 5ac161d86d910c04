package ports

import (
	"context"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

// ClientService is the client book as seen by the transport layer. Reads
// return clients with their password fields cleared; Credentials is the only
// way to obtain them.
type ClientService interface {
	List(ctx context.Context, actor domain.Identity) ([]*domain.Client, error)
	Search(ctx context.Context, actor domain.Identity, term string) ([]*domain.Client, error)
	Get(ctx context.Context, actor domain.Identity, id string) (*domain.Client, error)
	Create(ctx context.Context, actor domain.Identity, in domain.ClientInput) (*domain.Client, error)
	Update(ctx context.Context, actor domain.Identity, id string, patch domain.ClientPatch) (*domain.Client, error)
	Delete(ctx context.Context, actor domain.Identity, id string) error
	Credentials(ctx context.Context, actor domain.Identity, id string, reveal domain.RevealState) (*domain.ClientCredentialsView, error)
}
