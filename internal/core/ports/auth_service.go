package ports

import (
	"context"
	"time"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

// Session is an issued access token.
type Session struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
	User      *domain.UserProfile
}

type AuthService interface {
	// SignUp sets the password of a profile an administrator created beforehand.
	SignUp(ctx context.Context, email, password, fullName string) (*domain.UserProfile, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, tokenID string, expiresAt time.Time) error
	Me(ctx context.Context, actor domain.Identity) (*domain.UserProfile, error)
}

type UserService interface {
	List(ctx context.Context, actor domain.Identity) ([]*domain.UserProfile, error)
	Create(ctx context.Context, actor domain.Identity, in domain.NewUserInput) (*domain.UserProfile, error)
	SetActive(ctx context.Context, actor domain.Identity, id string, active bool) (*domain.UserProfile, error)
	ChangeRole(ctx context.Context, actor domain.Identity, id string, role domain.Role) (*domain.UserProfile, error)
}
