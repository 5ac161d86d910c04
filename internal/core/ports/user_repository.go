package ports

import (
	"context"
	"time"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

// UserRepository persists user profiles. Emails are stored normalized.
type UserRepository interface {
	// List returns every profile, newest first.
	List(ctx context.Context) ([]*domain.UserProfile, error)
	FindByID(ctx context.Context, id string) (*domain.UserProfile, error)
	FindByEmail(ctx context.Context, email string) (*domain.UserProfile, error)
	// Insert returns domain.ErrConflict when the email is taken.
	Insert(ctx context.Context, u *domain.UserProfile) error

	// The setters below write only the fields they name and return the
	// stored profile, so concurrent edits of other fields are kept.

	// CompleteSignUp sets the password of a profile that is active and has
	// none yet. An empty fullName keeps the stored one. It returns
	// domain.ErrNotAuthorized when no such profile matches id.
	CompleteSignUp(ctx context.Context, id, passwordHash, fullName string, at time.Time) (*domain.UserProfile, error)
	SetActive(ctx context.Context, id string, active bool, at time.Time) (*domain.UserProfile, error)
	SetRole(ctx context.Context, id string, role domain.Role, at time.Time) (*domain.UserProfile, error)
}

// SessionStore tracks revoked tokens.
type SessionStore interface {
	// Revoke invalidates one token id until it would have expired anyway.
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	// RevokeUser invalidates every token of userID issued before at.
	RevokeUser(ctx context.Context, userID string, at time.Time) error
	// RevokedBefore returns the cut-off set by RevokeUser, or the zero time.
	RevokedBefore(ctx context.Context, userID string) (time.Time, error)
}
