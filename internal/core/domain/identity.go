package domain

import "context"

// Identity is the authenticated actor as seen by the core: who they are and
// which role tag they carry. The zero value is the unauthenticated actor.
type Identity struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// Authenticated reports whether the identity carries a user and a role.
func (i Identity) Authenticated() bool {
	return i.UserID != "" && i.Role != ""
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored in ctx, or the zero Identity.
func IdentityFrom(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey{}).(Identity)
	return id
}
