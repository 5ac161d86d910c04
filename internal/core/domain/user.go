package domain

import (
	"strings"
	"time"
)

// UserProfile is a person allowed to sign in. Profiles are created by an
// administrator; the password is set by the user on first sign-up.
type UserProfile struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Email        string    `json:"email" bson:"email"`
	FullName     string    `json:"full_name" bson:"full_name"`
	Role         Role      `json:"role" bson:"role"`
	Phone        string    `json:"phone,omitempty" bson:"phone,omitempty"`
	IsActive     bool      `json:"is_active" bson:"is_active"`
	PasswordHash string    `json:"-" bson:"password_hash,omitempty"`
	CreatedBy    string    `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// Identity projects the profile onto the identity carried by a session.
func (u *UserProfile) Identity() Identity {
	return Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// Registered reports whether the user already chose a password.
func (u *UserProfile) Registered() bool {
	return u.PasswordHash != ""
}

// NormalizeEmail lowercases and trims an address so it can be used as a key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUserInput is what an administrator submits to authorize a new user.
type NewUserInput struct {
	Email    string
	FullName string
	Role     Role
	Phone    string
}

// Validate checks the required fields.
func (in NewUserInput) Validate() error {
	if NormalizeEmail(in.Email) == "" || !strings.Contains(in.Email, "@") {
		return Invalid("email", "must be a valid email")
	}
	if strings.TrimSpace(in.FullName) == "" {
		return Invalid("full_name", "is required")
	}
	if in.Role == "" {
		return Invalid("role", "is required")
	}
	return nil
}
