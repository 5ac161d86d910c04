package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/cabinet-comptable/backoffice/internal/api/metrics"
	"github.com/cabinet-comptable/backoffice/internal/core/authz"
	"github.com/cabinet-comptable/backoffice/internal/core/domain"
	"github.com/cabinet-comptable/backoffice/internal/core/ports"
)

const minPasswordLen = 8

// AuthService implements sign-up, sign-in and sign-out. There is no open
// registration: sign-up only completes a profile an administrator created.
type AuthService struct {
	users     ports.UserRepository
	sessions  ports.SessionStore
	guard     ports.MutationGuard
	registry  *authz.Registry
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger

	now   func() time.Time
	newID func() string
}

func NewAuthService(
	users ports.UserRepository,
	sessions ports.SessionStore,
	guard ports.MutationGuard,
	registry *authz.Registry,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		sessions:  sessions,
		guard:     guard,
		registry:  registry,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *AuthService) SignUp(ctx context.Context, email, password, fullName string) (*domain.UserProfile, error) {
	email = domain.NormalizeEmail(email)
	if len(password) < minPasswordLen {
		return nil, domain.Invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}

	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotAuthorized
	}
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	if !u.IsActive || u.Registered() {
		return nil, domain.ErrNotAuthorized
	}

	release, err := s.guard.Acquire(ctx, "user:"+u.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("sign up: hash password: %w", err)
	}
	// The store re-checks that the profile is still active and unregistered.
	u, err = s.users.CompleteSignUp(ctx, u.ID, string(hash), strings.TrimSpace(fullName), s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	s.log.Info().Str("user_id", u.ID).Msg("user completed sign-up")
	return u, nil
}

// SignIn checks the password before the account state so an inactive
// account is only disclosed to someone who knows its password.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (_ *ports.Session, err error) {
	defer func() { metrics.SignInsTotal.WithLabelValues(signInLabel(err)).Inc() }()

	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if !u.Registered() || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, domain.ErrUserInactive
	}

	return s.issue(u)
}

// SignOut revokes a token until its natural expiry.
func (s *AuthService) SignOut(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, tokenID, expiresAt); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, actor domain.Identity) (*domain.UserProfile, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrInvalidCredentials
	}
	u, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	return u, nil
}

// Bootstrap creates an active account with the highest role of the
// registry. It is meant for the first deployment, when nobody can yet
// authorize users.
func (s *AuthService) Bootstrap(ctx context.Context, email, fullName, password string) (*domain.UserProfile, error) {
	roles := s.registry.Roles()
	if len(roles) == 0 {
		return nil, errors.New("bootstrap: no role registry configured")
	}
	in := domain.NewUserInput{Email: email, FullName: fullName, Role: roles[len(roles)-1]}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLen {
		return nil, domain.Invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: hash password: %w", err)
	}
	now := s.now().UTC()
	u := &domain.UserProfile{
		ID:           s.newID(),
		Email:        domain.NormalizeEmail(email),
		FullName:     strings.TrimSpace(fullName),
		Role:         in.Role,
		IsActive:     true,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Insert(ctx, u); err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	return u, nil
}

// issue signs a token whose iat keeps milliseconds, so a sign-in right
// after a session cut-off is told apart from the tokens it revoked.
func (s *AuthService) issue(u *domain.UserProfile) (*ports.Session, error) {
	now := s.now()
	exp := now.Add(s.tokenTTL)
	jti := s.newID()

	claims := jwt.MapClaims{
		"sub":   u.ID,
		"email": u.Email,
		"role":  string(u.Role),
		"jti":   jti,
		"iat":   float64(now.UnixMilli()) / 1000,
		"exp":   exp.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &ports.Session{Token: signed, TokenID: jti, ExpiresAt: exp, User: u}, nil
}

func signInLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrUserInactive):
		return "inactive"
	}
	return "error"
}
