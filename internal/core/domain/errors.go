package domain

import "errors"

// Sentinel errors shared by services, repositories and the HTTP layer.
// Repositories wrap them with fmt.Errorf("...: %w") so callers match with errors.Is.
var (
	ErrValidation       = errors.New("validation failed")
	ErrConflict         = errors.New("conflicts with an existing record")
	ErrNotFound         = errors.New("not found")
	ErrMutationInFlight = errors.New("another change to this record is in progress")
	ErrTransport        = errors.New("backing store unreachable")

	ErrForbidden   = errors.New("access forbidden")
	ErrRoleCeiling = errors.New("role exceeds what the actor may assign")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrNotAuthorized      = errors.New("access not authorized, contact your administrator")
)

// ValidationError carries the offending field alongside ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid is a shorthand for building a *ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
