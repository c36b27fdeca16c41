package service

import (
	"errors"
	"fmt"

	"github.com/pageflow/internal/db"
	"github.com/pageflow/internal/rbac"
)

var (
	ErrPageNotFound       = errors.New("page not found")
	ErrVersionNotFound    = errors.New("page version not found")
	ErrLinkNotFound       = errors.New("link not found")
	ErrComponentNotFound  = errors.New("component not found")
	ErrPlacementNotFound  = errors.New("page component not found")
	ErrIllegalTransition  = errors.New("illegal state transition")
	ErrValidation         = errors.New("validation failed")
	ErrForbidden          = errors.New("action not permitted for role")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("user already exists")
	// ErrVersionConflict means two snapshots of one page computed the same version
	// number. Page serialization is broken when this happens, so the write is aborted.
	ErrVersionConflict = errors.New("page version number collision")
)

// TransitionError reports a state change that is not reachable from the current state.
type TransitionError struct {
	PageID string
	From   db.PageState
	To     db.PageState
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("page %s cannot move from %s to %s", e.PageID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrIllegalTransition
}

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// AuthorizationError reports an actor whose role does not allow the action.
type AuthorizationError struct {
	ActorID string
	Role    rbac.Role
	Action  rbac.Action
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("role %q may not %s", e.Role, e.Action)
}

func (e *AuthorizationError) Unwrap() error {
	return ErrForbidden
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
