package service

import (
	"strings"

	"github.com/pageflow/internal/rbac"
)

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID       string
	Username string
	Role     rbac.Role
}

// Authorize checks the actor against the capability table.
func (a Actor) Authorize(action rbac.Action) error {
	if strings.TrimSpace(a.ID) == "" {
		return ErrUnauthenticated
	}
	if !rbac.Can(a.Role, action) {
		return &AuthorizationError{ActorID: a.ID, Role: a.Role, Action: action}
	}
	return nil
}
