package service

import (
	"context"
	"errors"
	"testing"

	"github.com/pageflow/internal/rbac"
	"golang.org/x/crypto/bcrypt"
)

func TestEnsureUserAndAuthenticate(t *testing.T) {
	env := setupPageServiceTest(t)
	ctx := context.Background()
	users := NewUserService(Deps{Store: env.store}).WithHashCost(bcrypt.MinCost)

	created, err := users.EnsureUser(ctx, "reviewer", "s3cret-pass", rbac.RoleChecker)
	if err != nil || !created {
		t.Fatalf("expected user to be created, got %v (%v)", created, err)
	}
	created, err = users.EnsureUser(ctx, "reviewer", "other-pass", rbac.RoleAdmin)
	if err != nil || created {
		t.Fatalf("expected existing user to be kept, got %v (%v)", created, err)
	}

	actor, err := users.Authenticate(ctx, " reviewer ", "s3cret-pass")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if actor.Role != rbac.RoleChecker || actor.Username != "reviewer" {
		t.Fatalf("unexpected actor %+v", actor)
	}

	reloaded, err := users.ActorByID(ctx, actor.ID)
	if err != nil || reloaded != actor {
		t.Fatalf("expected session reload to match, got %+v (%v)", reloaded, err)
	}

	if _, err := users.Authenticate(ctx, "reviewer", "other-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := users.Authenticate(ctx, "nobody", "s3cret-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestCreateUserIsAdminOnly(t *testing.T) {
	env := setupPageServiceTest(t)
	ctx := context.Background()
	users := NewUserService(Deps{Store: env.store}).WithHashCost(bcrypt.MinCost)

	if _, err := users.CreateUser(ctx, "new", "password1", rbac.RoleMaker, checker); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	user, err := users.CreateUser(ctx, "new", "password1", rbac.RoleMaker, admin)
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if user.Password == "password1" {
		t.Fatal("expected password to be hashed")
	}

	if _, err := users.CreateUser(ctx, "new", "password2", rbac.RoleMaker, admin); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if _, err := users.CreateUser(ctx, "short", "123", rbac.RoleMaker, admin); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for short password, got %v", err)
	}
	if _, err := users.CreateUser(ctx, "odd", "password1", rbac.Role("owner"), admin); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for unknown role, got %v", err)
	}
}
