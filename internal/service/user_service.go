package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pageflow/internal/db"
	"github.com/pageflow/internal/rbac"
	"github.com/pageflow/internal/store"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// UserService handles accounts and credential checks.
type UserService struct {
	store store.Store
	log   zerolog.Logger
	now   func() time.Time
	cost  int
}

// NewUserService returns a new UserService instance.
func NewUserService(deps Deps) *UserService {
	deps = deps.withDefaults()
	return &UserService{
		store: deps.Store,
		log:   deps.Logger.With().Str("component", "users").Logger(),
		now:   deps.Now,
		cost:  bcrypt.DefaultCost,
	}
}

// WithHashCost overrides the bcrypt cost, mainly to keep tests fast.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.cost = cost
	return s
}

// Authenticate checks a username and password and returns the matching actor.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (Actor, error) {
	user, err := s.store.Users().GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Actor{}, ErrInvalidCredentials
		}
		return Actor{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return Actor{}, ErrInvalidCredentials
	}
	return actorFromUser(user), nil
}

// ActorByID reloads the actor for a session.
func (s *UserService) ActorByID(ctx context.Context, id string) (Actor, error) {
	user, err := s.store.Users().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Actor{}, ErrUnauthenticated
		}
		return Actor{}, err
	}
	return actorFromUser(user), nil
}

// CreateUser adds an account. Only admins may create accounts.
func (s *UserService) CreateUser(ctx context.Context, username, password string, role rbac.Role, actor Actor) (*db.User, error) {
	if err := actor.Authorize(rbac.ActionManageUser); err != nil {
		return nil, err
	}
	return s.createUser(ctx, username, password, role)
}

// EnsureUser creates the account unless the username is already taken. It is used
// for bootstrap accounts and reports whether a user was created.
func (s *UserService) EnsureUser(ctx context.Context, username, password string, role rbac.Role) (bool, error) {
	_, err := s.store.Users().GetByUsername(ctx, strings.TrimSpace(username))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}
	if _, err := s.createUser(ctx, username, password, role); err != nil {
		if errors.Is(err, ErrUserExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *UserService) createUser(ctx context.Context, username, password string, role rbac.Role) (*db.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid("username", "username is required")
	}
	if len(password) < minPasswordLength {
		return nil, invalid("password", "password is too short")
	}
	if !role.Valid() {
		return nil, invalid("role", "unknown role")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}

	user := &db.User{
		ID:        uuid.NewString(),
		Username:  username,
		Password:  string(hashed),
		Role:      string(role),
		CreatedAt: s.now(),
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("username", username).Str("role", string(role)).Msg("user created")
	return user, nil
}

func actorFromUser(user *db.User) Actor {
	return Actor{ID: user.ID, Username: user.Username, Role: rbac.Normalize(user.Role)}
}
