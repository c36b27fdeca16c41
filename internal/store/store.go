// Package store persists pages, their version log, navigation links, components and users.
package store

import (
	"context"
	"errors"

	"github.com/pageflow/internal/db"
)

var (
	// ErrNotFound is returned when a lookup by id matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// PageRepository holds the current-state record of each page.
type PageRepository interface {
	Create(ctx context.Context, page *db.Page) error
	Get(ctx context.Context, id string) (*db.Page, error)
	// GetForUpdate reads the page and, where the database supports it, locks the row
	// until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (*db.Page, error)
	Save(ctx context.Context, page *db.Page) error
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]db.Page, error)
	ListByState(ctx context.Context, state db.PageState) ([]db.Page, error)
	ListPendingApproval(ctx context.Context) ([]db.Page, error)
	CountByState(ctx context.Context) (map[db.PageState]int64, error)
}

// VersionRepository is the append-only page version log.
type VersionRepository interface {
	NextNumber(ctx context.Context, pageID string) (int, error)
	Create(ctx context.Context, version *db.PageVersion) error
	Get(ctx context.Context, id string) (*db.PageVersion, error)
	ListByPage(ctx context.Context, pageID string) ([]db.PageVersion, error)
}

// LinkRepository stores navigation links between pages.
type LinkRepository interface {
	Create(ctx context.Context, link *db.Link) error
	Get(ctx context.Context, id string) (*db.Link, error)
	List(ctx context.Context) ([]db.Link, error)
	ListFrom(ctx context.Context, pageID string) ([]db.Link, error)
	ListTouching(ctx context.Context, pageID string) ([]db.Link, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteTouching(ctx context.Context, pageID string) (int64, error)
}

// ComponentRepository is the reusable component catalog.
type ComponentRepository interface {
	Create(ctx context.Context, component *db.Component) error
	Get(ctx context.Context, id string) (*db.Component, error)
	List(ctx context.Context) ([]db.Component, error)
	ListBySource(ctx context.Context, pageID string) ([]db.Component, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// PlacementRepository stores where components are placed on pages.
type PlacementRepository interface {
	Create(ctx context.Context, placement *db.PageComponent) error
	Get(ctx context.Context, id string) (*db.PageComponent, error)
	ListByPage(ctx context.Context, pageID string) ([]db.PageComponent, error)
	CountByPage(ctx context.Context, pageID string) (int64, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteByPage(ctx context.Context, pageID string) (int64, error)
	DeleteByComponent(ctx context.Context, componentID string) (int64, error)
}

// UserRepository stores authenticated actors.
type UserRepository interface {
	Create(ctx context.Context, user *db.User) error
	Get(ctx context.Context, id string) (*db.User, error)
	GetByUsername(ctx context.Context, username string) (*db.User, error)
}

// Store bundles the repositories. Transaction runs fn against a Store bound to a single
// database transaction; fn's error rolls everything back.
type Store interface {
	Pages() PageRepository
	Versions() VersionRepository
	Links() LinkRepository
	Components() ComponentRepository
	Placements() PlacementRepository
	Users() UserRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
