package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/pageflow/internal/db"
	"github.com/pageflow/internal/rbac"
	"github.com/pageflow/internal/store"
	"github.com/rs/zerolog"
)

// ComponentInput describes a catalog component. When HTML is empty the fragment is
// lifted from the source page using Selector.
type ComponentInput struct {
	Name         string
	SourcePageID string
	Selector     string
	HTML         string
	CSS          string
	Description  *string
}

// PlacementInput places a component on a page. A nil Position appends it.
type PlacementInput struct {
	ComponentID    string
	Position       *int
	TargetSelector *string
}

// ComponentService manages the component catalog and component placements.
type ComponentService struct {
	pages *PageService
	store store.Store
	locks *PageLocks
	log   zerolog.Logger
}

// NewComponentService shares the page service's store and lock table.
func NewComponentService(pages *PageService) *ComponentService {
	return &ComponentService{
		pages: pages,
		store: pages.store,
		locks: pages.locks,
		log:   pages.log.With().Str("component", "components").Logger(),
	}
}

// CreateComponent adds a component to the catalog.
func (s *ComponentService) CreateComponent(ctx context.Context, input ComponentInput, actor Actor) (*db.Component, error) {
	if err := actor.Authorize(rbac.ActionComponent); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalid("name", "component name is required")
	}
	sourceID := strings.TrimSpace(input.SourcePageID)
	if sourceID == "" {
		return nil, invalid("sourcePageId", "source page is required")
	}
	selector := strings.TrimSpace(input.Selector)
	if selector == "" {
		return nil, invalid("selector", "selector is required")
	}

	unlock := s.locks.Lock(sourceID)
	defer unlock()

	component := &db.Component{
		ID:           uuid.NewString(),
		Name:         name,
		SourcePageID: sourceID,
		Selector:     selector,
		HTML:         input.HTML,
		CSS:          input.CSS,
		Description:  normalizeOptional(input.Description),
		CreatedAt:    s.pages.now(),
	}
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		page, err := tx.Pages().Get(ctx, sourceID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrPageNotFound
			}
			return err
		}

		if strings.TrimSpace(component.HTML) == "" {
			fragment, found, err := extractFragment(page.HTML, selector)
			if err != nil {
				return invalid("selector", err.Error())
			}
			if !found {
				return invalid("selector", "selector matches no element on the source page")
			}
			component.HTML = fragment
		}
		return tx.Components().Create(ctx, component)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("component_id", component.ID).Str("source", sourceID).Str("actor", actor.ID).Msg("component created")
	return component, nil
}

// GetComponent returns a catalog component.
func (s *ComponentService) GetComponent(ctx context.Context, id string) (*db.Component, error) {
	component, err := s.store.Components().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrComponentNotFound
		}
		return nil, err
	}
	return component, nil
}

// ListComponents returns the catalog, newest first.
func (s *ComponentService) ListComponents(ctx context.Context) ([]db.Component, error) {
	return s.store.Components().List(ctx)
}

// ListComponentsBySource returns the components lifted from a page.
func (s *ComponentService) ListComponentsBySource(ctx context.Context, pageID string) ([]db.Component, error) {
	return s.store.Components().ListBySource(ctx, pageID)
}

// DeleteComponent removes a catalog component and every placement of it.
func (s *ComponentService) DeleteComponent(ctx context.Context, id string, actor Actor) (bool, error) {
	if err := actor.Authorize(rbac.ActionComponent); err != nil {
		return false, err
	}

	var (
		deleted bool
		removed int64
	)
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		if removed, err = tx.Placements().DeleteByComponent(ctx, id); err != nil {
			return err
		}
		deleted, err = tx.Components().Delete(ctx, id)
		return err
	})
	if err != nil {
		return false, err
	}
	if deleted {
		s.log.Info().Str("component_id", id).Int64("placements_removed", removed).Msg("component deleted")
	}
	return deleted, nil
}

// ListPlacements returns the components placed on a page in position order.
func (s *ComponentService) ListPlacements(ctx context.Context, pageID string) ([]db.PageComponent, error) {
	return s.store.Placements().ListByPage(ctx, pageID)
}

// AddToPage places a catalog component on a page.
func (s *ComponentService) AddToPage(ctx context.Context, pageID string, input PlacementInput, actor Actor) (*db.PageComponent, error) {
	if err := actor.Authorize(rbac.ActionComponent); err != nil {
		return nil, err
	}

	componentID := strings.TrimSpace(input.ComponentID)
	if componentID == "" {
		return nil, invalid("componentId", "component is required")
	}
	if input.Position != nil && *input.Position < 0 {
		return nil, invalid("position", "position must not be negative")
	}

	unlock := s.locks.Lock(pageID)
	defer unlock()

	placement := &db.PageComponent{
		ID:             uuid.NewString(),
		PageID:         pageID,
		ComponentID:    componentID,
		TargetSelector: normalizeOptional(input.TargetSelector),
		CreatedAt:      s.pages.now(),
	}
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := tx.Pages().Get(ctx, pageID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrPageNotFound
			}
			return err
		}
		if _, err := tx.Components().Get(ctx, componentID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrComponentNotFound
			}
			return err
		}

		if input.Position != nil {
			placement.Position = *input.Position
		} else {
			count, err := tx.Placements().CountByPage(ctx, pageID)
			if err != nil {
				return err
			}
			placement.Position = int(count)
		}
		return tx.Placements().Create(ctx, placement)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("page_id", pageID).
		Str("component_id", componentID).
		Int("position", placement.Position).
		Msg("component placed")
	return placement, nil
}

// RemoveFromPage deletes a placement. A placement belonging to another page is
// reported as not found.
func (s *ComponentService) RemoveFromPage(ctx context.Context, pageID, placementID string, actor Actor) error {
	if err := actor.Authorize(rbac.ActionComponent); err != nil {
		return err
	}

	unlock := s.locks.Lock(pageID)
	defer unlock()

	return s.store.Transaction(ctx, func(tx store.Store) error {
		placement, err := tx.Placements().Get(ctx, placementID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrPlacementNotFound
			}
			return err
		}
		if placement.PageID != pageID {
			return ErrPlacementNotFound
		}
		_, err = tx.Placements().Delete(ctx, placementID)
		return err
	})
}
