package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageflow/internal/db"
	"github.com/pageflow/internal/rbac"
	"github.com/pageflow/internal/store"
)

// snapshot records the page's current content as the next version. It must run
// inside the page's critical section.
func (s *PageService) snapshot(ctx context.Context, tx store.Store, page *db.Page, description, actorID string) (*db.PageVersion, error) {
	next, err := tx.Versions().NextNumber(ctx, page.ID)
	if err != nil {
		return nil, err
	}

	version := &db.PageVersion{
		ID:                uuid.NewString(),
		PageID:            page.ID,
		VersionNumber:     next,
		Name:              page.Name,
		HTML:              page.HTML,
		CSS:               page.CSS,
		JS:                page.JS,
		State:             page.State,
		ChangeDescription: &description,
		CreatedAt:         s.now(),
	}
	if actorID != "" {
		createdBy := actorID
		version.CreatedBy = &createdBy
	}

	if err := tx.Versions().Create(ctx, version); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			s.log.Error().Str("page_id", page.ID).Int("version", next).Msg("version number collision")
			return nil, fmt.Errorf("%w: page %s version %d", ErrVersionConflict, page.ID, next)
		}
		return nil, err
	}
	return version, nil
}

// ListVersions returns a page's versions, highest number first. Versions outlive
// their page, so an unknown page id yields an empty list.
func (s *PageService) ListVersions(ctx context.Context, pageID string) ([]db.PageVersion, error) {
	return s.store.Versions().ListByPage(ctx, pageID)
}

// GetVersion returns a single version by id.
func (s *PageService) GetVersion(ctx context.Context, id string) (*db.PageVersion, error) {
	version, err := s.store.Versions().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrVersionNotFound
		}
		return nil, err
	}
	return version, nil
}

// Rollback restores a version's content onto its page. The content being replaced is
// versioned first and the page returns to Draft so it is reviewed again.
func (s *PageService) Rollback(ctx context.Context, pageID, versionID string, actor Actor) (*db.Page, *db.PageVersion, error) {
	if err := actor.Authorize(rbac.ActionRollback); err != nil {
		return nil, nil, err
	}

	unlock := s.locks.Lock(pageID)
	defer unlock()

	var (
		page   *db.Page
		target *db.PageVersion
	)
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		version, err := tx.Versions().Get(ctx, versionID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrVersionNotFound
			}
			return err
		}
		if version.PageID != pageID {
			return fmt.Errorf("%w: version %s belongs to another page", ErrVersionNotFound, versionID)
		}

		current, err := tx.Pages().GetForUpdate(ctx, pageID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrPageNotFound
			}
			return err
		}

		description := fmt.Sprintf("Rollback to version %d", version.VersionNumber)
		if _, err := s.snapshot(ctx, tx, current, description, actor.ID); err != nil {
			return err
		}

		current.Name = version.Name
		current.HTML = version.HTML
		current.CSS = version.CSS
		current.JS = version.JS
		current.State = db.StateDraft
		current.RejectionReason = nil
		current.UpdatedAt = s.now()
		if err := tx.Pages().Save(ctx, current); err != nil {
			return err
		}

		page = current
		target = version
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.Info().
		Str("page_id", pageID).
		Str("version_id", versionID).
		Int("version", target.VersionNumber).
		Str("actor", actor.ID).
		Msg("page rolled back")

	s.invalidatePreview(ctx, pageID)
	return page, target, nil
}
