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

// LinkInput describes a navigation link to create.
type LinkInput struct {
	FromPageID    string
	FromElementID *string
	TriggerText   *string
	ToPageID      string
	LinkType      string
}

// LinkService manages navigation links between pages.
type LinkService struct {
	pages *PageService
	store store.Store
	locks *PageLocks
	log   zerolog.Logger
}

// NewLinkService shares the page service's store and lock table.
func NewLinkService(pages *PageService) *LinkService {
	return &LinkService{
		pages: pages,
		store: pages.store,
		locks: pages.locks,
		log:   pages.log.With().Str("component", "links").Logger(),
	}
}

// CreateLink connects two existing pages. Both pages are held for the duration so
// neither can be deleted while the link is written.
func (s *LinkService) CreateLink(ctx context.Context, input LinkInput, actor Actor) (*db.Link, error) {
	if err := actor.Authorize(rbac.ActionManageLink); err != nil {
		return nil, err
	}

	from := strings.TrimSpace(input.FromPageID)
	to := strings.TrimSpace(input.ToPageID)
	if from == "" {
		return nil, invalid("fromPageId", "source page is required")
	}
	if to == "" {
		return nil, invalid("toPageId", "target page is required")
	}
	linkType, err := normalizeLinkType(input.LinkType)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(from, to)
	defer unlock()

	link := &db.Link{
		ID:            uuid.NewString(),
		FromPageID:    from,
		FromElementID: normalizeOptional(input.FromElementID),
		TriggerText:   normalizeOptional(input.TriggerText),
		ToPageID:      to,
		LinkType:      linkType,
		CreatedAt:     s.pages.now(),
	}
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		for _, id := range []string{from, to} {
			if _, err := tx.Pages().Get(ctx, id); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return ErrPageNotFound
				}
				return err
			}
		}
		return tx.Links().Create(ctx, link)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("link_id", link.ID).Str("from", from).Str("to", to).Msg("link created")
	s.pages.invalidatePreview(ctx, from)
	return link, nil
}

// DeleteLink removes a link by id. The source page is held so a concurrent preview
// render cannot cache the link after it is gone.
func (s *LinkService) DeleteLink(ctx context.Context, id string, actor Actor) (bool, error) {
	if err := actor.Authorize(rbac.ActionManageLink); err != nil {
		return false, err
	}

	link, err := s.store.Links().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	unlock := s.locks.Lock(link.FromPageID)
	defer unlock()

	var deleted bool
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		deleted, err = tx.Links().Delete(ctx, id)
		return err
	})
	if err != nil {
		return false, err
	}
	if deleted {
		s.log.Info().Str("link_id", id).Str("from", link.FromPageID).Msg("link deleted")
		s.pages.invalidatePreview(ctx, link.FromPageID)
	}
	return deleted, nil
}

// GetLink returns a link by id.
func (s *LinkService) GetLink(ctx context.Context, id string) (*db.Link, error) {
	link, err := s.store.Links().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return link, nil
}

// ListLinks returns every link.
func (s *LinkService) ListLinks(ctx context.Context) ([]db.Link, error) {
	return s.store.Links().List(ctx)
}

// GetLinksByPage returns links where the page is either the source or the target.
func (s *LinkService) GetLinksByPage(ctx context.Context, pageID string) ([]db.Link, error) {
	return s.store.Links().ListTouching(ctx, pageID)
}

// OutgoingLinks returns the links whose source is the page.
func (s *LinkService) OutgoingLinks(ctx context.Context, pageID string) ([]db.Link, error) {
	return s.store.Links().ListFrom(ctx, pageID)
}

func normalizeLinkType(raw string) (string, error) {
	linkType := strings.ToLower(strings.TrimSpace(raw))
	switch linkType {
	case "":
		return db.LinkTypeButton, nil
	case db.LinkTypeButton, db.LinkTypeLink, db.LinkTypeImage, db.LinkTypeCustom:
		return linkType, nil
	default:
		return "", invalid("linkType", "unknown link type")
	}
}
