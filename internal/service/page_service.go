package service

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pageflow/internal/cache"
	"github.com/pageflow/internal/db"
	"github.com/pageflow/internal/rbac"
	"github.com/pageflow/internal/store"
	"github.com/rs/zerolog"
)

const maxPageNameLength = 200

// Deps carries the collaborators shared by the services.
type Deps struct {
	Store  store.Store
	Locks  *PageLocks
	Cache  cache.Cache
	Logger *zerolog.Logger
	Now    func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Locks == nil {
		d.Locks = NewPageLocks()
	}
	if d.Logger == nil {
		nop := zerolog.Nop()
		d.Logger = &nop
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return d
}

// PageInput is the content accepted when creating a page.
type PageInput struct {
	Name      string
	HTML      string
	CSS       string
	JS        string
	PageType  string
	Thumbnail *string
	// State is accepted for wire compatibility only; new pages always start as Draft.
	State db.PageState
}

// PageUpdate is a partial update. Nil fields are left untouched.
type PageUpdate struct {
	Name      *string
	HTML      *string
	CSS       *string
	JS        *string
	PageType  *string
	Thumbnail *string
}

// touchesContent reports whether the update supplies any versioned field.
func (u PageUpdate) touchesContent() bool {
	return u.Name != nil || u.HTML != nil || u.CSS != nil || u.JS != nil
}

// PageService owns page content and the approval lifecycle.
type PageService struct {
	store store.Store
	locks *PageLocks
	cache cache.Cache
	log   zerolog.Logger
	now   func() time.Time
	text  *bluemonday.Policy
}

// NewPageService returns a new PageService instance.
func NewPageService(deps Deps) *PageService {
	deps = deps.withDefaults()
	return &PageService{
		store: deps.Store,
		locks: deps.Locks,
		cache: deps.Cache,
		log:   deps.Logger.With().Str("component", "pages").Logger(),
		now:   deps.Now,
		text:  bluemonday.StrictPolicy(),
	}
}

// CreatePage stores a new Draft page.
func (s *PageService) CreatePage(ctx context.Context, input PageInput, actor Actor) (*db.Page, error) {
	if err := actor.Authorize(rbac.ActionCreate); err != nil {
		return nil, err
	}

	name, err := s.cleanName(input.Name)
	if err != nil {
		return nil, err
	}
	if input.State != "" && input.State != db.StateDraft {
		s.log.Debug().Str("requested_state", string(input.State)).Msg("ignoring initial state on create")
	}

	now := s.now()
	page := &db.Page{
		ID:        uuid.NewString(),
		Name:      name,
		State:     db.StateDraft,
		HTML:      input.HTML,
		CSS:       input.CSS,
		JS:        input.JS,
		PageType:  normalizePageType(input.PageType),
		Thumbnail: normalizeOptional(input.Thumbnail),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Pages().Create(ctx, page); err != nil {
		return nil, err
	}

	s.log.Info().Str("page_id", page.ID).Str("actor", actor.ID).Msg("page created")
	return page, nil
}

// UpdatePage applies a partial update. When name, html, css or js is supplied, the prior
// content is recorded as a new version before the page is overwritten.
func (s *PageService) UpdatePage(ctx context.Context, id string, update PageUpdate, actor Actor) (*db.Page, error) {
	if err := actor.Authorize(rbac.ActionEdit); err != nil {
		return nil, err
	}
	if update.Name != nil {
		name, err := s.cleanName(*update.Name)
		if err != nil {
			return nil, err
		}
		update.Name = &name
	}

	var snapshot *db.PageVersion
	page, err := s.withPage(ctx, id, func(tx store.Store, page *db.Page) error {
		if update.touchesContent() {
			version, err := s.snapshot(ctx, tx, page, "Page updated", actor.ID)
			if err != nil {
				return err
			}
			snapshot = version
		}

		if update.Name != nil {
			page.Name = *update.Name
		}
		if update.HTML != nil {
			page.HTML = *update.HTML
		}
		if update.CSS != nil {
			page.CSS = *update.CSS
		}
		if update.JS != nil {
			page.JS = *update.JS
		}
		if update.PageType != nil {
			page.PageType = normalizePageType(*update.PageType)
		}
		if update.Thumbnail != nil {
			page.Thumbnail = normalizeOptional(update.Thumbnail)
		}
		page.UpdatedAt = s.now()
		return tx.Pages().Save(ctx, page)
	})
	if err != nil {
		return nil, err
	}

	event := s.log.Info().Str("page_id", id).Str("actor", actor.ID)
	if snapshot != nil {
		event = event.Int("version", snapshot.VersionNumber)
	}
	event.Msg("page updated")

	s.invalidatePreview(ctx, id)
	return page, nil
}

// DeletePage removes the page, every link touching it and the components placed on
// it. Versions and catalog components sourced from the page are retained.
func (s *PageService) DeletePage(ctx context.Context, id string, actor Actor) (bool, error) {
	if err := actor.Authorize(rbac.ActionDelete); err != nil {
		return false, err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	var (
		deleted  bool
		affected []string
	)
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		links, err := tx.Links().ListTouching(ctx, id)
		if err != nil {
			return err
		}
		for _, link := range links {
			if link.FromPageID != id {
				affected = append(affected, link.FromPageID)
			}
		}
		if _, err := tx.Links().DeleteTouching(ctx, id); err != nil {
			return err
		}
		if _, err := tx.Placements().DeleteByPage(ctx, id); err != nil {
			return err
		}
		deleted, err = tx.Pages().Delete(ctx, id)
		return err
	})
	if err != nil {
		return false, err
	}

	if deleted {
		s.log.Info().Str("page_id", id).Str("actor", actor.ID).Int("links_removed", len(affected)).Msg("page deleted")
	}
	s.invalidatePreview(ctx, append(affected, id)...)
	return deleted, nil
}

// GetPage returns the page with the given id.
func (s *PageService) GetPage(ctx context.Context, id string) (*db.Page, error) {
	page, err := s.store.Pages().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return page, nil
}

// ListPages returns every page, newest first.
func (s *PageService) ListPages(ctx context.Context) ([]db.Page, error) {
	return s.store.Pages().List(ctx)
}

// ListPagesByState returns the pages currently in state.
func (s *PageService) ListPagesByState(ctx context.Context, state db.PageState) ([]db.Page, error) {
	if !state.Valid() {
		return nil, invalid("state", "unknown page state")
	}
	return s.store.Pages().ListByState(ctx, state)
}

// GetPendingApprovalPages returns the approval queue, oldest submission first.
func (s *PageService) GetPendingApprovalPages(ctx context.Context) ([]db.Page, error) {
	return s.store.Pages().ListPendingApproval(ctx)
}

// Stats counts pages per state.
type Stats struct {
	Total   int64                  `json:"total"`
	ByState map[db.PageState]int64 `json:"byState"`
}

// Stats returns page counts grouped by state.
func (s *PageService) Stats(ctx context.Context) (*Stats, error) {
	counts, err := s.store.Pages().CountByState(ctx)
	if err != nil {
		return nil, err
	}
	stats := &Stats{ByState: counts}
	for _, count := range counts {
		stats.Total += count
	}
	return stats, nil
}

// withPage serializes fn with every other writer of the page and runs it in a
// transaction against a freshly read copy.
func (s *PageService) withPage(ctx context.Context, id string, fn func(tx store.Store, page *db.Page) error) (*db.Page, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	var result *db.Page
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		page, err := tx.Pages().GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrPageNotFound
			}
			return err
		}
		if err := fn(tx, page); err != nil {
			return err
		}
		result = page
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PageService) invalidatePreview(ctx context.Context, ids ...string) {
	if s.cache == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range uniqueSorted(ids) {
		keys = append(keys, previewCacheKey(id))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Warn().Err(err).Strs("keys", keys).Msg("preview cache invalidation failed")
	}
}

func (s *PageService) cleanName(raw string) (string, error) {
	name := s.plainText(raw)
	if name == "" {
		return "", invalid("name", "name is required")
	}
	if len([]rune(name)) > maxPageNameLength {
		return "", invalid("name", "name is too long")
	}
	return name, nil
}

// plainText strips markup and leaves unescaped text.
func (s *PageService) plainText(raw string) string {
	return strings.TrimSpace(html.UnescapeString(s.text.Sanitize(raw)))
}

func normalizePageType(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return db.DefaultPageType
	}
	return trimmed
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func previewCacheKey(pageID string) string {
	return "preview:" + pageID
}
