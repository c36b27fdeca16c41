package store

import (
	"context"
	"errors"
	"strings"

	"github.com/pageflow/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store on top of gorm.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps a gorm connection.
func NewGormStore(gdb *gorm.DB) *GormStore {
	return &GormStore{db: gdb}
}

func (s *GormStore) Pages() PageRepository       { return pageRepo{db: s.db} }
func (s *GormStore) Versions() VersionRepository { return versionRepo{db: s.db} }
func (s *GormStore) Links() LinkRepository       { return linkRepo{db: s.db} }
func (s *GormStore) Components() ComponentRepository {
	return componentRepo{db: s.db}
}
func (s *GormStore) Placements() PlacementRepository {
	return placementRepo{db: s.db}
}
func (s *GormStore) Users() UserRepository { return userRepo{db: s.db} }

// Transaction runs fn inside a database transaction.
func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case strings.Contains(err.Error(), "UNIQUE constraint failed"):
		// drivers opened without TranslateError
		return ErrDuplicate
	default:
		return err
	}
}

type pageRepo struct {
	db *gorm.DB
}

func (r pageRepo) Create(ctx context.Context, page *db.Page) error {
	return translate(r.db.WithContext(ctx).Create(page).Error)
}

func (r pageRepo) Get(ctx context.Context, id string) (*db.Page, error) {
	var page db.Page
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&page).Error; err != nil {
		return nil, translate(err)
	}
	return &page, nil
}

func (r pageRepo) GetForUpdate(ctx context.Context, id string) (*db.Page, error) {
	var page db.Page
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&page).Error; err != nil {
		return nil, translate(err)
	}
	return &page, nil
}

func (r pageRepo) Save(ctx context.Context, page *db.Page) error {
	return translate(r.db.WithContext(ctx).Save(page).Error)
}

func (r pageRepo) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&db.Page{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r pageRepo) List(ctx context.Context) ([]db.Page, error) {
	var pages []db.Page
	if err := r.db.WithContext(ctx).Order("created_at desc, id").Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

func (r pageRepo) ListByState(ctx context.Context, state db.PageState) ([]db.Page, error) {
	var pages []db.Page
	if err := r.db.WithContext(ctx).
		Where("state = ?", state).
		Order("created_at desc, id").
		Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

// ListPendingApproval orders oldest submission first; pages without a submission time
// (administrative corrections) queue ahead of everything else.
func (r pageRepo) ListPendingApproval(ctx context.Context) ([]db.Page, error) {
	var pages []db.Page
	if err := r.db.WithContext(ctx).
		Where("state = ?", db.StatePendingApproval).
		Order("CASE WHEN submitted_at IS NULL THEN 0 ELSE 1 END").
		Order("submitted_at asc").
		Order("created_at asc").
		Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

func (r pageRepo) CountByState(ctx context.Context) (map[db.PageState]int64, error) {
	var rows []struct {
		State db.PageState
		Total int64
	}
	if err := r.db.WithContext(ctx).
		Model(&db.Page{}).
		Select("state, count(*) as total").
		Group("state").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[db.PageState]int64, len(db.AllStates))
	for _, state := range db.AllStates {
		counts[state] = 0
	}
	for _, row := range rows {
		counts[row.State] = row.Total
	}
	return counts, nil
}

type versionRepo struct {
	db *gorm.DB
}

func (r versionRepo) NextNumber(ctx context.Context, pageID string) (int, error) {
	var current int
	row := r.db.WithContext(ctx).
		Model(&db.PageVersion{}).
		Where("page_id = ?", pageID).
		Select("COALESCE(MAX(version_number), 0)").
		Row()
	if err := row.Scan(&current); err != nil {
		return 0, err
	}
	return current + 1, nil
}

func (r versionRepo) Create(ctx context.Context, version *db.PageVersion) error {
	return translate(r.db.WithContext(ctx).Create(version).Error)
}

func (r versionRepo) Get(ctx context.Context, id string) (*db.PageVersion, error) {
	var version db.PageVersion
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&version).Error; err != nil {
		return nil, translate(err)
	}
	return &version, nil
}

func (r versionRepo) ListByPage(ctx context.Context, pageID string) ([]db.PageVersion, error) {
	var versions []db.PageVersion
	if err := r.db.WithContext(ctx).
		Where("page_id = ?", pageID).
		Order("version_number desc").
		Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

type linkRepo struct {
	db *gorm.DB
}

func (r linkRepo) Create(ctx context.Context, link *db.Link) error {
	return translate(r.db.WithContext(ctx).Create(link).Error)
}

func (r linkRepo) Get(ctx context.Context, id string) (*db.Link, error) {
	var link db.Link
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&link).Error; err != nil {
		return nil, translate(err)
	}
	return &link, nil
}

func (r linkRepo) List(ctx context.Context) ([]db.Link, error) {
	var links []db.Link
	if err := r.db.WithContext(ctx).Order("created_at asc, id").Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (r linkRepo) ListFrom(ctx context.Context, pageID string) ([]db.Link, error) {
	var links []db.Link
	if err := r.db.WithContext(ctx).
		Where("from_page_id = ?", pageID).
		Order("created_at asc, id").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (r linkRepo) ListTouching(ctx context.Context, pageID string) ([]db.Link, error) {
	var links []db.Link
	if err := r.db.WithContext(ctx).
		Where("from_page_id = ? OR to_page_id = ?", pageID, pageID).
		Order("created_at asc, id").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (r linkRepo) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&db.Link{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r linkRepo) DeleteTouching(ctx context.Context, pageID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("from_page_id = ? OR to_page_id = ?", pageID, pageID).
		Delete(&db.Link{})
	return result.RowsAffected, result.Error
}

type componentRepo struct {
	db *gorm.DB
}

func (r componentRepo) Create(ctx context.Context, component *db.Component) error {
	return translate(r.db.WithContext(ctx).Create(component).Error)
}

func (r componentRepo) Get(ctx context.Context, id string) (*db.Component, error) {
	var component db.Component
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&component).Error; err != nil {
		return nil, translate(err)
	}
	return &component, nil
}

func (r componentRepo) List(ctx context.Context) ([]db.Component, error) {
	var components []db.Component
	if err := r.db.WithContext(ctx).Order("created_at desc, id").Find(&components).Error; err != nil {
		return nil, err
	}
	return components, nil
}

func (r componentRepo) ListBySource(ctx context.Context, pageID string) ([]db.Component, error) {
	var components []db.Component
	if err := r.db.WithContext(ctx).
		Where("source_page_id = ?", pageID).
		Order("created_at desc, id").
		Find(&components).Error; err != nil {
		return nil, err
	}
	return components, nil
}

func (r componentRepo) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&db.Component{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

type placementRepo struct {
	db *gorm.DB
}

func (r placementRepo) Create(ctx context.Context, placement *db.PageComponent) error {
	return translate(r.db.WithContext(ctx).Create(placement).Error)
}

func (r placementRepo) Get(ctx context.Context, id string) (*db.PageComponent, error) {
	var placement db.PageComponent
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&placement).Error; err != nil {
		return nil, translate(err)
	}
	return &placement, nil
}

func (r placementRepo) ListByPage(ctx context.Context, pageID string) ([]db.PageComponent, error) {
	var placements []db.PageComponent
	if err := r.db.WithContext(ctx).
		Where("page_id = ?", pageID).
		Order("position asc, created_at asc, id").
		Find(&placements).Error; err != nil {
		return nil, err
	}
	return placements, nil
}

func (r placementRepo) CountByPage(ctx context.Context, pageID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&db.PageComponent{}).Where("page_id = ?", pageID).Count(&total).Error
	return total, err
}

func (r placementRepo) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&db.PageComponent{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r placementRepo) DeleteByPage(ctx context.Context, pageID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("page_id = ?", pageID).Delete(&db.PageComponent{})
	return result.RowsAffected, result.Error
}

func (r placementRepo) DeleteByComponent(ctx context.Context, componentID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("component_id = ?", componentID).Delete(&db.PageComponent{})
	return result.RowsAffected, result.Error
}

type userRepo struct {
	db *gorm.DB
}

func (r userRepo) Create(ctx context.Context, user *db.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r userRepo) Get(ctx context.Context, id string) (*db.User, error) {
	var user db.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r userRepo) GetByUsername(ctx context.Context, username string) (*db.User, error) {
	var user db.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}
