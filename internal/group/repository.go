package group

import (
	"context"
	"errors"

	"blog-service/internal/shared/db"

	"gorm.io/gorm"
)

type Repository interface {
	// Ensure creates the group or returns the existing one with the same slug.
	Ensure(ctx context.Context, g Group) (*Group, error)
	GetBySlug(ctx context.Context, slug string) (*Group, error)
	GetByID(ctx context.Context, id uint64) (*Group, error)
	List(ctx context.Context) ([]Group, error)
}

type repo struct{ store *db.Store }

func NewRepository(s *db.Store) Repository { return &repo{store: s} }

func (r *repo) Ensure(ctx context.Context, g Group) (*Group, error) {
	out := Group{}
	err := r.store.Base.WithContext(ctx).
		Where(Group{Slug: g.Slug}).
		Attrs(Group{Title: g.Title, Description: g.Description}).
		FirstOrCreate(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *repo) GetBySlug(ctx context.Context, slug string) (*Group, error) {
	var g Group
	if err := r.store.Base.WithContext(ctx).Where("slug = ?", slug).First(&g).Error; err != nil {
		return nil, notFound(err)
	}
	return &g, nil
}

func (r *repo) GetByID(ctx context.Context, id uint64) (*Group, error) {
	var g Group
	if err := r.store.Base.WithContext(ctx).Where("id = ?", id).First(&g).Error; err != nil {
		return nil, notFound(err)
	}
	return &g, nil
}

func (r *repo) List(ctx context.Context) ([]Group, error) {
	var out []Group
	err := r.store.Base.WithContext(ctx).Order("title").Find(&out).Error
	return out, err
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
