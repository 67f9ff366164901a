package post

import (
	"context"
	"errors"

	"blog-service/internal/comment"
	"blog-service/internal/shared/db"
	"blog-service/internal/social"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(ctx context.Context, p *Post) (*Post, error)
	Update(ctx context.Context, p *Post) error
	Delete(ctx context.Context, id uint64) error
	GetByID(ctx context.Context, id uint64) (*Post, error)
	Exists(ctx context.Context, id uint64) (bool, error)

	ListAll(ctx context.Context) ([]Post, error)
	ListByGroup(ctx context.Context, groupID uint64) ([]Post, error)
	ListByAuthor(ctx context.Context, authorID uint64) ([]Post, error)
	ListByFollowed(ctx context.Context, userID uint64) ([]Post, error)

	// Count and List are the windowed forms of the listings above.
	Count(ctx context.Context, q Query) (int64, error)
	List(ctx context.Context, q Query, limit, offset int) ([]Post, error)
	CountByAuthor(ctx context.Context, authorID uint64) (int64, error)
}

type repo struct{ store *db.Store }

func NewRepository(s *db.Store) Repository { return &repo{store: s} }

func (r *repo) Create(ctx context.Context, p *Post) (*Post, error) {
	if err := r.store.Base.WithContext(ctx).Omit(clause.Associations).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repo) Update(ctx context.Context, p *Post) error {
	var groupID any
	if p.GroupID != nil {
		groupID = *p.GroupID
	}
	res := r.store.Base.WithContext(ctx).Model(&Post{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{"text": p.Text, "group_id": groupID, "image": p.Image})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, id uint64) error {
	return r.store.Base.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := comment.DeleteByPost(tx, id); err != nil {
			return err
		}
		res := tx.Delete(&Post{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *repo) GetByID(ctx context.Context, id uint64) (*Post, error) {
	var p Post
	err := r.store.Base.WithContext(ctx).
		Preload("Author").Preload("Group").
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repo) Exists(ctx context.Context, id uint64) (bool, error) {
	var n int64
	err := r.store.Base.WithContext(ctx).Model(&Post{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *repo) ListAll(ctx context.Context) ([]Post, error) {
	return r.List(ctx, Query{}, -1, 0)
}

func (r *repo) ListByGroup(ctx context.Context, groupID uint64) ([]Post, error) {
	return r.List(ctx, Query{GroupID: &groupID}, -1, 0)
}

func (r *repo) ListByAuthor(ctx context.Context, authorID uint64) ([]Post, error) {
	return r.List(ctx, Query{AuthorID: &authorID}, -1, 0)
}

func (r *repo) ListByFollowed(ctx context.Context, userID uint64) ([]Post, error) {
	return r.List(ctx, Query{FollowedBy: &userID}, -1, 0)
}

func (r *repo) Count(ctx context.Context, q Query) (int64, error) {
	var n int64
	err := r.scoped(ctx, q).Count(&n).Error
	return n, err
}

// List returns posts newest first; limit < 0 means no limit.
func (r *repo) List(ctx context.Context, q Query, limit, offset int) ([]Post, error) {
	out := []Post{}
	tx := r.scoped(ctx, q).
		Preload("Author").Preload("Group").
		Order("pub_date DESC").Order("id DESC")
	if limit >= 0 {
		tx = tx.Limit(limit).Offset(offset)
	}
	err := tx.Find(&out).Error
	return out, err
}

func (r *repo) CountByAuthor(ctx context.Context, authorID uint64) (int64, error) {
	return r.Count(ctx, Query{AuthorID: &authorID})
}

func (r *repo) scoped(ctx context.Context, q Query) *gorm.DB {
	tx := r.store.Base.WithContext(ctx).Model(&Post{})
	if q.GroupID != nil {
		tx = tx.Where("group_id = ?", *q.GroupID)
	}
	if q.AuthorID != nil {
		tx = tx.Where("author_id = ?", *q.AuthorID)
	}
	if q.FollowedBy != nil {
		tx = tx.Where("author_id IN (?)", social.FollowedAuthorIDs(r.store.Base.WithContext(ctx), *q.FollowedBy))
	}
	return tx
}
