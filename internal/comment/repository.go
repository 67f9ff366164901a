package comment

import (
	"context"

	"blog-service/internal/shared/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(ctx context.Context, c *Comment) (*Comment, error)
	// ListByPost returns comments newest first.
	ListByPost(ctx context.Context, postID uint64) ([]Comment, error)
	CountByPost(ctx context.Context, postID uint64) (int64, error)
}

type repo struct{ store *db.Store }

func NewRepository(s *db.Store) Repository { return &repo{store: s} }

func (r *repo) Create(ctx context.Context, c *Comment) (*Comment, error) {
	if err := r.store.Base.WithContext(ctx).Omit(clause.Associations).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (r *repo) ListByPost(ctx context.Context, postID uint64) ([]Comment, error) {
	var out []Comment
	err := r.store.Base.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created DESC").Order("id DESC").
		Find(&out).Error
	return out, err
}

func (r *repo) CountByPost(ctx context.Context, postID uint64) (int64, error) {
	var n int64
	err := r.store.Base.WithContext(ctx).Model(&Comment{}).Where("post_id = ?", postID).Count(&n).Error
	return n, err
}

// DeleteByPost removes every comment of a post inside tx.
func DeleteByPost(tx *gorm.DB, postID uint64) error {
	return tx.Where("post_id = ?", postID).Delete(&Comment{}).Error
}
