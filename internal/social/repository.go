package social

import (
	"context"

	"blog-service/internal/shared/db"
	"blog-service/internal/user"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// Follow creates the edge if absent. A self-follow is ignored.
	// The bool reports whether a new edge was stored.
	Follow(ctx context.Context, userID, authorID uint64) (bool, error)
	Unfollow(ctx context.Context, userID, authorID uint64) error
	IsFollowing(ctx context.Context, userID, authorID uint64) (bool, error)
	AuthorsFollowedBy(ctx context.Context, userID uint64) ([]user.User, error)
	FollowerCount(ctx context.Context, authorID uint64) (int64, error)
	FollowingCount(ctx context.Context, userID uint64) (int64, error)
}

type repo struct{ store *db.Store }

func NewRepository(s *db.Store) Repository { return &repo{store: s} }

func (r *repo) Follow(ctx context.Context, userID, authorID uint64) (bool, error) {
	if userID == 0 || authorID == 0 || userID == authorID {
		return false, nil
	}
	res := r.store.Base.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&Follow{UserID: userID, AuthorID: authorID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) Unfollow(ctx context.Context, userID, authorID uint64) error {
	return r.store.Base.WithContext(ctx).
		Delete(&Follow{}, "user_id = ? AND author_id = ?", userID, authorID).Error
}

func (r *repo) IsFollowing(ctx context.Context, userID, authorID uint64) (bool, error) {
	var n int64
	err := r.store.Base.WithContext(ctx).Model(&Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&n).Error
	return n > 0, err
}

func (r *repo) AuthorsFollowedBy(ctx context.Context, userID uint64) ([]user.User, error) {
	var out []user.User
	err := r.store.Base.WithContext(ctx).
		Where("id IN (?)", FollowedAuthorIDs(r.store.Base.WithContext(ctx), userID)).
		Order("username").
		Find(&out).Error
	return out, err
}

func (r *repo) FollowerCount(ctx context.Context, authorID uint64) (int64, error) {
	var n int64
	err := r.store.Base.WithContext(ctx).Model(&Follow{}).Where("author_id = ?", authorID).Count(&n).Error
	return n, err
}

func (r *repo) FollowingCount(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	err := r.store.Base.WithContext(ctx).Model(&Follow{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

// FollowedAuthorIDs is a subquery selecting the ids userID follows, for use
// in "author_id IN (?)" clauses.
func FollowedAuthorIDs(tx *gorm.DB, userID uint64) *gorm.DB {
	return tx.Model(&Follow{}).Select("author_id").Where("user_id = ?", userID)
}
