package user

import (
	"context"
	"errors"

	"blog-service/internal/shared/db"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetByID(ctx context.Context, id uint64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}

type repo struct{ store *db.Store }

func NewRepository(s *db.Store) Repository { return &repo{store: s} }

func (r *repo) Create(ctx context.Context, u *User) (*User, error) {
	if err := r.store.Base.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return u, nil
}

func (r *repo) GetByID(ctx context.Context, id uint64) (*User, error) {
	var u User
	return r.first(r.store.Base.WithContext(ctx).Where("id = ?", id), &u)
}

func (r *repo) GetByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	return r.first(r.store.Base.WithContext(ctx).Where("username = ?", username), &u)
}

func (r *repo) first(q *gorm.DB, u *User) (*User, error) {
	if err := q.First(u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}
