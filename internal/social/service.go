package social

import (
	"context"
	"fmt"

	"blog-service/internal/user"

	"go.uber.org/zap"
)

type Service interface {
	Follow(ctx context.Context, followerID uint64, username string) (*user.User, error)
	Unfollow(ctx context.Context, followerID uint64, username string) (*user.User, error)
}

type service struct {
	repo  Repository
	users user.Repository
	log   *zap.Logger
}

func NewService(r Repository, users user.Repository, log *zap.Logger) Service {
	return &service{repo: r, users: users, log: log}
}

func (s *service) Follow(ctx context.Context, followerID uint64, username string) (*user.User, error) {
	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("follow %q: %w", username, err)
	}
	created, err := s.repo.Follow(ctx, followerID, author.ID)
	if err != nil {
		return nil, err
	}
	if created {
		s.log.Info("follow", zap.Uint64("user_id", followerID), zap.Uint64("author_id", author.ID))
	}
	return author, nil
}

func (s *service) Unfollow(ctx context.Context, followerID uint64, username string) (*user.User, error) {
	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("unfollow %q: %w", username, err)
	}
	if err := s.repo.Unfollow(ctx, followerID, author.ID); err != nil {
		return nil, err
	}
	s.log.Debug("unfollow", zap.Uint64("user_id", followerID), zap.Uint64("author_id", author.ID))
	return author, nil
}
