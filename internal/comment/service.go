package comment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"blog-service/internal/shared/validate"
)

// PostLookup is satisfied by the post repository.
type PostLookup interface {
	Exists(ctx context.Context, id uint64) (bool, error)
}

var ErrPostNotFound = errors.New("post not found")

type Service interface {
	Add(ctx context.Context, postID, authorID uint64, in Form) (*Comment, error)
	ListByPost(ctx context.Context, postID uint64) ([]Comment, error)
}

type service struct {
	repo  Repository
	posts PostLookup
	now   func() time.Time
}

func NewService(r Repository, posts PostLookup) Service {
	return &service{repo: r, posts: posts, now: time.Now}
}

// ValidateForm trims the text and reports field errors, nil when valid.
func ValidateForm(in *Form) validate.FieldErrors {
	in.Text = strings.TrimSpace(in.Text)
	return validate.Fields(in)
}

func (s *service) Add(ctx context.Context, postID, authorID uint64, in Form) (*Comment, error) {
	ok, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("comment on %d: %w", postID, ErrPostNotFound)
	}
	if fe := ValidateForm(&in); !fe.Empty() {
		return nil, ErrEmpty
	}
	return s.repo.Create(ctx, &Comment{
		PostID:   postID,
		AuthorID: authorID,
		Text:     in.Text,
		Created:  s.now().UTC(),
	})
}

func (s *service) ListByPost(ctx context.Context, postID uint64) ([]Comment, error) {
	return s.repo.ListByPost(ctx, postID)
}
