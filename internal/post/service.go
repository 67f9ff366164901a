package post

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"blog-service/internal/user"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var postsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "blog_posts_created_total",
	Help: "Posts created since start.",
})

type Service interface {
	Create(ctx context.Context, author user.User, in Form, img *Image) (*Post, error)
	Update(ctx context.Context, p *Post, in Form, img *Image) (*Post, error)
	Delete(ctx context.Context, p *Post) error
	Get(ctx context.Context, id uint64) (*Post, error)
}

type service struct {
	repo   Repository
	images ImageStore
	events Publisher
	log    *zap.Logger
	now    func() time.Time
}

// NewService wires the post use cases. images and events may be nil.
func NewService(r Repository, images ImageStore, events Publisher, log *zap.Logger) Service {
	return &service{repo: r, images: images, events: events, log: log, now: time.Now}
}

func (s *service) Create(ctx context.Context, author user.User, in Form, img *Image) (*Post, error) {
	p := &Post{
		AuthorID: author.ID,
		GroupID:  in.Group,
		Text:     in.Text,
		PubDate:  s.now().UTC(),
	}
	if img != nil {
		key, err := s.storeImage(ctx, img)
		if err != nil {
			return nil, err
		}
		p.Image = key
	}
	if _, err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	postsCreated.Inc()
	s.log.Info("post created", zap.Uint64("post_id", p.ID), zap.Uint64("author_id", p.AuthorID))
	s.publish(ctx, EventCreated, p)
	p.Author = author
	return p, nil
}

func (s *service) Update(ctx context.Context, p *Post, in Form, img *Image) (*Post, error) {
	next := *p
	next.Text = in.Text
	next.GroupID = in.Group
	if img != nil {
		key, err := s.storeImage(ctx, img)
		if err != nil {
			return nil, err
		}
		next.Image = key
	}
	if err := s.repo.Update(ctx, &next); err != nil {
		return nil, fmt.Errorf("update post %d: %w", p.ID, err)
	}
	if img != nil && p.Image != "" {
		s.removeImage(ctx, p.Image)
	}
	if next.Group != nil && (next.GroupID == nil || *next.GroupID != next.Group.ID) {
		next.Group = nil
	}
	s.publish(ctx, EventUpdated, &next)
	return &next, nil
}

func (s *service) Delete(ctx context.Context, p *Post) error {
	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return fmt.Errorf("delete post %d: %w", p.ID, err)
	}
	if p.Image != "" {
		s.removeImage(ctx, p.Image)
	}
	s.log.Info("post deleted", zap.Uint64("post_id", p.ID), zap.Uint64("author_id", p.AuthorID))
	s.publish(ctx, EventDeleted, p)
	return nil
}

func (s *service) Get(ctx context.Context, id uint64) (*Post, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) storeImage(ctx context.Context, img *Image) (string, error) {
	if s.images == nil {
		return "", ErrImagesDisabled
	}
	key := "posts/" + uuid.NewString() + strings.ToLower(path.Ext(img.Filename))
	if err := s.images.Put(ctx, key, img.ContentType, img.Data); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return key, nil
}

func (s *service) removeImage(ctx context.Context, key string) {
	if s.images == nil {
		return
	}
	if err := s.images.Remove(ctx, key); err != nil {
		s.log.Warn("remove image", zap.String("key", key), zap.Error(err))
	}
}

// publish is best effort: the post is already committed.
func (s *service) publish(ctx context.Context, typ string, p *Post) {
	if s.events == nil {
		return
	}
	ev := Event{Type: typ, PostID: p.ID, AuthorID: p.AuthorID, GroupID: p.GroupID, At: s.now().UTC()}
	if err := s.events.WriteJSON(ctx, ev); err != nil {
		s.log.Warn("publish post event", zap.String("type", typ), zap.Uint64("post_id", p.ID), zap.Error(err))
	}
}
