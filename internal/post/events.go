package post

import (
	"context"
	"strconv"
	"time"
)

const (
	EventCreated = "post.created"
	EventUpdated = "post.updated"
	EventDeleted = "post.deleted"
)

// Event is published on the posts topic after every successful mutation.
type Event struct {
	Type     string    `json:"type"`
	PostID   uint64    `json:"post_id"`
	AuthorID uint64    `json:"author_id"`
	GroupID  *uint64   `json:"group_id,omitempty"`
	At       time.Time `json:"at"`
}

func (e Event) Key() []byte { return []byte(strconv.FormatUint(e.PostID, 10)) }

type Publisher interface {
	WriteJSON(ctx context.Context, v any) error
}

// ImageStore keeps uploaded images under opaque object keys.
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Remove(ctx context.Context, key string) error
}
