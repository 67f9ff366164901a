package feed

import (
	"blog-service/internal/comment"
	"blog-service/internal/group"
	"blog-service/internal/paginate"
	"blog-service/internal/post"
	"blog-service/internal/user"
)

type Kind string

const (
	KindAll      Kind = "all"
	KindGroup    Kind = "group"
	KindAuthor   Kind = "author"
	KindFollowed Kind = "followed"
)

const titleRunes = 30

// Feed is one rendered page of a listing plus its context.
type Feed struct {
	Kind      Kind                     `json:"kind"`
	Page      paginate.Page[post.Post] `json:"page_obj"`
	Group     *group.Group             `json:"group,omitempty"`
	Author    *user.User               `json:"author,omitempty"`
	PostCount *int64                   `json:"post_count,omitempty"`
	Following *bool                    `json:"following,omitempty"`
	// Followers and FollowingCount are set on author feeds only.
	Followers      *int64 `json:"followers,omitempty"`
	FollowingCount *int64 `json:"following_count,omitempty"`
}

type Detail struct {
	Post      post.Post         `json:"post"`
	Title     string            `json:"title"`
	PostCount int64             `json:"post_count"`
	Comments  []comment.Comment `json:"comments"`
	CanEdit   bool              `json:"can_edit"`
}
