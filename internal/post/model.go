package post

import (
	"errors"
	"time"

	"blog-service/internal/group"
	"blog-service/internal/user"
)

type Post struct {
	ID       uint64       `gorm:"primaryKey" json:"id"`
	AuthorID uint64       `gorm:"index;not null" json:"-"`
	Author   user.User    `gorm:"foreignKey:AuthorID" json:"author"`
	GroupID  *uint64      `gorm:"index" json:"-"`
	Group    *group.Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Text     string       `gorm:"type:text;not null" json:"text"`
	Image    string       `gorm:"size:255" json:"image,omitempty"`
	PubDate  time.Time    `gorm:"index;not null" json:"pub_date"`

	// HTML is the sanitised rendering of Text, filled in by readers.
	HTML string `gorm:"-" json:"html,omitempty"`
}

// Form is the create/edit payload. Group is a group id.
type Form struct {
	Text  string  `json:"text" validate:"notblank"`
	Group *uint64 `json:"group,omitempty"`
}

// Image is an uploaded file attached to a form submission.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Query selects the base post set of a listing. Zero value means all posts.
type Query struct {
	GroupID    *uint64
	AuthorID   *uint64
	FollowedBy *uint64
}

var (
	ErrNotFound       = errors.New("post not found")
	ErrImagesDisabled = errors.New("image uploads are not configured")
)
