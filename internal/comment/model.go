package comment

import (
	"errors"
	"time"

	"blog-service/internal/user"
)

type Comment struct {
	ID       uint64    `gorm:"primaryKey" json:"id"`
	PostID   uint64    `gorm:"index;not null" json:"post_id"`
	AuthorID uint64    `gorm:"index;not null" json:"-"`
	Author   user.User `gorm:"foreignKey:AuthorID" json:"author"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	Created  time.Time `gorm:"index;not null" json:"created"`
}

type Form struct {
	Text string `json:"text" validate:"notblank"`
}

var ErrEmpty = errors.New("comment text is empty")
