package user

import (
	"errors"
	"time"
)

type User struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	PassHash  string    `gorm:"size:100" json:"-"`
	CreatedAt time.Time `json:"-"`
}

type SignupReq struct {
	Username string `json:"username" validate:"required,alphanum,max=150"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

var (
	ErrNotFound       = errors.New("user not found")
	ErrUsernameTaken  = errors.New("username already taken")
	ErrBadCredentials = errors.New("wrong credentials")
)
