package migrate

import (
	"blog-service/internal/comment"
	"blog-service/internal/group"
	"blog-service/internal/post"
	"blog-service/internal/shared/db"
	"blog-service/internal/social"
	"blog-service/internal/user"
)

// AutoMigrateAll creates or updates every table. Order matters for foreign keys.
func AutoMigrateAll(store *db.Store) error {
	return store.Base.AutoMigrate(
		&user.User{},
		&group.Group{},
		&post.Post{},
		&comment.Comment{},
		&social.Follow{},
	)
}
