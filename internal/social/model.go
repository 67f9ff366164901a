package social

import "time"

// Follow is a directed edge: UserID follows AuthorID.
type Follow struct {
	ID        uint64    `gorm:"primaryKey"`
	UserID    uint64    `gorm:"not null;uniqueIndex:idx_follow_pair"`
	AuthorID  uint64    `gorm:"not null;uniqueIndex:idx_follow_pair;index"`
	CreatedAt time.Time
}
