// Package cache memoises rendered responses for a fixed window.
//
// A key is COLD until the first Set and WARM until its ttl elapses or Clear
// runs. Writes elsewhere in the system do not invalidate anything on their
// own; callers that want fresher pages call Clear.
package cache

import (
	"context"
	"strconv"
	"time"
)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Clear(ctx context.Context) error
}

// KeyFunc derives the cache key of a request from the configured prefix.
type KeyFunc func(prefix string, page int) string

// StaticKey keeps one slot per prefix whatever the page or viewer.
func StaticKey(prefix string, _ int) string { return prefix }

// PageKey keeps one slot per page number.
func PageKey(prefix string, page int) string { return prefix + ":page=" + strconv.Itoa(page) }

func KeyScheme(name string) KeyFunc {
	if name == "page" {
		return PageKey
	}
	return StaticKey
}
