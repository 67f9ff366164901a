// Package dbtest opens throwaway in-memory SQLite stores with the full schema.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"blog-service/internal/migrate"
	"blog-service/internal/shared/db"
)

func New(t testing.TB) *db.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	store, err := db.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := migrate.AutoMigrateAll(store); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}
