package social_test

import (
	"context"
	"testing"

	"blog-service/internal/shared/db/dbtest"
	"blog-service/internal/social"
	"blog-service/internal/user"
)

func mkUser(t *testing.T, repo user.Repository, name string) *user.User {
	t.Helper()
	u, err := repo.Create(context.Background(), &user.User{Username: name})
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	return u
}

func TestFollowIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := dbtest.New(t)
	users := user.NewRepository(store)
	repo := social.NewRepository(store)
	leo, tolstoy := mkUser(t, users, "leo"), mkUser(t, users, "tolstoy")

	created, err := repo.Follow(ctx, leo.ID, tolstoy.ID)
	if err != nil || !created {
		t.Fatalf("first follow: created=%v err=%v", created, err)
	}
	created, err = repo.Follow(ctx, leo.ID, tolstoy.ID)
	if err != nil || created {
		t.Fatalf("second follow: created=%v err=%v", created, err)
	}
	if n, _ := repo.FollowingCount(ctx, leo.ID); n != 1 {
		t.Fatalf("edges = %d, want 1", n)
	}
	if n, _ := repo.FollowerCount(ctx, tolstoy.ID); n != 1 {
		t.Fatalf("followers = %d, want 1", n)
	}
	if ok, _ := repo.IsFollowing(ctx, leo.ID, tolstoy.ID); !ok {
		t.Fatal("leo should follow tolstoy")
	}
	if ok, _ := repo.IsFollowing(ctx, tolstoy.ID, leo.ID); ok {
		t.Fatal("edges are directed")
	}
}

func TestSelfFollowIsIgnored(t *testing.T) {
	ctx := context.Background()
	store := dbtest.New(t)
	repo := social.NewRepository(store)
	leo := mkUser(t, user.NewRepository(store), "leo")

	created, err := repo.Follow(ctx, leo.ID, leo.ID)
	if err != nil || created {
		t.Fatalf("self follow: created=%v err=%v", created, err)
	}
	if ok, _ := repo.IsFollowing(ctx, leo.ID, leo.ID); ok {
		t.Fatal("self edge stored")
	}
}

func TestUnfollow(t *testing.T) {
	ctx := context.Background()
	store := dbtest.New(t)
	users := user.NewRepository(store)
	repo := social.NewRepository(store)
	leo, tolstoy := mkUser(t, users, "leo"), mkUser(t, users, "tolstoy")

	if err := repo.Unfollow(ctx, leo.ID, tolstoy.ID); err != nil {
		t.Fatalf("unfollow without edge: %v", err)
	}
	_, _ = repo.Follow(ctx, leo.ID, tolstoy.ID)
	if err := repo.Unfollow(ctx, leo.ID, tolstoy.ID); err != nil {
		t.Fatal(err)
	}
	if ok, _ := repo.IsFollowing(ctx, leo.ID, tolstoy.ID); ok {
		t.Fatal("edge survived unfollow")
	}
}

func TestAuthorsFollowedBy(t *testing.T) {
	ctx := context.Background()
	store := dbtest.New(t)
	users := user.NewRepository(store)
	repo := social.NewRepository(store)
	leo := mkUser(t, users, "leo")
	a, b, c := mkUser(t, users, "anna"), mkUser(t, users, "boris"), mkUser(t, users, "clara")

	_, _ = repo.Follow(ctx, leo.ID, b.ID)
	_, _ = repo.Follow(ctx, leo.ID, a.ID)
	_, _ = repo.Follow(ctx, c.ID, leo.ID)

	got, err := repo.AuthorsFollowedBy(ctx, leo.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Username != "anna" || got[1].Username != "boris" {
		t.Fatalf("followed = %+v", got)
	}
}
