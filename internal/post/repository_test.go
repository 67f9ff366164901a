package post_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"blog-service/internal/comment"
	"blog-service/internal/group"
	"blog-service/internal/post"
	"blog-service/internal/shared/db"
	"blog-service/internal/shared/db/dbtest"
	"blog-service/internal/social"
	"blog-service/internal/user"
)

type fixture struct {
	store    *db.Store
	users    user.Repository
	groups   group.Repository
	posts    post.Repository
	follows  social.Repository
	comments comment.Repository
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	store := dbtest.New(t)
	return &fixture{
		store:    store,
		users:    user.NewRepository(store),
		groups:   group.NewRepository(store),
		posts:    post.NewRepository(store),
		follows:  social.NewRepository(store),
		comments: comment.NewRepository(store),
		clock:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) user(t *testing.T, name string) *user.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), &user.User{Username: name})
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func (f *fixture) post(t *testing.T, author *user.User, g *group.Group, text string) *post.Post {
	t.Helper()
	f.clock = f.clock.Add(time.Minute)
	p := &post.Post{AuthorID: author.ID, Text: text, PubDate: f.clock}
	if g != nil {
		p.GroupID = &g.ID
	}
	if _, err := f.posts.Create(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	return p
}

func texts(ps []post.Post) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Text
	}
	return out
}

func TestListsAreNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	leo := f.user(t, "leo")
	cats, err := f.groups.Ensure(ctx, group.Group{Slug: "cats", Title: "Cats"})
	if err != nil {
		t.Fatal(err)
	}
	f.post(t, leo, nil, "one")
	f.post(t, leo, cats, "two")
	f.post(t, leo, nil, "three")

	all, err := f.posts.ListAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := texts(all); len(got) != 3 || got[0] != "three" || got[2] != "one" {
		t.Fatalf("all = %v", got)
	}
	if all[0].Author.Username != "leo" {
		t.Fatalf("author not loaded: %+v", all[0].Author)
	}

	inGroup, _ := f.posts.ListByGroup(ctx, cats.ID)
	if got := texts(inGroup); len(got) != 1 || got[0] != "two" || inGroup[0].Group == nil || inGroup[0].Group.Slug != "cats" {
		t.Fatalf("group listing = %+v", inGroup)
	}
}

func TestSameTimestampFallsBackToInsertionOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	leo := f.user(t, "leo")
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for _, txt := range []string{"a", "b", "c"} {
		if _, err := f.posts.Create(ctx, &post.Post{AuthorID: leo.ID, Text: txt, PubDate: at}); err != nil {
			t.Fatal(err)
		}
	}
	got, _ := f.posts.ListByAuthor(ctx, leo.ID)
	if tx := texts(got); tx[0] != "c" || tx[2] != "a" {
		t.Fatalf("order = %v", tx)
	}
}

func TestListByFollowed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reader, a, b, stranger := f.user(t, "reader"), f.user(t, "anna"), f.user(t, "boris"), f.user(t, "stranger")
	f.post(t, a, nil, "anna-1")
	f.post(t, stranger, nil, "stranger-1")
	f.post(t, b, nil, "boris-1")
	f.post(t, reader, nil, "own")
	f.post(t, a, nil, "anna-2")

	_, _ = f.follows.Follow(ctx, reader.ID, a.ID)
	_, _ = f.follows.Follow(ctx, reader.ID, b.ID)

	got, err := f.posts.ListByFollowed(ctx, reader.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"anna-2", "boris-1", "anna-1"}
	if tx := texts(got); len(tx) != 3 || tx[0] != want[0] || tx[1] != want[1] || tx[2] != want[2] {
		t.Fatalf("followed = %v, want %v", tx, want)
	}

	none, _ := f.posts.ListByFollowed(ctx, stranger.ID)
	if len(none) != 0 {
		t.Fatalf("stranger follows nobody, got %v", texts(none))
	}
}

func TestWindowedListing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	leo := f.user(t, "leo")
	for i := 0; i < 15; i++ {
		f.post(t, leo, nil, "p")
	}
	n, err := f.posts.CountByAuthor(ctx, leo.ID)
	if err != nil || n != 15 {
		t.Fatalf("count = %d, %v", n, err)
	}
	page, err := f.posts.List(ctx, post.Query{AuthorID: &leo.ID}, 10, 10)
	if err != nil || len(page) != 5 {
		t.Fatalf("second window = %d, %v", len(page), err)
	}
}

func TestUpdateAndDeleteCascade(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	leo := f.user(t, "leo")
	p := f.post(t, leo, nil, "draft")

	p.Text = "final"
	if err := f.posts.Update(ctx, p); err != nil {
		t.Fatal(err)
	}
	got, _ := f.posts.GetByID(ctx, p.ID)
	if got.Text != "final" {
		t.Fatalf("text = %q", got.Text)
	}

	_, _ = f.comments.Create(ctx, &comment.Comment{PostID: p.ID, AuthorID: leo.ID, Text: "hi", Created: time.Now()})
	if err := f.posts.Delete(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.posts.GetByID(ctx, p.ID); !errors.Is(err, post.ErrNotFound) {
		t.Fatalf("deleted post still found: %v", err)
	}
	if n, _ := f.comments.CountByPost(ctx, p.ID); n != 0 {
		t.Fatalf("comments left behind: %d", n)
	}
	if err := f.posts.Delete(ctx, p.ID); !errors.Is(err, post.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}
