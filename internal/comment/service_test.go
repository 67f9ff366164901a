package comment_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"blog-service/internal/comment"
	"blog-service/internal/post"
	"blog-service/internal/shared/db/dbtest"
	"blog-service/internal/shared/httpx"
	"blog-service/internal/user"
)

func setup(t *testing.T) (comment.Service, comment.Repository, *user.User, *post.Post) {
	t.Helper()
	ctx := context.Background()
	store := dbtest.New(t)
	u, err := user.NewRepository(store).Create(ctx, &user.User{Username: "leo"})
	if err != nil {
		t.Fatal(err)
	}
	posts := post.NewRepository(store)
	p, err := posts.Create(ctx, &post.Post{AuthorID: u.ID, Text: "hello", PubDate: time.Now().UTC()})
	if err != nil {
		t.Fatal(err)
	}
	repo := comment.NewRepository(store)
	return comment.NewService(repo, posts), repo, u, p
}

func TestAddAndListNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, _, u, p := setup(t)

	for _, txt := range []string{"first", "second"} {
		if _, err := svc.Add(ctx, p.ID, u.ID, comment.Form{Text: txt}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := svc.ListByPost(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Text != "second" || got[0].Author.Username != "leo" {
		t.Fatalf("comments = %+v", got)
	}
}

func TestAddRejectsEmptyAndUnknownPost(t *testing.T) {
	ctx := context.Background()
	svc, repo, u, p := setup(t)

	if _, err := svc.Add(ctx, p.ID, u.ID, comment.Form{Text: "  "}); !errors.Is(err, comment.ErrEmpty) {
		t.Fatalf("empty comment: %v", err)
	}
	if n, _ := repo.CountByPost(ctx, p.ID); n != 0 {
		t.Fatal("empty comment stored")
	}
	if _, err := svc.Add(ctx, p.ID+100, u.ID, comment.Form{Text: "hi"}); !errors.Is(err, comment.ErrPostNotFound) {
		t.Fatalf("unknown post: %v", err)
	}
}

func TestHandlerRedirectsToPost(t *testing.T) {
	svc, repo, u, p := setup(t)
	h := comment.NewHandler(svc)
	mux := http.NewServeMux()
	mux.Handle("POST /posts/{post_id}/comment/{$}", httpx.LoginRequired(httpx.Wrap(h.Add)))

	path := "/posts/" + itoa(p.ID) + "/comment/"
	send := func(text string, auth bool) *httptest.ResponseRecorder {
		form := url.Values{"text": {text}}
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if auth {
			req = req.WithContext(httpx.WithIdentity(req.Context(), httpx.Identity{ID: u.ID, Username: u.Username}))
		}
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	if rec := send("nice", false); rec.Code != http.StatusFound || !strings.HasPrefix(rec.Header().Get("Location"), "/auth/login/?next=") {
		t.Fatalf("anonymous: %d %q", rec.Code, rec.Header().Get("Location"))
	}
	for _, txt := range []string{"nice", ""} {
		rec := send(txt, true)
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/posts/"+itoa(p.ID)+"/" {
			t.Fatalf("comment %q: %d %q", txt, rec.Code, rec.Header().Get("Location"))
		}
	}
	if n, _ := repo.CountByPost(context.Background(), p.ID); n != 1 {
		t.Fatalf("comments = %d, want 1", n)
	}
}

func itoa(n uint64) string { return strconv.FormatUint(n, 10) }
