package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"blog-service/internal/cache"
	"blog-service/internal/comment"
	"blog-service/internal/feed"
	"blog-service/internal/group"
	"blog-service/internal/post"
	"blog-service/internal/ratelimit"
	"blog-service/internal/shared/db/dbtest"
	"blog-service/internal/shared/httpx"
	"blog-service/internal/social"
	"blog-service/internal/user"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type app struct {
	h     http.Handler
	cache cache.Store
	posts post.Repository
	users user.Repository
}

func newApp(t *testing.T) *app { return newAppWithLimits(t, routeLimits{}) }

func newAppWithLimits(t *testing.T, limits routeLimits) *app {
	store := dbtest.New(t)
	log := zap.NewNop()
	users := user.NewRepository(store)
	groups := group.NewRepository(store)
	posts := post.NewRepository(store)
	comments := comment.NewRepository(store)
	follows := social.NewRepository(store)
	pageCache := cache.NewMemory()

	h := handlers{
		feed:    feed.NewHandler(feed.NewAssembler(posts, groups, users, follows, comments, 10)),
		post:    post.NewHandler(post.NewService(posts, nil, nil, log), groups),
		comment: comment.NewHandler(comment.NewService(comments, posts)),
		social:  social.NewHandler(social.NewService(follows, users, log)),
		user:    user.NewHandler(user.NewServiceWithCost(users, bcrypt.MinCost)),
	}
	homeCache := cache.Page(pageCache, "index_page", cache.StaticKey, 20*time.Second, log)
	return &app{h: newMux(h, homeCache, limits, nil), cache: pageCache, posts: posts, users: users}
}

func (a *app) send(method, path, body, session string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.AddCookie(&http.Cookie{Name: httpx.SessionCookie, Value: session})
	}
	rec := httptest.NewRecorder()
	a.h.ServeHTTP(rec, req)
	return rec
}

func (a *app) signup(t *testing.T, name string) string {
	t.Helper()
	rec := a.send(http.MethodPost, "/auth/signup/", `{"username":"`+name+`","password":"secret123"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup %s: %d %s", name, rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == httpx.SessionCookie {
			return c.Value
		}
	}
	t.Fatal("no session cookie")
	return ""
}

func TestHomeIsCachedUntilCleared(t *testing.T) {
	a := newApp(t)
	session := a.signup(t, "leo")

	first := a.send(http.MethodGet, "/", "", "")
	if first.Code != http.StatusOK {
		t.Fatalf("home: %d", first.Code)
	}

	if rec := a.send(http.MethodPost, "/create/", `{"text":"fresh post"}`, session); rec.Code != http.StatusFound {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}

	second := a.send(http.MethodGet, "/", "", "")
	if second.Body.String() != first.Body.String() {
		t.Fatal("home changed inside the cache window")
	}

	if err := a.cache.Clear(context.Background()); err != nil {
		t.Fatal(err)
	}
	third := a.send(http.MethodGet, "/", "", "")
	if third.Body.String() == first.Body.String() || !strings.Contains(third.Body.String(), "fresh post") {
		t.Fatalf("home not refreshed after clear: %s", third.Body.String())
	}
}

func TestFollowFlow(t *testing.T) {
	a := newApp(t)
	author := a.signup(t, "author")
	reader := a.signup(t, "reader")

	a.send(http.MethodPost, "/create/", `{"text":"hello followers"}`, author)

	if rec := a.send(http.MethodGet, "/profile/author/follow/", "", reader); rec.Code != http.StatusFound || rec.Header().Get("Location") != "/profile/author/" {
		t.Fatalf("follow: %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec := a.send(http.MethodGet, "/follow/", "", reader)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "hello followers") {
		t.Fatalf("follow feed: %d %s", rec.Code, rec.Body.String())
	}

	var profile struct {
		Following bool `json:"following"`
	}
	_ = json.Unmarshal(a.send(http.MethodGet, "/profile/author/", "", reader).Body.Bytes(), &profile)
	if !profile.Following {
		t.Fatal("profile should report following")
	}

	a.send(http.MethodPost, "/profile/author/unfollow/", "", reader)
	if rec := a.send(http.MethodGet, "/follow/", "", reader); strings.Contains(rec.Body.String(), "hello followers") {
		t.Fatal("unfollowed author still in follow feed")
	}
}

func TestAnonymousProtectedRoutes(t *testing.T) {
	a := newApp(t)
	for _, c := range []struct{ method, path string }{
		{http.MethodGet, "/create/"},
		{http.MethodGet, "/follow/"},
		{http.MethodPost, "/posts/1/comment/"},
		{http.MethodGet, "/profile/leo/follow/"},
	} {
		rec := a.send(c.method, c.path, "", "")
		loc, _ := url.Parse(rec.Header().Get("Location"))
		if rec.Code != http.StatusFound || loc.Path != "/auth/login/" || loc.Query().Get("next") != c.path {
			t.Fatalf("%s %s: %d %q", c.method, c.path, rec.Code, rec.Header().Get("Location"))
		}
	}
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	a := newApp(t)
	rec := a.send(http.MethodGet, "/nope/", "", "")
	var body httpx.APIError
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || rec.Code != http.StatusNotFound || body.Status != http.StatusNotFound {
		t.Fatalf("404: %d %s", rec.Code, rec.Body.String())
	}
}

func TestLoginWithNextRedirects(t *testing.T) {
	a := newApp(t)
	a.signup(t, "leo")

	rec := a.send(http.MethodPost, "/auth/login/?next=/follow/", `{"username":"leo","password":"secret123"}`, "")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/follow/" {
		t.Fatalf("login: %d %q", rec.Code, rec.Header().Get("Location"))
	}
	rec = a.send(http.MethodPost, "/auth/login/", `{"username":"leo","password":"wrong"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: %d", rec.Code)
	}
}

func TestLoginIsThrottled(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	limiter := ratelimit.New(rdb, zap.NewNop())

	a := newAppWithLimits(t, routeLimits{auth: limiter.Middleware("auth", 3, time.Minute, ratelimit.ByClientIP)})
	a.signup(t, "leo")

	for i := 0; i < 2; i++ {
		if rec := a.send(http.MethodPost, "/auth/login/", `{"username":"leo","password":"wrong"}`, ""); rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: %d", i, rec.Code)
		}
	}
	if rec := a.send(http.MethodPost, "/auth/login/", `{"username":"leo","password":"secret123"}`, ""); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("over limit: %d", rec.Code)
	}
	if rec := a.send(http.MethodGet, "/", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("reads are not throttled: %d", rec.Code)
	}
}
