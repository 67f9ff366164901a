package main

import (
	"net/http"

	"blog-service/internal/comment"
	"blog-service/internal/feed"
	"blog-service/internal/post"
	"blog-service/internal/shared/httpx"
	"blog-service/internal/social"
	"blog-service/internal/storage/s3"
	"blog-service/internal/user"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type handlers struct {
	feed    *feed.Handler
	post    *post.Handler
	comment *comment.Handler
	social  *social.Handler
	user    *user.Handler
}

// routeLimits throttles abuse-prone endpoints. A zero value disables it.
type routeLimits struct {
	auth     func(http.Handler) http.Handler
	comments func(http.Handler) http.Handler
}

func passthrough(h http.Handler) http.Handler { return h }

// newMux builds the routing table. media may be nil when no object store
// is configured.
func newMux(h handlers, homeCache func(http.Handler) http.Handler, limits routeLimits, media *s3.Storage) http.Handler {
	if limits.auth == nil {
		limits.auth = passthrough
	}
	if limits.comments == nil {
		limits.comments = passthrough
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", httpx.NotFoundHandler())

	mux.Handle("GET /{$}", homeCache(httpx.Wrap(h.feed.Home)))
	mux.Handle("GET /group/{slug}/{$}", httpx.Wrap(h.feed.Group))
	mux.Handle("GET /profile/{username}/{$}", httpx.Wrap(h.feed.Profile))
	mux.Handle("GET /posts/{post_id}/{$}", httpx.Wrap(h.feed.PostDetail))

	mux.Handle("POST /auth/signup/{$}", limits.auth(httpx.Wrap(h.user.Signup)))
	mux.Handle("POST /auth/login/{$}", limits.auth(httpx.Wrap(h.user.Login)))

	if media != nil {
		mux.Handle("GET /media/{key...}", httpx.Wrap(media.Redirect))
	}

	protect := func(pattern string, fn httpx.HandlerFunc) {
		mux.Handle(pattern, httpx.LoginRequired(httpx.Wrap(fn)))
	}

	protect("GET /follow/{$}", h.feed.Following)
	protect("GET /create/{$}", h.post.CreateForm)
	protect("POST /create/{$}", h.post.Create)
	protect("GET /posts/{post_id}/edit/{$}", h.post.EditForm)
	protect("POST /posts/{post_id}/edit/{$}", h.post.Edit)
	protect("POST /posts/{post_id}/delete/{$}", h.post.Delete)
	mux.Handle("POST /posts/{post_id}/comment/{$}", httpx.LoginRequired(limits.comments(httpx.Wrap(h.comment.Add))))
	protect("/profile/{username}/follow/{$}", h.social.Follow)
	protect("/profile/{username}/unfollow/{$}", h.social.Unfollow)

	return httpx.Recover(httpx.Authenticate(mux))
}
