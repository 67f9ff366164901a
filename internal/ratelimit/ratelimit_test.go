package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func TestMiddlewareLimitsPerKey(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	l := New(rdb, zap.NewNop())
	h := l.Middleware("login", 2, time.Minute, ByClientIP)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	hit := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := hit("10.0.0.1:5000"); code != http.StatusNoContent {
			t.Fatalf("request %d: %d", i, code)
		}
	}
	if code := hit("10.0.0.1:5001"); code != http.StatusTooManyRequests {
		t.Fatalf("third request: %d", code)
	}
	if code := hit("10.0.0.2:5000"); code != http.StatusNoContent {
		t.Fatalf("other client: %d", code)
	}

	mr.FastForward(time.Minute + time.Second)
	if code := hit("10.0.0.1:5000"); code != http.StatusNoContent {
		t.Fatalf("after window: %d", code)
	}
}

func TestNilLimiterPassesThrough(t *testing.T) {
	var l *Limiter
	called := false
	h := l.Middleware("x", 0, time.Minute, ByClientIP)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Fatal("nil limiter must not block")
	}
}

func TestAllowRestoresMissingExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	l := New(rdb, zap.NewNop())

	// a counter left without a TTL would otherwise block the key forever
	if err := mr.Set("rl:comment:7", "5"); err != nil {
		t.Fatal(err)
	}
	ok, n, err := l.Allow(context.Background(), "comment:7", 5, time.Minute)
	if err != nil || ok || n != 6 {
		t.Fatalf("allow = %v %d %v", ok, n, err)
	}
	if ttl := mr.TTL("rl:comment:7"); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("ttl = %s", ttl)
	}

	ok, _, _ = l.Allow(context.Background(), "fresh", 5, time.Minute)
	if !ok || mr.TTL("rl:fresh") != time.Minute {
		t.Fatalf("fresh key ttl = %s", mr.TTL("rl:fresh"))
	}
	// later hits keep the window's original expiry
	mr.FastForward(30 * time.Second)
	_, _, _ = l.Allow(context.Background(), "fresh", 5, time.Minute)
	if ttl := mr.TTL("rl:fresh"); ttl != 30*time.Second {
		t.Fatalf("window moved: ttl = %s", ttl)
	}
}
