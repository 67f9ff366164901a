package ratelimit

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"blog-service/internal/shared/httpx"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter counts requests per key in fixed Redis windows. A nil *Limiter
// lets everything through.
type Limiter struct {
	rdb *redis.Client
	log *zap.Logger
}

func New(rdb *redis.Client, log *zap.Logger) *Limiter { return &Limiter{rdb: rdb, log: log} }

func (l *Limiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	k := "rl:" + key
	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	ttl := pipe.TTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}
	// -1: the key has no expiry yet, so this call opened the window
	if ttl.Val() == -1 {
		if err := l.rdb.Expire(ctx, k, window).Err(); err != nil {
			return false, 0, err
		}
	}
	n := incr.Val()
	return n <= limit, n, nil
}

// Middleware rejects callers over limit with 429. Limiter errors are logged
// and the request is served.
func (l *Limiter) Middleware(name string, limit int64, window time.Duration, keyFn func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			ok, n, err := l.Allow(r.Context(), name+":"+key, limit, window)
			if err != nil {
				l.log.Warn("rate limiter", zap.String("limit", name), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				httpx.WriteError(w, http.StatusTooManyRequests,
					fmt.Errorf("rate limit exceeded (count=%d, limit=%d)", n, limit),
					"rate_limited")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ByClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func ByUser(r *http.Request) string {
	who, err := httpx.UserFromCtx(r)
	if err != nil {
		return ""
	}
	return strconv.FormatUint(who.ID, 10)
}
