package cache

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"blog-service/internal/paginate"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var lookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "blog_feed_cache_total",
	Help: "Cached page lookups by result.",
}, []string{"result"})

type cachedResponse struct {
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Page serves the wrapped handler from store while the key is WARM. Only
// 200 responses are stored; store failures fall back to the live handler.
func Page(store Store, prefix string, key KeyFunc, ttl time.Duration, log *zap.Logger) func(http.Handler) http.Handler {
	if key == nil {
		key = StaticKey
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(prefix, paginate.ParseNumber(r.URL.Query().Get("page")))

			raw, ok, err := store.Get(r.Context(), k)
			if err != nil {
				lookups.WithLabelValues("error").Inc()
				log.Warn("cache get", zap.String("key", k), zap.Error(err))
			}
			if ok {
				var cr cachedResponse
				if err := json.Unmarshal(raw, &cr); err == nil {
					lookups.WithLabelValues("hit").Inc()
					log.Debug("cache hit", zap.String("key", k))
					w.Header().Set("Content-Type", cr.ContentType)
					w.WriteHeader(http.StatusOK)
					_, _ = w.Write(cr.Body)
					return
				}
			}
			lookups.WithLabelValues("miss").Inc()

			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			if rec.status != http.StatusOK {
				return
			}
			b, err := json.Marshal(cachedResponse{ContentType: rec.Header().Get("Content-Type"), Body: rec.body.Bytes()})
			if err != nil {
				return
			}
			if err := store.Set(r.Context(), k, b, ttl); err != nil {
				log.Warn("cache set", zap.String("key", k), zap.Error(err))
			}
		})
	}
}

type recorder struct {
	http.ResponseWriter
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func (r *recorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(p []byte) (int, error) {
	r.wroteHeader = true
	r.body.Write(p)
	return r.ResponseWriter.Write(p)
}
