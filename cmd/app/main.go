package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"blog-service/configs"
	"blog-service/internal/cache"
	"blog-service/internal/comment"
	"blog-service/internal/feed"
	"blog-service/internal/group"
	"blog-service/internal/kafka"
	"blog-service/internal/migrate"
	"blog-service/internal/post"
	"blog-service/internal/ratelimit"
	"blog-service/internal/shared/db"
	"blog-service/internal/shared/httpx"
	"blog-service/internal/shared/logx"
	"blog-service/internal/shared/redisx"
	"blog-service/internal/social"
	"blog-service/internal/storage/s3"
	"blog-service/internal/user"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/zap"
	"gorm.io/plugin/opentelemetry/tracing"
)

func initOTEL(ctx context.Context, log *zap.Logger) func(context.Context) error {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		log.Info("tracing disabled: OTEL_EXPORTER_OTLP_ENDPOINT not set")
		return func(context.Context) error { return nil }
	}
	exp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
	if err != nil {
		log.Fatal("otel exporter", zap.Error(err))
	}
	name := os.Getenv("OTEL_SERVICE_NAME")
	if name == "" {
		name = "blog-service"
	}
	res, _ := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(name),
		attribute.String("deployment.environment", os.Getenv("ENV")),
	))
	ratio := 1.0
	if s := os.Getenv("OTEL_TRACES_SAMPLER_ARG"); s != "" {
		if f, e := strconv.ParseFloat(s, 64); e == nil && f >= 0 && f <= 1 {
			ratio = f
		}
	}
	tp := trace.NewTracerProvider(
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(ratio))),
		trace.WithBatcher(exp),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}

// publisherFunc adapts a function to post.Publisher.
type publisherFunc func(ctx context.Context, v any) error

func (f publisherFunc) WriteJSON(ctx context.Context, v any) error { return f(ctx, v) }

// openCache returns the page cache and, when Redis is reachable, the client
// backing it. A nil client means no shared state is available.
func openCache(ctx context.Context, cfg *configs.Config, log *zap.Logger) (cache.Store, *redis.Client) {
	if cfg.CacheBackend == "memory" {
		return cache.NewMemory(), nil
	}
	rdb := redisx.Open(cfg.RedisAddr)
	if err := redisx.Ping(ctx, rdb); err != nil {
		log.Warn("redis unavailable, using in-process page cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = rdb.Close()
		return cache.NewMemory(), nil
	}
	return cache.NewRedis(rdb), rdb
}

// invalidationGroup picks the consumer group for cache invalidation. A shared
// Redis cache needs each event once per deployment; in-process caches need it
// once per instance.
func invalidationGroup(base string, sharedCache bool, instance string) string {
	if sharedCache {
		return base
	}
	return base + "-" + instance
}

func main() {
	cfg := configs.LoadConfig()
	log := logx.New(cfg.Env)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown := initOTEL(ctx, log)
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(c)
	}()

	httpx.SetErrorLogger(func(r *http.Request, err error) {
		log.Error("request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	})

	store, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.Fatal("db", zap.Error(err))
	}
	defer store.Close()
	if cfg.DBDriver != "sqlite" {
		if err := store.UseReplicas(cfg.DBReplicas); err != nil {
			log.Fatal("db replicas", zap.Error(err))
		}
	}
	if err := store.Base.Use(tracing.NewPlugin()); err != nil {
		log.Warn("gorm tracing plugin", zap.Error(err))
	}

	if cfg.AutoMigrate {
		if err := migrate.AutoMigrateAll(store); err != nil {
			log.Fatal("migrate", zap.Error(err))
		}
	}

	pageCache, rdb := openCache(ctx, cfg, log)
	var limiter *ratelimit.Limiter
	if rdb != nil {
		defer rdb.Close()
		if cfg.RateLimitEnabled {
			limiter = ratelimit.New(rdb, log)
		}
	}

	var events post.Publisher
	switch {
	case cfg.KafkaBrokers != "":
		kWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.PostsTopic)
		defer kWriter.Close()
		events = kWriter
		if cfg.CacheInvalidateOnWrite {
			instance, _ := os.Hostname()
			if instance == "" {
				instance = uuid.NewString()
			}
			groupID := invalidationGroup(cfg.KafkaGroupID, rdb != nil, instance)
			go func() {
				err := kafka.StartConsumer(ctx, cfg.KafkaBrokers, cfg.PostsTopic, groupID,
					func(ctx context.Context, ev post.Event) error { return pageCache.Clear(ctx) }, log)
				if err != nil {
					log.Error("kafka consumer stopped", zap.Error(err))
				}
			}()
		}
	case cfg.CacheInvalidateOnWrite:
		events = publisherFunc(func(ctx context.Context, _ any) error { return pageCache.Clear(ctx) })
	}

	var images post.ImageStore
	var media *s3.Storage
	if cfg.S3Endpoint != "" {
		media, err = s3.New(s3.Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
			Bucket:    cfg.S3Bucket,
		})
		if err != nil {
			log.Fatal("s3", zap.Error(err))
		}
		if err := media.EnsureBucket(ctx); err != nil {
			log.Fatal("s3 bucket", zap.Error(err))
		}
		images = media
	}

	userRepo := user.NewRepository(store)
	groupRepo := group.NewRepository(store)
	postRepo := post.NewRepository(store)
	commentRepo := comment.NewRepository(store)
	socialRepo := social.NewRepository(store)

	assembler := feed.NewAssembler(postRepo, groupRepo, userRepo, socialRepo, commentRepo, cfg.PageSize)

	fh := feed.NewHandler(assembler)
	ph := post.NewHandler(post.NewService(postRepo, images, events, log), groupRepo)
	ch := comment.NewHandler(comment.NewService(commentRepo, postRepo))
	sh := social.NewHandler(social.NewService(socialRepo, userRepo, log))
	uh := user.NewHandler(user.NewService(userRepo))

	homeCache := cache.Page(pageCache, cfg.CacheKeyPrefix, cache.KeyScheme(cfg.CacheKeyScheme), cfg.CacheTTL, log)
	limits := routeLimits{
		auth:     limiter.Middleware("auth", cfg.AuthRateLimit, time.Minute, ratelimit.ByClientIP),
		comments: limiter.Middleware("comment", cfg.CommentRateLimit, time.Minute, ratelimit.ByUser),
	}
	mux := newMux(handlers{feed: fh, post: ph, comment: ch, social: sh, user: uh}, homeCache, limits, media)

	srv := &http.Server{
		Addr:              cfg.AppPort,
		Handler:           otelhttp.NewHandler(mux, "http.server"),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(c)
	}()

	log.Info("blog-service listening", zap.String("addr", cfg.AppPort))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("http server", zap.Error(err))
	}
}
