package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env     string
	AppPort string

	DBDriver string
	DBHost   string
	DBPort   string
	DBUser   string
	DBPass   string
	DBName   string
	// DBPath is the SQLite file used when DBDriver is "sqlite".
	DBPath      string
	AutoMigrate bool
	DBReplicas  []string

	RedisAddr string

	CacheBackend           string
	CacheTTL               time.Duration
	CacheKeyPrefix         string
	CacheKeyScheme         string
	CacheInvalidateOnWrite bool

	KafkaBrokers string
	PostsTopic   string
	KafkaGroupID string

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool

	PageSize int

	RateLimitEnabled bool
	AuthRateLimit    int64
	CommentRateLimit int64
}

func LoadConfig() *Config {
	return &Config{
		Env:     getEnv("ENV", "local"),
		AppPort: getEnv("APP_PORT", ":8080"),

		DBDriver:    getEnv("DB_DRIVER", "postgres"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "blog"),
		DBPass:      getEnv("DB_PASSWORD", "blogpass"),
		DBName:      getEnv("DB_NAME", "blog_db"),
		DBPath:      getEnv("DB_PATH", "blog.db"),
		AutoMigrate: getBool("AUTO_MIGRATE", false),
		DBReplicas:  getList("DB_REPLICA_DSNS"),

		RedisAddr: getEnv("REDIS_HOST", "localhost") + ":" + getEnv("REDIS_PORT", "6379"),

		CacheBackend:           strings.ToLower(getEnv("CACHE_BACKEND", "redis")),
		CacheTTL:               getDuration("CACHE_TTL", 20*time.Second),
		CacheKeyPrefix:         getEnv("CACHE_KEY_PREFIX", "index_page"),
		CacheKeyScheme:         strings.ToLower(getEnv("CACHE_KEY_SCHEME", "static")),
		CacheInvalidateOnWrite: getBool("CACHE_INVALIDATE_ON_WRITE", false),

		KafkaBrokers: getEnv("KAFKA_BOOTSTRAP_SERVERS", ""),
		PostsTopic:   getEnv("POSTS_TOPIC", "posts.events"),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "blog-cache-invalidator"),

		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", "minio"),
		S3SecretKey: getEnv("S3_SECRET_KEY", "minio123"),
		S3Bucket:    getEnv("S3_BUCKET", "blog-media"),
		S3UseSSL:    getBool("S3_USE_SSL", false),

		PageSize: getInt("PAGE_SIZE", 10),

		RateLimitEnabled: getBool("RATE_LIMIT_ENABLED", true),
		AuthRateLimit:    int64(getInt("RATE_LIMIT_AUTH_PER_MIN", 20)),
		CommentRateLimit: int64(getInt("RATE_LIMIT_COMMENTS_PER_MIN", 30)),
	}
}

func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.DBPath
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPass, c.DBName,
	)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getDuration accepts Go durations ("20s") and bare seconds ("20").
func getDuration(key string, fallback time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}
