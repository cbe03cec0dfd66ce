package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv        string
	HTTPAddr      string
	MetricsAddr   string
	MySQLDSN      string
	RedisAddr     string
	RedisDB       int
	RedisPass     string
	S3Bucket      string
	AWSRegion     string
	ResizeWorkers int
	RateRPS       int
	CacheTTL      time.Duration
	SessionTTL    time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:        env("APP_ENV", "prod"),
		HTTPAddr:      env("HTTP_ADDR", ":8080"),
		MetricsAddr:   env("METRICS_ADDR", ":9100"),
		MySQLDSN:      env("MYSQL_DSN", "root:root@tcp(localhost:3306)/emoji_map?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:     env("REDIS_ADDR", "localhost:6379"),
		RedisDB:       atoi("REDIS_DB", 0),
		RedisPass:     env("REDIS_PASSWORD", ""),
		S3Bucket:      env("AWS_S3_BUCKET_NAME", ""),
		AWSRegion:     env("AWS_REGION", ""),
		ResizeWorkers: atoi("RESIZE_WORKERS", 4),
		RateRPS:       atoi("RATE_LIMIT_RPS", 10),
		CacheTTL:      time.Duration(atoi("CACHE_TTL_SECONDS", 60)) * time.Second,
		SessionTTL:    time.Duration(atoi("SESSION_CACHE_SECONDS", 300)) * time.Second,
	}
	if c.S3Bucket == "" {
		log.Warn().Msg("AWS_S3_BUCKET_NAME is empty; image uploads will fail")
	}
	return c
}

// Env returns the dev/prod folder prefix used for object keys.
func (c Config) Env() string {
	if c.AppEnv == "dev" || c.AppEnv == "development" {
		return "dev"
	}
	return "prod"
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
