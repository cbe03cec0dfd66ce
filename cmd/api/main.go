package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "emoji_map/internal/adapters/http_server"
	"emoji_map/internal/adapters/images"
	"emoji_map/internal/adapters/observability"
	redisad "emoji_map/internal/adapters/redis"
	s3store "emoji_map/internal/adapters/s3"
	"emoji_map/internal/app"
	"emoji_map/internal/geo"
	"emoji_map/internal/shared"
	mysqlrepo "emoji_map/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := s3store.New(ctx, cfg.S3Bucket, cfg.AWSRegion)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("object storage init failed")
	}

	q := app.NewQueryService(repo, cache, cfg.CacheTTL)
	cmd := app.NewReviewService(repo, repo, repo, cache)
	img := app.NewImageService(store, images.NewResizer(), cfg.Env(), cfg.ResizeWorkers)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))

	auth := server.NewAuthenticator(repo, cache, cfg.SessionTTL)
	srv.MountHandlers(server.NewHandlers(q, cmd, img, geo.NewIndex()), auth, server.RateLimit(cfg.RateRPS))

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
