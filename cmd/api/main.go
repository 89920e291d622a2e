package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "spotrank/internal/adapters/http_server"
	"spotrank/internal/adapters/observability"
	redisad "spotrank/internal/adapters/redis"
	"spotrank/internal/app"
	"spotrank/internal/shared"
	mongostore "spotrank/internal/storage/mongo"
	mysqlrepo "spotrank/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel, "spotrank-api")

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// reviews + users
	mc, err := mongostore.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect failed")
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()
	mdb := mc.Database(cfg.MongoDB)
	if err := mongostore.EnsureIndexes(ctx, mdb); err != nil {
		log.Fatal().Err(err).Msg("mongo indexes failed")
	}
	log.Info().Str("db", cfg.MongoDB).Msg("mongo connection ok")

	// place metadata
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	reviews := mongostore.NewReviewStore(mdb)
	users := mongostore.NewUserStore(mdb)
	places := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Ping(ctx); err != nil {
		// reads fall through to the stores while redis is down
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
	}

	h := &server.Handlers{
		Reviews: app.NewReviewService(reviews, users, cache),
		Ratings: app.NewRatingService(reviews, cache),
		Spots:   app.NewTopSpotsService(reviews, users, places, cache, cfg.CacheTTL).WithDefaultLimit(cfg.TopSpotsLimit),
	}

	// http
	srv := server.New(log.Logger, 0)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(h)

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
