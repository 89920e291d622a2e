package main

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"spotrank/internal/adapters/observability"
	"spotrank/internal/adapters/places"
	redisad "spotrank/internal/adapters/redis"
	"spotrank/internal/app"
	"spotrank/internal/shared"
	mongostore "spotrank/internal/storage/mongo"
	mysqlrepo "spotrank/internal/storage/mysql"
)

// The ingestor refreshes place metadata for every place that has at least one review.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel, "spotrank-ingestor")

	log.Info().
		Str("base", cfg.PlacesBase).
		Int("workers", cfg.Workers).
		Int("rps", cfg.PlacesRPS).
		Msg("ingestor starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	mc, err := mongostore.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect failed")
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()

	ids, err := mongostore.NewReviewStore(mc.Database(cfg.MongoDB)).DistinctPlaceIDs(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("list reviewed places failed")
	}
	log.Info().Int("places", len(ids)).Msg("reviewed places loaded")

	client, err := places.New(cfg.PlacesBase, cfg.PlacesKey, cfg.PlacesRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize places client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	ing := app.NewPlaceIngestionService(client, mysqlrepo.New(db), cache)

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var failed atomic.Int64

	for _, id := range ids {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(placeID string) {
			defer wg.Done()
			defer sem.Release(1)

			if err := ing.IngestPlace(ctx, placeID); err != nil {
				failed.Add(1)
				log.Warn().Str("place_id", placeID).Str("err_type", observability.LabelErr(err)).Err(err).Msg("ingest failed")
				return
			}
			log.Info().Str("place_id", placeID).Msg("ingest ok")
		}(id)
	}

	wg.Wait()
	log.Info().Int("places", len(ids)).Int64("failed", failed.Load()).Msg("ingestion completed")
}
