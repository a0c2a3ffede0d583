package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"stockintel/internal/app/router"
	"stockintel/internal/config"
	quoteshandler "stockintel/internal/feature/quotes/transport/handler"
	quotesusecase "stockintel/internal/feature/quotes/usecase"
	"stockintel/internal/infrastructure/cache"
	infradb "stockintel/internal/infrastructure/db"
	infraredis "stockintel/internal/infrastructure/redis"
	"stockintel/internal/infrastructure/sqlite"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] no .env file, using environment as-is")
	}

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal("[FATAL] load config: ", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("[FATAL] config validation: ", err)
	}

	// db (no migration here: the store stays uninitialized until the
	// ingest command runs)
	db, err := infradb.Open(cfg.Database.Driver, cfg.Database.DSN, false)
	if err != nil {
		log.Fatal("[FATAL] open database: ", err)
	}

	// Redis
	var rdb *redisv9.Client
	if cfg.Redis.Addr == "" {
		log.Println("[INFO] Redis not configured. Running without cache.")
	} else if tmp, err := infraredis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Repository, wrapped in the Redis cache. The TTL expires just after
	// the nightly ingest (18:30 UTC) refreshes the store.
	seriesRepo := sqlite.NewMetricRepository(db)
	ttl := cache.TimeUntilNextHour(19)
	cachedSeriesRepo := cache.NewCachingSeriesRepository(rdb, ttl, seriesRepo, "series")

	// Usecase
	quotesUC := quotesusecase.NewQueryUsecase(cachedSeriesRepo, quotesusecase.QueryConfig{
		PositionalPairing: os.Getenv("COMPARE_POSITIONAL") == "true",
	})

	// Handler
	quotesH := quoteshandler.NewQuotesHandler(quotesUC)

	r := router.NewRouter(quotesH)
	if err := r.Run(cfg.Server.Addr); err != nil {
		log.Fatal(err)
	}
}
