package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"stockintel/internal/config"
	"stockintel/internal/feature/marketdata/adapters/synthetic"
	"stockintel/internal/feature/marketdata/adapters/yahoo"
	marketusecase "stockintel/internal/feature/marketdata/usecase"
	infradb "stockintel/internal/infrastructure/db"
	"stockintel/internal/infrastructure/sqlite"
	"stockintel/internal/shared/ratelimiter"
)

func main() {
	daemon := flag.Bool("daemon", false, "keep running and ingest on the configured cron schedule")
	clear := flag.Bool("clear", false, "wipe the whole store before ingesting")
	flag.Parse()

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

	// The write path owns the schema migration.
	db, err := infradb.Open(cfg.Database.Driver, cfg.Database.DSN, true)
	if err != nil {
		log.Fatal("[FATAL] open database: ", err)
	}

	store := sqlite.NewMetricRepository(db)
	market := yahoo.NewYahooMarket(yahoo.LoadConfig(), nil)

	var fallback marketusecase.FallbackGenerator
	if cfg.Ingest.Fallback {
		fallback = synthetic.Generator{}
		log.Println("[INFO] synthetic fallback enabled")
	}

	rl := ratelimiter.NewRateLimiter(8, time.Minute)
	uc := marketusecase.NewIngestUsecase(market, store, fallback, rl, marketusecase.IngestConfig{
		Period:    cfg.Ingest.Period,
		RetryUnit: cfg.RetryUnit(),
		Replace:   cfg.Ingest.Replace,
	})

	symbols := make([]string, 0, len(cfg.Ingest.Companies))
	for _, c := range cfg.Ingest.Companies {
		symbols = append(symbols, c.Symbol)
	}

	if *clear {
		if err := store.ClearAll(context.Background()); err != nil {
			log.Fatal("[FATAL] clear store: ", err)
		}
		log.Println("[INFO] store cleared")
	}

	runOnce := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := uc.IngestAll(ctx, symbols); err != nil {
			log.Println("[ERROR] ingest run: ", err)
			return
		}
		log.Println("[INFO] ingest ok")
	}

	if !*daemon {
		runOnce()
		return
	}

	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(cfg.Ingest.ScheduleCron, runOnce); err != nil {
		log.Fatal("[FATAL] register cron schedule: ", err)
	}
	c.Start()
	defer c.Stop()

	log.Printf("[INFO] ingest daemon running on schedule %q. Press Ctrl+C to stop.", cfg.Ingest.ScheduleCron)

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, ingesting now")
		go runOnce()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping")
}
