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

	"moviedw/internal/api"
	"moviedw/internal/api/searches"
	"moviedw/internal/config"
	"moviedw/internal/extract"
	"moviedw/internal/lake"
	"moviedw/internal/load"
	"moviedw/internal/metrics"
	"moviedw/internal/metrics/datadog"
	"moviedw/internal/pipeline"
	"moviedw/internal/query"
	"moviedw/internal/search"
	"moviedw/internal/transform"
	"moviedw/internal/warehouse"

	// register all warehouse backends with the dialect registry.
	// config specifies which to use but we build in support for all of them.
	_ "moviedw/internal/warehouse/all"
)

// main is the entry point for the warehouse binary. It loads configuration,
// optionally initializes a metrics backend, ensures the schema, and then
// either performs a one-shot seed or serves the HTTP API.
func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		seedPath          string
		seedSample        bool
	)

	flag.StringVar(&cfgPath, "config", "configs/moviedw.yaml", "config YAML path (optional; env vars override)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (datadog, none; overrides config)")
	flag.StringVar(&seedPath, "seed", "", "run the pipeline once over this source file and exit")
	flag.BoolVar(&seedSample, "seed-sample", false, "load the built-in sample dataset and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("%v", err)
	}

	// Decide metrics backend: flag → config → default none.
	backendName := metricsBackendFlg
	if backendName == "" {
		backendName = cfg.Metrics.Backend
	}
	switch backendName {
	case "datadog":
		// Buffers metrics, submits periodically and once more at shutdown, so
		// long runs produce a real time series rather than one final spike.
		b, err := datadog.NewBackend(context.Background(), datadog.Options{
			JobName:    cfg.Metrics.JobName,
			Tags:       datadog.ParseTagsCSV(cfg.Metrics.Tags),
			FlushEvery: 60 * time.Second,
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
		} else {
			log.Printf("metrics: backend=%v job_name=%v", backendName, cfg.Metrics.JobName)
			metrics.SetBackend(b)
			defer func() {
				if err := b.Close(); err != nil {
					log.Printf("metrics: datadog close/flush error: %v", err)
				}
			}()
		}

	case "", "none":
		if *verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := warehouse.Open(ctx, warehouse.Config{Kind: cfg.Database.Kind, DSN: cfg.Database.DSN})
	if err != nil {
		log.Fatalf("warehouse: %v", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("%v", err)
	}
	if *verbose {
		log.Printf("warehouse: kind=%s schema ok", store.Kind())
	}

	lk, err := lake.New(cfg.Lake.Dir)
	if err != nil {
		log.Fatalf("%v", err)
	}

	var indexer *search.Indexer
	if cfg.Search.Enabled {
		indexer, err = search.NewIndexer(search.Config{
			Addresses: cfg.Search.Addresses,
			Index:     cfg.Search.Index,
			Username:  cfg.Search.Username,
			Password:  cfg.Search.Password,
		}, log.Default())
		if err != nil {
			log.Fatalf("%v", err)
		}
		if err := indexer.EnsureIndex(ctx); err != nil {
			log.Printf("search: ensure index: %v (indexing will keep failing until resolved)", err)
		}
	}

	p := pipeline.New(
		lk,
		extract.New(lk, extract.Options{Encoding: cfg.Extract.CSVEncoding}),
		transform.New(lk),
		load.New(store, lk, log.Default()),
		indexer,
		log.Default(),
	)

	start := time.Now()

	switch {
	case seedSample:
		res, err := p.SeedSample(ctx)
		if err != nil {
			log.Fatalf("%v", err)
		}
		log.Printf("seed sample done in %s: processed=%d skipped=%d indexed=%d index_failed=%d",
			time.Since(start).Truncate(time.Millisecond), res.Processed, res.Skipped, res.Indexed, res.IndexFailed)

	case seedPath != "":
		res, err := p.Seed(ctx, seedPath)
		if err != nil {
			log.Fatalf("%v", err)
		}
		log.Printf("seed %s done in %s: processed=%d skipped=%d indexed=%d index_failed=%d",
			seedPath, time.Since(start).Truncate(time.Millisecond), res.Processed, res.Skipped, res.Indexed, res.IndexFailed)

	default:
		var searcher searches.Searcher
		if indexer != nil {
			searcher = indexer
		}
		gateway := api.NewRestGateway(cfg.Addr(), p, query.New(store), searcher)
		log.Printf("api: listening on %s", cfg.Addr())
		if err := gateway.Run(ctx); err != nil {
			log.Fatalf("api: %v", err)
		}
	}
}
