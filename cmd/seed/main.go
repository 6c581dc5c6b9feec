package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rental-search/config"
	"rental-search/models"
	"rental-search/scraper/preview"
	"rental-search/services"
	"rental-search/storage"
	"rental-search/utils"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()

	csvPath := flag.String("csv", cfg.SeedCSVPath, "path of the listings CSV export")
	withImages := flag.Bool("images", false, "visit listing links with headless Chrome to collect images")
	flag.Parse()

	logger := utils.NewLoggerWith(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("=== Listing seed starting ===")
	logger.Info("Config: csv=%s backend=%s batch=%d images=%t",
		*csvPath, cfg.StoreBackend, cfg.SeedBatchSize, *withImages)

	if err := checkBackend(cfg); err != nil {
		logger.Error("Seeding failed: %v", err)
		return 1
	}

	store, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("Seeding failed: %v", err)
		logger.Error("Make sure PostgreSQL is reachable (DATABASE_URL or POSTGRES_*)")
		return 1
	}
	defer store.Close()

	listings, err := services.NewIngestor(store, logger).Seed(ctx, storage.NewCSVReader(*csvPath))
	switch {
	case errors.Is(err, services.ErrNoRows):
		logger.Warn("No rows found in CSV, nothing to seed.")
		return 0
	case err != nil:
		logger.Error("Seeding failed: %v", err)
		return 1
	}

	if *withImages {
		enrichImages(ctx, cfg, store, listings, logger)
	}

	dbListings, err := store.FetchAll(ctx)
	if err != nil {
		logger.Error("Seeding failed: fetch listings for report: %v", err)
		return 1
	}

	reports := services.NewReportService(logger)
	reports.Print(os.Stdout, reports.Generate(dbListings))
	return 0
}

// checkBackend refuses the memory store: it lives only inside the server
// process, so a seed into it would be discarded on exit.
func checkBackend(cfg *config.Config) error {
	if cfg.StoreBackend == config.BackendMemory {
		return fmt.Errorf("STORE_BACKEND=%s is not persistent; the server loads %s itself at startup",
			config.BackendMemory, cfg.SeedCSVPath)
	}
	return nil
}

// enrichImages is best effort: a browser that fails to start only skips it.
func enrichImages(ctx context.Context, cfg *config.Config, store storage.ListingStore, listings []*models.Listing, logger *utils.Logger) {
	fetcher, err := preview.NewBrowserFetcher(ctx, cfg.ChromeBin, logger)
	if err != nil {
		logger.Warn("Skipping image previews: %v", err)
		return
	}
	defer fetcher.Close()
	preview.New(cfg, fetcher, store, logger).Enrich(ctx, listings)
}
