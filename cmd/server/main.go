package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"rental-search/config"
	"rental-search/server"
	"rental-search/services"
	"rental-search/storage"
	"rental-search/utils"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()
	logger := utils.NewLoggerWith(cfg.LogLevel, cfg.LogPretty)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("=== Listing search server starting ===")
	logger.Info("Config: backend=%s addr=%s search timeout=%dms",
		cfg.StoreBackend, cfg.HTTPAddr, cfg.SearchTimeoutMs)

	store, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open listing store: %v", err)
		return 1
	}
	defer store.Close()

	if cfg.StoreBackend == config.BackendMemory {
		_, err := services.NewIngestor(store, logger).Seed(ctx, storage.NewCSVReader(cfg.SeedCSVPath))
		if err != nil && !errors.Is(err, services.ErrNoRows) {
			logger.Error("Failed to load %s into memory: %v", cfg.SeedCSVPath, err)
			return 1
		}
	}

	timeout := time.Duration(cfg.SearchTimeoutMs) * time.Millisecond
	searchSvc := services.NewSearchService(store, logger, timeout)

	if err := server.New(cfg.HTTPAddr, searchSvc, logger).Run(ctx); err != nil {
		logger.Error("Server failed: %v", err)
		return 1
	}
	return 0
}
