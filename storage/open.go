package storage

import (
	"context"
	"fmt"
	"time"

	"rental-search/config"
	"rental-search/utils"
)

// Open returns the store selected by cfg.StoreBackend. The memory store
// starts empty.
func Open(ctx context.Context, cfg *config.Config, logger *utils.Logger) (ListingStore, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		logger.Info("[storage] Using in-memory listing store")
		return NewMemoryStore(), nil
	case config.BackendPostgres, "":
		retry := &utils.RetryConfig{MaxAttempts: 10, BaseDelay: time.Second, Logger: logger}
		store, err := NewPostgresStore(ctx, cfg.DSN(), cfg.SeedBatchSize, retry)
		if err != nil {
			return nil, err
		}
		logger.Info("[storage] Connected to PostgreSQL")
		return store, nil
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.StoreBackend)
	}
}
