package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rental-search/metrics"
	"rental-search/models"
	"rental-search/storage"
	"rental-search/utils"
)

// SearchFailedMessage is the only error text a search caller ever sees.
const SearchFailedMessage = "Failed to search room listings. Please try again later."

// SearchService runs listing searches. Its methods never return an error:
// every failure becomes the failure variant of models.SearchResult.
type SearchService struct {
	store   storage.ListingFinder
	logger  *utils.Logger
	timeout time.Duration
}

// NewSearchService creates a SearchService. A zero timeout leaves the
// storage call bounded only by the caller's context.
func NewSearchService(store storage.ListingFinder, logger *utils.Logger, timeout time.Duration) *SearchService {
	return &SearchService{store: store, logger: logger, timeout: timeout}
}

// Reject records a request whose parameters could not be bound to
// SearchFilters and returns the failure result for it.
func (s *SearchService) Reject(err error) models.SearchResult {
	return s.fail(metrics.OutcomeValidationError, AsValidationError(err))
}

// Search normalizes filters, queries storage and refines the rows.
// It makes a single attempt; a failure is terminal for this call.
func (s *SearchService) Search(ctx context.Context, filters models.SearchFilters) (result models.SearchResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = s.fail(metrics.OutcomePanic, fmt.Errorf("panic: %v", r))
		}
		metrics.SearchDuration.Observe(time.Since(start).Seconds())
	}()

	normalized, err := NormalizeFilters(filters)
	if err != nil {
		return s.fail(metrics.OutcomeValidationError, err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	rows, err := s.store.Find(ctx, BuildQuery(normalized))
	if err != nil {
		return s.fail(metrics.OutcomeStoreError, err)
	}
	metrics.SearchRowsFetched.Observe(float64(len(rows)))

	listings := RefineResults(rows, normalized)
	metrics.SearchesTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.logger.Debug("[search] city=%q type=%s sort=%s price=[%.0f,%.0f] → %d of %d rows",
		normalized.City, normalized.Type, normalized.SortBy,
		normalized.MinPrice, normalized.MaxPrice, len(listings), len(rows))

	return models.SearchResult{Success: true, Data: listings}
}

func (s *SearchService) fail(outcome string, err error) models.SearchResult {
	metrics.SearchesTotal.WithLabelValues(outcome).Inc()

	var verr *ValidationError
	if errors.As(err, &verr) {
		s.logger.Warn("[search] Rejected filters: %v", err)
	} else {
		s.logger.Error("[search] Error searching room listings: %v", err)
	}
	return models.SearchResult{Success: false, Error: SearchFailedMessage}
}
