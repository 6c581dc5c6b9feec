package storage

import (
	"context"
	"errors"

	"rental-search/models"
)

// ErrUnknownField is returned for a query that names a field the listings
// table does not have.
var ErrUnknownField = errors.New("unknown listing field")

// ListingFinder runs search queries against the listings table.
type ListingFinder interface {
	Find(ctx context.Context, q models.Query) ([]*models.Listing, error)
}

// ListingStore is the interface any storage backend must satisfy.
type ListingStore interface {
	ListingFinder

	// Replace deletes every listing and inserts the given ones.
	Replace(ctx context.Context, listings []*models.Listing) error
	// UpdateImages overwrites the images of one listing.
	UpdateImages(ctx context.Context, id string, images []string) error
	// FetchAll returns every listing, newest first.
	FetchAll(ctx context.Context) ([]*models.Listing, error)
	Close() error
}

// RowReader yields the data rows of a seed file.
type RowReader interface {
	ReadRows() ([]models.CSVRow, error)
}
