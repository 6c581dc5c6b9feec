package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"rental-search/metrics"
	"rental-search/models"
	"rental-search/storage"
	"rental-search/utils"
)

// Fallbacks for required columns left blank in the CSV.
const (
	DefaultTitle        = "Untitled listing"
	DefaultAddress      = "Unknown address"
	DefaultPrice        = "Contact for pricing"
	DefaultBedBath      = "Unknown configuration"
	DefaultUnitType     = models.UnitRoom
	DefaultAvailability = "Check availability"
	DefaultListingLink  = "https://example.com"
)

// ErrNoRows is returned by Seed when the source has no data rows.
var ErrNoRows = errors.New("no rows found in CSV")

// Ingestor maps CSV rows to listings and replaces the listings table.
type Ingestor struct {
	store  storage.ListingStore
	logger *utils.Logger
	now    func() time.Time
}

// NewIngestor creates an Ingestor writing to store.
func NewIngestor(store storage.ListingStore, logger *utils.Logger) *Ingestor {
	return &Ingestor{store: store, logger: logger, now: time.Now}
}

// Seed reads every row from src and replaces the table contents with them.
// It returns ErrNoRows, leaving the table untouched, when src is empty.
func (in *Ingestor) Seed(ctx context.Context, src storage.RowReader) ([]*models.Listing, error) {
	rows, err := src.ReadRows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	listings := in.MapRows(rows)
	if err := in.store.Replace(ctx, listings); err != nil {
		return nil, fmt.Errorf("ingest: replace listings: %w", err)
	}
	metrics.IngestedListingsTotal.Add(float64(len(listings)))

	in.logger.Info("[ingest] Seeded %d listing(s)", len(listings))
	return listings, nil
}

// MapRows converts CSV rows to listings with fresh IDs and timestamps.
func (in *Ingestor) MapRows(rows []models.CSVRow) []*models.Listing {
	now := in.now()
	listings := make([]*models.Listing, 0, len(rows))
	for _, row := range rows {
		l := MapRow(row)
		l.ID = uuid.NewString()
		l.CreatedAt = now
		l.UpdatedAt = now
		listings = append(listings, l)
	}
	return listings
}

// MapRow converts one CSV row to a listing. Images always start empty.
func MapRow(row models.CSVRow) *models.Listing {
	return &models.Listing{
		Title:         requiredField(row["title"], DefaultTitle),
		Address:       requiredField(row["address"], DefaultAddress),
		Neighborhood:  optionalField(row["neighborhood"]),
		Price:         requiredField(row["price"], DefaultPrice),
		BedBath:       requiredField(row["bed_bath"], DefaultBedBath),
		Sqft:          optionalField(row["sqft"]),
		UnitType:      requiredField(row["unit_type"], DefaultUnitType),
		Availability:  requiredField(row["availability"], DefaultAvailability),
		ContactName:   optionalField(row["contact_name"]),
		ContactPhone:  optionalField(row["contact_phone"]),
		ListingLink:   requiredField(row["listing_link"], DefaultListingLink),
		Images:        []string{},
		Summary:       optionalField(row["summary"]),
		Amenities:     parseAmenities(row["amenities"]),
		NotesForLivva: optionalField(row["notes_for_livva"]),
	}
}

func requiredField(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

// optionalField returns nil for blank cells and the "--" / "no phone listed"
// placeholders used by the export.
func optionalField(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || trimmed == "--" || strings.EqualFold(trimmed, "no phone listed") {
		return nil
	}
	return &trimmed
}

func parseAmenities(raw string) []string {
	normalized := strings.TrimSpace(raw)
	if normalized == "" || strings.Contains(strings.ToLower(normalized), "no amenities") {
		return []string{}
	}

	amenities := make([]string, 0)
	for _, entry := range strings.Split(normalized, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			amenities = append(amenities, entry)
		}
	}
	return amenities
}
