package models

import "time"

// Unit types as stored in the unit_type column.
const (
	UnitStudio    = "Studio"
	UnitRoom      = "Room"
	UnitApartment = "Apartment"
)

// CSVRow is one data row of the seed CSV keyed by header name.
// Values are unquoted and trimmed; missing cells are empty strings.
type CSVRow map[string]string

// Listing is one rentable unit as persisted in the listings table.
// Optional columns are nil when the source had no usable value.
type Listing struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Address       string    `json:"address"`
	Neighborhood  *string   `json:"neighborhood"`
	Price         string    `json:"price"`
	BedBath       string    `json:"bed_bath"`
	Sqft          *string   `json:"sqft"`
	UnitType      string    `json:"unit_type"`
	Availability  string    `json:"availability"`
	ContactName   *string   `json:"contact_name"`
	ContactPhone  *string   `json:"contact_phone"`
	ListingLink   string    `json:"listing_link"`
	Images        []string  `json:"images"`
	Summary       *string   `json:"summary"`
	Amenities     []string  `json:"amenities"`
	NotesForLivva *string   `json:"notes_for_livva"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ListingReport summarises the table contents after a seed run.
type ListingReport struct {
	TotalListings      int
	PricedListings     int
	AveragePrice       float64
	MinPrice           float64
	MaxPrice           float64
	MostExpensive      *Listing
	ListingsByType     map[string]int
	ListingsByLocation map[string]int
	Listings           []*Listing
}
