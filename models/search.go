package models

import "encoding/json"

// UnitFilter is the requested unit type of a search.
type UnitFilter string

const (
	TypeAll       UnitFilter = "all"
	TypeStudio    UnitFilter = "studio"
	TypeRoom      UnitFilter = "room"
	TypeApartment UnitFilter = "apartment"
)

// SortOrder is the requested ordering of search results.
type SortOrder string

const (
	SortPriceAsc  SortOrder = "price-asc"
	SortPriceDesc SortOrder = "price-desc"
	SortNewest    SortOrder = "newest"
)

// SearchFilters are the raw, untrusted search parameters of one request.
// Nil prices and empty strings mean "not supplied".
type SearchFilters struct {
	MinPrice *float64   `form:"minPrice" binding:"omitempty,min=0"`
	MaxPrice *float64   `form:"maxPrice" binding:"omitempty,min=0"`
	City     string     `form:"city" binding:"omitempty,max=100"`
	Keyword  string     `form:"keyword" binding:"omitempty,max=120"`
	Type     UnitFilter `form:"type" binding:"omitempty,oneof=studio room apartment all"`
	SortBy   SortOrder  `form:"sortBy" binding:"omitempty,oneof=price-asc price-desc newest"`
}

// Filters are normalized search criteria: every field is set.
type Filters struct {
	MinPrice float64    `json:"minPrice"`
	MaxPrice float64    `json:"maxPrice"`
	City     string     `json:"city"`
	Keyword  string     `json:"keyword"`
	Type     UnitFilter `json:"type"`
	SortBy   SortOrder  `json:"sortBy"`
}

// SearchResult is the uniform outcome of one search.
// Data is set only on success, Error only on failure.
type SearchResult struct {
	Success bool
	Data    []*Listing
	Error   string
}

// MarshalJSON encodes a success as {"success":true,"data":[...]} (data is
// never null) and a failure as {"success":false,"error":"..."}.
func (r SearchResult) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}{false, r.Error})
	}
	data := r.Data
	if data == nil {
		data = []*Listing{}
	}
	return json.Marshal(struct {
		Success bool       `json:"success"`
		Data    []*Listing `json:"data"`
	}{true, data})
}
