package services

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"rental-search/models"
)

// MaxResults is the number of listings returned by one search.
const MaxResults = 10

// ParsePrice converts a stored price to a number for ranking.
// Text that is not a finite, non-negative number ranks as 0.
func ParsePrice(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// IsWithinPriceRange reports whether the listing's parsed price lies in
// [f.MinPrice, f.MaxPrice].
func IsWithinPriceRange(l *models.Listing, f models.Filters) bool {
	p := ParsePrice(l.Price)
	return p >= f.MinPrice && p <= f.MaxPrice
}

// RefineResults drops listings outside the price range, re-sorts the rest by
// numeric price (or creation time for "newest") and keeps the first
// MaxResults. Ties keep their storage order.
func RefineResults(rows []*models.Listing, f models.Filters) []*models.Listing {
	result := make([]*models.Listing, 0, len(rows))
	for _, l := range rows {
		if IsWithinPriceRange(l, f) {
			result = append(result, l)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		switch f.SortBy {
		case models.SortNewest:
			return a.CreatedAt.After(b.CreatedAt)
		case models.SortPriceDesc:
			return ParsePrice(a.Price) > ParsePrice(b.Price)
		default:
			return ParsePrice(a.Price) < ParsePrice(b.Price)
		}
	})

	if len(result) > MaxResults {
		result = result[:MaxResults]
	}
	return result
}
