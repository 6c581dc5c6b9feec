package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"rental-search/models"
	"rental-search/utils"
)

// ReportService summarises and prints the listings table after a seed run.
type ReportService struct {
	logger *utils.Logger
}

func NewReportService(logger *utils.Logger) *ReportService {
	return &ReportService{logger: logger}
}

// Generate computes the report over listings. Price statistics only count
// listings whose price parses to a positive number.
func (s *ReportService) Generate(listings []*models.Listing) *models.ListingReport {
	report := &models.ListingReport{
		ListingsByType:     make(map[string]int),
		ListingsByLocation: make(map[string]int),
		Listings:           listings,
	}
	if len(listings) == 0 {
		return report
	}
	report.TotalListings = len(listings)

	var total float64
	for _, l := range listings {
		report.ListingsByType[l.UnitType]++
		if l.Neighborhood != nil {
			report.ListingsByLocation[*l.Neighborhood]++
		}

		price := ParsePrice(l.Price)
		if price <= 0 {
			continue
		}
		if report.PricedListings == 0 || price < report.MinPrice {
			report.MinPrice = price
		}
		if report.PricedListings == 0 || price > report.MaxPrice {
			report.MaxPrice = price
			report.MostExpensive = l
		}
		report.PricedListings++
		total += price
	}

	if report.PricedListings > 0 {
		report.AveragePrice = round2(total / float64(report.PricedListings))
		report.MinPrice = round2(report.MinPrice)
		report.MaxPrice = round2(report.MaxPrice)
	}
	s.logger.Debug("[report] %d listing(s), %d with a numeric price", report.TotalListings, report.PricedListings)
	return report
}

// Print writes the report followed by every listing to w.
func (s *ReportService) Print(w io.Writer, r *models.ListingReport) {
	sep := strings.Repeat("=", 80)
	thin := strings.Repeat("-", 80)

	fmt.Fprintf(w, "\n%s\nDATABASE LISTINGS (Total: %d)\n%s\n\n", sep, r.TotalListings, sep)
	if r.TotalListings == 0 {
		fmt.Fprintln(w, "No listings found in database.")
		return
	}

	fmt.Fprintf(w, "Price statistics (%d priced listing(s))\n%s\n", r.PricedListings, thin)
	if r.PricedListings > 0 {
		fmt.Fprintf(w, "  Average : $%.2f\n  Minimum : $%.2f\n  Maximum : $%.2f\n",
			r.AveragePrice, r.MinPrice, r.MaxPrice)
		if r.MostExpensive != nil {
			fmt.Fprintf(w, "  Most expensive: %s (%s)\n", truncate(r.MostExpensive.Title, 50), r.MostExpensive.Address)
		}
	} else {
		fmt.Fprintln(w, "  No numeric price data")
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Listings by unit type\n%s\n", thin)
	for _, kc := range sortedCounts(r.ListingsByType) {
		fmt.Fprintf(w, "  %-30s %d\n", kc.key, kc.count)
	}
	fmt.Fprintln(w)

	if len(r.ListingsByLocation) > 0 {
		fmt.Fprintf(w, "Listings by neighborhood\n%s\n", thin)
		for _, kc := range sortedCounts(r.ListingsByLocation) {
			fmt.Fprintf(w, "  %-30s %s (%d)\n", truncate(kc.key, 27), strings.Repeat("#", kc.count), kc.count)
		}
		fmt.Fprintln(w)
	}

	for i, l := range r.Listings {
		fmt.Fprintf(w, "%d. %s\n", i+1, l.Title)
		fmt.Fprintf(w, "   Address: %s\n", l.Address)
		fmt.Fprintf(w, "   Neighborhood: %s\n", orNA(l.Neighborhood))
		fmt.Fprintf(w, "   Price: %s\n", l.Price)
		fmt.Fprintf(w, "   Bed/Bath: %s\n", l.BedBath)
		fmt.Fprintf(w, "   Sqft: %s\n", orNA(l.Sqft))
		fmt.Fprintf(w, "   Unit Type: %s\n", l.UnitType)
		fmt.Fprintf(w, "   Availability: %s\n", l.Availability)
		if l.ContactName != nil {
			contact := *l.ContactName
			if l.ContactPhone != nil {
				contact += " - " + *l.ContactPhone
			}
			fmt.Fprintf(w, "   Contact: %s\n", contact)
		}
		fmt.Fprintf(w, "   Link: %s\n", l.ListingLink)
		if len(l.Amenities) > 0 {
			fmt.Fprintf(w, "   Amenities: %s\n", strings.Join(l.Amenities, ", "))
		}
		if l.Summary != nil {
			fmt.Fprintf(w, "   Summary: %s\n", truncate(*l.Summary, 100))
		}
		fmt.Fprintln(w)
	}
}

type keyCount struct {
	key   string
	count int
}

// sortedCounts orders map entries by count descending, then key.
func sortedCounts(m map[string]int) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, c := range m {
		out = append(out, keyCount{k, c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}

func orNA(s *string) string {
	if s == nil {
		return "N/A"
	}
	return *s
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

// truncate keeps the first max runes of s and marks a cut with "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
