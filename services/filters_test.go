package services

import (
	"errors"
	"math"
	"strings"
	"testing"

	"rental-search/models"
)

func ptr(f float64) *float64 { return &f }

func TestNormalizeFiltersDefaults(t *testing.T) {
	got, err := NormalizeFilters(models.SearchFilters{})
	if err != nil {
		t.Fatalf("NormalizeFilters: unexpected error %v", err)
	}
	if got != DefaultFilters {
		t.Errorf("NormalizeFilters({}) = %+v; want %+v", got, DefaultFilters)
	}
}

func TestNormalizeFiltersSwapsPrices(t *testing.T) {
	got, err := NormalizeFilters(models.SearchFilters{MinPrice: ptr(100), MaxPrice: ptr(10)})
	if err != nil {
		t.Fatalf("NormalizeFilters: unexpected error %v", err)
	}
	if got.MinPrice != 10 || got.MaxPrice != 100 {
		t.Errorf("price range: got [%v, %v], want [10, 100]", got.MinPrice, got.MaxPrice)
	}
}

func TestNormalizeFiltersSwapsAgainstDefault(t *testing.T) {
	got, err := NormalizeFilters(models.SearchFilters{MinPrice: ptr(6000)})
	if err != nil {
		t.Fatalf("NormalizeFilters: unexpected error %v", err)
	}
	if got.MinPrice != 5000 || got.MaxPrice != 6000 {
		t.Errorf("price range: got [%v, %v], want [5000, 6000]", got.MinPrice, got.MaxPrice)
	}
}

func TestNormalizeFiltersStrings(t *testing.T) {
	tests := []struct {
		city, keyword         string
		wantCity, wantKeyword string
	}{
		{"  Oakland ", " gym ", "Oakland", "gym"},
		{"   ", "", "San Francisco", ""},
		{"", "\t", "San Francisco", ""},
	}

	for _, tt := range tests {
		got, err := NormalizeFilters(models.SearchFilters{City: tt.city, Keyword: tt.keyword})
		if err != nil {
			t.Fatalf("NormalizeFilters(%q, %q): unexpected error %v", tt.city, tt.keyword, err)
		}
		if got.City != tt.wantCity || got.Keyword != tt.wantKeyword {
			t.Errorf("NormalizeFilters(%q, %q) = (%q, %q); want (%q, %q)",
				tt.city, tt.keyword, got.City, got.Keyword, tt.wantCity, tt.wantKeyword)
		}
	}
}

func TestNormalizeFiltersKeepsExplicitValues(t *testing.T) {
	in := models.SearchFilters{
		MinPrice: ptr(1200),
		MaxPrice: ptr(2400),
		City:     "Mission",
		Keyword:  "laundry",
		Type:     models.TypeStudio,
		SortBy:   models.SortNewest,
	}
	want := models.Filters{
		MinPrice: 1200, MaxPrice: 2400, City: "Mission", Keyword: "laundry",
		Type: models.TypeStudio, SortBy: models.SortNewest,
	}

	got, err := NormalizeFilters(in)
	if err != nil {
		t.Fatalf("NormalizeFilters: unexpected error %v", err)
	}
	if got != want {
		t.Errorf("NormalizeFilters = %+v; want %+v", got, want)
	}
}

func TestNormalizeFiltersValidation(t *testing.T) {
	tests := []struct {
		name  string
		in    models.SearchFilters
		field string
	}{
		{"negative min", models.SearchFilters{MinPrice: ptr(-1)}, "minPrice"},
		{"negative max", models.SearchFilters{MaxPrice: ptr(-0.5)}, "maxPrice"},
		{"nan", models.SearchFilters{MinPrice: ptr(math.NaN())}, "minPrice"},
		{"inf", models.SearchFilters{MaxPrice: ptr(math.Inf(1))}, "maxPrice"},
		{"long city", models.SearchFilters{City: strings.Repeat("a", 101)}, "city"},
		{"long keyword", models.SearchFilters{Keyword: strings.Repeat("k", 121)}, "keyword"},
		{"bad type", models.SearchFilters{Type: "castle"}, "type"},
		{"capitalised type", models.SearchFilters{Type: "Room"}, "type"},
		{"bad sort", models.SearchFilters{SortBy: "cheapest"}, "sortBy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeFilters(tt.in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("NormalizeFilters error = %v; want *ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("ValidationError.Field = %q; want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestNormalizeFiltersLengthLimitsAreInclusive(t *testing.T) {
	_, err := NormalizeFilters(models.SearchFilters{
		City:    strings.Repeat("é", 100),
		Keyword: strings.Repeat("k", 120),
	})
	if err != nil {
		t.Errorf("NormalizeFilters at the length limits: unexpected error %v", err)
	}
}

func TestNormalizeFiltersReasonNamesRule(t *testing.T) {
	_, err := NormalizeFilters(models.SearchFilters{City: strings.Repeat("c", 101)})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("NormalizeFilters error = %v; want *ValidationError", err)
	}
	if verr.Reason != "failed max=100" {
		t.Errorf("Reason = %q; want %q", verr.Reason, "failed max=100")
	}
}

func TestAsValidationError(t *testing.T) {
	own := &ValidationError{Field: "city", Reason: "too long"}
	if got := AsValidationError(own); got != error(own) {
		t.Errorf("AsValidationError(*ValidationError) = %v; want it unchanged", got)
	}

	var verr *ValidationError
	if !errors.As(AsValidationError(errors.New(`strconv.ParseFloat: parsing "abc": invalid syntax`)), &verr) {
		t.Fatal("bind errors should become *ValidationError")
	}
	if verr.Field != "query" {
		t.Errorf("Field = %q; want %q", verr.Field, "query")
	}
}

func TestParamName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"MinPrice", "minPrice"},
		{"SortBy", "sortBy"},
		{"City", "city"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := paramName(tt.in); got != tt.want {
			t.Errorf("paramName(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
