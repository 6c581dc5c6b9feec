package services

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"rental-search/models"
)

// DefaultFilters are applied to every field the caller leaves out.
var DefaultFilters = models.Filters{
	MinPrice: 0,
	MaxPrice: 5000,
	City:     "San Francisco",
	Keyword:  "",
	Type:     models.TypeAll,
	SortBy:   models.SortPriceAsc,
}

// ValidationError reports a search parameter with an invalid shape.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NormalizeFilters validates raw filters and fills every missing field with
// its default. A minPrice above maxPrice is swapped, not rejected.
func NormalizeFilters(f models.SearchFilters) (models.Filters, error) {
	if err := validateFilters(f); err != nil {
		return models.Filters{}, err
	}

	out := models.Filters{
		MinPrice: DefaultFilters.MinPrice,
		MaxPrice: DefaultFilters.MaxPrice,
		City:     formatString(f.City, DefaultFilters.City),
		Keyword:  formatString(f.Keyword, DefaultFilters.Keyword),
		Type:     f.Type,
		SortBy:   f.SortBy,
	}
	if f.MinPrice != nil {
		out.MinPrice = *f.MinPrice
	}
	if f.MaxPrice != nil {
		out.MaxPrice = *f.MaxPrice
	}
	if out.Type == "" {
		out.Type = DefaultFilters.Type
	}
	if out.SortBy == "" {
		out.SortBy = DefaultFilters.SortBy
	}

	if out.MinPrice > out.MaxPrice {
		out.MinPrice, out.MaxPrice = out.MaxPrice, out.MinPrice
	}
	return out, nil
}

func validateFilters(f models.SearchFilters) error {
	if err := binding.Validator.ValidateStruct(f); err != nil {
		return AsValidationError(err)
	}
	// min=0 lets +Inf through.
	if err := validatePrice("minPrice", f.MinPrice); err != nil {
		return err
	}
	return validatePrice("maxPrice", f.MaxPrice)
}

func validatePrice(field string, v *float64) error {
	if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
		return &ValidationError{Field: field, Reason: "not a finite number"}
	}
	return nil
}

// AsValidationError converts binding and validator failures into a
// *ValidationError naming the offending parameter.
func AsValidationError(err error) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		reason := "failed " + fe.Tag()
		if fe.Param() != "" {
			reason += "=" + fe.Param()
		}
		return &ValidationError{Field: paramName(fe.StructField()), Reason: reason}
	}
	return &ValidationError{Field: "query", Reason: err.Error()}
}

// paramName maps a SearchFilters field to its query parameter name.
func paramName(structField string) string {
	if structField == "" {
		return structField
	}
	return strings.ToLower(structField[:1]) + structField[1:]
}

func formatString(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
