package server

import (
	"context"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"rental-search/models"
)

// Searcher runs listing searches. Reject turns a binding failure into the
// failure result.
type Searcher interface {
	Search(ctx context.Context, filters models.SearchFilters) models.SearchResult
	Reject(err error) models.SearchResult
}

// Handler handles HTTP requests for listing search.
type Handler struct {
	searcher Searcher
}

// NewHandler creates a new HTTP handler.
func NewHandler(searcher Searcher) *Handler {
	return &Handler{searcher: searcher}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Page)

	api := r.Group("/api")
	{
		api.GET("/listings", h.Search)
	}
}

// Search returns the SearchResult as JSON. Failures are reported in the
// body with the generic message, never as raw errors.
func (h *Handler) Search(c *gin.Context) {
	c.JSON(http.StatusOK, h.search(c))
}

func (h *Handler) search(c *gin.Context) models.SearchResult {
	dropBlankParams(c.Request)

	var filters models.SearchFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		return h.searcher.Reject(err)
	}
	return h.searcher.Search(c.Request.Context(), filters)
}

// dropBlankParams removes empty query parameters so that an empty form field
// reads as "not supplied" instead of binding as zero.
func dropBlankParams(r *http.Request) {
	q := r.URL.Query()
	for key, values := range q {
		if len(values) == 0 || strings.TrimSpace(values[0]) == "" {
			q.Del(key)
		}
	}
	r.URL.RawQuery = q.Encode()
}

type pageData struct {
	Query   url.Values
	Result  models.SearchResult
	Types   []option
	SortBys []option
}

type option struct {
	Value string
	Label string
}

var (
	typeOptions = []option{
		{string(models.TypeAll), "All types"},
		{string(models.TypeStudio), "Studio"},
		{string(models.TypeRoom), "Room"},
		{string(models.TypeApartment), "Apartment"},
	}
	sortOptions = []option{
		{string(models.SortPriceAsc), "Price: low to high"},
		{string(models.SortPriceDesc), "Price: high to low"},
		{string(models.SortNewest), "Newest"},
	}
)

// Page renders the search form and the matching listings.
func (h *Handler) Page(c *gin.Context) {
	result := h.search(c)
	c.HTML(http.StatusOK, "search.html", pageData{
		Query:   c.Request.URL.Query(),
		Result:  result,
		Types:   typeOptions,
		SortBys: sortOptions,
	})
}

var templateFuncs = template.FuncMap{
	"firstImage": firstImage,
	"hostname":   hostname,
	"price":      formatPrice,
	"deref":      deref,
}

// firstImage returns the first image of a listing, "" when it has none.
func firstImage(l *models.Listing) string {
	if len(l.Images) == 0 {
		return ""
	}
	return l.Images[0]
}

// hostname returns the host of a listing link, or the link itself when it
// is not an absolute URL.
func hostname(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Hostname() == "" {
		return link
	}
	return u.Hostname()
}

// formatPrice renders numeric prices as $1,800/mo and passes other text through.
func formatPrice(raw string) string {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return raw
	}
	cents := int64(math.Round(v * 100))
	whole := strconv.FormatInt(cents/100, 10)

	var b strings.Builder
	for i := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteByte(whole[i])
	}
	if frac := cents % 100; frac != 0 {
		return fmt.Sprintf("$%s.%02d/mo", b.String(), frac)
	}
	return "$" + b.String() + "/mo"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
