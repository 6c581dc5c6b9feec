package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"rental-search/models"
	"rental-search/services"
	"rental-search/storage"
	"rental-search/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer() http.Handler {
	mission := "Mission"
	store := storage.NewMemoryStore(
		&models.Listing{
			ID: "sunny", Title: "Sunny room", Address: "Valencia St, San Francisco", Neighborhood: &mission,
			Price: "1800", BedBath: "1bd/1ba", UnitType: "Room", ListingLink: "https://rent.example.com/sunny",
			Images: []string{"https://cdn.example.com/sunny.jpg"},
		},
		&models.Listing{
			ID: "plain", Title: "Plain studio", Address: "Folsom St, San Francisco",
			Price: "Contact for pricing", BedBath: "Studio", UnitType: "Studio", ListingLink: "ask the landlord",
		},
	)
	logger := utils.NewNopLogger()
	svc := services.NewSearchService(store, logger, time.Second)
	return New(":0", svc, logger).Handler()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestSearchAPI(t *testing.T) {
	w := get(t, newTestServer(), "/api/listings?type=room")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}

	var body struct {
		Success bool              `json:"success"`
		Data    []*models.Listing `json:"data"`
		Error   *string           `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Error != nil {
		t.Errorf("envelope = %s", w.Body.String())
	}
	if len(body.Data) != 1 || body.Data[0].ID != "sunny" {
		t.Errorf("data = %s; want only the sunny room", w.Body.String())
	}
}

func TestSearchAPIEmptyDataIsArray(t *testing.T) {
	w := get(t, newTestServer(), "/api/listings?city=Berlin")
	if got := strings.TrimSpace(w.Body.String()); got != `{"success":true,"data":[]}` {
		t.Errorf("body = %s", got)
	}
}

func TestSearchAPIFailure(t *testing.T) {
	w := get(t, newTestServer(), "/api/listings?type=castle")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d; want 200", w.Code)
	}
	want := `{"success":false,"error":"` + services.SearchFailedMessage + `"}`
	if got := strings.TrimSpace(w.Body.String()); got != want {
		t.Errorf("body = %s; want %s", got, want)
	}
}

func TestSearchAPIBindsQueryParameters(t *testing.T) {
	tests := []struct {
		target  string
		success bool
		ids     string
	}{
		{"/api/listings?type=room&maxPrice=", true, "sunny"},
		{"/api/listings?minPrice=1000&maxPrice=2000", true, "sunny"},
		{"/api/listings?minPrice=2000&maxPrice=1000", true, "sunny"},
		{"/api/listings?minPrice=abc", false, ""},
		{"/api/listings?minPrice=-5", false, ""},
		{"/api/listings?sortBy=cheapest", false, ""},
		{"/api/listings?type=Room", false, ""},
		{"/api/listings?city=" + strings.Repeat("x", 101), false, ""},
	}

	h := newTestServer()
	for _, tt := range tests {
		var body struct {
			Success bool              `json:"success"`
			Data    []*models.Listing `json:"data"`
			Error   string            `json:"error"`
		}
		w := get(t, h, tt.target)
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: decode: %v", tt.target, err)
		}
		if body.Success != tt.success {
			t.Errorf("%s: success = %t; want %t (%s)", tt.target, body.Success, tt.success, w.Body.String())
			continue
		}
		if !tt.success {
			if body.Error != services.SearchFailedMessage {
				t.Errorf("%s: error = %q; want the generic message", tt.target, body.Error)
			}
			continue
		}
		var got []string
		for _, l := range body.Data {
			got = append(got, l.ID)
		}
		if strings.Join(got, ",") != tt.ids {
			t.Errorf("%s: ids = %v; want %s", tt.target, got, tt.ids)
		}
	}
}

func TestSearchPage(t *testing.T) {
	w := get(t, newTestServer(), "/?sortBy=price-asc")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	body := w.Body.String()

	for _, want := range []string{
		`id="listing-sunny"`,
		`src="https://cdn.example.com/sunny.jpg"`,
		"$1,800/mo",
		"View on rent.example.com",
		"Contact for pricing",
		"View on ask the landlord",
		`<option value="price-asc" selected>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Count(body, "<img") != 1 {
		t.Errorf("page has %d images; want 1, listings without images render none", strings.Count(body, "<img"))
	}
}

func TestSearchPageEmptyAndError(t *testing.T) {
	h := newTestServer()

	empty := get(t, h, "/?city=Berlin").Body.String()
	if !strings.Contains(empty, "No listings found. Please try adjusting your search criteria.") {
		t.Error("empty result should render the empty state")
	}

	failed := get(t, h, "/?minPrice=abc").Body.String()
	if !strings.Contains(failed, services.SearchFailedMessage) {
		t.Error("failed search should render the generic error")
	}
}

func TestHealthAndRequestID(t *testing.T) {
	w := get(t, newTestServer(), "/health")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d; want 200", w.Code)
	}
	if w.Header().Get(headerRequestID) == "" {
		t.Error("response should carry a request ID")
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		raw, want string
	}{
		{"1800", "$1,800/mo"},
		{"950", "$950/mo"},
		{"1234567", "$1,234,567/mo"},
		{"2450.5", "$2,450.50/mo"},
		{"0", "$0/mo"},
		{"Contact for pricing", "Contact for pricing"},
		{"-5", "-5"},
		{"NaN", "NaN"},
	}
	for _, tt := range tests {
		if got := formatPrice(tt.raw); got != tt.want {
			t.Errorf("formatPrice(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestHostname(t *testing.T) {
	tests := []struct {
		link, want string
	}{
		{"https://www.zillow.com/homedetails/1", "www.zillow.com"},
		{"http://rent.example.com:8080/x", "rent.example.com"},
		{"not a url", "not a url"},
		{"%zz", "%zz"},
	}
	for _, tt := range tests {
		if got := hostname(tt.link); got != tt.want {
			t.Errorf("hostname(%q) = %q; want %q", tt.link, got, tt.want)
		}
	}
}
