package preview

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"rental-search/config"
	"rental-search/models"
	"rental-search/services"
	"rental-search/storage"
	"rental-search/utils"
)

type fakeFetcher struct {
	mu     sync.Mutex
	pages  map[string][]string
	visits map[string]int
}

func (f *fakeFetcher) FetchImages(_ context.Context, link string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visits[link]++
	images, ok := f.pages[link]
	if !ok {
		return nil, errors.New("page not found")
	}
	return images, nil
}

func testConfig() *config.Config {
	return &config.Config{MaxConcurrency: 2, RateLimitMs: 0, MaxRetries: 1, PreviewMaxImages: 2}
}

func TestCleanImageURLs(t *testing.T) {
	raw := []string{
		"/photos/1.jpg",
		"https://cdn.example.com/2.jpg",
		"  ",
		"data:image/png;base64,AAAA",
		"https://cdn.example.com/2.jpg",
		"javascript:alert(1)",
		"//cdn.example.com/3.jpg",
	}

	got := CleanImageURLs("https://rent.example.com/listing/9", raw, 0)
	want := []string{
		"https://rent.example.com/photos/1.jpg",
		"https://cdn.example.com/2.jpg",
		"https://cdn.example.com/3.jpg",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CleanImageURLs = %v; want %v", got, want)
	}

	if got := CleanImageURLs("https://rent.example.com/", raw, 1); len(got) != 1 {
		t.Errorf("CleanImageURLs with max 1: got %d URLs", len(got))
	}
}

func TestPreviewable(t *testing.T) {
	tests := []struct {
		link string
		want bool
	}{
		{"https://rent.example.com/1", true},
		{"http://rent.example.com/1", true},
		{services.DefaultListingLink, false},
		{"", false},
		{"mailto:owner@example.com", false},
		{"rent.example.com/1", false},
	}
	for _, tt := range tests {
		if got := previewable(tt.link); got != tt.want {
			t.Errorf("previewable(%q) = %t; want %t", tt.link, got, tt.want)
		}
	}
}

func TestEnrich(t *testing.T) {
	ctx := context.Background()
	listings := []*models.Listing{
		{ID: "a", ListingLink: "https://rent.example.com/1"},
		{ID: "b", ListingLink: "https://rent.example.com/1"},
		{ID: "c", ListingLink: services.DefaultListingLink},
		{ID: "d", ListingLink: "https://rent.example.com/2", Images: []string{"https://cdn.example.com/keep.jpg"}},
		{ID: "e", ListingLink: "https://rent.example.com/broken"},
	}
	store := storage.NewMemoryStore(listings...)
	fetcher := &fakeFetcher{
		pages: map[string][]string{
			"https://rent.example.com/1": {"/a.jpg", "/b.jpg", "/c.jpg"},
			"https://rent.example.com/2": {"/never.jpg"},
		},
		visits: map[string]int{},
	}

	p := New(testConfig(), fetcher, store, utils.NewNopLogger())
	if n := p.Enrich(ctx, listings); n != 2 {
		t.Errorf("Enrich updated %d listings; want 2", n)
	}

	if fetcher.visits["https://rent.example.com/1"] != 1 {
		t.Errorf("shared link visited %d times; want 1", fetcher.visits["https://rent.example.com/1"])
	}
	if fetcher.visits["https://rent.example.com/2"] != 0 {
		t.Error("listing with images should not be visited")
	}
	if fetcher.visits[services.DefaultListingLink] != 0 {
		t.Error("placeholder link should not be visited")
	}

	all, err := store.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	want := []string{"https://rent.example.com/a.jpg", "https://rent.example.com/b.jpg"}
	for _, l := range all {
		switch l.ID {
		case "a", "b":
			if !reflect.DeepEqual(l.Images, want) {
				t.Errorf("%s images = %v; want %v", l.ID, l.Images, want)
			}
		case "c", "e":
			if len(l.Images) != 0 {
				t.Errorf("%s images = %v; want none", l.ID, l.Images)
			}
		}
	}
}

func TestEnrichCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	listings := []*models.Listing{{ID: "a", ListingLink: "https://rent.example.com/1"}}
	fetcher := &fakeFetcher{pages: map[string][]string{}, visits: map[string]int{}}
	p := New(testConfig(), fetcher, storage.NewMemoryStore(listings...), utils.NewNopLogger())

	if n := p.Enrich(ctx, listings); n != 0 {
		t.Errorf("Enrich on a cancelled context updated %d listings", n)
	}
}

func TestEnrichVisitsLinkOncePerPreviewer(t *testing.T) {
	ctx := context.Background()
	link := "https://rent.example.com/1"
	first := []*models.Listing{{ID: "a", ListingLink: link}, {ID: "b", ListingLink: link}}
	second := []*models.Listing{{ID: "c", ListingLink: link}}

	store := storage.NewMemoryStore(append(first, second...)...)
	fetcher := &fakeFetcher{pages: map[string][]string{link: {"/a.jpg"}}, visits: map[string]int{}}
	p := New(testConfig(), fetcher, store, utils.NewNopLogger())

	if n := p.Enrich(ctx, first); n != 2 {
		t.Errorf("first Enrich updated %d listings; want 2", n)
	}
	if n := p.Enrich(ctx, second); n != 0 {
		t.Errorf("second Enrich updated %d listings; want 0", n)
	}
	if fetcher.visits[link] != 1 {
		t.Errorf("link visited %d times; want 1", fetcher.visits[link])
	}
}

func TestNewBrowserFetcherReportsLaunchFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-chrome")

	f, err := NewBrowserFetcher(context.Background(), missing, utils.NewNopLogger())
	if err == nil {
		f.Close()
		t.Fatal("NewBrowserFetcher with a missing binary should fail")
	}
	if f != nil {
		t.Errorf("NewBrowserFetcher returned a fetcher alongside error %v", err)
	}
}
