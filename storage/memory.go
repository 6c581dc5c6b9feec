package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"rental-search/models"
)

// MemoryStore keeps listings in process. It applies the same predicate and
// ordering semantics as PostgresStore, including ordering price as text.
type MemoryStore struct {
	mu       sync.RWMutex
	listings []*models.Listing
}

// NewMemoryStore returns a store holding copies of the given listings.
func NewMemoryStore(listings ...*models.Listing) *MemoryStore {
	m := &MemoryStore{}
	for _, l := range listings {
		m.listings = append(m.listings, cloneListing(l))
	}
	return m
}

// Find returns copies of the listings matching q.
func (m *MemoryStore) Find(ctx context.Context, q models.Query) ([]*models.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateQuery(q); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*models.Listing
	for _, l := range m.listings {
		if matchPredicate(l, q.Where) {
			matched = append(matched, l)
		}
	}

	if q.OrderBy.Field != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			if q.OrderBy.Descending {
				return lessBy(matched[j], matched[i], q.OrderBy.Field)
			}
			return lessBy(matched[i], matched[j], q.OrderBy.Field)
		})
	}

	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	out := make([]*models.Listing, 0, len(matched))
	for _, l := range matched {
		out = append(out, cloneListing(l))
	}
	return out, nil
}

// Replace swaps the whole contents of the store.
func (m *MemoryStore) Replace(ctx context.Context, listings []*models.Listing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	next := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		next = append(next, cloneListing(l))
	}

	m.mu.Lock()
	m.listings = next
	m.mu.Unlock()
	return nil
}

// UpdateImages overwrites the images of the listing with the given ID.
func (m *MemoryStore) UpdateImages(ctx context.Context, id string, images []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.listings {
		if l.ID == id {
			l.Images = append([]string{}, images...)
			l.UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("memory: listing %q not found", id)
}

// FetchAll returns every listing, newest first.
func (m *MemoryStore) FetchAll(ctx context.Context) ([]*models.Listing, error) {
	return m.Find(ctx, models.Query{
		OrderBy: models.Order{Field: models.FieldCreatedAt, Descending: true},
		Columns: models.ListingColumns,
	})
}

func (m *MemoryStore) Close() error { return nil }

func validateQuery(q models.Query) error {
	for _, c := range q.Columns {
		if _, ok := listingColumns[c]; !ok {
			return fmt.Errorf("%w: column %q", ErrUnknownField, c)
		}
	}
	if f := q.OrderBy.Field; f != "" {
		if _, ok := listingColumns[f]; !ok {
			return fmt.Errorf("%w: order by %q", ErrUnknownField, f)
		}
	}
	return validatePredicate(q.Where)
}

func validatePredicate(p models.Predicate) error {
	for _, c := range p.Clauses {
		if _, ok := textColumns[c.Field]; !ok {
			return fmt.Errorf("%w: filter on %q", ErrUnknownField, c.Field)
		}
		if c.Op != models.OpContains && c.Op != models.OpEquals {
			return fmt.Errorf("storage: unsupported operator %q", c.Op)
		}
	}
	for _, g := range p.Groups {
		if err := validatePredicate(g); err != nil {
			return err
		}
	}
	return nil
}

func matchPredicate(l *models.Listing, p models.Predicate) bool {
	if p.IsEmpty() {
		return true
	}
	results := make([]bool, 0, len(p.Clauses)+len(p.Groups))
	for _, c := range p.Clauses {
		results = append(results, matchClause(l, c))
	}
	for _, g := range p.Groups {
		results = append(results, matchPredicate(l, g))
	}

	if p.Combinator == models.Or {
		for _, r := range results {
			if r {
				return true
			}
		}
		return false
	}
	for _, r := range results {
		if !r {
			return false
		}
	}
	return true
}

func matchClause(l *models.Listing, c models.Clause) bool {
	v := textField(l, c.Field)
	if v == nil {
		return false
	}
	switch c.Op {
	case models.OpEquals:
		return strings.EqualFold(*v, c.Value)
	case models.OpContains:
		return strings.Contains(strings.ToLower(*v), strings.ToLower(c.Value))
	}
	return false
}

func lessBy(a, b *models.Listing, field string) bool {
	switch field {
	case models.FieldCreatedAt:
		return a.CreatedAt.Before(b.CreatedAt)
	case models.FieldUpdatedAt:
		return a.UpdatedAt.Before(b.UpdatedAt)
	}
	av, bv := textField(a, field), textField(b, field)
	switch {
	case av == nil:
		return false
	case bv == nil:
		return true
	}
	return *av < *bv
}

// textField returns the value of a text column, nil when it is NULL.
func textField(l *models.Listing, field string) *string {
	switch field {
	case models.FieldID:
		return &l.ID
	case models.FieldTitle:
		return &l.Title
	case models.FieldAddress:
		return &l.Address
	case models.FieldNeighborhood:
		return l.Neighborhood
	case models.FieldPrice:
		return &l.Price
	case models.FieldBedBath:
		return &l.BedBath
	case models.FieldSqft:
		return l.Sqft
	case models.FieldUnitType:
		return &l.UnitType
	case models.FieldAvailability:
		return &l.Availability
	case models.FieldContactName:
		return l.ContactName
	case models.FieldContactPhone:
		return l.ContactPhone
	case models.FieldListingLink:
		return &l.ListingLink
	case models.FieldSummary:
		return l.Summary
	case models.FieldNotesForLivva:
		return l.NotesForLivva
	}
	return nil
}

func cloneListing(l *models.Listing) *models.Listing {
	c := *l
	c.Neighborhood = cloneString(l.Neighborhood)
	c.Sqft = cloneString(l.Sqft)
	c.ContactName = cloneString(l.ContactName)
	c.ContactPhone = cloneString(l.ContactPhone)
	c.Summary = cloneString(l.Summary)
	c.NotesForLivva = cloneString(l.NotesForLivva)
	c.Images = append([]string{}, l.Images...)
	c.Amenities = append([]string{}, l.Amenities...)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
