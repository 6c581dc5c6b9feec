package models

// Listing fields that can appear in a Query.
const (
	FieldID            = "id"
	FieldTitle         = "title"
	FieldAddress       = "address"
	FieldNeighborhood  = "neighborhood"
	FieldPrice         = "price"
	FieldBedBath       = "bed_bath"
	FieldSqft          = "sqft"
	FieldUnitType      = "unit_type"
	FieldAvailability  = "availability"
	FieldContactName   = "contact_name"
	FieldContactPhone  = "contact_phone"
	FieldListingLink   = "listing_link"
	FieldImages        = "images"
	FieldSummary       = "summary"
	FieldAmenities     = "amenities"
	FieldNotesForLivva = "notes_for_livva"
	FieldCreatedAt     = "created_at"
	FieldUpdatedAt     = "updated_at"
)

// ListingColumns is the full column projection of a listing, in scan order.
var ListingColumns = []string{
	FieldID, FieldTitle, FieldAddress, FieldNeighborhood, FieldPrice, FieldBedBath,
	FieldSqft, FieldUnitType, FieldAvailability, FieldContactName, FieldContactPhone,
	FieldListingLink, FieldImages, FieldSummary, FieldAmenities, FieldNotesForLivva,
	FieldCreatedAt, FieldUpdatedAt,
}

// Operator is the comparison applied by a Clause. Both operators are case-insensitive.
type Operator string

const (
	OpContains Operator = "contains"
	OpEquals   Operator = "equals"
)

// Combinator joins the members of a Predicate.
type Combinator string

const (
	And Combinator = "and"
	Or  Combinator = "or"
)

// Clause compares one field against a value.
type Clause struct {
	Field string
	Op    Operator
	Value string
}

// Predicate is a tree of clauses. Clauses and Groups are joined with Combinator.
// An empty predicate matches every row.
type Predicate struct {
	Combinator Combinator
	Clauses    []Clause
	Groups     []Predicate
}

// IsEmpty reports whether the predicate has no conditions.
func (p Predicate) IsEmpty() bool {
	return len(p.Clauses) == 0 && len(p.Groups) == 0
}

// Order is a single-column ordering.
type Order struct {
	Field      string
	Descending bool
}

// Query is a storage-independent listing query.
type Query struct {
	Where   Predicate
	OrderBy Order
	Limit   int
	Columns []string
}
