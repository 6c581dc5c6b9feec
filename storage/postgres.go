package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"rental-search/models"
	"rental-search/utils"
)

var (
	listingColumns = columnSet(models.ListingColumns...)
	// id is a UUID column and cannot be matched as text.
	textColumns = columnSet(
		models.FieldTitle, models.FieldAddress, models.FieldNeighborhood,
		models.FieldPrice, models.FieldBedBath, models.FieldSqft, models.FieldUnitType,
		models.FieldAvailability, models.FieldContactName, models.FieldContactPhone,
		models.FieldListingLink, models.FieldSummary, models.FieldNotesForLivva,
	)
	likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
)

func columnSet(cols ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		set[c] = struct{}{}
	}
	return set
}

// PostgresStore persists listings in PostgreSQL.
type PostgresStore struct {
	db        *sql.DB
	batchSize int
}

// NewPostgresStore opens a connection to PostgreSQL, waits until it answers,
// runs schema migrations and returns a ready-to-use PostgresStore.
func NewPostgresStore(ctx context.Context, dsn string, batchSize int, retry *utils.RetryConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := retry.Do(ctx, "postgres-ping", func(ctx context.Context) error {
		return db.PingContext(ctx)
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	ps := &PostgresStore{db: db, batchSize: clampBatchSize(batchSize)}
	if err := ps.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return ps, nil
}

// maxBindParams is the PostgreSQL limit on parameters in one statement.
const maxBindParams = 65535

// clampBatchSize keeps a multi-row INSERT within maxBindParams.
func clampBatchSize(n int) int {
	if n < 1 {
		return 50
	}
	return min(n, maxBindParams/len(models.ListingColumns))
}

func (ps *PostgresStore) migrate(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS listings (
			id              UUID        PRIMARY KEY,
			title           TEXT        NOT NULL,
			address         TEXT        NOT NULL,
			neighborhood    TEXT,
			price           TEXT        NOT NULL,
			bed_bath        TEXT        NOT NULL,
			sqft            TEXT,
			unit_type       TEXT        NOT NULL,
			availability    TEXT        NOT NULL,
			contact_name    TEXT,
			contact_phone   TEXT,
			listing_link    TEXT        NOT NULL,
			images          TEXT[]      NOT NULL DEFAULT '{}',
			summary         TEXT,
			amenities       TEXT[]      NOT NULL DEFAULT '{}',
			notes_for_livva TEXT,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_unit_type  ON listings(unit_type);
		CREATE INDEX IF NOT EXISTS idx_listings_created_at ON listings(created_at);
		CREATE INDEX IF NOT EXISTS idx_listings_price      ON listings(price);
	`)
	return err
}

// Find runs q and scans the projected columns into listings.
func (ps *PostgresStore) Find(ctx context.Context, q models.Query) ([]*models.Listing, error) {
	query, args, err := BuildSelect(q)
	if err != nil {
		return nil, err
	}
	cols := q.Columns
	if len(cols) == 0 {
		cols = models.ListingColumns
	}

	rows, err := ps.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: find: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l := &models.Listing{}
		dest, finish := scanTargets(l, cols)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		finish()
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: find: %w", err)
	}
	return listings, nil
}

// FetchAll retrieves every stored listing, newest first.
func (ps *PostgresStore) FetchAll(ctx context.Context) ([]*models.Listing, error) {
	return ps.Find(ctx, models.Query{
		OrderBy: models.Order{Field: models.FieldCreatedAt, Descending: true},
		Columns: models.ListingColumns,
	})
}

// Replace deletes all listings and inserts the given ones in one
// transaction; on any error nothing changes.
func (ps *PostgresStore) Replace(ctx context.Context, listings []*models.Listing) error {
	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM listings"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}

	for i := 0; i < len(listings); i += ps.batchSize {
		end := i + ps.batchSize
		if end > len(listings) {
			end = len(listings)
		}
		query, args := buildInsert(listings[i:end])
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("postgres: insert rows %d-%d: %w", i+1, end, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

// UpdateImages overwrites the images of one listing.
func (ps *PostgresStore) UpdateImages(ctx context.Context, id string, images []string) error {
	res, err := ps.db.ExecContext(ctx,
		`UPDATE listings SET images = $1, updated_at = NOW() WHERE id = $2`,
		pq.Array(images), id)
	if err != nil {
		return fmt.Errorf("postgres: update images: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("postgres: listing %q not found", id)
	}
	return nil
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

// BuildSelect renders q as a parameterized SELECT over the listings table.
// Every field name is checked against the column whitelist.
func BuildSelect(q models.Query) (string, []any, error) {
	if err := validateQuery(q); err != nil {
		return "", nil, err
	}
	cols := q.Columns
	if len(cols) == 0 {
		cols = models.ListingColumns
	}

	var b strings.Builder
	var args []any
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString(" FROM listings")

	if !q.Where.IsEmpty() {
		b.WriteString(" WHERE ")
		b.WriteString(renderPredicate(q.Where, &args))
	}

	if q.OrderBy.Field != "" {
		dir := "ASC"
		if q.OrderBy.Descending {
			dir = "DESC"
		}
		fmt.Fprintf(&b, " ORDER BY %s %s, id ASC", q.OrderBy.Field, dir)
	}

	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	return b.String(), args, nil
}

func renderPredicate(p models.Predicate, args *[]any) string {
	parts := make([]string, 0, len(p.Clauses)+len(p.Groups))
	for _, c := range p.Clauses {
		parts = append(parts, renderClause(c, args))
	}
	for _, g := range p.Groups {
		if g.IsEmpty() {
			continue
		}
		parts = append(parts, "("+renderPredicate(g, args)+")")
	}

	sep := " AND "
	if p.Combinator == models.Or {
		sep = " OR "
	}
	return strings.Join(parts, sep)
}

func renderClause(c models.Clause, args *[]any) string {
	if c.Op == models.OpEquals {
		*args = append(*args, c.Value)
		return fmt.Sprintf("LOWER(%s) = LOWER($%d)", c.Field, len(*args))
	}
	*args = append(*args, "%"+likeEscaper.Replace(c.Value)+"%")
	return fmt.Sprintf(`%s ILIKE $%d ESCAPE '\'`, c.Field, len(*args))
}

func buildInsert(batch []*models.Listing) (string, []any) {
	cols := models.ListingColumns
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*len(cols))

	for idx, l := range batch {
		placeholders := make([]string, len(cols))
		for i := range cols {
			placeholders[i] = fmt.Sprintf("$%d", idx*len(cols)+i+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			l.ID, l.Title, l.Address, l.Neighborhood, l.Price, l.BedBath,
			l.Sqft, l.UnitType, l.Availability, l.ContactName, l.ContactPhone,
			l.ListingLink, pq.Array(nonNil(l.Images)), l.Summary, pq.Array(nonNil(l.Amenities)),
			l.NotesForLivva, l.CreatedAt, l.UpdatedAt)
	}

	query := fmt.Sprintf("INSERT INTO listings (%s) VALUES %s",
		strings.Join(cols, ", "), strings.Join(valueStrings, ","))
	return query, valueArgs
}

// scanTargets returns Scan destinations for cols and a func that copies the
// nullable columns into l once the row is scanned.
func scanTargets(l *models.Listing, cols []string) ([]any, func()) {
	dest := make([]any, len(cols))
	nulls := make(map[string]*sql.NullString)

	for i, c := range cols {
		switch c {
		case models.FieldID:
			dest[i] = &l.ID
		case models.FieldTitle:
			dest[i] = &l.Title
		case models.FieldAddress:
			dest[i] = &l.Address
		case models.FieldPrice:
			dest[i] = &l.Price
		case models.FieldBedBath:
			dest[i] = &l.BedBath
		case models.FieldUnitType:
			dest[i] = &l.UnitType
		case models.FieldAvailability:
			dest[i] = &l.Availability
		case models.FieldListingLink:
			dest[i] = &l.ListingLink
		case models.FieldImages:
			dest[i] = pq.Array(&l.Images)
		case models.FieldAmenities:
			dest[i] = pq.Array(&l.Amenities)
		case models.FieldCreatedAt:
			dest[i] = &l.CreatedAt
		case models.FieldUpdatedAt:
			dest[i] = &l.UpdatedAt
		default:
			ns := &sql.NullString{}
			nulls[c] = ns
			dest[i] = ns
		}
	}

	return dest, func() {
		for c, ns := range nulls {
			var v *string
			if ns.Valid {
				s := ns.String
				v = &s
			}
			switch c {
			case models.FieldNeighborhood:
				l.Neighborhood = v
			case models.FieldSqft:
				l.Sqft = v
			case models.FieldContactName:
				l.ContactName = v
			case models.FieldContactPhone:
				l.ContactPhone = v
			case models.FieldSummary:
				l.Summary = v
			case models.FieldNotesForLivva:
				l.NotesForLivva = v
			}
		}
		l.Images = nonNil(l.Images)
		l.Amenities = nonNil(l.Amenities)
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
