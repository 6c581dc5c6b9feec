package services

import "rental-search/models"

// QueryLimit caps the rows fetched from storage before refinement.
const QueryLimit = 50

var unitTypeNames = map[models.UnitFilter]string{
	models.TypeStudio:    models.UnitStudio,
	models.TypeRoom:      models.UnitRoom,
	models.TypeApartment: models.UnitApartment,
}

// BuildQuery translates normalized filters into a storage query.
//
// City is matched as a substring of the whole address. The price ordering is
// applied to the stored text and is only a pre-sort; RefineResults re-sorts
// numerically.
func BuildQuery(f models.Filters) models.Query {
	return models.Query{
		Where:   buildPredicate(f),
		OrderBy: buildOrder(f.SortBy),
		Limit:   QueryLimit,
		Columns: models.ListingColumns,
	}
}

func buildPredicate(f models.Filters) models.Predicate {
	where := models.Predicate{Combinator: models.And}

	if f.City != "" {
		where.Clauses = append(where.Clauses, models.Clause{
			Field: models.FieldAddress, Op: models.OpContains, Value: f.City,
		})
	}

	if name, ok := unitTypeNames[f.Type]; ok {
		where.Clauses = append(where.Clauses, models.Clause{
			Field: models.FieldUnitType, Op: models.OpEquals, Value: name,
		})
	}

	if f.Keyword != "" {
		where.Groups = append(where.Groups, models.Predicate{
			Combinator: models.Or,
			Clauses: []models.Clause{
				{Field: models.FieldAddress, Op: models.OpContains, Value: f.Keyword},
				{Field: models.FieldSummary, Op: models.OpContains, Value: f.Keyword},
				{Field: models.FieldNeighborhood, Op: models.OpContains, Value: f.Keyword},
			},
		})
	}

	return where
}

func buildOrder(sortBy models.SortOrder) models.Order {
	switch sortBy {
	case models.SortNewest:
		return models.Order{Field: models.FieldCreatedAt, Descending: true}
	case models.SortPriceDesc:
		return models.Order{Field: models.FieldPrice, Descending: true}
	default:
		return models.Order{Field: models.FieldPrice}
	}
}
