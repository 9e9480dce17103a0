// internal/models/query_types.go
package models

const (
	// CatalogOrderBy is the only ordering the chat search applies.
	CatalogOrderBy = "price ASC"
	// CatalogResultLimit caps every intent-driven query.
	CatalogResultLimit = 10
)

// CatalogQuery is a fully rendered, parameterized catalog query. Distinct
// placeholder indices in SQL are exactly $1..$len(Args).
type CatalogQuery struct {
	Clauses []string      `json:"clauses"`
	Args    []interface{} `json:"args"`
	OrderBy string        `json:"orderBy"`
	Limit   int           `json:"limit"`
	SQL     string        `json:"sql"`
}

// HasPredicates reports whether the query restricts rows at all.
func (q CatalogQuery) HasPredicates() bool {
	return len(q.Clauses) > 0
}
