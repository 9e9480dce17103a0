package buildquery

import (
	"strings"

	"smartshop-search/internal/models"
)

const (
	productTable = "products"

	searchPredicate = "(name ILIKE {0} OR description ILIKE {0} OR name ILIKE {1})"
	pricePredicate  = "price <= {0}"
)

var productColumns = []string{"id", "name", "description", "price"}

// Build turns an intent into a parameterized catalog query. Search text and
// price only ever travel as arguments. Matches are ordered by ascending
// price and capped at models.CatalogResultLimit rows.
func Build(intent models.SearchIntent) models.CatalogQuery {
	b := NewBuilder(productTable, productColumns...)

	if term := strings.TrimSpace(intent.Search); term != "" {
		// The first-token pattern widens recall for multi-word searches
		// ("chaussures de sport" also matches names containing "chaussures").
		b = b.Where(searchPredicate, "%"+term+"%", "%"+firstToken(term)+"%")
	}
	if intent.HasMaxPrice() {
		b = b.Where(pricePredicate, *intent.MaxPrice)
	}

	b = b.OrderBy(models.CatalogOrderBy).Limit(models.CatalogResultLimit)

	// Every format above is a constant whose placeholders match its args.
	sql, clauses, args, err := b.Render()
	if err != nil {
		panic(err)
	}

	return models.CatalogQuery{
		Clauses: clauses,
		Args:    args,
		OrderBy: models.CatalogOrderBy,
		Limit:   models.CatalogResultLimit,
		SQL:     sql,
	}
}

func firstToken(term string) string {
	fields := strings.Fields(term)
	if len(fields) == 0 {
		return term
	}
	return fields[0]
}
