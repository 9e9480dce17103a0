package queries

import (
	"context"
	"database/sql"
	"errors"

	"smartshop-search/internal/models"
)

const (
	listProductsSQL  = `SELECT id, name, description, price FROM products ORDER BY id LIMIT $1 OFFSET $2`
	countProductsSQL = `SELECT COUNT(*) FROM products`
	pingSQL          = `SELECT 1`
)

var ErrNoStatement = errors.New("catalog query has no SQL")

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SearchProducts runs a built catalog query.
func SearchProducts(ctx context.Context, db Querier, q models.CatalogQuery) ([]models.Product, error) {
	if q.SQL == "" {
		return nil, ErrNoStatement
	}
	rows, err := db.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

// ListProducts returns one page ordered by id.
func ListProducts(ctx context.Context, db Querier, limit, offset int) ([]models.Product, error) {
	rows, err := db.QueryContext(ctx, listProductsSQL, limit, offset)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

func CountProducts(ctx context.Context, db Querier) (int, error) {
	var total int
	if err := db.QueryRowContext(ctx, countProductsSQL).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func Ping(ctx context.Context, db Querier) error {
	var one int
	return db.QueryRowContext(ctx, pingSQL).Scan(&one)
}

func scanProducts(rows *sql.Rows) ([]models.Product, error) {
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		var (
			p           models.Product
			description sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &description, &p.Price); err != nil {
			return nil, err
		}
		p.Description = description.String
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}
