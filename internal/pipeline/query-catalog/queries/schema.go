package queries

import "context"

const createProductsSQL = `CREATE TABLE IF NOT EXISTS products (
    id SERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    description TEXT,
    price DECIMAL(10,2) NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// EnsureProductsTable creates the products table when it is missing.
func EnsureProductsTable(ctx context.Context, db Querier) error {
	_, err := db.ExecContext(ctx, createProductsSQL)
	return err
}
