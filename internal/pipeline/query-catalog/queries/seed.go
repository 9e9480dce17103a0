package queries

import (
	"context"
	"database/sql"
	"fmt"

	"smartshop-search/internal/models"
)

const insertProductSQL = `INSERT INTO products (name, description, price) VALUES ($1, $2, $3)`

// SeedProducts inserts products in one transaction. With replace set the
// table is truncated first and ids restart at 1.
func SeedProducts(ctx context.Context, db *sql.DB, products []models.Product, replace bool) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if replace {
		if _, err := tx.ExecContext(ctx, `TRUNCATE products RESTART IDENTITY`); err != nil {
			return 0, fmt.Errorf("truncate products: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, insertProductSQL)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, p := range products {
		var description interface{}
		if p.Description != "" {
			description = p.Description
		}
		if _, err := stmt.ExecContext(ctx, p.Name, description, p.Price); err != nil {
			return 0, fmt.Errorf("insert product %d (%s): %w", i, p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(products), nil
}
