// ABOUTME: Product catalog persistence for SQLite
// ABOUTME: Upserts, fetches and deletes products; also serves as a catalog source
package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/harper/shopassist/internal/models"
)

// ProductStore handles product persistence
type ProductStore struct {
	db *DB
}

// NewProductStore creates a new ProductStore
func NewProductStore(db *DB) *ProductStore {
	return &ProductStore{db: db}
}

// InsertProducts upserts products in one transaction
func (s *ProductStore) InsertProducts(ctx context.Context, products []models.Product) error {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (id, title, price, description, category, image, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			price = excluded.price,
			description = excluded.description,
			category = excluded.category,
			image = excluded.image,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range products {
		if _, err := stmt.ExecContext(ctx, p.ID, p.Title, p.Price, p.Description, p.Category, p.Image); err != nil {
			return fmt.Errorf("failed to insert product %d: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// FetchProducts returns the products with the given ids, ordered by id.
// Unknown ids are skipped.
func (s *ProductStore) FetchProducts(ctx context.Context, ids []int) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	placeholders, args := inClause(ids)
	return s.query(ctx, `
		SELECT id, title, price, description, category, image
		FROM products
		WHERE id IN (`+placeholders+`)
		ORDER BY id ASC
	`, args...)
}

// FetchAll returns every product ordered by id
func (s *ProductStore) FetchAll(ctx context.Context) ([]models.Product, error) {
	return s.query(ctx, `
		SELECT id, title, price, description, category, image
		FROM products
		ORDER BY id ASC
	`)
}

// Products returns the stored catalog snapshot
func (s *ProductStore) Products(ctx context.Context) ([]models.Product, error) {
	return s.FetchAll(ctx)
}

// Count returns the number of stored products
func (s *ProductStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, err
}

// DeleteProducts removes the products with the given ids and returns how many were deleted
func (s *ProductStore) DeleteProducts(ctx context.Context, ids []int) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders, args := inClause(ids)
	result, err := s.db.conn.ExecContext(ctx, `DELETE FROM products WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete products: %w", err)
	}
	return result.RowsAffected()
}

// DeleteAll removes every product and returns how many were deleted
func (s *ProductStore) DeleteAll(ctx context.Context) (int64, error) {
	result, err := s.db.conn.ExecContext(ctx, `DELETE FROM products`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete products: %w", err)
	}
	return result.RowsAffected()
}

func (s *ProductStore) query(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := s.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Price, &p.Description, &p.Category, &p.Image); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func inClause(ids []int) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?,", len(ids)), ","), args
}
