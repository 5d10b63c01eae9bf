package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/rajsexperiments/scanner-final/internal/db"
	"github.com/rajsexperiments/scanner-final/internal/inventory/store"
	"github.com/rajsexperiments/scanner-final/internal/inventory/types"
)

type ProductStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewProductStore(db *sql.DB, writer *dbpkg.Worker) *ProductStore {
	return &ProductStore{db: db, writer: writer}
}

func (s *ProductStore) ListProducts(ctx context.Context) ([]types.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT product_id, name, category, unit_of_measure, unit_cost, supplier_name,
       reorder_level, reorder_quantity, storage_location, shelf_life_days, is_perishable
FROM products
ORDER BY product_id;`)
	if err != nil {
		return nil, fmt.Errorf("ListProducts: %w", err)
	}
	defer rows.Close()

	out := []types.Product{}
	for rows.Next() {
		var (
			p          types.Product
			perishable int
		)
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Category, &p.UnitOfMeasure, &p.UnitCost, &p.SupplierName,
			&p.ReorderLevel, &p.ReorderQuantity, &p.StorageLocation, &p.ShelfLifeDays, &perishable,
		); err != nil {
			return nil, fmt.Errorf("ListProducts scan: %w", err)
		}
		p.IsPerishable = perishable != 0
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListProducts rows: %w", err)
	}
	return out, nil
}

func (s *ProductStore) UpsertProduct(ctx context.Context, p types.Product) error {
	nowMs := time.Now().UTC().UnixMilli()
	perishable := 0
	if p.IsPerishable {
		perishable = 1
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO products(
  product_id, name, category, unit_of_measure, unit_cost, supplier_name,
  reorder_level, reorder_quantity, storage_location, shelf_life_days,
  is_perishable, created_at_ms, updated_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(product_id) DO UPDATE SET
  name = excluded.name,
  category = excluded.category,
  unit_of_measure = excluded.unit_of_measure,
  unit_cost = excluded.unit_cost,
  supplier_name = excluded.supplier_name,
  reorder_level = excluded.reorder_level,
  reorder_quantity = excluded.reorder_quantity,
  storage_location = excluded.storage_location,
  shelf_life_days = excluded.shelf_life_days,
  is_perishable = excluded.is_perishable,
  updated_at_ms = excluded.updated_at_ms;`,
			p.ID, p.Name, p.Category, p.UnitOfMeasure, p.UnitCost, p.SupplierName,
			p.ReorderLevel, p.ReorderQuantity, p.StorageLocation, p.ShelfLifeDays,
			perishable, nowMs, nowMs,
		); err != nil {
			return fmt.Errorf("UpsertProduct: %w", err)
		}
		return nil
	})
}

func (s *ProductStore) DeleteProduct(ctx context.Context, id string) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE product_id = ?;`, id)
		if err != nil {
			return fmt.Errorf("DeleteProduct: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("DeleteProduct rows: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("product %q: %w", id, store.ErrNotFound)
		}
		return nil
	})
}

var _ store.ProductStore = (*ProductStore)(nil)
