package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rajsexperiments/scanner-final/internal/inventory/store"
)

type SeedDevOptions struct {
	// Password for the seeded users. Required.
	Password string
}

// SeedDev inserts the development fixtures. Rows that already exist are
// left alone, so edits made through the ledger survive a restart.
func SeedDev(ctx context.Context, db *sql.DB, opt SeedDevOptions) error {
	fx, err := store.DevFixtures(opt.Password)
	if err != nil {
		return err
	}
	now := time.Now().UTC().UnixMilli()

	for _, p := range fx.Products {
		if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO products(
  product_id, name, category, unit_of_measure, unit_cost, supplier_name,
  reorder_level, reorder_quantity, storage_location, shelf_life_days,
  is_perishable, created_at_ms, updated_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
			p.ID, p.Name, p.Category, p.UnitOfMeasure, p.UnitCost, p.SupplierName,
			p.ReorderLevel, p.ReorderQuantity, p.StorageLocation, p.ShelfLifeDays,
			boolInt(p.IsPerishable), now, now,
		); err != nil {
			return fmt.Errorf("seed product %s: %w", p.ID, err)
		}
	}

	for _, u := range fx.Users {
		if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO users(email, name, role, location, password, updated_at_ms)
VALUES (?, ?, ?, ?, ?, ?);`,
			u.Email, u.Name, string(u.Role), u.Location, u.Password, now,
		); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}

	for _, c := range fx.Clients {
		if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO b2b_clients(client_id, client_name, contact_person, address, updated_at_ms)
VALUES (?, ?, ?, ?, ?);`,
			c.ClientID, c.ClientName, c.ContactPerson, c.Address, now,
		); err != nil {
			return fmt.Errorf("seed client %s: %w", c.ClientID, err)
		}
	}

	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
