package store

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/rajsexperiments/scanner-final/internal/inventory/types"
)

// Fixtures is the starter data for a development ledger.
type Fixtures struct {
	Products []types.Product
	Users    []types.User
	Clients  []types.B2BClient
}

// DevFixtures returns a small catalog, one manager, one scanner and one
// B2B client. Both users get password, stored as a bcrypt hash.
func DevFixtures(password string) (Fixtures, error) {
	if strings.TrimSpace(password) == "" {
		return Fixtures{}, fmt.Errorf("dev fixtures: empty seed password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Fixtures{}, fmt.Errorf("dev fixtures: hash password: %w", err)
	}

	return Fixtures{
		Products: []types.Product{
			{ID: "OLV-001", Name: "Olive Oil Cake", Category: "Cakes", UnitOfMeasure: "piece", ShelfLifeDays: 5, IsPerishable: true},
			{ID: "LEM-002", Name: "Lemon Cake", Category: "Cakes", UnitOfMeasure: "piece", ShelfLifeDays: 4, IsPerishable: true},
			{ID: "ALM-003", Name: "Almond Biscotti", Category: "Biscuits", UnitOfMeasure: "box", ShelfLifeDays: 60},
		},
		Users: []types.User{
			{Email: "manager@example.com", Name: "Warehouse Manager", Role: types.RoleWarehouseManager, Location: "Warehouse", Password: string(hash)},
			{Email: "scanner@example.com", Name: "Scanner", Role: types.RoleScanner, Location: "Nice-Boutique", Password: string(hash)},
		},
		Clients: []types.B2BClient{
			{ClientID: "C-100", ClientName: "Hôtel Riviera", ContactPerson: "Front Desk", Address: "1 Promenade des Anglais, Nice"},
		},
	}, nil
}

// Load writes fixtures through the store interfaces.
func (f Fixtures) Load(ctx context.Context, p ProductStore, d DirectoryStore) error {
	for _, prod := range f.Products {
		if err := p.UpsertProduct(ctx, prod); err != nil {
			return fmt.Errorf("seed product %s: %w", prod.ID, err)
		}
	}
	for _, u := range f.Users {
		if err := d.UpsertUser(ctx, u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}
	for _, c := range f.Clients {
		if err := d.UpsertClient(ctx, c); err != nil {
			return fmt.Errorf("seed client %s: %w", c.ClientID, err)
		}
	}
	return nil
}
