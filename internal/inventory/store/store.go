package store

import (
	"context"
	"errors"
	"time"

	"github.com/rajsexperiments/scanner-final/internal/inventory/types"
)

var ErrNotFound = errors.New("not found")

// ScanLogStore is the append-only scan log. Lists are newest first.
type ScanLogStore interface {
	AppendScan(ctx context.Context, entry types.ScanLog) (types.ScanLog, error)
	ListScans(ctx context.Context) ([]types.ScanLog, error)
	ClearScans(ctx context.Context) (int64, error)
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type ProductStore interface {
	ListProducts(ctx context.Context) ([]types.Product, error)
	UpsertProduct(ctx context.Context, p types.Product) error
	// DeleteProduct returns ErrNotFound for an unknown id.
	DeleteProduct(ctx context.Context, id string) error
}

// DirectoryStore holds users and B2B clients. User passwords are stored as
// given; callers hash them first.
type DirectoryStore interface {
	ListUsers(ctx context.Context) ([]types.User, error)
	UpsertUser(ctx context.Context, u types.User) error
	ListClients(ctx context.Context) ([]types.B2BClient, error)
	UpsertClient(ctx context.Context, c types.B2BClient) error
}

// ScanTime parses an entry's ISO-8601 timestamp. Entries with an
// unreadable timestamp report ok=false.
func ScanTime(e types.ScanLog) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, e.Timestamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
