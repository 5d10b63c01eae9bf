// Package memory holds in-process stores for tests and throwaway dev
// ledgers.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rajsexperiments/scanner-final/internal/inventory/store"
	"github.com/rajsexperiments/scanner-final/internal/inventory/types"
)

// Store implements store.ScanLogStore, store.ProductStore and
// store.DirectoryStore.
type Store struct {
	mu       sync.RWMutex
	scans    []types.ScanLog // oldest first
	products map[string]types.Product
	users    map[string]types.User // keyed by lower-cased email
	clients  map[string]types.B2BClient
}

func New() *Store {
	return &Store{
		products: make(map[string]types.Product),
		users:    make(map[string]types.User),
		clients:  make(map[string]types.B2BClient),
	}
}

// ── Scan log ───────────────────────────────────────────────────

func (s *Store) AppendScan(_ context.Context, e types.ScanLog) (types.ScanLog, error) {
	if e.Timestamp == "" {
		e.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scans = append(s.scans, e)
	return e, nil
}

func (s *Store) ListScans(context.Context) ([]types.ScanLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.ScanLog, len(s.scans))
	for i, e := range s.scans {
		out[len(s.scans)-1-i] = e
	}
	return out, nil
}

func (s *Store) ClearScans(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.scans))
	s.scans = nil
	return n, nil
}

func (s *Store) PruneOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.scans[:0]
	var deleted int64
	for _, e := range s.scans {
		if t, ok := store.ScanTime(e); ok && t.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.scans = kept
	return deleted, nil
}

// ── Catalog ────────────────────────────────────────────────────

func (s *Store) ListProducts(context.Context) ([]types.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpsertProduct(_ context.Context, p types.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
	return nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

// ── Directory ──────────────────────────────────────────────────

func (s *Store) ListUsers(context.Context) ([]types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s *Store) UpsertUser(_ context.Context, u types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[strings.ToLower(u.Email)] = u
	return nil
}

func (s *Store) ListClients(context.Context) ([]types.B2BClient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.B2BClient, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClientID < out[j].ClientID })
	return out, nil
}

func (s *Store) UpsertClient(_ context.Context, c types.B2BClient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.ClientID] = c
	return nil
}

var (
	_ store.ScanLogStore   = (*Store)(nil)
	_ store.ProductStore   = (*Store)(nil)
	_ store.DirectoryStore = (*Store)(nil)
)
