package client

import (
	"slices"
	"strings"
	"time"

	"github.com/rajsexperiments/scanner-final/internal/inventory/types"
)

// FilterCakeStatus keeps items whose serial contains term, ignoring case,
// newest update first. Unparseable timestamps sort last.
func FilterCakeStatus(items []types.CakeStatus, term string) []types.CakeStatus {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]types.CakeStatus, 0, len(items))
	for _, it := range items {
		if term == "" || strings.Contains(strings.ToLower(it.SerialNumber), term) {
			out = append(out, it)
		}
	}
	slices.SortStableFunc(out, func(a, b types.CakeStatus) int {
		return parseTime(b.LastUpdate).Compare(parseTime(a.LastUpdate))
	})
	return out
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SummaryTotals returns the total in-stock item count and the number of
// distinct products.
func SummaryTotals(items []types.SummaryItem) (total, unique int) {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		total += it.Count
		seen[it.ProductID] = struct{}{}
	}
	return total, len(seen)
}

// ProductName resolves the catalog name of the product a serial belongs to.
func (s *Store) ProductName(serial string) (string, bool) {
	id := types.ProductIDFromSerial(serial)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p.Name, true
		}
	}
	return "", false
}

// ClientName resolves a B2B client id, falling back to the id itself.
func (s *Store) ClientName(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clients {
		if c.ClientID == id {
			return c.ClientName
		}
	}
	return id
}
