package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rajsexperiments/scanner-final/internal/inventory/types"
	"github.com/rajsexperiments/scanner-final/internal/notify"
)

var ErrForbidden = errors.New("only a Warehouse Manager can clear logs")

// Collection names one cached data set. The value doubles as the label in
// fetch failure notifications.
type Collection string

const (
	Logs           Collection = "logs"
	Summary        Collection = "summary"
	Products       Collection = "products"
	B2BClients     Collection = "B2B clients"
	Users          Collection = "users"
	CakeStatus     Collection = "cake status"
	LiveOperations Collection = "live operations"
)

const defaultRefreshTimeout = 30 * time.Second

type Option func(*Store)

func WithNotifier(n notify.Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithRefreshTimeout bounds the background re-fetches triggered by
// mutations.
func WithRefreshTimeout(d time.Duration) Option {
	return func(s *Store) { s.refreshTimeout = d }
}

// Store is the client-side cache of ledger data. Collections are only
// changed through its operations; mutation responses that carry a fresh
// collection replace the cached one wholesale.
type Store struct {
	api            API
	notifier       notify.Notifier
	logger         *slog.Logger
	refreshTimeout time.Duration
	bg             sync.WaitGroup

	mu         sync.RWMutex
	logs       []types.ScanLog
	summary    []types.SummaryItem
	products   []types.Product
	clients    []types.B2BClient
	users      []types.User
	cakeStatus []types.CakeStatus
	liveOps    *types.LiveOperationsData
	loading    map[Collection]int
	errs       map[Collection]error
}

func NewStore(api API, opts ...Option) *Store {
	s := &Store{
		api:            api,
		notifier:       notify.Discard{},
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		refreshTimeout: defaultRefreshTimeout,
		loading:        make(map[Collection]int),
		errs:           make(map[Collection]error),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ── Fetch ──────────────────────────────────────────────────────

func (s *Store) FetchLogs(ctx context.Context) error {
	return fetch(ctx, s, Logs, s.api.Logs, func(v []types.ScanLog) { s.logs = v })
}

func (s *Store) FetchSummary(ctx context.Context) error {
	return fetch(ctx, s, Summary, s.api.Summary, func(v []types.SummaryItem) { s.summary = v })
}

func (s *Store) FetchProducts(ctx context.Context) error {
	return fetch(ctx, s, Products, s.api.Products, func(v []types.Product) { s.products = v })
}

func (s *Store) FetchB2BClients(ctx context.Context) error {
	return fetch(ctx, s, B2BClients, s.api.B2BClients, func(v []types.B2BClient) { s.clients = v })
}

func (s *Store) FetchUsers(ctx context.Context) error {
	return fetch(ctx, s, Users, s.api.Users, func(v []types.User) { s.users = v })
}

func (s *Store) FetchCakeStatus(ctx context.Context) error {
	return fetch(ctx, s, CakeStatus, s.api.CakeStatus, func(v []types.CakeStatus) { s.cakeStatus = v })
}

func (s *Store) FetchLiveOperations(ctx context.Context) error {
	return fetch(ctx, s, LiveOperations, s.api.LiveOperations, func(v types.LiveOperationsData) { s.liveOps = &v })
}

// Fetch refreshes one collection by name.
func (s *Store) Fetch(ctx context.Context, c Collection) error {
	switch c {
	case Logs:
		return s.FetchLogs(ctx)
	case Summary:
		return s.FetchSummary(ctx)
	case Products:
		return s.FetchProducts(ctx)
	case B2BClients:
		return s.FetchB2BClients(ctx)
	case Users:
		return s.FetchUsers(ctx)
	case CakeStatus:
		return s.FetchCakeStatus(ctx)
	case LiveOperations:
		return s.FetchLiveOperations(ctx)
	default:
		return fmt.Errorf("unknown collection %q", c)
	}
}

// fetch runs call and, on success only, hands the result to assign under
// the write lock.
func fetch[T any](ctx context.Context, s *Store, c Collection, call func(context.Context) (T, error), assign func(T)) error {
	s.beginLoading(c)
	defer s.endLoading(c)

	v, err := call(ctx)
	if err != nil {
		s.mu.Lock()
		s.errs[c] = err
		s.mu.Unlock()
		s.logger.Warn("fetch failed", "collection", string(c), "err", err)
		s.notifier.Notify(notify.Error, notify.Msg(notify.KeyFetchFailed, string(c), err.Error()))
		return fmt.Errorf("fetch %s: %w", c, err)
	}

	s.mu.Lock()
	assign(v)
	delete(s.errs, c)
	s.mu.Unlock()
	return nil
}

// ── Mutations ──────────────────────────────────────────────────

// AppendScan records entry with the ledger and prepends the stored entry
// the ledger returned. A ledger that acknowledges without echoing the row
// gets its log re-fetched instead; the cache never holds a locally built
// entry. Summary and the derived dashboards are re-fetched in the
// background.
func (s *Store) AppendScan(ctx context.Context, entry types.ScanLog) (types.ScanLog, error) {
	saved, err := s.api.AddScan(ctx, entry)
	if err != nil {
		s.logger.Warn("append scan failed", "serial", entry.SerialNumber, "err", err)
		s.notifier.Notify(notify.Error, notify.Msg(notify.KeyScanFailed, err.Error()))
		return types.ScanLog{}, err
	}

	if saved.SerialNumber == "" {
		// A failed re-fetch is reported by fetch; the scan itself is stored.
		_ = s.FetchLogs(ctx)
		saved = entry
	} else {
		s.mu.Lock()
		s.logs = append([]types.ScanLog{saved}, s.logs...)
		s.mu.Unlock()
	}

	s.notifier.Notify(notify.Success, notify.Msg(notify.KeyScanLogged, saved.SerialNumber))
	s.refresh(Summary, CakeStatus, LiveOperations)
	return saved, nil
}

// ClearAllLogs erases the ledger's scan log. Only a Warehouse Manager may
// do this; caches are cleared after the ledger confirms.
func (s *Store) ClearAllLogs(ctx context.Context, actor types.User) error {
	if actor.Role != types.RoleWarehouseManager {
		s.notifier.Notify(notify.Error, notify.Msg(notify.KeyClearForbidden))
		return ErrForbidden
	}

	s.beginLoading(Logs)
	s.beginLoading(Summary)
	err := s.api.ClearLogs(ctx)
	if err == nil {
		s.mu.Lock()
		s.logs = nil
		s.summary = nil
		s.mu.Unlock()
	}
	s.endLoading(Summary)
	s.endLoading(Logs)

	if err != nil {
		s.logger.Warn("clear logs failed", "err", err)
		s.notifier.Notify(notify.Error, notify.Msg(notify.KeyClearFailed, err.Error()))
		return err
	}
	s.logger.Info("logs cleared", "by", actor.Email)
	s.notifier.Notify(notify.Success, notify.Msg(notify.KeyLogsCleared))
	s.refresh(Summary)
	return nil
}

// AddProduct creates or updates p and replaces the product cache with the
// catalog the ledger returns.
func (s *Store) AddProduct(ctx context.Context, p types.Product) error {
	products, err := s.api.SaveProduct(ctx, p)
	if err != nil {
		s.notifier.Notify(notify.Error, notify.Msg(notify.KeyProductSaveFailed, err.Error()))
		return err
	}
	s.mu.Lock()
	s.products = products
	s.mu.Unlock()

	s.notifier.Notify(notify.Success, notify.Msg(notify.KeyProductSaved, p.Name))
	s.refresh(Summary)
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	products, err := s.api.DeleteProduct(ctx, id)
	if err != nil {
		s.notifier.Notify(notify.Error, notify.Msg(notify.KeyProductDeleteFailed, err.Error()))
		return err
	}
	s.mu.Lock()
	s.products = products
	s.mu.Unlock()

	s.notifier.Notify(notify.Success, notify.Msg(notify.KeyProductDeleted))
	s.refresh(Summary)
	return nil
}

// refresh re-fetches collections in the background. Failures are surfaced
// by fetch; nothing waits on them except Wait.
func (s *Store) refresh(colls ...Collection) {
	for _, c := range colls {
		s.bg.Add(1)
		go func(c Collection) {
			defer s.bg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), s.refreshTimeout)
			defer cancel()
			_ = s.Fetch(ctx, c)
		}(c)
	}
}

// Wait blocks until every background refresh started so far has finished.
func (s *Store) Wait() { s.bg.Wait() }

// ── State ──────────────────────────────────────────────────────

func (s *Store) beginLoading(c Collection) {
	s.mu.Lock()
	s.loading[c]++
	s.mu.Unlock()
}

func (s *Store) endLoading(c Collection) {
	s.mu.Lock()
	if s.loading[c] > 0 {
		s.loading[c]--
	}
	s.mu.Unlock()
}

// Loading reports whether a request for c is in flight.
func (s *Store) Loading(c Collection) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading[c] > 0
}

// Err returns the last fetch error for c, cleared by the next success.
func (s *Store) Err(c Collection) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errs[c]
}

func (s *Store) Logs() []types.ScanLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.logs)
}

func (s *Store) Summary() []types.SummaryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.summary)
}

func (s *Store) Products() []types.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.products)
}

func (s *Store) B2BClients() []types.B2BClient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.clients)
}

func (s *Store) Users() []types.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.users)
}

func (s *Store) CakeStatus() []types.CakeStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.cakeStatus)
}

// LiveOperations returns the last fetched rollup, or false if none has
// been fetched yet.
func (s *Store) LiveOperations() (types.LiveOperationsData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.liveOps == nil {
		return types.LiveOperationsData{}, false
	}
	return *s.liveOps, true
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
