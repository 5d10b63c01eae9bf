package ledgerserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/rajsexperiments/scanner-final/internal/inventory/store"
	"github.com/rajsexperiments/scanner-final/internal/inventory/types"
)

func decodePayload(payload json.RawMessage, out any) error {
	if len(payload) == 0 || string(payload) == "null" {
		return reject("missing payload")
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return reject("invalid payload: %v", err)
	}
	return nil
}

// ── Scan log ───────────────────────────────────────────────────

func (s *Server) addScan(ctx context.Context, payload json.RawMessage) (any, error) {
	var e types.ScanLog
	if err := decodePayload(payload, &e); err != nil {
		return nil, err
	}
	e.SerialNumber = strings.TrimSpace(e.SerialNumber)
	e.Location = strings.TrimSpace(e.Location)
	e.ClientID = strings.TrimSpace(e.ClientID)

	switch {
	case e.SerialNumber == "":
		return nil, reject("serialNumber is required")
	case !e.ScanEvent.Valid():
		return nil, reject("unknown scanEvent %q", e.ScanEvent)
	case e.Location == "":
		return nil, reject("location is required")
	case e.ScanEvent.RequiresClient() && e.ClientID == "":
		return nil, reject("clientId is required for %s", e.ScanEvent)
	}
	if !e.ScanEvent.RequiresClient() {
		e.ClientID = ""
	}
	if e.Timestamp == "" {
		e.Timestamp = s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
	}

	return s.stores.Scans.AppendScan(ctx, e)
}

func (s *Server) getLogs(ctx context.Context, _ json.RawMessage) (any, error) {
	return s.stores.Scans.ListScans(ctx)
}

func (s *Server) clearLogs(ctx context.Context, _ json.RawMessage) (any, error) {
	n, err := s.stores.Scans.ClearScans(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("scan log cleared", "deleted", n)
	return map[string]int64{"deleted": n}, nil
}

// ── Catalog ────────────────────────────────────────────────────

func (s *Server) getProducts(ctx context.Context, _ json.RawMessage) (any, error) {
	return s.stores.Products.ListProducts(ctx)
}

func (s *Server) addProduct(ctx context.Context, payload json.RawMessage) (any, error) {
	var p types.Product
	if err := decodePayload(payload, &p); err != nil {
		return nil, err
	}
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	if p.ID == "" || p.Name == "" {
		return nil, reject("product id and name are required")
	}
	if err := s.stores.Products.UpsertProduct(ctx, p); err != nil {
		return nil, err
	}
	return s.stores.Products.ListProducts(ctx)
}

func (s *Server) deleteProduct(ctx context.Context, payload json.RawMessage) (any, error) {
	var req struct {
		ID string `json:"id"`
	}
	if err := decodePayload(payload, &req); err != nil {
		return nil, err
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return nil, reject("product id is required")
	}
	if err := s.stores.Products.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, reject("product %q not found", id)
		}
		return nil, err
	}
	return s.stores.Products.ListProducts(ctx)
}

// ── Directory ──────────────────────────────────────────────────

func (s *Server) getUsers(ctx context.Context, _ json.RawMessage) (any, error) {
	return s.stores.Directory.ListUsers(ctx)
}

func (s *Server) getB2BClients(ctx context.Context, _ json.RawMessage) (any, error) {
	return s.stores.Directory.ListClients(ctx)
}

// ── Derived views ──────────────────────────────────────────────

func (s *Server) getSummary(ctx context.Context, _ json.RawMessage) (any, error) {
	scans, err := s.stores.Scans.ListScans(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.stores.Products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return Summary(scans, products), nil
}

func (s *Server) getCakeStatus(ctx context.Context, _ json.RawMessage) (any, error) {
	scans, err := s.stores.Scans.ListScans(ctx)
	if err != nil {
		return nil, err
	}
	return CakeStatuses(scans), nil
}

func (s *Server) getLiveOperations(ctx context.Context, _ json.RawMessage) (any, error) {
	scans, err := s.stores.Scans.ListScans(ctx)
	if err != nil {
		return nil, err
	}
	return LiveOperations(scans, s.now().In(s.loc)), nil
}
