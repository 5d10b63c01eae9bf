package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/rajsexperiments/scanner-final/internal/inventory/ledger"
	"github.com/rajsexperiments/scanner-final/internal/inventory/types"
)

var (
	ErrMissingSerial      = errors.New("serialNumber is required")
	ErrMissingScanEvent   = errors.New("scanEvent is required")
	ErrMissingLocation    = errors.New("location is required")
	ErrMissingClientID    = errors.New("clientId is required for DELIVERY_B2B scans")
	ErrMissingProductID   = errors.New("product id is required")
	ErrMissingProductName = errors.New("product name is required")
)

// IsValidation reports whether err is one of the request validation
// errors above (HTTP 400 material).
func IsValidation(err error) bool {
	for _, v := range []error{
		ErrMissingSerial, ErrMissingScanEvent, ErrMissingLocation,
		ErrMissingClientID, ErrMissingProductID, ErrMissingProductName,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

// Ledger is the subset of the ledger client the proxy needs.
type Ledger interface {
	Call(ctx context.Context, action ledger.Action, payload any) (json.RawMessage, error)
}

// ProxyService checks that requests carry their mandatory fields and
// forwards them to the ledger. Business rules beyond field presence stay
// with the ledger and the scan controller.
type ProxyService struct {
	ledger Ledger
}

func NewProxyService(l Ledger) *ProxyService {
	return &ProxyService{ledger: l}
}

// scanPayload is what addScan receives. Timestamp is optional; the
// ledger stamps the row when it is absent.
type scanPayload struct {
	SerialNumber string          `json:"serialNumber"`
	ScanEvent    types.ScanEvent `json:"scanEvent"`
	Location     string          `json:"location"`
	ClientID     string          `json:"clientId,omitempty"`
	Timestamp    string          `json:"timestamp,omitempty"`
}

func (s *ProxyService) SubmitScan(ctx context.Context, req types.ScanLog) (json.RawMessage, error) {
	p := scanPayload{
		SerialNumber: strings.TrimSpace(req.SerialNumber),
		ScanEvent:    types.ScanEvent(strings.TrimSpace(string(req.ScanEvent))),
		Location:     strings.TrimSpace(req.Location),
		ClientID:     strings.TrimSpace(req.ClientID),
		Timestamp:    strings.TrimSpace(req.Timestamp),
	}

	switch {
	case p.SerialNumber == "":
		return nil, ErrMissingSerial
	case p.ScanEvent == "":
		return nil, ErrMissingScanEvent
	case p.Location == "":
		return nil, ErrMissingLocation
	case p.ScanEvent.RequiresClient() && p.ClientID == "":
		return nil, ErrMissingClientID
	}

	return s.ledger.Call(ctx, ledger.ActionAddScan, p)
}

func (s *ProxyService) Logs(ctx context.Context) (json.RawMessage, error) {
	return s.ledger.Call(ctx, ledger.ActionGetLogs, nil)
}

func (s *ProxyService) ClearLogs(ctx context.Context) (json.RawMessage, error) {
	return s.ledger.Call(ctx, ledger.ActionClearLogs, nil)
}

func (s *ProxyService) Summary(ctx context.Context) (json.RawMessage, error) {
	return s.ledger.Call(ctx, ledger.ActionGetSummary, nil)
}

func (s *ProxyService) Products(ctx context.Context) (json.RawMessage, error) {
	return s.ledger.Call(ctx, ledger.ActionGetProducts, nil)
}

// SaveProduct creates or updates a product. The ledger answers with the
// full catalog after the write.
func (s *ProxyService) SaveProduct(ctx context.Context, p types.Product) (json.RawMessage, error) {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	if p.ID == "" {
		return nil, ErrMissingProductID
	}
	if p.Name == "" {
		return nil, ErrMissingProductName
	}
	return s.ledger.Call(ctx, ledger.ActionAddProduct, p)
}

func (s *ProxyService) DeleteProduct(ctx context.Context, id string) (json.RawMessage, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrMissingProductID
	}
	return s.ledger.Call(ctx, ledger.ActionDeleteProduct, map[string]string{"id": id})
}

func (s *ProxyService) Users(ctx context.Context) (json.RawMessage, error) {
	return s.ledger.Call(ctx, ledger.ActionGetUsers, nil)
}

func (s *ProxyService) B2BClients(ctx context.Context) (json.RawMessage, error) {
	return s.ledger.Call(ctx, ledger.ActionGetB2BClients, nil)
}

func (s *ProxyService) CakeStatus(ctx context.Context) (json.RawMessage, error) {
	return s.ledger.Call(ctx, ledger.ActionGetCakeStatus, nil)
}

func (s *ProxyService) LiveOperations(ctx context.Context) (json.RawMessage, error) {
	return s.ledger.Call(ctx, ledger.ActionGetLiveOperations, nil)
}
