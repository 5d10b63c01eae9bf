package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rajsexperiments/scanner-final/internal/inventory/types"
)

// API is the proxy surface the store depends on. HTTPClient is the real
// implementation; tests substitute fakes.
type API interface {
	AddScan(ctx context.Context, entry types.ScanLog) (types.ScanLog, error)
	Logs(ctx context.Context) ([]types.ScanLog, error)
	ClearLogs(ctx context.Context) error
	Summary(ctx context.Context) ([]types.SummaryItem, error)
	Products(ctx context.Context) ([]types.Product, error)
	SaveProduct(ctx context.Context, p types.Product) ([]types.Product, error)
	DeleteProduct(ctx context.Context, id string) ([]types.Product, error)
	Users(ctx context.Context) ([]types.User, error)
	B2BClients(ctx context.Context) ([]types.B2BClient, error)
	CakeStatus(ctx context.Context) ([]types.CakeStatus, error)
	LiveOperations(ctx context.Context) (types.LiveOperationsData, error)
}

var ErrTransport = errors.New("proxy unreachable")

// APIError is a failure envelope returned by the proxy.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed (HTTP %d)", e.Status)
	}
	return e.Message
}

// HTTPClient calls the proxy API endpoints.
// maxResponseBody bounds what we read back from the proxy, matching the
// proxy's own cap on ledger answers.
const maxResponseBody = 16 << 20

type HTTPClient struct {
	base    string
	http    *http.Client
	maxBody int64
}

// NewHTTPClient targets the proxy at baseURL, e.g. "http://localhost:8080".
// A nil hc gets a client with a 30 second timeout.
func NewHTTPClient(baseURL string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClient{base: strings.TrimRight(baseURL, "/"), http: hc, maxBody: maxResponseBody}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	// Every proxy answer, including 400 and 502, is an envelope.
	env, err := types.DecodeEnvelope(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return fmt.Errorf("%w: HTTP %d: %v", ErrTransport, resp.StatusCode, err)
	}
	if !env.Success {
		return &APIError{Status: resp.StatusCode, Message: env.Error}
	}
	return env.DecodeData(out)
}

func (c *HTTPClient) AddScan(ctx context.Context, entry types.ScanLog) (types.ScanLog, error) {
	var saved types.ScanLog
	err := c.do(ctx, http.MethodPost, "/api/scans", entry, &saved)
	return saved, err
}

func (c *HTTPClient) Logs(ctx context.Context) ([]types.ScanLog, error) {
	var logs []types.ScanLog
	err := c.do(ctx, http.MethodGet, "/api/logs", nil, &logs)
	return logs, err
}

func (c *HTTPClient) ClearLogs(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/logs/clear", nil, nil)
}

func (c *HTTPClient) Summary(ctx context.Context) ([]types.SummaryItem, error) {
	var items []types.SummaryItem
	err := c.do(ctx, http.MethodGet, "/api/summary", nil, &items)
	return items, err
}

func (c *HTTPClient) Products(ctx context.Context) ([]types.Product, error) {
	var products []types.Product
	err := c.do(ctx, http.MethodGet, "/api/products", nil, &products)
	return products, err
}

func (c *HTTPClient) SaveProduct(ctx context.Context, p types.Product) ([]types.Product, error) {
	var products []types.Product
	err := c.do(ctx, http.MethodPost, "/api/products", p, &products)
	return products, err
}

func (c *HTTPClient) DeleteProduct(ctx context.Context, id string) ([]types.Product, error) {
	var products []types.Product
	err := c.do(ctx, http.MethodDelete, "/api/products/"+url.PathEscape(id), nil, &products)
	return products, err
}

func (c *HTTPClient) Users(ctx context.Context) ([]types.User, error) {
	var users []types.User
	err := c.do(ctx, http.MethodGet, "/api/users", nil, &users)
	return users, err
}

func (c *HTTPClient) B2BClients(ctx context.Context) ([]types.B2BClient, error) {
	var clients []types.B2BClient
	err := c.do(ctx, http.MethodGet, "/api/b2b-clients", nil, &clients)
	return clients, err
}

func (c *HTTPClient) CakeStatus(ctx context.Context) ([]types.CakeStatus, error) {
	var items []types.CakeStatus
	err := c.do(ctx, http.MethodGet, "/api/cake-status", nil, &items)
	return items, err
}

func (c *HTTPClient) LiveOperations(ctx context.Context) (types.LiveOperationsData, error) {
	var data types.LiveOperationsData
	err := c.do(ctx, http.MethodGet, "/api/live-operations", nil, &data)
	return data, err
}
