// Package ledger talks to the Remote Ledger Service: a spreadsheet-backed
// script endpoint that accepts action-tagged JSON requests and answers
// with a {success, data, error} envelope.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/rajsexperiments/scanner-final/internal/inventory/types"
	"github.com/rajsexperiments/scanner-final/internal/metrics"
)

// Action is the tag selecting a ledger operation.
type Action string

const (
	ActionAddScan           Action = "addScan"
	ActionGetLogs           Action = "getLogs"
	ActionClearLogs         Action = "clearLogs"
	ActionGetSummary        Action = "getSummary"
	ActionGetProducts       Action = "getProducts"
	ActionAddProduct        Action = "addProduct"
	ActionDeleteProduct     Action = "deleteProduct"
	ActionGetUsers          Action = "getUsers"
	ActionGetB2BClients     Action = "getB2BClients"
	ActionGetCakeStatus     Action = "getCakeStatus"
	ActionGetLiveOperations Action = "getLiveOperationsData"
)

// maxResponseBody bounds what we read back from the ledger. Full log
// dumps of a busy season stay well under this.
const maxResponseBody = 16 << 20

var ErrTransport = errors.New("ledger transport failure")

// RemoteError is returned when the ledger answered but reported failure.
type RemoteError struct {
	Action  Action
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ledger %s: unknown error", e.Action)
	}
	return fmt.Sprintf("ledger %s: %s", e.Action, e.Message)
}

// Request is the wire body of every ledger call.
type Request struct {
	Action  Action `json:"action"`
	Payload any    `json:"payload,omitempty"`
}

type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// HTTPClient overrides the default client. Its own timeout, if any,
	// still applies on top of Timeout.
	HTTPClient *http.Client
}

type Client struct {
	url     string
	apiKey  string
	timeout time.Duration
	http    *http.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		url:     cfg.URL,
		apiKey:  cfg.APIKey,
		timeout: timeout,
		http:    hc,
		logger:  logger,
		metrics: cfg.Metrics,
	}
}

// Call performs one action and returns the raw data field of a
// successful envelope.
func (c *Client) Call(ctx context.Context, action Action, payload any) (json.RawMessage, error) {
	start := time.Now()
	data, err := c.call(ctx, action, payload)

	outcome := "ok"
	var remote *RemoteError
	switch {
	case errors.As(err, &remote):
		outcome = "rejected"
	case err != nil:
		outcome = "transport"
	}
	dur := time.Since(start)
	c.metrics.ObserveLedgerCall(string(action), outcome, dur)

	if err != nil {
		c.logger.Warn("ledger call failed", "action", action, "outcome", outcome, "duration", dur, "error", err)
		return nil, err
	}
	c.logger.Debug("ledger call", "action", action, "duration", dur)
	return data, nil
}

func (c *Client) call(ctx context.Context, action Action, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(Request{Action: action, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("ledger %s: encode request: %w", action, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTransport, action, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if id := RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTransport, action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %s: HTTP %d", ErrTransport, action, resp.StatusCode)
	}

	env, err := types.DecodeEnvelope(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTransport, action, err)
	}
	if !env.Success {
		return nil, &RemoteError{Action: action, Message: env.Error}
	}
	return env.Data, nil
}

type requestIDKey struct{}

// WithRequestID attaches a correlation id forwarded as X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
