package ledger_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajsexperiments/scanner-final/internal/inventory/ledger"
	"github.com/rajsexperiments/scanner-final/internal/logging"
	"github.com/rajsexperiments/scanner-final/internal/metrics"
)

func newClient(t *testing.T, h http.HandlerFunc, timeout time.Duration) *ledger.Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ledger.NewClient(ledger.Config{
		URL:     ts.URL,
		APIKey:  "k3y",
		Timeout: timeout,
		Logger:  logging.Discard(),
		Metrics: metrics.New(),
	})
}

func TestCall_SendsActionPayloadAndBearer(t *testing.T) {
	var (
		action              ledger.Action
		payload, auth, reqID string
	)
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		reqID = r.Header.Get("X-Request-ID")
		var raw struct {
			Action  ledger.Action   `json:"action"`
			Payload json.RawMessage `json:"payload"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		action = raw.Action
		payload = string(raw.Payload)
		w.Write([]byte(`{"success":true,"data":{"serialNumber":"OLV-001-0001"}}`))
	}, time.Second)

	ctx := ledger.WithRequestID(context.Background(), "req-1")
	data, err := c.Call(ctx, ledger.ActionAddScan, map[string]string{"serialNumber": "OLV-001-0001"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer k3y", auth)
	assert.Equal(t, "req-1", reqID)
	assert.Equal(t, ledger.ActionAddScan, action)
	assert.JSONEq(t, `{"serialNumber":"OLV-001-0001"}`, payload)
	assert.JSONEq(t, `{"serialNumber":"OLV-001-0001"}`, string(data))
}

func TestCall_RemoteRejection(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"sheet locked"}`))
	}, time.Second)

	_, err := c.Call(context.Background(), ledger.ActionClearLogs, nil)
	var remote *ledger.RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, "sheet locked", remote.Message)
	assert.False(t, errors.Is(err, ledger.ErrTransport))
}

func TestCall_Non2xxIsTransport(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}, time.Second)

	_, err := c.Call(context.Background(), ledger.ActionGetLogs, nil)
	assert.ErrorIs(t, err, ledger.ErrTransport)
}

func TestCall_MalformedJSONIsTransport(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<!doctype html><p>Script error</p>`))
	}, time.Second)

	_, err := c.Call(context.Background(), ledger.ActionGetSummary, nil)
	assert.ErrorIs(t, err, ledger.ErrTransport)
}

func TestCall_TimeoutIsTransport(t *testing.T) {
	release := make(chan struct{})
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, 50*time.Millisecond)
	defer close(release)

	_, err := c.Call(context.Background(), ledger.ActionGetProducts, nil)
	assert.ErrorIs(t, err, ledger.ErrTransport)
}

func TestCall_NoAPIKeyNoHeader(t *testing.T) {
	var hasAuth bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	defer ts.Close()

	c := ledger.NewClient(ledger.Config{URL: ts.URL, Logger: logging.Discard()})
	_, err := c.Call(context.Background(), ledger.ActionGetUsers, nil)
	require.NoError(t, err)
	assert.False(t, hasAuth)
}
