package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajsexperiments/scanner-final/internal/inventory/types"
)

func TestHTTPClientAddScan(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody types.ScanLog
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		gotBody.Timestamp = "2024-05-01T10:00:00Z"
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": gotBody})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL+"/", nil)
	saved, err := c.AddScan(context.Background(), types.ScanLog{
		SerialNumber: "OLV-001-0001",
		ScanEvent:    types.EventDeliveryB2B,
		Location:     "Nice",
		ClientID:     "C-100",
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/scans", gotPath)
	assert.Equal(t, "C-100", gotBody.ClientID)
	assert.Equal(t, "2024-05-01T10:00:00Z", saved.Timestamp)
}

func TestHTTPClientFailureEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"success":false,"error":"location is required"}`)
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, nil).AddScan(context.Background(), types.ScanLog{SerialNumber: "X"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "location is required", apiErr.Error())
}

func TestHTTPClientNonEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, nil).Logs(context.Background())
	assert.ErrorIs(t, err, ErrTransport)
}

func TestHTTPClientOversizedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logs := make([]types.ScanLog, 20)
		for i := range logs {
			logs[i] = types.ScanLog{SerialNumber: "OLV-001-0001", ScanEvent: types.EventProduction, Location: "Lab"}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": logs})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, nil)
	c.maxBody = 256
	_, err := c.Logs(context.Background())
	assert.ErrorIs(t, err, ErrTransport)

	c.maxBody = maxResponseBody
	logs, err := c.Logs(context.Background())
	require.NoError(t, err)
	assert.Len(t, logs, 20)
}

func TestHTTPClientDeleteEscapesID(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = io.WriteString(w, `{"success":true,"data":[]}`)
	}))
	defer srv.Close()

	products, err := NewHTTPClient(srv.URL, nil).DeleteProduct(context.Background(), "OLV 001")
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Equal(t, "/api/products/OLV%20001", gotPath)
}
