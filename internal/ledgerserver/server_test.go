package ledgerserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rajsexperiments/scanner-final/internal/inventory/store/memory"
	"github.com/rajsexperiments/scanner-final/internal/inventory/types"
	"github.com/rajsexperiments/scanner-final/internal/ledgerserver"
)

// ── Helpers ──

const testKey = "dev-key"

func newLedger(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()
	ms := memory.New()
	srv := ledgerserver.New(ledgerserver.Config{
		APIKey:   testKey,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC) },
	}, ledgerserver.Stores{Scans: ms, Products: ms, Directory: ms})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, ms
}

func call(t *testing.T, url, key, action string, payload any) (int, types.Envelope) {
	t.Helper()
	body, err := json.Marshal(map[string]any{"action": action, "payload": payload})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	env, err := types.DecodeEnvelope(resp.Body)
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp.StatusCode, env
}

// ── Auth ──

func TestExec_RequiresBearerKey(t *testing.T) {
	ts, _ := newLedger(t)

	status, env := call(t, ts.URL+"/exec", "", "getLogs", nil)
	if status != http.StatusUnauthorized || env.Success {
		t.Errorf("expected 401 failure, got %d %+v", status, env)
	}
	status, _ = call(t, ts.URL+"/exec", "wrong", "getLogs", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong key, got %d", status)
	}
	status, env = call(t, ts.URL+"/", testKey, "getLogs", nil)
	if status != http.StatusOK || !env.Success {
		t.Errorf("expected success at root path, got %d %+v", status, env)
	}
}

// ── addScan ──

func TestExec_AddScanFillsTimestampAndStripsClient(t *testing.T) {
	ts, ms := newLedger(t)

	_, env := call(t, ts.URL+"/exec", testKey, "addScan", map[string]any{
		"serialNumber": " OLV-001-0001 ",
		"scanEvent":    "SALE_B2C",
		"location":     "Saleya",
		"clientId":     "C-100",
	})
	if !env.Success {
		t.Fatalf("addScan failed: %s", env.Error)
	}
	var saved types.ScanLog
	if err := env.DecodeData(&saved); err != nil {
		t.Fatalf("DecodeData: %v", err)
	}
	want := types.ScanLog{SerialNumber: "OLV-001-0001", ScanEvent: types.EventSaleB2C, Location: "Saleya", Timestamp: "2024-05-02T12:00:00.000Z"}
	if saved != want {
		t.Errorf("saved = %+v, want %+v", saved, want)
	}

	logs, _ := ms.ListScans(context.Background())
	if len(logs) != 1 || logs[0] != want {
		t.Errorf("store holds %+v", logs)
	}
}

func TestExec_AddScanRejections(t *testing.T) {
	ts, _ := newLedger(t)

	cases := []map[string]any{
		{"scanEvent": "SALE_B2C", "location": "x"},
		{"serialNumber": "A-1", "scanEvent": "TELEPORT", "location": "x"},
		{"serialNumber": "A-1", "scanEvent": "SALE_B2C"},
		{"serialNumber": "A-1", "scanEvent": "DELIVERY_B2B", "location": "x"},
	}
	for i, payload := range cases {
		status, env := call(t, ts.URL+"/exec", testKey, "addScan", payload)
		if status != http.StatusOK || env.Success || env.Error == "" {
			t.Errorf("case %d: expected 200 rejection, got %d %+v", i, status, env)
		}
	}
}

// ── Products ──

func TestExec_ProductMutationsReturnCatalog(t *testing.T) {
	ts, _ := newLedger(t)

	_, env := call(t, ts.URL+"/exec", testKey, "addProduct", types.Product{ID: "OLV-001", Name: "Olive Oil Cake"})
	var products []types.Product
	if err := env.DecodeData(&products); err != nil || len(products) != 1 {
		t.Fatalf("addProduct: %v %+v", err, env)
	}

	_, env = call(t, ts.URL+"/exec", testKey, "deleteProduct", map[string]string{"id": "OLV-001"})
	products = nil
	if err := env.DecodeData(&products); err != nil || !env.Success || len(products) != 0 {
		t.Fatalf("deleteProduct: %v %+v", err, env)
	}

	_, env = call(t, ts.URL+"/exec", testKey, "deleteProduct", map[string]string{"id": "OLV-001"})
	if env.Success {
		t.Error("expected rejection deleting unknown product")
	}
	_, env = call(t, ts.URL+"/exec", testKey, "addProduct", types.Product{ID: "X"})
	if env.Success {
		t.Error("expected rejection for product without name")
	}
}

// ── Protocol errors ──

func TestExec_UnknownActionAndBadJSON(t *testing.T) {
	ts, _ := newLedger(t)

	status, env := call(t, ts.URL+"/exec", testKey, "launchRocket", nil)
	if status != http.StatusOK || env.Success {
		t.Errorf("expected 200 rejection for unknown action, got %d %+v", status, env)
	}

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/exec", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+testKey)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/exec")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	ts, _ := newLedger(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}
