package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/rajsexperiments/scanner-final/internal/httpapi"
	"github.com/rajsexperiments/scanner-final/internal/inventory/ledger"
	"github.com/rajsexperiments/scanner-final/internal/inventory/service"
	"github.com/rajsexperiments/scanner-final/internal/inventory/types"
	"github.com/rajsexperiments/scanner-final/internal/logging"
	"github.com/rajsexperiments/scanner-final/internal/metrics"
)

// fakeLedger answers ledger actions from a table and records what it saw.
type fakeLedger struct {
	mu      sync.Mutex
	replies map[ledger.Action]string // raw envelope per action
	seen    []ledger.Action
	auth    []string
	ids     []string
}

func (f *fakeLedger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action ledger.Action `json:"action"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	f.seen = append(f.seen, req.Action)
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	f.ids = append(f.ids, r.Header.Get("X-Request-ID"))
	reply, ok := f.replies[req.Action]
	f.mu.Unlock()

	if !ok {
		reply = `{"success":true,"data":[]}`
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(reply))
}

func (f *fakeLedger) actions() []ledger.Action {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ledger.Action(nil), f.seen...)
}

// newTestServer wires the proxy against a fake ledger and returns an
// httptest.Server whose URL can be hit with a plain http.Client.
func newTestServer(t *testing.T, fl http.Handler) *httptest.Server {
	t.Helper()

	ledgerSrv := httptest.NewServer(fl)
	t.Cleanup(ledgerSrv.Close)

	client := ledger.NewClient(ledger.Config{
		URL:    ledgerSrv.URL,
		APIKey: "server-side-key",
		Logger: logging.Discard(),
	})
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:         logging.Discard(),
		Addr:           ":0",
		Proxy:          service.NewProxyService(client),
		Metrics:        metrics.New(),
		AllowedOrigins: []string{"https://scanner.example"},
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func decodeEnvelope(t *testing.T, resp *http.Response) types.Envelope {
	t.Helper()
	env, err := types.DecodeEnvelope(resp.Body)
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

// ── Scans ────────────────────────────────────────────────────────────────────

func TestSubmitScan_Forwarded(t *testing.T) {
	fl := &fakeLedger{replies: map[ledger.Action]string{
		ledger.ActionAddScan: `{"success":true,"data":{"serialNumber":"OLV-001-0001","timestamp":"2026-10-18T09:00:00Z","scanEvent":"BOUTIQUE_STOCK_SCAN","location":"Nice-Boutique"}}`,
	}}
	ts := newTestServer(t, fl)

	body := []byte(`{"serialNumber":"OLV-001-0001","scanEvent":"BOUTIQUE_STOCK_SCAN","location":"Nice-Boutique"}`)
	resp, err := http.Post(ts.URL+"/api/scans", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	if !env.Success {
		t.Fatalf("expected success, got error %q", env.Error)
	}
	var entry types.ScanLog
	if err := env.DecodeData(&entry); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if entry.Timestamp != "2026-10-18T09:00:00Z" {
		t.Errorf("expected server timestamp, got %q", entry.Timestamp)
	}

	if fl.auth[0] != "Bearer server-side-key" {
		t.Errorf("expected bearer credential on ledger call, got %q", fl.auth[0])
	}
	if fl.ids[0] == "" {
		t.Error("expected request id forwarded to ledger")
	}
	if got := resp.Header.Get("X-Request-ID"); got != fl.ids[0] {
		t.Errorf("response request id %q does not match forwarded %q", got, fl.ids[0])
	}
}

func TestSubmitScan_MissingLocation_400(t *testing.T) {
	fl := &fakeLedger{}
	ts := newTestServer(t, fl)

	body := []byte(`{"serialNumber":"OLV-001-0001","scanEvent":"PRODUCTION_SCAN"}`)
	resp, err := http.Post(ts.URL+"/api/scans", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	if env.Success || env.Error != service.ErrMissingLocation.Error() {
		t.Errorf("unexpected envelope %+v", env)
	}
	if len(fl.actions()) != 0 {
		t.Errorf("expected no ledger call, got %v", fl.actions())
	}
}

func TestSubmitScan_B2BWithoutClient_400(t *testing.T) {
	ts := newTestServer(t, &fakeLedger{})

	body := []byte(`{"serialNumber":"OLV-001-0001","scanEvent":"DELIVERY_B2B","location":"Dock"}`)
	resp, err := http.Post(ts.URL+"/api/scans", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSubmitScan_InvalidJSON_400(t *testing.T) {
	ts := newTestServer(t, &fakeLedger{})

	resp, err := http.Post(ts.URL+"/api/scans", "application/json", strings.NewReader(`not json at all`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ── Ledger failures ──────────────────────────────────────────────────────────

func TestLedgerRejection_RelayedAs200(t *testing.T) {
	fl := &fakeLedger{replies: map[ledger.Action]string{
		ledger.ActionClearLogs: `{"success":false,"error":"sheet is protected"}`,
	}}
	ts := newTestServer(t, fl)

	resp, err := http.Post(ts.URL+"/api/logs/clear", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	if env.Success || env.Error != "sheet is protected" {
		t.Errorf("unexpected envelope %+v", env)
	}
}

func TestLedgerDown_502(t *testing.T) {
	ts := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>Service unavailable</html>`))
	}))

	resp, err := http.Get(ts.URL + "/api/summary")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	if env.Success || env.Error == "" {
		t.Errorf("expected normalized failure envelope, got %+v", env)
	}
}

// ── Products ─────────────────────────────────────────────────────────────────

func TestDeleteProduct_PathID(t *testing.T) {
	fl := &fakeLedger{replies: map[ledger.Action]string{
		ledger.ActionDeleteProduct: `{"success":true,"data":[{"id":"OLV-002","name":"Lemon","isPerishable":true}]}`,
	}}
	ts := newTestServer(t, fl)

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/products/OLV-001", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var products []types.Product
	if err := decodeEnvelope(t, resp).DecodeData(&products); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(products) != 1 || products[0].ID != "OLV-002" {
		t.Errorf("expected remaining catalog, got %+v", products)
	}
}

func TestSaveProduct_MissingName_400(t *testing.T) {
	ts := newTestServer(t, &fakeLedger{})

	resp, err := http.Post(ts.URL+"/api/products", "application/json", strings.NewReader(`{"id":"OLV-009"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ── Read routes ──────────────────────────────────────────────────────────────

func TestReadRoutes_MapToActions(t *testing.T) {
	fl := &fakeLedger{}
	ts := newTestServer(t, fl)

	routes := map[string]ledger.Action{
		"/api/logs":            ledger.ActionGetLogs,
		"/api/summary":         ledger.ActionGetSummary,
		"/api/products":        ledger.ActionGetProducts,
		"/api/users":           ledger.ActionGetUsers,
		"/api/b2b-clients":     ledger.ActionGetB2BClients,
		"/api/cake-status":     ledger.ActionGetCakeStatus,
		"/api/live-operations": ledger.ActionGetLiveOperations,
	}
	for path, want := range routes {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, resp.StatusCode)
		}
		got := fl.actions()
		if got[len(got)-1] != want {
			t.Errorf("%s: expected action %s, got %s", path, want, got[len(got)-1])
		}
	}
}

func TestWrongMethod_405(t *testing.T) {
	ts := newTestServer(t, &fakeLedger{})

	resp, err := http.Get(ts.URL + "/api/scans")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

// ── Protobuf negotiation ─────────────────────────────────────────────────────

func TestProtobufEnvelope(t *testing.T) {
	fl := &fakeLedger{replies: map[ledger.Action]string{
		ledger.ActionGetSummary: `{"success":true,"data":[{"productId":"OLV-001","productName":"Olive cake","count":3}]}`,
	}}
	ts := newTestServer(t, fl)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/summary", nil)
	req.Header.Set("Accept", "application/x-protobuf")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "application/x-protobuf" {
		t.Fatalf("expected protobuf content type, got %q", ct)
	}
	raw, _ := io.ReadAll(resp.Body)
	msg := &structpb.Struct{}
	if err := proto.Unmarshal(raw, msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !msg.Fields["success"].GetBoolValue() {
		t.Error("expected success=true")
	}
	items := msg.Fields["data"].GetListValue().GetValues()
	if len(items) != 1 || items[0].GetStructValue().Fields["count"].GetNumberValue() != 3 {
		t.Errorf("unexpected data %v", msg.Fields["data"])
	}
}

func TestProtobufRequestBody(t *testing.T) {
	fl := &fakeLedger{}
	ts := newTestServer(t, fl)

	msg, err := structpb.NewStruct(map[string]any{
		"serialNumber": "OLV-001-0002",
		"scanEvent":    "PRODUCTION_SCAN",
		"location":     "Atelier",
	})
	if err != nil {
		t.Fatalf("struct: %v", err)
	}
	raw, _ := proto.Marshal(msg)

	resp, err := http.Post(ts.URL+"/api/scans", "application/x-protobuf", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, b)
	}
	if got := fl.actions(); len(got) != 1 || got[0] != ledger.ActionAddScan {
		t.Errorf("expected one addScan, got %v", got)
	}
}

// ── Ambient routes ───────────────────────────────────────────────────────────

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, &fakeLedger{})

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/scans", nil)
	req.Header.Set("Origin", "https://scanner.example")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://scanner.example" {
		t.Errorf("unexpected allow-origin %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, &fakeLedger{})

	if resp, err := http.Get(ts.URL + "/api/logs"); err == nil {
		resp.Body.Close()
	}
	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `route="GET /api/logs"`) {
		t.Errorf("expected route label in metrics output:\n%s", body)
	}
}

func TestGRPCHealth(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	hs := httpapi.NewHealthServer(logging.Discard())
	go func() { _ = hs.Serve(lis) }()
	t.Cleanup(hs.Shutdown)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: httpapi.HealthServiceName})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("expected SERVING, got %v", resp.GetStatus())
	}
}
