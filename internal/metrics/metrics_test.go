package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajsexperiments/scanner-final/internal/metrics"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *metrics.Metrics
	m.ObserveRequest("GET", "/api/logs", 200, time.Millisecond)
	m.ObserveLedgerCall("getLogs", "ok", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}

func TestObserveLedgerCall(t *testing.T) {
	m := metrics.New()
	m.ObserveLedgerCall("addScan", "ok", 20*time.Millisecond)
	m.ObserveLedgerCall("addScan", "transport", time.Second)

	n, err := testutil.GatherAndCount(m.Registry(), "scanner_ledger_calls_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestHandlerExposesSeries(t *testing.T) {
	m := metrics.New()
	m.ObserveRequest("POST", "/api/scans", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `scanner_http_requests_total{code="200",method="POST",route="/api/scans"} 1`)
}
