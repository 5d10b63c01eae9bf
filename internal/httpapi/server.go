package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rajsexperiments/scanner-final/internal/inventory/ledger"
	"github.com/rajsexperiments/scanner-final/internal/inventory/service"
	"github.com/rajsexperiments/scanner-final/internal/inventory/types"
	"github.com/rajsexperiments/scanner-final/internal/metrics"
)

type Dependencies struct {
	Logger         *slog.Logger
	Addr           string
	Proxy          *service.ProxyService
	Metrics        *metrics.Metrics // nil disables /metrics
	AllowedOrigins []string
}

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	mux        *http.ServeMux
	proxy      *service.ProxyService
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		logger: logger,
		mux:    mux,
		proxy:  d.Proxy,
	}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics.Handler())
	}

	mux.HandleFunc("POST /api/scans", s.handleSubmitScan)
	mux.HandleFunc("GET /api/logs", s.forward(s.proxy.Logs))
	mux.HandleFunc("POST /api/logs/clear", s.forward(s.proxy.ClearLogs))
	mux.HandleFunc("GET /api/summary", s.forward(s.proxy.Summary))
	mux.HandleFunc("GET /api/products", s.forward(s.proxy.Products))
	mux.HandleFunc("POST /api/products", s.handleSaveProduct)
	mux.HandleFunc("DELETE /api/products/{id}", s.handleDeleteProduct)
	mux.HandleFunc("GET /api/users", s.forward(s.proxy.Users))
	mux.HandleFunc("GET /api/b2b-clients", s.forward(s.proxy.B2BClients))
	mux.HandleFunc("GET /api/cake-status", s.forward(s.proxy.CakeStatus))
	mux.HandleFunc("GET /api/live-operations", s.forward(s.proxy.LiveOperations))

	handler := loggingMiddleware(logger, d.Metrics, mux)
	handler = corsMiddleware(d.AllowedOrigins, handler)
	handler = requestIDMiddleware(handler)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// forward adapts a no-argument proxy call into a handler.
func (s *Server) forward(call func(context.Context) (json.RawMessage, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := call(r.Context())
		s.respond(w, r, data, err)
	}
}

func (s *Server) handleSubmitScan(w http.ResponseWriter, r *http.Request) {
	var req types.ScanLog
	if err := readBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	data, err := s.proxy.SubmitScan(r.Context(), req)
	s.respond(w, r, data, err)
}

func (s *Server) handleSaveProduct(w http.ResponseWriter, r *http.Request) {
	var p types.Product
	if err := readBody(r, &p); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	data, err := s.proxy.SaveProduct(r.Context(), p)
	s.respond(w, r, data, err)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	data, err := s.proxy.DeleteProduct(r.Context(), r.PathValue("id"))
	s.respond(w, r, data, err)
}

// respond maps a proxy result onto the envelope. Validation failures are
// 400, ledger rejections are relayed as-is with 200, and anything that
// kept us from getting an answer is 502.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, data json.RawMessage, err error) {
	var remote *ledger.RemoteError
	switch {
	case err == nil:
		writeEnvelope(w, r, http.StatusOK, types.Envelope{Success: true, Data: data})
	case service.IsValidation(err):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.As(err, &remote):
		msg := remote.Message
		if msg == "" {
			msg = "unknown error"
		}
		writeError(w, r, http.StatusOK, msg)
	default:
		s.logger.Error("ledger unavailable", "path", r.URL.Path, "request_id", requestID(r), "error", err)
		writeError(w, r, http.StatusBadGateway, err.Error())
	}
}
