// Package ledgerserver is a local implementation of the ledger action
// protocol, for development and tests. It speaks the same envelope and
// bearer-key contract as the hosted spreadsheet ledger.
package ledgerserver

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/rajsexperiments/scanner-final/internal/inventory/ledger"
	"github.com/rajsexperiments/scanner-final/internal/inventory/store"
)

const maxRequestBody = 1 << 20

type Stores struct {
	Scans     store.ScanLogStore
	Products  store.ProductStore
	Directory store.DirectoryStore
}

type Config struct {
	Addr   string
	APIKey string // empty accepts every caller
	Logger *slog.Logger

	// Location decides what "today" means for live operations.
	// Defaults to time.Local.
	Location *time.Location
	Now      func() time.Time
}

type actionFunc func(ctx context.Context, payload json.RawMessage) (any, error)

type Server struct {
	stores     Stores
	apiKey     string
	logger     *slog.Logger
	loc        *time.Location
	now        func() time.Time
	actions    map[ledger.Action]actionFunc
	httpServer *http.Server
}

func New(cfg Config, st Stores) *Server {
	s := &Server{
		stores: st,
		apiKey: cfg.APIKey,
		logger: cfg.Logger,
		loc:    cfg.Location,
		now:    cfg.Now,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.actions = map[ledger.Action]actionFunc{
		ledger.ActionAddScan:           s.addScan,
		ledger.ActionGetLogs:           s.getLogs,
		ledger.ActionClearLogs:         s.clearLogs,
		ledger.ActionGetSummary:        s.getSummary,
		ledger.ActionGetProducts:       s.getProducts,
		ledger.ActionAddProduct:        s.addProduct,
		ledger.ActionDeleteProduct:     s.deleteProduct,
		ledger.ActionGetUsers:          s.getUsers,
		ledger.ActionGetB2BClients:     s.getB2BClients,
		ledger.ActionGetCakeStatus:     s.getCakeStatus,
		ledger.ActionGetLiveOperations: s.getLiveOperations,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)
	exec := s.requireKey(http.HandlerFunc(s.handleExec))
	r.Handle("/exec", exec).Methods(http.MethodPost)
	r.Handle("/", exec).Methods(http.MethodPost)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusNotFound, nil, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusMethodNotAllowed, nil, "method not allowed")
	})

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
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

func (s *Server) requireKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.apiKey)) != 1 {
			writeEnvelope(w, http.StatusUnauthorized, nil, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type execRequest struct {
	Action  ledger.Action   `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

func (s *Server) handleExec(w http.ResponseWriter, r *http.Request) {
	var req execRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, nil, "invalid JSON body")
		return
	}

	fn, ok := s.actions[req.Action]
	if !ok {
		writeEnvelope(w, http.StatusOK, nil, fmt.Sprintf("unknown action %q", req.Action))
		return
	}

	start := time.Now()
	data, err := fn(r.Context(), req.Payload)
	attrs := []any{"action", req.Action, "duration", time.Since(start), "request_id", r.Header.Get("X-Request-ID")}
	if err != nil {
		var rej *rejection
		if errors.As(err, &rej) {
			s.logger.Info("ledger action rejected", append(attrs, "reason", rej.msg)...)
		} else {
			s.logger.Error("ledger action failed", append(attrs, "err", err)...)
		}
		writeEnvelope(w, http.StatusOK, nil, err.Error())
		return
	}
	s.logger.Debug("ledger action", attrs...)
	writeEnvelope(w, http.StatusOK, data, "")
}

// rejection is a business-rule failure reported to the caller as
// success:false.
type rejection struct{ msg string }

func (e *rejection) Error() string { return e.msg }

func reject(format string, args ...any) error {
	return &rejection{msg: fmt.Sprintf(format, args...)}
}

func writeEnvelope(w http.ResponseWriter, status int, data any, errMsg string) {
	env := struct {
		Success bool   `json:"success"`
		Data    any    `json:"data,omitempty"`
		Error   string `json:"error,omitempty"`
	}{Success: errMsg == "", Data: data, Error: errMsg}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

