// Package server exposes the Dhvani HTTP surface: the websocket speech
// bridge, the voice engine control API, the demo banking API, Prometheus
// metrics, and health probes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dhvanibank/dhvani/internal/assistant"
	"github.com/dhvanibank/dhvani/internal/bank"
	"github.com/dhvanibank/dhvani/internal/health"
	"github.com/dhvanibank/dhvani/internal/intent"
	"github.com/dhvanibank/dhvani/internal/observe"
	"github.com/dhvanibank/dhvani/pkg/platform"
)

const shutdownTimeout = 15 * time.Second

// Config holds the server's network settings.
type Config struct {
	// ListenAddr is the TCP address to listen on (e.g., ":8080").
	ListenAddr string

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string
}

// Deps holds the server's collaborators. Engine, Bridge, and Store are
// required; Metrics may be nil to disable the observability middleware.
type Deps struct {
	Engine  *assistant.Engine
	Bridge  http.Handler
	Store   bank.Store
	Metrics *observe.Metrics
}

// Server is the Dhvani HTTP server.
type Server struct {
	cfg    Config
	engine *assistant.Engine
	store  bank.Store
	http   *http.Server
}

// New assembles the route table and wraps it with the observability
// middleware.
func New(cfg Config, deps Deps) *Server {
	s := &Server{
		cfg:    cfg,
		engine: deps.Engine,
		store:  deps.Store,
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", deps.Bridge)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/voices", s.handleVoices)
	mux.HandleFunc("POST /api/listen", s.handleListen)
	mux.HandleFunc("POST /api/stop", s.handleStop)
	mux.HandleFunc("PUT /api/locale", s.handleSetLocale)

	mux.HandleFunc("GET /api/accounts", s.handleAccounts)
	mux.HandleFunc("GET /api/accounts/{id}", s.handleAccount)
	mux.HandleFunc("GET /api/accounts/{id}/transactions", s.handleTransactions)
	mux.HandleFunc("POST /api/transfers", s.handleTransfer)

	probes := health.New(health.Checker{Name: "bank", Check: deps.Store.Ping})
	probes.Register(mux)

	var handler http.Handler = mux
	if deps.Metrics != nil {
		handler = observe.Middleware(deps.Metrics)(mux)
	}

	s.http = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		var err error
		if s.cfg.TLSCertFile != "" && s.cfg.TLSKeyFile != "" {
			err = s.http.ListenAndServeTLS(s.cfg.TLSCertFile, s.cfg.TLSKeyFile)
		} else {
			err = s.http.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	slog.Info("http server listening", "addr", s.cfg.ListenAddr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

// Handler returns the server's root handler, for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// ---- engine endpoints ----

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Status())
}

func (s *Server) handleVoices(w http.ResponseWriter, _ *http.Request) {
	voices := s.engine.Voices()
	if voices == nil {
		voices = []platform.Voice{}
	}
	writeJSON(w, http.StatusOK, voices)
}

func (s *Server) handleListen(w http.ResponseWriter, r *http.Request) {
	err := s.engine.StartListening(context.WithoutCancel(r.Context()))
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, map[string]string{"state": "starting"})
	case errors.Is(err, platform.ErrUnsupported):
		writeError(w, http.StatusConflict, "speech capture is not available")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	s.engine.StopListening()
	writeJSON(w, http.StatusOK, map[string]string{"state": "idle"})
}

type localeRequest struct {
	Locale string `json:"locale"`
}

func (s *Server) handleSetLocale(w http.ResponseWriter, r *http.Request) {
	var req localeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	loc := intent.Locale(req.Locale)
	if !loc.IsValid() {
		writeError(w, http.StatusBadRequest, "unknown locale "+strconv.Quote(req.Locale))
		return
	}
	s.engine.SetLocale(loc)
	writeJSON(w, http.StatusOK, map[string]string{"locale": req.Locale})
}

// ---- banking endpoints ----

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.Accounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	acc, err := s.store.Account(r.Context(), r.PathValue("id"))
	if errors.Is(err, bank.ErrNotFound) {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	txns, err := s.store.Transactions(r.Context(), r.PathValue("id"), limit)
	if errors.Is(err, bank.ErrNotFound) {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, txns)
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req bank.Transfer
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	txn, err := s.store.SubmitTransfer(r.Context(), req)
	switch {
	case errors.Is(err, bank.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "amount must be positive")
	case errors.Is(err, bank.ErrInsufficientFunds):
		writeError(w, http.StatusUnprocessableEntity, "insufficient funds")
	case errors.Is(err, bank.ErrNotFound):
		writeError(w, http.StatusNotFound, "account not found")
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusCreated, txn)
	}
}

// ---- helpers ----

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response encode failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
