// Package server exposes the signal over a read-only HTTP API.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rxtech-lab/lrs-signal/internal/indicator"
	"github.com/rxtech-lab/lrs-signal/internal/logger"
	"github.com/rxtech-lab/lrs-signal/internal/metrics"
	"github.com/rxtech-lab/lrs-signal/internal/report"
	"github.com/rxtech-lab/lrs-signal/pkg/errors"
)

// ReportBuilder builds a report for a moving average window.
type ReportBuilder interface {
	Build(ctx context.Context, window int) (*report.Report, error)
}

// Server serves the signal of one configured ticker.
type Server struct {
	builder       ReportBuilder
	ticker        string
	defaultWindow int
	logger        *logger.Logger

	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a new Server. Requests without a window use defaultWindow.
func NewServer(builder ReportBuilder, ticker string, defaultWindow int, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Server{
		builder:       builder,
		ticker:        ticker,
		defaultWindow: defaultWindow,
		logger:        log,
	}
}

// Handler returns the router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(requestIDMiddleware, s.loggingMiddleware)

	router.HandleFunc("/api/v1/signal", s.handleSignal).Methods("GET")
	router.HandleFunc("/api/v1/overlay", s.handleOverlay).Methods("GET")
	router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	return router
}

// Start starts listening on address. If address is empty or ":0", a random available port is used.
func (s *Server) Start(address string) error {
	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	s.logger.Info("Serving signal API", zap.String("address", s.Address()), zap.String("ticker", s.ticker))

	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Address returns the address the server is listening on.
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

type overlayResponse struct {
	Ticker string                    `json:"ticker"`
	Window int                       `json:"window"`
	Points []report.OverlayPointJSON `json:"points"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      int    `json:"code"`
	Required  int    `json:"required,omitempty"`
	Available *int   `json:"available,omitempty"`
}

// handleSignal handles GET /api/v1/signal
func (s *Server) handleSignal(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.buildReport(w, r)
	if !ok {
		return
	}

	body, err := report.RenderJSON(rep, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// handleOverlay handles GET /api/v1/overlay
func (s *Server) handleOverlay(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.buildReport(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, overlayResponse{
		Ticker: rep.Ticker,
		Window: rep.Window,
		Points: report.OverlayJSON(rep.Overlay),
	})
}

// handleHealth handles GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) buildReport(w http.ResponseWriter, r *http.Request) (*report.Report, bool) {
	window, err := s.parseWindow(r)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}

	rep, err := s.builder.Build(r.Context(), window)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}

	return rep, true
}

func (s *Server) parseWindow(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("window")
	if raw == "" {
		return s.defaultWindow, nil
	}

	window, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "window must be an integer, got %q", raw)
	}

	if !indicator.IsSupportedPeriod(window) {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "unsupported window %d, expected one of %v", window, indicator.SupportedPeriods)
	}

	return window, nil
}

// writeError maps domain errors to HTTP statuses:
// 400 bad window, 422 insufficient data, 502 data unavailable, 500 otherwise.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{Error: err.Error(), Code: int(errors.GetCode(err))}
	status := http.StatusInternalServerError

	var insufficient *errors.InsufficientDataError

	switch {
	case errors.As(err, &insufficient):
		status = http.StatusUnprocessableEntity
		resp.Error = report.InsufficientMessage(insufficient)
		resp.Required = insufficient.Required
		available := insufficient.Available
		resp.Available = &available
	case errors.IsDataUnavailableError(err):
		status = http.StatusBadGateway
	case errors.HasCode(err, errors.ErrCodeInvalidParameter), errors.HasCode(err, errors.ErrCodeInvalidPeriod):
		status = http.StatusBadRequest
	}

	s.logger.Warn("Request failed",
		zap.String("request_id", RequestID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	)

	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
