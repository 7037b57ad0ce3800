// Package server exposes the dashboard over HTTP.
//
// The page is rendered with the initial state of every chart. Each change of an input is posted
// back to the update endpoint, which replies with the recomputed chart options.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fredbi/launchdash/internal/pkg/chart"
	"github.com/fredbi/launchdash/internal/pkg/config"
	"github.com/fredbi/launchdash/internal/pkg/layout"
	"github.com/fredbi/launchdash/internal/pkg/reactive"
)

// Routes served by the dashboard.
const (
	LayoutPath = "/_launchdash-layout"
	UpdatePath = "/_launchdash-update"
	HealthPath = "/healthz"
)

const (
	maxBodySize       = 1 << 16
	readHeaderTimeout = 10 * time.Second
)

// Server serves a dashboard [layout.Layout] backed by a [reactive.Runtime].
type Server struct {
	cfg     config.Server
	layout  *layout.Layout
	runtime *reactive.Runtime
	handler http.Handler
	l       *slog.Logger
}

// UpdateResponse is the reply to an update: recomputed outputs keyed by graph ID.
type UpdateResponse struct {
	Outputs map[string]any `json:"outputs"`
}

// LayoutResponse describes the widget tree.
type LayoutResponse struct {
	Title  string           `json:"title"`
	Root   layout.Component `json:"layout"`
	Inputs []reactive.Cell  `json:"inputs"`
}

// ErrorResponse is returned on failed requests.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// New builds a dashboard [Server].
func New(cfg *config.Config, l *layout.Layout, runtime *reactive.Runtime) *Server {
	s := &Server{
		cfg:     cfg.Server,
		layout:  l,
		runtime: runtime,
		l:       slog.Default().With(slog.String("module", "server")),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET "+LayoutPath, s.handleLayout)
	mux.HandleFunc("POST "+UpdatePath, s.handleUpdate)
	mux.HandleFunc("GET "+HealthPath, s.handleHealth)

	s.handler = s.withRequestID(s.withAccessLog(s.withCompression(mux)))

	return s
}

// Handler returns the HTTP handler of the dashboard, with its middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe listens on the configured address and serves the dashboard until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %q: %w", s.cfg.Addr, err)
	}

	return s.Serve(ctx, ln)
}

// Serve the dashboard on a listener until the context is canceled, then shut down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}

	served := make(chan error, 1)
	go func() {
		served <- srv.Serve(ln)
	}()

	s.l.Info("dashboard available", slog.String("url", "http://"+ln.Addr().String()+"/"))

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("serving dashboard: %w", err)
	case <-ctx.Done():
	}

	s.l.Info("shutting down", slog.Duration("timeout", s.cfg.ShutdownDuration()))

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownDuration())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()

		return fmt.Errorf("shutting down: %w", err)
	}

	return nil
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	outputs, err := s.runtime.Initial(r.Context())
	if err != nil {
		s.writeError(w, r, statusFor(err), err)

		return
	}

	initial := make(map[string]*chart.Chart, len(outputs))
	for id, output := range outputs {
		if c, ok := output.(*chart.Chart); ok {
			initial[id] = c
		}
	}

	var buf bytes.Buffer
	if err := s.layout.Render(&buf, initial, UpdatePath); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleLayout(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, LayoutResponse{
		Title:  s.layout.Title,
		Root:   s.layout.Root,
		Inputs: s.runtime.Cells(),
	})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var update reactive.Update

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(&update); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("decoding update: %w", err))

		return
	}

	outputs, err := s.runtime.Dispatch(r.Context(), update)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)

		return
	}

	s.writeJSON(w, http.StatusOK, UpdateResponse{Outputs: outputs})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	buf, err := json.Marshal(body)
	if err != nil {
		s.l.Error("encoding response", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	resp := ErrorResponse{Error: err.Error()}
	if id, ok := RequestIDFromContext(r.Context()); ok {
		resp.RequestID = id.String()
	}

	if status >= http.StatusInternalServerError {
		s.l.Error("request failed", slog.String("error", err.Error()), slog.String("request_id", resp.RequestID))
	}

	s.writeJSON(w, status, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, reactive.ErrUnknownInput), errors.Is(err, reactive.ErrInvalidValue):
		return http.StatusBadRequest
	case errors.Is(err, reactive.ErrStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
