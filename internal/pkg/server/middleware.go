package server

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request ID in responses.
const RequestIDHeader = "X-Request-Id"

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.NewV7()
		if err != nil {
			id = uuid.New()
		}

		w.Header().Set(RequestIDHeader, id.String())
		next.ServeHTTP(w, ContextWithRequestID(r, id))
	})
}

func (s *Server) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		attrs := []any{
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Int("bytes", rec.written),
			slog.Duration("duration", time.Since(start)),
		}
		if id, ok := RequestIDFromContext(r.Context()); ok {
			attrs = append(attrs, slog.String("request_id", id.String()))
		}

		s.l.Info("request served", attrs...)
	})
}

// withCompression compresses responses with brotli, or gzip, as accepted by the client.
func (s *Server) withCompression(next http.Handler) http.Handler {
	if !s.cfg.Compress {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		compressor := brotli.HTTPCompressor(w, r)
		defer func() {
			_ = compressor.Close()
		}()

		next.ServeHTTP(&compressWriter{ResponseWriter: w, w: compressor}, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter

	status  int
	written int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	n, err := r.ResponseWriter.Write(p)
	r.written += n

	return n, err
}

type compressWriter struct {
	http.ResponseWriter

	w io.Writer
}

func (c *compressWriter) WriteHeader(status int) {
	c.Header().Del("Content-Length")
	c.ResponseWriter.WriteHeader(status)
}

func (c *compressWriter) Write(p []byte) (int, error) {
	return c.w.Write(p)
}
