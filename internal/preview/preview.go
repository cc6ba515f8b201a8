// Package preview serves a built site directory for local review.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"
)

// Server wraps a local file server over the generated output directory.
type Server struct {
	logger  *slog.Logger
	dir     string
	port    int
	verbose bool
}

// New returns a preview server for dir. Port 0 auto-selects a free port.
func New(dir string, port int, logger *slog.Logger, verbose bool) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:  logger.With("component", "preview"),
		dir:     dir,
		port:    port,
		verbose: verbose,
	}
}

// Serve listens and blocks until ctx is done, then shuts the server down.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(s.port)))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info("preview serving",
		slog.String("addr", "http://"+listener.Addr().String()),
		slog.String("dir", s.dir))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Handler builds the middleware-wrapped file server. Exposed for tests.
func (s *Server) Handler() http.Handler {
	h := http.Handler(http.FileServer(http.Dir(s.dir)))
	h = s.logging(h)
	h = s.recovery(h)
	return h
}

func (s *Server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.ErrorContext(r.Context(), "panic recovered",
					slog.Any("err", err),
					slog.String("path", r.URL.Path))
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.verbose {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.logger.LogAttrs(r.Context(), slog.LevelInfo, "http request",
			slog.String("method", r.Method),
			slog.String("uri", r.RequestURI),
			slog.Int("status", sw.status),
			slog.Duration("latency", time.Since(start)))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
