// Package preview serves the generated site locally and rebuilds it when
// the sources change.
package preview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/labsite/pkg/logger"
	"github.com/okian/labsite/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// Server serves the output directory, a health probe and metrics.
type Server struct {
	dir  string
	addr string
	log  logger.Logger
	mux  *http.ServeMux
}

// NewServer creates a Server for the site in dir.
func NewServer(dir string, opts ...Option) *Server {
	s := &Server{dir: dir, addr: "127.0.0.1:8080", log: logger.Nop(), mux: http.NewServeMux()}
	for _, opt := range opts {
		opt(s)
	}
	s.mux.Handle("/healthz", MetricsMiddleware(http.HandlerFunc(handleHealth), "healthz"))
	s.mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	s.mux.Handle("/", MetricsMiddleware(http.FileServer(http.Dir(s.dir)), "site"))
	return s
}

// Addr returns the listen address.
func (s *Server) Addr() string { return s.addr }

// Handler exposes the routes.
func (s *Server) Handler() http.Handler { return s.mux }

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "starting preview server", logger.String("addr", s.addr), logger.String("dir", s.dir))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%w: %w", ErrServe, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info(ctx, "shutting down preview server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%w: shutdown: %w", ErrServe, err)
	}
	s.log.Info(ctx, "preview server stopped")
	return nil
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}
