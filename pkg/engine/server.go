package engine

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/virtmock/virtmock/pkg/httputil"
	"github.com/virtmock/virtmock/pkg/logging"
	"github.com/virtmock/virtmock/pkg/metrics"
)

// Server wires the mock handler, health endpoints and the metrics
// exposition onto one HTTP listener.
type Server struct {
	httpServer *http.Server
	log        *slog.Logger
}

// NewServer builds a Server routing the mount path to the handler.
// The metrics argument may be nil to disable the /metrics endpoint.
func NewServer(addr, mountPath string, handler *Handler, m *metrics.Metrics, log *slog.Logger) *Server {
	if log == nil {
		log = logging.Nop()
	}

	mux := http.NewServeMux()
	mount := strings.TrimSuffix(mountPath, "/")
	if mount == "" {
		mount = "/rest"
	}
	mux.Handle(mount+"/", handler)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteOK(w, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteOK(w, map[string]string{"status": "ready"})
	})
	if m != nil {
		mux.Handle("/metrics", m.Handler())
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Start listens and serves until Shutdown is called. It blocks.
func (s *Server) Start() error {
	s.log.Info("mock server listening", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server, letting in-flight requests
// (including delayed ones) finish within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down mock server")
	return s.httpServer.Shutdown(ctx)
}
