// ABOUTME: HTTP server exposing the reply-generation backend.
// ABOUTME: Wraps the engine registry behind POST /respond with health and metrics.

package responder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/2389/relay-gateway/internal/config"
	"github.com/2389/relay-gateway/internal/engine"
)

var dispatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "relay_responder_dispatches_total",
	Help: "Engine dispatches served, by resolved engine name.",
}, []string{"engine"})

// Server hosts the engine registry behind the /respond endpoint.
type Server struct {
	registry   *engine.Registry
	logger     *slog.Logger
	httpServer *http.Server
}

// NewServer builds the responder HTTP server. The registry has already
// validated its default engine, so nothing here can fail per-request.
func NewServer(cfg *config.Config, registry *engine.Registry, logger *slog.Logger) *Server {
	s := &Server{
		registry: registry,
		logger:   logger.With("component", "responder"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/respond", s.handleRespond)
	mux.HandleFunc("/health", s.handleHealth)
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, promhttp.Handler())
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Server.ResponderAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler exposes the HTTP handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.logger.Info("responder listening",
		"addr", s.httpServer.Addr,
		"engines", s.registry.Names())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// handleRespond handles POST /respond. Missing workspace defaults to
// "default" and missing text to "" rather than failing; the engines accept
// empty input.
func (s *Server) handleRespond(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Workspace == "" {
		req.Workspace = "default"
	}

	reply, resolved := s.registry.Dispatch(r.Context(), req.Provider, req.Workspace, req.Text, req.Slow)
	dispatchesTotal.WithLabelValues(resolved).Inc()

	s.logger.Debug("dispatched reply",
		"workspace", req.Workspace,
		"engine", resolved,
		"slow", req.Slow)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RespondResponse{
		Reply:  reply,
		Engine: resolved,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
