// ABOUTME: Gateway server wiring: routes, lifecycle, and graceful shutdown.
// ABOUTME: Holds the store, the backend client, and the streaming knobs.

package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/2389/relay-gateway/internal/config"
	"github.com/2389/relay-gateway/internal/responder"
	"github.com/2389/relay-gateway/internal/store"
)

// Backend is the gateway's view of the reply-generation service. Implemented
// by responder.Client in production and by mocks in tests.
type Backend interface {
	Dispatch(ctx context.Context, workspace, text, provider string, slow bool) (*responder.RespondResponse, error)
}

// Gateway orchestrates message submission and streamed reply delivery.
type Gateway struct {
	config     *config.Config
	store      *store.Store
	backend    Backend
	logger     *slog.Logger
	httpServer *http.Server

	// serverID identifies this gateway instance in logs
	serverID string

	chunkWords    int
	chunkInterval time.Duration
}

// New creates a Gateway serving the conversation API on the configured
// address.
func New(cfg *config.Config, st *store.Store, backend Backend, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}

	g := &Gateway{
		config:        cfg,
		store:         st,
		backend:       backend,
		logger:        logger.With("component", "gateway"),
		serverID:      uuid.New().String()[:8],
		chunkWords:    cfg.Streaming.ChunkWords,
		chunkInterval: cfg.Streaming.ChunkInterval,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/send", g.handleSend)
	mux.HandleFunc("/stream/", g.handleStream)
	mux.HandleFunc("/history", g.handleHistory)

	// Health endpoints
	mux.HandleFunc("/health", g.handleHealth)
	mux.HandleFunc("/health/ready", g.handleReady)

	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, promhttp.Handler())
	}

	g.httpServer = &http.Server{
		Addr:              cfg.Server.GatewayAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return g
}

// Handler exposes the HTTP handler for tests.
func (g *Gateway) Handler() http.Handler {
	return g.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully. Conversation
// history lives in process memory only: a restart discards it.
func (g *Gateway) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := g.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	g.logger.Info("gateway listening",
		"addr", g.httpServer.Addr,
		"server_id", g.serverID,
		"responder_url", g.config.Responder.URL)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	return g.Shutdown()
}

// Shutdown stops the HTTP server, letting in-flight streams finish briefly.
func (g *Gateway) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	g.logger.Info("shutting down gateway")
	return g.httpServer.Shutdown(shutdownCtx)
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (g *Gateway) handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("READY"))
}
