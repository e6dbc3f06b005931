// ABOUTME: Shared test fixtures for the gateway package.
// ABOUTME: Mock backend, gateway constructor, and SSE frame parsing.

package gateway

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/2389/relay-gateway/internal/config"
	"github.com/2389/relay-gateway/internal/engine"
	"github.com/2389/relay-gateway/internal/responder"
	"github.com/2389/relay-gateway/internal/store"
)

// registryBackend dispatches against an in-process engine registry, skipping
// the HTTP hop. Used by end-to-end scenario tests.
type registryBackend struct {
	registry *engine.Registry
}

func newRegistryBackend(t *testing.T) Backend {
	t.Helper()
	registry, err := engine.NewRegistry(map[string]engine.Engine{
		"echo": engine.Echo{},
		"rule": engine.Rule{},
	}, "echo", nil)
	require.NoError(t, err)
	return &registryBackend{registry: registry}
}

func (b *registryBackend) Dispatch(ctx context.Context, workspace, text, provider string, slow bool) (*responder.RespondResponse, error) {
	reply, resolved := b.registry.Dispatch(ctx, provider, workspace, text, slow)
	return &responder.RespondResponse{Reply: reply, Engine: resolved}, nil
}

// dispatchCall records one backend invocation for assertions.
type dispatchCall struct {
	Workspace string
	Text      string
	Provider  string
	Slow      bool
}

// mockBackend implements Backend with canned replies.
type mockBackend struct {
	mu     sync.Mutex
	reply  string
	engine string
	err    error
	calls  []dispatchCall
}

func (m *mockBackend) Dispatch(_ context.Context, workspace, text, provider string, slow bool) (*responder.RespondResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, dispatchCall{Workspace: workspace, Text: text, Provider: provider, Slow: slow})
	if m.err != nil {
		return nil, m.err
	}
	engine := m.engine
	if engine == "" {
		engine = "echo"
	}
	return &responder.RespondResponse{Reply: m.reply, Engine: engine}, nil
}

func (m *mockBackend) Calls() []dispatchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]dispatchCall, len(m.calls))
	copy(out, m.calls)
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		Streaming: config.StreamingConfig{
			ChunkWords:    5,
			ChunkInterval: time.Millisecond,
		},
	}
}

func newTestGateway(t *testing.T, backend Backend) (*Gateway, *store.Store) {
	t.Helper()
	st := store.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(testConfig(), st, backend, logger), st
}

// sseFrame is one parsed server-sent event.
type sseFrame struct {
	Event string // empty for plain data frames
	Data  string
}

// parseSSE splits an event-stream body into frames.
func parseSSE(t *testing.T, body string) []sseFrame {
	t.Helper()

	var frames []sseFrame
	var current sseFrame
	var open bool

	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if open {
				frames = append(frames, current)
				current = sseFrame{}
				open = false
			}
		case strings.HasPrefix(line, "event: "):
			current.Event = strings.TrimPrefix(line, "event: ")
			open = true
		case strings.HasPrefix(line, "data: "):
			current.Data = strings.TrimPrefix(line, "data: ")
			open = true
		default:
			t.Fatalf("unexpected SSE line: %q", line)
		}
	}
	require.NoError(t, scanner.Err())
	if open {
		frames = append(frames, current)
	}
	return frames
}

// openStreamFrames reads and parses an already-open stream response.
func openStreamFrames(t *testing.T, resp *http.Response) []sseFrame {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return parseSSE(t, string(body))
}

// openStream performs a full streaming session and returns its frames.
func openStream(t *testing.T, ts *httptest.Server, tenant, msgID, provider string) []sseFrame {
	t.Helper()

	url := ts.URL + "/stream/" + tenant + "/" + msgID
	if provider != "" {
		url += "?provider=" + provider
	}

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return parseSSE(t, string(body))
}
