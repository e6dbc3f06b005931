// ABOUTME: SSE streaming session: regenerates the reply, chunks it, paces delivery.
// ABOUTME: Each content frame is mirrored into the assistant record as it is sent.

package gateway

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/2389/relay-gateway/internal/store"
)

// defaultStreamProvider is used when the stream request names no provider.
const defaultStreamProvider = "echo"

// handleStream handles GET /stream/{tenant}/{msgId}?provider=<name>.
//
// The session re-derives the source text from the locator, asks the backend
// for the reply a second time (slow mode), and delivers it as paced SSE
// frames while appending each chunk to the stored assistant record. This is
// an independent generation call from the one made at submit time; for
// non-deterministic engines the two replies may differ. Known inconsistency,
// preserved.
//
// A session always terminates with exactly one "done" frame, even when the
// reply produces zero content chunks.
func (g *Gateway) handleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	tenant, msgID, ok := parseStreamPath(r.URL.Path)
	if !ok {
		g.sendJSONError(w, http.StatusBadRequest, "invalid stream path")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		g.logger.Error("streaming not supported")
		g.sendJSONError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	provider := r.URL.Query().Get("provider")
	if provider == "" {
		provider = defaultStreamProvider
	}

	// A missing user message is not an error: the session streams whatever
	// the backend returns for empty input.
	sourceText := ""
	if userMsg, found := g.store.Get(tenant, msgID); found {
		sourceText = userMsg.Text
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	activeStreams.Inc()
	defer activeStreams.Dec()

	resp, err := g.backend.Dispatch(r.Context(), tenant, sourceText, provider, true)
	if err != nil {
		g.logger.Error("backend dispatch failed for stream",
			"tenant", tenant,
			"msg_id", msgID,
			"error", err)
		writeFrame(w, "error", "reply backend unavailable")
		flusher.Flush()
		return
	}

	// Tolerate a session opened without a prior submit: create the
	// placeholder on demand.
	botID := msgID + botIDSuffix
	if _, found := g.store.Get(tenant, botID); !found {
		g.store.Append(tenant, store.Message{
			ID:       botID,
			Role:     store.RoleAssistant,
			Text:     "",
			Metadata: map[string]string{"engine": resp.Engine},
		})
	}

	chunks := chunkWords(resp.Reply, g.chunkWords)
	for i, chunk := range chunks {
		writeFrame(w, "", chunk)
		flusher.Flush()
		streamFrames.Inc()

		g.store.AppendText(tenant, botID, chunk)

		// Pace between chunks. The timer select yields this goroutine
		// without holding a thread, so concurrent sessions and history
		// reads proceed. Client disconnect cancels the remaining work.
		if i < len(chunks)-1 {
			timer := time.NewTimer(g.chunkInterval)
			select {
			case <-timer.C:
			case <-r.Context().Done():
				timer.Stop()
				g.logger.Debug("client disconnected mid-stream",
					"tenant", tenant,
					"msg_id", msgID,
					"chunks_sent", i+1,
					"chunks_total", len(chunks))
				return
			}
		}
	}

	writeFrame(w, "done", "done")
	flusher.Flush()

	g.logger.Debug("stream complete",
		"tenant", tenant,
		"msg_id", msgID,
		"engine", resp.Engine,
		"chunks", len(chunks))
}

// parseStreamPath extracts tenant and message id from /stream/{tenant}/{msgId}.
func parseStreamPath(path string) (tenant, msgID string, ok bool) {
	rest := strings.TrimPrefix(path, "/stream/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// chunkWords splits text into whitespace-delimited words and groups them
// into space-joined chunks of at most n words, preserving order. Empty or
// whitespace-only text yields no chunks.
func chunkWords(text string, n int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(words)+n-1)/n)
	for start := 0; start < len(words); start += n {
		end := start + n
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}

// writeFrame writes one SSE frame. Content frames carry only a data line;
// named frames (done, error) carry an event line first.
func writeFrame(w http.ResponseWriter, event, data string) {
	if event != "" {
		fmt.Fprintf(w, "event: %s\n", event)
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}
