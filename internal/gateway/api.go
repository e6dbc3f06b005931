// ABOUTME: HTTP handlers for message submission and history reads.
// ABOUTME: POST /send returns a stream locator, not the reply itself.

package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/2389/relay-gateway/internal/store"
)

// botIDSuffix derives the assistant placeholder id from its user message id.
const botIDSuffix = "-bot"

// defaultTenant is used when the request carries no tenant header.
const defaultTenant = "default"

// tenantHeader carries the client-chosen tenant identity.
const tenantHeader = "X-Tenant-ID"

// SendRequest is the JSON request body for POST /send.
type SendRequest struct {
	Text     string `json:"text"`
	Provider string `json:"provider,omitempty"`
}

// SendResponse is the JSON response for POST /send. The reply itself is not
// here: the client opens StreamURL to receive it progressively.
type SendResponse struct {
	StreamURL string `json:"streamUrl"`
	MsgID     string `json:"msgId"`
}

// HistoryResponse is the JSON response for GET /history.
type HistoryResponse struct {
	History []store.Message `json:"history"`
}

// handleSend handles POST /send.
//
// Responsibilities:
//  1. Reject empty text before any state changes
//  2. Append the user record with a fresh timestamp-derived id
//  3. Dispatch to the backend synchronously; its reply text is discarded and
//     only the resolved engine name is kept (placeholder metadata). The full
//     reply is regenerated when the client opens the stream. Two calls for one
//     reply is the existing contract, kept as-is even though non-deterministic
//     engines may return different text on the second call.
//  4. Append the empty assistant placeholder correlated by the -bot id
//  5. Return the stream locator
//
// If the backend dispatch fails the whole submit fails and no placeholder is
// created; the user record stays.
func (g *Gateway) handleSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	tenant := tenantFromRequest(r)

	// A malformed or absent body is treated the same as missing text.
	var req SendRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Text == "" {
		g.sendJSONError(w, http.StatusBadRequest, "text required")
		return
	}

	requestID := uuid.New().String()
	// Timestamp-derived id: monotonic and unique enough at nanosecond
	// resolution for a single gateway process.
	msgID := strconv.FormatInt(time.Now().UnixNano(), 10)

	g.store.Append(tenant, store.Message{
		ID:   msgID,
		Role: store.RoleUser,
		Text: req.Text,
	})

	resp, err := g.backend.Dispatch(r.Context(), tenant, req.Text, req.Provider, false)
	if err != nil {
		g.logger.Error("backend dispatch failed",
			"request_id", requestID,
			"tenant", tenant,
			"msg_id", msgID,
			"error", err)
		g.sendJSONError(w, http.StatusBadGateway, "reply backend unavailable")
		return
	}

	g.store.Append(tenant, store.Message{
		ID:       msgID + botIDSuffix,
		Role:     store.RoleAssistant,
		Text:     "",
		Metadata: map[string]string{"engine": resp.Engine},
	})

	messagesSubmitted.Inc()
	g.logger.Debug("message accepted",
		"request_id", requestID,
		"tenant", tenant,
		"msg_id", msgID,
		"engine", resp.Engine)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SendResponse{
		StreamURL: fmt.Sprintf("/stream/%s/%s", tenant, msgID),
		MsgID:     msgID,
	})
}

// handleHistory handles GET /history. The ordered tenant log, including any
// assistant text appended so far by in-flight streams.
func (g *Gateway) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	tenant := tenantFromRequest(r)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HistoryResponse{
		History: g.store.History(tenant),
	})
}

// tenantFromRequest reads the tenant header, defaulting when absent.
func tenantFromRequest(r *http.Request) string {
	if tenant := r.Header.Get(tenantHeader); tenant != "" {
		return tenant
	}
	return defaultTenant
}

// sendJSONError writes a JSON error response.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
