// ABOUTME: HTTP client for the gateway side of the /respond contract.
// ABOUTME: No retries and no timeout; a single failed call fails the caller once.

package responder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Client calls a remote responder. The zero-timeout http.Client is
// deliberate: the contract enforces no deadline on dispatch calls, so a
// hanging responder hangs the enclosing request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a responder client for the given base URL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logger.With("component", "responder-client"),
	}
}

// Dispatch requests a reply for the given workspace and text. The provider
// name is passed through as-is; the responder resolves it against its
// registry, falling back to its default for unknown names.
func (c *Client) Dispatch(ctx context.Context, workspace, text, provider string, slow bool) (*RespondResponse, error) {
	body, err := json.Marshal(RespondRequest{
		Workspace: workspace,
		Text:      text,
		Provider:  provider,
		Slow:      slow,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding respond request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/respond", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating respond request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling responder: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("responder returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out RespondResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding respond response: %w", err)
	}

	c.logger.Debug("responder dispatch complete",
		"workspace", workspace,
		"engine", out.Engine,
		"slow", slow)

	return &out, nil
}
