// ABOUTME: Named engine registry with default fallback and dispatch.
// ABOUTME: Engine invocation errors degrade to a textual reply, never a failure.

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// slowPadding is appended to paced replies to simulate a longer computation.
// It is an artificial-latency knob for the streaming demo path, not a
// correctness requirement; paced replies are longer by a constant token count.
const slowPadding = "                     (slower mode appended extra text.)"

// Registry resolves engine names to instances, falling back to a configured
// default for unknown names.
type Registry struct {
	engines     map[string]Engine
	defaultName string
	logger      *slog.Logger
}

// NewRegistry builds a registry over the given engines. A default name that
// is not registered is a configuration error: it fails here, at startup,
// never per-request.
func NewRegistry(engines map[string]Engine, defaultName string, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, ok := engines[defaultName]; !ok {
		return nil, fmt.Errorf("default engine %q is not registered", defaultName)
	}
	return &Registry{
		engines:     engines,
		defaultName: defaultName,
		logger:      logger.With("component", "engine-registry"),
	}, nil
}

// Names returns the registered engine names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	return names
}

// Resolve returns the engine for name, or the default engine when the name
// is unknown, along with the name that was actually resolved.
func (r *Registry) Resolve(name string) (Engine, string) {
	if eng, ok := r.engines[name]; ok {
		return eng, name
	}
	return r.engines[r.defaultName], r.defaultName
}

// Dispatch resolves name and invokes the engine. An engine failure is caught
// here and converted into a visible "error" reply so the conversation always
// receives some assistant text rather than a broken stream. When slow is set
// the fixed padding suffix is appended.
func (r *Registry) Dispatch(ctx context.Context, name, workspace, text string, slow bool) (reply, resolved string) {
	eng, resolved := r.Resolve(name)

	reply, err := eng.Respond(ctx, workspace, text)
	if err != nil {
		r.logger.Error("engine invocation failed",
			"engine", resolved,
			"workspace", workspace,
			"error", err)
		reply = fmt.Sprintf("(error: the %s engine failed to produce a reply)", resolved)
	}

	if slow {
		reply += slowPadding
	}
	return reply, resolved
}

// PaddingTokens reports how many whitespace-delimited tokens the slow-mode
// padding adds to a reply. Exposed for the streaming layer's accounting.
func PaddingTokens() int {
	return len(strings.Fields(slowPadding))
}
