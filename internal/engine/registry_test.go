// ABOUTME: Tests for the engine registry and dispatch behavior.
// ABOUTME: Covers default fallback, fail-fast config, slow padding, and error replies.

package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingEngine always errors, standing in for an upstream outage.
type failingEngine struct{}

func (failingEngine) Respond(context.Context, string, string) (string, error) {
	return "", errors.New("upstream unavailable")
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(map[string]Engine{
		"echo": Echo{},
		"rule": Rule{},
	}, "echo", nil)
	require.NoError(t, err)
	return r
}

func TestNewRegistry_MissingDefaultIsFatal(t *testing.T) {
	_, err := NewRegistry(map[string]Engine{"echo": Echo{}}, "nope", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestRegistry_ResolveKnownName(t *testing.T) {
	r := testRegistry(t)

	_, resolved := r.Resolve("rule")
	assert.Equal(t, "rule", resolved)
}

func TestRegistry_ResolveUnknownFallsBackToDefault(t *testing.T) {
	r := testRegistry(t)

	_, resolved := r.Resolve("unknown-name")
	assert.Equal(t, "echo", resolved)
}

func TestRegistry_DispatchReturnsResolvedName(t *testing.T) {
	r := testRegistry(t)

	reply, resolved := r.Dispatch(context.Background(), "bogus", "t1", "abc", false)
	assert.Equal(t, "echo", resolved)
	assert.Equal(t, "Echo (t1): cba", reply)
}

func TestRegistry_DispatchSlowAddsFixedPadding(t *testing.T) {
	r := testRegistry(t)

	fast, _ := r.Dispatch(context.Background(), "rule", "t1", "hello", false)
	slow, _ := r.Dispatch(context.Background(), "rule", "t1", "hello", true)

	assert.True(t, strings.HasPrefix(slow, fast), "slow reply must extend the fast one")
	extra := len(strings.Fields(slow)) - len(strings.Fields(fast))
	assert.Equal(t, PaddingTokens(), extra, "padding must add a constant token count")
}

func TestRegistry_DispatchEngineErrorBecomesTextualReply(t *testing.T) {
	r, err := NewRegistry(map[string]Engine{
		"flaky": failingEngine{},
	}, "flaky", nil)
	require.NoError(t, err)

	reply, resolved := r.Dispatch(context.Background(), "flaky", "t1", "hi", false)
	assert.Equal(t, "flaky", resolved)
	assert.Contains(t, reply, "error")
	assert.NotEmpty(t, reply, "conversation must always receive some assistant text")
}
