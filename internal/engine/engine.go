// ABOUTME: Reply engine interface and the built-in echo and rule variants.
// ABOUTME: Each engine is a pure (workspace, text) -> reply strategy.

package engine

import (
	"context"
	"fmt"
	"strings"
)

// Engine produces a complete reply for a user message in a workspace.
// Implementations must be safe for concurrent use.
type Engine interface {
	Respond(ctx context.Context, workspace, text string) (string, error)
}

// Echo replies with the input text reversed, tagged with the workspace.
type Echo struct{}

func (Echo) Respond(_ context.Context, workspace, text string) (string, error) {
	runes := []rune(text)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return fmt.Sprintf("Echo (%s): %s", workspace, string(runes)), nil
}

// Rule replies from a small set of keyword rules.
type Rule struct{}

func (Rule) Respond(_ context.Context, _ string, text string) (string, error) {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "hello") || strings.Contains(t, "hi"):
		return "Hi, how can I help?", nil
	case strings.Contains(t, "price"):
		return "Prices are dynamic; which product?", nil
	default:
		return "I'm a simple bot. Try 'hello' or ask about 'price'.", nil
	}
}
