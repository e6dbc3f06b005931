// ABOUTME: LLM-backed reply engine calling the Gemini API via google.golang.org/genai.
// ABOUTME: Upstream failures surface as errors; the registry degrades them to text.

package engine

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// Gemini generates replies with the Gemini API. Unlike the rule-based
// variants it is non-deterministic: two calls with the same input may
// return different text.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini engine. The API key is required; the model
// defaults to a fast general-purpose one when empty.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Respond(ctx context.Context, workspace, text string) (string, error) {
	prompt := fmt.Sprintf("You are the assistant for workspace %q. Reply briefly to: %s", workspace, text)

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return result.Text(), nil
}
