package summarize

import (
	"context"
	"errors"
	"fmt"
	"time"

	genai "google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("summarize: empty model response")

// GeminiSummarizer asks a Gemini model for summaries.
type GeminiSummarizer struct {
	cli      *genai.Client
	model    string
	attempts int
	backoff  time.Duration
}

// NewGemini creates a summarizer. An empty apiKey lets the client read
// GEMINI_API_KEY or GOOGLE_API_KEY from the environment.
func NewGemini(ctx context.Context, apiKey, model string) (*GeminiSummarizer, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiSummarizer{cli: cli, model: model, attempts: 3, backoff: 300 * time.Millisecond}, nil
}

// Summarize sends the prompt, retrying with exponential backoff.
func (g *GeminiSummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < g.attempts; attempt++ {
		resp, err := g.cli.Models.GenerateContent(ctx, g.model,
			[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
			&genai.GenerateContentConfig{ResponseMIMEType: "text/plain"},
		)
		switch {
		case err != nil:
			lastErr = err
		case len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0:
			lastErr = ErrEmptyResponse
		default:
			return resp.Candidates[0].Content.Parts[0].Text, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(g.backoff * time.Duration(1<<attempt)):
		}
	}
	return "", fmt.Errorf("gemini %s: %w", g.model, lastErr)
}
