// Package narrative produces free-text commentary over a finished portfolio
// snapshot. It is purely additive: commentary failures never block snapshot
// production or delivery.
package narrative

import (
	"context"
	"fmt"
	"strings"

	"LynchScreen/internal/model"
	"LynchScreen/internal/notifier"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const systemInstruction = `You are a Peter Lynch style investment analyst.
Given a weekly screening portfolio (buckets of tickers with PEG, growth and
confidence figures) and the changes since the previous run, write a short
commentary: one line per new or dropped ticker explaining the likely reason,
and a closing paragraph on the overall portfolio tilt. Be concrete, no
disclaimers.`

// Summarizer generates commentary with the Gemini API.
type Summarizer struct {
	client *genai.Client
	model  string
	log    zerolog.Logger
}

// New creates a Summarizer. The genai client reads GEMINI_API_KEY from the
// environment when apiKey is empty.
func New(ctx context.Context, apiKey, modelName string, log zerolog.Logger) (*Summarizer, error) {
	cfg := &genai.ClientConfig{}
	if apiKey != "" {
		cfg.APIKey = apiKey
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init genai client: %w", err)
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}
	return &Summarizer{client: client, model: modelName, log: log}, nil
}

// Summarize returns commentary for the snapshot and delta. On any failure
// it returns an empty string and the error; callers log and carry on.
func (s *Summarizer) Summarize(ctx context.Context, snap *model.PortfolioSnapshot, delta model.HistoryDelta) (string, error) {
	prompt := buildPrompt(snap, delta)

	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
		})
	if err != nil {
		return "", fmt.Errorf("generate commentary: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty commentary response")
	}

	text := strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)
	s.log.Info().Int("chars", len(text)).Msg("commentary generated")
	return text, nil
}

// buildPrompt reuses the notifier's report as the model's view of the run;
// it already carries every figure the commentary should reference.
func buildPrompt(snap *model.PortfolioSnapshot, delta model.HistoryDelta) string {
	var b strings.Builder
	b.WriteString("Weekly screening result:\n\n")
	b.WriteString(notifier.FormatRunReport(snap, delta))
	return b.String()
}
