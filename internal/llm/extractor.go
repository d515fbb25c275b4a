package llm

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/okaneo/jobscout/internal/model"
)

// maxPageChars bounds how much page text goes into one prompt; career pages
// can be enormous and small local models choke on long contexts.
const maxPageChars = 12000

// Ensure Extractor implements model.HTMLExtractor.
var _ model.HTMLExtractor = (*Extractor)(nil)

// Extractor turns free-form career-page text into postings via the LLM
// provider.
type Extractor struct {
	provider Provider
	logger   *slog.Logger
}

// NewExtractor creates an extractor backed by the given provider.
func NewExtractor(provider Provider, logger *slog.Logger) *Extractor {
	return &Extractor{provider: provider, logger: logger}
}

// ExtractPostings sends the page text to the LLM and parses the structured
// response. An error means the service failed; an empty slice means the page
// genuinely listed nothing.
func (e *Extractor) ExtractPostings(ctx context.Context, text string, company string) ([]model.Posting, error) {
	if len(text) > maxPageChars {
		cut := maxPageChars
		// Back up to a rune boundary so the prompt stays valid UTF-8.
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "\n\n[... content truncated ...]"
	}

	var promptBuf bytes.Buffer
	err := extractTemplate.Execute(&promptBuf, struct {
		Company string
		Text    string
	}{Company: company, Text: text})
	if err != nil {
		return nil, fmt.Errorf("render extract prompt: %w", err)
	}

	raw, err := e.provider.Complete(ctx, promptBuf.String())
	if err != nil {
		return nil, fmt.Errorf("llm complete: %w", err)
	}

	postings, err := parsePostingList(raw)
	if err != nil {
		return nil, fmt.Errorf("parse postings: %w", err)
	}

	e.logger.Debug("llm extraction complete", "company", company, "postings", len(postings))
	return postings, nil
}
