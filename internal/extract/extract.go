// Package extract turns raw fetch results into canonical postings. API
// payloads are mapped structurally; HTML pages are reduced to text and handed
// to the external LLM service.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/okaneo/jobscout/internal/fetch"
	"github.com/okaneo/jobscout/internal/model"
	"github.com/okaneo/jobscout/internal/source"
)

// Extractor dispatches by source mode. It is idempotent: the same raw input
// always yields the same postings, which the dedup engine relies on.
type Extractor struct {
	llm        model.HTMLExtractor
	llmTimeout time.Duration
	logger     *slog.Logger
}

// NewExtractor creates an extractor. llm may be nil when no HTML sources are
// configured; llmTimeout bounds each extraction call.
func NewExtractor(llm model.HTMLExtractor, llmTimeout time.Duration, logger *slog.Logger) *Extractor {
	return &Extractor{
		llm:        llm,
		llmTimeout: llmTimeout,
		logger:     logger,
	}
}

// Extract maps one source's raw result to postings. The returned count is
// the number of invalid postings dropped (missing both company and title);
// they are counted but never surfaced as errors.
func (e *Extractor) Extract(ctx context.Context, raw fetch.RawResult, desc source.Descriptor, strat source.Strategy) ([]model.Posting, int, error) {
	if strat.Mode() == source.ModeHTML {
		return e.extractHTML(ctx, raw.HTML, desc)
	}

	mapper, ok := strat.(source.RecordMapper)
	if !ok {
		return nil, 0, &model.SourceError{
			Source: desc.Name,
			Kind:   model.FailureExtraction,
			Err:    fmt.Errorf("platform %s has no record mapper", strat.Platform()),
		}
	}

	postings := make([]model.Posting, 0, len(raw.Records))
	dropped := 0
	for _, rec := range raw.Records {
		p := mapper.MapRecord(rec)
		if !p.Valid() {
			dropped++
			continue
		}
		postings = append(postings, p)
	}

	if dropped > 0 {
		e.logger.Debug("dropped invalid records", "source", desc.Name, "dropped", dropped)
	}
	return postings, dropped, nil
}

// extractHTML reduces the page to text and delegates to the LLM service with
// a bounded timeout. A service failure yields zero postings and a recorded
// extraction error; it is never fatal to the run.
func (e *Extractor) extractHTML(ctx context.Context, html string, desc source.Descriptor) ([]model.Posting, int, error) {
	if e.llm == nil {
		return nil, 0, &model.SourceError{
			Source: desc.Name,
			Kind:   model.FailureExtraction,
			Err:    fmt.Errorf("html source configured but no LLM extractor available"),
		}
	}

	text, err := ReduceHTML(html)
	if err != nil {
		return nil, 0, &model.SourceError{Source: desc.Name, Kind: model.FailureExtraction, Err: err}
	}

	llmCtx, cancel := context.WithTimeout(ctx, e.llmTimeout)
	defer cancel()

	extracted, err := e.llm.ExtractPostings(llmCtx, text, desc.Name)
	if err != nil {
		return nil, 0, &model.SourceError{Source: desc.Name, Kind: model.FailureExtraction, Err: err}
	}

	postings := make([]model.Posting, 0, len(extracted))
	dropped := 0
	for _, p := range extracted {
		if !p.Valid() {
			dropped++
			continue
		}
		if p.Company == "" {
			p.Company = desc.Name
		}
		if p.Source == "" {
			p.Source = "html"
		}
		postings = append(postings, p)
	}
	return postings, dropped, nil
}
