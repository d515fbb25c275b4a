package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/okaneo/jobscout/internal/model"
)

// normalizeBatchSize keeps each prompt small enough for modest local models.
const normalizeBatchSize = 3

// Ensure Normalizer implements model.Normalizer.
var _ model.Normalizer = (*Normalizer)(nil)

// Normalizer is the LLM-backed variant of the normalization stage. It works
// in small batches and falls back to the unmodified batch on any failure, so
// it can never make a run worse than skipping normalization entirely.
type Normalizer struct {
	provider Provider
	logger   *slog.Logger
}

// NewNormalizer creates an LLM-backed normalizer.
func NewNormalizer(provider Provider, logger *slog.Logger) *Normalizer {
	return &Normalizer{provider: provider, logger: logger}
}

// Normalize cleans postings batch by batch, preserving order and count.
func (n *Normalizer) Normalize(ctx context.Context, postings []model.Posting) ([]model.Posting, error) {
	out := make([]model.Posting, 0, len(postings))
	for start := 0; start < len(postings); start += normalizeBatchSize {
		end := start + normalizeBatchSize
		if end > len(postings) {
			end = len(postings)
		}
		out = append(out, n.normalizeBatch(ctx, postings[start:end])...)
	}
	return out, nil
}

// normalizeBatch returns the normalized batch, or the input unchanged when
// the LLM fails or returns the wrong number of postings.
func (n *Normalizer) normalizeBatch(ctx context.Context, batch []model.Posting) []model.Posting {
	jobsJSON, err := json.MarshalIndent(toRawPostings(batch), "", "  ")
	if err != nil {
		n.logger.Warn("normalize batch marshal failed, passing through", "error", err)
		return batch
	}

	var promptBuf bytes.Buffer
	err = normalizeTemplate.Execute(&promptBuf, struct{ JobsJSON string }{JobsJSON: string(jobsJSON)})
	if err != nil {
		n.logger.Warn("normalize prompt render failed, passing through", "error", err)
		return batch
	}

	raw, err := n.provider.Complete(ctx, promptBuf.String())
	if err != nil {
		n.logger.Warn("llm normalize failed, passing through", "error", err)
		return batch
	}

	normalized, err := parsePostingList(raw)
	if err != nil {
		n.logger.Warn("llm normalize returned garbage, passing through", "error", err)
		return batch
	}
	if len(normalized) != len(batch) {
		n.logger.Warn("llm normalize changed batch size, passing through",
			"want", len(batch), "got", len(normalized))
		return batch
	}

	// The LLM shape carries no source tag; restore it from the input.
	for i := range normalized {
		normalized[i].Source = batch[i].Source
		if normalized[i].PostedAt == nil {
			normalized[i].PostedAt = batch[i].PostedAt
		}
	}
	return normalized
}
