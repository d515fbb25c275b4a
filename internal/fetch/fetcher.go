// Package fetch executes one source's fetch strategy: page iteration, the
// per-source result cap, and transport retries with bounded backoff.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/okaneo/jobscout/internal/model"
	"github.com/okaneo/jobscout/internal/source"
)

// RawResult is one source's unprocessed payload. Transient: consumed by the
// extractor, then discarded.
type RawResult struct {
	Records   []json.RawMessage // API mode
	HTML      string            // HTML mode
	Status    int               // last HTTP status observed
	Truncated bool              // set when the per-source cap cut the results
}

// Fetcher drives strategies against real HTTP. One instance is shared by all
// sources; per-request state lives on the stack.
type Fetcher struct {
	client     *http.Client
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewFetcher creates a fetcher. maxRetries is the number of additional
// attempts per page after the first failure; baseDelay is the delay before
// the first retry, doubled on each subsequent one.
func NewFetcher(client *http.Client, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client:     client,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// Fetch retrieves all pages for one source, stopping when the strategy
// reports done, the cap is reached (Truncated set), or transport retries are
// exhausted. Failures come back as *model.SourceError so the orchestrator can
// record them without aborting other sources.
func (f *Fetcher) Fetch(ctx context.Context, desc source.Descriptor, strat source.Strategy) (RawResult, error) {
	if strat.Mode() == source.ModeHTML {
		body, status, err := f.getPage(ctx, strat, source.Page{})
		if err != nil {
			return RawResult{}, &model.SourceError{Source: desc.Name, Kind: model.FailureUnavailable, Err: err}
		}
		return RawResult{HTML: string(body), Status: status}, nil
	}

	limit := desc.EffectiveCap()
	var res RawResult
	page := source.Page{}

	for {
		body, status, err := f.getPage(ctx, strat, page)
		if err != nil {
			return RawResult{}, &model.SourceError{Source: desc.Name, Kind: model.FailureUnavailable, Err: err}
		}
		res.Status = status

		records, next, err := strat.ParsePage(body, page)
		if err != nil {
			return RawResult{}, &model.SourceError{Source: desc.Name, Kind: model.FailureExtraction, Err: err}
		}
		res.Records = append(res.Records, records...)

		if len(res.Records) >= limit {
			res.Records = res.Records[:limit]
			res.Truncated = true
			f.logger.Warn("source cap reached, truncating", "source", desc.Name, "cap", limit)
			break
		}
		if next == nil {
			break
		}
		page = *next
	}

	return res, nil
}

// getPage performs one page request, retrying transient failures with
// exponential backoff. Within a source, pages are strictly sequential: each
// page's token depends on the prior response.
func (f *Fetcher) getPage(ctx context.Context, strat source.Strategy, page source.Page) ([]byte, int, error) {
	body, status, err := f.doRequest(ctx, strat, page)
	if err == nil {
		return body, status, nil
	}

	lastErr := err
	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		if !isRetryable(lastErr) {
			return nil, 0, lastErr
		}

		delay := backoffDelay(f.baseDelay, attempt, lastErr)
		f.logger.Warn("retrying after transient error",
			"platform", strat.Platform(),
			"attempt", attempt,
			"max_retries", f.maxRetries,
			"delay", delay,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return nil, 0, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}

		body, status, err = f.doRequest(ctx, strat, page)
		if err == nil {
			return body, status, nil
		}
		lastErr = err
	}

	return nil, 0, lastErr
}

// doRequest executes a single page request and reads the body.
func (f *Fetcher) doRequest(ctx context.Context, strat source.Strategy, page source.Page) ([]byte, int, error) {
	req, err := strat.BuildRequest(ctx, page)
	if err != nil {
		return nil, 0, fmt.Errorf("%s build request: %w", strat.Platform(), err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s fetch: %w", strat.Platform(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("%s fetch: unexpected status %d", strat.Platform(), resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%s read body: %w", strat.Platform(), err)
	}
	return body, resp.StatusCode, nil
}
