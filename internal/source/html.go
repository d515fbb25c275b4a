package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Browser-like headers so career pages don't serve a bot wall.
var htmlHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
}

// htmlStrategy retrieves a free-form career page exactly once. Extraction of
// postings from the markup is delegated to the LLM collaborator downstream.
type htmlStrategy struct {
	pageURL string
	company string
}

func newHTML(desc Descriptor) (Strategy, error) {
	if desc.Endpoint == "" {
		return nil, fmt.Errorf("html source %s: page URL required", desc.Name)
	}
	return &htmlStrategy{pageURL: desc.Endpoint, company: desc.Name}, nil
}

func (s *htmlStrategy) Platform() string { return "html" }
func (s *htmlStrategy) Mode() Mode       { return ModeHTML }

func (s *htmlStrategy) BuildRequest(ctx context.Context, _ Page) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.pageURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range htmlHeaders {
		req.Header.Set(k, v)
	}
	return req, nil
}

// ParsePage yields no records: the fetcher keeps the raw markup and the
// extractor hands it to the LLM service.
func (s *htmlStrategy) ParsePage(_ []byte, _ Page) ([]json.RawMessage, *Page, error) {
	return nil, nil, nil
}
