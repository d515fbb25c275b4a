package extract

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okaneo/jobscout/internal/fetch"
	"github.com/okaneo/jobscout/internal/model"
	"github.com/okaneo/jobscout/internal/source"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mapperStrategy is a fake API strategy whose MapRecord reads {company,title}
// straight out of the record.
type mapperStrategy struct{}

func (mapperStrategy) Platform() string  { return "fake" }
func (mapperStrategy) Mode() source.Mode { return source.ModeAPI }
func (mapperStrategy) BuildRequest(ctx context.Context, _ source.Page) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, http.MethodGet, "http://unused", nil)
}
func (mapperStrategy) ParsePage([]byte, source.Page) ([]json.RawMessage, *source.Page, error) {
	return nil, nil, nil
}
func (mapperStrategy) MapRecord(raw json.RawMessage) model.Posting {
	var p struct {
		Company string `json:"company"`
		Title   string `json:"title"`
	}
	_ = json.Unmarshal(raw, &p)
	return model.Posting{Company: p.Company, Title: p.Title, Source: "fake"}
}

// bareStrategy is an API strategy without a usable RecordMapper.
type bareStrategy struct{ mapperStrategy }

func (bareStrategy) MapRecord(json.RawMessage) {} // wrong shape on purpose

// fakeLLM returns canned postings or an error.
type fakeLLM struct {
	postings []model.Posting
	err      error
}

func (f fakeLLM) ExtractPostings(context.Context, string, string) ([]model.Posting, error) {
	return f.postings, f.err
}

func TestExtractAPIDropsInvalidRecords(t *testing.T) {
	e := NewExtractor(nil, time.Second, testLogger())
	raw := fetch.RawResult{Records: []json.RawMessage{
		json.RawMessage(`{"company": "Acme", "title": "Engineer"}`),
		json.RawMessage(`{}`),
		json.RawMessage(`{"title": "Analyst"}`),
	}}

	postings, dropped, err := e.Extract(context.Background(), raw, source.Descriptor{Name: "acme"}, mapperStrategy{})
	require.NoError(t, err)

	assert.Len(t, postings, 2, "a title alone is enough identity to keep")
	assert.Equal(t, 1, dropped, "missing both company and title is dropped and counted")
}

func TestExtractAPIWithoutMapperFails(t *testing.T) {
	e := NewExtractor(nil, time.Second, testLogger())

	_, _, err := e.Extract(context.Background(), fetch.RawResult{}, source.Descriptor{Name: "acme"}, bareStrategy{})
	require.Error(t, err)

	var serr *model.SourceError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, model.FailureExtraction, serr.Kind)
}

func TestExtractAPIIdempotent(t *testing.T) {
	e := NewExtractor(nil, time.Second, testLogger())
	raw := fetch.RawResult{Records: []json.RawMessage{
		json.RawMessage(`{"company": "Acme", "title": "Engineer"}`),
	}}

	first, _, err := e.Extract(context.Background(), raw, source.Descriptor{Name: "acme"}, mapperStrategy{})
	require.NoError(t, err)
	second, _, err := e.Extract(context.Background(), raw, source.Descriptor{Name: "acme"}, mapperStrategy{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExtractHTMLDelegatesToLLM(t *testing.T) {
	llm := fakeLLM{postings: []model.Posting{
		{Title: "Engineer"},
		{Company: "Named Co", Title: "Analyst", Source: "custom"},
	}}
	e := NewExtractor(llm, time.Second, testLogger())

	raw := fetch.RawResult{HTML: "<html><body><h1>Careers</h1><p>Engineer wanted</p></body></html>"}
	postings, dropped, err := e.Extract(context.Background(), raw, source.Descriptor{Name: "Acme", Platform: "html"}, htmlOnlyStrategy{})
	require.NoError(t, err)

	require.Len(t, postings, 2)
	assert.Equal(t, 0, dropped)
	assert.Equal(t, "Acme", postings[0].Company, "missing company defaults to the source name")
	assert.Equal(t, "html", postings[0].Source)
	assert.Equal(t, "Named Co", postings[1].Company, "existing fields are preserved")
	assert.Equal(t, "custom", postings[1].Source)
}

func TestExtractHTMLLLMFailureIsSourceError(t *testing.T) {
	e := NewExtractor(fakeLLM{err: errors.New("model unavailable")}, time.Second, testLogger())

	raw := fetch.RawResult{HTML: "<html><body>Careers</body></html>"}
	_, _, err := e.Extract(context.Background(), raw, source.Descriptor{Name: "Acme"}, htmlOnlyStrategy{})
	require.Error(t, err)

	var serr *model.SourceError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, model.FailureExtraction, serr.Kind, "LLM failure is an extraction failure, not zero postings")
}

func TestExtractHTMLWithoutLLMFails(t *testing.T) {
	e := NewExtractor(nil, time.Second, testLogger())

	raw := fetch.RawResult{HTML: "<html><body>Careers</body></html>"}
	_, _, err := e.Extract(context.Background(), raw, source.Descriptor{Name: "Acme"}, htmlOnlyStrategy{})
	require.Error(t, err)
}

// htmlOnlyStrategy reports HTML mode.
type htmlOnlyStrategy struct{}

func (htmlOnlyStrategy) Platform() string  { return "html" }
func (htmlOnlyStrategy) Mode() source.Mode { return source.ModeHTML }
func (htmlOnlyStrategy) BuildRequest(ctx context.Context, _ source.Page) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, http.MethodGet, "http://unused", nil)
}
func (htmlOnlyStrategy) ParsePage([]byte, source.Page) ([]json.RawMessage, *source.Page, error) {
	return nil, nil, nil
}

func TestReduceHTMLStripsBoilerplate(t *testing.T) {
	html := `<html><head><style>body{color:red}</style></head>
	<body><script>alert(1)</script><h1>Open   Roles</h1><p>Engineer</p></body></html>`

	text, err := ReduceHTML(html)
	require.NoError(t, err)
	assert.Equal(t, "Open Roles Engineer", text)
}

func TestReduceHTMLEmptyPageErrors(t *testing.T) {
	_, err := ReduceHTML("<html><body><script>only()</script></body></html>")
	assert.Error(t, err)
}
