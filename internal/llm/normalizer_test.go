package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/okaneo/jobscout/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scriptedProvider returns canned responses in order and records prompts.
type scriptedProvider struct {
	responses []string
	err       error
	prompts   []string
}

func (s *scriptedProvider) Complete(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	i := len(s.prompts) - 1
	if i >= len(s.responses) {
		return s.responses[len(s.responses)-1], nil
	}
	return s.responses[i], nil
}

// echoResponse builds a valid response echoing back n postings.
func echoResponse(titles ...string) string {
	list := postingList{}
	for _, title := range titles {
		list.Postings = append(list.Postings, rawPosting{Title: title, Company: "Acme"})
	}
	b, _ := json.Marshal(list)
	return string(b)
}

func inputPostings(n int) []model.Posting {
	out := make([]model.Posting, n)
	for i := range out {
		out[i] = model.Posting{Company: "Acme", Title: "Engineer", Source: "greenhouse"}
	}
	return out
}

func TestNormalizeBatchesOfThree(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		echoResponse("A", "B", "C"),
		echoResponse("D", "E", "F"),
		echoResponse("G"),
	}}
	n := NewNormalizer(provider, testLogger())

	out, err := n.Normalize(context.Background(), inputPostings(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 7 {
		t.Fatalf("expected 7 postings out, got %d", len(out))
	}
	if len(provider.prompts) != 3 {
		t.Errorf("expected 3 LLM calls for 7 postings, got %d", len(provider.prompts))
	}
	if out[6].Title != "G" {
		t.Errorf("expected final posting title G, got %q", out[6].Title)
	}
}

func TestNormalizeRestoresSourceTag(t *testing.T) {
	provider := &scriptedProvider{responses: []string{echoResponse("Cleaned")}}
	n := NewNormalizer(provider, testLogger())

	out, err := n.Normalize(context.Background(), inputPostings(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0].Source != "greenhouse" {
		t.Errorf("expected source restored from input, got %q", out[0].Source)
	}
}

func TestNormalizeFallsBackOnLLMError(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("model offline")}
	n := NewNormalizer(provider, testLogger())

	in := inputPostings(2)
	out, err := n.Normalize(context.Background(), in)
	if err != nil {
		t.Fatalf("fallback must not surface an error: %v", err)
	}
	if len(out) != 2 || out[0] != in[0] {
		t.Error("expected input passed through unchanged on LLM failure")
	}
}

func TestNormalizeFallsBackOnCountMismatch(t *testing.T) {
	// Two postings in, one posting back: the batch must pass through.
	provider := &scriptedProvider{responses: []string{echoResponse("OnlyOne")}}
	n := NewNormalizer(provider, testLogger())

	in := inputPostings(2)
	out, err := n.Normalize(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0].Title != "Engineer" {
		t.Error("expected original batch on count mismatch")
	}
}

func TestNormalizePromptCarriesBatchJSON(t *testing.T) {
	provider := &scriptedProvider{responses: []string{echoResponse("A")}}
	n := NewNormalizer(provider, testLogger())

	in := []model.Posting{{Company: "Acme", Title: "Distinctive Title 42"}}
	if _, err := n.Normalize(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(provider.prompts) != 1 || !strings.Contains(provider.prompts[0], "Distinctive Title 42") {
		t.Error("expected the prompt to embed the batch JSON")
	}
}
