package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExtractPostings_Success(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"postings": [{"title": "Engineer", "company": "Acme", "location": "Remote"}]}`,
	}}
	e := NewExtractor(provider, testLogger())

	postings, err := e.ExtractPostings(context.Background(), "Open roles: Engineer, Remote", "Acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
	if postings[0].Title != "Engineer" {
		t.Errorf("unexpected title %q", postings[0].Title)
	}
}

func TestExtractPostings_PromptContainsCompanyAndText(t *testing.T) {
	provider := &scriptedProvider{responses: []string{`{"postings": []}`}}
	e := NewExtractor(provider, testLogger())

	if _, err := e.ExtractPostings(context.Background(), "unique page text marker", "Marker Co"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prompt := provider.prompts[0]
	if !strings.Contains(prompt, "Marker Co") {
		t.Error("expected prompt to carry the company name")
	}
	if !strings.Contains(prompt, "unique page text marker") {
		t.Error("expected prompt to carry the page text")
	}
}

func TestExtractPostings_TruncatesHugePages(t *testing.T) {
	provider := &scriptedProvider{responses: []string{`{"postings": []}`}}
	e := NewExtractor(provider, testLogger())

	huge := strings.Repeat("careers page filler ", 2000) // well over maxPageChars
	if _, err := e.ExtractPostings(context.Background(), huge, "Acme"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(provider.prompts[0], "[... content truncated ...]") {
		t.Error("expected the prompt to be truncated with a marker")
	}
}

func TestExtractPostings_TruncationKeepsValidUTF8(t *testing.T) {
	provider := &scriptedProvider{responses: []string{`{"postings": []}`}}
	e := NewExtractor(provider, testLogger())

	// The leading ASCII byte shifts the three-byte runes so a naive cut at
	// the limit would land mid-rune.
	huge := "x" + strings.Repeat("日本語の求人情報", 1000)
	if _, err := e.ExtractPostings(context.Background(), huge, "Acme"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !utf8.ValidString(provider.prompts[0]) {
		t.Error("truncated prompt contains invalid UTF-8")
	}
	if !strings.Contains(provider.prompts[0], "[... content truncated ...]") {
		t.Error("expected the prompt to be truncated with a marker")
	}
}

func TestExtractPostings_ProviderFailure(t *testing.T) {
	e := NewExtractor(&scriptedProvider{err: errors.New("offline")}, testLogger())

	if _, err := e.ExtractPostings(context.Background(), "text", "Acme"); err == nil {
		t.Fatal("expected provider failure to surface as an error")
	}
}

func TestExtractPostings_EmptyPageIsNotError(t *testing.T) {
	provider := &scriptedProvider{responses: []string{`{"postings": []}`}}
	e := NewExtractor(provider, testLogger())

	postings, err := e.ExtractPostings(context.Background(), "We are not hiring.", "Acme")
	if err != nil {
		t.Fatalf("zero postings found must not be an error: %v", err)
	}
	if len(postings) != 0 {
		t.Fatalf("expected 0 postings, got %d", len(postings))
	}
}
