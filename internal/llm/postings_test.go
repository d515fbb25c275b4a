package llm

import (
	"testing"
	"time"
)

func TestParsePostingList_PlainJSON(t *testing.T) {
	raw := `{"postings": [{"title": "Engineer", "company": "Acme", "location": "Remote", "url": "https://acme.com/1", "description": "Build", "date_posted": "2026-02-10"}]}`

	postings, err := parsePostingList(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
	p := postings[0]
	if p.Title != "Engineer" || p.Company != "Acme" {
		t.Errorf("unexpected posting %+v", p)
	}
	want := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	if p.PostedAt == nil || !p.PostedAt.Equal(want) {
		t.Errorf("expected PostedAt %v, got %v", want, p.PostedAt)
	}
}

func TestParsePostingList_CodeFences(t *testing.T) {
	raw := "Here are the postings:\n```json\n{\"postings\": [{\"title\": \"Engineer\", \"company\": \"Acme\"}]}\n```\nLet me know if you need more."

	postings, err := parsePostingList(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
}

func TestParsePostingList_BareFences(t *testing.T) {
	raw := "```\n{\"postings\": []}\n```"

	postings, err := parsePostingList(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 0 {
		t.Fatalf("expected empty list, got %d", len(postings))
	}
}

func TestParsePostingList_JSONBuriedInProse(t *testing.T) {
	raw := `The page contains one role. {"postings": [{"title": "Engineer", "company": "Acme"}]} Hope that helps!`

	postings, err := parsePostingList(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
}

func TestParsePostingList_GarbageIsError(t *testing.T) {
	if _, err := parsePostingList("sorry, I could not find any jobs"); err == nil {
		t.Fatal("expected error for unparseable response")
	}
}

func TestParsePostingList_EmptyListIsNotError(t *testing.T) {
	postings, err := parsePostingList(`{"postings": []}`)
	if err != nil {
		t.Fatalf("an empty list is a valid result: %v", err)
	}
	if len(postings) != 0 {
		t.Fatalf("expected 0 postings, got %d", len(postings))
	}
}

func TestParsePostingList_BadDateIgnored(t *testing.T) {
	raw := `{"postings": [{"title": "Engineer", "company": "Acme", "date_posted": "sometime last week"}]}`

	postings, err := parsePostingList(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if postings[0].PostedAt != nil {
		t.Error("expected unparseable date to yield nil PostedAt")
	}
}
