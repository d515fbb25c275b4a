package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/okaneo/jobscout/internal/model"
)

// rawPosting is the JSON shape the prompts ask for (matches
// postingListSchema on the OpenAI path).
type rawPosting struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	URL         string `json:"url"`
	Description string `json:"description"`
	DatePosted  string `json:"date_posted"`
}

type postingList struct {
	Postings []rawPosting `json:"postings"`
}

var jsonObjectRegex = regexp.MustCompile(`(?s)\{.*\}`)

// parsePostingList deserializes an LLM response into postings. Providers
// without server-side schema enforcement may wrap the JSON in code fences or
// prose, so the payload is located defensively before unmarshaling. An
// unparseable response is an error, distinct from a valid empty list.
func parsePostingList(raw string) ([]model.Posting, error) {
	text := strings.TrimSpace(raw)

	// Strip markdown code fences if present.
	if idx := strings.Index(text, "```json"); idx >= 0 {
		text = text[idx+len("```json"):]
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	}

	if m := jsonObjectRegex.FindString(text); m != "" {
		text = m
	}

	var list postingList
	if err := json.Unmarshal([]byte(text), &list); err != nil {
		return nil, fmt.Errorf("unmarshal postings JSON: %w", err)
	}

	postings := make([]model.Posting, 0, len(list.Postings))
	for _, rp := range list.Postings {
		p := model.Posting{
			Title:       rp.Title,
			Company:     rp.Company,
			Location:    rp.Location,
			URL:         rp.URL,
			Description: rp.Description,
		}
		if rp.DatePosted != "" {
			if t, err := time.Parse("2006-01-02", rp.DatePosted); err == nil {
				p.PostedAt = &t
			}
		}
		postings = append(postings, p)
	}
	return postings, nil
}

// toRawPostings converts canonical postings to the prompt's JSON shape.
func toRawPostings(postings []model.Posting) []rawPosting {
	out := make([]rawPosting, len(postings))
	for i, p := range postings {
		out[i] = rawPosting{
			Title:       p.Title,
			Company:     p.Company,
			Location:    p.Location,
			URL:         p.URL,
			Description: p.Description,
		}
		if p.PostedAt != nil {
			out[i].DatePosted = p.PostedAt.Format("2006-01-02")
		}
	}
	return out
}
