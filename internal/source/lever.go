package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/okaneo/jobscout/internal/model"
)

const (
	leverBaseURL   = "https://api.lever.co/v0/postings"
	leverPageLimit = 100
)

// leverStrategy fetches the Lever public postings API using skip/limit
// offset pagination.
type leverStrategy struct {
	companySlug string
	company     string
}

func newLever(desc Descriptor) (Strategy, error) {
	if desc.Token == "" {
		return nil, fmt.Errorf("lever source %s: company slug required", desc.Name)
	}
	return &leverStrategy{companySlug: desc.Token, company: desc.Name}, nil
}

func (s *leverStrategy) Platform() string { return "lever" }
func (s *leverStrategy) Mode() Mode       { return ModeAPI }

func (s *leverStrategy) BuildRequest(ctx context.Context, page Page) (*http.Request, error) {
	url := fmt.Sprintf("%s/%s?mode=json&skip=%d&limit=%d", leverBaseURL, s.companySlug, page.Offset, leverPageLimit)
	return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
}

func (s *leverStrategy) ParsePage(body []byte, page Page) ([]json.RawMessage, *Page, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, nil, fmt.Errorf("lever page for %s: %w", s.companySlug, err)
	}
	// A short page means the board is exhausted.
	if len(records) < leverPageLimit {
		return records, nil, nil
	}
	return records, &Page{Offset: page.Offset + len(records)}, nil
}

// leverJob is a single job in the Lever API response.
type leverJob struct {
	Text             string `json:"text"`
	DescriptionPlain string `json:"descriptionPlain"`
	Categories       struct {
		Location     string   `json:"location"`
		AllLocations []string `json:"allLocations"`
	} `json:"categories"`
	CreatedAt int64  `json:"createdAt"`
	HostedURL string `json:"hostedUrl"`
}

func (s *leverStrategy) MapRecord(raw json.RawMessage) model.Posting {
	var lj leverJob
	if err := json.Unmarshal(raw, &lj); err != nil {
		return model.Posting{Source: "lever"}
	}

	// Prefer allLocations when available, fall back to the single location.
	location := lj.Categories.Location
	if len(lj.Categories.AllLocations) > 0 {
		location = strings.Join(lj.Categories.AllLocations, ", ")
	}

	// createdAt is Unix milliseconds.
	var postedAt *time.Time
	if lj.CreatedAt > 0 {
		t := time.UnixMilli(lj.CreatedAt).UTC()
		postedAt = &t
	}

	return model.Posting{
		Company:     s.company,
		Title:       lj.Text,
		Location:    location,
		URL:         lj.HostedURL,
		Description: snippet(lj.DescriptionPlain),
		PostedAt:    postedAt,
		Source:      "lever",
	}
}
