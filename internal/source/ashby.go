package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/okaneo/jobscout/internal/model"
)

const ashbyBaseURL = "https://api.ashbyhq.com/posting-api/job-board"

// ashbyStrategy fetches the Ashby public job board API. The whole board
// arrives in one response; unlisted postings are filtered out at parse time.
type ashbyStrategy struct {
	boardToken string
	company    string
}

func newAshby(desc Descriptor) (Strategy, error) {
	if desc.Token == "" {
		return nil, fmt.Errorf("ashby source %s: board token required", desc.Name)
	}
	return &ashbyStrategy{boardToken: desc.Token, company: desc.Name}, nil
}

func (s *ashbyStrategy) Platform() string { return "ashby" }
func (s *ashbyStrategy) Mode() Mode       { return ModeAPI }

func (s *ashbyStrategy) BuildRequest(ctx context.Context, _ Page) (*http.Request, error) {
	url := fmt.Sprintf("%s/%s", ashbyBaseURL, s.boardToken)
	return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
}

func (s *ashbyStrategy) ParsePage(body []byte, _ Page) ([]json.RawMessage, *Page, error) {
	var resp struct {
		Jobs []json.RawMessage `json:"jobs"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, nil, fmt.Errorf("ashby page for %s: %w", s.boardToken, err)
	}

	// Skip unlisted postings here so the extractor only sees live ones.
	listed := make([]json.RawMessage, 0, len(resp.Jobs))
	for _, raw := range resp.Jobs {
		var probe struct {
			IsListed bool `json:"isListed"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil || !probe.IsListed {
			continue
		}
		listed = append(listed, raw)
	}
	return listed, nil, nil
}

// ashbyJob is a single job in the Ashby API response.
type ashbyJob struct {
	Title       string `json:"title"`
	Location    string `json:"location"`
	JobURL      string `json:"jobUrl"`
	PublishedAt string `json:"publishedAt"`
}

func (s *ashbyStrategy) MapRecord(raw json.RawMessage) model.Posting {
	var aj ashbyJob
	if err := json.Unmarshal(raw, &aj); err != nil {
		return model.Posting{Source: "ashby"}
	}
	return model.Posting{
		Company:  s.company,
		Title:    aj.Title,
		Location: aj.Location,
		URL:      aj.JobURL,
		PostedAt: parseTimePtr(time.RFC3339, aj.PublishedAt),
		Source:   "ashby",
	}
}
