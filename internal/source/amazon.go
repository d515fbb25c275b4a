package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/okaneo/jobscout/internal/model"
)

const (
	amazonSearchURL = "https://www.amazon.jobs/en/search.json"
	amazonSiteURL   = "https://www.amazon.jobs"
	amazonPageSize  = 10
)

// amazonStrategy fetches the Amazon Jobs search.json API using offset
// pagination. The API can return international results; only USA postings
// are kept.
type amazonStrategy struct {
	company  string
	keywords string
}

func newAmazon(desc Descriptor) (Strategy, error) {
	return &amazonStrategy{company: desc.Name, keywords: desc.Keywords}, nil
}

func (s *amazonStrategy) Platform() string { return "amazon" }
func (s *amazonStrategy) Mode() Mode       { return ModeAPI }

func (s *amazonStrategy) BuildRequest(ctx context.Context, page Page) (*http.Request, error) {
	u, err := url.Parse(amazonSearchURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("offset", fmt.Sprintf("%d", page.Offset))
	q.Set("result_limit", fmt.Sprintf("%d", amazonPageSize))
	q.Set("sort", "recent")
	q.Set("country[]", "USA")
	if s.keywords != "" {
		q.Set("base_query", s.keywords)
	}
	u.RawQuery = q.Encode()
	return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
}

func (s *amazonStrategy) ParsePage(body []byte, page Page) ([]json.RawMessage, *Page, error) {
	var resp struct {
		Hits int               `json:"hits"`
		Jobs []json.RawMessage `json:"jobs"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, nil, fmt.Errorf("amazon page for %s: %w", s.company, err)
	}

	// Drop non-USA results before they reach the extractor.
	usa := make([]json.RawMessage, 0, len(resp.Jobs))
	for _, raw := range resp.Jobs {
		var probe struct {
			CountryCode string `json:"country_code"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil || probe.CountryCode != "USA" {
			continue
		}
		usa = append(usa, raw)
	}

	offset := page.Offset + amazonPageSize
	if offset >= resp.Hits || len(resp.Jobs) == 0 {
		return usa, nil, nil
	}
	return usa, &Page{Offset: offset}, nil
}

// amazonJob is a single job in the search.json response.
type amazonJob struct {
	Title            string `json:"title"`
	City             string `json:"city"`
	State            string `json:"state"`
	JobPath          string `json:"job_path"`
	DescriptionShort string `json:"description_short"`
	Description      string `json:"description"`
	PostedDate       string `json:"posted_date"` // "February 13, 2026"
}

func (s *amazonStrategy) MapRecord(raw json.RawMessage) model.Posting {
	var aj amazonJob
	if err := json.Unmarshal(raw, &aj); err != nil {
		return model.Posting{Source: "amazon"}
	}

	location := aj.City
	if aj.City != "" && aj.State != "" {
		location = aj.City + ", " + aj.State
	} else if aj.State != "" {
		location = aj.State
	}

	url := ""
	if aj.JobPath != "" {
		url = amazonSiteURL + aj.JobPath
	}

	description := aj.DescriptionShort
	if description == "" {
		description = snippet(aj.Description)
	}

	return model.Posting{
		Company:     s.company,
		Title:       aj.Title,
		Location:    location,
		URL:         url,
		Description: description,
		PostedAt:    parseTimePtr("January 2, 2006", aj.PostedDate),
		Source:      "amazon",
	}
}
