package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/okaneo/jobscout/internal/model"
)

const workdayPageSize = 20

// workdayStrategy fetches a Workday career site's cxs listing endpoint:
// POST <endpoint>/jobs with a JSON body, offset pagination.
type workdayStrategy struct {
	baseURL  string
	company  string
	keywords string
}

func newWorkday(desc Descriptor) (Strategy, error) {
	if desc.Endpoint == "" {
		return nil, fmt.Errorf("workday source %s: endpoint URL required", desc.Name)
	}
	return &workdayStrategy{
		baseURL:  strings.TrimRight(desc.Endpoint, "/"),
		company:  desc.Name,
		keywords: desc.Keywords,
	}, nil
}

func (s *workdayStrategy) Platform() string { return "workday" }
func (s *workdayStrategy) Mode() Mode       { return ModeAPI }

// workdayListingRequest is the POST body for the jobs listing endpoint.
type workdayListingRequest struct {
	AppliedFacets map[string]any `json:"appliedFacets"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    string         `json:"searchText"`
}

func (s *workdayStrategy) BuildRequest(ctx context.Context, page Page) (*http.Request, error) {
	body := workdayListingRequest{
		AppliedFacets: map[string]any{},
		Limit:         workdayPageSize,
		Offset:        page.Offset,
		SearchText:    s.keywords,
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("workday listing marshal for %s: %w", s.company, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/jobs", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (s *workdayStrategy) ParsePage(body []byte, page Page) ([]json.RawMessage, *Page, error) {
	var resp struct {
		Total       int               `json:"total"`
		JobPostings []json.RawMessage `json:"jobPostings"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, nil, fmt.Errorf("workday page for %s: %w", s.company, err)
	}

	offset := page.Offset + workdayPageSize
	if offset >= resp.Total || len(resp.JobPostings) == 0 {
		return resp.JobPostings, nil, nil
	}
	return resp.JobPostings, &Page{Offset: offset}, nil
}

// workdayListing is a single listing in the jobs response.
type workdayListing struct {
	Title         string   `json:"title"`
	ExternalPath  string   `json:"externalPath"`
	LocationsText string   `json:"locationsText"`
	PostedOn      string   `json:"postedOn"`
	BulletFields  []string `json:"bulletFields"`
}

func (s *workdayStrategy) MapRecord(raw json.RawMessage) model.Posting {
	var l workdayListing
	if err := json.Unmarshal(raw, &l); err != nil {
		return model.Posting{Source: "workday"}
	}

	url := ""
	if l.ExternalPath != "" {
		url = s.baseURL + "/" + strings.TrimLeft(l.ExternalPath, "/")
	}

	description := ""
	if len(l.BulletFields) > 0 {
		description = l.BulletFields[0]
	}

	return model.Posting{
		Company:     s.company,
		Title:       l.Title,
		Location:    l.LocationsText,
		URL:         url,
		Description: description,
		PostedAt:    parsePostedOn(l.PostedOn),
		Source:      "workday",
	}
}
