package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okaneo/jobscout/internal/model"
)

const (
	microsoftBaseURL  = "https://apply.careers.microsoft.com"
	microsoftPageSize = 10
)

// microsoftStrategy fetches the Microsoft careers pcsx search API using
// start-offset pagination.
type microsoftStrategy struct {
	company  string
	keywords string
}

func newMicrosoft(desc Descriptor) (Strategy, error) {
	return &microsoftStrategy{company: desc.Name, keywords: desc.Keywords}, nil
}

func (s *microsoftStrategy) Platform() string { return "microsoft" }
func (s *microsoftStrategy) Mode() Mode       { return ModeAPI }

func (s *microsoftStrategy) BuildRequest(ctx context.Context, page Page) (*http.Request, error) {
	u, err := url.Parse(microsoftBaseURL + "/api/pcsx/search")
	if err != nil {
		return nil, err
	}
	query := s.keywords
	if query == "" {
		query = "software engineer"
	}
	q := u.Query()
	q.Set("domain", "microsoft.com")
	q.Set("query", query)
	q.Set("start", fmt.Sprintf("%d", page.Offset))
	q.Set("sort_by", "timestamp")
	q.Set("filter_include_remote", "1")
	u.RawQuery = q.Encode()
	return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
}

func (s *microsoftStrategy) ParsePage(body []byte, page Page) ([]json.RawMessage, *Page, error) {
	var resp struct {
		Data struct {
			Positions []json.RawMessage `json:"positions"`
			Count     int               `json:"count"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, nil, fmt.Errorf("microsoft page for %s: %w", s.company, err)
	}

	start := page.Offset + microsoftPageSize
	if start >= resp.Data.Count || len(resp.Data.Positions) == 0 {
		return resp.Data.Positions, nil, nil
	}
	return resp.Data.Positions, &Page{Offset: start}, nil
}

// microsoftPosition is a single position in the search response.
type microsoftPosition struct {
	Name        string   `json:"name"`
	Locations   []string `json:"locations"`
	PostedTs    int64    `json:"postedTs"`
	PositionURL string   `json:"positionUrl"`
}

func (s *microsoftStrategy) MapRecord(raw json.RawMessage) model.Posting {
	var p microsoftPosition
	if err := json.Unmarshal(raw, &p); err != nil {
		return model.Posting{Source: "microsoft"}
	}

	var postedAt *time.Time
	if p.PostedTs > 0 {
		t := time.Unix(p.PostedTs, 0).UTC()
		postedAt = &t
	}

	url := ""
	if p.PositionURL != "" {
		url = microsoftBaseURL + "/" + strings.TrimLeft(p.PositionURL, "/")
	}

	return model.Posting{
		Company:  s.company,
		Title:    p.Name,
		Location: strings.Join(p.Locations, ", "),
		URL:      url,
		PostedAt: postedAt,
		Source:   "microsoft",
	}
}
