package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/okaneo/jobscout/internal/model"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

// greenhouseStrategy fetches the Greenhouse public boards API. The jobs
// endpoint returns the whole board in one response, so there is no
// pagination.
type greenhouseStrategy struct {
	boardToken string
	company    string
}

func newGreenhouse(desc Descriptor) (Strategy, error) {
	if desc.Token == "" {
		return nil, fmt.Errorf("greenhouse source %s: board token required", desc.Name)
	}
	return &greenhouseStrategy{boardToken: desc.Token, company: desc.Name}, nil
}

func (s *greenhouseStrategy) Platform() string { return "greenhouse" }
func (s *greenhouseStrategy) Mode() Mode       { return ModeAPI }

func (s *greenhouseStrategy) BuildRequest(ctx context.Context, _ Page) (*http.Request, error) {
	url := fmt.Sprintf("%s/%s/jobs", greenhouseBaseURL, s.boardToken)
	return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
}

func (s *greenhouseStrategy) ParsePage(body []byte, _ Page) ([]json.RawMessage, *Page, error) {
	var resp struct {
		Jobs []json.RawMessage `json:"jobs"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, nil, fmt.Errorf("greenhouse page for %s: %w", s.boardToken, err)
	}
	return resp.Jobs, nil, nil
}

// greenhouseJob is a single job in the Greenhouse API response.
type greenhouseJob struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
	AbsoluteURL string `json:"absolute_url"`
	UpdatedAt   string `json:"updated_at"`
	Content     string `json:"content"`
}

func (s *greenhouseStrategy) MapRecord(raw json.RawMessage) model.Posting {
	var gj greenhouseJob
	if err := json.Unmarshal(raw, &gj); err != nil {
		return model.Posting{Source: "greenhouse"}
	}
	return model.Posting{
		Company:     s.company,
		Title:       gj.Title,
		Location:    gj.Location.Name,
		URL:         gj.AbsoluteURL,
		Description: snippet(extractText(gj.Content)),
		PostedAt:    parseTimePtr(time.RFC3339, gj.UpdatedAt),
		Source:      "greenhouse",
	}
}
