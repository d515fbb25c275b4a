// Package notifier delivers alerts for newly discovered postings.
package notifier

import (
	"log/slog"
	"time"

	"github.com/okaneo/jobscout/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes new postings to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each posting via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each posting with company, title, location, URL, and posted_at.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(postings []model.Posting) error {
	for _, p := range postings {
		args := []any{"company", p.Company, "title", p.Title, "location", p.Location, "url", p.URL, "source", p.Source}
		if p.PostedAt != nil {
			args = append(args, "posted_at", *p.PostedAt)
		}
		n.logger.Info("new posting", args...)
	}
	return nil
}

// SendTestMessage sends a dummy posting to verify the notification channel
// works end to end.
func SendTestMessage(n model.Notifier) error {
	now := time.Now()
	test := model.Posting{
		Company:  "JobScout Test",
		Title:    "Test Notification (integration verified)",
		Location: "Everywhere",
		URL:      "https://example.com/jobs",
		PostedAt: &now,
		Source:   "test",
	}
	return n.Notify([]model.Posting{test})
}
