package notifier

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"sort"
	"strings"
	"time"

	"github.com/okaneo/jobscout/internal/model"
)

// Ensure EmailNotifier implements model.Notifier.
var _ model.Notifier = (*EmailNotifier)(nil)

// EmailConfig holds SMTP connection and addressing settings.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// EmailNotifier sends one HTML digest email per batch of new postings.
type EmailNotifier struct {
	cfg    EmailConfig
	send   func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
	logger *slog.Logger
}

// NewEmailNotifier returns a notifier that emails a digest via SMTP.
func NewEmailNotifier(cfg EmailConfig, logger *slog.Logger) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, send: smtp.SendMail, logger: logger}
}

// Notify sends a single digest email listing all postings. An empty batch
// sends nothing.
func (e *EmailNotifier) Notify(postings []model.Posting) error {
	if len(postings) == 0 {
		return nil
	}

	body, err := buildEmailBody(postings, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("building email body: %w", err)
	}

	subject := fmt.Sprintf("Job Scout: %d new posting(s)", len(postings))
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", e.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(e.cfg.To, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", e.cfg.Host, e.cfg.Port)
	var auth smtp.Auth
	if e.cfg.Username != "" {
		auth = smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.Host)
	}
	if err := e.send(addr, auth, e.cfg.From, e.cfg.To, []byte(msg.String())); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	e.logger.Info("email digest sent", "postings", len(postings), "recipients", len(e.cfg.To))
	return nil
}

var emailTemplate = template.Must(template.New("email").Parse(`<html>
<body style="font-family:-apple-system,'Segoe UI',Roboto,sans-serif;background:#f9fafb;padding:20px;">
<div style="max-width:700px;margin:0 auto;background:#fff;border-radius:10px;overflow:hidden;">
  <div style="background:#1e40af;padding:24px 28px;">
    <h1 style="color:#fff;margin:0;font-size:22px;">Job Scout &mdash; New Postings</h1>
    <p style="color:#c7d2fe;margin:6px 0 0;font-size:14px;">{{.Count}} new posting(s) &bull; {{.Now}}</p>
  </div>
  <table style="width:100%;border-collapse:collapse;font-size:14px;">
    <thead>
      <tr style="background:#f3f4f6;text-align:left;">
        <th style="padding:10px 12px;">Title</th>
        <th style="padding:10px 12px;">Company</th>
        <th style="padding:10px 12px;">Location</th>
        <th style="padding:10px 12px;">Source</th>
      </tr>
    </thead>
    <tbody>
    {{range .Rows}}
      <tr style="border-bottom:1px solid #e5e7eb;">
        <td style="padding:10px 12px;">{{if .URL}}<a href="{{.URL}}" style="color:#2563eb;text-decoration:none;">{{.Title}}</a>{{else}}{{.Title}}{{end}}</td>
        <td style="padding:10px 12px;">{{.Company}}</td>
        <td style="padding:10px 12px;">{{.Location}}</td>
        <td style="padding:10px 12px;color:#6b7280;font-size:13px;">{{.Source}}</td>
      </tr>
    {{end}}
    </tbody>
  </table>
</div>
</body>
</html>
`))

type emailRow struct {
	Title    string
	Company  string
	Location string
	URL      string
	Source   string
}

// buildEmailBody renders the digest, rows sorted by company.
func buildEmailBody(postings []model.Posting, now time.Time) (string, error) {
	rows := make([]emailRow, 0, len(postings))
	for _, p := range postings {
		rows = append(rows, emailRow{
			Title:    p.Title,
			Company:  p.Company,
			Location: p.Location,
			URL:      p.URL,
			Source:   p.Source,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Company < rows[j].Company })

	var buf strings.Builder
	data := struct {
		Count int
		Now   string
		Rows  []emailRow
	}{len(rows), now.Format("2006-01-02 15:04 UTC"), rows}
	if err := emailTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
