package output

import (
	"fmt"
	"html/template"
	"os"
	"sort"
	"time"

	"github.com/okaneo/jobscout/internal/model"
)

// reportTemplate renders the static HTML report: postings grouped by
// company, new ones badged.
var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Job Report</title>
<style>
  body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem auto; max-width: 60rem; color: #1f2430; }
  h1 { font-size: 1.4rem; }
  h2 { font-size: 1.1rem; margin-top: 2rem; border-bottom: 1px solid #ddd; padding-bottom: 0.3rem; }
  .meta { color: #667; font-size: 0.85rem; }
  .job { padding: 0.6rem 0; border-bottom: 1px solid #f0f0f0; }
  .job a { color: #2456d6; text-decoration: none; font-weight: 600; }
  .loc { color: #667; font-size: 0.85rem; margin-left: 0.5rem; }
  .desc { color: #445; font-size: 0.9rem; margin: 0.2rem 0 0; }
  .badge { background: #1a7f37; color: #fff; border-radius: 3px; font-size: 0.7rem; padding: 0.1rem 0.35rem; margin-left: 0.5rem; vertical-align: middle; }
</style>
</head>
<body>
<h1>Job Report</h1>
<p class="meta">Generated {{.Generated}} &middot; {{.Total}} postings ({{.NewCount}} new)</p>
{{range .Groups}}
<h2>{{.Company}} ({{len .Jobs}})</h2>
{{range .Jobs}}
<div class="job">
  {{if .URL}}<a href="{{.URL}}">{{.Title}}</a>{{else}}<strong>{{.Title}}</strong>{{end}}{{if .New}}<span class="badge">NEW</span>{{end}}<span class="loc">{{.Location}}</span>
  {{if .Description}}<p class="desc">{{.Description}}</p>{{end}}
</div>
{{end}}
{{end}}
</body>
</html>
`))

type reportJob struct {
	Title       string
	URL         string
	Location    string
	Description string
	New         bool
}

type reportGroup struct {
	Company string
	Jobs    []reportJob
}

type reportData struct {
	Generated string
	Total     int
	NewCount  int
	Groups    []reportGroup
}

// WriteHTML renders newly found and previously seen postings into one HTML
// report grouped by company and returns the file path.
func (w *Writer) WriteHTML(newPostings, seenPostings []model.Posting, now time.Time) (string, error) {
	byCompany := make(map[string][]reportJob)
	add := func(postings []model.Posting, isNew bool) {
		for _, p := range postings {
			company := p.Company
			if company == "" {
				company = "Unknown"
			}
			byCompany[company] = append(byCompany[company], reportJob{
				Title:       p.Title,
				URL:         p.URL,
				Location:    p.Location,
				Description: p.Description,
				New:         isNew,
			})
		}
	}
	add(newPostings, true)
	add(seenPostings, false)

	companies := make([]string, 0, len(byCompany))
	for c := range byCompany {
		companies = append(companies, c)
	}
	sort.Strings(companies)

	data := reportData{
		Generated: now.Format("January 2, 2006 at 3:04 PM"),
		Total:     len(newPostings) + len(seenPostings),
		NewCount:  len(newPostings),
	}
	for _, c := range companies {
		data.Groups = append(data.Groups, reportGroup{Company: c, Jobs: byCompany[c]})
	}

	path, err := w.ensurePath(fmt.Sprintf("jobs_%s.html", stamp(now)))
	if err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating html report: %w", err)
	}
	defer f.Close()

	if err := reportTemplate.Execute(f, data); err != nil {
		return "", fmt.Errorf("rendering html report: %w", err)
	}
	return path, nil
}
