// Package output writes run results to disk as JSON, CSV, or a static HTML
// report.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okaneo/jobscout/internal/model"
)

// Writer saves postings under a single output directory, one timestamped
// file per call.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// record is the on-disk shape of one posting.
type record struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	URL         string `json:"url"`
	Description string `json:"description"`
	DatePosted  string `json:"date_posted,omitempty"`
	Source      string `json:"source"`
}

func toRecord(p model.Posting) record {
	r := record{
		Title:       p.Title,
		Company:     p.Company,
		Location:    p.Location,
		URL:         p.URL,
		Description: p.Description,
		Source:      p.Source,
	}
	if p.PostedAt != nil {
		r.DatePosted = p.PostedAt.UTC().Format(time.RFC3339)
	}
	return r
}

// WriteJSON saves postings as a pretty-printed JSON array and returns the
// file path.
func (w *Writer) WriteJSON(postings []model.Posting, now time.Time) (string, error) {
	records := make([]record, 0, len(postings))
	for _, p := range postings {
		records = append(records, toRecord(p))
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding postings: %w", err)
	}
	return w.save(fmt.Sprintf("jobs_%s.json", stamp(now)), data)
}

// WriteCSV saves postings as CSV with a header row and returns the file path.
func (w *Writer) WriteCSV(postings []model.Posting, now time.Time) (string, error) {
	path, err := w.ensurePath(fmt.Sprintf("jobs_%s.csv", stamp(now)))
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating csv file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	header := []string{"title", "company", "location", "url", "description", "date_posted", "source"}
	if err := cw.Write(header); err != nil {
		return "", fmt.Errorf("writing csv header: %w", err)
	}
	for _, p := range postings {
		r := toRecord(p)
		row := []string{r.Title, r.Company, r.Location, r.URL, r.Description, r.DatePosted, r.Source}
		if err := cw.Write(row); err != nil {
			return "", fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("flushing csv: %w", err)
	}
	return path, nil
}

func (w *Writer) ensurePath(filename string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	return filepath.Join(w.dir, filename), nil
}

func (w *Writer) save(filename string, data []byte) (string, error) {
	path, err := w.ensurePath(filename)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", filename, err)
	}
	return path, nil
}

func stamp(t time.Time) string {
	return t.Format("20060102_150405")
}
