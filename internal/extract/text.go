package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ReduceHTML strips a career page down to plain text: scripts, styles, and
// boilerplate tags removed, whitespace collapsed. The result is what gets
// sent to the LLM extraction service.
func ReduceHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, noscript, svg, iframe").Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}

	text := strings.Join(strings.Fields(body.Text()), " ")
	if text == "" {
		return "", fmt.Errorf("page reduced to empty text")
	}
	return text, nil
}
