// Package identity computes the stable fingerprint used to recognize the
// same posting across runs.
package identity

import (
	"strings"

	"github.com/okaneo/jobscout/internal/model"
)

// Key derives the identity key for a posting. It is a pure function of
// (company, title, location, URL): no clocks, no run-local state, no ordering.
//
// When a URL is present it dominates — two postings with the same URL are the
// same posting regardless of text drift. Without a URL the key is the
// composite of title, company, and location. Both forms are case-insensitive
// and whitespace-collapsed, and carry distinct prefixes so a URL key can
// never collide with a composite key.
func Key(p model.Posting) string {
	if u := fold(p.URL); u != "" {
		return "url|" + u
	}
	return "cti|" + fold(p.Title) + "|" + fold(p.Company) + "|" + fold(p.Location)
}

// fold lowercases and collapses all runs of whitespace to a single space.
func fold(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
