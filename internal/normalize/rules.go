// Package normalize canonicalizes posting fields across sources that use
// different vocabularies. The stage is optional: identity keying performs its
// own folding, so the pipeline stays correct when it is skipped.
package normalize

import (
	"context"
	"strings"
	"time"

	"github.com/okaneo/jobscout/internal/model"
)

// Rules is the deterministic normalizer: pure, order-preserving, no I/O.
type Rules struct{}

// NewRules returns the rule-based normalizer.
func NewRules() Rules { return Rules{} }

// Normalize canonicalizes title/company whitespace, location strings, and
// posted dates. The input order is preserved.
func (Rules) Normalize(_ context.Context, postings []model.Posting) ([]model.Posting, error) {
	out := make([]model.Posting, len(postings))
	for i, p := range postings {
		p.Title = collapse(p.Title)
		p.Company = collapse(p.Company)
		p.Location = CanonicalLocation(p.Location)
		if p.PostedAt != nil {
			d := toUTCDate(*p.PostedAt)
			p.PostedAt = &d
		}
		out[i] = p
	}
	return out, nil
}

// Nop passes postings through untouched. Used with --skip-normalization.
type Nop struct{}

func NewNop() Nop { return Nop{} }

func (Nop) Normalize(_ context.Context, postings []model.Posting) ([]model.Posting, error) {
	return postings, nil
}

// collapse trims and collapses runs of whitespace to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// toUTCDate truncates a timestamp to its UTC calendar date.
func toUTCDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// locationSeparators are the list delimiters sources use inside location
// strings. A bare hyphen is intentionally absent: it appears inside city
// names ("Winston-Salem"); only the spaced form separates segments.
var locationSeparators = []string{";", ",", " - ", "|", "/"}

// CanonicalLocation standardizes a location string: segments are split on
// known separators, whitespace-collapsed, and rejoined with ", ". A "remote"
// marker anywhere in the string is normalized to a leading "Remote" segment,
// so "Remote - US" and "US Remote" compare equal.
func CanonicalLocation(loc string) string {
	loc = collapse(loc)
	if loc == "" {
		return ""
	}

	segments := []string{loc}
	for _, sep := range locationSeparators {
		var next []string
		for _, seg := range segments {
			next = append(next, strings.Split(seg, sep)...)
		}
		segments = next
	}

	remote := false
	var rest []string
	for _, seg := range segments {
		words := strings.Fields(seg)
		var kept []string
		for _, w := range words {
			if strings.EqualFold(w, "remote") {
				remote = true
				continue
			}
			kept = append(kept, w)
		}
		if len(kept) > 0 {
			rest = append(rest, strings.Join(kept, " "))
		}
	}

	if remote {
		return strings.Join(append([]string{"Remote"}, rest...), ", ")
	}
	return strings.Join(rest, ", ")
}
