package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/okaneo/jobscout/internal/model"
)

func TestKeyIsStable(t *testing.T) {
	p := model.Posting{
		Company:  "Acme Corp",
		Title:    "Software Engineer",
		Location: "San Francisco, CA",
	}
	assert.Equal(t, Key(p), Key(p), "same input must always produce the same key")
}

func TestKeyCaseInsensitive(t *testing.T) {
	a := model.Posting{Company: "Acme Corp", Title: "Software Engineer", Location: "Remote"}
	b := model.Posting{Company: "ACME CORP", Title: "software engineer", Location: "REMOTE"}
	assert.Equal(t, Key(a), Key(b))
}

func TestKeyCollapsesWhitespace(t *testing.T) {
	a := model.Posting{Company: "Acme Corp", Title: "Software Engineer", Location: "New York"}
	b := model.Posting{Company: "  Acme\tCorp ", Title: "Software\n  Engineer", Location: " New   York "}
	assert.Equal(t, Key(a), Key(b))
}

func TestKeyURLDominates(t *testing.T) {
	a := model.Posting{Company: "Acme", Title: "Engineer", URL: "https://acme.com/jobs/1"}
	b := model.Posting{Company: "Acme Corporation", Title: "Senior Engineer", URL: "https://acme.com/jobs/1"}
	assert.Equal(t, Key(a), Key(b), "same URL means same posting regardless of text drift")

	c := model.Posting{Company: "Acme", Title: "Engineer", URL: "https://acme.com/jobs/2"}
	assert.NotEqual(t, Key(a), Key(c), "different URLs are different postings")
}

func TestKeyWithoutURLUsesComposite(t *testing.T) {
	a := model.Posting{Company: "Acme", Title: "Engineer", Location: "Remote"}
	b := model.Posting{Company: "Acme", Title: "Engineer", Location: "Berlin"}
	assert.NotEqual(t, Key(a), Key(b), "location participates in the composite key")
}

func TestKeyURLAndCompositeNeverCollide(t *testing.T) {
	// A pathological posting whose composite text looks like a URL key must
	// still be distinct from a real URL key.
	withURL := model.Posting{URL: "x"}
	withoutURL := model.Posting{Title: "x"}
	assert.NotEqual(t, Key(withURL), Key(withoutURL))
}

func TestKeyIgnoresVolatileFields(t *testing.T) {
	a := model.Posting{Company: "Acme", Title: "Engineer", Location: "Remote", Description: "first snapshot"}
	b := a
	b.Description = "updated description"
	b.Source = "other"
	assert.Equal(t, Key(a), Key(b))
}
