package llm

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/extract_postings.md
var extractPromptRaw string

//go:embed prompts/normalize_postings.md
var normalizePromptRaw string

// Parsed once at package init; reused on every call.
var (
	extractTemplate   = template.Must(template.New("extract_postings").Parse(extractPromptRaw))
	normalizeTemplate = template.Must(template.New("normalize_postings").Parse(normalizePromptRaw))
)
