// Package llm is the effectful boundary around the external language-model
// service. Only its output matters to the rest of the pipeline; its
// nondeterminism never leaks into the dedup engine.
package llm

import "context"

// Provider sends a prompt to an LLM and returns the raw text response.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
