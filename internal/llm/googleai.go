package llm

import (
	"context"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// GoogleAIProvider targets the Gemini API through langchaingo. Unlike the
// OpenAI path there is no server-side schema enforcement, so callers must
// tolerate fenced or slightly malformed JSON in the response.
type GoogleAIProvider struct {
	client *googleai.GoogleAI
}

// NewGoogleAIProvider creates a Gemini-backed provider.
func NewGoogleAIProvider(ctx context.Context, apiKey, model string) (*GoogleAIProvider, error) {
	client, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, err
	}
	return &GoogleAIProvider{client: client}, nil
}

// Complete sends prompt to Gemini and returns the raw text response.
func (p *GoogleAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, p.client, prompt,
		llms.WithTemperature(0),
		llms.WithJSONMode(),
	)
}
