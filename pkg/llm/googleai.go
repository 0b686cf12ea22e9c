package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

func initGoogleAIClient(ctx context.Context, config Config) (llms.Model, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	return googleai.New(ctx,
		googleai.WithDefaultModel(config.Model),
		googleai.WithAPIKey(config.APIKey),
	)
}
