package llm

import (
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/cohere"
)

func initCohereClient(config Config) (llms.Model, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	opts := []cohere.Option{
		cohere.WithModel(config.Model),
		cohere.WithToken(config.APIKey),
	}
	if config.ServerURL != "" {
		opts = append(opts, cohere.WithBaseURL(config.ServerURL))
	}
	return cohere.New(opts...)
}
