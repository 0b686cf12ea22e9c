package llm

import (
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
)

func initAnthropicClient(config Config) (llms.Model, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	opts := []anthropic.Option{
		anthropic.WithModel(config.Model),
		anthropic.WithToken(config.APIKey),
	}
	if config.ServerURL != "" {
		opts = append(opts, anthropic.WithBaseURL(config.ServerURL))
	}
	return anthropic.New(opts...)
}
