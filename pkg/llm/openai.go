package llm

import (
	"os"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// localAPIKey is sent to OpenAI-compatible local servers (LM Studio, llama.cpp)
// that do not check credentials.
const localAPIKey = "not-needed"

// initOpenAIClient falls back to OPENAI_API_KEY when no key is configured.
// A custom server URL without any key gets a placeholder token instead of an error.
func initOpenAIClient(config Config) (llms.Model, error) {
	opts := []openai.Option{
		openai.WithModel(config.Model),
	}
	switch {
	case config.APIKey != "":
		opts = append(opts, openai.WithToken(config.APIKey))
	case config.ServerURL != "" && os.Getenv("OPENAI_API_KEY") == "":
		opts = append(opts, openai.WithToken(localAPIKey))
	}
	if config.ServerURL != "" {
		opts = append(opts, openai.WithBaseURL(config.ServerURL))
	}
	m, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}
	return m, nil
}
