package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// Config describes the model endpoint and the sampling options sent with every request.
// Optional sampling fields are pointers; nil means the server default is used.
type Config struct {
	APIKey           string
	CloudLocation    string
	CloudProject     string
	Model            string
	Provider         string
	ServerURL        string
	Temperature      *float64
	MaxTokens        *int
	FrequencyPenalty *float64
	PresencePenalty  *float64
}

const (
	ErrorContentGeneration = "contentGenerationError"
	ErrorEmptyLLMResponse  = "emptyLLMResponse"
)

// ErrUnsupportedProvider is returned by New for unknown provider names.
var ErrUnsupportedProvider = errors.New("unsupported llm provider")

// Providers lists the accepted provider names.
var Providers = []string{"openai", "ollama", "anthropic", "googleai", "gcp-vertex", "cohere"}

var supportsSystemPrompt = map[string]bool{
	"openai":    true,
	"ollama":    true,
	"anthropic": true,
}

// New initializes the LLM client based on the configured provider and model name.
func New(ctx context.Context, config Config) (llms.Model, error) {
	switch config.Provider {
	case "openai":
		return initOpenAIClient(config)
	case "ollama":
		return initOllamaClient(config)
	case "googleai":
		return initGoogleAIClient(ctx, config)
	case "gcp-vertex":
		return initVertexClient(ctx, config)
	case "anthropic":
		return initAnthropicClient(config)
	case "cohere":
		return initCohereClient(config)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, config.Provider)
	}
}

// CallOptions returns the request options for the sampling fields that are set.
func (c Config) CallOptions() []llms.CallOption {
	var opts []llms.CallOption
	if c.Temperature != nil {
		opts = append(opts, llms.WithTemperature(*c.Temperature))
	}
	if c.MaxTokens != nil {
		opts = append(opts, llms.WithMaxTokens(*c.MaxTokens))
	}
	if c.FrequencyPenalty != nil {
		opts = append(opts, llms.WithFrequencyPenalty(*c.FrequencyPenalty))
	}
	if c.PresencePenalty != nil {
		opts = append(opts, llms.WithPresencePenalty(*c.PresencePenalty))
	}
	return opts
}

// GenerateAnswer sends the conversation to the model and returns the trimmed
// content of the first choice.
func GenerateAnswer(ctx context.Context, model llms.Model, messages []llms.MessageContent, opts ...llms.CallOption) (string, error) {
	response, err := model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrorContentGeneration, err)
	}
	if response == nil {
		return "", errors.New(ErrorEmptyLLMResponse + ": response is nil")
	}
	if len(response.Choices) == 0 {
		return "", errors.New(ErrorEmptyLLMResponse + ": no choices available")
	}
	content := strings.TrimSpace(response.Choices[0].Content)
	if content == "" {
		return "", errors.New(ErrorEmptyLLMResponse + ": content of first choice is empty")
	}

	return content, nil
}

// AdaptMessages folds a leading system message into the first human message
// for providers that reject the system role. Other providers get messages unchanged.
func AdaptMessages(provider string, messages []llms.MessageContent) []llms.MessageContent {
	if supportsSystemPrompt[provider] || len(messages) < 2 || messages[0].Role != llms.ChatMessageTypeSystem {
		return messages
	}
	system := textOf(messages[0])
	out := make([]llms.MessageContent, 0, len(messages)-1)
	merged := false
	for _, m := range messages[1:] {
		if !merged && m.Role == llms.ChatMessageTypeHuman {
			m = llms.TextParts(llms.ChatMessageTypeHuman, system+"\n\n"+textOf(m))
			merged = true
		}
		out = append(out, m)
	}
	return out
}

// ErrorType maps a GenerateAnswer error to its event log type.
func ErrorType(err error) string {
	if err == nil {
		return ""
	}
	if strings.Contains(err.Error(), ErrorEmptyLLMResponse+": ") {
		return ErrorEmptyLLMResponse
	}
	return ErrorContentGeneration
}

// ErrorMessage strips the type prefix from a GenerateAnswer error.
func ErrorMessage(err error) string {
	msg := err.Error()
	for _, prefix := range []string{ErrorEmptyLLMResponse, ErrorContentGeneration} {
		if i := strings.Index(msg, prefix+": "); i >= 0 {
			return msg[i+len(prefix)+2:]
		}
	}
	return msg
}

func textOf(m llms.MessageContent) string {
	var sb strings.Builder
	for _, part := range m.Parts {
		if t, ok := part.(llms.TextContent); ok {
			sb.WriteString(t.Text)
		}
	}
	return sb.String()
}
