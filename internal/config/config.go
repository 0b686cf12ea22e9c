package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/0x4d31/llmtester/pkg/llm"
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator"
	"gopkg.in/yaml.v3"
)

const (
	DefaultProvider      = "openai"
	DefaultModel         = "local-model"
	DefaultQuestionsFile = "LLM Test.md"
	DefaultOutputFile    = "LLM TestResult.md"
	DefaultConversation  = "history"
	DefaultFontSize      = 14
)

// DefaultWindowSize is the display window size in pixels, [width, height].
var DefaultWindowSize = []int{1024, 768}

// Config is the harness configuration. Optional sampling parameters are
// pointers so that an omitted key leaves the server default in place.
type Config struct {
	BaseURL       string `yaml:"base_url" env:"LLM_BASE_URL" validate:"omitempty,url"`
	APIKey        string `yaml:"api_key" env:"LLM_API_KEY"`
	Provider      string `yaml:"provider" env:"LLM_PROVIDER" validate:"oneof=openai ollama anthropic googleai gcp-vertex cohere"`
	Model         string `yaml:"model" env:"LLM_MODEL" validate:"required"`
	CloudProject  string `yaml:"cloud_project" env:"LLM_CLOUD_PROJECT"`
	CloudLocation string `yaml:"cloud_location" env:"LLM_CLOUD_LOCATION"`

	QuestionsFile string `yaml:"questions_file" env:"LLM_QUESTIONS_FILE" validate:"required"`
	OutputFile    string `yaml:"output_file" env:"LLM_OUTPUT_FILE" validate:"required"`
	SystemPrompt  string `yaml:"system_prompt"`

	Temperature      *float64 `yaml:"temperature" env:"LLM_TEMPERATURE" validate:"omitempty,min=0,max=2"`
	MaxTokens        *int     `yaml:"max_tokens" env:"LLM_MAX_TOKENS" validate:"omitempty,min=1"`
	FrequencyPenalty *float64 `yaml:"frequency_penalty" validate:"omitempty,min=-2,max=2"`
	PresencePenalty  *float64 `yaml:"presence_penalty" validate:"omitempty,min=-2,max=2"`

	Conversation      string `yaml:"conversation" validate:"oneof=history isolated"`
	MaxHistoryTokens  int    `yaml:"max_history_tokens" validate:"min=0"`
	RequestsPerMinute int    `yaml:"requests_per_minute" validate:"min=0"`
	CacheDuration     int    `yaml:"cache_duration" validate:"min=-1"`

	FontSize   int   `yaml:"font_size" validate:"min=6,max=72"`
	WindowSize []int `yaml:"window_size" validate:"len=2,dive,min=1"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	return &Config{
		Provider:      DefaultProvider,
		Model:         DefaultModel,
		QuestionsFile: DefaultQuestionsFile,
		OutputFile:    DefaultOutputFile,
		Conversation:  DefaultConversation,
		FontSize:      DefaultFontSize,
		WindowSize:    append([]int(nil), DefaultWindowSize...),
	}
}

// LoadConfig reads the YAML file on top of the defaults and applies
// environment overrides. The result is not validated; call Validate once all
// overrides are in place.
func LoadConfig(file string) (*Config, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	config, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	if err := config.ApplyEnv(nil); err != nil {
		return nil, fmt.Errorf("error reading environment: %w", err)
	}

	return config, nil
}

// Parse decodes YAML on top of the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	config := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return config, nil
}

// ApplyEnv overrides fields from LLM_* environment variables. A nil
// environment means the process environment.
func (c *Config) ApplyEnv(environment map[string]string) error {
	opts := env.Options{}
	if environment != nil {
		opts.Environment = environment
	}
	return env.ParseWithOptions(c, opts)
}

// Validate checks value ranges and required fields.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validation error: %s", err)
	}
	if c.Provider == "gcp-vertex" && (c.CloudProject == "" || c.CloudLocation == "") {
		return errors.New("validation error: cloud_project and cloud_location are required for gcp-vertex")
	}
	return nil
}

// LLM returns the model configuration.
func (c *Config) LLM() llm.Config {
	return llm.Config{
		APIKey:           c.APIKey,
		CloudLocation:    c.CloudLocation,
		CloudProject:     c.CloudProject,
		Model:            c.Model,
		Provider:         c.Provider,
		ServerURL:        c.BaseURL,
		Temperature:      c.Temperature,
		MaxTokens:        c.MaxTokens,
		FrequencyPenalty: c.FrequencyPenalty,
		PresencePenalty:  c.PresencePenalty,
	}
}
