package app

var args struct {
	ConfigFile    string `arg:"-c,--config-file" help:"Path to config file" default:"config/config.yaml"`
	DatabaseFile  string `arg:"-d,--database-file" help:"Path to database file for answer caching" default:"cache.db"`
	EventLogFile  string `arg:"-o,--event-log-file" help:"Path to event log file" default:"event_log.json"`
	EnvFile       string `arg:"-e,--env-file" help:"Path to a .env file with LLM_* variables" default:".env"`
	LogLevel      string `arg:"-l,--log-level" help:"Log level (debug, info, warn, error, fatal)" default:"info"`
	UI            string `arg:"-u,--ui" help:"Output mode (auto, tui, plain)" default:"auto"`
	LLMAPIKey     string `arg:"-k,--api-key" help:"LLM API key, overrides api_key"`
	LLMBaseURL    string `arg:"-b,--base-url" help:"OpenAI compatible server URL, overrides base_url (e.g. http://localhost:1234/v1)"`
	LLMModel      string `arg:"-m,--model" help:"LLM model, overrides model"`
	LLMProvider   string `arg:"-p,--provider" help:"LLM provider (openai, ollama, anthropic, googleai, gcp-vertex, cohere)"`
	QuestionsFile string `arg:"-q,--questions-file" help:"Markdown file with the questions, overrides questions_file"`
	OutputFile    string `arg:"-r,--output-file" help:"Result file, overrides output_file"`
}
