package tester

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/0x4d31/llmtester/internal/cache"
	"github.com/0x4d31/llmtester/internal/config"
	el "github.com/0x4d31/llmtester/internal/logger"
	"github.com/0x4d31/llmtester/pkg/history"
	"github.com/0x4d31/llmtester/pkg/llm"
	"github.com/0x4d31/llmtester/pkg/testfile"
	cblog "github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
	"golang.org/x/time/rate"
)

const (
	memoryCacheSize = 1024

	// Default file paths used when Options fields are left empty.
	DefaultConfigFile   = "config/config.yaml"
	DefaultCacheDBFile  = "cache.db"
	DefaultEventLogFile = "event_log.json"

	SourceLLM   = "llm"
	SourceCache = "cache"
)

// Options defines the configuration for creating a Service.
//
// Non-empty override fields take precedence over the config file and the
// LLM_* environment variables.
type Options struct {
	ConfigFile   string
	EventLogFile string
	CacheDBFile  string
	LogLevel     string
	Logger       *cblog.Logger

	APIKey        string
	BaseURL       string
	Model         string
	Provider      string
	QuestionsFile string
	OutputFile    string

	// LLM replaces the client built from the configuration. Used by tests.
	LLM llms.Model
	// TokenCounter replaces the tiktoken counter used for max_history_tokens.
	TokenCounter history.TokenCounter
}

// Observer receives progress while a run is in flight. Calls are made from
// the goroutine executing Run.
type Observer interface {
	OnStart(info RunInfo)
	OnQuestion(index, total int, question string)
	OnAnswer(index int, answer, source string, elapsed time.Duration)
	OnError(index int, err error)
	OnFinish(summary Summary)
}

// RunInfo describes a run that is about to start.
type RunInfo struct {
	RunID         string
	QuestionsFile string
	OutputFile    string
	Model         string
	Endpoint      string
	Total         int
}

// Summary describes a finished (or aborted) run.
type Summary struct {
	QuestionsFile string
	OutputFile    string
	Questions     int
	Answered      int
	FromCache     int
	Skipped       int
	Duration      time.Duration
}

// Service answers the questions of a questions file and writes the result file.
type Service struct {
	Cache        *cache.Cache
	Config       *config.Config
	EventLogger  *el.Logger
	LLMConfig    llm.Config
	Limiter      *rate.Limiter
	Logger       *cblog.Logger
	Model        llms.Model
	RunID        string
	TokenCounter history.TokenCounter
}

// NewService loads configuration and initializes the components required to run a test.
func NewService(ctx context.Context, opts Options) (*Service, error) {
	logger := setupLogging(opts)

	if opts.ConfigFile == "" {
		opts.ConfigFile = DefaultConfigFile
	}

	cfg, err := config.LoadConfig(opts.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	return createService(ctx, cfg, opts, logger)
}

// NewServiceFromConfig initializes a Service using the provided configuration.
// The ConfigFile value from opts is ignored.
func NewServiceFromConfig(ctx context.Context, cfg *config.Config, opts Options) (*Service, error) {
	logger := setupLogging(opts)
	return createService(ctx, cfg, opts, logger)
}

func setupLogging(opts Options) *cblog.Logger {
	if opts.LogLevel != "" {
		level, err := cblog.ParseLevel(opts.LogLevel)
		if err == nil {
			cblog.SetLevel(level)
		}
	}
	cblog.SetPrefix("LLMTESTER")
	cblog.SetTimeFormat("2006/01/02 15:04:05")

	if opts.Logger != nil {
		return opts.Logger
	}
	return cblog.Default()
}

func applyOverrides(cfg *config.Config, opts Options) {
	overrides := []struct {
		value string
		field *string
	}{
		{opts.APIKey, &cfg.APIKey},
		{opts.BaseURL, &cfg.BaseURL},
		{opts.Model, &cfg.Model},
		{opts.Provider, &cfg.Provider},
		{opts.QuestionsFile, &cfg.QuestionsFile},
		{opts.OutputFile, &cfg.OutputFile},
	}
	for _, o := range overrides {
		if o.value != "" {
			*o.field = o.value
		}
	}
}

func createService(ctx context.Context, cfg *config.Config, opts Options, logger *cblog.Logger) (*Service, error) {
	if opts.CacheDBFile == "" {
		opts.CacheDBFile = DefaultCacheDBFile
	}
	if opts.EventLogFile == "" {
		opts.EventLogFile = DefaultEventLogFile
	}

	applyOverrides(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	modelCfg := cfg.LLM()

	model := opts.LLM
	if model == nil {
		var err error
		model, err = llm.New(ctx, modelCfg)
		if err != nil {
			return nil, fmt.Errorf("error initializing the LLM client: %w", err)
		}
	}

	counter := opts.TokenCounter
	if counter == nil && cfg.MaxHistoryTokens > 0 {
		tc, err := history.NewTiktokenCounter(cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("error initializing the token counter: %w", err)
		}
		counter = tc
	}

	answerCache, err := cache.New(opts.CacheDBFile, cfg.CacheDuration, memoryCacheSize)
	if err != nil {
		return nil, fmt.Errorf("error initializing the cache database: %w", err)
	}

	runID := uuid.NewString()
	eventLogger, err := el.New(opts.EventLogFile, modelCfg, runID, logger)
	if err != nil {
		answerCache.Close()
		return nil, err
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	return &Service{
		Cache:        answerCache,
		Config:       cfg,
		EventLogger:  eventLogger,
		LLMConfig:    modelCfg,
		Limiter:      limiter,
		Logger:       logger,
		Model:        model,
		RunID:        runID,
		TokenCounter: counter,
	}, nil
}

// Endpoint returns a human readable name of the server answers come from.
func (s *Service) Endpoint() string {
	if s.LLMConfig.ServerURL != "" {
		return s.LLMConfig.ServerURL
	}
	return s.LLMConfig.Provider
}

// Run answers every question of the questions file in order and writes the
// result file. The first failed question aborts the run; answers written so
// far stay in the result file.
func (s *Service) Run(ctx context.Context, observer Observer) (Summary, error) {
	start := time.Now()
	summary := Summary{
		QuestionsFile: s.Config.QuestionsFile,
		OutputFile:    s.Config.OutputFile,
	}

	doc, err := readQuestions(s.Config.QuestionsFile)
	if err != nil {
		observer.OnError(0, err)
		return s.finish(summary, start, observer), err
	}
	summary.Questions = len(doc.Questions())

	out, err := createOutput(s.Config.OutputFile)
	if err != nil {
		observer.OnError(0, err)
		return s.finish(summary, start, observer), err
	}
	defer out.Close()
	w := testfile.NewWriter(out)

	observer.OnStart(RunInfo{
		RunID:         s.RunID,
		QuestionsFile: s.Config.QuestionsFile,
		OutputFile:    s.Config.OutputFile,
		Model:         s.LLMConfig.Model,
		Endpoint:      s.Endpoint(),
		Total:         summary.Questions,
	})

	conv := history.New(s.Config.SystemPrompt, history.Mode(s.Config.Conversation), s.Config.MaxHistoryTokens, s.TokenCounter)

	index := 0
	for _, line := range doc.Lines {
		switch line.Kind {
		case testfile.Answer:
			continue
		case testfile.Text:
			if err := w.WriteText(line.Raw); err != nil {
				return s.finish(summary, start, observer), fmt.Errorf("error writing %s: %w", s.Config.OutputFile, err)
			}
			continue
		}

		index++
		if err := w.WriteQuestion(line); err != nil {
			return s.finish(summary, start, observer), fmt.Errorf("error writing %s: %w", s.Config.OutputFile, err)
		}
		if line.Question == "" {
			s.Logger.Warnf("skipping empty question %d", index)
			summary.Skipped++
			continue
		}
		if err := ctx.Err(); err != nil {
			w.Flush()
			return s.finish(summary, start, observer), err
		}

		observer.OnQuestion(index, summary.Questions, line.Question)
		event := el.Event{
			QuestionsFile: s.Config.QuestionsFile,
			Index:         index,
			Question:      line.Question,
			HistoryTurns:  conv.Len(),
		}

		qStart := time.Now()
		answer, source, err := s.answer(ctx, conv, line.Question)
		event.Duration = time.Since(qStart)
		if err != nil {
			w.Flush()
			s.EventLogger.LogError(event, err)
			observer.OnError(index, err)
			return s.finish(summary, start, observer), fmt.Errorf("error answering question %d via %s: %w", index, s.Endpoint(), err)
		}

		if err := w.WriteAnswer(answer, line.EOL()); err != nil {
			return s.finish(summary, start, observer), fmt.Errorf("error writing %s: %w", s.Config.OutputFile, err)
		}
		conv.Add(line.Question, answer)

		summary.Answered++
		if source == SourceCache {
			summary.FromCache++
		}
		event.Answer = answer
		event.Source = source
		s.EventLogger.LogAnswer(event)
		observer.OnAnswer(index, answer, source, event.Duration)
	}

	if err := w.Flush(); err != nil {
		return s.finish(summary, start, observer), fmt.Errorf("error writing %s: %w", s.Config.OutputFile, err)
	}
	if dropped := conv.Dropped(); dropped > 0 {
		s.Logger.Infof("dropped %d earlier turns to stay within %d history tokens", dropped, s.Config.MaxHistoryTokens)
	}
	return s.finish(summary, start, observer), nil
}

func (s *Service) finish(summary Summary, start time.Time, observer Observer) Summary {
	summary.Duration = time.Since(start)
	s.EventLogger.LogSummary(el.Summary{
		QuestionsFile: summary.QuestionsFile,
		OutputFile:    summary.OutputFile,
		Questions:     summary.Questions,
		Answered:      summary.Answered,
		FromCache:     summary.FromCache,
		Duration:      summary.Duration,
	})
	observer.OnFinish(summary)
	return summary
}

// answer returns the answer to question and where it came from.
func (s *Service) answer(ctx context.Context, conv *history.Conversation, question string) (string, string, error) {
	messages := conv.Messages(question)
	key := cache.Key(s.LLMConfig, messages)

	cached, err := s.Cache.Get(key)
	if err == nil {
		s.Logger.Debugf("cache hit for question: %s", question)
		return cached, SourceCache, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) && !errors.Is(err, cache.ErrCacheExpired) && !errors.Is(err, cache.ErrCacheDisabled) {
		s.Logger.Errorf("error checking the cache: %s", err)
	}

	if s.Limiter != nil {
		if err := s.Limiter.Wait(ctx); err != nil {
			return "", SourceLLM, err
		}
	}

	resp, err := llm.GenerateAnswer(ctx, s.Model, llm.AdaptMessages(s.LLMConfig.Provider, messages), s.LLMConfig.CallOptions()...)
	if err != nil {
		return "", SourceLLM, err
	}
	s.Logger.Debugf("generated answer: %s", strings.ReplaceAll(resp, "\n", " "))

	if err := s.Cache.Store(key, resp); err != nil {
		s.Logger.Errorf("error storing answer in cache: %s", err)
	}
	return resp, SourceLLM, nil
}

func readQuestions(path string) (*testfile.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening questions file: %w", err)
	}
	defer f.Close()

	doc, err := testfile.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("error reading questions file %s: %w", path, err)
	}
	return doc, nil
}

func createOutput(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("error creating output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("error creating output file: %w", err)
	}
	return f, nil
}

// Close releases resources held by the Service.
func (s *Service) Close() error {
	var errs []error
	if s.Cache != nil {
		if err := s.Cache.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.EventLogger != nil {
		if err := s.EventLogger.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
