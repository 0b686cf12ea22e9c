package tester

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/0x4d31/llmtester/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type mockModel struct {
	calls    [][]llms.MessageContent
	generate func(messages []llms.MessageContent) (string, error)
}

func (m *mockModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, opts ...llms.CallOption) (*llms.ContentResponse, error) {
	m.calls = append(m.calls, messages)
	text, err := m.generate(messages)
	if err != nil {
		return nil, err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: text}}}, nil
}

func (m *mockModel) Call(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, opts...)
}

func lastQuestion(messages []llms.MessageContent) string {
	last := messages[len(messages)-1]
	return last.Parts[0].(llms.TextContent).Text
}

type recorder struct {
	started   RunInfo
	questions []string
	sources   []string
	errs      []error
	finished  *Summary
}

func (r *recorder) OnStart(info RunInfo) { r.started = info }
func (r *recorder) OnQuestion(index, total int, question string) {
	r.questions = append(r.questions, question)
}
func (r *recorder) OnAnswer(index int, answer, source string, elapsed time.Duration) {
	r.sources = append(r.sources, source)
}
func (r *recorder) OnError(index int, err error) { r.errs = append(r.errs, err) }
func (r *recorder) OnFinish(summary Summary)     { r.finished = &summary }

const questions = "# Smoke test\n\n- Q: What is 2+2?\n- A: stale answer\n  stale continuation\n\nSome notes.\n- Q: And doubled?\n"

func newTestService(t *testing.T, model llms.Model, mutate func(*config.Config)) (*Service, string) {
	t.Helper()
	dir := t.TempDir()

	questionsFile := filepath.Join(dir, "LLM Test.md")
	require.NoError(t, os.WriteFile(questionsFile, []byte(questions), 0o644))

	cfg := config.Default()
	cfg.BaseURL = "http://localhost:1234/v1"
	cfg.QuestionsFile = questionsFile
	cfg.OutputFile = filepath.Join(dir, "results", "LLM TestResult.md")
	cfg.SystemPrompt = "Answer briefly."
	if mutate != nil {
		mutate(cfg)
	}

	svc, err := NewServiceFromConfig(context.Background(), cfg, Options{
		CacheDBFile:  filepath.Join(dir, "cache.db"),
		EventLogFile: filepath.Join(dir, "event_log.json"),
		LLM:          model,
	})
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc, dir
}

func TestRun(t *testing.T) {
	model := &mockModel{generate: func(messages []llms.MessageContent) (string, error) {
		if lastQuestion(messages) == "What is 2+2?" {
			return " 4\n", nil
		}
		return "8", nil
	}}
	svc, dir := newTestService(t, model, nil)

	rec := &recorder{}
	summary, err := svc.Run(context.Background(), rec)
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(dir, "results", "LLM TestResult.md"))
	require.NoError(t, err)
	want := "# Smoke test\n\n- Q: What is 2+2?\n- A: 4\n\nSome notes.\n- Q: And doubled?\n- A: 8\n"
	assert.Equal(t, want, string(got))

	assert.Equal(t, 2, summary.Questions)
	assert.Equal(t, 2, summary.Answered)
	assert.Equal(t, 0, summary.FromCache)
	assert.Equal(t, []string{"What is 2+2?", "And doubled?"}, rec.questions)
	assert.Equal(t, 2, rec.started.Total)
	assert.Equal(t, "http://localhost:1234/v1", rec.started.Endpoint)
	require.NotNil(t, rec.finished)

	// The second question carries the first turn of the conversation.
	require.Len(t, model.calls, 2)
	assert.Len(t, model.calls[0], 2)
	second := model.calls[1]
	require.Len(t, second, 4)
	assert.Equal(t, llms.ChatMessageTypeSystem, second[0].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, second[2].Role)
	assert.Equal(t, "4", second[2].Parts[0].(llms.TextContent).Text)
}

func TestRunIsolated(t *testing.T) {
	model := &mockModel{generate: func([]llms.MessageContent) (string, error) { return "ok", nil }}
	svc, _ := newTestService(t, model, func(cfg *config.Config) {
		cfg.Conversation = "isolated"
		cfg.SystemPrompt = ""
	})

	_, err := svc.Run(context.Background(), &recorder{})
	require.NoError(t, err)
	for _, call := range model.calls {
		assert.Len(t, call, 1)
	}
}

func TestRunUsesCache(t *testing.T) {
	model := &mockModel{generate: func(messages []llms.MessageContent) (string, error) {
		return "answer to " + lastQuestion(messages), nil
	}}
	svc, _ := newTestService(t, model, func(cfg *config.Config) { cfg.CacheDuration = -1 })

	_, err := svc.Run(context.Background(), &recorder{})
	require.NoError(t, err)
	require.Len(t, model.calls, 2)

	rec := &recorder{}
	summary, err := svc.Run(context.Background(), rec)
	require.NoError(t, err)
	assert.Len(t, model.calls, 2)
	assert.Equal(t, 2, summary.FromCache)
	assert.Equal(t, []string{SourceCache, SourceCache}, rec.sources)
}

func TestRunAbortsOnError(t *testing.T) {
	model := &mockModel{generate: func(messages []llms.MessageContent) (string, error) {
		if lastQuestion(messages) == "And doubled?" {
			return "", errors.New("connection refused")
		}
		return "4", nil
	}}
	svc, dir := newTestService(t, model, nil)

	rec := &recorder{}
	summary, err := svc.Run(context.Background(), rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http://localhost:1234/v1")
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1, summary.Answered)
	assert.Len(t, rec.errs, 1)
	require.NotNil(t, rec.finished)

	got, err := os.ReadFile(filepath.Join(dir, "results", "LLM TestResult.md"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(got), "# Smoke test\n\n- Q: What is 2+2?\n- A: 4\n"))
	assert.True(t, strings.HasSuffix(string(got), "- Q: And doubled?\n"))

	events, err := os.ReadFile(filepath.Join(dir, "event_log.json"))
	require.NoError(t, err)
	assert.Contains(t, string(events), "failedQuestion")
}

func TestRunCancelled(t *testing.T) {
	model := &mockModel{generate: func([]llms.MessageContent) (string, error) { return "ok", nil }}
	svc, _ := newTestService(t, model, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Run(ctx, &recorder{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, model.calls)
}

func TestRunMissingQuestionsFile(t *testing.T) {
	model := &mockModel{generate: func([]llms.MessageContent) (string, error) { return "ok", nil }}
	svc, _ := newTestService(t, model, func(cfg *config.Config) {
		cfg.QuestionsFile = filepath.Join(t.TempDir(), "missing.md")
	})

	rec := &recorder{}
	_, err := svc.Run(context.Background(), rec)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Len(t, rec.errs, 1)
	assert.NotNil(t, rec.finished)
}

func TestNewServiceOverrides(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("base_url: http://localhost:1234/v1\nrequests_per_minute: 30\n"), 0o644))
	t.Setenv("LLM_MODEL", "")

	svc, err := NewService(context.Background(), Options{
		ConfigFile:   configFile,
		CacheDBFile:  filepath.Join(dir, "cache.db"),
		EventLogFile: filepath.Join(dir, "event_log.json"),
		Model:        "qwen2.5-7b-instruct",
		OutputFile:   filepath.Join(dir, "out.md"),
		LLM:          &mockModel{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })

	assert.Equal(t, "qwen2.5-7b-instruct", svc.LLMConfig.Model)
	assert.Equal(t, filepath.Join(dir, "out.md"), svc.Config.OutputFile)
	require.NotNil(t, svc.Limiter)
	assert.Equal(t, 2*time.Second, time.Duration(float64(time.Second)/float64(svc.Limiter.Limit())))
	assert.NotEmpty(t, svc.RunID)
}

func TestNewServiceInvalidConfig(t *testing.T) {
	cfg := config.Default()
	temperature := 3.0
	cfg.Temperature = &temperature

	_, err := NewServiceFromConfig(context.Background(), cfg, Options{LLM: &mockModel{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation error")
}
