package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/0x4d31/llmtester/pkg/llm"
	cblog "github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// New creates a new Logger appending to eventLogFile.
func New(eventLogFile string, modelConfig llm.Config, runID string, l *cblog.Logger) (*Logger, error) {
	evFile, err := os.OpenFile(eventLogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	eventLogger := cblog.NewWithOptions(evFile, cblog.Options{Formatter: cblog.JSONFormatter, TimeFormat: time.RFC3339Nano})

	sensorName, err := getHostname()
	if err != nil {
		sensorName = uuid.NewString()
	}

	return &Logger{
		EventLogger: eventLogger,
		EventFile:   evFile,
		LLMConfig:   modelConfig,
		Logger:      l,
		RunID:       runID,
		SensorName:  sensorName,
	}, nil
}

// LogAnswer logs an answeredQuestion event.
func (l *Logger) LogAnswer(e Event) {
	fields := l.commonFields(e)
	fields["answer"] = e.Answer
	fields["responseMetadata"] = l.metadata(e.Source)

	l.EventLogger.Info("answeredQuestion", mapToArgs(fields)...)
}

// LogError logs a failedQuestion event.
func (l *Logger) LogError(e Event, err error) {
	fields := l.commonFields(e)
	fields["error"] = map[string]any{
		"type": llm.ErrorType(err),
		"msg":  llm.ErrorMessage(err),
	}
	fields["responseMetadata"] = l.metadata("llm")

	l.EventLogger.Error("failedQuestion", mapToArgs(fields)...)
}

// LogSummary logs a runFinished event.
func (l *Logger) LogSummary(s Summary) {
	l.EventLogger.Info("runFinished",
		"eventTime", time.Now(),
		"runID", l.RunID,
		"sensorName", l.SensorName,
		"questionsFile", s.QuestionsFile,
		"outputFile", s.OutputFile,
		"questions", s.Questions,
		"answered", s.Answered,
		"fromCache", s.FromCache,
		"durationMs", s.Duration.Milliseconds(),
	)
}

// Close closes the event log file.
func (l *Logger) Close() error {
	if l.EventFile == nil {
		return nil
	}
	return l.EventFile.Close()
}

func (l *Logger) metadata(source string) ResponseMetadata {
	md := ResponseMetadata{GenerationSource: source}
	if source == "llm" {
		md.Info = LLMInfo{
			Provider:    l.LLMConfig.Provider,
			Model:       l.LLMConfig.Model,
			ServerURL:   l.LLMConfig.ServerURL,
			Temperature: l.LLMConfig.Temperature,
		}
	}
	return md
}

func (l *Logger) commonFields(e Event) map[string]any {
	return map[string]any{
		"eventTime":     time.Now(),
		"runID":         l.RunID,
		"sensorName":    l.SensorName,
		"questionsFile": e.QuestionsFile,
		"questionIndex": e.Index,
		"question":      e.Question,
		"historyTurns":  e.HistoryTurns,
		"durationMs":    e.Duration.Milliseconds(),
	}
}

func getHostname() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("failed to get hostname: %s", err)
	}
	return hostname, nil
}

func mapToArgs(m map[string]any) []any {
	args := make([]any, 0, len(m)*2)
	for k, v := range m {
		args = append(args, k, v)
	}
	return args
}
