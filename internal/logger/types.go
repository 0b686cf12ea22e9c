package logger

import (
	"os"
	"time"

	"github.com/0x4d31/llmtester/pkg/llm"
	cblog "github.com/charmbracelet/log"
)

// Logger writes one JSON event per answered or failed question.
type Logger struct {
	EventLogger *cblog.Logger
	EventFile   *os.File
	LLMConfig   llm.Config
	Logger      *cblog.Logger
	RunID       string
	SensorName  string
}

// Event describes one question of a run.
type Event struct {
	QuestionsFile string
	Index         int
	Question      string
	Answer        string
	Source        string
	Duration      time.Duration
	HistoryTurns  int
}

// Summary describes a finished run.
type Summary struct {
	QuestionsFile string
	OutputFile    string
	Questions     int
	Answered      int
	FromCache     int
	Duration      time.Duration
}

// ResponseMetadata holds metadata about the generated answer
type ResponseMetadata struct {
	GenerationSource string  `json:"generationSource"`
	Info             LLMInfo `json:"info,omitempty"`
}

// LLMInfo holds information about the large language model
type LLMInfo struct {
	Model       string   `json:"model,omitempty"`
	Provider    string   `json:"provider,omitempty"`
	ServerURL   string   `json:"serverURL,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}
