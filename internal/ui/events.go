package ui

import (
	"time"

	"github.com/0x4d31/llmtester/tester"
)

// EventKind identifies the type of UI event.
type EventKind int

const (
	// EventRunStart signals the start of a run.
	EventRunStart EventKind = iota
	// EventQuestion signals that a question was sent.
	EventQuestion
	// EventAnswer delivers an answer.
	EventAnswer
	// EventError delivers a failed question.
	EventError
	// EventRunEnd signals run completion.
	EventRunEnd
)

// Event carries a UI update payload.
type Event struct {
	Kind     EventKind
	Run      tester.RunInfo
	Index    int
	Total    int
	Question string
	Answer   string
	Source   string
	Elapsed  time.Duration
	Err      error
	Summary  tester.Summary
}
