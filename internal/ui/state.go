package ui

import (
	"time"

	"github.com/0x4d31/llmtester/tester"
)

// Entry is one question of the transcript.
type Entry struct {
	Index    int
	Question string
	Answer   string
	Source   string
	Elapsed  time.Duration
	Err      string
	Pending  bool
}

// State captures what the viewer shows.
type State struct {
	Run       tester.RunInfo
	StartedAt time.Time
	Entries   []Entry
	Answered  int
	FromCache int
	Failed    bool
	Err       string
	Finished  bool
	Summary   tester.Summary
}

// Reduce applies a UI event to the state.
func Reduce(state State, event Event) State {
	switch event.Kind {
	case EventRunStart:
		state.Run = event.Run
		state.StartedAt = time.Now()
	case EventQuestion:
		state.Entries = append(state.Entries, Entry{
			Index:    event.Index,
			Question: event.Question,
			Pending:  true,
		})
	case EventAnswer:
		if e := state.entry(event.Index); e != nil {
			e.Answer = event.Answer
			e.Source = event.Source
			e.Elapsed = event.Elapsed
			e.Pending = false
		}
		state.Answered++
		if event.Source == tester.SourceCache {
			state.FromCache++
		}
	case EventError:
		msg := "unknown error"
		if event.Err != nil {
			msg = event.Err.Error()
		}
		if e := state.entry(event.Index); e != nil {
			e.Err = msg
			e.Pending = false
		} else {
			state.Err = msg
		}
		state.Failed = true
	case EventRunEnd:
		state.Finished = true
		state.Summary = event.Summary
		for i := range state.Entries {
			state.Entries[i].Pending = false
		}
	}
	return state
}

func (s *State) entry(index int) *Entry {
	for i := len(s.Entries) - 1; i >= 0; i-- {
		if s.Entries[i].Index == index {
			return &s.Entries[i]
		}
	}
	return nil
}

// Pending reports whether a question is waiting for its answer.
func (s State) Pending() bool {
	return len(s.Entries) > 0 && s.Entries[len(s.Entries)-1].Pending
}
