package ui

import (
	"io"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/0x4d31/llmtester/tester"
)

// Controller runs the viewer and implements tester.Observer.
type Controller struct {
	events    chan Event
	program   *tea.Program
	done      chan struct{}
	err       error
	closeOnce sync.Once
}

// Start launches a viewer that writes to stdout.
func Start(stdout io.Writer, opts Options) *Controller {
	if stdout == nil {
		stdout = os.Stdout
	}
	events := make(chan Event, 256)
	model := NewModel(events, opts)
	program := tea.NewProgram(model, tea.WithOutput(stdout), tea.WithAltScreen())
	controller := &Controller{
		events:  events,
		program: program,
		done:    make(chan struct{}),
	}
	go func() {
		_, controller.err = program.Run()
		close(controller.done)
	}()
	return controller
}

// Close ends the event stream. The viewer stays open until the user quits.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.closeOnce.Do(func() {
		close(c.events)
	})
}

// Wait blocks until the viewer has exited.
func (c *Controller) Wait() error {
	if c == nil {
		return nil
	}
	<-c.done
	return c.err
}

// Quit stops the viewer without waiting for the user.
func (c *Controller) Quit() {
	if c == nil {
		return
	}
	c.program.Quit()
}

// OnStart forwards run start events to the viewer.
func (c *Controller) OnStart(info tester.RunInfo) {
	c.send(Event{Kind: EventRunStart, Run: info})
}

// OnQuestion forwards sent questions to the viewer.
func (c *Controller) OnQuestion(index, total int, question string) {
	c.send(Event{Kind: EventQuestion, Index: index, Total: total, Question: question})
}

// OnAnswer forwards answers to the viewer.
func (c *Controller) OnAnswer(index int, answer, source string, elapsed time.Duration) {
	c.send(Event{Kind: EventAnswer, Index: index, Answer: answer, Source: source, Elapsed: elapsed})
}

// OnError forwards failed questions to the viewer.
func (c *Controller) OnError(index int, err error) {
	c.send(Event{Kind: EventError, Index: index, Err: err})
}

// OnFinish forwards the run summary to the viewer and ends the event stream.
func (c *Controller) OnFinish(summary tester.Summary) {
	c.send(Event{Kind: EventRunEnd, Summary: summary})
	c.Close()
}

// send enqueues an event without blocking the caller.
func (c *Controller) send(event Event) {
	if c == nil {
		return
	}
	select {
	case c.events <- event:
	default:
	}
}
