package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// chromeHeight is the number of rows used by the header and the footer.
const chromeHeight = 4

// Options configures the viewer.
type Options struct {
	NoColor bool
	// Cols and Rows bound the viewer area, see Dimensions.
	Cols int
	Rows int
	// Cancel is called when the user interrupts the run.
	Cancel       context.CancelFunc
	TickInterval time.Duration
}

// Model renders the transcript of a run using Bubble Tea.
type Model struct {
	state        State
	viewport     viewport.Model
	spinner      spinner.Model
	events       <-chan Event
	cancel       context.CancelFunc
	maxCols      int
	maxRows      int
	width        int
	tickInterval time.Duration
	now          time.Time
	noColor      bool
	closed       bool
}

// NewModel constructs a viewer for an event stream.
func NewModel(events <-chan Event, opts Options) Model {
	tickInterval := opts.TickInterval
	if tickInterval <= 0 {
		tickInterval = 200 * time.Millisecond
	}
	cols, rows := opts.Cols, opts.Rows
	if cols <= 0 || rows <= 0 {
		cols, rows = Dimensions(nil, 0)
	}

	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	if !opts.NoColor {
		s.Style = lipgloss.NewStyle().Foreground(titleColor)
	}

	m := Model{
		viewport:     viewport.New(cols, max(rows-chromeHeight, 1)),
		spinner:      s,
		events:       events,
		cancel:       opts.Cancel,
		maxCols:      cols,
		maxRows:      rows,
		width:        cols,
		tickInterval: tickInterval,
		now:          time.Now(),
		noColor:      opts.NoColor,
	}
	m.refresh()
	return m
}

// Init starts ticking and waits for the first event.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), tick(m.tickInterval), m.spinner.Tick)
}

// Update consumes UI events, key presses and timer ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = min(typed.Width, m.maxCols)
		m.viewport.Width = m.width
		m.viewport.Height = max(min(typed.Height, m.maxRows)-chromeHeight, 1)
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		switch typed.String() {
		case "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case "q", "esc":
			if m.state.Finished || m.closed {
				return m, tea.Quit
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case EventMsg:
		m.state = Reduce(m.state, typed.Event)
		m.refresh()
		m.viewport.GotoBottom()
		return m, waitForEvent(m.events)
	case closedMsg:
		m.closed = true
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.state.Pending() {
			m.refresh()
		}
		return m, cmd
	case tickMsg:
		m.now = time.Time(typed)
		if m.state.Finished {
			return m, nil
		}
		return m, tick(m.tickInterval)
	}
	return m, nil
}

// View renders the viewer.
func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		renderHeader(m.state, m.now, m.noColor),
		m.viewport.View(),
		renderFooter(m.state, m.noColor),
	)
}

// State returns the current viewer state.
func (m Model) State() State {
	return m.state
}

func (m *Model) refresh() {
	m.viewport.SetContent(renderTranscript(m.state, m.width, m.spinner.View(), m.noColor))
}

// EventMsg wraps a UI event for Bubble Tea.
type EventMsg struct {
	Event Event
}

// closedMsg reports that the event stream ended.
type closedMsg struct{}

// tickMsg carries a clock tick for updates.
type tickMsg time.Time

// waitForEvent blocks until a UI event is available.
func waitForEvent(events <-chan Event) tea.Cmd {
	return func() tea.Msg {
		if events == nil {
			return nil
		}
		event, ok := <-events
		if !ok {
			return closedMsg{}
		}
		return EventMsg{Event: event}
	}
}

// tick emits a periodic tick message.
func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}
