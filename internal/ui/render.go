package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleColor    = lipgloss.Color("33")
	questionColor = lipgloss.Color("69")
	answerColor   = lipgloss.Color("252")
	mutedColor    = lipgloss.Color("242")
	errorColor    = lipgloss.Color("196")
	doneColor     = lipgloss.Color("42")
)

// renderHeader renders the run line and the progress line.
func renderHeader(state State, now time.Time, noColor bool) string {
	run := state.Run
	title := "LLM test"
	if run.QuestionsFile != "" {
		title += " | " + run.QuestionsFile
	}
	if run.Model != "" {
		title += " | " + run.Model
	}
	if run.Endpoint != "" {
		title += " @ " + run.Endpoint
	}

	progress := fmt.Sprintf("Answered: %d/%d  Cached: %d", state.Answered, run.Total, state.FromCache)
	if !state.StartedAt.IsZero() {
		elapsed := now.Sub(state.StartedAt)
		if state.Finished {
			elapsed = state.Summary.Duration
		}
		progress += "  Elapsed: " + elapsed.Round(100*time.Millisecond).String()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		stylize(title, noColor, lipgloss.NewStyle().Bold(true).Foreground(titleColor)),
		stylize(progress, noColor, lipgloss.NewStyle().Foreground(mutedColor)),
	)
}

// renderTranscript renders every question with its answer, wrapped to width.
// spinner is shown next to a pending question.
func renderTranscript(state State, width int, spinner string, noColor bool) string {
	if len(state.Entries) == 0 {
		if state.Err != "" {
			return stylize(lipgloss.NewStyle().Width(max(width, 1)).Render("Error: "+state.Err), noColor, lipgloss.NewStyle().Foreground(errorColor))
		}
		return stylize("Waiting for the first question...", noColor, lipgloss.NewStyle().Foreground(mutedColor))
	}

	wrap := lipgloss.NewStyle().Width(max(width, 1))
	var b strings.Builder
	for i, e := range state.Entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		q := wrap.Render(fmt.Sprintf("Q%d. %s", e.Index, e.Question))
		b.WriteString(stylize(q, noColor, lipgloss.NewStyle().Bold(true).Foreground(questionColor)))
		b.WriteString("\n")

		switch {
		case e.Pending:
			b.WriteString(spinner + stylize("generating answer...", noColor, lipgloss.NewStyle().Foreground(mutedColor)))
		case e.Err != "":
			b.WriteString(stylize(wrap.Render("Error: "+e.Err), noColor, lipgloss.NewStyle().Foreground(errorColor)))
		default:
			b.WriteString(stylize(wrap.Render("A: "+e.Answer), noColor, lipgloss.NewStyle().Foreground(answerColor)))
			b.WriteString("\n")
			b.WriteString(stylize(fmt.Sprintf("(%s, %s)", e.Source, e.Elapsed.Round(time.Millisecond)), noColor, lipgloss.NewStyle().Foreground(mutedColor)))
		}
	}
	return b.String()
}

// renderFooter renders the key help, and the outcome once the run is over.
func renderFooter(state State, noColor bool) string {
	if !state.Finished {
		return stylize("↑/↓ scroll • ctrl+c cancel", noColor, lipgloss.NewStyle().Foreground(mutedColor))
	}
	outcome := fmt.Sprintf("Done: wrote %d answers to %s", state.Summary.Answered, state.Summary.OutputFile)
	color := doneColor
	if state.Failed {
		outcome = fmt.Sprintf("Stopped: %d of %d questions answered", state.Summary.Answered, state.Summary.Questions)
		color = errorColor
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		stylize(outcome, noColor, lipgloss.NewStyle().Foreground(color)),
		stylize("↑/↓ scroll • q quit", noColor, lipgloss.NewStyle().Foreground(mutedColor)),
	)
}

// stylize applies optional styling.
func stylize(text string, noColor bool, style lipgloss.Style) string {
	if noColor {
		return text
	}
	return style.Render(text)
}
