package ui

import (
	"strings"
	"time"

	cblog "github.com/charmbracelet/log"

	"github.com/0x4d31/llmtester/tester"
)

// Plain reports progress as log lines.
type Plain struct {
	Logger *cblog.Logger
	total  int
}

// NewPlain returns a Plain observer writing to logger, the default logger if nil.
func NewPlain(logger *cblog.Logger) *Plain {
	if logger == nil {
		logger = cblog.Default()
	}
	return &Plain{Logger: logger}
}

func (p *Plain) OnStart(info tester.RunInfo) {
	p.total = info.Total
	p.Logger.Infof("testing %s at %s with %d questions from %s", info.Model, info.Endpoint, info.Total, info.QuestionsFile)
}

func (p *Plain) OnQuestion(index, total int, question string) {
	p.Logger.Infof("generating answer for: %s", question)
}

func (p *Plain) OnAnswer(index int, answer, source string, elapsed time.Duration) {
	p.Logger.Infof("answer %d/%d (%s, %s): %s", index, p.total, source, elapsed.Round(time.Millisecond), strings.ReplaceAll(answer, "\n", " "))
}

func (p *Plain) OnError(index int, err error) {
	if index == 0 {
		p.Logger.Errorf("run failed: %s", err)
		return
	}
	p.Logger.Errorf("question %d failed: %s", index, err)
}

func (p *Plain) OnFinish(summary tester.Summary) {
	p.Logger.Infof("wrote %d of %d answers to %s in %s (%d from cache)",
		summary.Answered, summary.Questions, summary.OutputFile, summary.Duration.Round(time.Millisecond), summary.FromCache)
}
