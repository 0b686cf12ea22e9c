// Package testfile reads Markdown question files and writes result files.
//
// A question line starts with "- Q: ". Lines starting with "- A:" hold answers
// from an earlier run; they are dropped together with their indented
// continuation lines. Every other line is copied verbatim.
package testfile

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

const (
	QuestionPrefix     = "- Q: "
	AnswerPrefix       = "- A:"
	continuationIndent = "  "
)

// Kind identifies how a line is treated when producing the result file.
type Kind int

const (
	Text Kind = iota
	Question
	Answer
)

// Line is one line of a question file. Raw keeps the original text including
// its line ending.
type Line struct {
	Kind     Kind
	Raw      string
	Question string
}

// EOL returns the line ending of the raw line, "\n" when it has none.
func (l Line) EOL() string {
	if strings.HasSuffix(l.Raw, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

// Document is a parsed question file.
type Document struct {
	Lines []Line
}

// Parse reads a question file.
func Parse(r io.Reader) (*Document, error) {
	doc := &Document{}
	br := bufio.NewReader(r)
	inAnswer := false
	for {
		raw, err := br.ReadString('\n')
		if raw != "" {
			line := classify(raw, inAnswer)
			inAnswer = line.Kind == Answer
			doc.Lines = append(doc.Lines, line)
		}
		if errors.Is(err, io.EOF) {
			return doc, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func classify(raw string, inAnswer bool) Line {
	switch {
	case strings.HasPrefix(raw, QuestionPrefix):
		return Line{Kind: Question, Raw: raw, Question: strings.TrimSpace(raw[len(QuestionPrefix):])}
	case strings.HasPrefix(raw, AnswerPrefix):
		return Line{Kind: Answer, Raw: raw}
	case inAnswer && strings.HasPrefix(raw, continuationIndent):
		return Line{Kind: Answer, Raw: raw}
	default:
		return Line{Kind: Text, Raw: raw}
	}
}

// Questions returns the questions in file order.
func (d *Document) Questions() []string {
	var qs []string
	for _, l := range d.Lines {
		if l.Kind == Question {
			qs = append(qs, l.Question)
		}
	}
	return qs
}

// FormatAnswer renders an answer line. Lines after the first are indented so
// the answer stays inside the list item.
func FormatAnswer(answer, eol string) string {
	lines := strings.Split(strings.TrimSpace(answer), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], "\r")
		if i > 0 {
			lines[i] = continuationIndent + lines[i]
		}
	}
	return AnswerPrefix + " " + strings.Join(lines, eol) + eol
}

// Writer writes a result file.
type Writer struct {
	w *bufio.Writer
}

// NewWriter returns a Writer on top of w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteText copies a raw line.
func (w *Writer) WriteText(raw string) error {
	_, err := w.w.WriteString(raw)
	return err
}

// WriteQuestion copies a question line, terminating it if it was the last
// line of the file and had no line ending.
func (w *Writer) WriteQuestion(l Line) error {
	raw := l.Raw
	if !strings.HasSuffix(raw, "\n") {
		raw += l.EOL()
	}
	return w.WriteText(raw)
}

// WriteAnswer writes an answer line and flushes, so answers already received
// are on disk if the run is interrupted.
func (w *Writer) WriteAnswer(answer, eol string) error {
	if _, err := w.w.WriteString(FormatAnswer(answer, eol)); err != nil {
		return err
	}
	return w.w.Flush()
}

// Flush writes any buffered text.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
