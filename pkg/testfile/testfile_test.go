package testfile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `# Geography

- Q: What is the capital of France?
- A: old answer
  spanning two lines
- Q:   Name a prime number.

Notes stay as they are.
- Qualifier line is plain text
`

func TestParse(t *testing.T) {
	doc, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	want := []Line{
		{Kind: Text, Raw: "# Geography\n"},
		{Kind: Text, Raw: "\n"},
		{Kind: Question, Raw: "- Q: What is the capital of France?\n", Question: "What is the capital of France?"},
		{Kind: Answer, Raw: "- A: old answer\n"},
		{Kind: Answer, Raw: "  spanning two lines\n"},
		{Kind: Question, Raw: "- Q:   Name a prime number.\n", Question: "Name a prime number."},
		{Kind: Text, Raw: "\n"},
		{Kind: Text, Raw: "Notes stay as they are.\n"},
		{Kind: Text, Raw: "- Qualifier line is plain text\n"},
	}
	if diff := cmp.Diff(want, doc.Lines); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"What is the capital of France?", "Name a prime number."}, doc.Questions())
}

func TestParseEdgeCases(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantLines int
		wantQs    []string
	}{
		{name: "empty", input: "", wantLines: 0},
		{name: "noTrailingNewline", input: "- Q: last", wantLines: 1, wantQs: []string{"last"}},
		{name: "crlf", input: "- Q: one\r\n- Q: two\r\n", wantLines: 2, wantQs: []string{"one", "two"}},
		{name: "prefixWithoutSpace", input: "- Q:nope\n", wantLines: 1},
		{name: "indentedTextAfterQuestion", input: "- Q: a\n  note\n", wantLines: 2, wantQs: []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Len(t, doc.Lines, tt.wantLines)
			assert.Equal(t, tt.wantQs, doc.Questions())
		})
	}
}

func TestLineEOL(t *testing.T) {
	assert.Equal(t, "\r\n", Line{Raw: "- Q: a\r\n"}.EOL())
	assert.Equal(t, "\n", Line{Raw: "- Q: a\n"}.EOL())
	assert.Equal(t, "\n", Line{Raw: "- Q: a"}.EOL())
}

func TestFormatAnswer(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		eol    string
		want   string
	}{
		{name: "singleLine", answer: "  Paris  ", eol: "\n", want: "- A: Paris\n"},
		{name: "multiLine", answer: "First.\n\nSecond.\n", eol: "\n", want: "- A: First.\n  \n  Second.\n"},
		{name: "crlf", answer: "a\r\nb", eol: "\r\n", want: "- A: a\r\n  b\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAnswer(tt.answer, tt.eol))
		})
	}
}

func TestResultIsReparseable(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteQuestion(Line{Kind: Question, Raw: "- Q: Explain."}))
	require.NoError(t, w.WriteAnswer("Line one.\nLine two.", "\n"))
	require.NoError(t, w.WriteText("trailer\n"))
	require.NoError(t, w.Flush())

	assert.Equal(t, "- Q: Explain.\n- A: Line one.\n  Line two.\ntrailer\n", buf.String())

	doc, err := Parse(&buf)
	require.NoError(t, err)
	kinds := make([]Kind, 0, len(doc.Lines))
	for _, l := range doc.Lines {
		kinds = append(kinds, l.Kind)
	}
	assert.Equal(t, []Kind{Question, Answer, Answer, Text}, kinds)
}
