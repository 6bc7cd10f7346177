package extraction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		text  string
		lines int
	}{
		{"plain", "Glucose 95 mg/dL", "Glucose 95 mg/dL", 1},
		{"crlf", "a\r\nb\rc", "a\nb\nc", 3},
		{"full width digits", "Ｇｌｕｃｏｓｅ ９５", "Glucose 95", 1},
		{"non-breaking space", "Glucose\u00a095", "Glucose 95", 1},
		{"control characters", "Glu\x00cose\x07 95\tmg/dL", "Glucose 95\tmg/dL", 1},
		{"zero width space", "Glu\u200bcose", "Glucose", 1},
		{"empty", "", "", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewDocument(tt.raw)
			assert.Equal(t, tt.text, doc.Text)
			assert.Len(t, doc.Lines, tt.lines)
		})
	}
}

func TestDocumentLineOffsets(t *testing.T) {
	doc := NewDocument("a\r\nbb\ncc")
	require.Len(t, doc.Lines, 3)
	for i, line := range doc.Lines {
		assert.Equal(t, i, line.Index)
		assert.Equal(t, line.Text, doc.Text[line.Offset:line.Offset+len(line.Text)])
	}
	assert.Equal(t, []int{0, 2, 5}, []int{doc.Lines[0].Offset, doc.Lines[1].Offset, doc.Lines[2].Offset})
}

func TestDocumentBlank(t *testing.T) {
	assert.True(t, NewDocument("").Blank())
	assert.True(t, NewDocument(" \n\t\r\n").Blank())
	assert.False(t, NewDocument("x").Blank())
}

func TestDocumentNeighbourhood(t *testing.T) {
	doc := NewDocument("one\ntwo\nthree\nfour")

	assert.Equal(t, "one\ntwo", doc.Neighbourhood(0, 1))
	assert.Equal(t, "two\nthree\nfour", doc.Neighbourhood(2, 1))
	assert.Equal(t, "three", doc.Neighbourhood(2, 0))
	assert.Equal(t, doc.Text, doc.Neighbourhood(1, 10))
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "Glucose 95 mg/dL", snippet("  Glucose \t 95   mg/dL "))

	long := strings.Repeat("é", 300)
	assert.Len(t, []rune(snippet(long)), maxSnippetRunes)
}
