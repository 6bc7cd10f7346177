// Package extraction turns the plain text of a lab or genetic report into scored,
// deduplicated biomarker and variant entities.
//
// The pipeline is linear: classify the document, run every candidate generator registered
// for its type, aggregate the union of their candidates, resolve survivors against the
// canonical vocabularies and score the whole result. Nothing in the pipeline returns an
// error for poor input; ambiguity shows up as lower confidence instead.
package extraction

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const maxSnippetRunes = 120

// Line is one line of a preprocessed document with its byte offset in Document.Text.
type Line struct {
	Index  int
	Offset int
	Text   string
}

// Document is report text after preprocessing, split into lines.
type Document struct {
	Text  string
	Lines []Line
}

// NewDocument normalises raw report text: NFKC folding (full-width digits, ligatures,
// non-breaking spaces), CRLF and CR line endings to LF, and control characters other
// than tab and newline removed.
func NewDocument(raw string) *Document {
	s := norm.NFKC.String(raw)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r == utf8.RuneError || unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, s)

	doc := &Document{Text: s}
	offset := 0
	for i, text := range strings.Split(s, "\n") {
		doc.Lines = append(doc.Lines, Line{Index: i, Offset: offset, Text: text})
		offset += len(text) + 1
	}
	return doc
}

// Blank reports whether the document has no visible characters.
func (d *Document) Blank() bool {
	return strings.TrimSpace(d.Text) == ""
}

// Neighbourhood joins the lines within radius of line i, for context-word checks.
func (d *Document) Neighbourhood(i, radius int) string {
	lo, hi := i-radius, i+radius
	if lo < 0 {
		lo = 0
	}
	if hi > len(d.Lines)-1 {
		hi = len(d.Lines) - 1
	}
	parts := make([]string, 0, hi-lo+1)
	for j := lo; j <= hi; j++ {
		parts = append(parts, d.Lines[j].Text)
	}
	return strings.Join(parts, "\n")
}

// snippet is the trimmed source line a candidate came from, cut to a fixed length.
func snippet(line string) string {
	s := strings.Join(strings.Fields(line), " ")
	if utf8.RuneCountInString(s) <= maxSnippetRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxSnippetRunes])
}
