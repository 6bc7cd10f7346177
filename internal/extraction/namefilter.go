package extraction

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/labextract-server/internal/domain"
)

var (
	dateShapedPattern = regexp.MustCompile(`\d{1,4}[/.\-]\d{1,2}[/.\-]\d{2,4}|\b\d{1,2}:\d{2}\b`)
	monthPattern      = regexp.MustCompile(`(?i)^(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?(?:\s+\d{1,4})*$`)
	trailingCode      = regexp.MustCompile(`\s+\d{1,2}$`)

	// Stopwords on their own, but part of real names such as "Total Protein" or
	// "Direct Bilirubin", so backtracking keeps them.
	nameQualifiers = map[string]bool{
		"total": true, "serum": true, "plasma": true, "blood": true, "urine": true,
		"direct": true, "calculated": true, "calc": true,
	}
)

// NameFilter is the false-positive gate for candidate names.
type NameFilter struct {
	blacklist      map[string]bool
	stopwords      map[string]bool
	minLetterRatio float64
	maxLength      int
}

// NewNameFilter builds a filter from the extraction configuration.
func NewNameFilter(cfg domain.ExtractionConfig) *NameFilter {
	f := &NameFilter{
		blacklist:      make(map[string]bool, len(cfg.NameBlacklist)),
		stopwords:      make(map[string]bool, len(cfg.NameStopwords)),
		minLetterRatio: cfg.MinLetterRatio,
		maxLength:      cfg.MaxNameLength,
	}
	for _, w := range cfg.NameBlacklist {
		f.blacklist[strings.ToLower(strings.TrimSpace(w))] = true
	}
	for _, w := range cfg.NameStopwords {
		f.stopwords[strings.ToLower(strings.TrimSpace(w))] = true
	}
	return f
}

// Clean trims separators, surrounding punctuation and a trailing vendor code from a raw
// name.
func (f *NameFilter) Clean(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	s = strings.Trim(s, " :=-–,;.*#")
	s = trailingCode.ReplaceAllString(s, "")
	return strings.Trim(s, " :=-–,;.*#")
}

// Basic is the guard every strategy applies: the name has at least two characters and at
// least one letter.
func (f *NameFilter) Basic(name string) bool {
	if len([]rune(name)) < 2 {
		return false
	}
	for _, r := range name {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// Valid is the full check used by the looser strategies. Besides Basic it rejects names
// that are too long, date or time shaped, administrative, a lone stopword, or mostly
// non-letters.
func (f *NameFilter) Valid(name string) bool {
	if !f.Basic(name) {
		return false
	}
	if f.maxLength > 0 && len([]rune(name)) > f.maxLength {
		return false
	}
	if dateShapedPattern.MatchString(name) || monthPattern.MatchString(name) {
		return false
	}

	words := f.words(name)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if f.blacklist[w] {
			return false
		}
	}
	if f.stopwords[strings.Join(words, " ")] {
		return false
	}

	letters, visible := 0, 0
	for _, r := range name {
		if unicode.IsSpace(r) {
			continue
		}
		visible++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return float64(letters)/float64(visible) >= f.minLetterRatio
}

// TrimStopwords drops stopwords from both ends of a backtracked word list.
func (f *NameFilter) TrimStopwords(words []string) []string {
	for len(words) > 0 && f.isStopword(words[0]) {
		words = words[1:]
	}
	for len(words) > 0 && f.isStopword(words[len(words)-1]) {
		words = words[:len(words)-1]
	}
	return words
}

func (f *NameFilter) isStopword(word string) bool {
	w := strings.ToLower(strings.Trim(word, ":=-,;.()"))
	return w == "" || (f.stopwords[w] && !nameQualifiers[w])
}

func (f *NameFilter) words(name string) []string {
	return strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
