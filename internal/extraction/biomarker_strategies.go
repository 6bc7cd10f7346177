package extraction

import (
	"regexp"
	"strings"

	"github.com/labextract-server/internal/domain"
	"github.com/labextract-server/pkg/units"
)

// Confidence offsets of the table row grammars relative to the table strategy's
// configured confidence.
const (
	questRowDelta   = 3
	labcorpRowDelta = 1
	columnRowDelta  = -3
)

const rangeKeywordPat = `(?i:reference\s+range|reference\s+interval|normal\s+range|ref\.?\s*range|ref\.?\s*interval|range|ref\.?)`

var (
	// NAME VALUE [FLAG] RANGE UNIT [CODE]
	questRowPattern = regexp.MustCompile(`^\s*(` + namePat + `)\s+` + valuePat +
		`\s+(?:(` + flagPat + `)\s+)?(` + rangePat + `)\s+(` + unitPat + `)(?:\s+[A-Z0-9]{2,5})?\s*$`)

	// NAME VALUE [FLAG] UNIT RANGE
	labcorpRowPattern = regexp.MustCompile(`^\s*(` + namePat + `)\s+` + valuePat +
		`\s+(?:(` + flagPat + `)\s+)?(` + unitPat + `)\s+(` + rangePat + `)\s*$`)

	// NAME ... range: RANGE [UNIT] ... VALUE [UNIT]
	rangeFirstPattern = regexp.MustCompile(`^\s*(` + namePat + `)\s*[:\-]?\s*[(\[]?\s*` + rangeKeywordPat +
		`\s*[:=]?\s*(` + rangePat + `)\s*(` + unitPat + `)?\s*(?:[)\]]\s*)?(?:[:;,\-]\s*)?` +
		`(?:(?i:result|value|measured)\s*[:=]?\s*)?` + valuePat + `\s*(` + unitPat + `)?`)

	// NAME: VALUE [UNIT] [FLAG] (range: RANGE [UNIT])
	valueFirstPattern = regexp.MustCompile(`^\s*(` + namePat + `)\s*[:=]?\s*` + valuePat + `\s*(` + unitPat + `)?\s*` +
		`(?:(` + flagPat + `)\s*)?[(\[,;]?\s*` + rangeKeywordPat + `\s*[:=]?\s*(` + rangePat + `)\s*(` + unitPat + `)?`)

	// NAME: VALUE [UNIT] [FLAG]
	delimiterPairPattern = regexp.MustCompile(`(` + namePat + `)\s*[:=]\s*` + valuePat +
		`(?:\s*(` + unitPat + `))?(?:\s+(` + flagPat + `)\b)?`)

	contextWordPattern = regexp.MustCompile(`(?i)\b(?:tests?|results?|range|levels?|values?|reference|normal|measured|serum|plasma|blood|panel|analyte)\b`)

	trailingRangePattern = regexp.MustCompile(`^\s*[(\[]?\s*(?:` + rangeKeywordPat + `\s*[:=]?\s*)?(` + rangePat + `)`)

	nameSegmentSplit = regexp.MustCompile(`\s*(?:;|\||,\s|\.\s)\s*`)
)

// reading is one measurement as a strategy saw it, before it becomes a candidate.
type reading struct {
	name       string
	value      float64
	comparator string
	unit       string
	flag       string
	rng        *domain.ReferenceRange
	col        int
}

func (e *Env) biomarker(s domain.Strategy, delta float64, line Line, r reading) (domain.BiomarkerCandidate, bool) {
	name := e.Names.Clean(r.name)
	if !e.Names.Basic(name) {
		return domain.BiomarkerCandidate{}, false
	}
	return domain.BiomarkerCandidate{
		Name:       name,
		Value:      r.value,
		Comparator: normalizeComparator(r.comparator),
		Unit:       strings.TrimSpace(r.unit),
		Range:      r.rng,
		Status:     statusOf(r.flag, r.value, r.rng),
		Confidence: e.confidence(s, delta),
		Strategy:   s,
		Sources:    []domain.Strategy{s},
		Snippet:    snippet(line.Text),
		Offset:     line.Offset + r.col,
	}, true
}

// chooseName picks the part of a matched name that names the analyte. Regexes anchored on a
// delimiter can swallow leading prose ("Results for John, Glucose"), so the shortest valid
// suffix that the vocabulary knows is preferred, then the whole name.
func (e *Env) chooseName(raw string) (string, bool) {
	name := e.Names.Clean(raw)
	segments := nameSegmentSplit.Split(name, -1)

	var fallback string
	for i := len(segments) - 1; i >= 0; i-- {
		suffix := e.Names.Clean(strings.Join(segments[i:], ", "))
		if !e.Names.Valid(suffix) {
			continue
		}
		if e.Vocab.ResolveBiomarker(suffix).Matched() {
			return suffix, true
		}
		if fallback == "" {
			fallback = suffix
		}
	}
	if e.Names.Valid(name) {
		return name, true
	}
	return fallback, fallback != ""
}

// backtrackName guesses a name from the words before a value, stopping at numbers and
// column breaks and dropping stopwords at either end.
func (e *Env) backtrackName(segment string, limit int) string {
	if i := strings.LastIndexAny(segment, ";|\t"); i >= 0 {
		segment = segment[i+1:]
	}
	words := strings.Fields(segment)
	start := len(words)
	for start > 0 && len(words)-start < limit && hasLetter(words[start-1]) {
		start--
	}
	return e.Names.Clean(strings.Join(e.Names.TrimStopwords(words[start:]), " "))
}

// valueBoundary reports whether the text after a bare value ends the number cleanly. Dates,
// times and ratios continue with a separator and are not values.
func valueBoundary(line string, end int) bool {
	if end >= len(line) {
		return true
	}
	c := line[end]
	return !isWordByte(c) && c != '/' && c != ':' && c != '.' && c != '-'
}

// valueStart reports whether a value at pos is not glued to the word before it.
func valueStart(line string, pos int) bool {
	return pos == 0 || !isWordByte(line[pos-1]) && line[pos-1] != '.'
}

func unitBoundary(line string, start, end int) bool {
	return start >= 0 && (end >= len(line) || !isWordByte(line[end]) || !isWordByte(line[end-1]))
}

// tableStructure reads vendor row grammars and column-aligned rows. One row yields at most
// one candidate: the most specific grammar that matches wins.
type tableStructure struct{ env *Env }

func (s *tableStructure) Strategy() domain.Strategy { return domain.StrategyTableStructure }

func (s *tableStructure) Generate(doc *Document) Candidates {
	var out Candidates
	for _, line := range doc.Lines {
		if c, ok := s.questRow(line); ok {
			out.Biomarkers = append(out.Biomarkers, c)
		} else if c, ok := s.labcorpRow(line); ok {
			out.Biomarkers = append(out.Biomarkers, c)
		} else if c, ok := s.columnRow(line); ok {
			out.Biomarkers = append(out.Biomarkers, c)
		}
	}
	return out
}

func (s *tableStructure) questRow(line Line) (domain.BiomarkerCandidate, bool) {
	m := questRowPattern.FindStringSubmatchIndex(line.Text)
	if m == nil {
		return domain.BiomarkerCandidate{}, false
	}
	t := line.Text
	value, ok := parseNumber(t[m[6]:m[7]])
	if !ok {
		return domain.BiomarkerCandidate{}, false
	}
	return s.env.biomarker(s.Strategy(), questRowDelta, line, reading{
		name:       t[m[2]:m[3]],
		value:      value,
		comparator: group(t, m, 2),
		flag:       group(t, m, 4),
		rng:        parseRange(t[m[10]:m[11]]),
		unit:       t[m[12]:m[13]],
		col:        m[2],
	})
}

func (s *tableStructure) labcorpRow(line Line) (domain.BiomarkerCandidate, bool) {
	m := labcorpRowPattern.FindStringSubmatchIndex(line.Text)
	if m == nil {
		return domain.BiomarkerCandidate{}, false
	}
	t := line.Text
	value, ok := parseNumber(t[m[6]:m[7]])
	if !ok {
		return domain.BiomarkerCandidate{}, false
	}
	return s.env.biomarker(s.Strategy(), labcorpRowDelta, line, reading{
		name:       t[m[2]:m[3]],
		value:      value,
		comparator: group(t, m, 2),
		flag:       group(t, m, 4),
		unit:       t[m[10]:m[11]],
		rng:        parseRange(t[m[12]:m[13]]),
		col:        m[2],
	})
}

// columnRow reads rows whose cells are separated by tabs, pipes or wide gaps: a name cell,
// a value cell (optionally with a flag) and at least a unit or a range among the rest.
func (s *tableStructure) columnRow(line Line) (domain.BiomarkerCandidate, bool) {
	cells := splitColumns(line.Text)
	if len(cells) < 3 || !hasLetter(cells[0]) {
		return domain.BiomarkerCandidate{}, false
	}
	vm := valueCellPattern.FindStringSubmatch(cells[1])
	if vm == nil {
		return domain.BiomarkerCandidate{}, false
	}
	value, ok := parseNumber(vm[2])
	if !ok {
		return domain.BiomarkerCandidate{}, false
	}

	r := reading{name: cells[0], value: value, comparator: vm[1], flag: vm[3], col: strings.Index(line.Text, cells[0])}
	for _, c := range cells[2:] {
		switch {
		case r.flag == "" && flagCellPattern.MatchString(c):
			r.flag = c
		case r.rng == nil && rangeCellPattern.MatchString(c):
			rm := rangeCellPattern.FindStringSubmatch(c)
			r.rng = parseRange(rm[1])
			if r.unit == "" {
				r.unit = rm[2]
			}
		case r.unit == "" && units.Known(c):
			r.unit = c
		}
	}
	if r.unit == "" && r.rng == nil {
		return domain.BiomarkerCandidate{}, false
	}
	return s.env.biomarker(s.Strategy(), columnRowDelta, line, r)
}

// labeledRange reads a name with an explicitly labelled reference range, in either order
// relative to the value.
type labeledRange struct{ env *Env }

func (s *labeledRange) Strategy() domain.Strategy { return domain.StrategyLabeledRange }

func (s *labeledRange) Generate(doc *Document) Candidates {
	var out Candidates
	for _, line := range doc.Lines {
		if c, ok := s.valueFirst(line); ok {
			out.Biomarkers = append(out.Biomarkers, c)
		} else if c, ok := s.rangeFirst(line); ok {
			out.Biomarkers = append(out.Biomarkers, c)
		}
	}
	return out
}

func (s *labeledRange) valueFirst(line Line) (domain.BiomarkerCandidate, bool) {
	t := line.Text
	m := valueFirstPattern.FindStringSubmatchIndex(t)
	if m == nil || !valueStart(t, m[6]) {
		return domain.BiomarkerCandidate{}, false
	}
	value, ok := parseNumber(t[m[6]:m[7]])
	if !ok {
		return domain.BiomarkerCandidate{}, false
	}
	name, ok := s.env.chooseName(t[m[2]:m[3]])
	if !ok {
		return domain.BiomarkerCandidate{}, false
	}
	unit := group(t, m, 4)
	if unit == "" {
		unit = group(t, m, 7)
	}
	return s.env.biomarker(s.Strategy(), 0, line, reading{
		name:       name,
		value:      value,
		comparator: group(t, m, 2),
		unit:       unit,
		flag:       group(t, m, 5),
		rng:        parseRange(t[m[12]:m[13]]),
		col:        m[2],
	})
}

func (s *labeledRange) rangeFirst(line Line) (domain.BiomarkerCandidate, bool) {
	t := line.Text
	m := rangeFirstPattern.FindStringSubmatchIndex(t)
	if m == nil || !valueStart(t, m[10]) || !valueBoundary(t, m[11]) && m[12] < 0 {
		return domain.BiomarkerCandidate{}, false
	}
	value, ok := parseNumber(t[m[10]:m[11]])
	if !ok {
		return domain.BiomarkerCandidate{}, false
	}
	name, ok := s.env.chooseName(t[m[2]:m[3]])
	if !ok {
		return domain.BiomarkerCandidate{}, false
	}
	unit := group(t, m, 6)
	if unit == "" {
		unit = group(t, m, 3)
	}
	return s.env.biomarker(s.Strategy(), 0, line, reading{
		name:       name,
		value:      value,
		comparator: group(t, m, 4),
		unit:       unit,
		rng:        parseRange(t[m[4]:m[5]]),
		col:        m[2],
	})
}

// delimiterPair reads "name: value" pairs, several per line, with or without a unit.
type delimiterPair struct{ env *Env }

func (s *delimiterPair) Strategy() domain.Strategy { return domain.StrategyDelimiterPair }

func (s *delimiterPair) Generate(doc *Document) Candidates {
	var out Candidates
	for _, line := range doc.Lines {
		t := line.Text
		for _, m := range delimiterPairPattern.FindAllStringSubmatchIndex(t, -1) {
			numStart, numEnd := m[6], m[7]
			unit := group(t, m, 4)
			if unit != "" && !unitBoundary(t, m[8], m[9]) {
				unit = ""
			}
			if unit == "" && !valueBoundary(t, numEnd) {
				continue
			}
			value, ok := parseNumber(t[numStart:numEnd])
			if !ok {
				continue
			}
			name, ok := s.env.chooseName(t[m[2]:m[3]])
			if !ok {
				continue
			}
			c, ok := s.env.biomarker(s.Strategy(), 0, line, reading{
				name:       name,
				value:      value,
				comparator: group(t, m, 2),
				unit:       unit,
				flag:       group(t, m, 5),
				rng:        trailingRange(t[m[1]:]),
				col:        m[2],
			})
			if ok {
				out.Biomarkers = append(out.Biomarkers, c)
			}
		}
	}
	return out
}

// unitAnchored reads number-plus-unit occurrences on lines that carry lab vocabulary
// ("result", "range", "level") within the configured number of neighbouring lines.
type unitAnchored struct{ env *Env }

func (s *unitAnchored) Strategy() domain.Strategy { return domain.StrategyUnitAnchored }

const unitAnchoredNameWords = 6

func (s *unitAnchored) Generate(doc *Document) Candidates {
	var out Candidates
	for _, line := range doc.Lines {
		found := findMeasurements(line.Text)
		if len(found) == 0 || !contextWordPattern.MatchString(doc.Neighbourhood(line.Index, s.env.Config.ContextLines)) {
			continue
		}
		out.Biomarkers = append(out.Biomarkers, s.env.backtracked(s.Strategy(), line, found, unitAnchoredNameWords)...)
	}
	return out
}

// freeForm reads any number-plus-unit occurrence and takes the few words before it as the
// name.
type freeForm struct{ env *Env }

func (s *freeForm) Strategy() domain.Strategy { return domain.StrategyFreeForm }

func (s *freeForm) Generate(doc *Document) Candidates {
	var out Candidates
	for _, line := range doc.Lines {
		found := findMeasurements(line.Text)
		out.Biomarkers = append(out.Biomarkers, s.env.backtracked(s.Strategy(), line, found, s.env.Config.MaxBacktrackWords)...)
	}
	return out
}

func (e *Env) backtracked(strategy domain.Strategy, line Line, found []measurement, words int) []domain.BiomarkerCandidate {
	var out []domain.BiomarkerCandidate
	prevEnd := 0
	for _, m := range found {
		name := e.backtrackName(line.Text[prevEnd:m.start], words)
		prevEnd = m.end
		if !e.Names.Valid(name) {
			continue
		}
		c, ok := e.biomarker(strategy, 0, line, reading{
			name:       name,
			value:      m.value,
			comparator: m.comparator,
			unit:       m.unit,
			rng:        trailingRange(line.Text[m.end:]),
			col:        m.start,
		})
		if ok {
			out = append(out, c)
		}
	}
	return out
}

// trailingRange reads a reference range printed right after a value.
func trailingRange(rest string) *domain.ReferenceRange {
	m := trailingRangePattern.FindStringSubmatch(rest)
	if m == nil {
		return nil
	}
	return parseRange(m[1])
}

// group returns submatch n of an index match, or "" when it did not participate.
func group(s string, m []int, n int) string {
	if 2*n+1 >= len(m) || m[2*n] < 0 {
		return ""
	}
	return s[m[2*n]:m[2*n+1]]
}
