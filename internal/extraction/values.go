package extraction

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/labextract-server/internal/domain"
	"github.com/labextract-server/pkg/units"
)

// Pattern fragments shared by the biomarker strategies.
const (
	numberPat     = `(?:\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?|\.\d+)`
	comparatorPat = `(?:<=|>=|≤|≥|<|>)`
	rangePat      = `(?:` + numberPat + `\s*(?:-|–|—|to)\s*` + numberPat + `|` + comparatorPat + `\s*` + numberPat + `)`
	flagPat       = `(?i:HH|LL|HIGH|LOW|HI|LO|CRITICAL|CRIT|NORMAL|H|L|N|\*|!)`
	namePat       = `[A-Za-z][A-Za-z0-9 ,()/'%+.\-]*?[A-Za-z0-9)%]`

	// comparator and signed number as two groups
	valuePat = `(` + comparatorPat + `)?\s*(-?` + numberPat + `)`
)

var (
	unitPat = units.Pattern()

	boundedRangePattern  = regexp.MustCompile(`^(` + numberPat + `)\s*(?:-|–|—|to)\s*(` + numberPat + `)$`)
	oneSidedRangePattern = regexp.MustCompile(`^(` + comparatorPat + `)\s*(` + numberPat + `)$`)
	rangeCellPattern     = regexp.MustCompile(`^(` + rangePat + `)\s*(` + unitPat + `)?$`)
	valueCellPattern     = regexp.MustCompile(`^` + valuePat + `(?:\s+(` + flagPat + `))?$`)
	flagCellPattern      = regexp.MustCompile(`^` + flagPat + `$`)
	columnSplitPattern   = regexp.MustCompile(`\t+|\s{2,}|\s*\|\s*`)
)

// parseNumber reads a printed number, thousands separators included. Non-finite results
// are rejected.
func parseNumber(raw string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// normalizeComparator maps the typographic comparators to their ASCII spelling.
func normalizeComparator(c string) string {
	switch strings.TrimSpace(c) {
	case "≤":
		return "<="
	case "≥":
		return ">="
	}
	return strings.TrimSpace(c)
}

// parseRange reads "65-99", "65 to 99", "<200" or ">=60". It returns nil for anything else.
func parseRange(raw string) *domain.ReferenceRange {
	s := strings.TrimSpace(raw)
	if m := boundedRangePattern.FindStringSubmatch(s); m != nil {
		lo, ok1 := parseNumber(m[1])
		hi, ok2 := parseNumber(m[2])
		if !ok1 || !ok2 || lo > hi {
			return nil
		}
		return &domain.ReferenceRange{Low: &lo, High: &hi, Text: s}
	}
	if m := oneSidedRangePattern.FindStringSubmatch(s); m != nil {
		v, ok := parseNumber(m[2])
		if !ok {
			return nil
		}
		switch normalizeComparator(m[1]) {
		case "<", "<=":
			return &domain.ReferenceRange{High: &v, Text: s}
		default:
			return &domain.ReferenceRange{Low: &v, Text: s}
		}
	}
	return nil
}

// parseFlag maps a lab's result flag to a status.
func parseFlag(raw string) domain.BiomarkerStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "H", "HI", "HIGH":
		return domain.StatusHigh
	case "L", "LO", "LOW":
		return domain.StatusLow
	case "HH", "LL", "CRIT", "CRITICAL", "!", "*":
		return domain.StatusCritical
	case "N", "NORMAL":
		return domain.StatusNormal
	}
	return domain.StatusNone
}

// statusOf prefers the printed flag and falls back to the reference range.
func statusOf(flag string, value float64, rng *domain.ReferenceRange) domain.BiomarkerStatus {
	if s := parseFlag(flag); s != domain.StatusNone {
		return s
	}
	return rng.Classify(value)
}

// splitColumns breaks a row on tabs, pipes or runs of two or more spaces.
func splitColumns(line string) []string {
	var cells []string
	for _, c := range columnSplitPattern.Split(strings.TrimSpace(line), -1) {
		if c = strings.TrimSpace(c); c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}

func hasLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	return strings.IndexAny(s, "0123456789") >= 0
}

func clampConfidence(c float64) float64 {
	return math.Max(0, math.Min(100, c))
}
