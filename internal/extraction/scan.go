package extraction

import (
	"regexp"
	"strings"
)

var measurementPattern = regexp.MustCompile(`(?:(` + comparatorPat + `)\s*)?(` + numberPat + `)\s*(` + unitPat + `)`)

// measurement is a number immediately followed by a known unit inside one line.
type measurement struct {
	start      int // first byte of the value, sign or comparator included
	end        int // byte after the unit
	comparator string
	value      float64
	unit       string
}

// findMeasurements returns the standalone number-plus-unit occurrences in line. Upper
// bounds of printed ranges ("65-99 mg/dL") and numbers glued to words ("B12") are skipped.
func findMeasurements(line string) []measurement {
	var out []measurement
	for _, m := range measurementPattern.FindAllStringSubmatchIndex(line, -1) {
		numStart, numEnd := m[4], m[5]
		unitStart, unitEnd := m[6], m[7]
		start := m[0]

		if unitEnd < len(line) && isWordByte(line[unitEnd]) && isWordByte(line[unitEnd-1]) {
			continue
		}
		if m[2] < 0 && numStart > 0 {
			prev := line[numStart-1]
			if isWordByte(prev) || prev == '.' || prev == ',' || prev == '/' {
				continue
			}
		}
		if rangeUpperBound(line, start) {
			continue
		}

		value, ok := parseNumber(line[numStart:numEnd])
		if !ok {
			continue
		}
		if m[2] < 0 && negativeSign(line, numStart) {
			value = -value
			start--
		}

		var cmp string
		if m[2] >= 0 {
			cmp = normalizeComparator(line[m[2]:m[3]])
		}
		out = append(out, measurement{
			start:      start,
			end:        unitEnd,
			comparator: cmp,
			value:      value,
			unit:       line[unitStart:unitEnd],
		})
	}
	return out
}

// rangeUpperBound reports whether the number at pos is the second half of "a-b" or "a to b".
func rangeUpperBound(line string, pos int) bool {
	before := strings.TrimRight(line[:pos], " \t")
	switch {
	case strings.HasSuffix(before, "-"), strings.HasSuffix(before, "–"), strings.HasSuffix(before, "—"):
		_, size := lastRune(before)
		rest := strings.TrimRight(before[:len(before)-size], " \t")
		return rest != "" && isDigitByte(rest[len(rest)-1])
	case strings.HasSuffix(strings.ToLower(before), " to"):
		rest := strings.TrimRight(before[:len(before)-3], " \t")
		return rest != "" && isDigitByte(rest[len(rest)-1])
	}
	return false
}

// negativeSign reports a minus sign directly before the number that is not a range dash.
func negativeSign(line string, numStart int) bool {
	if numStart == 0 || line[numStart-1] != '-' {
		return false
	}
	if numStart == 1 {
		return true
	}
	prev := line[numStart-2]
	return prev == ' ' || prev == '\t' || prev == ':' || prev == '='
}

func lastRune(s string) (rune, int) {
	r := []rune(s)
	last := r[len(r)-1]
	return last, len(string(last))
}

func isWordByte(b byte) bool {
	return b == '_' || isDigitByte(b) || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigitByte(b byte) bool {
	return b >= '0' && b <= '9'
}
