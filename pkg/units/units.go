// Package units maps the many spellings laboratories use for measurement units onto one
// canonical spelling per unit.
package units

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Unit is a canonical unit with the spellings that map onto it.
type Unit struct {
	Canonical string
	Variants  []string
}

// table is the static unit vocabulary. Variants are matched after key folding, so only
// spellings that differ beyond case, spacing and the micro sign need to be listed.
var table = []Unit{
	{Canonical: "mg/dL", Variants: []string{"mg/dl", "mg/100ml", "mg per dl", "mg%"}},
	{Canonical: "mg/L", Variants: []string{"mg/l"}},
	{Canonical: "g/dL", Variants: []string{"g/dl", "gm/dl", "gr/dl"}},
	{Canonical: "g/L", Variants: []string{"g/l"}},
	{Canonical: "mmol/L", Variants: []string{"mmol/l", "mmol"}},
	{Canonical: "µmol/L", Variants: []string{"umol/l", "μmol/l", "µmol/l", "micromol/l"}},
	{Canonical: "nmol/L", Variants: []string{"nmol/l"}},
	{Canonical: "pmol/L", Variants: []string{"pmol/l"}},
	{Canonical: "µg/dL", Variants: []string{"ug/dl", "mcg/dl", "μg/dl", "µg/dl"}},
	{Canonical: "µg/L", Variants: []string{"ug/l", "mcg/l", "μg/l", "µg/l"}},
	{Canonical: "ng/mL", Variants: []string{"ng/ml"}},
	{Canonical: "ng/dL", Variants: []string{"ng/dl"}},
	{Canonical: "pg/mL", Variants: []string{"pg/ml"}},
	{Canonical: "pg", Variants: []string{"pg", "picogram", "picograms"}},
	{Canonical: "fL", Variants: []string{"fl", "femtoliter", "femtoliters", "µm3", "um3"}},
	{Canonical: "%", Variants: []string{"%", "percent", "pct"}},
	{Canonical: "U/L", Variants: []string{"u/l", "units/l"}},
	{Canonical: "IU/L", Variants: []string{"iu/l"}},
	{Canonical: "mIU/L", Variants: []string{"miu/l"}},
	{Canonical: "mIU/mL", Variants: []string{"miu/ml"}},
	{Canonical: "µIU/mL", Variants: []string{"uiu/ml", "μiu/ml", "µiu/ml", "microiu/ml", "mu/l"}},
	{Canonical: "IU/mL", Variants: []string{"iu/ml"}},
	{Canonical: "mEq/L", Variants: []string{"meq/l"}},
	{Canonical: "mg/g", Variants: []string{"mg/g", "mg/gcreat"}},
	{Canonical: "mg", Variants: []string{"mg", "milligrams"}},
	{Canonical: "IU", Variants: []string{"iu"}},
	{Canonical: "10^3/µL", Variants: []string{
		"10^3/ul", "10^3/μl", "10^3/µl", "x10^3/ul", "x10e3/ul", "10e3/ul", "k/ul", "k/μl", "k/µl",
		"thou/ul", "thous/ul", "10*3/ul", "x10(3)/ul", "10^9/l", "x10^9/l", "10e9/l",
	}},
	{Canonical: "10^6/µL", Variants: []string{
		"10^6/ul", "10^6/μl", "10^6/µl", "x10^6/ul", "x10e6/ul", "10e6/ul", "m/ul", "m/μl", "m/µl",
		"mil/ul", "10*6/ul", "x10(6)/ul", "10^12/l", "x10^12/l", "10e12/l",
	}},
	{Canonical: "cells/µL", Variants: []string{"cells/ul", "cells/μl", "cells/µl", "cells/mcl", "/ul", "/μl", "/µl"}},
	{Canonical: "mm/h", Variants: []string{"mm/h", "mm/hr"}},
	{Canonical: "mL/min/1.73m²", Variants: []string{"ml/min/1.73m2", "ml/min/1.73m²", "ml/min/1.73", "ml/min"}},
	{Canonical: "sec", Variants: []string{"sec", "s", "seconds"}},
	{Canonical: "ratio", Variants: []string{"ratio"}},
	{Canonical: "mOsm/kg", Variants: []string{"mosm/kg"}},
}

var (
	byKey    map[string]string
	tokenSet []string
	pattern  *regexp.Regexp
)

func init() {
	byKey = make(map[string]string)
	seen := make(map[string]bool)
	for _, u := range table {
		for _, spelling := range append([]string{u.Canonical}, u.Variants...) {
			k := Key(spelling)
			if _, dup := byKey[k]; !dup {
				byKey[k] = u.Canonical
			}
			if !seen[spelling] {
				seen[spelling] = true
				tokenSet = append(tokenSet, spelling)
			}
		}
	}
	// Longest first so alternation prefers "mg/dL" over "mg".
	sort.SliceStable(tokenSet, func(i, j int) bool {
		if len(tokenSet[i]) != len(tokenSet[j]) {
			return len(tokenSet[i]) > len(tokenSet[j])
		}
		return tokenSet[i] < tokenSet[j]
	})
	quoted := make([]string, 0, len(tokenSet))
	for _, t := range tokenSet {
		if t == "s" {
			// a bare "s" would match inside ordinary prose
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(t))
	}
	pattern = regexp.MustCompile(`(?i:` + strings.Join(quoted, "|") + `)`)
}

// Key folds a unit spelling to its lookup key: NFKC, lower case, no whitespace, and the
// micro sign written as "u".
func Key(unit string) string {
	s := strings.ToLower(norm.NFKC.String(strings.TrimSpace(unit)))
	s = strings.NewReplacer("μ", "u", "µ", "u", "×", "x", "²", "2", "³", "3").Replace(s)
	return strings.Join(strings.Fields(s), "")
}

// Normalize returns the canonical spelling of unit. Unknown units are returned trimmed
// but otherwise unchanged.
func Normalize(unit string) string {
	if c, ok := byKey[Key(unit)]; ok {
		return c
	}
	return strings.TrimSpace(unit)
}

// Known reports whether unit is in the vocabulary.
func Known(unit string) bool {
	_, ok := byKey[Key(unit)]
	return ok
}

// Pattern returns a case-insensitive regular expression source matching any known unit
// spelling, suitable for embedding in larger patterns.
func Pattern() string {
	return pattern.String()
}
