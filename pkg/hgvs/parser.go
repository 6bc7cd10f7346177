// Package hgvs parses the mutation notations that consumer and clinical genetic reports
// print next to a gene symbol: HGVS coding (c.665C>T), protein (p.Ala222Val), genomic
// (g.11796321G>A) and the legacy shorthand labs still use (C677T, A222V).
package hgvs

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/labextract-server/internal/domain"
)

// Kind is the notation family a mutation was written in.
type Kind string

const (
	KindGenomic         Kind = "genomic"
	KindCoding          Kind = "coding"
	KindProtein         Kind = "protein"
	KindLegacy          Kind = "legacy"            // C677T
	KindLegacyProtein   Kind = "legacy_protein"    // A222V
	KindProteinNoPrefix Kind = "protein_shorthand" // Ala222Val
)

// Notation patterns, anchored. Reference sequence prefixes are optional because reports
// rarely print them.
var (
	genomicSubstitutionPattern = regexp.MustCompile(`^(?:(NC_\d+(?:\.\d+)?|chr[0-9XYM]{1,2}):)?g\.(\d+)([ACGT])>([ACGT])$`)
	codingSubstitutionPattern  = regexp.MustCompile(`^(?:(NM_\d+(?:\.\d+)?):)?c\.([*\-]?\d+(?:[+\-]\d+)?)([ACGT])>([ACGT])$`)
	bareSubstitutionPattern    = regexp.MustCompile(`^([*\-]?\d+)([ACGT])>([ACGT])$`)
	proteinSubstitutionPattern = regexp.MustCompile(`^(?:(NP_\d+(?:\.\d+)?):)?p\.\(?([A-Z](?:[a-z]{2})?)(\d+)([A-Z](?:[a-z]{2})?|\*|=)\)?$`)
	proteinShorthandPattern    = regexp.MustCompile(`^([A-Z][a-z]{2})(\d+)([A-Z][a-z]{2}|\*)$`)
	legacyNucleotidePattern    = regexp.MustCompile(`^([ACGT])(-?\d+)([ACGT])$`)
	legacyProteinPattern       = regexp.MustCompile(`^([ACDEFGHIKLMNPQRSTVWY])(\d+)([ACDEFGHIKLMNPQRSTVWYX*])$`)

	// notationScanPattern finds candidate notations inside free text; each hit is confirmed
	// with Parse.
	notationScanPattern = regexp.MustCompile(
		`(?:\b(?:NC_\d+(?:\.\d+)?:|NM_\d+(?:\.\d+)?:|NP_\d+(?:\.\d+)?:)?[cgp]\.\(?[*\-]?[A-Za-z]{0,3}\d+(?:[+\-]\d+)?[A-Za-z*=>]{1,7}\)?)` +
			`|(?:\b[A-Z][a-z]{2}\d{1,5}(?:[A-Z][a-z]{2})\b)` +
			`|(?:\b[ACGT]-?\d{1,6}[ACGT]\b)` +
			`|(?:\b[ACDEFGHIKLMNPQRSTVWY]\d{1,5}[ACDEFGHIKLMNPQRSTVWYX]\b)`)

	// Chromosome spellings for normalisation
	chromosomePatterns = map[string]string{
		"chr1": "1", "chr2": "2", "chr3": "3", "chr4": "4", "chr5": "5",
		"chr6": "6", "chr7": "7", "chr8": "8", "chr9": "9", "chr10": "10",
		"chr11": "11", "chr12": "12", "chr13": "13", "chr14": "14", "chr15": "15",
		"chr16": "16", "chr17": "17", "chr18": "18", "chr19": "19", "chr20": "20",
		"chr21": "21", "chr22": "22", "chrX": "X", "chrY": "Y", "chrM": "M",
	}

	// Three-letter to one-letter amino acid codes
	aminoAcidCodes = map[string]string{
		"Ala": "A", "Arg": "R", "Asn": "N", "Asp": "D", "Cys": "C",
		"Gln": "Q", "Glu": "E", "Gly": "G", "His": "H", "Ile": "I",
		"Leu": "L", "Lys": "K", "Met": "M", "Phe": "F", "Pro": "P",
		"Ser": "S", "Thr": "T", "Trp": "W", "Tyr": "Y", "Val": "V",
		"Ter": "*", "*": "*", "X": "*",
	}

	// One-letter codes accepted after "p."
	oneLetterCodes = "ACDEFGHIKLMNPQRSTVWY"
)

// Notation is a parsed single-position substitution.
type Notation struct {
	Original   string `json:"original"`
	Kind       Kind   `json:"kind"`
	Reference  string `json:"reference,omitempty"` // NM_/NP_/NC_ accession when printed
	Chromosome string `json:"chromosome,omitempty"`
	Position   string `json:"position"`
	Ref        string `json:"ref"` // nucleotide, or one-letter amino acid
	Alt        string `json:"alt"`
}

// Parse parses one notation. Surrounding whitespace is ignored.
func Parse(input string) (*Notation, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return nil, fmt.Errorf("parsing notation: %w", domain.NewValidationError("notation", "notation cannot be empty", input))
	}

	n := &Notation{Original: s}

	if m := genomicSubstitutionPattern.FindStringSubmatch(s); m != nil {
		n.Kind = KindGenomic
		n.Reference = m[1]
		n.Chromosome = normalizeChromosome(m[1])
		n.Position, n.Ref, n.Alt = m[2], m[3], m[4]
		return n, nil
	}

	if m := codingSubstitutionPattern.FindStringSubmatch(s); m != nil {
		n.Kind = KindCoding
		n.Reference = m[1]
		n.Position, n.Ref, n.Alt = m[2], m[3], m[4]
		return n, nil
	}

	if m := bareSubstitutionPattern.FindStringSubmatch(s); m != nil {
		n.Kind = KindCoding
		n.Position, n.Ref, n.Alt = m[1], m[2], m[3]
		return n, nil
	}

	if m := proteinSubstitutionPattern.FindStringSubmatch(s); m != nil {
		ref, alt, err := aminoAcidPair(m[2], m[4])
		if err != nil {
			return nil, fmt.Errorf("parsing notation %q: %w", input, err)
		}
		n.Kind = KindProtein
		n.Reference = m[1]
		n.Position, n.Ref, n.Alt = m[3], ref, alt
		return n, nil
	}

	if m := proteinShorthandPattern.FindStringSubmatch(s); m != nil {
		ref, alt, err := aminoAcidPair(m[1], m[3])
		if err != nil {
			return nil, fmt.Errorf("parsing notation %q: %w", input, err)
		}
		n.Kind = KindProteinNoPrefix
		n.Position, n.Ref, n.Alt = m[2], ref, alt
		return n, nil
	}

	// Nucleotide shorthand wins over one-letter protein shorthand: C677T reads as a
	// nucleotide change even though C and T are also amino acid codes.
	if m := legacyNucleotidePattern.FindStringSubmatch(s); m != nil {
		n.Kind = KindLegacy
		n.Position, n.Ref, n.Alt = m[2], m[1], m[3]
		return n, nil
	}

	if m := legacyProteinPattern.FindStringSubmatch(s); m != nil {
		n.Kind = KindLegacyProtein
		alt := m[3]
		if alt == "X" {
			alt = "*"
		}
		n.Position, n.Ref, n.Alt = m[2], m[1], alt
		return n, nil
	}

	return nil, fmt.Errorf("parsing notation: %w", domain.NewValidationError("notation", "unrecognized mutation notation", input))
}

// IsProtein reports whether the notation describes an amino acid change.
func (n *Notation) IsProtein() bool {
	return n.Kind == KindProtein || n.Kind == KindProteinNoPrefix || n.Kind == KindLegacyProtein
}

// IsNucleotide reports whether Ref and Alt are single nucleotides.
func (n *Notation) IsNucleotide() bool {
	return !n.IsProtein() && len(n.Ref) == 1 && len(n.Alt) == 1
}

// Key is a spelling-independent form used to compare notations: Ala222Val, p.Ala222Val
// and A222V share a key.
func (n *Notation) Key() string {
	switch {
	case n.IsProtein():
		return "p." + n.Ref + n.Position + n.Alt
	case n.Kind == KindCoding:
		return "c." + n.Position + n.Ref + ">" + n.Alt
	case n.Kind == KindGenomic:
		return "g." + n.Position + n.Ref + ">" + n.Alt
	}
	return n.Ref + n.Position + n.Alt
}

// String renders the notation in the spelling reports most often use.
func (n *Notation) String() string {
	switch n.Kind {
	case KindProtein, KindProteinNoPrefix:
		return "p." + threeLetter(n.Ref) + n.Position + threeLetter(n.Alt)
	case KindLegacyProtein, KindLegacy:
		return n.Ref + n.Position + n.Alt
	}
	return n.Key()
}

// Found is a notation located in free text.
type Found struct {
	Notation *Notation
	Start    int
	End      int
}

// FindAll returns every parseable notation in text, in order of appearance.
func FindAll(text string) []Found {
	var out []Found
	for _, loc := range notationScanPattern.FindAllStringIndex(text, -1) {
		raw := strings.TrimRight(text[loc[0]:loc[1]], ").,;")
		n, err := Parse(raw)
		if err != nil {
			continue
		}
		out = append(out, Found{Notation: n, Start: loc[0], End: loc[0] + len(raw)})
	}
	return out
}

// KeyOf parses s and returns its Key, or a folded copy of s when it does not parse.
func KeyOf(s string) string {
	if n, err := Parse(s); err == nil {
		return n.Key()
	}
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

func aminoAcidPair(ref, alt string) (string, string, error) {
	r, ok := aminoAcid(ref)
	if !ok {
		return "", "", domain.NewValidationError("notation", "unknown amino acid", ref)
	}
	if alt == "=" {
		return r, r, nil
	}
	a, ok := aminoAcid(alt)
	if !ok {
		return "", "", domain.NewValidationError("notation", "unknown amino acid", alt)
	}
	return r, a, nil
}

// aminoAcid maps a three- or one-letter code to its one-letter form.
func aminoAcid(code string) (string, bool) {
	if len(code) == 1 && strings.Contains(oneLetterCodes, code) {
		return code, true
	}
	one, ok := aminoAcidCodes[code]
	return one, ok
}

func threeLetter(one string) string {
	for three, o := range aminoAcidCodes {
		if o == one && len(three) == 3 && three != "Ter" {
			return three
		}
	}
	if one == "*" {
		return "Ter"
	}
	return one
}

func normalizeChromosome(ref string) string {
	if c, ok := chromosomePatterns[ref]; ok {
		return c
	}
	return ""
}
