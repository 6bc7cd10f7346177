// Package vocabulary holds the canonical biomarker and genetic-variant vocabularies and
// resolves the free-text names found on lab reports to their canonical keys.
//
// A Vocabulary is built once and never mutated, so one value can be shared by every
// concurrent extraction.
package vocabulary

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/labextract-server/pkg/hgvs"
)

// Kind selects one of the two vocabularies.
type Kind string

const (
	KindBiomarker Kind = "biomarker"
	KindVariant   Kind = "variant"
)

// ParseKind accepts the user-facing spellings of a vocabulary kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "biomarker", "biomarkers", "blood":
		return KindBiomarker, nil
	case "variant", "variants", "genetic", "snp":
		return KindVariant, nil
	}
	return "", fmt.Errorf("unknown vocabulary kind %q", s)
}

// Method records how a name was matched.
type Method string

const (
	MethodExact       Method = "exact"
	MethodContainment Method = "containment"
	MethodFuzzy       Method = "fuzzy"
	MethodIdentifier  Method = "identifier"
	MethodNotation    Method = "notation"
	MethodGene        Method = "gene"
	MethodNone        Method = "none"
)

// Match is the outcome of resolving one name.
type Match struct {
	Key    string `json:"key,omitempty"`
	Name   string `json:"name,omitempty"`
	Method Method `json:"method"`
}

// Matched reports whether a canonical entry was found.
func (m Match) Matched() bool {
	return m.Method != MethodNone && m.Key != ""
}

var (
	rsIDPattern = regexp.MustCompile(`(?i)^rs\d+$`)

	// Qualifiers that do not change which analyte a name refers to.
	strippedQualifiers = map[string]bool{"total": true, "serum": true, "plasma": true, "blood": true}

	// Words that name a different analyte, mapped to the stem an alias must share.
	distinguishingWords = map[string]string{"ratio": "ratio", "urine": "urin", "urinary": "urin"}
)

type aliasRef struct {
	alias string
	key   string
}

// Vocabulary is an immutable pair of canonical vocabularies with their lookup indexes.
type Vocabulary struct {
	biomarkers []BiomarkerEntry
	variants   []VariantEntry

	biomarkerByKey   map[string]int
	biomarkerAliases map[string]string
	// aliases at least minContainment long, longest first
	containmentAliases []aliasRef
	collisions         map[string]string
	minContainment     int

	variantByKey      map[string]int
	variantByID       map[string]int
	variantAliases    map[string]int
	variantsByGene    map[string][]int
	variantByNotation map[string]int // GENE|notation key
	genes             *hgvs.GeneValidator
}

// Option tunes a Vocabulary.
type Option func(*Vocabulary)

// WithContainmentMinLength sets the shortest name or alias that takes part in containment
// matching.
func WithContainmentMinLength(n int) Option {
	return func(v *Vocabulary) {
		if n > 0 {
			v.minContainment = n
		}
	}
}

// New builds a vocabulary from entries. It fails when an alias, identifier or notation
// would map to two different canonical entries.
func New(biomarkers []BiomarkerEntry, variants []VariantEntry, opts ...Option) (*Vocabulary, error) {
	v := &Vocabulary{
		biomarkers:        append([]BiomarkerEntry(nil), biomarkers...),
		variants:          append([]VariantEntry(nil), variants...),
		biomarkerByKey:    make(map[string]int),
		biomarkerAliases:  make(map[string]string),
		collisions:        make(map[string]string),
		minContainment:    4,
		variantByKey:      make(map[string]int),
		variantByID:       make(map[string]int),
		variantAliases:    make(map[string]int),
		variantsByGene:    make(map[string][]int),
		variantByNotation: make(map[string]int),
		genes:             hgvs.NewGeneValidator(),
	}
	for _, opt := range opts {
		opt(v)
	}

	if err := v.indexBiomarkers(); err != nil {
		return nil, err
	}
	if err := v.indexVariants(); err != nil {
		return nil, err
	}
	return v, nil
}

// Must is New for package-level initialisation; it panics on a conflicting table.
func Must(v *Vocabulary, err error) *Vocabulary {
	if err != nil {
		panic(fmt.Sprintf("vocabulary: %v", err))
	}
	return v
}

var defaultVocabulary = Must(New(biomarkerTable, variantTable))

// NewDefault builds the built-in vocabulary with non-default options.
func NewDefault(opts ...Option) (*Vocabulary, error) {
	return New(biomarkerTable, variantTable, opts...)
}

// Default returns the built-in vocabulary.
func Default() *Vocabulary {
	return defaultVocabulary
}

func (v *Vocabulary) indexBiomarkers() error {
	for i, e := range v.biomarkers {
		if e.Key == "" {
			return fmt.Errorf("biomarker entry %d has no key", i)
		}
		if _, dup := v.biomarkerByKey[e.Key]; dup {
			return fmt.Errorf("duplicate biomarker key %q", e.Key)
		}
		v.biomarkerByKey[e.Key] = i

		for _, a := range append([]string{e.Name, e.Key}, e.Aliases...) {
			n := NormalizeName(a)
			if n == "" {
				continue
			}
			if other, ok := v.biomarkerAliases[n]; ok && other != e.Key {
				return fmt.Errorf("biomarker alias %q maps to both %q and %q", a, other, e.Key)
			}
			v.biomarkerAliases[n] = e.Key
		}
	}

	for alias, key := range fuzzyCollisions {
		if _, ok := v.biomarkerByKey[key]; !ok {
			return fmt.Errorf("fuzzy alias %q points at unknown key %q", alias, key)
		}
		v.collisions[alias] = key
	}

	for alias, key := range v.biomarkerAliases {
		if len(alias) >= v.minContainment {
			v.containmentAliases = append(v.containmentAliases, aliasRef{alias: alias, key: key})
		}
	}
	sort.Slice(v.containmentAliases, func(i, j int) bool {
		a, b := v.containmentAliases[i], v.containmentAliases[j]
		if len(a.alias) != len(b.alias) {
			return len(a.alias) > len(b.alias)
		}
		if a.key != b.key {
			return a.key < b.key
		}
		return a.alias < b.alias
	})
	return nil
}

func (v *Vocabulary) indexVariants() error {
	for i, e := range v.variants {
		if e.Key == "" {
			return fmt.Errorf("variant entry %d has no key", i)
		}
		if _, dup := v.variantByKey[e.Key]; dup {
			return fmt.Errorf("duplicate variant key %q", e.Key)
		}
		v.variantByKey[e.Key] = i

		if e.Identifier != "" {
			id := strings.ToLower(e.Identifier)
			if other, ok := v.variantByID[id]; ok {
				return fmt.Errorf("identifier %s maps to both %q and %q", e.Identifier, v.variants[other].Key, e.Key)
			}
			v.variantByID[id] = i
		}

		gene := strings.ToUpper(e.Gene)
		if gene != "" {
			if err := v.genes.ValidateGeneSymbol(gene); err != nil {
				return fmt.Errorf("variant %q: %w", e.Key, err)
			}
			v.genes.AddKnownGene(gene)
			v.variantsByGene[gene] = append(v.variantsByGene[gene], i)
		}

		for _, n := range e.Notations {
			k := gene + "|" + hgvs.KeyOf(n)
			if other, ok := v.variantByNotation[k]; ok && other != i {
				return fmt.Errorf("notation %s %s maps to both %q and %q", gene, n, v.variants[other].Key, e.Key)
			}
			v.variantByNotation[k] = i
		}

		for _, a := range append([]string{e.Name, e.Key}, e.Aliases...) {
			n := NormalizeName(a)
			if n == "" {
				continue
			}
			if other, ok := v.variantAliases[n]; ok && other != i {
				return fmt.Errorf("variant alias %q maps to both %q and %q", a, v.variants[other].Key, e.Key)
			}
			v.variantAliases[n] = i
		}
	}
	return nil
}

// NormalizeName folds a raw name for lookup: NFKC, lower case, leading and trailing
// qualifiers such as "total" or "serum" dropped, then everything but letters and digits
// removed.
func NormalizeName(raw string) string {
	return strings.Join(nameWords(raw), "")
}

func nameWords(raw string) []string {
	s := strings.ToLower(norm.NFKC.String(raw))
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for len(words) > 1 && strippedQualifiers[words[0]] {
		words = words[1:]
	}
	for len(words) > 1 && strippedQualifiers[words[len(words)-1]] {
		words = words[:len(words)-1]
	}
	return words
}

// containsWords reports whether alias occurs in the joined name starting and ending on word
// boundaries.
func containsWords(words []string, alias string) bool {
	for i := range words {
		rest := alias
		for j := i; j < len(words) && rest != ""; j++ {
			if !strings.HasPrefix(rest, words[j]) {
				break
			}
			rest = rest[len(words[j]):]
			if rest == "" {
				return true
			}
		}
	}
	return false
}

// distinguished reports whether the name carries a word that makes it a different analyte
// from an alias lacking that word: a ratio is not its numerator, urine creatinine is not
// serum creatinine.
func distinguished(words []string, alias string) bool {
	for _, w := range words {
		if stem, ok := distinguishingWords[w]; ok && !strings.Contains(alias, stem) {
			return true
		}
	}
	return false
}

// ResolveBiomarker maps a raw analyte name to its canonical key: exact alias, then
// containment in either direction, then the curated collision table. A miss returns
// MethodNone; the caller keeps the raw name.
func (v *Vocabulary) ResolveBiomarker(raw string) Match {
	words := nameWords(raw)
	n := strings.Join(words, "")
	if n == "" {
		return Match{Method: MethodNone}
	}

	if key, ok := v.biomarkerAliases[n]; ok {
		return v.biomarkerMatch(key, MethodExact)
	}

	if len(n) >= v.minContainment {
		// The name carries extra words around a known alias: prefer the longest alias.
		for _, a := range v.containmentAliases {
			if containsWords(words, a.alias) && !distinguished(words, a.alias) {
				return v.biomarkerMatch(a.key, MethodContainment)
			}
		}
		// The name is a truncation of a known alias: prefer the shortest alias.
		for i := len(v.containmentAliases) - 1; i >= 0; i-- {
			a := v.containmentAliases[i]
			if strings.HasPrefix(a.alias, n) && !distinguished(words, a.alias) {
				return v.biomarkerMatch(a.key, MethodContainment)
			}
		}
	}

	if key, ok := v.collisions[n]; ok {
		return v.biomarkerMatch(key, MethodFuzzy)
	}

	return Match{Method: MethodNone}
}

func (v *Vocabulary) biomarkerMatch(key string, m Method) Match {
	e := v.biomarkers[v.biomarkerByKey[key]]
	return Match{Key: e.Key, Name: e.Name, Method: m}
}

// ResolveVariant maps a variant to its canonical entry: identifier first, then gene plus
// notation, then a gene that has exactly one entry.
func (v *Vocabulary) ResolveVariant(identifier, gene, notation string) (*VariantEntry, Method) {
	if identifier != "" {
		if i, ok := v.variantByID[strings.ToLower(strings.TrimSpace(identifier))]; ok {
			return v.variantAt(i), MethodIdentifier
		}
	}

	g := strings.ToUpper(strings.TrimSpace(gene))
	if g != "" && notation != "" {
		if i, ok := v.variantByNotation[g+"|"+hgvs.KeyOf(notation)]; ok {
			return v.variantAt(i), MethodNotation
		}
	}

	if g != "" && identifier == "" && notation == "" {
		if idx := v.variantsByGene[g]; len(idx) == 1 {
			return v.variantAt(idx[0]), MethodGene
		}
	}

	return nil, MethodNone
}

// ResolveVariantName resolves a free-text variant name such as "rs4680", "MTHFR C677T" or
// "COMT Val158Met".
func (v *Vocabulary) ResolveVariantName(raw string) Match {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Match{Method: MethodNone}
	}

	if rsIDPattern.MatchString(s) {
		if e, m := v.ResolveVariant(s, "", ""); e != nil {
			return Match{Key: e.Key, Name: e.Name, Method: m}
		}
		return Match{Method: MethodNone}
	}

	if i, ok := v.variantAliases[NormalizeName(s)]; ok {
		e := v.variants[i]
		return Match{Key: e.Key, Name: e.Name, Method: MethodExact}
	}

	fields := strings.Fields(s)
	if len(fields) >= 2 {
		if e, m := v.ResolveVariant("", fields[0], strings.Join(fields[1:], "")); e != nil {
			return Match{Key: e.Key, Name: e.Name, Method: m}
		}
	}
	if len(fields) == 1 {
		if e, m := v.ResolveVariant("", fields[0], ""); e != nil {
			return Match{Key: e.Key, Name: e.Name, Method: m}
		}
	}
	return Match{Method: MethodNone}
}

// Resolve dispatches on kind.
func (v *Vocabulary) Resolve(kind Kind, raw string) Match {
	if kind == KindVariant {
		return v.ResolveVariantName(raw)
	}
	return v.ResolveBiomarker(raw)
}

func (v *Vocabulary) variantAt(i int) *VariantEntry {
	e := v.variants[i]
	return &e
}

// Biomarker returns the entry for a canonical key.
func (v *Vocabulary) Biomarker(key string) (BiomarkerEntry, bool) {
	i, ok := v.biomarkerByKey[key]
	if !ok {
		return BiomarkerEntry{}, false
	}
	return v.biomarkers[i], true
}

// Variant returns the entry for a canonical key.
func (v *Vocabulary) Variant(key string) (VariantEntry, bool) {
	i, ok := v.variantByKey[key]
	if !ok {
		return VariantEntry{}, false
	}
	return v.variants[i], true
}

// Biomarkers returns a copy of the biomarker entries.
func (v *Vocabulary) Biomarkers() []BiomarkerEntry {
	return append([]BiomarkerEntry(nil), v.biomarkers...)
}

// Variants returns a copy of the variant entries.
func (v *Vocabulary) Variants() []VariantEntry {
	return append([]VariantEntry(nil), v.variants...)
}

// IsGene reports whether symbol is the gene of any variant entry.
func (v *Vocabulary) IsGene(symbol string) bool {
	return v.genes.IsKnownGene(symbol)
}

// FindGenes returns the known gene symbols mentioned in text, in order.
func (v *Vocabulary) FindGenes(text string) []hgvs.GeneMention {
	return v.genes.FindKnownGenes(text)
}
