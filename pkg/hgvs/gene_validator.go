package hgvs

import (
	"regexp"
	"strings"

	"github.com/labextract-server/internal/domain"
)

// Gene symbol patterns (HUGO Gene Nomenclature Committee)
var (
	standardGenePattern = regexp.MustCompile(`^[A-Z][A-Z0-9-]*[A-Z0-9]$`)

	// Pseudogenes, antisense transcripts and similar
	complexGenePattern = regexp.MustCompile(`^[A-Z][A-Z0-9-]*[A-Z0-9](P\d+|AS\d+|DT|IT\d+|NB)?$`)

	// Candidate gene tokens in running text; only tokens in the known list are reported.
	geneTokenPattern = regexp.MustCompile(`\b[A-Z][A-Z0-9]{1,9}(?:-[A-Z0-9]{1,4})?\b`)
)

// GeneValidator validates gene symbols and remembers the genes the vocabulary knows.
type GeneValidator struct {
	knownGenes map[string]bool
}

// NewGeneValidator creates a gene validator seeded with known symbols.
func NewGeneValidator(known ...string) *GeneValidator {
	gv := &GeneValidator{knownGenes: make(map[string]bool, len(known))}
	for _, g := range known {
		gv.AddKnownGene(g)
	}
	return gv
}

// ValidateGeneSymbol validates gene symbols according to HUGO standards
func (gv *GeneValidator) ValidateGeneSymbol(symbol string) error {
	if symbol == "" {
		return nil // Gene symbol is optional
	}

	original := symbol
	symbol = strings.TrimSpace(symbol)

	if symbol != strings.ToUpper(symbol) {
		return domain.NewValidationError("gene_symbol",
			"Gene symbol must be in uppercase letters according to HUGO standards",
			original)
	}

	if !standardGenePattern.MatchString(symbol) && !complexGenePattern.MatchString(symbol) {
		return domain.NewValidationError("gene_symbol",
			"Gene symbol must follow HUGO nomenclature standards (uppercase letters, numbers, and hyphens only)",
			original)
	}

	if strings.Contains(symbol, "--") {
		return domain.NewValidationError("gene_symbol",
			"Gene symbol cannot contain consecutive hyphens",
			original)
	}

	// HUGO recommends 1-15 characters
	if len(symbol) > 15 {
		return domain.NewValidationError("gene_symbol",
			"Gene symbol should not exceed 15 characters",
			original)
	}

	return nil
}

// AddKnownGene adds a gene symbol to the known genes list
func (gv *GeneValidator) AddKnownGene(symbol string) {
	gv.knownGenes[strings.ToUpper(strings.TrimSpace(symbol))] = true
}

// IsKnownGene checks if a gene symbol is in the known genes list
func (gv *GeneValidator) IsKnownGene(symbol string) bool {
	return gv.knownGenes[strings.ToUpper(strings.TrimSpace(symbol))]
}

// GeneMention is a known gene symbol located in text.
type GeneMention struct {
	Symbol string
	Start  int
	End    int
}

// FindKnownGenes returns the known gene symbols mentioned in text, in order. Matching is
// case-sensitive because lower-case spellings of short symbols are usually ordinary words.
func (gv *GeneValidator) FindKnownGenes(text string) []GeneMention {
	var out []GeneMention
	for _, loc := range geneTokenPattern.FindAllStringIndex(text, -1) {
		tok := text[loc[0]:loc[1]]
		if gv.knownGenes[tok] {
			out = append(out, GeneMention{Symbol: tok, Start: loc[0], End: loc[1]})
		}
	}
	return out
}
