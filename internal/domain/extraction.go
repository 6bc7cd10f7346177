package domain

import (
	"fmt"
	"strings"
)

// DocumentType identifies which family of candidate generators a report is routed to.
type DocumentType string

const (
	DocumentGenetic   DocumentType = "genetic"
	DocumentBiomarker DocumentType = "biomarker"
	DocumentUnknown   DocumentType = "unknown"
)

// ParseDocumentType accepts the usual spellings of a type hint. Empty input maps to
// DocumentUnknown, which callers treat as "no hint".
func ParseDocumentType(s string) (DocumentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unknown", "auto":
		return DocumentUnknown, nil
	case "genetic", "genetics", "dna", "genomic":
		return DocumentGenetic, nil
	case "biomarker", "biomarkers", "blood", "lab", "chemistry":
		return DocumentBiomarker, nil
	}
	return DocumentUnknown, NewValidationError("type_hint", fmt.Sprintf("unsupported document type %q", s), s)
}

// Strategy labels the generator that produced a candidate.
type Strategy string

const (
	// Biomarker strategies, most specific first.
	StrategyTableStructure Strategy = "table_structure"
	StrategyLabeledRange   Strategy = "labeled_range"
	StrategyDelimiterPair  Strategy = "delimiter_pair"
	StrategyUnitAnchored   Strategy = "unit_anchored"
	StrategyFreeForm       Strategy = "free_form"

	// Genetic strategies, most specific first.
	StrategyGeneticTable      Strategy = "genetic_table"
	StrategyIdentifierContext Strategy = "identifier_context"
	StrategyGeneMutation      Strategy = "gene_mutation"
	StrategyGenotypePattern   Strategy = "genotype_pattern"
	StrategyGeneScan          Strategy = "gene_scan"
)

// Priority is the fixed rank used to settle conflicts between duplicate candidates.
// Higher wins.
func (s Strategy) Priority() int {
	switch s {
	case StrategyTableStructure, StrategyGeneticTable:
		return 5
	case StrategyLabeledRange, StrategyIdentifierContext:
		return 4
	case StrategyDelimiterPair, StrategyGeneMutation:
		return 3
	case StrategyUnitAnchored, StrategyGenotypePattern:
		return 2
	case StrategyFreeForm, StrategyGeneScan:
		return 1
	}
	return 0
}

// IsTable reports whether the strategy works from row/column structure.
func (s Strategy) IsTable() bool {
	return s == StrategyTableStructure || s == StrategyGeneticTable
}

// BiomarkerStatus is the flag a lab attaches to a result.
type BiomarkerStatus string

const (
	StatusNone     BiomarkerStatus = ""
	StatusNormal   BiomarkerStatus = "normal"
	StatusHigh     BiomarkerStatus = "high"
	StatusLow      BiomarkerStatus = "low"
	StatusCritical BiomarkerStatus = "critical"
)

// ReferenceRange is the interval a lab prints next to a result. Either bound may be
// missing for one-sided ranges such as "<200" or ">60".
type ReferenceRange struct {
	Low  *float64 `json:"low,omitempty"`
	High *float64 `json:"high,omitempty"`
	Text string   `json:"text"`
}

// Classify places value relative to the range.
func (r *ReferenceRange) Classify(value float64) BiomarkerStatus {
	if r == nil || (r.Low == nil && r.High == nil) {
		return StatusNone
	}
	if r.Low != nil && value < *r.Low {
		return StatusLow
	}
	if r.High != nil && value > *r.High {
		return StatusHigh
	}
	return StatusNormal
}

// BiomarkerCandidate is a raw quantitative measurement emitted by a generator.
type BiomarkerCandidate struct {
	Name       string          `json:"name"`
	Value      float64         `json:"value"`
	Comparator string          `json:"comparator,omitempty"`
	Unit       string          `json:"unit,omitempty"`
	Range      *ReferenceRange `json:"reference_range,omitempty"`
	Status     BiomarkerStatus `json:"status,omitempty"`
	Confidence float64         `json:"confidence"`
	Strategy   Strategy        `json:"strategy"`
	Sources    []Strategy      `json:"sources,omitempty"`
	Snippet    string          `json:"snippet"`
	Offset     int             `json:"-"`
}

// Zygosity of an observed genotype.
type Zygosity string

const (
	ZygosityNone         Zygosity = ""
	ZygosityHomozygous   Zygosity = "homozygous"
	ZygosityHeterozygous Zygosity = "heterozygous"
	ZygosityWildType     Zygosity = "wild_type"
	ZygosityHemizygous   Zygosity = "hemizygous"
)

// VariantCandidate is a genotype call emitted by a generator.
type VariantCandidate struct {
	Identifier string     `json:"identifier,omitempty"`
	Gene       string     `json:"gene,omitempty"`
	Notation   string     `json:"notation,omitempty"`
	Genotype   string     `json:"genotype"`
	Zygosity   Zygosity   `json:"zygosity,omitempty"`
	Confidence float64    `json:"confidence"`
	Strategy   Strategy   `json:"strategy"`
	Sources    []Strategy `json:"sources,omitempty"`
	Snippet    string     `json:"snippet"`
	Offset     int        `json:"-"`
}

// DisplayName is the raw name used for resolution and for persistence when nothing
// canonical is known.
func (v *VariantCandidate) DisplayName() string {
	parts := make([]string, 0, 2)
	if v.Gene != "" {
		parts = append(parts, v.Gene)
	}
	if v.Notation != "" {
		parts = append(parts, v.Notation)
	}
	if len(parts) == 0 {
		return v.Identifier
	}
	return strings.Join(parts, " ")
}

// ResolvedBiomarker is a surviving candidate after vocabulary and unit normalisation.
// Unmatched biomarkers are kept with Matched=false.
type ResolvedBiomarker struct {
	BiomarkerCandidate
	RawUnit      string `json:"raw_unit,omitempty"`
	CanonicalKey string `json:"canonical_key,omitempty"`
	Matched      bool   `json:"matched"`
}

// Key is the persistence identity of the biomarker.
func (b *ResolvedBiomarker) Key() string {
	if b.CanonicalKey != "" {
		return b.CanonicalKey
	}
	return strings.ToLower(strings.TrimSpace(b.Name))
}

// ResolvedVariant is a surviving variant after vocabulary resolution.
type ResolvedVariant struct {
	VariantCandidate
	RawName      string `json:"raw_name"`
	CanonicalKey string `json:"canonical_key,omitempty"`
	Matched      bool   `json:"matched"`
}

// Key is the persistence identity of the variant: identifier, then canonical key, then gene.
func (v *ResolvedVariant) Key() string {
	switch {
	case v.Identifier != "":
		return strings.ToLower(v.Identifier)
	case v.CanonicalKey != "":
		return v.CanonicalKey
	case v.Gene != "":
		return strings.ToUpper(v.Gene) + ":" + v.Genotype
	}
	return ""
}

// ExtractionResult is the full output of one engine call.
type ExtractionResult struct {
	DocumentType DocumentType        `json:"document_type"`
	Biomarkers   []ResolvedBiomarker `json:"biomarkers"`
	Variants     []ResolvedVariant   `json:"variants"`
	Confidence   float64             `json:"confidence"`
}

// EntityCount is the number of entities of either kind.
func (r *ExtractionResult) EntityCount() int {
	return len(r.Biomarkers) + len(r.Variants)
}
