package extraction

import (
	"regexp"
	"sort"
	"strings"

	"github.com/labextract-server/internal/domain"
	"github.com/labextract-server/pkg/vocabulary"
)

// Signal weights.
const (
	weightIdentifier      = 3
	weightGenotype        = 1
	weightGene            = 2
	weightGeneticTerm     = 1
	weightMeasurement     = 1
	weightReferencePhrase = 2
	weightAnalyte         = 1
)

var (
	rsIDPattern          = regexp.MustCompile(`(?i)\brs\d{3,}\b`)
	genotypeTokenPattern = regexp.MustCompile(`\b[ACGT](?:\s*[/;|]\s*)?[ACGT]\b`)
	geneticTermPattern   = regexp.MustCompile(`(?i)\b(?:genotypes?|zygosity|homozygous|heterozygous|variants?|alleles?|snps?|mutations?|polymorphisms?|wild[\s-]?type|carrier|chromosome|dbsnp)\b`)
	referencePhrase      = regexp.MustCompile(`(?i)\b(?:reference\s+(?:range|interval)|ref\.?\s+range|normal\s+range|standard\s+range)\b`)
)

// Classification is the classifier's decision together with the scores behind it.
type Classification struct {
	Type         domain.DocumentType
	GeneticScore int
	BloodScore   int
}

// Classifier scores text against the genetic and the chemistry signatures.
type Classifier struct {
	strong    int
	weak      int
	hintBonus int
	vocab     *vocabulary.Vocabulary
	analytes  *regexp.Regexp
}

// NewClassifier builds the analyte-name pattern from the vocabulary once.
func NewClassifier(cfg domain.ExtractionConfig, vocab *vocabulary.Vocabulary) *Classifier {
	return &Classifier{
		strong:    cfg.StrongThreshold,
		weak:      cfg.WeakThreshold,
		hintBonus: cfg.HintBonus,
		vocab:     vocab,
		analytes:  analytePattern(vocab),
	}
}

func analytePattern(vocab *vocabulary.Vocabulary) *regexp.Regexp {
	seen := make(map[string]bool)
	var terms []string
	for _, e := range vocab.Biomarkers() {
		for _, a := range append([]string{e.Name}, e.Aliases...) {
			a = strings.ToLower(strings.TrimSpace(a))
			if len(a) < 3 || seen[a] || !isWordByte(a[0]) || !isWordByte(a[len(a)-1]) {
				continue
			}
			seen[a] = true
			terms = append(terms, regexp.QuoteMeta(a))
		}
	}
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(terms, "|") + `)\b`)
}

// Classify decides the document type. A hint adds a fixed bonus to its own side and never
// forces the decision.
func (c *Classifier) Classify(doc *Document, hint domain.DocumentType) Classification {
	genetic, blood := c.Scores(doc)
	switch hint {
	case domain.DocumentGenetic:
		genetic += c.hintBonus
	case domain.DocumentBiomarker:
		blood += c.hintBonus
	}

	out := Classification{GeneticScore: genetic, BloodScore: blood}
	switch {
	case genetic > blood && genetic >= c.strong:
		out.Type = domain.DocumentGenetic
	case blood > genetic && blood >= c.strong:
		out.Type = domain.DocumentBiomarker
	case genetic >= c.weak:
		out.Type = domain.DocumentGenetic
	case blood >= c.weak:
		out.Type = domain.DocumentBiomarker
	default:
		out.Type = domain.DocumentUnknown
	}
	return out
}

// Scores returns the raw genetic and chemistry signature scores, without any hint.
func (c *Classifier) Scores(doc *Document) (genetic, blood int) {
	text := doc.Text

	genetic += weightIdentifier * len(rsIDPattern.FindAllStringIndex(text, -1))
	genetic += weightGenotype * len(genotypeTokenPattern.FindAllStringIndex(text, -1))
	genetic += weightGene * len(c.vocab.FindGenes(text))
	genetic += weightGeneticTerm * len(geneticTermPattern.FindAllStringIndex(text, -1))

	for _, line := range doc.Lines {
		blood += weightMeasurement * len(findMeasurements(line.Text))
	}
	blood += weightReferencePhrase * len(referencePhrase.FindAllStringIndex(text, -1))
	blood += weightAnalyte * len(c.analytes.FindAllStringIndex(text, -1))
	return genetic, blood
}
