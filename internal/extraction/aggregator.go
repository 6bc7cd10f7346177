package extraction

import (
	"math"
	"sort"
	"strings"

	"github.com/labextract-server/internal/domain"
	"github.com/labextract-server/pkg/hgvs"
	"github.com/labextract-server/pkg/vocabulary"
)

// Aggregator merges the union of all generator outputs into a ranked, duplicate-free list.
type Aggregator struct {
	epsilon       float64
	minConfidence float64
	bonus         float64
	penalty       float64
	maxPlausible  float64
}

// NewAggregator reads its thresholds from the extraction configuration.
func NewAggregator(cfg domain.ExtractionConfig) *Aggregator {
	return &Aggregator{
		epsilon:       cfg.ValueEpsilon,
		minConfidence: cfg.MinConfidence,
		bonus:         cfg.CorroborationBonus,
		penalty:       cfg.ImplausibleValuePenalty,
		maxPlausible:  cfg.MaxPlausibleValue,
	}
}

// Biomarkers deduplicates biomarker candidates. Two candidates are the same measurement when
// their normalised names match and their values differ by less than epsilon; the survivor
// is the one from the higher-priority strategy, then the more confident one. Every
// strategy that saw the measurement is kept in Sources and each extra one adds the
// corroboration bonus. Implausible values are penalised, anything under the minimum
// confidence is dropped, and the rest is ranked.
func (a *Aggregator) Biomarkers(candidates []domain.BiomarkerCandidate) []domain.BiomarkerCandidate {
	ordered := append([]domain.BiomarkerCandidate(nil), candidates...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return biomarkerLess(&ordered[i], &ordered[j])
	})

	var kept []domain.BiomarkerCandidate
	keys := make([]string, 0, len(ordered))
	for _, c := range ordered {
		key := vocabulary.NormalizeName(c.Name)
		dup := -1
		for i := range kept {
			if keys[i] == key && math.Abs(kept[i].Value-c.Value) < a.epsilon {
				dup = i
				break
			}
		}
		if dup >= 0 {
			kept[dup].Sources = addSource(kept[dup].Sources, c.Strategy)
			continue
		}
		c.Sources = addSource(nil, c.Strategy)
		kept = append(kept, c)
		keys = append(keys, key)
	}

	out := kept[:0]
	for _, c := range kept {
		c.Confidence += a.bonus * float64(len(c.Sources)-1)
		if c.Value < 0 || c.Value > a.maxPlausible {
			c.Confidence -= a.penalty
		}
		c.Confidence = clampConfidence(c.Confidence)
		if c.Confidence < a.minConfidence {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return biomarkerLess(&out[i], &out[j])
	})
	return out
}

// Variants deduplicates variant candidates: the same identifier when both carry one,
// otherwise the same gene and genotype with no conflicting notation.
func (a *Aggregator) Variants(candidates []domain.VariantCandidate) []domain.VariantCandidate {
	ordered := append([]domain.VariantCandidate(nil), candidates...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return variantLess(&ordered[i], &ordered[j])
	})

	var kept []domain.VariantCandidate
	for _, c := range ordered {
		dup := -1
		for i := range kept {
			if sameVariant(&kept[i], &c) {
				dup = i
				break
			}
		}
		if dup >= 0 {
			k := &kept[dup]
			k.Sources = addSource(k.Sources, c.Strategy)
			if k.Identifier == "" {
				k.Identifier = c.Identifier
			}
			if k.Gene == "" {
				k.Gene = c.Gene
			}
			if k.Notation == "" {
				k.Notation = c.Notation
			}
			if k.Zygosity == domain.ZygosityNone {
				k.Zygosity = c.Zygosity
			}
			continue
		}
		c.Sources = addSource(nil, c.Strategy)
		kept = append(kept, c)
	}

	out := kept[:0]
	for _, c := range kept {
		c.Confidence = clampConfidence(c.Confidence + a.bonus*float64(len(c.Sources)-1))
		if c.Confidence < a.minConfidence {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return variantLess(&out[i], &out[j])
	})
	return out
}

func sameVariant(a, b *domain.VariantCandidate) bool {
	if a.Identifier != "" && b.Identifier != "" {
		return strings.EqualFold(a.Identifier, b.Identifier)
	}
	if a.Gene == "" || !strings.EqualFold(a.Gene, b.Gene) {
		return false
	}
	if hgvs.SortedGenotype(a.Genotype) != hgvs.SortedGenotype(b.Genotype) {
		return false
	}
	return a.Notation == "" || b.Notation == "" || hgvs.KeyOf(a.Notation) == hgvs.KeyOf(b.Notation)
}

func addSource(sources []domain.Strategy, s domain.Strategy) []domain.Strategy {
	for _, have := range sources {
		if have == s {
			return sources
		}
	}
	out := append(sources, s)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Priority() > out[j].Priority() ||
			out[i].Priority() == out[j].Priority() && out[i] < out[j]
	})
	return out
}

// Ranking: strategy priority, confidence, position in the document, name.
func biomarkerLess(a, b *domain.BiomarkerCandidate) bool {
	if pa, pb := a.Strategy.Priority(), b.Strategy.Priority(); pa != pb {
		return pa > pb
	}
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if a.Offset != b.Offset {
		return a.Offset < b.Offset
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.Value < b.Value
}

func variantLess(a, b *domain.VariantCandidate) bool {
	if pa, pb := a.Strategy.Priority(), b.Strategy.Priority(); pa != pb {
		return pa > pb
	}
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if a.Offset != b.Offset {
		return a.Offset < b.Offset
	}
	if a.DisplayName() != b.DisplayName() {
		return a.DisplayName() < b.DisplayName()
	}
	return a.Genotype < b.Genotype
}
