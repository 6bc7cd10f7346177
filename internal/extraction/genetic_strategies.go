package extraction

import (
	"regexp"
	"strings"

	"github.com/labextract-server/internal/domain"
	"github.com/labextract-server/pkg/hgvs"
)

var (
	rsIDCellPattern     = regexp.MustCompile(`(?i)^rs\d{3,}$`)
	nucleotidePair      = regexp.MustCompile(`^[ACGT]{2}$`)
	geneSymbolToken     = regexp.MustCompile(`([A-Z][A-Z0-9]{2,9})\W*$`)
	zygosityWordPattern = regexp.MustCompile(`(?i)(?:\b(?:homozygous|heterozygous|hemizygous|homozygote|heterozygote|wild[\s-]?type|het|hom|carrier|negative|normal|not\s+detected)\b|\+/\+|\+/-|-/-)`)
	labelledGenotype    = regexp.MustCompile(`(?i:\b(?:your\s+)?(?:genotype|result|call|alleles?))\s*[:=]\s*\(?([ACGT])(?:\s*[/;|]\s*)?([ACGT])\b\)?`)
)

const geneNotationGap = 30

// span is a located piece of text within a line.
type span struct {
	text       string
	start, end int
}

func (e *Env) variant(s domain.Strategy, line Line, col int, v domain.VariantCandidate) (domain.VariantCandidate, bool) {
	gt, ok := hgvs.NormalizeGenotype(v.Genotype)
	if !ok {
		return domain.VariantCandidate{}, false
	}
	v.Genotype = gt
	v.Identifier = strings.ToLower(strings.TrimSpace(v.Identifier))
	v.Gene = strings.ToUpper(strings.TrimSpace(v.Gene))
	if v.Identifier == "" && v.Gene == "" {
		return domain.VariantCandidate{}, false
	}
	v.Confidence = e.confidence(s, 0)
	v.Strategy = s
	v.Sources = []domain.Strategy{s}
	v.Snippet = snippet(line.Text)
	v.Offset = line.Offset + col
	return v, true
}

// genes returns the known gene symbols on a line. Symbols that are also a nucleotide pair
// ("GC") are left out when ambiguous is false.
func (e *Env) genes(text string, ambiguous bool) []span {
	var out []span
	for _, g := range e.Vocab.FindGenes(text) {
		if !ambiguous && nucleotidePair.MatchString(g.Symbol) {
			continue
		}
		out = append(out, span{text: g.Symbol, start: g.Start, end: g.End})
	}
	return out
}

// genotypeIn returns the first genotype token in text[from:to] that is not one of the
// excluded spans, falling back to the first token of any kind.
func genotypeIn(text string, from, to int, exclude []span) (span, bool) {
	if from < 0 || from >= to || to > len(text) {
		return span{}, false
	}
	var first *span
	for _, loc := range genotypeTokenPattern.FindAllStringIndex(text[from:to], -1) {
		sp := span{text: text[from+loc[0] : from+loc[1]], start: from + loc[0], end: from + loc[1]}
		if !overlapsAny(sp, exclude) {
			return sp, true
		}
		if first == nil {
			first = &sp
		}
	}
	if first != nil {
		return *first, true
	}
	return span{}, false
}

func zygosityIn(text string) domain.Zygosity {
	for _, w := range zygosityWordPattern.FindAllString(text, -1) {
		if z := hgvs.ParseZygosity(w); z != domain.ZygosityNone {
			return z
		}
	}
	return domain.ZygosityNone
}

func overlapsAny(sp span, others []span) bool {
	for _, o := range others {
		if sp.start < o.end && o.start < sp.end {
			return true
		}
	}
	return false
}

func without(spans []span, drop span) []span {
	out := make([]span, 0, len(spans))
	for _, s := range spans {
		if s.start < drop.end && drop.start < s.end {
			continue
		}
		out = append(out, s)
	}
	return out
}

// nearest returns the span closest to pos, preferring one that ends before it.
func nearest(spans []span, pos int) (span, bool) {
	best, found, bestDist := span{}, false, 0
	for _, s := range spans {
		d := pos - s.end
		if s.start >= pos {
			d = s.start - pos + 1
		}
		if d < 0 {
			d = -d
		}
		if !found || d < bestDist {
			best, found, bestDist = s, true, d
		}
	}
	return best, found
}

func rsIDs(text string) []span {
	var out []span
	for _, loc := range rsIDPattern.FindAllStringIndex(text, -1) {
		out = append(out, span{text: strings.ToLower(text[loc[0]:loc[1]]), start: loc[0], end: loc[1]})
	}
	return out
}

// geneticTable reads rows of genotyping tables and raw-data exports: an rsID or a gene plus
// notation, and a genotype cell.
type geneticTable struct{ env *Env }

func (s *geneticTable) Strategy() domain.Strategy { return domain.StrategyGeneticTable }

func (s *geneticTable) Generate(doc *Document) Candidates {
	var out Candidates
	for _, line := range doc.Lines {
		cells := splitColumns(line.Text)
		if len(cells) < 2 {
			continue
		}

		var v domain.VariantCandidate
		for _, c := range cells {
			switch {
			case v.Identifier == "" && rsIDCellPattern.MatchString(c):
				v.Identifier = c
			case v.Gene == "" && v.Identifier == "" && v.Genotype == "" && s.env.Vocab.IsGene(c):
				v.Gene = c
			case v.Genotype == "" && isGenotypeCell(c):
				v.Genotype = c
			case v.Zygosity == domain.ZygosityNone && hgvs.ParseZygosity(c) != domain.ZygosityNone:
				v.Zygosity = hgvs.ParseZygosity(c)
			case v.Notation == "" && hgvs.ValidateNotation(c) == nil:
				v.Notation = c
			case v.Gene == "" && s.env.Vocab.IsGene(c):
				v.Gene = c
			}
		}
		if v.Genotype == "" || (v.Identifier == "" && (v.Gene == "" || v.Notation == "")) {
			continue
		}
		if c, ok := s.env.variant(s.Strategy(), line, strings.Index(line.Text, cells[0]), v); ok {
			out.Variants = append(out.Variants, c)
		}
	}
	return out
}

func isGenotypeCell(c string) bool {
	_, ok := hgvs.NormalizeGenotype(c)
	return ok
}

// identifierContext pairs each rsID with the first genotype printed within a fixed
// character window after it.
type identifierContext struct{ env *Env }

func (s *identifierContext) Strategy() domain.Strategy { return domain.StrategyIdentifierContext }

func (s *identifierContext) Generate(doc *Document) Candidates {
	var out Candidates
	window := s.env.Config.GenotypeWindow
	for _, line := range doc.Lines {
		t := line.Text
		ids := rsIDs(t)
		if len(ids) == 0 {
			continue
		}
		genes := s.env.genes(t, true)

		for i, id := range ids {
			end := id.end + window
			if end > len(t) {
				end = len(t)
			}
			if i+1 < len(ids) && ids[i+1].start < end {
				end = ids[i+1].start
			}
			gt, ok := genotypeIn(t, id.end, end, genes)
			if !ok {
				continue
			}

			v := domain.VariantCandidate{Identifier: id.text, Genotype: gt.text, Zygosity: zygosityIn(t[gt.end:])}
			if g, ok := nearest(without(genes, gt), id.start); ok {
				v.Gene = g.text
			}
			if c, ok := s.env.variant(s.Strategy(), line, id.start, v); ok {
				out.Variants = append(out.Variants, c)
			}
		}
	}
	return out
}

// geneMutation pairs a gene symbol with a mutation notation next to it. The genotype is
// read from the text after the notation or, failing that, built from the notation's
// alleles and a stated zygosity.
type geneMutation struct{ env *Env }

func (s *geneMutation) Strategy() domain.Strategy { return domain.StrategyGeneMutation }

func (s *geneMutation) Generate(doc *Document) Candidates {
	var out Candidates
	for _, line := range doc.Lines {
		t := line.Text
		found := hgvs.FindAll(t)
		if len(found) == 0 {
			continue
		}
		genes := s.env.genes(t, false)
		ids := rsIDs(t)

		for i, f := range found {
			gene := s.geneFor(t, f, genes)
			if gene == "" {
				continue
			}
			end := len(t)
			if i+1 < len(found) {
				end = found[i+1].Start
			}

			v := domain.VariantCandidate{Gene: gene, Notation: f.Notation.Original, Zygosity: zygosityIn(t[f.End:end])}
			if gt, ok := genotypeIn(t, f.End, end, genes); ok {
				v.Genotype = gt.text
			} else if gt, ok := s.derivedGenotype(gene, f.Notation, v.Zygosity); ok {
				v.Genotype = gt
			} else {
				continue
			}
			if id, ok := nearest(ids, f.Start); ok {
				v.Identifier = id.text
			}
			if c, ok := s.env.variant(s.Strategy(), line, f.Start, v); ok {
				out.Variants = append(out.Variants, c)
			}
		}
	}
	return out
}

// geneFor finds the gene a notation belongs to: the closest known gene within a short gap,
// else an unlisted symbol immediately before the notation.
func (s *geneMutation) geneFor(t string, f hgvs.Found, genes []span) string {
	if g, ok := nearest(genes, f.Start); ok {
		gap := f.Start - g.end
		if g.start >= f.End {
			gap = g.start - f.End
		}
		if gap <= geneNotationGap {
			return g.text
		}
	}
	m := geneSymbolToken.FindStringSubmatch(t[:f.Start])
	if m == nil || nucleotidePair.MatchString(m[1]) {
		return ""
	}
	if err := hgvs.NewGeneValidator().ValidateGeneSymbol(m[1]); err != nil {
		return ""
	}
	return m[1]
}

func (s *geneMutation) derivedGenotype(gene string, n *hgvs.Notation, z domain.Zygosity) (string, bool) {
	if z == domain.ZygosityNone {
		return "", false
	}
	if n.IsNucleotide() {
		return hgvs.GenotypeFor(n.Ref, n.Alt, z)
	}
	if entry, _ := s.env.Vocab.ResolveVariant("", gene, n.Original); entry != nil {
		return hgvs.GenotypeFor(entry.Ref, entry.Alt, z)
	}
	return "", false
}

// genotypePattern reads labelled genotypes ("Genotype: C/T") and takes the subject from the
// nearest rsID or gene on the same or preceding lines.
type genotypePattern struct{ env *Env }

func (s *genotypePattern) Strategy() domain.Strategy { return domain.StrategyGenotypePattern }

func (s *genotypePattern) Generate(doc *Document) Candidates {
	var out Candidates
	for _, line := range doc.Lines {
		t := line.Text
		for _, m := range labelledGenotype.FindAllStringSubmatchIndex(t, -1) {
			v := domain.VariantCandidate{
				Genotype: t[m[2]:m[3]] + t[m[4]:m[5]],
				Zygosity: zygosityIn(t),
			}
			v.Identifier, v.Gene = s.subject(doc, line, m[0])
			if c, ok := s.env.variant(s.Strategy(), line, m[0], v); ok {
				out.Variants = append(out.Variants, c)
			}
		}
	}
	return out
}

// subject looks left of pos on the line, then upwards through the context lines.
func (s *genotypePattern) subject(doc *Document, line Line, pos int) (id, gene string) {
	before := line.Text[:pos]
	for i := line.Index; i >= 0 && i >= line.Index-s.env.Config.ContextLines; i-- {
		text := before
		if i != line.Index {
			text = doc.Lines[i].Text
		}
		if id == "" {
			if ids := rsIDs(text); len(ids) > 0 {
				id = ids[len(ids)-1].text
			}
		}
		if gene == "" {
			if gs := s.env.genes(text, false); len(gs) > 0 {
				gene = gs[len(gs)-1].text
			}
		}
		if id != "" || gene != "" {
			return id, gene
		}
	}
	return "", ""
}

// geneScan is the recall fallback: any known gene followed on its line by a genotype, or by
// a zygosity when the gene has a single catalogued variant.
type geneScan struct{ env *Env }

func (s *geneScan) Strategy() domain.Strategy { return domain.StrategyGeneScan }

func (s *geneScan) Generate(doc *Document) Candidates {
	var out Candidates
	for _, line := range doc.Lines {
		t := line.Text
		genes := s.env.genes(t, false)
		if len(genes) == 0 {
			continue
		}
		all := s.env.genes(t, true)
		ids := rsIDs(t)

		for i, g := range genes {
			end := len(t)
			if i+1 < len(genes) {
				end = genes[i+1].start
			}
			v := domain.VariantCandidate{Gene: g.text, Zygosity: zygosityIn(t[g.end:end])}
			if gt, ok := genotypeIn(t, g.end, end, without(all, g)); ok {
				v.Genotype = gt.text
			} else if entry, _ := s.env.Vocab.ResolveVariant("", g.text, ""); entry != nil {
				gt, ok := hgvs.GenotypeFor(entry.Ref, entry.Alt, v.Zygosity)
				if !ok {
					continue
				}
				v.Genotype = gt
			} else {
				continue
			}
			for _, id := range ids {
				if id.start >= g.end && id.end <= end {
					v.Identifier = id.text
					break
				}
			}
			if c, ok := s.env.variant(s.Strategy(), line, g.start, v); ok {
				out.Variants = append(out.Variants, c)
			}
		}
	}
	return out
}
