package extraction

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/labextract-server/internal/domain"
	"github.com/labextract-server/pkg/hgvs"
	"github.com/labextract-server/pkg/units"
	"github.com/labextract-server/pkg/vocabulary"
)

// Engine runs the extraction pipeline. It holds only immutable state and is safe for
// concurrent use.
type Engine struct {
	cfg        domain.ExtractionConfig
	env        *Env
	classifier *Classifier
	registry   *Registry
	aggregator *Aggregator
	scorer     *Scorer
	log        *logrus.Logger

	vocab *vocabulary.Vocabulary
	extra map[domain.DocumentType][]Generator
}

// Option customises an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The engine logs counts and scores at debug level, never
// report text.
func WithLogger(logger *logrus.Logger) Option {
	return func(e *Engine) { e.log = logger }
}

// WithVocabulary replaces the vocabulary named by the configuration.
func WithVocabulary(v *vocabulary.Vocabulary) Option {
	return func(e *Engine) { e.vocab = v }
}

// WithGenerator registers an additional generator for a document type after the
// built-in ones.
func WithGenerator(dt domain.DocumentType, g Generator) Option {
	return func(e *Engine) {
		if e.extra == nil {
			e.extra = make(map[domain.DocumentType][]Generator)
		}
		e.extra[dt] = append(e.extra[dt], g)
	}
}

// NewEngine builds an engine. Unset configuration fields take their defaults. Errors
// come only from an invalid configuration or vocabulary file and are meant to stop the
// process at startup.
func NewEngine(cfg domain.ExtractionConfig, opts ...Option) (*Engine, error) {
	cfg = withDefaults(cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid extraction config: %w", err)
	}

	e := &Engine{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logrus.New()
		e.log.SetOutput(io.Discard)
	}
	if e.vocab == nil {
		v, err := loadVocabulary(cfg)
		if err != nil {
			return nil, err
		}
		e.vocab = v
	}

	e.env = NewEnv(cfg, e.vocab)
	e.classifier = NewClassifier(cfg, e.vocab)
	e.aggregator = NewAggregator(cfg)
	e.scorer = NewScorer(cfg)
	e.registry = DefaultRegistry(e.env)
	for dt, gens := range e.extra {
		e.registry.Register(dt, gens...)
	}
	return e, nil
}

func loadVocabulary(cfg domain.ExtractionConfig) (*vocabulary.Vocabulary, error) {
	opt := vocabulary.WithContainmentMinLength(cfg.ContainmentMinLength)
	switch {
	case cfg.VocabularyFile != "":
		v, err := vocabulary.LoadFile(cfg.VocabularyFile, opt)
		if err != nil {
			return nil, fmt.Errorf("loading vocabulary: %w", err)
		}
		return v, nil
	case cfg.ContainmentMinLength != domain.DefaultExtractionConfig().ContainmentMinLength:
		return vocabulary.NewDefault(opt)
	}
	return vocabulary.Default(), nil
}

// Vocabulary returns the vocabulary the engine resolves against.
func (e *Engine) Vocabulary() *vocabulary.Vocabulary {
	return e.vocab
}

// Config returns the effective configuration, defaults applied.
func (e *Engine) Config() domain.ExtractionConfig {
	return e.cfg
}

// Classify runs only the document classifier.
func (e *Engine) Classify(text string, hint domain.DocumentType) Classification {
	return e.classifier.Classify(NewDocument(text), hint)
}

// Extract runs the whole pipeline on text. The hint is advisory. Extract never fails:
// unreadable input comes back as DocumentUnknown with a low confidence and no entities.
func (e *Engine) Extract(text string, hint domain.DocumentType) *domain.ExtractionResult {
	start := time.Now()
	doc := NewDocument(text)
	cls := Classification{Type: domain.DocumentUnknown}
	if !doc.Blank() {
		cls = e.classifier.Classify(doc, hint)
	}

	result := &domain.ExtractionResult{
		DocumentType: cls.Type,
		Biomarkers:   []domain.ResolvedBiomarker{},
		Variants:     []domain.ResolvedVariant{},
	}
	fields := logrus.Fields{
		"document_type": cls.Type,
		"hint":          hint,
		"genetic_score": cls.GeneticScore,
		"blood_score":   cls.BloodScore,
		"chars":         len(doc.Text),
	}

	if cls.Type == domain.DocumentUnknown {
		result.Confidence = e.scorer.Score(cls.Type, doc, nil, nil)
		e.log.WithFields(fields).Debug("Document could not be classified")
		return result
	}

	cands := e.generate(doc, cls.Type)
	fields["biomarker_candidates"] = len(cands.Biomarkers)
	fields["variant_candidates"] = len(cands.Variants)

	result.Biomarkers = e.resolveBiomarkers(e.aggregator.Biomarkers(cands.Biomarkers))
	result.Variants = e.resolveVariants(e.aggregator.Variants(cands.Variants))

	var sources [][]domain.Strategy
	var confidences []float64
	for _, b := range result.Biomarkers {
		sources = append(sources, b.Sources)
		confidences = append(confidences, b.Confidence)
	}
	for _, v := range result.Variants {
		sources = append(sources, v.Sources)
		confidences = append(confidences, v.Confidence)
	}
	result.Confidence = e.scorer.Score(cls.Type, doc, sources, confidences)

	fields["biomarkers"] = len(result.Biomarkers)
	fields["variants"] = len(result.Variants)
	fields["confidence"] = result.Confidence
	fields["duration_ms"] = time.Since(start).Milliseconds()
	e.log.WithFields(fields).Debug("Extraction completed")
	return result
}

// generate runs every generator registered for dt and unions their output in registration
// order. A generator that panics loses its own output only.
func (e *Engine) generate(doc *Document, dt domain.DocumentType) Candidates {
	gens := e.registry.Generators(dt)
	results := make([]Candidates, len(gens))

	if e.cfg.Parallel {
		var g errgroup.Group
		for i, gen := range gens {
			g.Go(func() error {
				var err error
				results[i], err = runGenerator(gen, doc)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			e.log.WithError(err).Warn("Candidate generator failed")
		}
	} else {
		for i, gen := range gens {
			var err error
			if results[i], err = runGenerator(gen, doc); err != nil {
				e.log.WithError(err).Warn("Candidate generator failed")
			}
		}
	}

	var all Candidates
	for i, r := range results {
		e.log.WithFields(logrus.Fields{
			"strategy":   gens[i].Strategy(),
			"biomarkers": len(r.Biomarkers),
			"variants":   len(r.Variants),
		}).Debug("Generator finished")
		all.Biomarkers = append(all.Biomarkers, r.Biomarkers...)
		all.Variants = append(all.Variants, r.Variants...)
	}
	return all
}

func runGenerator(g Generator, doc *Document) (out Candidates, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = Candidates{}
			err = fmt.Errorf("generator %s panicked: %v", g.Strategy(), r)
		}
	}()
	return g.Generate(doc), nil
}

// resolveBiomarkers attaches canonical keys and canonical unit spellings. Unmatched
// biomarkers are kept.
func (e *Engine) resolveBiomarkers(cands []domain.BiomarkerCandidate) []domain.ResolvedBiomarker {
	out := make([]domain.ResolvedBiomarker, 0, len(cands))
	for _, c := range cands {
		m := e.vocab.ResolveBiomarker(c.Name)
		rb := domain.ResolvedBiomarker{
			BiomarkerCandidate: c,
			RawUnit:            c.Unit,
			CanonicalKey:       m.Key,
			Matched:            m.Matched(),
		}
		rb.Unit = units.Normalize(c.Unit)
		out = append(out, rb)
	}
	return out
}

// resolveVariants attaches canonical keys, fills a missing identifier or gene from the
// matched entry and derives zygosity from the genotype when none was printed. Variants
// that turn out to be the same catalogued call after enrichment are merged.
func (e *Engine) resolveVariants(cands []domain.VariantCandidate) []domain.ResolvedVariant {
	out := make([]domain.ResolvedVariant, 0, len(cands))
	seen := make(map[string]int)
	for _, c := range cands {
		rv := domain.ResolvedVariant{VariantCandidate: c, RawName: c.DisplayName()}

		entry, _ := e.vocab.ResolveVariant(c.Identifier, c.Gene, c.Notation)
		ref := ""
		if entry != nil {
			rv.CanonicalKey = entry.Key
			rv.Matched = true
			if rv.Identifier == "" {
				rv.Identifier = strings.ToLower(entry.Identifier)
			}
			if rv.Gene == "" {
				rv.Gene = entry.Gene
			}
			// catalogue alleles are on the plus strand, like rsID genotypes; notation
			// genotypes follow the gene's strand
			if c.Notation == "" {
				ref = entry.Ref
			}
		}
		if rv.Zygosity == domain.ZygosityNone {
			rv.Zygosity = hgvs.ZygosityOf(rv.Genotype, ref)
		}

		if rv.CanonicalKey != "" {
			key := rv.CanonicalKey + "|" + hgvs.SortedGenotype(rv.Genotype)
			if i, dup := seen[key]; dup {
				for _, s := range rv.Sources {
					out[i].Sources = addSource(out[i].Sources, s)
				}
				continue
			}
			seen[key] = len(out)
		}
		out = append(out, rv)
	}
	return out
}
