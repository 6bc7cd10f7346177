package extraction

import (
	"sync"

	"github.com/labextract-server/internal/domain"
)

// Candidates is what one generator found. Biomarker generators fill Biomarkers and
// genetic generators fill Variants.
type Candidates struct {
	Biomarkers []domain.BiomarkerCandidate
	Variants   []domain.VariantCandidate
}

// Generator is one candidate-generation strategy. Generate must be a pure function of the
// document: generators run concurrently and share no mutable state.
type Generator interface {
	Strategy() domain.Strategy
	Generate(doc *Document) Candidates
}

// Registry maps a document type to the generators that run for it. New vendor layouts are
// added by registering another Generator.
type Registry struct {
	mu         sync.RWMutex
	generators map[domain.DocumentType][]Generator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{generators: make(map[domain.DocumentType][]Generator)}
}

// Register adds generators for a document type, after any already registered.
func (r *Registry) Register(dt domain.DocumentType, gens ...Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[dt] = append(r.generators[dt], gens...)
}

// Generators returns a copy of the generators registered for dt.
func (r *Registry) Generators(dt domain.DocumentType) []Generator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Generator(nil), r.generators[dt]...)
}

// DefaultRegistry registers the built-in strategies: five for biomarker reports and five
// for genetic reports.
func DefaultRegistry(env *Env) *Registry {
	r := NewRegistry()
	r.Register(domain.DocumentBiomarker,
		&tableStructure{env: env},
		&labeledRange{env: env},
		&delimiterPair{env: env},
		&unitAnchored{env: env},
		&freeForm{env: env},
	)
	r.Register(domain.DocumentGenetic,
		&geneticTable{env: env},
		&identifierContext{env: env},
		&geneMutation{env: env},
		&genotypePattern{env: env},
		&geneScan{env: env},
	)
	return r
}
