package extraction

import (
	"math"
	"regexp"

	"github.com/labextract-server/internal/domain"
)

// Document-level score components.
const (
	scoreBase        = 40.0
	scoreTableBonus  = 25.0
	scoreSignalStep  = 7.5
	scoreSignalMax   = 15.0
	scoreSignalsCap  = 30.0
	scoreEntitiesCap = 25.0
)

// bonus for the first, second and third entity; every further entity adds one point
var entityBonus = []float64{15, 5, 3}

var keyValueLine = regexp.MustCompile(`^\s*[A-Za-z][^:=]{0,60}[:=]\s*\S`)

// Scorer computes the overall confidence of an extraction.
type Scorer struct {
	unknown float64
}

// NewScorer reads the terminal score for unclassifiable documents from cfg.
func NewScorer(cfg domain.ExtractionConfig) *Scorer {
	return &Scorer{unknown: cfg.UnknownConfidence}
}

// Score combines a base, a bonus when any entity came from table structure, structural
// signals of the document, and a diminishing bonus for the entity count, then scales the
// total by the mean entity confidence. A document with no surviving entities scores zero.
func (s *Scorer) Score(dt domain.DocumentType, doc *Document, sources [][]domain.Strategy, confidences []float64) float64 {
	if dt == domain.DocumentUnknown {
		return s.unknown
	}
	if len(confidences) == 0 {
		return 0
	}

	total := scoreBase
	if anyTable(sources) {
		total += scoreTableBonus
	}

	signals := 0.0
	for _, n := range structuralSignals(dt, doc) {
		signals += math.Min(scoreSignalMax, scoreSignalStep*float64(n))
	}
	total += math.Min(scoreSignalsCap, signals)

	count := 0.0
	for i := range confidences {
		if i < len(entityBonus) {
			count += entityBonus[i]
		} else {
			count++
		}
	}
	total += math.Min(scoreEntitiesCap, count)

	mean := 0.0
	for _, c := range confidences {
		mean += c
	}
	mean /= float64(len(confidences))

	return clampConfidence(total * mean / 100)
}

func anyTable(sources [][]domain.Strategy) bool {
	for _, ss := range sources {
		for _, s := range ss {
			if s.IsTable() {
				return true
			}
		}
	}
	return false
}

// structuralSignals counts the lines showing each kind of report structure: table rows,
// labelled key/value lines, and measurement or identifier lines depending on the type.
func structuralSignals(dt domain.DocumentType, doc *Document) []int {
	var rows, pairs, anchored int
	for _, line := range doc.Lines {
		if cells := splitColumns(line.Text); len(cells) >= 3 && hasDigit(line.Text) {
			rows++
		}
		if keyValueLine.MatchString(line.Text) {
			pairs++
		}
		switch dt {
		case domain.DocumentBiomarker:
			if len(findMeasurements(line.Text)) > 0 {
				anchored++
			}
		case domain.DocumentGenetic:
			if rsIDPattern.MatchString(line.Text) {
				anchored++
			}
		}
	}
	return []int{rows, pairs, anchored}
}
