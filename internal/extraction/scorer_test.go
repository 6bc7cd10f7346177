package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/labextract-server/internal/domain"
)

func TestScorerScore(t *testing.T) {
	s := NewScorer(withDefaults(domain.DefaultExtractionConfig()))

	tests := []struct {
		name        string
		dt          domain.DocumentType
		text        string
		sources     [][]domain.Strategy
		confidences []float64
		want        float64
	}{
		{
			name: "unknown document",
			dt:   domain.DocumentUnknown,
			text: "Page 1 of 3",
			want: 10,
		},
		{
			name: "no entities",
			dt:   domain.DocumentBiomarker,
			text: "Glucose 95 mg/dL",
			want: 0,
		},
		{
			name: "labelled chemistry lines",
			dt:   domain.DocumentBiomarker,
			text: "Glucose: 95.5 mg/dL\nTotal Cholesterol: 180 mg/dL",
			sources: [][]domain.Strategy{
				{domain.StrategyDelimiterPair, domain.StrategyFreeForm},
				{domain.StrategyDelimiterPair, domain.StrategyFreeForm},
			},
			confidences: []float64{85, 85},
			want:        76.5,
		},
		{
			name:        "vendor table row",
			dt:          domain.DocumentBiomarker,
			text:        "GLUCOSE 95 65-99 mg/dL 01",
			sources:     [][]domain.Strategy{{domain.StrategyTableStructure}},
			confidences: []float64{100},
			want:        80,
		},
		{
			name:        "identifier line",
			dt:          domain.DocumentGenetic,
			text:        "rs1801133: CT",
			sources:     [][]domain.Strategy{{domain.StrategyIdentifierContext}},
			confidences: []float64{90},
			want:        63,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Score(tt.dt, NewDocument(tt.text), tt.sources, tt.confidences)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestScorerBounds(t *testing.T) {
	s := NewScorer(withDefaults(domain.DefaultExtractionConfig()))

	text := ""
	var sources [][]domain.Strategy
	var confidences []float64
	for i := 0; i < 40; i++ {
		text += "Glucose\t95\tmg/dL\t65-99\nSodium: 140 mmol/L\n"
		sources = append(sources, []domain.Strategy{domain.StrategyTableStructure})
		confidences = append(confidences, 100)
	}
	got := s.Score(domain.DocumentBiomarker, NewDocument(text), sources, confidences)
	assert.InDelta(t, 100, got, 0.001)

	more := s.Score(domain.DocumentBiomarker, NewDocument("Glucose: 95 mg/dL"), [][]domain.Strategy{{domain.StrategyDelimiterPair}}, []float64{80})
	less := s.Score(domain.DocumentBiomarker, NewDocument("Glucose: 95 mg/dL"), [][]domain.Strategy{{domain.StrategyDelimiterPair}}, []float64{60})
	assert.Greater(t, more, less)
}
