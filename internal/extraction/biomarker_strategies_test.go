package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labextract-server/internal/domain"
	"github.com/labextract-server/pkg/vocabulary"
)

func newTestEnv() *Env {
	return NewEnv(withDefaults(domain.DefaultExtractionConfig()), vocabulary.Default())
}

func TestTableStructure(t *testing.T) {
	gen := &tableStructure{env: newTestEnv()}

	tests := []struct {
		name       string
		line       string
		want       string
		value      float64
		unit       string
		status     domain.BiomarkerStatus
		confidence float64
	}{
		{"quest row", "GLUCOSE 95 65-99 mg/dL 01", "GLUCOSE", 95, "mg/dL", domain.StatusNormal, 98},
		{"quest row with flag", "CHOLESTEROL, TOTAL 210 H <200 mg/dL 01", "CHOLESTEROL, TOTAL", 210, "mg/dL", domain.StatusHigh, 98},
		{"labcorp row", "TSH 2.1 uIU/mL 0.450-4.500", "TSH", 2.1, "uIU/mL", domain.StatusNormal, 96},
		{"labcorp row low", "Ferritin 12 L ng/mL 30-400", "Ferritin", 12, "ng/mL", domain.StatusLow, 96},
		{"pipe columns", "Ferritin | 150 | 30-400 | ng/mL", "Ferritin", 150, "ng/mL", domain.StatusNormal, 92},
		{"tab columns", "Hemoglobin\t11.2\tL\t13.5-17.5\tg/dL\tLab01", "Hemoglobin", 11.2, "g/dL", domain.StatusLow, 92},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := gen.Generate(NewDocument(tt.line))
			require.Len(t, out.Biomarkers, 1)

			c := out.Biomarkers[0]
			assert.Equal(t, tt.want, c.Name)
			assert.Equal(t, tt.value, c.Value)
			assert.Equal(t, tt.unit, c.Unit)
			assert.Equal(t, tt.status, c.Status)
			assert.Equal(t, tt.confidence, c.Confidence)
			assert.Equal(t, domain.StrategyTableStructure, c.Strategy)
			assert.Equal(t, []domain.Strategy{domain.StrategyTableStructure}, c.Sources)
		})
	}

	for _, line := range []string{
		"Collected: 01/15/2024 08:30",
		"Test Name    Result  Flag  Reference Range  Units",
		"Quest Diagnostics   Patient: Jane Roe   DOB: 03/04/1975",
		"Glucose 95 mg/dL",
	} {
		t.Run(line, func(t *testing.T) {
			assert.Empty(t, gen.Generate(NewDocument(line)).Biomarkers)
		})
	}
}

func TestLabeledRange(t *testing.T) {
	gen := &labeledRange{env: newTestEnv()}

	t.Run("value first", func(t *testing.T) {
		out := gen.Generate(NewDocument("Vitamin D: 32 ng/mL (Reference range: 30-100 ng/mL)"))
		require.Len(t, out.Biomarkers, 1)

		c := out.Biomarkers[0]
		assert.Equal(t, "Vitamin D", c.Name)
		assert.Equal(t, 32.0, c.Value)
		assert.Equal(t, "ng/mL", c.Unit)
		require.NotNil(t, c.Range)
		assert.Equal(t, 30.0, *c.Range.Low)
		assert.Equal(t, 100.0, *c.Range.High)
		assert.Equal(t, domain.StatusNormal, c.Status)
		assert.Equal(t, 90.0, c.Confidence)
	})

	t.Run("range first", func(t *testing.T) {
		out := gen.Generate(NewDocument("Hemoglobin (Reference range: 13.5-17.5 g/dL) 14.2 g/dL"))
		require.Len(t, out.Biomarkers, 1)

		c := out.Biomarkers[0]
		assert.Equal(t, "Hemoglobin", c.Name)
		assert.Equal(t, 14.2, c.Value)
		assert.Equal(t, "g/dL", c.Unit)
		require.NotNil(t, c.Range)
		assert.Equal(t, 13.5, *c.Range.Low)
	})

	t.Run("no range label", func(t *testing.T) {
		assert.Empty(t, gen.Generate(NewDocument("Glucose: 95 mg/dL")).Biomarkers)
	})
}

func TestDelimiterPair(t *testing.T) {
	gen := &delimiterPair{env: newTestEnv()}

	t.Run("several pairs on a line", func(t *testing.T) {
		out := gen.Generate(NewDocument("Sodium: 140 mmol/L, Potassium: 4.2 mmol/L"))
		require.Len(t, out.Biomarkers, 2)
		assert.Equal(t, "Sodium", out.Biomarkers[0].Name)
		assert.Equal(t, 140.0, out.Biomarkers[0].Value)
		assert.Equal(t, "Potassium", out.Biomarkers[1].Name)
		assert.Equal(t, 4.2, out.Biomarkers[1].Value)
		assert.Equal(t, 80.0, out.Biomarkers[1].Confidence)
		assert.Less(t, out.Biomarkers[0].Offset, out.Biomarkers[1].Offset)
	})

	t.Run("leading prose is dropped", func(t *testing.T) {
		out := gen.Generate(NewDocument("Results for John, Glucose: 101 mg/dL"))
		require.Len(t, out.Biomarkers, 1)
		assert.Equal(t, "Glucose", out.Biomarkers[0].Name)
	})

	t.Run("unitless value", func(t *testing.T) {
		out := gen.Generate(NewDocument("INR: 1.1"))
		require.Len(t, out.Biomarkers, 1)
		assert.Empty(t, out.Biomarkers[0].Unit)
	})

	for _, line := range []string{
		"Collected: 01/15/2024",
		"Time: 08:30",
		"Patient Name: 42",
		"Page: 1",
	} {
		t.Run(line, func(t *testing.T) {
			assert.Empty(t, gen.Generate(NewDocument(line)).Biomarkers)
		})
	}
}

func TestUnitAnchored(t *testing.T) {
	gen := &unitAnchored{env: newTestEnv()}

	out := gen.Generate(NewDocument("Test results\nGlucose 95 mg/dL"))
	require.Len(t, out.Biomarkers, 1)
	assert.Equal(t, "Glucose", out.Biomarkers[0].Name)
	assert.Equal(t, 70.0, out.Biomarkers[0].Confidence)

	assert.Empty(t, gen.Generate(NewDocument("Glucose 95 mg/dL")).Biomarkers)
}

func TestFreeForm(t *testing.T) {
	gen := &freeForm{env: newTestEnv()}

	tests := []struct {
		line  string
		name  string
		value float64
	}{
		{"Your glucose was 95 mg/dL", "glucose", 95},
		{"Vitamin B12 450 pg/mL", "Vitamin B12", 450},
		{"Base Excess: -2.0 mmol/L", "Base Excess", -2},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			out := gen.Generate(NewDocument(tt.line))
			require.Len(t, out.Biomarkers, 1)
			assert.Equal(t, tt.name, out.Biomarkers[0].Name)
			assert.Equal(t, tt.value, out.Biomarkers[0].Value)
			assert.Equal(t, 60.0, out.Biomarkers[0].Confidence)
		})
	}

	assert.Empty(t, gen.Generate(NewDocument("DOB 12 mg/dL")).Biomarkers)
	assert.Empty(t, gen.Generate(NewDocument("95 mg/dL")).Biomarkers)
}
