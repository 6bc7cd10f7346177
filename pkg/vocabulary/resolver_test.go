package vocabulary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Glucose", "glucose"},
		{"  GLUCOSE, Serum ", "glucose"},
		{"Total Cholesterol", "cholesterol"},
		{"Cholesterol, Total", "cholesterol"},
		{"Blood Urea Nitrogen", "ureanitrogen"},
		{"White Blood Cells", "whitebloodcells"},
		{"HDL-C", "hdlc"},
		{"Vitamin D, 25-OH", "vitamind25oh"},
		{"Total", "total"},
		{"Ｇｌｕｃｏｓｅ", "glucose"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.in))
		})
	}
}

func TestResolveBiomarker(t *testing.T) {
	v := Default()

	tests := []struct {
		name   string
		raw    string
		key    string
		method Method
	}{
		{"exact", "Glucose", "glucose", MethodExact},
		{"exact alias", "HbA1c", "hemoglobin_a1c", MethodExact},
		{"qualifier stripped", "Total Cholesterol", "total_cholesterol", MethodExact},
		{"trailing qualifier", "Ferritin, Serum", "ferritin", MethodExact},
		{"punctuation", "ALT (SGPT)", "alt", MethodExact},
		{"name contains alias", "Glucose Random Venous", "glucose", MethodContainment},
		{"longest alias wins", "HDL Cholesterol Direct", "hdl_cholesterol", MethodContainment},
		{"alias contains name", "Homocyst", "homocysteine", MethodContainment},
		{"ratio entry", "ALBUMIN/GLOBULIN RATIO", "albumin_globulin_ratio", MethodExact},
		{"ratio abbreviation", "A/G Ratio", "albumin_globulin_ratio", MethodExact},
		{"urine analyte", "Urine Creatinine", "urine_creatinine", MethodExact},
		{"ratio is not its numerator", "Iron/TIBC Ratio", "", MethodNone},
		{"urine is not serum", "Creatinine, 24 Hr Urine", "", MethodNone},
		{"alias inside a longer word", "Prealbumin", "", MethodNone},
		{"bare ratio", "Ratio", "", MethodNone},
		{"bare count", "Count", "", MethodNone},
		{"fuzzy collision", "Ca", "calcium", MethodFuzzy},
		{"fuzzy abbreviation", "Vit D", "vitamin_d", MethodFuzzy},
		{"miss", "Widget Factor", "", MethodNone},
		{"empty", "", "", MethodNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := v.ResolveBiomarker(tt.raw)
			assert.Equal(t, tt.key, m.Key)
			assert.Equal(t, tt.method, m.Method)
			assert.Equal(t, tt.key != "", m.Matched())
		})
	}
}

func TestResolveBiomarkerIsStable(t *testing.T) {
	v := Default()
	for _, raw := range []string{"Glucose", "LDL Chol Calc", "Widget Factor", "Vit D", "Homocyst"} {
		first := v.ResolveBiomarker(raw)
		for i := 0; i < 20; i++ {
			assert.Equal(t, first, v.ResolveBiomarker(raw), raw)
		}
	}
}

func TestResolveVariant(t *testing.T) {
	v := Default()

	t.Run("identifier", func(t *testing.T) {
		e, m := v.ResolveVariant("RS1801133", "", "")
		require.NotNil(t, e)
		assert.Equal(t, "mthfr_c677t", e.Key)
		assert.Equal(t, MethodIdentifier, m)
	})

	t.Run("gene and notation spellings", func(t *testing.T) {
		for _, notation := range []string{"C677T", "c.665C>T", "p.Ala222Val", "Ala222Val", "A222V"} {
			e, m := v.ResolveVariant("", "mthfr", notation)
			require.NotNil(t, e, notation)
			assert.Equal(t, "mthfr_c677t", e.Key, notation)
			assert.Equal(t, MethodNotation, m)
		}
	})

	t.Run("gene with one entry", func(t *testing.T) {
		e, m := v.ResolveVariant("", "COMT", "")
		require.NotNil(t, e)
		assert.Equal(t, "comt_v158m", e.Key)
		assert.Equal(t, MethodGene, m)
	})

	t.Run("gene with several entries", func(t *testing.T) {
		e, m := v.ResolveVariant("", "MTHFR", "")
		assert.Nil(t, e)
		assert.Equal(t, MethodNone, m)
	})

	t.Run("unknown identifier", func(t *testing.T) {
		e, _ := v.ResolveVariant("rs999999999", "", "")
		assert.Nil(t, e)
	})
}

func TestResolveVariantName(t *testing.T) {
	v := Default()

	tests := []struct {
		raw    string
		key    string
		method Method
	}{
		{"rs4680", "comt_v158m", MethodIdentifier},
		{"MTHFR C677T", "mthfr_c677t", MethodExact},
		{"COMT Val158Met", "comt_v158m", MethodExact},
		{"MTHFR c.1286A>C", "mthfr_a1298c", MethodNotation},
		{"HFE p.Cys282Tyr", "hfe_c282y", MethodNotation},
		{"FTO", "fto_rs9939609", MethodGene},
		{"rs1", "", MethodNone},
		{"BRCA1 c.68_69delAG", "", MethodNone},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			m := v.Resolve(KindVariant, tt.raw)
			assert.Equal(t, tt.key, m.Key)
			assert.Equal(t, tt.method, m.Method)
		})
	}
}

func TestNewRejectsConflicts(t *testing.T) {
	t.Run("biomarker alias on two keys", func(t *testing.T) {
		_, err := New([]BiomarkerEntry{
			{Key: "a", Name: "Alpha", Aliases: []string{"shared"}},
			{Key: "b", Name: "Beta", Aliases: []string{"Shared"}},
		}, nil)
		assert.Error(t, err)
	})

	t.Run("duplicate identifier", func(t *testing.T) {
		_, err := New(nil, []VariantEntry{
			{Key: "a", Identifier: "rs1", Gene: "AAA"},
			{Key: "b", Identifier: "RS1", Gene: "BBB"},
		})
		assert.Error(t, err)
	})

	t.Run("invalid gene", func(t *testing.T) {
		_, err := New(nil, []VariantEntry{{Key: "a", Identifier: "rs1", Gene: "bad gene"}})
		assert.Error(t, err)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := New([]BiomarkerEntry{{Name: "Nameless"}}, nil)
		assert.Error(t, err)
	})
}

func TestDefaultVocabularyShape(t *testing.T) {
	v := Default()
	assert.GreaterOrEqual(t, len(v.Biomarkers()), 60)
	assert.GreaterOrEqual(t, len(v.Variants()), 35)
	assert.True(t, v.IsGene("MTHFR"))
	assert.True(t, v.IsGene("vdr"))
	assert.False(t, v.IsGene("NOTAGENE"))

	e, ok := v.Biomarker("glucose")
	assert.True(t, ok)
	assert.Equal(t, "Glucose", e.Name)

	_, ok = v.Variant("missing")
	assert.False(t, ok)

	// callers get copies
	list := v.Biomarkers()
	list[0].Name = "changed"
	again, _ := v.Biomarker(list[0].Key)
	assert.NotEqual(t, "changed", again.Name)
}

func TestFindGenes(t *testing.T) {
	found := Default().FindGenes("Results: MTHFR heterozygous, COMT homozygous")
	require.Len(t, found, 2)
	assert.Equal(t, "MTHFR", found[0].Symbol)
	assert.Equal(t, "COMT", found[1].Symbol)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Variants")
	require.NoError(t, err)
	assert.Equal(t, KindVariant, k)

	k, err = ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindBiomarker, k)

	_, err = ParseKind("proteins")
	assert.Error(t, err)
}
