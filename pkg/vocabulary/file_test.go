package vocabulary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadExtension(t *testing.T) {
	doc := []byte(`
biomarkers:
  - key: glucose
    aliases: ["glucose plasma fasting venous"]
  - key: vitamin_k
    name: Vitamin K1
    category: vitamin
    unit: ng/mL
    aliases: ["phylloquinone"]
variants:
  - key: mthfr_c677t
    aliases: ["mthfr thermolabile"]
  - key: cyp2c19_2
    identifier: rs4244285
    gene: CYP2C19
    name: CYP2C19*2
    ref: G
    alt: A
`)

	v, err := LoadExtension(doc)
	require.NoError(t, err)

	m := v.ResolveBiomarker("Glucose Plasma Fasting Venous")
	assert.Equal(t, "glucose", m.Key)
	assert.Equal(t, MethodExact, m.Method)

	m = v.ResolveBiomarker("Phylloquinone")
	assert.Equal(t, "vitamin_k", m.Key)

	m = v.ResolveVariantName("MTHFR thermolabile")
	assert.Equal(t, "mthfr_c677t", m.Key)

	e, method := v.ResolveVariant("rs4244285", "", "")
	require.NotNil(t, e)
	assert.Equal(t, "cyp2c19_2", e.Key)
	assert.Equal(t, MethodIdentifier, method)
	assert.True(t, v.IsGene("CYP2C19"))

	// the built-in vocabulary is untouched
	assert.False(t, Default().ResolveBiomarker("Phylloquinone").Matched())
	assert.False(t, Default().ResolveVariantName("MTHFR thermolabile").Matched())
}

func TestLoadExtensionErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", "biomarkers:\n  - key: x\n    colour: red\n"},
		{"alias conflict", "biomarkers:\n  - key: iron\n    aliases: [\"glucose\"]\n"},
		{"identifier conflict", "variants:\n  - key: other\n    identifier: rs4680\n    gene: ABC\n"},
		{"not yaml", "biomarkers: [unterminated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadExtension([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadExtensionEmpty(t *testing.T) {
	v, err := LoadExtension(nil)
	require.NoError(t, err)
	assert.Equal(t, len(Default().Biomarkers()), len(v.Biomarkers()))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocabulary.yaml")
	require.NoError(t, os.WriteFile(path, []byte("biomarkers:\n  - key: ferritin\n    aliases: [\"ferritin level\"]\n"), 0o600))

	v, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ferritin", v.ResolveBiomarker("Ferritin Level").Key)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
