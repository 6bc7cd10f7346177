package hgvs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateGeneSymbol(t *testing.T) {
	gv := NewGeneValidator()

	tests := []struct {
		name    string
		symbol  string
		wantErr bool
	}{
		{"empty is allowed", "", false},
		{"standard", "MTHFR", false},
		{"with digits", "CYP1A2", false},
		{"with hyphen", "HLA-A", false},
		{"two letters", "GC", false},
		{"lower case", "mthfr", true},
		{"trailing hyphen", "BRCA-", true},
		{"double hyphen", "AB--C", true},
		{"too long", "ABCDEFGHIJKLMNOP", true},
		{"starts with digit", "1ABC", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gv.ValidateGeneSymbol(tt.symbol)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestKnownGenes(t *testing.T) {
	gv := NewGeneValidator("MTHFR", "comt")
	assert.True(t, gv.IsKnownGene("MTHFR"))
	assert.True(t, gv.IsKnownGene("COMT"))
	assert.True(t, gv.IsKnownGene("mthfr"))
	assert.False(t, gv.IsKnownGene("BRCA1"))

	gv.AddKnownGene("VDR")
	assert.True(t, gv.IsKnownGene("VDR"))
}

func TestFindKnownGenes(t *testing.T) {
	gv := NewGeneValidator("MTHFR", "COMT", "VDR")
	text := "MTHFR C677T and COMT Val158Met; vdr not matched, BRCA1 unknown"

	found := gv.FindKnownGenes(text)
	if assert.Len(t, found, 2) {
		assert.Equal(t, "MTHFR", found[0].Symbol)
		assert.Equal(t, 0, found[0].Start)
		assert.Equal(t, "COMT", found[1].Symbol)
		assert.Equal(t, "COMT", text[found[1].Start:found[1].End])
	}
}
