package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labextract-server/internal/domain"
	"github.com/labextract-server/pkg/hgvs"
)

func TestGeneticTable(t *testing.T) {
	gen := &geneticTable{env: newTestEnv()}

	t.Run("genotyping panel row", func(t *testing.T) {
		out := gen.Generate(NewDocument("rs1801133\tMTHFR\tC/T\tHeterozygous"))
		require.Len(t, out.Variants, 1)

		v := out.Variants[0]
		assert.Equal(t, "rs1801133", v.Identifier)
		assert.Equal(t, "MTHFR", v.Gene)
		assert.Equal(t, "CT", v.Genotype)
		assert.Equal(t, domain.ZygosityHeterozygous, v.Zygosity)
		assert.Equal(t, 95.0, v.Confidence)
		assert.Equal(t, domain.StrategyGeneticTable, v.Strategy)
	})

	t.Run("raw data export", func(t *testing.T) {
		out := gen.Generate(NewDocument("rs4680\t22\t19951271\tAG\nrs1801133\t1\t11856378\tCT"))
		require.Len(t, out.Variants, 2)
		assert.Equal(t, "rs4680", out.Variants[0].Identifier)
		assert.Equal(t, "AG", out.Variants[0].Genotype)
		assert.Equal(t, "rs1801133", out.Variants[1].Identifier)
		assert.Greater(t, out.Variants[1].Offset, out.Variants[0].Offset)
	})

	t.Run("rows without a genotype", func(t *testing.T) {
		assert.Empty(t, gen.Generate(NewDocument("rsid\tchromosome\tposition\tgenotype")).Variants)
		assert.Empty(t, gen.Generate(NewDocument("rs4680\t22\t19951271")).Variants)
	})
}

func TestIdentifierContext(t *testing.T) {
	gen := &identifierContext{env: newTestEnv()}

	tests := []struct {
		name      string
		text      string
		ids       []string
		genotypes []string
		gene      string
	}{
		{"colon", "rs1801133: CT", []string{"rs1801133"}, []string{"CT"}, ""},
		{"gene in parentheses", "rs1801133 (MTHFR) result C/T", []string{"rs1801133"}, []string{"CT"}, "MTHFR"},
		{"two on a line", "rs4680 AG rs1801133 TT", []string{"rs4680", "rs1801133"}, []string{"AG", "TT"}, ""},
		{"upper case id", "RS4680 - A;G", []string{"rs4680"}, []string{"AG"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := gen.Generate(NewDocument(tt.text))
			require.Len(t, out.Variants, len(tt.ids))
			for i, v := range out.Variants {
				assert.Equal(t, tt.ids[i], v.Identifier)
				assert.Equal(t, tt.genotypes[i], v.Genotype)
				assert.Equal(t, 90.0, v.Confidence)
			}
			assert.Equal(t, tt.gene, out.Variants[0].Gene)
		})
	}

	assert.Empty(t, gen.Generate(NewDocument("rs1801133 was not tested")).Variants)
}

func TestGeneMutation(t *testing.T) {
	gen := &geneMutation{env: newTestEnv()}

	t.Run("genotype derived from zygosity", func(t *testing.T) {
		out := gen.Generate(NewDocument("MTHFR C677T heterozygous"))
		require.Len(t, out.Variants, 1)

		v := out.Variants[0]
		assert.Equal(t, "MTHFR", v.Gene)
		assert.Equal(t, "C677T", v.Notation)
		assert.Equal(t, "CT", hgvs.SortedGenotype(v.Genotype))
		assert.Equal(t, domain.ZygosityHeterozygous, v.Zygosity)
		assert.Equal(t, 80.0, v.Confidence)
	})

	t.Run("printed genotype and identifier", func(t *testing.T) {
		out := gen.Generate(NewDocument("MTHFR C677T (rs1801133) TT"))
		require.Len(t, out.Variants, 1)
		assert.Equal(t, "TT", out.Variants[0].Genotype)
		assert.Equal(t, "rs1801133", out.Variants[0].Identifier)
	})

	t.Run("notation without zygosity or genotype", func(t *testing.T) {
		assert.Empty(t, gen.Generate(NewDocument("MTHFR C677T")).Variants)
	})
}

func TestGenotypePattern(t *testing.T) {
	gen := &genotypePattern{env: newTestEnv()}

	t.Run("subject on the previous line", func(t *testing.T) {
		out := gen.Generate(NewDocument("COMT rs4680\nGenotype: A/G"))
		require.Len(t, out.Variants, 1)

		v := out.Variants[0]
		assert.Equal(t, "rs4680", v.Identifier)
		assert.Equal(t, "COMT", v.Gene)
		assert.Equal(t, "AG", v.Genotype)
		assert.Equal(t, 70.0, v.Confidence)
	})

	t.Run("subject on the same line", func(t *testing.T) {
		out := gen.Generate(NewDocument("MTHFR result: CT"))
		require.Len(t, out.Variants, 1)
		assert.Equal(t, "MTHFR", out.Variants[0].Gene)
	})

	t.Run("no subject", func(t *testing.T) {
		assert.Empty(t, gen.Generate(NewDocument("Genotype: A/G")).Variants)
	})
}

func TestGeneScan(t *testing.T) {
	gen := &geneScan{env: newTestEnv()}

	t.Run("gene and genotype", func(t *testing.T) {
		out := gen.Generate(NewDocument("VDR: TT"))
		require.Len(t, out.Variants, 1)
		assert.Equal(t, "VDR", out.Variants[0].Gene)
		assert.Equal(t, "TT", out.Variants[0].Genotype)
		assert.Equal(t, 60.0, out.Variants[0].Confidence)
	})

	t.Run("single catalogued variant with zygosity", func(t *testing.T) {
		out := gen.Generate(NewDocument("COMT heterozygous"))
		require.Len(t, out.Variants, 1)
		assert.Equal(t, "AG", hgvs.SortedGenotype(out.Variants[0].Genotype))
		assert.Equal(t, domain.ZygosityHeterozygous, out.Variants[0].Zygosity)
	})

	t.Run("several catalogued variants need a genotype", func(t *testing.T) {
		assert.Empty(t, gen.Generate(NewDocument("VDR heterozygous")).Variants)
	})
}
