package hgvs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/labextract-server/internal/domain"
)

func TestValidateNotation(t *testing.T) {
	assert.NoError(t, ValidateNotation("c.665C>T"))
	assert.NoError(t, ValidateNotation("A1298C"))

	err := ValidateNotation("not-a-variant")
	var vErr *domain.ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Equal(t, "notation", vErr.Field)
}

func TestNormalizeGenotype(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"CT", "CT", true},
		{"ct", "CT", true},
		{"C/T", "CT", true},
		{"T;C", "TC", true},
		{"(A;G)", "AG", true},
		{"C | T", "CT", true},
		{"A", "A", true},
		{"CTG", "", false},
		{"XY", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeGenotype(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSortedGenotype(t *testing.T) {
	assert.Equal(t, "CT", SortedGenotype("TC"))
	assert.Equal(t, "CT", SortedGenotype("CT"))
	assert.Equal(t, "GG", SortedGenotype("GG"))
	assert.Equal(t, "A", SortedGenotype("A"))
}

func TestZygosityOf(t *testing.T) {
	assert.Equal(t, domain.ZygosityHeterozygous, ZygosityOf("CT", ""))
	assert.Equal(t, domain.ZygosityHomozygous, ZygosityOf("TT", ""))
	assert.Equal(t, domain.ZygosityHomozygous, ZygosityOf("TT", "C"))
	assert.Equal(t, domain.ZygosityWildType, ZygosityOf("CC", "C"))
	assert.Equal(t, domain.ZygosityHemizygous, ZygosityOf("A", ""))
	assert.Equal(t, domain.ZygosityNone, ZygosityOf("", ""))
}

func TestGenotypeFor(t *testing.T) {
	tests := []struct {
		name   string
		z      domain.Zygosity
		want   string
		wantOK bool
	}{
		{"heterozygous", domain.ZygosityHeterozygous, "CT", true},
		{"homozygous", domain.ZygosityHomozygous, "TT", true},
		{"wild type", domain.ZygosityWildType, "CC", true},
		{"hemizygous", domain.ZygosityHemizygous, "T", true},
		{"unknown", domain.ZygosityNone, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := GenotypeFor("C", "T", tt.z)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := GenotypeFor("A", "VAL", domain.ZygosityHomozygous)
	assert.False(t, ok)
}

func TestParseZygosity(t *testing.T) {
	assert.Equal(t, domain.ZygosityHomozygous, ParseZygosity("Homozygous"))
	assert.Equal(t, domain.ZygosityHeterozygous, ParseZygosity("het"))
	assert.Equal(t, domain.ZygosityWildType, ParseZygosity("Wild-Type"))
	assert.Equal(t, domain.ZygosityWildType, ParseZygosity("not_detected"))
	assert.Equal(t, domain.ZygosityNone, ParseZygosity("maybe"))
}
