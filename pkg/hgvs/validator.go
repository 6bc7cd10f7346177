package hgvs

import (
	"regexp"
	"strings"

	"github.com/labextract-server/internal/domain"
)

var (
	// Diploid calls as printed by genotyping reports: CT, C/T, C;T, (C;T).
	genotypePattern = regexp.MustCompile(`^\(?([ACGT])\s*[/;|]?\s*([ACGT])\)?$`)

	// Haploid calls on X/Y/MT positions.
	haploidPattern = regexp.MustCompile(`^\(?([ACGT])\)?$`)
)

// ValidateNotation checks that input is a notation Parse understands.
func ValidateNotation(input string) error {
	_, err := Parse(input)
	return err
}

// NormalizeGenotype upper-cases a genotype call and removes separators, keeping the allele
// order as printed. It reports false for anything that is not a one- or two-allele
// nucleotide call.
func NormalizeGenotype(raw string) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if m := genotypePattern.FindStringSubmatch(s); m != nil {
		return m[1] + m[2], true
	}
	if m := haploidPattern.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	return "", false
}

// SortedGenotype orders the alleles so CT and TC compare equal.
func SortedGenotype(genotype string) string {
	if len(genotype) == 2 && genotype[0] > genotype[1] {
		return string([]byte{genotype[1], genotype[0]})
	}
	return genotype
}

// ZygosityOf derives zygosity from a normalised genotype. Without the reference allele a
// matching pair can only be reported as homozygous.
func ZygosityOf(genotype, ref string) domain.Zygosity {
	switch len(genotype) {
	case 1:
		return domain.ZygosityHemizygous
	case 2:
		if genotype[0] != genotype[1] {
			return domain.ZygosityHeterozygous
		}
		if ref != "" && genotype[:1] == ref {
			return domain.ZygosityWildType
		}
		return domain.ZygosityHomozygous
	}
	return domain.ZygosityNone
}

// GenotypeFor builds the genotype implied by a single-nucleotide change and a zygosity.
func GenotypeFor(ref, alt string, z domain.Zygosity) (string, bool) {
	if len(ref) != 1 || len(alt) != 1 {
		return "", false
	}
	switch z {
	case domain.ZygosityHeterozygous:
		return ref + alt, true
	case domain.ZygosityHomozygous:
		return alt + alt, true
	case domain.ZygosityWildType:
		return ref + ref, true
	case domain.ZygosityHemizygous:
		return alt, true
	}
	return "", false
}

// ParseZygosity reads the words reports use for zygosity.
func ParseZygosity(word string) domain.Zygosity {
	w := strings.ToLower(strings.Join(strings.Fields(word), " "))
	switch w {
	case "+/+":
		return domain.ZygosityHomozygous
	case "+/-":
		return domain.ZygosityHeterozygous
	case "-/-":
		return domain.ZygosityWildType
	}
	w = strings.NewReplacer("-", " ", "_", " ").Replace(w)
	switch w {
	case "homozygous", "homozygote", "hom", "homo", "homozygous variant", "homozygous mutant", "two copies":
		return domain.ZygosityHomozygous
	case "heterozygous", "heterozygote", "het", "hetero", "one copy", "carrier":
		return domain.ZygosityHeterozygous
	case "wild type", "wildtype", "wt", "normal", "negative", "not detected", "no copies":
		return domain.ZygosityWildType
	case "hemizygous", "hemi":
		return domain.ZygosityHemizygous
	}
	return domain.ZygosityNone
}
