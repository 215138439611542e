package vcf

import (
	"strings"

	"github.com/SamStudio8/bcftools/pkg/filter"
)

// classify computes the variant type bitmask a Record reports through
// VariantType, by comparing each ALT allele against REF by length -- the
// same comparison a reference-length classifier uses for SNV/indel calls.
// A multi-allelic site can combine several bits.
func classify(ref string, alts []string) int {
	if len(alts) == 0 {
		return filter.TypeRef
	}
	bits := 0
	for _, alt := range alts {
		bits |= classifyOne(ref, alt)
	}
	return bits
}

func classifyOne(ref, alt string) int {
	switch {
	case alt == "" || alt == "." || alt == ref:
		return filter.TypeRef
	case strings.HasPrefix(alt, "<") || strings.ContainsAny(alt, "[]"):
		return filter.TypeOther // symbolic ALT (<DEL>, ...) or breakend notation
	case len(ref) == 1 && len(alt) == 1:
		return filter.TypeSNP
	case len(ref) == len(alt):
		return filter.TypeMNP
	default:
		return filter.TypeIndel
	}
}
