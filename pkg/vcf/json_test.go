package vcf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SamStudio8/bcftools/pkg/filter"
)

func testHeaderSpec() HeaderSpec {
	return HeaderSpec{
		Info: []FieldSpec{
			{ID: "DP", Type: "Integer", Number: "1"},
			{ID: "DP4", Type: "Integer", Number: "."},
			{ID: "SVTYPE", Type: "String", Number: "1"},
			{ID: "INDEL", Type: "Flag", Number: "0"},
		},
		Format: []FieldSpec{
			{ID: "GQ", Type: "Integer", Number: "1"},
			{ID: "AD", Type: "Integer", Number: "R"},
		},
		Filters: []string{"q10"},
		Samples: []string{"sample1", "sample2"},
	}
}

func TestNewHeaderFromSpec(t *testing.T) {
	h := NewHeaderFromSpec(testHeaderSpec())

	dpID, ok := h.IDOf(filter.NSInfo, "DP")
	require.True(t, ok)
	require.Equal(t, filter.TypeInt, h.DeclaredType(filter.NSInfo, dpID))
	require.Equal(t, filter.Arity1, h.DeclaredArity(filter.NSInfo, dpID))

	dp4ID, ok := h.IDOf(filter.NSInfo, "DP4")
	require.True(t, ok)
	require.Equal(t, filter.ArityDot, h.DeclaredArity(filter.NSInfo, dp4ID))

	_, ok = h.FilterID("q10")
	require.True(t, ok)
	require.Equal(t, []string{"sample1", "sample2"}, h.Samples())
}

func TestNewRecordFromJSONScalarAndVectorInfo(t *testing.T) {
	h := NewHeaderFromSpec(testHeaderSpec())
	dpID, _ := h.IDOf(filter.NSInfo, "DP")
	dp4ID, _ := h.IDOf(filter.NSInfo, "DP4")
	svtypeID, _ := h.IDOf(filter.NSInfo, "SVTYPE")
	indelID, _ := h.IDOf(filter.NSInfo, "INDEL")

	jr := JSONRecord{
		Chrom: "chr1",
		Pos:   100,
		Ref:   "A",
		Alt:   []string{"G"},
		Info: map[string]interface{}{
			"DP":     20.0,
			"DP4":    []interface{}{1.0, 2.0, 3.0, nil},
			"SVTYPE": "SNP",
			"INDEL":  true,
		},
	}
	rec := NewRecordFromJSON(h, jr)
	rec.Unpack(filter.UnpackInfo)

	iv, ok := rec.InfoValue(dpID)
	require.True(t, ok)
	v, present := iv.Scalar()
	require.True(t, present)
	require.Equal(t, 20.0, v)

	dp4, ok := rec.InfoValue(dp4ID)
	require.True(t, ok)
	_, present = dp4.At(3)
	require.False(t, present) // null element is missing
	v3, present := dp4.At(2)
	require.True(t, present)
	require.Equal(t, 3.0, v3)

	svtype, ok := rec.InfoValue(svtypeID)
	require.True(t, ok)
	s, present := svtype.String()
	require.True(t, present)
	require.Equal(t, "SNP", s)

	indel, ok := rec.InfoValue(indelID)
	require.True(t, ok)
	require.True(t, indel.Flag())
}

func TestNewRecordFromJSONFormatVector(t *testing.T) {
	h := NewHeaderFromSpec(testHeaderSpec())
	gqID, _ := h.IDOf(filter.NSFormat, "GQ")
	adID, _ := h.IDOf(filter.NSFormat, "AD")

	jr := JSONRecord{
		Chrom: "chr1",
		Pos:   100,
		Ref:   "A",
		Alt:   []string{"G"},
		Format: map[string][]interface{}{
			"GQ": {40.0, 20.0},
			"AD": {[]interface{}{10.0, 5.0}, []interface{}{8.0, 1.0}},
		},
	}
	rec := NewRecordFromJSON(h, jr)
	rec.Unpack(filter.UnpackFormat)

	gq, ok := rec.FormatValue(gqID)
	require.True(t, ok)
	vals, valsOK := gq.Values()
	require.Equal(t, []float64{40, 20}, vals)
	require.Equal(t, []bool{true, true}, valsOK)

	ad, ok := rec.FormatValue(adID)
	require.True(t, ok)
	altDepths, altOK := ad.ValuesAt(1)
	require.Equal(t, []float64{5, 1}, altDepths)
	require.Equal(t, []bool{true, true}, altOK)
}

func TestNewRecordFromJSONEndToEndFilter(t *testing.T) {
	h := NewHeaderFromSpec(testHeaderSpec())
	prog, err := filter.Compile(h, "DP>10 & %QUAL>20")
	require.NoError(t, err)

	q := 30.0
	jr := JSONRecord{
		Chrom: "chr1",
		Pos:   100,
		Ref:   "A",
		Alt:   []string{"G"},
		Qual:  &q,
		Info:  map[string]interface{}{"DP": 20.0},
	}
	rec := NewRecordFromJSON(h, jr)

	pass, _, err := prog.Evaluate(rec)
	require.NoError(t, err)
	require.True(t, pass)
}
