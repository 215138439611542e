package filter

import "math"

// pass_site tri-state, per the value model: a site-level boolean that
// starts out unknown and is only ever set by a comparison or a logical
// combination of comparisons.
const (
	passUnknown int8 = -1
	passFail    int8 = 0
	passPass    int8 = 1
)

// Slot is the run-time value attached to one position of the evaluation
// stack. A compiled Program owns a pool of these and reuses them across
// Evaluate calls: every mutating method truncates a slice to length zero
// and re-grows it rather than allocating a fresh one, so a Program's steady
// state memory footprint is fixed after its first evaluation.
type Slot struct {
	values []float64 // scalar: len 1. per-sample: len == sampleCount. missing: len 0.
	strs   []string  // like values, but for string-typed tags.

	isString    bool
	sampleCount int

	passSite    int8
	passSamples []bool

	// set only for the operand of %FILTER/%TYPE that is itself the special
	// tag (not its string/number literal counterpart), so the comparison
	// dispatcher in eval.go can route to the dedicated comparator.
	isFilterPseudo bool
	isTypePseudo   bool
}

func (s *Slot) reset() {
	s.values = s.values[:0]
	s.strs = s.strs[:0]
	s.isString = false
	s.sampleCount = 0
	s.passSite = passUnknown
	s.passSamples = s.passSamples[:0]
	s.isFilterPseudo = false
	s.isTypePseudo = false
}

func (s *Slot) setEmpty() { s.reset() }

func (s *Slot) setScalarNumber(v float64) {
	s.reset()
	s.values = append(s.values, v)
}

func (s *Slot) setScalarBool(b bool) { s.setScalarNumber(boolFloat(b)) }

func (s *Slot) setScalarString(v string) {
	s.reset()
	s.isString = true
	s.strs = append(s.strs, v)
	s.values = append(s.values, 1) // presence marker; length is no longer load-bearing
}

// setVectorNumbers records a per-sample vector. Elements where ok[i] is
// false are recorded as NaN, which then propagates as "missing" through
// every arithmetic and comparison operator for free. A vector that is
// entirely missing collapses to the fully-empty representation.
func (s *Slot) setVectorNumbers(vs []float64, ok []bool) {
	s.reset()
	s.values = growFloats(s.values, len(vs))
	present := false
	for i, v := range vs {
		if i < len(ok) && ok[i] {
			s.values[i] = v
			present = true
		} else {
			s.values[i] = math.NaN()
		}
	}
	if !present {
		s.values = s.values[:0]
		return
	}
	s.sampleCount = len(vs)
}

func (s *Slot) setVectorStrings(vs []string, ok []bool) {
	s.reset()
	s.isString = true
	s.strs = growStrings(s.strs, len(vs))
	present := false
	for i, v := range vs {
		if i < len(ok) && ok[i] {
			s.strs[i] = v
			present = true
		} else {
			s.strs[i] = ""
		}
	}
	if !present {
		s.strs = s.strs[:0]
		return
	}
	s.sampleCount = len(vs)
	s.values = growFloats(s.values, len(vs))
	for i := range s.values {
		s.values[i] = 1
	}
}

func isEmpty(s *Slot) bool {
	if s.isString {
		return len(s.strs) == 0
	}
	return len(s.values) == 0
}

func growFloats(s []float64, n int) []float64 {
	if cap(s) >= n {
		return s[:n]
	}
	ns := make([]float64, n)
	copy(ns, s)
	return ns
}

func growBools(s []bool, n int) []bool {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]bool, n)
}

func growStrings(s []string, n int) []string {
	if cap(s) >= n {
		return s[:n]
	}
	ns := make([]string, n)
	copy(ns, s)
	return ns
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func boolToPass(b bool) int8 {
	if b {
		return passPass
	}
	return passFail
}

func truthy(v float64) bool { return !math.IsNaN(v) && v != 0 }

func combine(isOr, x, y bool) bool {
	if isOr {
		return x || y
	}
	return x && y
}

func siteBool(s *Slot) bool {
	if isEmpty(s) {
		return false
	}
	if s.sampleCount == 0 {
		return truthy(s.values[0])
	}
	for i := 0; i < s.sampleCount; i++ {
		if truthy(s.values[i]) {
			return true
		}
	}
	return false
}

func sampleBool(s *Slot, i int) bool {
	if isEmpty(s) {
		return false
	}
	if s.sampleCount > 0 {
		return truthy(s.values[i])
	}
	return truthy(s.values[0])
}

func copySlot(dst, src *Slot) {
	dst.reset()
	dst.isString = src.isString
	dst.sampleCount = src.sampleCount
	dst.passSite = src.passSite
	dst.values = append(dst.values, src.values...)
	dst.passSamples = append(dst.passSamples, src.passSamples...)
	dst.strs = append(dst.strs, src.strs...)
}
