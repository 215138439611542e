package filter

import "math"

// extract pushes the value of a non-operator node onto the stack, reading
// from rec when the node is a tag or special reference.
func extract(n *node, rec Record, slot *Slot) {
	switch n.kind {
	case nodeLiteralNumber:
		slot.setScalarNumber(n.number)
	case nodeLiteralString:
		slot.setScalarString(n.str)
	case nodeSpecialQual:
		q, ok := rec.Qual()
		if !ok {
			slot.setEmpty()
			return
		}
		slot.setScalarNumber(q)
	case nodeSpecialType:
		slot.setScalarNumber(float64(rec.VariantType()))
		slot.isTypePseudo = true
	case nodeSpecialFilter:
		slot.setEmpty()
		slot.isFilterPseudo = true
	case nodeTag:
		extractTag(n.tag, rec, slot)
	}
}

func extractTag(tb *tagBinding, rec Record, slot *Slot) {
	if tb.namespace == NSInfo {
		extractInfo(tb, rec, slot)
		return
	}
	extractFormat(tb, rec, slot)
}

func extractInfo(tb *tagBinding, rec Record, slot *Slot) {
	iv, ok := rec.InfoValue(tb.headerID)
	if !ok {
		slot.setEmpty()
		return
	}
	switch tb.valueType {
	case TypeFlag:
		slot.setScalarBool(iv.Flag())
	case TypeString:
		s, present := iv.String()
		if !present {
			slot.setEmpty()
			return
		}
		slot.setScalarString(s)
	default:
		if tb.hasIndex {
			v, present := iv.At(tb.index)
			if !present {
				slot.setEmpty()
				return
			}
			slot.setScalarNumber(v)
			return
		}
		v, present := iv.Scalar()
		if !present {
			slot.setEmpty()
			return
		}
		slot.setScalarNumber(v)
	}
}

func extractFormat(tb *tagBinding, rec Record, slot *Slot) {
	fv, ok := rec.FormatValue(tb.headerID)
	if !ok {
		slot.setEmpty()
		return
	}
	if tb.valueType == TypeString {
		vs, present := fv.Strings()
		slot.setVectorStrings(vs, present)
		return
	}
	var vs []float64
	var present []bool
	if tb.hasIndex {
		vs, present = fv.ValuesAt(tb.index)
	} else {
		vs, present = fv.Values()
	}
	slot.setVectorNumbers(vs, present)
}

// applyBinOp computes op(a, b) into a, consuming b.
func applyBinOp(op TokenKind, a, b *Slot, rec Record) error {
	switch {
	case op == TokAdd || op == TokSub || op == TokMul || op == TokDiv:
		return applyArith(op, a, b)
	case isComparison(op):
		if a.isFilterPseudo || b.isFilterPseudo {
			return applyFilterCompare(op, a, b, rec)
		}
		if a.isTypePseudo || b.isTypePseudo {
			return applyTypeCompare(op, a, b)
		}
		if a.isString || b.isString {
			return applyStringCompare(op, a, b)
		}
		return applyCompare(op, a, b)
	case isLogical(op):
		applyLogic(op, a, b)
		return nil
	}
	return arityErrorf("unknown operator %v", op)
}

func arith(op TokenKind, x, y float64) float64 {
	if math.IsNaN(x) || math.IsNaN(y) {
		return math.NaN()
	}
	switch op {
	case TokAdd:
		return x + y
	case TokSub:
		return x - y
	case TokMul:
		return x * y
	case TokDiv:
		return x / y
	}
	panic("filter: unreachable arithmetic operator")
}

func applyArith(op TokenKind, a, b *Slot) error {
	if a.isString || b.isString {
		return typeErrorf("operator %v not supported on string operands", op)
	}
	if isEmpty(a) || isEmpty(b) {
		a.reset()
		return nil
	}
	if a.sampleCount > 0 && b.sampleCount > 0 && a.sampleCount != b.sampleCount {
		return typeErrorf("sample count mismatch in arithmetic operands (%d vs %d)", a.sampleCount, b.sampleCount)
	}

	n := a.sampleCount
	if n == 0 {
		n = b.sampleCount
	}
	if n == 0 {
		r := arith(op, a.values[0], b.values[0])
		a.values[0] = r
		if math.IsNaN(r) {
			a.reset()
		}
		return nil
	}

	aVec, bVec := a.sampleCount > 0, b.sampleCount > 0
	aScalar, bScalar := a.values[0], b.values[0]
	if aVec {
		a.values = growFloats(a.values, n)
	} else {
		a.values = growFloats(a.values[:0], n)
	}
	anyPresent := false
	for i := n - 1; i >= 0; i-- {
		var x, y float64
		if aVec {
			x = a.values[i]
		} else {
			x = aScalar
		}
		if bVec {
			y = b.values[i]
		} else {
			y = bScalar
		}
		r := arith(op, x, y)
		a.values[i] = r
		if !math.IsNaN(r) {
			anyPresent = true
		}
	}
	if !anyPresent {
		a.reset()
		return nil
	}
	a.sampleCount = n
	return nil
}

func cmp(op TokenKind, x, y float64) bool {
	if math.IsNaN(x) || math.IsNaN(y) {
		return false
	}
	switch op {
	case TokLt:
		return x < y
	case TokLe:
		return x <= y
	case TokGt:
		return x > y
	case TokGe:
		return x >= y
	case TokEq:
		return x == y
	case TokNe:
		return x != y
	}
	panic("filter: unreachable comparison operator")
}

func applyCompare(op TokenKind, a, b *Slot) error {
	if isEmpty(a) || isEmpty(b) {
		a.reset()
		a.passSite = passFail
		a.values = append(a.values, 0)
		return nil
	}
	if a.sampleCount > 0 && b.sampleCount > 0 && a.sampleCount != b.sampleCount {
		return typeErrorf("cannot compare vectors of different length (%d vs %d)", a.sampleCount, b.sampleCount)
	}

	n := a.sampleCount
	if n == 0 {
		n = b.sampleCount
	}
	if n == 0 {
		ok := cmp(op, a.values[0], b.values[0])
		a.reset()
		a.values = append(a.values, boolFloat(ok))
		a.passSite = boolToPass(ok)
		return nil
	}

	aScalar, bScalar := a.values[0], b.values[0]
	aVec, bVec := a.sampleCount > 0, b.sampleCount > 0
	passSamples := growBools(a.passSamples, n)
	any := false
	for i := 0; i < n; i++ {
		var x, y float64
		if aVec {
			x = a.values[i]
		} else {
			x = aScalar
		}
		if bVec {
			y = b.values[i]
		} else {
			y = bScalar
		}
		ok := cmp(op, x, y)
		passSamples[i] = ok
		if ok {
			any = true
		}
	}
	a.reset()
	a.passSamples = passSamples
	a.sampleCount = n
	a.values = growFloats(a.values, n)
	for i, v := range passSamples {
		a.values[i] = boolFloat(v)
	}
	a.passSite = boolToPass(any)
	return nil
}

func applyStringCompare(op TokenKind, a, b *Slot) error {
	if op != TokEq && op != TokNe {
		return typeErrorf("operator %v not supported on string operands", op)
	}
	if isEmpty(a) || isEmpty(b) {
		a.reset()
		a.passSite = passFail
		a.values = append(a.values, 0)
		return nil
	}
	if a.isString != b.isString {
		return typeErrorf("cannot compare a string with a number")
	}
	if a.sampleCount > 0 && b.sampleCount > 0 && a.sampleCount != b.sampleCount {
		return typeErrorf("cannot compare string vectors of different length (%d vs %d)", a.sampleCount, b.sampleCount)
	}

	n := a.sampleCount
	if n == 0 {
		n = b.sampleCount
	}
	if n == 0 {
		eq := a.strs[0] == b.strs[0]
		ok := eq
		if op == TokNe {
			ok = !eq
		}
		a.reset()
		a.values = append(a.values, boolFloat(ok))
		a.passSite = boolToPass(ok)
		return nil
	}

	passSamples := growBools(a.passSamples, n)
	any := false
	for i := 0; i < n; i++ {
		av, bv := strAt(a, i), strAt(b, i)
		eq := av == bv
		ok := eq
		if op == TokNe {
			ok = !eq
		}
		passSamples[i] = ok
		if ok {
			any = true
		}
	}
	a.reset()
	a.passSamples = passSamples
	a.sampleCount = n
	a.values = growFloats(a.values, n)
	for i, v := range passSamples {
		a.values[i] = boolFloat(v)
	}
	a.passSite = boolToPass(any)
	return nil
}

func strAt(s *Slot, i int) string {
	if s.sampleCount > 0 {
		return s.strs[i]
	}
	return s.strs[0]
}

// applyFilterCompare implements the %FILTER pseudo-tag's dedicated
// comparator: membership of a header filter id in the record's applied
// filter set, with the "." (no filters applied) special case.
func applyFilterCompare(op TokenKind, a, b *Slot, rec Record) error {
	if op != TokEq && op != TokNe {
		return typeErrorf("operator %v not supported on %%FILTER", op)
	}
	var codeSlot *Slot
	if a.isFilterPseudo {
		codeSlot = b
	} else {
		codeSlot = a
	}
	if isEmpty(codeSlot) {
		return typeErrorf("%%FILTER must be compared against a literal")
	}
	code := int(codeSlot.values[0])
	applied := rec.AppliedFilters()
	present := false
	for _, id := range applied {
		if id == code {
			present = true
			break
		}
	}

	var result bool
	switch op {
	case TokEq:
		if len(applied) == 0 {
			result = code == -1
		} else {
			result = present
		}
	case TokNe:
		if len(applied) == 0 {
			result = code != -1
		} else {
			result = !present
		}
	}
	a.reset()
	a.values = append(a.values, boolFloat(result))
	a.passSite = boolToPass(result)
	return nil
}

// applyTypeCompare implements the %TYPE pseudo-tag's dedicated comparator:
// a bitwise test against the record's variant type bitmask, so a
// multi-allelic site combining several type bits still matches.
func applyTypeCompare(op TokenKind, a, b *Slot) error {
	if op != TokEq && op != TokNe {
		return typeErrorf("operator %v not supported on %%TYPE", op)
	}
	var typeSlot, codeSlot *Slot
	if a.isTypePseudo {
		typeSlot, codeSlot = a, b
	} else {
		typeSlot, codeSlot = b, a
	}
	if isEmpty(typeSlot) || isEmpty(codeSlot) {
		return typeErrorf("%%TYPE must be compared against a literal")
	}
	bits := int(typeSlot.values[0])
	code := int(codeSlot.values[0])
	match := bits&code != 0
	result := match
	if op == TokNe {
		result = !match
	}
	a.reset()
	a.values = append(a.values, boolFloat(result))
	a.passSite = boolToPass(result)
	return nil
}

func applyLogic(op TokenKind, a, b *Slot) {
	isOr := op == TokOr || op == TokOrVec
	aEmpty, bEmpty := isEmpty(a), isEmpty(b)

	if aEmpty || bEmpty {
		if !isOr || (aEmpty && bEmpty) {
			// And/AndVec: any missing operand forces the result to fail
			// outright, regardless of the other operand's value.
			a.reset()
			a.passSite = passFail
			a.values = append(a.values, 0)
			return
		}
		// Or/OrVec: the single present operand passes through.
		if aEmpty {
			copySlot(a, b)
			return
		}
		ok := siteBool(a)
		if a.sampleCount == 0 {
			a.values[0] = boolFloat(ok)
		}
		a.passSite = boolToPass(ok)
		return
	}

	n := a.sampleCount
	if n == 0 {
		n = b.sampleCount
	}
	if n == 0 {
		ok := combine(isOr, siteBool(a), siteBool(b))
		a.reset()
		a.values = append(a.values, boolFloat(ok))
		a.passSite = boolToPass(ok)
		return
	}

	passSamples := growBools(a.passSamples, n)
	any := false
	for i := 0; i < n; i++ {
		ok := combine(isOr, sampleBool(a, i), sampleBool(b, i))
		passSamples[i] = ok
		if ok {
			any = true
		}
	}
	a.reset()
	a.passSamples = passSamples
	a.sampleCount = n
	a.values = growFloats(a.values, n)
	for i, v := range passSamples {
		a.values[i] = boolFloat(v)
	}
	// pass_site tracks "any sample passes" for both And/Or vector
	// combinations, per vector_logic_and's own pass_site bookkeeping --
	// per-sample results stay AND/OR-specific via passSamples above, but
	// the site-level verdict is always the any-reduction of those.
	a.passSite = boolToPass(any)
}

// applyReduce collapses a per-sample vector to a single scalar in place.
// Scalars and strings pass through a reduction unchanged. A fully missing
// value stays missing under %MAX/%MIN and becomes 0 under %AVG.
func applyReduce(op TokenKind, a *Slot) {
	if a.isString {
		return
	}
	if a.sampleCount == 0 {
		if op == TokAvg && isEmpty(a) {
			a.values = append(a.values, 0)
		}
		return
	}
	var sum float64
	count := 0
	best := math.NaN()
	for i := 0; i < a.sampleCount; i++ {
		v := a.values[i]
		if math.IsNaN(v) {
			continue
		}
		switch op {
		case TokMax:
			if math.IsNaN(best) || v > best {
				best = v
			}
		case TokMin:
			if math.IsNaN(best) || v < best {
				best = v
			}
		case TokAvg:
			sum += v
			count++
		}
	}
	a.reset()
	switch op {
	case TokMax, TokMin:
		if math.IsNaN(best) {
			return
		}
		a.values = append(a.values, best)
	case TokAvg:
		if count == 0 {
			a.values = append(a.values, 0)
			return
		}
		a.values = append(a.values, sum/float64(count))
	}
}
