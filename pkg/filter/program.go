package filter

import (
	"github.com/sirupsen/logrus"
)

// Program is a compiled filter expression, bound against a Schema and ready
// to evaluate against any Record drawn from that same schema. A Program is
// not safe for concurrent use: Evaluate reuses an internal scratch pool
// across calls.
type Program struct {
	schema     Schema
	rpn        []*node
	unpackMask UnpackMask
	pool       []*Slot
	cursor     int
	log        *logrus.Entry
}

// Compile lexes, parses, and binds expr against schema, returning a Program
// ready to Evaluate records drawn from that schema.
func Compile(schema Schema, expr string) (*Program, error) {
	rpn, mask, err := parseProgram(schema, expr)
	if err != nil {
		return nil, err
	}
	p := &Program{
		schema:     schema,
		rpn:        rpn,
		unpackMask: mask,
		pool:       make([]*Slot, len(rpn)),
		log:        logrus.WithField("component", "filter"),
	}
	for i := range p.pool {
		p.pool[i] = &Slot{}
	}
	p.log.WithFields(logrus.Fields{
		"nodes":  len(rpn),
		"unpack": mask,
	}).Debug("compiled expression")
	return p, nil
}

// Evaluate runs the compiled program against rec, returning whether the
// site as a whole passes and, when the program's final value carries a
// per-sample vector, a pass/fail flag for every sample. The verdict comes
// from the final slot's pass_site whenever a comparison or logical
// combination set it; a bare tag that reaches the top of the stack
// unevaluated (e.g. the whole expression is just "INDEL") falls back to the
// slot's own truthiness instead, since pass_site was never assigned for it.
// When the final value is a site-level scalar (no sample vector ever made
// it to the top of the stack), the site verdict is broadcast across every
// sample -- this mirrors the reference evaluator's own fallback exactly.
func (p *Program) Evaluate(rec Record) (sitePass bool, samplePass []bool, err error) {
	rec.Unpack(p.unpackMask)

	p.cursor = 0
	stack := make([]*Slot, 0, len(p.rpn))
	for _, n := range p.rpn {
		switch n.kind {
		case nodeBinOp:
			if len(stack) < 2 {
				return false, nil, arityErrorf("stack underflow evaluating %v", n.op)
			}
			b := stack[len(stack)-1]
			a := stack[len(stack)-2]
			stack = stack[:len(stack)-1]
			if err := applyBinOp(n.op, a, b, rec); err != nil {
				return false, nil, err
			}
		case nodeReduce:
			if len(stack) < 1 {
				return false, nil, arityErrorf("stack underflow evaluating %v", n.op)
			}
			applyReduce(n.op, stack[len(stack)-1])
		default:
			slot := p.nextScratchSlot()
			extract(n, rec, slot)
			stack = append(stack, slot)
		}
	}
	if len(stack) != 1 {
		return false, nil, arityErrorf("program left %d values on the stack, expected 1", len(stack))
	}

	final := stack[0]
	nsamples := p.schema.NSamples()
	if final.sampleCount > 0 {
		samplePass = make([]bool, final.sampleCount)
		if final.passSite == passUnknown {
			for i := range samplePass {
				samplePass[i] = truthy(final.values[i])
				if samplePass[i] {
					sitePass = true
				}
			}
			return sitePass, samplePass, nil
		}
		copy(samplePass, final.passSamples)
		sitePass = final.passSite == passPass
		return sitePass, samplePass, nil
	}

	if final.passSite == passUnknown {
		sitePass = !isEmpty(final) && truthy(final.values[0])
	} else {
		sitePass = final.passSite == passPass
	}
	samplePass = make([]bool, nsamples)
	for i := range samplePass {
		samplePass[i] = sitePass
	}
	return sitePass, samplePass, nil
}

func (p *Program) nextScratchSlot() *Slot {
	s := p.pool[p.cursor]
	p.cursor++
	s.reset()
	return s
}

// Close releases the Program's scratch pool. A closed Program must not be
// evaluated again.
func (p *Program) Close() {
	p.pool = nil
	p.rpn = nil
}
