package filter

import "strings"

// parser implements a Shunting-Yard translation from infix expression text
// to a flat RPN node array. It never builds an intermediate tree.
type parser struct {
	lex       *lexer
	schema    Schema
	out       []*node
	ops       []TokenKind
	last      TokenKind
	hasLast   bool
	funcDepth int
}

// parseProgram lexes, parses, and binds expr against schema, returning the
// compiled RPN array and the set of record facets it touches.
func parseProgram(schema Schema, expr string) ([]*node, UnpackMask, error) {
	p := &parser{lex: newLexer(expr), schema: schema}
	if err := p.run(); err != nil {
		return nil, 0, err
	}
	if err := rewriteSymbolicOperands(p.out, schema); err != nil {
		return nil, 0, err
	}
	return p.out, computeUnpackMask(p.out), nil
}

func (p *parser) run() error {
	for {
		lx, err := p.lex.next()
		if err != nil {
			return err
		}
		if lx.kind == tokEOF {
			break
		}
		if err := p.feed(lx); err != nil {
			return err
		}
	}
	for len(p.ops) > 0 {
		op := p.popOp()
		if op == TokLeftParen {
			return syntaxErrorf("unbalanced parenthesis")
		}
		p.emitOp(op)
	}
	if len(p.out) == 0 {
		return syntaxErrorf("empty expression")
	}
	if p.funcDepth != 0 {
		return syntaxErrorf("unbalanced %%MAX/%%MIN/%%AVG")
	}
	return nil
}

func (p *parser) feed(lx lexeme) error {
	switch lx.kind {
	case TokValue:
		n, err := p.resolveValue(lx)
		if err != nil {
			return err
		}
		p.out = append(p.out, n)
		p.setLast(TokValue)
		return nil

	case TokLeftParen:
		p.ops = append(p.ops, TokLeftParen)
		p.setLast(TokLeftParen)
		return nil

	case TokRightParen:
		found := false
		for len(p.ops) > 0 {
			op := p.popOp()
			if op == TokLeftParen {
				found = true
				break
			}
			p.emitOp(op)
		}
		if !found {
			return syntaxErrorf("unbalanced parenthesis")
		}
		p.setLast(TokRightParen)
		return nil

	default:
		op := lx.kind
		if op == TokSub && !p.lastIsOperand() {
			// Unary minus: rewrite "-x" as "-1 x *".
			p.out = append(p.out, &node{kind: nodeLiteralNumber, number: -1})
			op = TokMul
		}
		for len(p.ops) > 0 && precedence[p.ops[len(p.ops)-1]] > precedence[op] {
			top := p.popOp()
			p.emitOp(top)
		}
		p.ops = append(p.ops, op)
		if isReduction(op) {
			p.funcDepth++
		}
		p.setLast(lx.kind)
		return nil
	}
}

func (p *parser) emitOp(op TokenKind) {
	if isReduction(op) {
		p.funcDepth--
		p.out = append(p.out, &node{kind: nodeReduce, op: op})
		return
	}
	p.out = append(p.out, &node{kind: nodeBinOp, op: op})
}

func (p *parser) popOp() TokenKind {
	n := len(p.ops) - 1
	op := p.ops[n]
	p.ops = p.ops[:n]
	return op
}

func (p *parser) setLast(k TokenKind) { p.last, p.hasLast = k, true }

func (p *parser) lastIsOperand() bool {
	return p.hasLast && (p.last == TokValue || p.last == TokRightParen)
}

func (p *parser) resolveValue(lx lexeme) (*node, error) {
	if lx.isString {
		return &node{kind: nodeLiteralString, str: lx.text}, nil
	}
	return bind(p.schema, lx.text, p.funcDepth > 0)
}

// rewriteSymbolicOperands resolves the string-literal operand of every
// %TYPE/%FILTER comparison into its symbolic numeric code, in place. After
// this pass %TYPE/%FILTER string literals no longer exist as such.
func rewriteSymbolicOperands(nodes []*node, schema Schema) error {
	for i, n := range nodes {
		switch n.kind {
		case nodeSpecialType:
			j, err := findAdjacentString(nodes, i, "%TYPE")
			if err != nil {
				return err
			}
			code, err := typeCode(nodes[j].str)
			if err != nil {
				return err
			}
			nodes[j].kind = nodeLiteralNumber
			nodes[j].number = float64(code)
		case nodeSpecialFilter:
			j, err := findAdjacentString(nodes, i, "%FILTER")
			if err != nil {
				return err
			}
			code, err := filterCode(schema, nodes[j].str)
			if err != nil {
				return err
			}
			nodes[j].kind = nodeLiteralNumber
			nodes[j].number = float64(code)
		}
	}
	return nil
}

func findAdjacentString(nodes []*node, i int, name string) (int, error) {
	if i+1 < len(nodes) && nodes[i+1].kind == nodeLiteralString {
		return i + 1, nil
	}
	if i-1 >= 0 && nodes[i-1].kind == nodeLiteralString {
		return i - 1, nil
	}
	return 0, syntaxErrorf("%s must be compared against a string literal", name)
}

func typeCode(s string) (int, error) {
	switch strings.ToLower(s) {
	case "snp", "snps":
		return TypeSNP, nil
	case "indel", "indels":
		return TypeIndel, nil
	case "mnp", "mnps":
		return TypeMNP, nil
	case "other":
		return TypeOther, nil
	case "ref":
		return TypeRef, nil
	}
	return 0, syntaxErrorf("unrecognised %%TYPE literal %q", s)
}

func filterCode(schema Schema, name string) (int, error) {
	if name == "." {
		return -1, nil
	}
	id, ok := schema.IDOf(NSFilter, name)
	if !ok {
		return 0, nameErrorf("filter not defined in the header: %q", name)
	}
	return id, nil
}

func computeUnpackMask(nodes []*node) UnpackMask {
	var mask UnpackMask
	for _, n := range nodes {
		switch n.kind {
		case nodeSpecialFilter:
			mask |= UnpackFilter
		case nodeSpecialType:
			mask |= UnpackString
		case nodeTag:
			if n.tag.namespace == NSInfo {
				mask |= UnpackInfo
			} else {
				mask |= UnpackFormat
			}
			if n.tag.valueType == TypeString {
				mask |= UnpackString
			}
		}
	}
	return mask
}
