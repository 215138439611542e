package filter

import (
	"strconv"
	"strings"
)

// bind resolves an identifier as scanned by the lexer against schema,
// producing a fully-populated node ready to sit in an RPN program.
// insideReduction is true while binding operands of %MAX/%MIN/%AVG, where a
// bare (unprefixed) tag defaults to the FORMAT namespace instead of INFO;
// either way a bare tag that only the other namespace defines resolves there.
func bind(schema Schema, text string, insideReduction bool) (*node, error) {
	switch text {
	case "%QUAL":
		return &node{kind: nodeSpecialQual}, nil
	case "%TYPE":
		return &node{kind: nodeSpecialType}, nil
	case "%FILTER":
		return &node{kind: nodeSpecialFilter}, nil
	}

	namespace, rest, explicitNS := stripNamespace(text)
	name, index, hasIndex, err := splitIndex(rest)
	if err != nil {
		return nil, err
	}

	if !explicitNS {
		if insideReduction {
			namespace = NSFormat
		} else {
			namespace = NSInfo
		}
	}

	id, ok := schema.IDOf(namespace, name)
	if !ok && !explicitNS {
		// A bare tag its default namespace does not define is looked up in
		// the other namespace before falling back to a numeric literal.
		other := NSFormat
		if namespace == NSFormat {
			other = NSInfo
		}
		if otherID, otherOK := schema.IDOf(other, name); otherOK {
			namespace, id, ok = other, otherID, true
		}
	}
	if !ok {
		if v, numErr := strconv.ParseFloat(text, 64); numErr == nil {
			return &node{kind: nodeLiteralNumber, number: v}, nil
		}
		return nil, nameErrorf("tag not defined in the header: %q", text)
	}

	vt := schema.DeclaredType(namespace, id)
	arity := schema.DeclaredArity(namespace, id)
	if !hasIndex && arity != Arity1 {
		return nil, nameErrorf("tag %q has a non-scalar declared arity and requires a subscript", text)
	}

	return &node{
		kind: nodeTag,
		tag: &tagBinding{
			namespace: namespace,
			headerID:  id,
			hasIndex:  hasIndex,
			index:     index,
			valueType: vt,
		},
	}, nil
}

func stripNamespace(text string) (Namespace, string, bool) {
	switch {
	case strings.HasPrefix(text, "INFO/"):
		return NSInfo, text[len("INFO/"):], true
	case strings.HasPrefix(text, "FORMAT/"):
		return NSFormat, text[len("FORMAT/"):], true
	case strings.HasPrefix(text, "FMT/"):
		return NSFormat, text[len("FMT/"):], true
	}
	return NSInfo, text, false
}

// splitIndex peels a trailing [i] subscript off a tag name.
func splitIndex(text string) (name string, index int, hasIndex bool, err error) {
	open := strings.IndexByte(text, '[')
	if open < 0 {
		return text, 0, false, nil
	}
	if !strings.HasSuffix(text, "]") {
		return "", 0, false, syntaxErrorf("malformed subscript in %q", text)
	}
	idx, convErr := strconv.Atoi(text[open+1 : len(text)-1])
	if convErr != nil {
		return "", 0, false, syntaxErrorf("malformed subscript in %q", text)
	}
	if idx < 0 {
		return "", 0, false, syntaxErrorf("negative subscript in %q", text)
	}
	return text[:open], idx, true, nil
}
