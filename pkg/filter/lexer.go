package filter

import "strings"

// lexeme is one token handed from the lexer to the parser: either a value
// (a number, a quoted string, or a bare identifier still awaiting header
// binding) or an operator/paren/function marker.
type lexeme struct {
	kind     TokenKind
	text     string
	isString bool
}

// lexer is a byte-cursor scanner over an expression string. It has no
// lookahead buffer: each call to next consumes exactly the bytes of the
// token it returns, leaving the cursor at the start of the next one.
type lexer struct {
	src []byte
	pos int
}

func newLexer(expr string) *lexer {
	return &lexer{src: []byte(expr)}
}

func (l *lexer) next() (lexeme, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return lexeme{kind: tokEOF}, nil
	}
	c := l.src[l.pos]

	if isDigit(c) || (c == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1])) {
		return l.scanNumber()
	}

	switch c {
	case '(':
		l.pos++
		return lexeme{kind: TokLeftParen, text: "("}, nil
	case ')':
		l.pos++
		return lexeme{kind: TokRightParen, text: ")"}, nil
	case '"', '\'':
		return l.scanString(c)
	}

	if kind, n, ok := matchOperator(l.src[l.pos:]); ok {
		text := string(l.src[l.pos : l.pos+n])
		l.pos += n
		return lexeme{kind: kind, text: text}, nil
	}

	return l.scanIdentifierOrSpecial()
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
}

func (l *lexer) scanNumber() (lexeme, error) {
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		save := l.pos
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.pos++
		}
		digitsStart := l.pos
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
		if l.pos == digitsStart {
			l.pos = save
		}
	}
	text := string(l.src[start:l.pos])
	if l.pos < len(l.src) && isAlnum(l.src[l.pos]) {
		return lexeme{}, syntaxErrorf("malformed numeric literal near %q", text+string(l.src[l.pos]))
	}
	return lexeme{kind: TokValue, text: text}, nil
}

func (l *lexer) scanString(quote byte) (lexeme, error) {
	start := l.pos + 1
	i := start
	for i < len(l.src) && l.src[i] != quote {
		i++
	}
	if i >= len(l.src) {
		return lexeme{}, syntaxErrorf("missing quotes")
	}
	text := string(l.src[start:i])
	l.pos = i + 1
	return lexeme{kind: TokValue, text: text, isString: true}, nil
}

// namespacePrefixes are the tag namespace prefixes from the grammar's
// ('INFO/'|'FORMAT/'|'FMT/') production. scanIdentifierOrSpecial absorbs one
// of these whole, including its '/', before applying the general
// delimiter-bounded scan -- otherwise '/' (an arithmetic operator) would
// split "INFO/DP" into three tokens instead of the one header.stripNamespace
// expects.
var namespacePrefixes = []string{"FORMAT/", "INFO/", "FMT/"}

// scanIdentifierOrSpecial scans a maximal run of non-delimiter characters,
// absorbing a leading namespace prefix first, then reclassifies the result
// as a reduction-function token when it spells %MAX/%MIN/%AVG and is
// immediately followed by '('.
func (l *lexer) scanIdentifierOrSpecial() (lexeme, error) {
	start := l.pos
	for _, prefix := range namespacePrefixes {
		if hasBytePrefix(l.src, l.pos, prefix) {
			l.pos += len(prefix)
			break
		}
	}
	for l.pos < len(l.src) && !isDelim(l.src[l.pos]) && !isSpace(l.src[l.pos]) {
		l.pos++
	}
	if l.pos == start {
		return lexeme{}, syntaxErrorf("unexpected character %q", string(l.src[l.pos]))
	}
	text := string(l.src[start:l.pos])
	kind := TokValue
	if l.pos < len(l.src) && l.src[l.pos] == '(' {
		switch strings.ToUpper(text) {
		case "%MAX":
			kind = TokMax
		case "%MIN":
			kind = TokMin
		case "%AVG":
			kind = TokAvg
		}
	}
	return lexeme{kind: kind, text: text}, nil
}

var twoCharOps = map[string]TokenKind{
	"==": TokEq,
	"!=": TokNe,
	"<=": TokLe,
	">=": TokGe,
	"&&": TokAndVec,
	"||": TokOrVec,
}

var oneCharOps = map[byte]TokenKind{
	'<': TokLt,
	'>': TokGt,
	'=': TokEq,
	'&': TokAnd,
	'|': TokOr,
	'+': TokAdd,
	'-': TokSub,
	'*': TokMul,
	'/': TokDiv,
}

func matchOperator(rest []byte) (TokenKind, int, bool) {
	if len(rest) >= 2 {
		if k, ok := twoCharOps[string(rest[:2])]; ok {
			return k, 2, true
		}
	}
	if len(rest) >= 1 {
		if k, ok := oneCharOps[rest[0]]; ok {
			return k, 1, true
		}
	}
	return 0, 0, false
}

func hasBytePrefix(src []byte, pos int, prefix string) bool {
	if pos+len(prefix) > len(src) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		if src[pos+i] != prefix[i] {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isAlnum(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

// isDelim reports whether c terminates a bare identifier or numeric
// literal: quotes, comparison/logical operator characters, parens, and the
// four arithmetic operators.
func isDelim(c byte) bool {
	switch c {
	case '"', '\'', '<', '>', '=', '!', '&', '|', '(', ')', '+', '-', '*', '/':
		return true
	}
	return false
}
