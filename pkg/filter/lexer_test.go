package filter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, expr string) []lexeme {
	t.Helper()
	l := newLexer(expr)
	var out []lexeme
	for {
		lx, err := l.next()
		require.NoError(t, err)
		if lx.kind == tokEOF {
			return out
		}
		out = append(out, lx)
	}
}

func TestLexerOperators(t *testing.T) {
	cases := []struct {
		expr string
		want []TokenKind
	}{
		{"DP>10", []TokenKind{TokValue, TokGt, TokValue}},
		{"DP>=10", []TokenKind{TokValue, TokGe, TokValue}},
		{"DP==10", []TokenKind{TokValue, TokEq, TokValue}},
		{"DP=10", []TokenKind{TokValue, TokEq, TokValue}},
		{"DP!=10", []TokenKind{TokValue, TokNe, TokValue}},
		{"A&B", []TokenKind{TokValue, TokAnd, TokValue}},
		{"A&&B", []TokenKind{TokValue, TokAndVec, TokValue}},
		{"A|B", []TokenKind{TokValue, TokOr, TokValue}},
		{"A||B", []TokenKind{TokValue, TokOrVec, TokValue}},
		{"(DP+1)*2", []TokenKind{TokLeftParen, TokValue, TokAdd, TokValue, TokRightParen, TokMul, TokValue}},
	}
	for _, c := range cases {
		lexemes := lexAll(t, c.expr)
		require.Len(t, lexemes, len(c.want), c.expr)
		for i, k := range c.want {
			require.Equal(t, k, lexemes[i].kind, "%s: token %d", c.expr, i)
		}
	}
}

func TestLexerNumericLiterals(t *testing.T) {
	cases := []string{"10", "10.5", ".5", "1e3", "1.5e-3", "1E+10"}
	for _, c := range cases {
		lexemes := lexAll(t, c)
		require.Len(t, lexemes, 1, c)
		require.Equal(t, TokValue, lexemes[0].kind, c)
		require.Equal(t, c, lexemes[0].text, c)
	}
}

func TestLexerMalformedNumber(t *testing.T) {
	l := newLexer("10abc")
	_, err := l.next()
	require.Error(t, err)
	require.IsType(t, &SyntaxError{}, errCause(err))
}

func TestLexerStringLiteral(t *testing.T) {
	lexemes := lexAll(t, `%TYPE="indel"`)
	require.Len(t, lexemes, 3)
	require.Equal(t, TokValue, lexemes[2].kind)
	require.True(t, lexemes[2].isString)
	require.Equal(t, "indel", lexemes[2].text)
}

func TestLexerUnterminatedString(t *testing.T) {
	l := newLexer(`%TYPE="indel`)
	_, _ = l.next()
	_, _ = l.next()
	_, err := l.next()
	require.Error(t, err)
}

func TestLexerNamespacedTag(t *testing.T) {
	lexemes := lexAll(t, "INFO/DP>10")
	require.Len(t, lexemes, 3)
	require.Equal(t, "INFO/DP", lexemes[0].text)
}

func TestLexerReductionFunction(t *testing.T) {
	lexemes := lexAll(t, "%MAX(GQ)>20")
	require.Equal(t, TokMax, lexemes[0].kind)
	require.Equal(t, TokLeftParen, lexemes[1].kind)
	require.Equal(t, TokValue, lexemes[2].kind)
	require.Equal(t, "GQ", lexemes[2].text)
	require.Equal(t, TokRightParen, lexemes[3].kind)
}

func TestLexerPercentWithoutParenIsIdentifier(t *testing.T) {
	lexemes := lexAll(t, "%QUAL>30")
	require.Equal(t, TokValue, lexemes[0].kind)
	require.Equal(t, "%QUAL", lexemes[0].text)
}

func errCause(err error) error {
	type causer interface{ Cause() error }
	for err != nil {
		if c, ok := err.(causer); ok {
			err = c.Cause()
			continue
		}
		break
	}
	return err
}
