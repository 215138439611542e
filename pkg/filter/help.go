package filter

import "io"

const helpText = `Expression grammar:

  or_expr   := and_expr (('|' | '||') and_expr)*
  and_expr  := cmp_expr (('&' | '&&') cmp_expr)*
  cmp_expr  := add_expr (('<' | '<=' | '=' | '==' | '>' | '>=' | '!=') add_expr)?
  add_expr  := mul_expr (('+' | '-') mul_expr)*
  mul_expr  := unary (('*' | '/') unary)*
  unary     := '-' unary | atom
  atom      := NUMBER | STRING | TAG | '(' or_expr ')'
             | ('%MAX' | '%MIN' | '%AVG') '(' or_expr ')'

Tags:

  NAME            bare INFO tag, or FORMAT tag inside %MAX/%MIN/%AVG; a name
                  only the other namespace defines resolves there
  INFO/NAME       explicit INFO tag
  FORMAT/NAME     explicit per-sample FORMAT tag
  FMT/NAME        alias for FORMAT/NAME
  NAME[i]         select element i of a vector-valued tag
  %QUAL           site quality
  %TYPE           variant type bitmask (compare against "snp"/"indel"/"mnp"/"other"/"ref")
  %FILTER         applied FILTER set (compare against a filter name, or "." for none)

A bare Flag-typed tag evaluates to 1 when the record sets it and 0 when
the record carries it unset; test it directly (e.g. "INDEL") or
explicitly with '=1'/'=0'. A record that does not carry the tag at all
leaves it missing, so it fails "INDEL=0" as well as "INDEL=1".

'&'/'&&' and '|'/'||' combine pointwise across samples when either
operand carries a per-sample vector (a site-level operand applies to every
sample), and combine the two site verdicts otherwise; the single and
doubled spellings give identical results. A missing operand always fails a comparison, and forces
'&'/'&&' to fail outright; '|'/'||' instead pass through whichever
operand is present. %MAX/%MIN/%AVG reduce a per-sample vector to a single
scalar, skipping missing samples.
`

// Help writes a summary of the expression grammar to w.
func Help(w io.Writer) error {
	_, err := io.WriteString(w, helpText)
	return err
}
