package filter

// Namespace distinguishes the three tag spaces a bare identifier can resolve
// against: site-level INFO fields, per-sample FORMAT fields, and the set of
// named FILTER tags a record can carry.
type Namespace int

const (
	NSInfo Namespace = iota
	NSFormat
	NSFilter
)

// ValueType is one of the four primitive value domains this engine knows
// about. There is no type inference beyond these.
type ValueType int

const (
	TypeInt ValueType = iota
	TypeFloat
	TypeString
	TypeFlag
)

// Arity mirrors the VCF header arity hints: a fixed count of 1, one entry
// per ALT allele (A), one per REF-and-ALT allele (R), one per genotype (G),
// or an unspecified/variable count (.).
type Arity int

const (
	Arity1 Arity = iota
	ArityA
	ArityR
	ArityG
	ArityDot
)

// UnpackMask tells a Record which parts of itself the compiled program
// actually touches, so a caller can skip unpacking the rest.
type UnpackMask int

const (
	UnpackString UnpackMask = 1 << iota
	UnpackInfo
	UnpackFormat
	UnpackFilter
)

// Variant type bitmask values, as returned by Record.VariantType and
// compared against by %TYPE. A site may combine bits when multi-allelic.
const (
	TypeSNP   = 1 << iota // single nucleotide polymorphism
	TypeIndel             // insertion or deletion
	TypeMNP               // multi-nucleotide polymorphism
	TypeOther             // anything not otherwise classified
	TypeRef               // no variation from the reference
)

// Schema resolves tag names against a record-type header. Parsing the
// underlying header format is out of scope for this package; Schema is the
// seam a caller plugs a concrete implementation into (see pkg/vcf.Header).
type Schema interface {
	// IDOf resolves a bare tag name within a namespace to a stable integer
	// id. ok is false when the namespace has no such tag defined.
	IDOf(namespace Namespace, name string) (id int, ok bool)
	DeclaredType(namespace Namespace, id int) ValueType
	DeclaredArity(namespace Namespace, id int) Arity
	// NSamples is the number of samples every FORMAT-class vector must have.
	NSamples() int
}

// Record is the per-site collaborator the evaluator reads scalars and
// per-sample vectors from. Parsing the record's wire format, and writing it
// back out, are both out of scope for this package.
type Record interface {
	Qual() (value float64, present bool)
	VariantType() int
	AppliedFilters() []int
	InfoValue(id int) (InfoValue, bool)
	FormatValue(id int) (FormatValue, bool)
	Unpack(mask UnpackMask)
}

// InfoValue is a site-scoped scalar or vector, typed per the schema.
type InfoValue interface {
	Flag() bool
	Scalar() (value float64, present bool)
	// At returns the i'th element of a vector INFO field; present is false
	// when the index is out of range, missing, or past the vector's end.
	At(i int) (value float64, present bool)
	String() (value string, present bool)
}

// FormatValue is a per-sample scalar or vector, one entry per sample.
type FormatValue interface {
	// Values returns one float per sample; ok[i] is false when that
	// sample's value is missing.
	Values() (values []float64, ok []bool)
	// ValuesAt returns the i'th sub-element of each sample's vector, for
	// FORMAT fields with arity greater than 1 (e.g. AD[0]).
	ValuesAt(i int) (values []float64, ok []bool)
	Strings() (values []string, ok []bool)
}
