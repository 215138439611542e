package filter

// fakeSchema and fakeRecord are minimal, hand-rolled stand-ins for the real
// pkg/vcf.Header/Record used only to exercise pkg/filter's own contract
// against the Schema/Record interfaces in isolation.

type fakeSchema struct {
	infoNames []string
	infoTypes []ValueType
	infoArity []Arity

	fmtNames []string
	fmtTypes []ValueType
	fmtArity []Arity

	filterNames []string

	nsamples int
}

func newFakeSchema(nsamples int) *fakeSchema { return &fakeSchema{nsamples: nsamples} }

func (s *fakeSchema) addInfo(name string, vt ValueType, ar Arity) int {
	s.infoNames = append(s.infoNames, name)
	s.infoTypes = append(s.infoTypes, vt)
	s.infoArity = append(s.infoArity, ar)
	return len(s.infoNames) - 1
}

func (s *fakeSchema) addFormat(name string, vt ValueType, ar Arity) int {
	s.fmtNames = append(s.fmtNames, name)
	s.fmtTypes = append(s.fmtTypes, vt)
	s.fmtArity = append(s.fmtArity, ar)
	return len(s.fmtNames) - 1
}

func (s *fakeSchema) addFilter(name string) int {
	s.filterNames = append(s.filterNames, name)
	return len(s.filterNames) - 1
}

func (s *fakeSchema) IDOf(ns Namespace, name string) (int, bool) {
	var names []string
	switch ns {
	case NSInfo:
		names = s.infoNames
	case NSFormat:
		names = s.fmtNames
	case NSFilter:
		names = s.filterNames
	}
	for i, n := range names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

func (s *fakeSchema) DeclaredType(ns Namespace, id int) ValueType {
	if ns == NSInfo {
		return s.infoTypes[id]
	}
	return s.fmtTypes[id]
}

func (s *fakeSchema) DeclaredArity(ns Namespace, id int) Arity {
	if ns == NSInfo {
		return s.infoArity[id]
	}
	return s.fmtArity[id]
}

func (s *fakeSchema) NSamples() int { return s.nsamples }

type fakeRecord struct {
	qual    float64
	qualOK  bool
	vtype   int
	filters []int
	info    map[int]*fakeInfoValue
	format  map[int]*fakeFormatValue
}

func newFakeRecord() *fakeRecord {
	return &fakeRecord{info: map[int]*fakeInfoValue{}, format: map[int]*fakeFormatValue{}}
}

func (r *fakeRecord) Qual() (float64, bool) { return r.qual, r.qualOK }
func (r *fakeRecord) VariantType() int      { return r.vtype }
func (r *fakeRecord) AppliedFilters() []int { return r.filters }
func (r *fakeRecord) Unpack(mask UnpackMask) {}

func (r *fakeRecord) InfoValue(id int) (InfoValue, bool) {
	v, ok := r.info[id]
	if !ok {
		return nil, false
	}
	return v, true
}

func (r *fakeRecord) FormatValue(id int) (FormatValue, bool) {
	v, ok := r.format[id]
	if !ok {
		return nil, false
	}
	return v, true
}

type fakeInfoValue struct {
	flag     bool
	scalar   float64
	scalarOK bool
	vec      []float64
	vecOK    []bool
	str      string
	strOK    bool
}

func (v *fakeInfoValue) Flag() bool             { return v.flag }
func (v *fakeInfoValue) Scalar() (float64, bool) { return v.scalar, v.scalarOK }
func (v *fakeInfoValue) String() (string, bool)  { return v.str, v.strOK }

func (v *fakeInfoValue) At(i int) (float64, bool) {
	if i < 0 || i >= len(v.vec) {
		return 0, false
	}
	if i < len(v.vecOK) && !v.vecOK[i] {
		return 0, false
	}
	return v.vec[i], true
}

type fakeFormatValue struct {
	values []float64
	ok     []bool

	atIndex   map[int][]float64
	atIndexOK map[int][]bool

	strs  []string
	strOK []bool
}

func (v *fakeFormatValue) Values() ([]float64, []bool) { return v.values, v.ok }
func (v *fakeFormatValue) Strings() ([]string, []bool) { return v.strs, v.strOK }

func (v *fakeFormatValue) ValuesAt(i int) ([]float64, []bool) {
	return v.atIndex[i], v.atIndexOK[i]
}
