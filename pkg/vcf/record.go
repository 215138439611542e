package vcf

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/SamStudio8/bcftools/pkg/filter"
)

// Record is one decoded VCF data line. INFO and FORMAT fields are parsed
// lazily, on the first Unpack call that asks for them, matching the mask
// the compiled Program actually needs.
type Record struct {
	header *Header

	chrom, id, ref string
	pos            int
	alt            []string
	qual           float64
	qualOK         bool

	filterRaw string
	infoRaw   string
	formatRaw string
	sampleRaw []string

	unpacked filter.UnpackMask
	filters  []int
	info     map[int]*InfoValue
	format   map[int]*FormatValue
	vtype    int
}

// ParseRecord decodes one tab-separated VCF data line against header.
func ParseRecord(header *Header, line string) (*Record, error) {
	cols := strings.Split(line, "\t")
	if len(cols) < 8 {
		return nil, errors.Errorf("vcf: malformed record: expected at least 8 columns, got %d", len(cols))
	}
	pos, err := strconv.Atoi(cols[1])
	if err != nil {
		return nil, errors.Wrapf(err, "vcf: malformed POS %q", cols[1])
	}
	r := &Record{
		header:    header,
		chrom:     cols[0],
		pos:       pos,
		id:        cols[2],
		ref:       cols[3],
		alt:       splitAlt(cols[4]),
		filterRaw: cols[6],
		infoRaw:   cols[7],
	}
	if cols[5] != "." {
		q, err := strconv.ParseFloat(cols[5], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "vcf: malformed QUAL %q", cols[5])
		}
		r.qual, r.qualOK = q, true
	}
	if len(cols) > 8 {
		r.formatRaw = cols[8]
		r.sampleRaw = cols[9:]
	}
	return r, nil
}

// JSONRecord is the decoded shape of one newline-delimited JSON record fed
// to the CLI: it carries the same columns Record exposes through its
// accessors, plus INFO/FORMAT and FILTER values, so a caller can
// decode with json-iterator and hand the result to NewRecordFromJSON
// without any VCF text parsing. Info values are a plain number, string, or
// bool (for Flag fields) per tag; vector-valued INFO fields use a JSON
// array, with `null` elements marking a missing entry. Format values are
// one array entry per sample, each either a scalar or (for FORMAT fields
// with arity greater than 1) a nested array.
type JSONRecord struct {
	Chrom   string                    `json:"chrom"`
	Pos     int                       `json:"pos"`
	ID      string                    `json:"id"`
	Ref     string                    `json:"ref"`
	Alt     []string                  `json:"alt"`
	Qual    *float64                  `json:"qual,omitempty"`
	Filters []string                  `json:"filters,omitempty"`
	Info    map[string]interface{}    `json:"info,omitempty"`
	Format  map[string][]interface{}  `json:"format,omitempty"`
}

// NewRecordFromJSON builds a Record directly from a decoded JSONRecord,
// resolving its INFO/FORMAT keys against header and typing each value per
// its declared Type/Number. The result is fully unpacked already -- there
// is no raw wire text left to parse lazily.
func NewRecordFromJSON(header *Header, jr JSONRecord) *Record {
	r := &Record{
		header: header,
		chrom:  jr.Chrom,
		pos:    jr.Pos,
		id:     jr.ID,
		ref:    jr.Ref,
		alt:    jr.Alt,
		info:   map[int]*InfoValue{},
		format: map[int]*FormatValue{},
	}
	if jr.Qual != nil {
		r.qual, r.qualOK = *jr.Qual, true
	}
	for _, name := range jr.Filters {
		if id, ok := header.FilterID(name); ok {
			r.filters = append(r.filters, id)
		}
	}
	for key, raw := range jr.Info {
		id, ok := header.infoByName[key]
		if !ok {
			continue
		}
		r.info[id] = infoValueFromJSON(header.infoDefs[id], raw)
	}
	nsamples := len(header.samples)
	for key, perSample := range jr.Format {
		id, ok := header.fmtByName[key]
		if !ok {
			continue
		}
		r.format[id] = formatValueFromJSON(header.fmtDefs[id], perSample, nsamples)
	}
	r.vtype = classify(r.ref, r.alt)
	r.unpacked = filter.UnpackString | filter.UnpackInfo | filter.UnpackFormat | filter.UnpackFilter
	return r
}

func infoValueFromJSON(def fieldDef, raw interface{}) *InfoValue {
	iv := &InfoValue{}
	switch def.vtype {
	case filter.TypeFlag:
		iv.flagSet, _ = raw.(bool)
	case filter.TypeString:
		iv.str, iv.strOK = raw.(string)
	default:
		elems, ok := raw.([]interface{})
		if !ok {
			elems = []interface{}{raw}
		}
		iv.vec = make([]float64, len(elems))
		iv.vecOK = make([]bool, len(elems))
		for i, e := range elems {
			iv.vec[i], iv.vecOK[i] = jsonNumber(e)
		}
	}
	return iv
}

func formatValueFromJSON(def fieldDef, perSample []interface{}, nsamples int) *FormatValue {
	fv := &FormatValue{}
	if def.vtype == filter.TypeString {
		fv.strs = make([]string, nsamples)
		fv.strOK = make([]bool, nsamples)
		for s := 0; s < nsamples && s < len(perSample); s++ {
			fv.strs[s], fv.strOK[s] = perSample[s].(string)
		}
		return fv
	}
	fv.values = make([]float64, nsamples)
	fv.ok = make([]bool, nsamples)
	fv.atIndex = map[int][]float64{}
	fv.atIndexOK = map[int][]bool{}
	for s := 0; s < nsamples && s < len(perSample); s++ {
		elems, isVec := perSample[s].([]interface{})
		if !isVec {
			elems = []interface{}{perSample[s]}
		}
		for j, e := range elems {
			f, ok := jsonNumber(e)
			if j == 0 {
				fv.values[s], fv.ok[s] = f, ok
			}
			sub, subOK := fv.atIndex[j], fv.atIndexOK[j]
			if sub == nil {
				sub = make([]float64, nsamples)
				subOK = make([]bool, nsamples)
				fv.atIndex[j], fv.atIndexOK[j] = sub, subOK
			}
			sub[s], subOK[s] = f, ok
		}
	}
	return fv
}

func jsonNumber(v interface{}) (float64, bool) {
	if v == nil {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

func splitAlt(s string) []string {
	if s == "." {
		return nil
	}
	return strings.Split(s, ",")
}

// Unpack implements filter.Record: it lazily parses only the facets named
// by mask that haven't already been parsed.
func (r *Record) Unpack(mask filter.UnpackMask) {
	need := mask &^ r.unpacked
	if need == 0 {
		return
	}
	if need&filter.UnpackFilter != 0 {
		r.unpackFilter()
	}
	if need&filter.UnpackInfo != 0 {
		r.unpackInfo()
	}
	if need&filter.UnpackFormat != 0 {
		r.unpackFormat()
	}
	r.vtype = classify(r.ref, r.alt)
	r.unpacked |= need
}

func (r *Record) unpackFilter() {
	r.filters = nil
	if r.filterRaw == "" || r.filterRaw == "." || strings.EqualFold(r.filterRaw, "PASS") {
		return
	}
	for _, name := range strings.Split(r.filterRaw, ";") {
		if id, ok := r.header.FilterID(name); ok {
			r.filters = append(r.filters, id)
		}
	}
}

func (r *Record) unpackInfo() {
	r.info = map[int]*InfoValue{}
	if r.infoRaw == "" || r.infoRaw == "." {
		return
	}
	for _, kv := range strings.Split(r.infoRaw, ";") {
		key, val, hasVal := strings.Cut(kv, "=")
		id, ok := r.header.infoByName[key]
		if !ok {
			continue
		}
		iv := &InfoValue{}
		if !hasVal {
			iv.flagSet = true
			r.info[id] = iv
			continue
		}
		if r.header.infoDefs[id].vtype == filter.TypeString {
			iv.str, iv.strOK = val, true
			r.info[id] = iv
			continue
		}
		parts := strings.Split(val, ",")
		iv.vec = make([]float64, len(parts))
		iv.vecOK = make([]bool, len(parts))
		for i, p := range parts {
			iv.vec[i], iv.vecOK[i] = parseNum(p)
		}
		r.info[id] = iv
	}
}

func (r *Record) unpackFormat() {
	r.format = map[int]*FormatValue{}
	if r.formatRaw == "" {
		return
	}
	keys := strings.Split(r.formatRaw, ":")
	nsamples := len(r.sampleRaw)
	keyIDs := make([]int, len(keys))
	for i, key := range keys {
		id, ok := r.header.fmtByName[key]
		if !ok {
			keyIDs[i] = -1
			continue
		}
		keyIDs[i] = id
		fv := &FormatValue{}
		if r.header.fmtDefs[id].vtype == filter.TypeString {
			fv.strs = make([]string, nsamples)
			fv.strOK = make([]bool, nsamples)
		} else {
			fv.values = make([]float64, nsamples)
			fv.ok = make([]bool, nsamples)
			fv.atIndex = map[int][]float64{}
			fv.atIndexOK = map[int][]bool{}
		}
		r.format[id] = fv
	}

	for s, sample := range r.sampleRaw {
		fields := strings.Split(sample, ":")
		for i, id := range keyIDs {
			if id < 0 || i >= len(fields) {
				continue
			}
			fv := r.format[id]
			raw := fields[i]
			if r.header.fmtDefs[id].vtype == filter.TypeString {
				if raw != "." {
					fv.strs[s], fv.strOK[s] = raw, true
				}
				continue
			}
			for j, p := range strings.Split(raw, ",") {
				f, ok := parseNum(p)
				if j == 0 {
					fv.values[s], fv.ok[s] = f, ok
				}
				sub, subOK := fv.atIndex[j], fv.atIndexOK[j]
				if sub == nil {
					sub = make([]float64, nsamples)
					subOK = make([]bool, nsamples)
					fv.atIndex[j] = sub
					fv.atIndexOK[j] = subOK
				}
				sub[s], subOK[s] = f, ok
			}
		}
	}
}

func parseNum(s string) (float64, bool) {
	if s == "." || s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Qual implements filter.Record.
func (r *Record) Qual() (float64, bool) { return r.qual, r.qualOK }

// VariantType implements filter.Record.
func (r *Record) VariantType() int { return r.vtype }

// AppliedFilters implements filter.Record.
func (r *Record) AppliedFilters() []int { return r.filters }

// InfoValue implements filter.Record.
func (r *Record) InfoValue(id int) (filter.InfoValue, bool) {
	v, ok := r.info[id]
	if !ok {
		return nil, false
	}
	return v, true
}

// FormatValue implements filter.Record.
func (r *Record) FormatValue(id int) (filter.FormatValue, bool) {
	v, ok := r.format[id]
	if !ok {
		return nil, false
	}
	return v, true
}

// Chrom, Pos, ID, Ref, and Alt expose the fixed columns for callers that
// want to report which record a verdict belongs to.
func (r *Record) Chrom() string { return r.chrom }
func (r *Record) Pos() int      { return r.pos }
func (r *Record) ID() string    { return r.id }
func (r *Record) Ref() string   { return r.ref }
func (r *Record) Alt() []string { return r.alt }

// InfoValue is the concrete pkg/vcf implementation of filter.InfoValue.
type InfoValue struct {
	flagSet bool
	vec     []float64
	vecOK   []bool
	str     string
	strOK   bool
}

func (v *InfoValue) Flag() bool { return v.flagSet }

func (v *InfoValue) Scalar() (float64, bool) {
	if len(v.vec) == 0 {
		return 0, false
	}
	return v.vec[0], v.vecOK[0]
}

func (v *InfoValue) At(i int) (float64, bool) {
	if i < 0 || i >= len(v.vec) || !v.vecOK[i] {
		return 0, false
	}
	return v.vec[i], true
}

func (v *InfoValue) String() (string, bool) { return v.str, v.strOK }

// FormatValue is the concrete pkg/vcf implementation of filter.FormatValue.
type FormatValue struct {
	values []float64
	ok     []bool

	atIndex   map[int][]float64
	atIndexOK map[int][]bool

	strs  []string
	strOK []bool
}

func (v *FormatValue) Values() ([]float64, []bool) { return v.values, v.ok }

func (v *FormatValue) ValuesAt(i int) ([]float64, []bool) {
	return v.atIndex[i], v.atIndexOK[i]
}

func (v *FormatValue) Strings() ([]string, []bool) { return v.strs, v.strOK }
