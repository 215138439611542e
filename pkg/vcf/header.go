// Package vcf is a small, deliberately thin VCF text-format reader that
// plugs into pkg/filter's Schema/Record contracts: it parses header
// definition lines and tab-separated data lines just far enough to resolve
// tag names and hand back typed values, and nothing more.
package vcf

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/SamStudio8/bcftools/pkg/filter"
)

type fieldDef struct {
	id    string
	vtype filter.ValueType
	arity filter.Arity
}

// Header accumulates ##INFO/##FORMAT/##FILTER definition lines and the
// sample column names from the #CHROM line, and implements filter.Schema
// once populated.
type Header struct {
	infoByName map[string]int
	infoDefs   []fieldDef

	fmtByName map[string]int
	fmtDefs   []fieldDef

	filterByName map[string]int
	filterNames  []string

	samples []string

	log *logrus.Entry
}

// NewHeader returns an empty Header ready to have lines fed to ParseLine.
func NewHeader() *Header {
	return &Header{
		infoByName:   map[string]int{},
		fmtByName:    map[string]int{},
		filterByName: map[string]int{},
		log:          logrus.WithField("component", "vcf"),
	}
}

// ParseLine feeds one line of a VCF header (including the #CHROM column
// header line) into h. Lines that aren't header lines this package cares
// about are ignored.
func (h *Header) ParseLine(line string) error {
	switch {
	case strings.HasPrefix(line, "##INFO="):
		return h.parseFieldLine(line, "##INFO=<", h.infoByName, &h.infoDefs)
	case strings.HasPrefix(line, "##FORMAT="):
		return h.parseFieldLine(line, "##FORMAT=<", h.fmtByName, &h.fmtDefs)
	case strings.HasPrefix(line, "##FILTER="):
		return h.parseFilterLine(line)
	case strings.HasPrefix(line, "#CHROM"):
		h.parseSamplesLine(line)
	}
	return nil
}

func (h *Header) parseFieldLine(line, prefix string, byName map[string]int, defs *[]fieldDef) error {
	body := strings.TrimSuffix(strings.TrimPrefix(line, prefix), ">")
	attrs := parseAttrs(body)
	id := attrs["ID"]
	if id == "" {
		return errors.Errorf("vcf: header line missing ID: %s", line)
	}
	if _, exists := byName[id]; exists {
		h.log.WithField("id", id).Debug("duplicate header definition, keeping the first")
		return nil
	}
	byName[id] = len(*defs)
	*defs = append(*defs, fieldDef{
		id:    id,
		vtype: parseValueType(attrs["Type"]),
		arity: parseArity(attrs["Number"]),
	})
	return nil
}

func (h *Header) parseFilterLine(line string) error {
	body := strings.TrimSuffix(strings.TrimPrefix(line, "##FILTER=<"), ">")
	attrs := parseAttrs(body)
	id := attrs["ID"]
	if id == "" {
		return errors.Errorf("vcf: header line missing ID: %s", line)
	}
	if _, exists := h.filterByName[id]; exists {
		return nil
	}
	h.filterByName[id] = len(h.filterNames)
	h.filterNames = append(h.filterNames, id)
	return nil
}

func (h *Header) parseSamplesLine(line string) {
	const fixedCols = 9
	cols := strings.Split(line, "\t")
	if len(cols) > fixedCols {
		h.samples = append([]string{}, cols[fixedCols:]...)
	}
}

// parseAttrs splits the body of a <...> header attribute list on top-level
// commas, treating commas inside a quoted Description value as literal.
func parseAttrs(body string) map[string]string {
	attrs := map[string]string{}
	var key, val strings.Builder
	inQuotes, inValue := false, false
	flush := func() {
		if key.Len() > 0 {
			v := val.String()
			if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
				v = v[1 : len(v)-1]
			}
			attrs[key.String()] = v
		}
		key.Reset()
		val.Reset()
		inValue = false
	}
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '"':
			inQuotes = !inQuotes
			val.WriteByte(c)
		case c == '=' && !inValue && !inQuotes:
			inValue = true
		case c == ',' && !inQuotes:
			flush()
		default:
			if inValue {
				val.WriteByte(c)
			} else {
				key.WriteByte(c)
			}
		}
	}
	flush()
	return attrs
}

func parseValueType(s string) filter.ValueType {
	switch s {
	case "Integer":
		return filter.TypeInt
	case "Float":
		return filter.TypeFloat
	case "Flag":
		return filter.TypeFlag
	default:
		return filter.TypeString
	}
}

func parseArity(s string) filter.Arity {
	switch s {
	case "A":
		return filter.ArityA
	case "R":
		return filter.ArityR
	case "G":
		return filter.ArityG
	case "1", "0":
		return filter.Arity1
	default:
		return filter.ArityDot
	}
}

// FieldSpec is one INFO or FORMAT field declaration within a HeaderSpec,
// mirroring the attributes a ##INFO/##FORMAT header line carries.
type FieldSpec struct {
	ID     string `json:"id"`
	Type   string `json:"type"`   // Integer, Float, String, Flag
	Number string `json:"number"` // 1, A, R, G, .
}

// HeaderSpec is the decoded shape of a --header JSON file: the field
// declarations and sample names needed to build a Header without going
// through VCF header-line text.
type HeaderSpec struct {
	Info    []FieldSpec `json:"info,omitempty"`
	Format  []FieldSpec `json:"format,omitempty"`
	Filters []string    `json:"filters,omitempty"`
	Samples []string    `json:"samples,omitempty"`
}

// NewHeaderFromSpec builds a Header directly from a decoded HeaderSpec, the
// JSON-native counterpart to feeding ##INFO/##FORMAT/##FILTER text lines
// through ParseLine one at a time.
func NewHeaderFromSpec(spec HeaderSpec) *Header {
	h := NewHeader()
	for _, f := range spec.Info {
		if _, exists := h.infoByName[f.ID]; exists {
			continue
		}
		h.infoByName[f.ID] = len(h.infoDefs)
		h.infoDefs = append(h.infoDefs, fieldDef{id: f.ID, vtype: parseValueType(f.Type), arity: parseArity(f.Number)})
	}
	for _, f := range spec.Format {
		if _, exists := h.fmtByName[f.ID]; exists {
			continue
		}
		h.fmtByName[f.ID] = len(h.fmtDefs)
		h.fmtDefs = append(h.fmtDefs, fieldDef{id: f.ID, vtype: parseValueType(f.Type), arity: parseArity(f.Number)})
	}
	for _, name := range spec.Filters {
		if _, exists := h.filterByName[name]; exists {
			continue
		}
		h.filterByName[name] = len(h.filterNames)
		h.filterNames = append(h.filterNames, name)
	}
	h.samples = append([]string{}, spec.Samples...)
	return h
}

// FilterID resolves a FILTER name to its header id, for %FILTER binding.
func (h *Header) FilterID(name string) (int, bool) {
	id, ok := h.filterByName[name]
	return id, ok
}

// Samples returns the sample names in column order.
func (h *Header) Samples() []string { return h.samples }

// IDOf implements filter.Schema.
func (h *Header) IDOf(ns filter.Namespace, name string) (int, bool) {
	switch ns {
	case filter.NSInfo:
		id, ok := h.infoByName[name]
		return id, ok
	case filter.NSFormat:
		id, ok := h.fmtByName[name]
		return id, ok
	case filter.NSFilter:
		return h.FilterID(name)
	}
	return 0, false
}

// DeclaredType implements filter.Schema.
func (h *Header) DeclaredType(ns filter.Namespace, id int) filter.ValueType {
	if ns == filter.NSInfo {
		return h.infoDefs[id].vtype
	}
	return h.fmtDefs[id].vtype
}

// DeclaredArity implements filter.Schema.
func (h *Header) DeclaredArity(ns filter.Namespace, id int) filter.Arity {
	if ns == filter.NSInfo {
		return h.infoDefs[id].arity
	}
	return h.fmtDefs[id].arity
}

// NSamples implements filter.Schema.
func (h *Header) NSamples() int { return len(h.samples) }
