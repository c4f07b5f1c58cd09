package metadata

import (
	"bytes"

	"github.com/arloliu/ngb/format"
)

// fieldPattern describes one named scalar field on the wire:
//
//	category … field … TypePrefix <tag:1> TypeSeparator <value> EndField
//
// The gaps are resolved with shortest-match semantics, which is what keeps
// adjacent fields of the same shape from bleeding into each other. Matching
// is explicit byte scanning rather than a regex engine so the shortest-match
// behavior stays unambiguous and auditable.
//
// category and field may be empty; an empty element is skipped, so a
// pattern with only field bytes matches bare fields (calibration constants)
// and a pattern with neither matches any typed value.
type fieldPattern struct {
	name     string
	category []byte
	field    []byte
}

// occurrence is one complete match of a fieldPattern. pos is the byte
// offset where the match starts in the scanned buffer, which the
// structural passes use to disambiguate repeated fields.
type occurrence struct {
	dtype format.DataType
	value []byte
	pos   int
}

// findAll returns every non-overlapping occurrence of the pattern in buf,
// in position order.
func (p fieldPattern) findAll(buf []byte) []occurrence {
	var out []occurrence

	cursor := 0
	for {
		occ, next, ok := p.findFrom(buf, cursor)
		if !ok {
			break
		}
		out = append(out, occ)
		cursor = next
	}

	return out
}

// lastBefore returns the last occurrence that is entirely contained in
// buf[:limit]. Used by the crucible pass to walk backwards to the nearest
// complete field before a mass occurrence.
func (p fieldPattern) lastBefore(buf []byte, limit int) (occurrence, bool) {
	if limit > len(buf) {
		limit = len(buf)
	}
	if limit <= 0 {
		return occurrence{}, false
	}

	occs := p.findAll(buf[:limit])
	if len(occs) == 0 {
		return occurrence{}, false
	}

	return occs[len(occs)-1], true
}

// findFrom finds the first complete match starting at or after cursor. It
// returns the occurrence and the offset to resume scanning from.
func (p fieldPattern) findFrom(buf []byte, cursor int) (occurrence, int, bool) {
	for cursor <= len(buf) {
		start := cursor
		if len(p.category) > 0 {
			rel := bytes.Index(buf[cursor:], p.category)
			if rel < 0 {
				return occurrence{}, 0, false
			}
			start = cursor + rel
		}

		occ, next, ok := p.matchBody(buf, start)
		if ok {
			occ.pos = start
			return occ, next, true
		}

		if len(p.category) == 0 {
			// No category to resync on; the body scan already covered the
			// rest of the buffer.
			return occurrence{}, 0, false
		}

		// Resync past this category occurrence and try the next one.
		cursor = start + 1
	}

	return occurrence{}, 0, false
}

// matchBody matches everything after the category position: the field
// bytes, then successive TypePrefix candidates until one is followed by a
// type tag, TypeSeparator, value bytes and EndField.
func (p fieldPattern) matchBody(buf []byte, start int) (occurrence, int, bool) {
	pos := start
	if len(p.category) > 0 {
		pos += len(p.category)
	}

	if len(p.field) > 0 {
		rel := bytes.Index(buf[pos:], p.field)
		if rel < 0 {
			return occurrence{}, 0, false
		}
		pos += rel + len(p.field)
	}

	// Shortest match over the gap before TypePrefix: try each candidate in
	// order until the full tag+separator frame lines up.
	for {
		rel := bytes.Index(buf[pos:], format.TypePrefix)
		if rel < 0 {
			return occurrence{}, 0, false
		}

		tagPos := pos + rel + len(format.TypePrefix)
		if tagPos >= len(buf) {
			return occurrence{}, 0, false
		}

		sepPos := tagPos + 1
		if !bytes.HasPrefix(buf[sepPos:], format.TypeSeparator) {
			pos = pos + rel + 1
			continue
		}

		valStart := sepPos + len(format.TypeSeparator)
		endRel := bytes.Index(buf[valStart:], format.EndField)
		if endRel < 0 {
			return occurrence{}, 0, false
		}

		occ := occurrence{
			dtype: format.DataType(buf[tagPos]),
			value: buf[valStart : valStart+endRel],
		}

		return occ, valStart + endRel + len(format.EndField), true
	}
}

// Category byte sequences. Like the markers in the format package these
// are observed constants of the wire format.
var (
	catInstrument  = []byte{0x75, 0x17}
	catSample      = []byte{0x30, 0x75}
	catApplication = []byte{0x72, 0x09}

	// catCalibration marks a table carrying calibration constants.
	catCalibration = []byte{0x7f, 0x3f}

	// appLicenseField locates the application/license string container
	// inside the application category.
	appLicenseField = []byte{0x6b, 0x02}
)

// compileFieldPatterns builds the catalog of simple scalar fields. The
// catalog is compiled once per Extractor and read-only afterwards.
func compileFieldPatterns() []fieldPattern {
	return []fieldPattern{
		{name: "instrument", category: catInstrument, field: []byte{0x59, 0x10}},
		{name: "project", category: catInstrument, field: []byte{0x72, 0x10}},
		{name: "date_performed", category: catInstrument, field: []byte{0x3e, 0x10}},
		{name: "lab", category: catInstrument, field: []byte{0x3c, 0x10}},
		{name: "operator", category: catInstrument, field: []byte{0x3b, 0x10}},
		{name: "remark", category: catInstrument, field: []byte{0x3d, 0x10}},
		{name: "furnace_type", category: catInstrument, field: []byte{0x7a, 0x10}},
		{name: "carrier_type", category: catInstrument, field: []byte{0x79, 0x10}},
		{name: "measurement_type", category: catInstrument, field: []byte{0x3f, 0x10}},
		{name: "sample_id", category: catSample, field: []byte{0x30, 0x10}},
		{name: "sample_name", category: catSample, field: []byte{0x31, 0x10}},
		{name: "material", category: catSample, field: []byte{0x62, 0x10}},
		{name: "crucible_type", category: catSample, field: []byte{0x7e, 0x10}},
		{name: "sample_mass", category: catSample, field: []byte{0x9e, 0x0c}},
		{name: "crucible_mass", category: catSample, field: []byte{0x9f, 0x0c}},
	}
}

// compileCalibrationPatterns builds the bare-field patterns for the named
// calibration constants inside a calibration table.
func compileCalibrationPatterns() []fieldPattern {
	return []fieldPattern{
		{name: "p0", field: []byte{0xa0, 0x0c}},
		{name: "p1", field: []byte{0xa1, 0x0c}},
		{name: "p2", field: []byte{0xa2, 0x0c}},
		{name: "p3", field: []byte{0xa3, 0x0c}},
		{name: "p4", field: []byte{0xa4, 0x0c}},
		{name: "p5", field: []byte{0xa5, 0x0c}},
	}
}

// referenceMassPattern is only used by the crucible structural pass; the
// generic loop never stores it.
func referenceMassPattern() fieldPattern {
	return fieldPattern{name: "reference_mass", category: catSample, field: []byte{0x9d, 0x0c}}
}

// anyValuePattern matches any typed value regardless of its surrounding
// category/field bytes.
func anyValuePattern() fieldPattern {
	return fieldPattern{name: "value"}
}
