// Package format defines the wire-level facts of the NETZSCH NGB stream
// format: marker byte sequences, structural offsets, signature fragments and
// the value type tags.
//
// Every byte sequence in this file is an observed constant of the
// proprietary format, recovered from captured instrument files. None of
// them are tunable; changing any of them silently breaks parsing of real
// files (extraction degrades to empty or partial results rather than
// failing loudly). They are kept together in a single block so that a
// correction from newly captured files is a one-file change.
package format

// Marker byte sequences. Used only as literal search needles and never
// mutated; treat them as read-only.
var (
	// StartData marks the beginning of a bulk numeric payload inside a
	// table. The payload itself starts DataHeaderSkip bytes after the
	// marker position (the marker is followed by header bytes that are not
	// part of the payload).
	StartData = []byte{0xa0, 0x01}

	// EndData marks the end of a bulk numeric payload.
	EndData = []byte{0xc1, 0x01}

	// TableSeparator delimits consecutive tables inside a stream. The true
	// end of the preceding table sits TableSplitOffset bytes before the
	// separator (a two-byte record-type field precedes every separator and
	// belongs to the following table).
	TableSeparator = []byte{0xfb, 0xff, 0xff, 0xff, 0x3c, 0x00}

	// TypePrefix introduces a typed scalar value. It is immediately
	// followed by a one-byte DataType tag, TypeSeparator, the value bytes,
	// and EndField.
	TypePrefix = []byte{0x17, 0xfc, 0xff, 0xff}

	// TypeSeparator sits between the DataType tag and the value bytes.
	TypeSeparator = []byte{0x80, 0x01}

	// EndField terminates the value bytes of a typed scalar. Value byte
	// ranges are always resolved with shortest-match semantics: the value
	// ends at the first EndField occurrence after the separator.
	EndField = []byte{0x01, 0x00, 0x00, 0x00}
)

// Structural offsets and search windows.
const (
	// TableSplitOffset realigns a TableSeparator position to the true end
	// of the preceding table. Negative: the boundary is before the
	// separator itself.
	TableSplitOffset = -2

	// DataHeaderSkip is the distance from the start of the StartData
	// marker to the first payload byte. It covers the marker itself plus
	// the six header bytes that follow it.
	DataHeaderSkip = 8

	// CrucibleContextWindow is the number of bytes inspected immediately
	// before a crucible-mass field occurrence to classify it as the sample
	// or the reference crucible.
	CrucibleContextWindow = 64

	// AppContainerWindow bounds the search for the application/license
	// string container after its category marker.
	AppContainerWindow = 1024
)

// Signature fragments used for structural disambiguation. Like the markers
// above these are observed facts of the format.
var (
	// SampleCrucibleContext precedes the crucible-mass occurrence that
	// belongs to the sample crucible.
	SampleCrucibleContext = []byte{0x84, 0x8e}

	// ReferenceCrucibleContext precedes the crucible-mass occurrence that
	// belongs to the reference crucible.
	ReferenceCrucibleContext = []byte{0x85, 0x8e}

	// MFCRangeSignature identifies a table carrying a mass-flow-controller
	// range. The signature is immediately followed by a 4-byte
	// little-endian float; the table only counts as a range table when
	// that float is plausible (see MFCRangeMin/MFCRangeMax).
	MFCRangeSignature = []byte{0x8f, 0x04}

	// PIDSignaturePrefix and PIDSignatureSuffix bracket the 2-byte
	// little-endian parameter code of a PID tuning value. The full
	// occurrence is prefix + code + suffix + 4-byte little-endian float.
	PIDSignaturePrefix = []byte{0x03, 0x80, 0x01}
	PIDSignatureSuffix = []byte{
		0x00, 0x00,
		0x01, 0x00, 0x00, 0x00,
		0x0c, 0x00,
		0x17, 0xfc, 0xff, 0xff,
		0x04, 0x80, 0x01,
	}
)

// GasContextSignature marks a table that establishes the active gas for the
// mass-flow-controller range tables that follow it.
const GasContextSignature byte = 0x75

// Plausibility bounds for MFC range values, in the instrument's flow units.
const (
	MFCRangeMin = 0.1
	MFCRangeMax = 1000.0
)

// PID parameter codes (2-byte little-endian values inside the PID
// signature).
const (
	PIDCodeXp uint16 = 0x03e9
	PIDCodeTn uint16 = 0x03ea
	PIDCodeTv uint16 = 0x03eb
)

// Temperature-program stage grammar. Stage fields use their own framing,
// distinct from the scalar field grammar: TempProgPrefix, a one-byte field
// code, TempProgTypeSep, a one-byte type tag, TempProgFieldSep,
// TempProgValuePrefix and a 4-byte value.
var (
	TempProgPrefix      = []byte{0xf4, 0x01}
	TempProgTypeSep     = []byte{0x00, 0x01}
	TempProgFieldSep    = []byte{0x00, 0x00, 0x01}
	TempProgValuePrefix = []byte{0x80, 0x01}
)

// TempProgFloatTag is the stage-value type tag that is not a standard
// DataType: it encodes a raw 4-byte little-endian float.
const TempProgFloatTag byte = 0x0c

// Temperature-program stage field codes.
const (
	TempProgTemperature     byte = 0x19
	TempProgHeatingRate     byte = 0x1a
	TempProgAcquisitionRate byte = 0x1b
	TempProgTime            byte = 0x1c
)

// ColumnName maps a data-table column code to its measurement column name.
// The code byte immediately precedes the StartData marker of a data table.
// Unknown codes return ok=false and the table is skipped.
func ColumnName(code byte) (string, bool) {
	name, ok := columnNames[code]
	return name, ok
}

var columnNames = map[byte]string{
	0x8d: "time",
	0x8e: "sample_temperature",
	0x8f: "furnace_temperature",
	0x90: "dsc_signal",
	0x91: "mass",
	0x9c: "purge_flow_1",
	0x9d: "purge_flow_2",
	0x9e: "protective_flow",
}
