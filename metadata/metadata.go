// Package metadata extracts named measurement metadata from the tables of
// an NGB metadata stream.
//
// Extraction is a single linear pass plus a handful of specialized
// cross-table passes (calibration constants, temperature program, MFC
// reconstruction, application strings, PID parameters, crucible mass
// classification). All passes are best-effort: a failure in one field or
// one pass never aborts the others, and missing fields are simply absent
// from the result.
//
// An Extractor compiles every byte pattern at construction and is
// read-only afterwards, so a single instance can be shared by concurrent
// parses of different files.
package metadata

// Metadata maps field names to decoded values: int64, float64, string, or
// one of the nested types (CalibrationConstants, TemperatureProgram,
// MFCSettings).
//
// A top-level key is written at most once; later extraction attempts for a
// key that is already present are no-ops.
type Metadata map[string]any

// setIfAbsent stores val under key unless the key already exists. It
// reports whether the value was stored.
func (m Metadata) setIfAbsent(key string, val any) bool {
	if _, exists := m[key]; exists {
		return false
	}
	m[key] = val

	return true
}

// CalibrationConstants maps calibration constant names to their values.
type CalibrationConstants map[string]float64

// StageFields holds the decoded fields of one temperature-program stage.
type StageFields map[string]float64

// TemperatureProgram maps "stage_<i>" keys to the fields of stage i, in
// the order the stages appear in the stream.
type TemperatureProgram map[string]StageFields

// MFCChannelID identifies one of the instrument's three mass-flow
// controller channels.
type MFCChannelID uint8

const (
	MFCPurge1 MFCChannelID = iota
	MFCPurge2
	MFCProtective
)

func (id MFCChannelID) String() string {
	switch id {
	case MFCPurge1:
		return "purge_1"
	case MFCPurge2:
		return "purge_2"
	case MFCProtective:
		return "protective"
	default:
		return "unknown"
	}
}

// wireName is the UTF-16LE field name that declares the channel inside a
// field-name-definition table.
func (id MFCChannelID) wireName() string {
	switch id {
	case MFCPurge1:
		return "PURGE 1 MFC"
	case MFCPurge2:
		return "PURGE 2 MFC"
	case MFCProtective:
		return "PROTECTIVE MFC"
	default:
		return ""
	}
}

// MFCChannel holds the reconstructed settings of one mass-flow controller
// channel. HasRange distinguishes a genuine zero range from an unresolved
// one.
type MFCChannel struct {
	Gas      string
	Range    float64
	HasRange bool
}

// MFCSettings holds all three channels, keyed by identity rather than by
// free-form map keys so that adding a channel is a compile-time visible
// change.
type MFCSettings struct {
	Purge1     MFCChannel
	Purge2     MFCChannel
	Protective MFCChannel
}

// channel returns the settings slot for the given channel identity.
func (s *MFCSettings) channel(id MFCChannelID) *MFCChannel {
	switch id {
	case MFCPurge1:
		return &s.Purge1
	case MFCPurge2:
		return &s.Purge2
	case MFCProtective:
		return &s.Protective
	default:
		return nil
	}
}
