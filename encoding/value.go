// Package encoding decodes typed values from NGB binary streams.
//
// Two entry points cover the two shapes a value can take on the wire:
// DecodeValue for scalar metadata fields (one tagged value between
// TypeSeparator and EndField) and DecodeArray for the densely packed
// homogeneous payloads between StartData and EndData.
//
// Decoding is best-effort by contract: a malformed buffer yields a missing
// value (ok=false) or an error, never a panic, and callers treat missing as
// "skip this field".
package encoding

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/arloliu/ngb/endian"
	"github.com/arloliu/ngb/format"
)

// ErrUnsupportedArrayType is returned by DecodeArray for type tags that
// never appear as bulk payloads.
var ErrUnsupportedArrayType = errors.New("unsupported array data type")

// wire is the byte order of every NGB stream.
var wire = endian.GetLittleEndianEngine()

// DecodeValue decodes a single tagged scalar value.
//
// Decoding rules per tag:
//   - TypeInt32: exactly 4 bytes, little-endian signed, returned as int64
//   - TypeFloat32: exactly 4 bytes, returned as float64
//   - TypeFloat64: exactly 8 bytes, returned as float64
//   - TypeString: at least 4 bytes; the leading 4-byte length prefix is
//     ignored and the remainder is decoded as UTF-8 with NUL bytes and
//     surrounding whitespace stripped
//   - any other tag: the raw bytes are passed through unchanged
//
// Returns ok=false for any length or UTF-8 violation; it never panics or
// propagates an error.
func DecodeValue(tag format.DataType, buf []byte) (any, bool) {
	switch tag {
	case format.TypeInt32:
		if len(buf) != 4 {
			return nil, false
		}

		return int64(int32(wire.Uint32(buf))), true

	case format.TypeFloat32:
		if len(buf) != 4 {
			return nil, false
		}

		return float64(math.Float32frombits(wire.Uint32(buf))), true

	case format.TypeFloat64:
		if len(buf) != 8 {
			return nil, false
		}

		return math.Float64frombits(wire.Uint64(buf)), true

	case format.TypeString:
		return decodeString(buf)

	default:
		// Unknown tags pass through so callers can inspect the raw bytes.
		out := make([]byte, len(buf))
		copy(out, buf)

		return out, true
	}
}

// DecodeFloat is a convenience wrapper that decodes a tagged scalar and
// coerces numeric results to float64. Non-numeric or undecodable values
// return ok=false.
func DecodeFloat(tag format.DataType, buf []byte) (float64, bool) {
	val, ok := DecodeValue(tag, buf)
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// decodeString ignores the 4-byte length prefix and decodes the remainder.
// The prefix is untrustworthy in real instrument files; consumers depend on
// the remainder-based behavior.
func decodeString(buf []byte) (any, bool) {
	if len(buf) < 4 {
		return nil, false
	}

	raw := buf[4:]
	if !utf8.Valid(raw) {
		return nil, false
	}

	s := strings.ReplaceAll(string(raw), "\x00", "")

	return strings.TrimSpace(s), true
}

// DecodeArray decodes a byte region as a densely packed homogeneous array
// of the tagged type, returning the values widened to float64.
//
// The region length is truncated to a whole number of elements; a region
// shorter than one element yields an empty slice. Tags that never appear as
// bulk payloads return ErrUnsupportedArrayType.
func DecodeArray(tag format.DataType, buf []byte, engine endian.EndianEngine) ([]float64, error) {
	switch tag {
	case format.TypeFloat64:
		return decodeFloat64Array(buf, engine), nil
	case format.TypeFloat32:
		return decodeFloat32Array(buf, engine), nil
	case format.TypeInt32:
		return decodeInt32Array(buf, engine), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedArrayType, tag)
	}
}

func decodeFloat32Array(buf []byte, engine endian.EndianEngine) []float64 {
	count := len(buf) / 4
	out := make([]float64, count)

	for i := 0; i < count; i++ {
		out[i] = float64(math.Float32frombits(engine.Uint32(buf[i*4:])))
	}

	return out
}

func decodeInt32Array(buf []byte, engine endian.EndianEngine) []float64 {
	count := len(buf) / 4
	out := make([]float64, count)

	for i := 0; i < count; i++ {
		out[i] = float64(int32(engine.Uint32(buf[i*4:])))
	}

	return out
}
