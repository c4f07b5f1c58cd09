package metadata

import (
	"encoding/binary"
	"math"

	"golang.org/x/text/encoding/unicode"

	"github.com/arloliu/ngb/format"
)

// encField assembles one scalar field occurrence:
// category, gap, field, gap, TypePrefix, tag, TypeSeparator, value, EndField.
func encField(category, field []byte, dtype format.DataType, value []byte) []byte {
	var b []byte
	b = append(b, category...)
	b = append(b, 0xaa)
	b = append(b, field...)
	b = append(b, 0xbb)
	b = append(b, format.TypePrefix...)
	b = append(b, byte(dtype))
	b = append(b, format.TypeSeparator...)
	b = append(b, value...)
	b = append(b, format.EndField...)

	return b
}

func f32le(v float32) []byte {
	return binary.LittleEndian.AppendUint32(nil, math.Float32bits(v))
}

func f64le(v float64) []byte {
	return binary.LittleEndian.AppendUint64(nil, math.Float64bits(v))
}

func i32le(v int32) []byte {
	return binary.LittleEndian.AppendUint32(nil, uint32(v))
}

// encString assembles a STRING value buffer: 4-byte length prefix plus the
// UTF-8 text.
func encString(s string) []byte {
	return append(binary.LittleEndian.AppendUint32(nil, uint32(len(s))), s...)
}

// encStage assembles one temperature-program stage field occurrence with
// the raw-float type tag.
func encStage(code byte, v float32) []byte {
	var b []byte
	b = append(b, format.TempProgPrefix...)
	b = append(b, code)
	b = append(b, format.TempProgTypeSep...)
	b = append(b, format.TempProgFloatTag)
	b = append(b, format.TempProgFieldSep...)
	b = append(b, format.TempProgValuePrefix...)
	b = append(b, f32le(v)...)

	return b
}

// encPID assembles one PID parameter occurrence.
func encPID(code uint16, v float32) []byte {
	var b []byte
	b = append(b, format.PIDSignaturePrefix...)
	b = binary.LittleEndian.AppendUint16(b, code)
	b = append(b, format.PIDSignatureSuffix...)
	b = append(b, f32le(v)...)

	return b
}

// utf16le encodes an ASCII name the way the instrument writes channel and
// gas names.
func utf16le(s string) []byte {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	out, err := enc.Bytes([]byte(s))
	if err != nil {
		panic(err)
	}

	return out
}
