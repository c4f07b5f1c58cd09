package encoding

import (
	"math"
	"unsafe"

	"github.com/arloliu/ngb/endian"
)

// decodeFloat64Array decodes a packed float64 region.
//
// When the wire order matches the host byte order the region is
// reinterpreted in place with unsafe.Slice and copied out in one pass,
// which is the fastest conversion available without retaining a view into
// the caller's buffer. The returned slice is always freshly allocated; it
// never aliases buf, so the caller is free to discard the table bytes
// after the parse.
func decodeFloat64Array(buf []byte, engine endian.EndianEngine) []float64 {
	count := len(buf) / 8
	out := make([]float64, count)
	if count == 0 {
		return out
	}

	if endian.CompareNativeEndian(engine) {
		src := unsafe.Slice((*float64)(unsafe.Pointer(&buf[0])), count)
		copy(out, src)

		return out
	}

	for i := 0; i < count; i++ {
		out[i] = math.Float64frombits(engine.Uint64(buf[i*8:]))
	}

	return out
}
