package metadata

import (
	"bytes"
	"math"

	"github.com/arloliu/ngb/endian"
	"github.com/arloliu/ngb/format"
)

// pidSignature is the compiled needle for one PID tuning parameter:
// PIDSignaturePrefix + 2-byte little-endian parameter code +
// PIDSignatureSuffix. The 4-byte little-endian float value follows each
// occurrence.
type pidSignature struct {
	name   string
	needle []byte
}

func compilePIDSignatures() []pidSignature {
	engine := endian.GetLittleEndianEngine()

	params := []struct {
		name string
		code uint16
	}{
		{"xp", format.PIDCodeXp},
		{"tn", format.PIDCodeTn},
		{"tv", format.PIDCodeTv},
	}

	sigs := make([]pidSignature, 0, len(params))
	for _, p := range params {
		needle := append([]byte{}, format.PIDSignaturePrefix...)
		needle = engine.AppendUint16(needle, p.code)
		needle = append(needle, format.PIDSignatureSuffix...)
		sigs = append(sigs, pidSignature{name: p.name, needle: needle})
	}

	return sigs
}

// extractPID collects the control-loop tuning parameters from the
// combined bytes. The occurrences of each parameter appear in stream
// order: the first belongs to the furnace controller, the second to the
// sample controller. Further occurrences are ignored; no instrument has
// been observed to write more than two controllers.
func (e *Extractor) extractPID(buf []byte, meta Metadata) {
	engine := endian.GetLittleEndianEngine()

	for _, sig := range e.pidSigs {
		var vals []float64

		cursor := 0
		for {
			rel := bytes.Index(buf[cursor:], sig.needle)
			if rel < 0 {
				break
			}

			pos := cursor + rel + len(sig.needle)
			cursor = cursor + rel + 1

			if pos+4 > len(buf) {
				break
			}
			vals = append(vals, float64(math.Float32frombits(engine.Uint32(buf[pos:]))))
		}

		if len(vals) >= 1 {
			meta.setIfAbsent("furnace_"+sig.name, vals[0])
		}
		if len(vals) >= 2 {
			meta.setIfAbsent("sample_"+sig.name, vals[1])
		}
		if len(vals) > 2 {
			e.logger.Debug("ignoring extra PID parameter occurrences",
				"parameter", sig.name, "extra", len(vals)-2)
		}
	}
}
