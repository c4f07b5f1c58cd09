package metadata

import (
	"bytes"
	"fmt"
	"math"

	"github.com/arloliu/ngb/encoding"
	"github.com/arloliu/ngb/endian"
	"github.com/arloliu/ngb/format"
)

// tempProgPattern is the compiled needle for one temperature-program stage
// field: TempProgPrefix + field code + TempProgTypeSep. The type tag,
// TempProgFieldSep, TempProgValuePrefix and the 4-byte value follow each
// occurrence.
type tempProgPattern struct {
	name   string
	needle []byte
}

func compileTempProgPatterns() []tempProgPattern {
	fields := []struct {
		name string
		code byte
	}{
		{"temperature", format.TempProgTemperature},
		{"heating_rate", format.TempProgHeatingRate},
		{"acquisition_rate", format.TempProgAcquisitionRate},
		{"time", format.TempProgTime},
	}

	patterns := make([]tempProgPattern, 0, len(fields))
	for _, f := range fields {
		needle := append([]byte{}, format.TempProgPrefix...)
		needle = append(needle, f.code)
		needle = append(needle, format.TempProgTypeSep...)
		patterns = append(patterns, tempProgPattern{name: f.name, needle: needle})
	}

	return patterns
}

// extractTemperatureProgram collects the stage fields from the combined
// bytes of all tables. Stage records can straddle table splits, which is
// why this pass never runs per-table.
//
// The i-th occurrence of each field belongs to stage i; the stage count is
// the maximum occurrence count across all fields, so a stage may carry
// only a subset of fields.
func (e *Extractor) extractTemperatureProgram(buf []byte, meta Metadata) {
	values := make(map[string][]float64, len(e.tempProg))

	stages := 0
	for _, pat := range e.tempProg {
		vals := e.collectStageValues(buf, pat)
		values[pat.name] = vals
		if len(vals) > stages {
			stages = len(vals)
		}
	}

	if stages == 0 {
		return
	}

	prog := make(TemperatureProgram, stages)
	for i := 0; i < stages; i++ {
		stage := make(StageFields)
		for _, pat := range e.tempProg {
			if i < len(values[pat.name]) {
				stage[pat.name] = values[pat.name][i]
			}
		}
		prog[fmt.Sprintf("stage_%d", i)] = stage
	}

	meta.setIfAbsent("temperature_program", prog)
}

// collectStageValues returns every decodable occurrence of one stage field
// in stream order.
func (e *Extractor) collectStageValues(buf []byte, pat tempProgPattern) []float64 {
	var out []float64

	cursor := 0
	for {
		rel := bytes.Index(buf[cursor:], pat.needle)
		if rel < 0 {
			break
		}

		pos := cursor + rel + len(pat.needle)
		cursor = cursor + rel + 1

		if pos >= len(buf) {
			break
		}
		tag := buf[pos]
		pos++

		if !bytes.HasPrefix(buf[pos:], format.TempProgFieldSep) {
			continue
		}
		pos += len(format.TempProgFieldSep)

		if !bytes.HasPrefix(buf[pos:], format.TempProgValuePrefix) {
			continue
		}
		pos += len(format.TempProgValuePrefix)

		if pos+4 > len(buf) {
			break
		}
		value := buf[pos : pos+4]

		v, ok := e.decodeStageValue(tag, value)
		if !ok {
			e.logger.Debug("skipping undecodable stage value", "field", pat.name, "tag", tag)
			continue
		}
		out = append(out, v)
	}

	return out
}

// decodeStageValue decodes one 4-byte stage value. Tag 0x0c is not a
// standard data type: it encodes a raw little-endian float and is handled
// here instead of the generic registry.
func (e *Extractor) decodeStageValue(tag byte, value []byte) (float64, bool) {
	if tag == format.TempProgFloatTag {
		bits := endian.GetLittleEndianEngine().Uint32(value)
		return float64(math.Float32frombits(bits)), true
	}

	return encoding.DecodeFloat(format.DataType(tag), value)
}
