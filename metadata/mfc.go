package metadata

import (
	"bytes"
	"math"

	"github.com/arloliu/ngb/endian"
	"github.com/arloliu/ngb/format"
)

// The MFC settings are not stored as one record; they are reconstructed
// from three independent structural sources:
//
//   - field-name-definition tables, which carry a channel name in UTF-16LE
//     and establish the channel ordinals
//   - range tables, identified by the MFCRangeSignature byte pair followed
//     by a plausible flow value
//   - gas-context tables, which carry the GasContextSignature byte plus a
//     recognized gas name in UTF-16LE
//
// The Nth field definition pairs with the Nth range table; each range
// takes the gas of the nearest preceding gas-context table. Only the first
// three ranges are considered, one per physical channel.

type channelDef struct {
	table int
	id    MFCChannelID
}

type rangeDef struct {
	table int
	value float64
}

func (e *Extractor) extractMFC(tables [][]byte, meta Metadata) {
	var defs []channelDef
	var ranges []rangeDef
	gasByTable := make(map[int]string)

	for i, table := range tables {
		for _, ch := range e.channelNames {
			if bytes.Contains(table, ch.needle) {
				defs = append(defs, channelDef{table: i, id: ch.id})
			}
		}

		if v, ok := findRangeValue(table); ok {
			ranges = append(ranges, rangeDef{table: i, value: v})
		}

		if bytes.IndexByte(table, format.GasContextSignature) >= 0 {
			if gas, ok := e.findGasName(table); ok {
				gasByTable[i] = gas
			}
		}
	}

	count := len(defs)
	if len(ranges) < count {
		count = len(ranges)
	}
	if count > 3 {
		count = 3
	}
	if count == 0 {
		return
	}

	var settings MFCSettings
	for n := 0; n < count; n++ {
		ch := settings.channel(defs[n].id)
		if ch == nil {
			continue
		}
		ch.Range = ranges[n].value
		ch.HasRange = true

		// Nearest earlier gas context wins; the range table itself never
		// supplies its own gas.
		for t := ranges[n].table - 1; t >= 0; t-- {
			if gas, ok := gasByTable[t]; ok {
				ch.Gas = gas
				break
			}
		}
	}

	meta.setIfAbsent("mfc", settings)
}

// findRangeValue returns the first plausible flow range in a table: the
// MFCRangeSignature followed immediately by a little-endian float inside
// the instrument's physical range.
func findRangeValue(table []byte) (float64, bool) {
	engine := endian.GetLittleEndianEngine()

	cursor := 0
	for {
		rel := bytes.Index(table[cursor:], format.MFCRangeSignature)
		if rel < 0 {
			return 0, false
		}

		pos := cursor + rel + len(format.MFCRangeSignature)
		cursor = cursor + rel + 1

		if pos+4 > len(table) {
			return 0, false
		}

		v := float64(math.Float32frombits(engine.Uint32(table[pos:])))
		if v >= format.MFCRangeMin && v <= format.MFCRangeMax {
			return v, true
		}
	}
}

// findGasName returns the first recognized gas name contained in the
// table as UTF-16LE.
func (e *Extractor) findGasName(table []byte) (string, bool) {
	for _, g := range e.gasNames {
		if bytes.Contains(table, g.needle) {
			return g.name, true
		}
	}

	return "", false
}
