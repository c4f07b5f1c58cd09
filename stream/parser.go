// Package stream segments raw NGB stream bytes into tables and extracts
// bulk numeric payloads from them.
//
// A table is a contiguous byte slice delimited by format.TableSeparator
// occurrences; numeric payloads sit between format.StartData and
// format.EndData inside a table. Instrument files have historically
// contained malformed tail records, so every operation here is best-effort:
// structural corruption yields empty results, never an error.
//
// A Parser carries no mutable state after construction and is safe for
// concurrent use; tables returned by SplitTables alias the input buffer and
// must not outlive it.
package stream

import (
	"bytes"

	"github.com/hashicorp/go-hclog"

	"github.com/arloliu/ngb/encoding"
	"github.com/arloliu/ngb/endian"
	"github.com/arloliu/ngb/format"
	"github.com/arloliu/ngb/internal/options"
)

// Parser splits raw stream bytes into tables and decodes their bulk
// numeric payloads.
type Parser struct {
	engine endian.EndianEngine
	logger hclog.Logger
}

// Option configures a Parser.
type Option = options.Option[*Parser]

// WithLogger sets the logger used for best-effort recovery diagnostics.
// The default is a null logger.
func WithLogger(logger hclog.Logger) Option {
	return options.NoError(func(p *Parser) {
		p.logger = logger
	})
}

// NewParser creates a Parser. The byte order is fixed to the NGB wire
// order (little-endian).
func NewParser(opts ...Option) (*Parser, error) {
	p := &Parser{
		engine: endian.GetLittleEndianEngine(),
		logger: hclog.NewNullLogger(),
	}

	if err := options.Apply(p, opts...); err != nil {
		return nil, err
	}

	return p, nil
}

// SplitTables splits raw stream bytes into tables at TableSeparator
// boundaries.
//
// Each separator occurrence marks a boundary TableSplitOffset bytes before
// it (clamped to the start of the stream), so the two record-type bytes
// preceding the separator stay with the table they open. A stream without
// any separator is returned whole as a single table; empty input yields no
// tables. Zero-length segments are dropped.
//
// The returned tables are views into data. The split is deterministic:
// identical input always produces the identical table list.
func (p *Parser) SplitTables(data []byte) [][]byte {
	if len(data) == 0 {
		return nil
	}

	var boundaries []int

	pos := 0
	for {
		rel := bytes.Index(data[pos:], format.TableSeparator)
		if rel < 0 {
			break
		}

		sep := pos + rel
		boundary := sep + format.TableSplitOffset
		if boundary < 0 {
			boundary = 0
		}
		boundaries = append(boundaries, boundary)

		pos = sep + len(format.TableSeparator)
	}

	if len(boundaries) == 0 {
		return [][]byte{data}
	}

	tables := make([][]byte, 0, len(boundaries)+1)
	prev := 0
	for _, boundary := range boundaries {
		if boundary > prev {
			tables = append(tables, data[prev:boundary])
		}
		prev = boundary
	}
	if prev < len(data) {
		tables = append(tables, data[prev:])
	}

	return tables
}

// ValidateDataIntegrity reports whether the table carries a well-formed
// bulk payload: a StartData marker followed (strictly) by an EndData
// marker. Tables failing this check contribute nothing to extraction.
func (p *Parser) ValidateDataIntegrity(table []byte) bool {
	start := bytes.Index(table, format.StartData)
	if start < 0 {
		return false
	}

	end := bytes.Index(table, format.EndData)

	return end > start
}

// ExtractDataArray decodes the bulk payload of a table as a packed array
// of the given type.
//
// The payload starts DataHeaderSkip bytes after the StartData marker and
// runs to the next EndData marker. Structurally invalid tables and decode
// failures yield an empty result rather than an error.
func (p *Parser) ExtractDataArray(table []byte, dtype format.DataType) []float64 {
	if !p.ValidateDataIntegrity(table) {
		return nil
	}

	payloadStart := bytes.Index(table, format.StartData) + format.DataHeaderSkip
	if payloadStart > len(table) {
		return nil
	}

	rel := bytes.Index(table[payloadStart:], format.EndData)
	if rel < 0 {
		return nil
	}

	vals, err := encoding.DecodeArray(dtype, table[payloadStart:payloadStart+rel], p.engine)
	if err != nil {
		p.logger.Warn("bulk payload decode failed", "type", dtype.String(), "error", err)
		return nil
	}

	return vals
}

// HandleCorruptedData attempts a last-resort recovery from a corrupted
// payload region: if at least one float64-width chunk is present, just that
// chunk is decoded. It is not part of the primary extraction path.
func (p *Parser) HandleCorruptedData(data []byte, context string) []float64 {
	if len(data) < 8 {
		p.logger.Debug("no recoverable chunk in corrupted data", "context", context, "size", len(data))
		return nil
	}

	vals, err := encoding.DecodeArray(format.TypeFloat64, data[:8], p.engine)
	if err != nil || len(vals) == 0 {
		return nil
	}

	p.logger.Warn("recovered single value from corrupted data", "context", context)

	return vals
}

// ColumnCode returns the measurement column code of a data table: the byte
// immediately preceding its StartData marker. Tables without a preceding
// code byte return ok=false.
func ColumnCode(table []byte) (byte, bool) {
	idx := bytes.Index(table, format.StartData)
	if idx <= 0 {
		return 0, false
	}

	return table[idx-1], true
}
