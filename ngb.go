// Package ngb decodes NETZSCH STA instrument files into structured
// measurement data and metadata.
//
// An NGB file is a ZIP container of proprietary binary streams: one
// metadata stream carrying the instrument, sample and method fields, and
// one or more data streams carrying the measured columns as bulk float64
// arrays. The parser splits each stream into tables, decodes the numeric
// columns, runs the metadata extraction passes, and merges everything
// into a single Result.
//
// # Basic Usage
//
//	parser, _ := ngb.New()
//	result, err := parser.ParseFile("measurement.ngb-ss3")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Metadata["sample_name"])
//	fmt.Println(result.Columns["sample_temperature"])
//
// Stream scanning is best-effort: corrupted tables degrade to empty or
// partial results and are logged, never returned as errors. The only
// errors Parse returns are the container-level sentinels in the errs
// package (unreadable archive, required stream missing or empty).
//
// # Package Structure
//
// This package is a thin orchestration layer. The stream package splits
// and decodes the binary tables, the metadata package runs the field
// extraction passes, and the format package holds the wire constants.
package ngb

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/zip"

	"github.com/arloliu/ngb/errs"
	"github.com/arloliu/ngb/format"
	"github.com/arloliu/ngb/internal/hash"
	"github.com/arloliu/ngb/internal/options"
	"github.com/arloliu/ngb/metadata"
	"github.com/arloliu/ngb/stream"
)

// Stream entry names inside the ZIP container. The instrument software
// always writes the metadata stream first; the measurement columns are
// spread over the remaining streams.
const metadataStreamName = "Streams/stream_1.table"

var dataStreamNames = []string{
	"Streams/stream_2.table",
	"Streams/stream_3.table",
}

// Result is the decoded content of one NGB file.
type Result struct {
	// Metadata maps field names to decoded values, including the nested
	// calibration_constants, temperature_program and mfc entries, plus
	// the file_hash identity of the raw container bytes.
	Metadata metadata.Metadata

	// Columns maps measurement column names (time, sample_temperature,
	// dsc_signal, ...) to their decoded float64 arrays. Columns the file
	// does not carry are absent.
	Columns map[string][]float64
}

// Parser decodes NGB containers. It is stateless after construction and
// safe for concurrent use.
type Parser struct {
	streams *stream.Parser
	meta    *metadata.Extractor
	logger  hclog.Logger
}

// Option configures a Parser.
type Option = options.Option[*Parser]

// WithLogger sets the logger shared by the stream parser and the metadata
// extractor. The default is a null logger.
func WithLogger(logger hclog.Logger) Option {
	return options.NoError(func(p *Parser) {
		p.logger = logger
	})
}

// New creates a Parser.
func New(opts ...Option) (*Parser, error) {
	p := &Parser{logger: hclog.NewNullLogger()}

	if err := options.Apply(p, opts...); err != nil {
		return nil, err
	}

	var err error
	p.streams, err = stream.NewParser(stream.WithLogger(p.logger))
	if err != nil {
		return nil, err
	}

	p.meta, err = metadata.NewExtractor(metadata.WithLogger(p.logger))
	if err != nil {
		return nil, err
	}

	return p, nil
}

// Parse decodes one NGB container from its raw bytes.
//
// It returns errs.ErrInvalidContainer when the bytes are not a readable
// ZIP archive, errs.ErrMetadataStreamMissing / errs.ErrDataStreamMissing
// when a required stream entry is absent, and errs.ErrEmptyStream when
// the metadata stream yields no tables. Everything below stream level is
// best-effort and never fails the call.
func (p *Parser) Parse(data []byte) (*Result, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open container: %w", errs.ErrInvalidContainer)
	}

	streams, err := readStreams(zr)
	if err != nil {
		return nil, err
	}

	metaBytes, ok := streams[metadataStreamName]
	if !ok {
		return nil, fmt.Errorf("%s: %w", metadataStreamName, errs.ErrMetadataStreamMissing)
	}

	metaTables := p.streams.SplitTables(metaBytes)
	if len(metaTables) == 0 {
		return nil, fmt.Errorf("%s: %w", metadataStreamName, errs.ErrEmptyStream)
	}

	meta := p.meta.ExtractMetadata(metaTables)
	meta["file_hash"] = hash.Sum(data)

	columns, err := p.decodeColumns(streams)
	if err != nil {
		return nil, err
	}

	return &Result{Metadata: meta, Columns: columns}, nil
}

// ParseReader decodes one NGB container from r. The container directory
// lives at the end of a ZIP archive, so the reader is drained first.
func (p *Parser) ParseReader(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read container: %w", err)
	}

	return p.Parse(data)
}

// ParseFile decodes the NGB container at path.
func (p *Parser) ParseFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read container: %w", err)
	}

	return p.Parse(data)
}

// decodeColumns decodes every recognized measurement column from the data
// streams. The first table seen for a column wins; unknown column codes
// are logged and skipped.
func (p *Parser) decodeColumns(streams map[string][]byte) (map[string][]float64, error) {
	found := false
	columns := make(map[string][]float64)

	for _, name := range dataStreamNames {
		raw, ok := streams[name]
		if !ok {
			continue
		}
		found = true

		for _, table := range p.streams.SplitTables(raw) {
			code, ok := stream.ColumnCode(table)
			if !ok {
				continue
			}

			column, known := format.ColumnName(code)
			if !known {
				p.logger.Debug("skipping unknown column code", "stream", name, "code", code)
				continue
			}
			if _, exists := columns[column]; exists {
				continue
			}

			values := p.streams.ExtractDataArray(table, format.TypeFloat64)
			if len(values) == 0 {
				if region, ok := payloadRegion(table); ok {
					values = p.streams.HandleCorruptedData(region, column)
				}
			}
			if len(values) > 0 {
				columns[column] = values
			}
		}
	}

	if !found {
		return nil, errs.ErrDataStreamMissing
	}

	return columns, nil
}

// payloadRegion returns the bytes after a table's payload header, used for
// last-resort recovery when the table fails integrity validation.
func payloadRegion(table []byte) ([]byte, bool) {
	idx := bytes.Index(table, format.StartData)
	if idx < 0 || idx+format.DataHeaderSkip >= len(table) {
		return nil, false
	}

	return table[idx+format.DataHeaderSkip:], true
}

// readStreams reads every relevant stream entry of the container into
// memory. Entries with other names are ignored.
func readStreams(zr *zip.Reader) (map[string][]byte, error) {
	wanted := make(map[string]bool, len(dataStreamNames)+1)
	wanted[metadataStreamName] = true
	for _, name := range dataStreamNames {
		wanted[name] = true
	}

	streams := make(map[string][]byte, len(wanted))
	for _, f := range zr.File {
		if !wanted[f.Name] {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, errs.ErrInvalidContainer)
		}

		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, errs.ErrInvalidContainer)
		}

		streams[f.Name] = data
	}

	return streams, nil
}
