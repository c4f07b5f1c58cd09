package metadata

import (
	"bytes"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/text/encoding/unicode"

	"github.com/arloliu/ngb/encoding"
	"github.com/arloliu/ngb/internal/options"
	"github.com/arloliu/ngb/internal/pool"
)

// Extractor extracts all named metadata fields from the tables of a
// metadata stream.
//
// All byte patterns are compiled eagerly by NewExtractor and never mutated
// afterwards, so one Extractor may be shared by any number of concurrent
// parses.
type Extractor struct {
	patterns      []fieldPattern
	calPatterns   []fieldPattern
	referenceMass fieldPattern
	sampleMass    fieldPattern
	crucibleMass  fieldPattern
	anyValue      fieldPattern
	tempProg      []tempProgPattern
	pidSigs       []pidSignature
	channelNames  []channelNeedle
	gasNames      []gasNeedle
	logger        hclog.Logger
}

// Option configures an Extractor.
type Option = options.Option[*Extractor]

// WithLogger sets the logger for best-effort extraction diagnostics. The
// default is a null logger.
func WithLogger(logger hclog.Logger) Option {
	return options.NoError(func(e *Extractor) {
		e.logger = logger
	})
}

type channelNeedle struct {
	id     MFCChannelID
	needle []byte // channel name encoded UTF-16LE
}

type gasNeedle struct {
	name   string
	needle []byte // gas name encoded UTF-16LE
}

// knownGases lists the gas names the instrument writes into gas-context
// tables. Checked in order; the first hit wins.
var knownGases = []string{
	"NITROGEN",
	"ARGON",
	"HELIUM",
	"OXYGEN",
	"CARBON DIOXIDE",
	"AIR",
}

// NewExtractor creates an Extractor with every field pattern compiled.
func NewExtractor(opts ...Option) (*Extractor, error) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()

	e := &Extractor{
		patterns:      compileFieldPatterns(),
		calPatterns:   compileCalibrationPatterns(),
		referenceMass: referenceMassPattern(),
		anyValue:      anyValuePattern(),
		tempProg:      compileTempProgPatterns(),
		pidSigs:       compilePIDSignatures(),
		logger:        hclog.NewNullLogger(),
	}

	for _, p := range e.patterns {
		switch p.name {
		case "sample_mass":
			e.sampleMass = p
		case "crucible_mass":
			e.crucibleMass = p
		}
	}

	for _, id := range []MFCChannelID{MFCPurge1, MFCPurge2, MFCProtective} {
		needle, err := enc.Bytes([]byte(id.wireName()))
		if err != nil {
			return nil, err
		}
		e.channelNames = append(e.channelNames, channelNeedle{id: id, needle: needle})
	}

	for _, name := range knownGases {
		needle, err := enc.Bytes([]byte(name))
		if err != nil {
			return nil, err
		}
		e.gasNames = append(e.gasNames, gasNeedle{name: name, needle: needle})
	}

	if err := options.Apply(e, opts...); err != nil {
		return nil, err
	}

	return e, nil
}

// ExtractMetadata runs every extraction pass over the given tables and
// returns the merged metadata.
//
// Pass order is load-bearing: the simple-field pass runs before the
// crucible structural pass because the latter fills sample_mass and
// reference_mass only when still absent.
func (e *Extractor) ExtractMetadata(tables [][]byte) Metadata {
	meta := make(Metadata)

	e.extractSimpleFields(tables, meta)
	e.extractCalibrationConstants(tables, meta)

	// The cross-table passes operate on the combined bytes of all tables
	// because their records can straddle table boundaries.
	buf := pool.GetStreamBuffer()
	defer pool.PutStreamBuffer(buf)
	for _, table := range tables {
		_, _ = buf.Write(table)
	}
	combined := buf.Bytes()

	e.extractTemperatureProgram(combined, meta)
	e.extractMFC(tables, meta)
	e.extractApplicationStrings(combined, meta)
	e.extractPID(combined, meta)
	e.classifyCrucibleMasses(combined, meta)

	return meta
}

// extractSimpleFields runs the generic pattern loop over every table.
// First match wins per field; a decode failure for one occurrence never
// stops the others.
func (e *Extractor) extractSimpleFields(tables [][]byte, meta Metadata) {
	for _, pat := range e.patterns {
		if pat.name == "crucible_mass" {
			// Deferred entirely to the structural classification pass.
			continue
		}

		for _, table := range tables {
			for _, occ := range pat.findAll(table) {
				val, ok := encoding.DecodeValue(occ.dtype, occ.value)
				if !ok {
					e.logger.Debug("skipping undecodable field occurrence",
						"field", pat.name, "type", occ.dtype.String(), "size", len(occ.value))
					continue
				}

				if pat.name == "date_performed" {
					if ts, isInt := val.(int64); isInt {
						val = time.Unix(ts, 0).UTC().Format(time.RFC3339)
					}
				}

				meta.setIfAbsent(pat.name, val)
			}
		}
	}
}

// extractCalibrationConstants collects the named constants from every
// table that carries the calibration category marker, merged across tables
// with first match winning per constant.
func (e *Extractor) extractCalibrationConstants(tables [][]byte, meta Metadata) {
	consts := make(CalibrationConstants)

	for _, table := range tables {
		if !bytes.Contains(table, catCalibration) {
			continue
		}

		for _, pat := range e.calPatterns {
			for _, occ := range pat.findAll(table) {
				v, ok := encoding.DecodeFloat(occ.dtype, occ.value)
				if !ok {
					continue
				}
				if _, exists := consts[pat.name]; !exists {
					consts[pat.name] = v
				}
			}
		}
	}

	if len(consts) > 0 {
		meta.setIfAbsent("calibration_constants", consts)
	}
}
