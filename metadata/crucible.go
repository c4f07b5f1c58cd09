package metadata

import (
	"bytes"
	"math"

	"github.com/arloliu/ngb/encoding"
	"github.com/arloliu/ngb/format"
)

// zeroMassEpsilon bounds what counts as an effectively empty mass value
// when bucketing unattributed crucible occurrences.
const zeroMassEpsilon = 1e-6

// massOccurrence is one decoded crucible-mass occurrence with its byte
// position in the combined stream.
type massOccurrence struct {
	pos   int
	value float64
}

// classifyCrucibleMasses resolves the repeated crucible_mass occurrences
// into sample and reference roles.
//
// The field name alone cannot distinguish the roles; the bytes immediately
// preceding each occurrence carry a context signature that can. Each
// occurrence is bucketed by inspecting a fixed window before its start:
// sample signature, reference signature, or (for near-zero values) a
// fallback bucket. The earliest occurrence in each bucket wins.
//
// The sample and reference occurrences also anchor a backward search for
// the nearest complete sample_mass/reference_mass field, filled only when
// the simple pass has not already set it.
func (e *Extractor) classifyCrucibleMasses(buf []byte, meta Metadata) {
	var all, sample, reference, zero []massOccurrence

	for _, occ := range e.crucibleMass.findAll(buf) {
		v, ok := encoding.DecodeFloat(occ.dtype, occ.value)
		if !ok {
			e.logger.Debug("skipping undecodable crucible mass occurrence", "pos", occ.pos)
			continue
		}

		mo := massOccurrence{pos: occ.pos, value: v}
		all = append(all, mo)

		winStart := occ.pos - format.CrucibleContextWindow
		if winStart < 0 {
			winStart = 0
		}
		window := buf[winStart:occ.pos]

		switch {
		case bytes.Contains(window, format.SampleCrucibleContext):
			sample = append(sample, mo)
		case bytes.Contains(window, format.ReferenceCrucibleContext):
			reference = append(reference, mo)
		case math.Abs(v) < zeroMassEpsilon:
			zero = append(zero, mo)
		}
	}

	// findAll returns occurrences in position order, so index 0 is the
	// earliest in each bucket.
	switch {
	case len(sample) > 0:
		meta.setIfAbsent("crucible_mass", sample[0].value)
		e.fillMassBefore(buf, e.sampleMass, sample[0].pos, meta)
	case len(all) > 0:
		// No attributable sample occurrence: fall back to the earliest
		// occurrence overall so the field is never silently absent.
		meta.setIfAbsent("crucible_mass", all[0].value)
	}

	switch {
	case len(reference) > 0:
		meta.setIfAbsent("reference_crucible_mass", reference[0].value)
		e.fillMassBefore(buf, e.referenceMass, reference[0].pos, meta)
	case len(zero) > 0:
		meta.setIfAbsent("reference_crucible_mass", zero[0].value)
	}
}

// fillMassBefore walks backwards from limit to the nearest complete match
// of pat and stores its value, unless the key is already present.
func (e *Extractor) fillMassBefore(buf []byte, pat fieldPattern, limit int, meta Metadata) {
	if _, exists := meta[pat.name]; exists {
		return
	}

	occ, ok := pat.lastBefore(buf, limit)
	if !ok {
		return
	}

	if v, decoded := encoding.DecodeFloat(occ.dtype, occ.value); decoded {
		meta.setIfAbsent(pat.name, v)
	}
}
