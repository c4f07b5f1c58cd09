package metadata

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/ngb/format"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()

	e, err := NewExtractor()
	require.NoError(t, err)

	return e
}

func TestNewExtractor(t *testing.T) {
	e := newTestExtractor(t)

	require.NotEmpty(t, e.patterns)
	require.NotEmpty(t, e.calPatterns)
	require.NotEmpty(t, e.tempProg)
	require.Len(t, e.pidSigs, 3)
	require.Len(t, e.channelNames, 3)
	require.NotEmpty(t, e.gasNames)
	require.NotNil(t, e.logger)
}

func TestExtractSimpleFields(t *testing.T) {
	e := newTestExtractor(t)

	t.Run("StringAndFloatFields", func(t *testing.T) {
		table := encField(catSample, []byte{0x31, 0x10}, format.TypeString, encString("corundum"))
		table = append(table, encField(catSample, []byte{0x9e, 0x0c}, format.TypeFloat32, f32le(12.5))...)

		meta := e.ExtractMetadata([][]byte{table})
		require.Equal(t, "corundum", meta["sample_name"])
		require.InDelta(t, 12.5, meta["sample_mass"], 1e-6)
	})

	t.Run("FirstMatchWinsAcrossTables", func(t *testing.T) {
		first := encField(catInstrument, []byte{0x3b, 0x10}, format.TypeString, encString("operator one"))
		second := encField(catInstrument, []byte{0x3b, 0x10}, format.TypeString, encString("operator two"))

		meta := e.ExtractMetadata([][]byte{first, second})
		require.Equal(t, "operator one", meta["operator"])
	})

	t.Run("DatePerformedFormatsTimestamp", func(t *testing.T) {
		// 2024-01-01T00:00:00Z
		table := encField(catInstrument, []byte{0x3e, 0x10}, format.TypeInt32, i32le(1704067200))

		meta := e.ExtractMetadata([][]byte{table})
		require.Equal(t, "2024-01-01T00:00:00Z", meta["date_performed"])
	})

	t.Run("UndecodableOccurrenceSkipped", func(t *testing.T) {
		// Wrong value width for Int32, then a good occurrence of another field.
		bad := encField(catInstrument, []byte{0x72, 0x10}, format.TypeInt32, []byte{0x02, 0x03})
		good := encField(catInstrument, []byte{0x3c, 0x10}, format.TypeString, encString("lab 1"))

		meta := e.ExtractMetadata([][]byte{bad, good})
		require.NotContains(t, meta, "project")
		require.Equal(t, "lab 1", meta["lab"])
	})

	t.Run("EmptyTables", func(t *testing.T) {
		meta := e.ExtractMetadata(nil)
		require.Empty(t, meta)

		meta = e.ExtractMetadata([][]byte{{}, {0x01, 0x02}})
		require.Empty(t, meta)
	})
}

func TestExtractCalibrationConstants(t *testing.T) {
	e := newTestExtractor(t)

	t.Run("CollectsNamedConstants", func(t *testing.T) {
		table := append([]byte{}, catCalibration...)
		table = append(table, encField(nil, []byte{0xa0, 0x0c}, format.TypeFloat64, f64le(1.25))...)
		table = append(table, encField(nil, []byte{0xa1, 0x0c}, format.TypeFloat64, f64le(-0.5))...)

		meta := e.ExtractMetadata([][]byte{table})
		consts, ok := meta["calibration_constants"].(CalibrationConstants)
		require.True(t, ok)
		require.InDelta(t, 1.25, consts["p0"], 1e-12)
		require.InDelta(t, -0.5, consts["p1"], 1e-12)
		require.NotContains(t, consts, "p2")
	})

	t.Run("TableWithoutMarkerIgnored", func(t *testing.T) {
		table := encField(nil, []byte{0xa0, 0x0c}, format.TypeFloat64, f64le(9.0))

		meta := e.ExtractMetadata([][]byte{table})
		require.NotContains(t, meta, "calibration_constants")
	})

	t.Run("FirstMatchWinsPerConstant", func(t *testing.T) {
		t1 := append([]byte{}, catCalibration...)
		t1 = append(t1, encField(nil, []byte{0xa2, 0x0c}, format.TypeFloat64, f64le(3.0))...)
		t2 := append([]byte{}, catCalibration...)
		t2 = append(t2, encField(nil, []byte{0xa2, 0x0c}, format.TypeFloat64, f64le(4.0))...)

		meta := e.ExtractMetadata([][]byte{t1, t2})
		consts := meta["calibration_constants"].(CalibrationConstants)
		require.InDelta(t, 3.0, consts["p2"], 1e-12)
	})
}

func TestExtractorConcurrentUse(t *testing.T) {
	e := newTestExtractor(t)

	table := encField(catSample, []byte{0x31, 0x10}, format.TypeString, encString("shared"))

	done := make(chan Metadata, 8)
	for n := 0; n < 8; n++ {
		go func() {
			done <- e.ExtractMetadata([][]byte{table})
		}()
	}

	for n := 0; n < 8; n++ {
		meta := <-done
		require.Equal(t, "shared", meta["sample_name"])
	}
}
