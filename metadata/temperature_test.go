package metadata

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/ngb/format"
)

func TestExtractTemperatureProgram(t *testing.T) {
	e := newTestExtractor(t)

	t.Run("UnevenFieldCounts", func(t *testing.T) {
		// Three temperature occurrences, two time occurrences: three
		// stages, the last one without a time field.
		var table []byte
		table = append(table, encStage(format.TempProgTemperature, 25.0)...)
		table = append(table, encStage(format.TempProgTime, 0.0)...)
		table = append(table, encStage(format.TempProgTemperature, 500.0)...)
		table = append(table, encStage(format.TempProgTime, 30.0)...)
		table = append(table, encStage(format.TempProgTemperature, 1200.0)...)

		meta := e.ExtractMetadata([][]byte{table})
		prog, ok := meta["temperature_program"].(TemperatureProgram)
		require.True(t, ok)
		require.Len(t, prog, 3)

		require.InDelta(t, 25.0, prog["stage_0"]["temperature"], 1e-6)
		require.InDelta(t, 0.0, prog["stage_0"]["time"], 1e-6)
		require.InDelta(t, 500.0, prog["stage_1"]["temperature"], 1e-6)
		require.InDelta(t, 30.0, prog["stage_1"]["time"], 1e-6)
		require.InDelta(t, 1200.0, prog["stage_2"]["temperature"], 1e-6)
		require.NotContains(t, prog["stage_2"], "time")
	})

	t.Run("StageStraddlesTableSplit", func(t *testing.T) {
		// The record is cut in half across two tables; only the combined
		// pass can see it.
		record := encStage(format.TempProgHeatingRate, 10.0)
		cut := len(record) / 2

		meta := e.ExtractMetadata([][]byte{record[:cut], record[cut:]})
		prog, ok := meta["temperature_program"].(TemperatureProgram)
		require.True(t, ok)
		require.InDelta(t, 10.0, prog["stage_0"]["heating_rate"], 1e-6)
	})

	t.Run("StandardTagRoutedThroughRegistry", func(t *testing.T) {
		var table []byte
		table = append(table, format.TempProgPrefix...)
		table = append(table, format.TempProgAcquisitionRate)
		table = append(table, format.TempProgTypeSep...)
		table = append(table, byte(format.TypeFloat32))
		table = append(table, format.TempProgFieldSep...)
		table = append(table, format.TempProgValuePrefix...)
		table = append(table, f32le(8.0)...)

		meta := e.ExtractMetadata([][]byte{table})
		prog := meta["temperature_program"].(TemperatureProgram)
		require.InDelta(t, 8.0, prog["stage_0"]["acquisition_rate"], 1e-6)
	})

	t.Run("NoOccurrences", func(t *testing.T) {
		meta := e.ExtractMetadata([][]byte{{0x01, 0x02, 0x03}})
		require.NotContains(t, meta, "temperature_program")
	})

	t.Run("MisframedOccurrenceSkipped", func(t *testing.T) {
		var table []byte
		table = append(table, format.TempProgPrefix...)
		table = append(table, format.TempProgTemperature)
		table = append(table, format.TempProgTypeSep...)
		table = append(table, format.TempProgFloatTag)
		table = append(table, 0xff, 0xff, 0xff) // no field separator
		table = append(table, encStage(format.TempProgTemperature, 42.0)...)

		meta := e.ExtractMetadata([][]byte{table})
		prog := meta["temperature_program"].(TemperatureProgram)
		require.Len(t, prog, 1)
		require.InDelta(t, 42.0, prog["stage_0"]["temperature"], 1e-6)
	})
}
