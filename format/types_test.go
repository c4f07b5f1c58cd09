package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataTypeString(t *testing.T) {
	require.Equal(t, "Int32", TypeInt32.String())
	require.Equal(t, "Float32", TypeFloat32.String())
	require.Equal(t, "Float64", TypeFloat64.String())
	require.Equal(t, "String", TypeString.String())
	require.Equal(t, "Unknown", DataType(0x42).String())
}

func TestDataTypeSize(t *testing.T) {
	require.Equal(t, 4, TypeInt32.Size())
	require.Equal(t, 4, TypeFloat32.Size())
	require.Equal(t, 8, TypeFloat64.Size())
	require.Equal(t, 0, TypeString.Size())
	require.Equal(t, 0, DataType(0x42).Size())
}

func TestMarkersNonEmpty(t *testing.T) {
	for _, m := range [][]byte{
		StartData, EndData, TableSeparator,
		TypePrefix, TypeSeparator, EndField,
		SampleCrucibleContext, ReferenceCrucibleContext,
		MFCRangeSignature, PIDSignaturePrefix, PIDSignatureSuffix,
		TempProgPrefix, TempProgTypeSep, TempProgFieldSep, TempProgValuePrefix,
	} {
		require.NotEmpty(t, m)
	}
}

func TestColumnName(t *testing.T) {
	name, ok := ColumnName(0x8d)
	require.True(t, ok)
	require.Equal(t, "time", name)

	_, ok = ColumnName(0x00)
	require.False(t, ok)
}
