package format

// DataType is the one-byte type tag that prefixes every typed value in an
// NGB stream. The tag selects how the value bytes between TypeSeparator and
// EndField are decoded.
type DataType uint8

const (
	TypeInt32   DataType = 0x03 // TypeInt32 is a 4-byte little-endian signed integer.
	TypeFloat32 DataType = 0x04 // TypeFloat32 is a 4-byte little-endian IEEE-754 float.
	TypeFloat64 DataType = 0x05 // TypeFloat64 is an 8-byte little-endian IEEE-754 float.
	TypeString  DataType = 0x1f // TypeString is a length-prefixed UTF-8 string.
)

func (t DataType) String() string {
	switch t {
	case TypeInt32:
		return "Int32"
	case TypeFloat32:
		return "Float32"
	case TypeFloat64:
		return "Float64"
	case TypeString:
		return "String"
	default:
		return "Unknown"
	}
}

// Size returns the fixed byte width of the data type, or 0 for
// variable-width and unknown types.
func (t DataType) Size() int {
	switch t {
	case TypeInt32, TypeFloat32:
		return 4
	case TypeFloat64:
		return 8
	default:
		return 0
	}
}
