package data

import "encoding/binary"

// ByteOrder selects how multi-byte values are laid out within a buffer.
type ByteOrder int

const (
	ByteOrderInvalid ByteOrder = iota
	LittleEndian
	BigEndian
)

func (o ByteOrder) String() string {
	switch o {
	case LittleEndian:
		return "little-endian"
	case BigEndian:
		return "big-endian"
	default:
		return "invalid"
	}
}

// Valid reports whether o is one of the two supported byte orders.
func (o ByteOrder) Valid() bool {
	return o == LittleEndian || o == BigEndian
}

// binaryOrder maps o onto the encoding/binary codec that implements it.
// Callers must have validated o first.
func (o ByteOrder) binaryOrder() binary.ByteOrder {
	if o == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Defaults used by the array/string constructors and by sessions that were
// not configured otherwise. Most targets we inspect are little-endian with
// 64-bit pointers.
const (
	DefaultByteOrder       = LittleEndian
	DefaultAddressByteSize = 8
)

// ValidAddressByteSize reports whether size is a supported pointer width.
// Only 32-bit and 64-bit targets are modeled.
func ValidAddressByteSize(size int) bool {
	return size == 4 || size == 8
}
