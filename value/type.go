// Package value models named, typed views of debuggee memory. A value is
// backed either by a live address (re-read on every access) or by a private
// data snapshot (fixed at creation); the two variants are explicit, not
// inferred.
package value

import "strings"

// BasicType identifies a primitive machine type. The zero value is the
// explicit invalid marker the type-resolution contract requires: an
// unresolved type flows through value construction without faulting.
type BasicType int

const (
	TypeInvalid BasicType = iota
	TypeUInt8
	TypeUInt16
	TypeUInt32
	TypeUInt64
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeFloat
	TypeDouble
	TypePointer
)

func (t BasicType) String() string {
	switch t {
	case TypeUInt8:
		return "uint8"
	case TypeUInt16:
		return "uint16"
	case TypeUInt32:
		return "uint32"
	case TypeUInt64:
		return "uint64"
	case TypeInt8:
		return "int8"
	case TypeInt16:
		return "int16"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypePointer:
		return "pointer"
	default:
		return "invalid"
	}
}

// Valid reports whether t is a resolved type.
func (t BasicType) Valid() bool {
	return t > TypeInvalid && t <= TypePointer
}

// Size returns the operand width in bytes. Pointer width depends on the
// target's address byte size; an invalid type has size 0.
func (t BasicType) Size(addrSize int) int {
	switch t {
	case TypeUInt8, TypeInt8:
		return 1
	case TypeUInt16, TypeInt16:
		return 2
	case TypeUInt32, TypeInt32, TypeFloat:
		return 4
	case TypeUInt64, TypeInt64, TypeDouble:
		return 8
	case TypePointer:
		return addrSize
	default:
		return 0
	}
}

// Signed reports whether t decodes as a signed integer.
func (t BasicType) Signed() bool {
	switch t {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		return true
	}
	return false
}

// FloatingPoint reports whether t decodes as an IEEE-754 value.
func (t BasicType) FloatingPoint() bool {
	return t == TypeFloat || t == TypeDouble
}

// ResolveBasicType resolves a type name to its handle. Unknown names yield
// TypeInvalid, the explicit invalid marker, rather than an error.
func ResolveBasicType(name string) BasicType {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "uint8", "unsigned char":
		return TypeUInt8
	case "uint16", "unsigned short":
		return TypeUInt16
	case "uint32", "unsigned int":
		return TypeUInt32
	case "uint64", "unsigned long long":
		return TypeUInt64
	case "int8", "char", "signed char":
		return TypeInt8
	case "int16", "short":
		return TypeInt16
	case "int32", "int":
		return TypeInt32
	case "int64", "long long":
		return TypeInt64
	case "float":
		return TypeFloat
	case "double":
		return TypeDouble
	case "pointer", "void *", "void*":
		return TypePointer
	default:
		return TypeInvalid
	}
}
