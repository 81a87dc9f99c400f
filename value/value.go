package value

import (
	"errors"
	"fmt"

	"dbgdata/data"
	"dbgdata/mem"
)

// Errors returned by value operations.
var (
	ErrInvalidType    = errors.New("invalid type")
	ErrInvalidAddress = errors.New("value has no backing address")
	ErrInvalidValue   = errors.New("invalid value")
)

// InvalidLoadAddress is the sentinel reported by values that have no load
// address. All bits set, so it can never be mistaken for a mapped address.
const InvalidLoadAddress uint64 = 0xFFFFFFFFFFFFFFFF

// backing distinguishes the two value variants. The distinction is the core
// contract of this package: live-backed values re-fetch memory on every
// Data call, snapshot-backed values never change after creation.
type backing int

const (
	backingNone backing = iota
	backingLive
	backingSnapshot
)

// Value is a named, typed view of debuggee data. The zero Value is the
// invalid value: every operation on it fails cleanly, nothing panics.
type Value struct {
	name string
	typ  BasicType
	kind backing

	// Live-backed: where and how to re-read memory.
	reader   mem.Reader
	addr     uint64
	order    data.ByteOrder
	addrSize int

	// Snapshot-backed: the private copy.
	buf *data.Buffer
}

// Name returns the value's display name, or "" for an invalid value.
func (v *Value) Name() string {
	if v == nil {
		return ""
	}
	return v.name
}

// Type returns the value's resolved type, TypeInvalid for an invalid value.
func (v *Value) Type() BasicType {
	if v == nil {
		return TypeInvalid
	}
	return v.typ
}

// IsValid reports whether the value was constructed from a resolved type
// and has a backing variant.
func (v *Value) IsValid() bool {
	return v != nil && v.typ.Valid() && v.kind != backingNone
}

// Live reports whether the value re-reads debuggee memory on each access.
func (v *Value) Live() bool {
	return v != nil && v.kind == backingLive
}

// LoadAddress returns the address the value is bound to. Snapshot-backed
// and invalid values report InvalidLoadAddress, never a fake zero.
func (v *Value) LoadAddress() uint64 {
	if v == nil || v.kind != backingLive {
		return InvalidLoadAddress
	}
	return v.addr
}

// AddressOf returns the value's address and whether one exists. It is false
// for snapshot-backed values, which are not bound to any live memory.
func (v *Value) AddressOf() (uint64, bool) {
	if v == nil || v.kind != backingLive {
		return 0, false
	}
	return v.addr, true
}

// HasAddress reports whether the value is bound to live memory.
func (v *Value) HasAddress() bool {
	_, ok := v.AddressOf()
	return ok
}

// Data returns the bytes backing the value as a buffer the caller owns.
//
// For a live-backed value the memory is re-read from the debuggee on every
// call, so consecutive calls observe debuggee writes. For a snapshot-backed
// value the result is a copy of the private snapshot taken at creation and
// is the same on every call.
func (v *Value) Data() (*data.Buffer, error) {
	if !v.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidValue, v.Name())
	}
	switch v.kind {
	case backingLive:
		return mem.Snapshot(v.reader, v.addr, v.typ.Size(v.addrSize), v.order, v.addrSize)
	case backingSnapshot:
		return data.New(v.buf.Bytes(), v.buf.ByteOrder(), v.buf.AddressByteSize())
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidValue, v.Name())
}

// Uint decodes the value as an unsigned integer of its type's width.
// Pointer values decode at the target's address width.
func (v *Value) Uint() (uint64, error) {
	buf, err := v.Data()
	if err != nil {
		return 0, err
	}
	switch v.typ.Size(buf.AddressByteSize()) {
	case 1:
		u, err := buf.Uint8(0)
		return uint64(u), err
	case 2:
		u, err := buf.Uint16(0)
		return uint64(u), err
	case 4:
		u, err := buf.Uint32(0)
		return uint64(u), err
	case 8:
		return buf.Uint64(0)
	}
	return 0, fmt.Errorf("%w: %s", ErrInvalidType, v.typ)
}

// Int decodes the value as a signed integer, sign-extending per its type.
func (v *Value) Int() (int64, error) {
	u, err := v.Uint()
	if err != nil {
		return 0, err
	}
	switch v.typ {
	case TypeInt8:
		return int64(int8(u)), nil
	case TypeInt16:
		return int64(int16(u)), nil
	case TypeInt32:
		return int64(int32(u)), nil
	default:
		return int64(u), nil
	}
}

// Float decodes the value as a floating-point number. Only TypeFloat and
// TypeDouble values support this.
func (v *Value) Float() (float64, error) {
	if v == nil || !v.typ.FloatingPoint() {
		return 0, fmt.Errorf("%w: %s is not floating-point", ErrInvalidType, v.Type())
	}
	buf, err := v.Data()
	if err != nil {
		return 0, err
	}
	if v.typ == TypeFloat {
		f, err := buf.Float(0)
		return float64(f), err
	}
	return buf.Double(0)
}

// PointeeData snapshots n bytes at the address this pointer value holds.
// Only live-backed pointer values can do this: a snapshot-backed value has
// no connection to debuggee memory to read through, and reports
// ErrInvalidAddress rather than following a stale pointer.
func (v *Value) PointeeData(n int) (*data.Buffer, error) {
	if !v.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidValue, v.Name())
	}
	if v.typ != TypePointer {
		return nil, fmt.Errorf("%w: %s is not a pointer", ErrInvalidType, v.typ)
	}
	if v.kind != backingLive {
		return nil, fmt.Errorf("%w: %q is snapshot-backed", ErrInvalidAddress, v.name)
	}
	ptr, err := v.Uint()
	if err != nil {
		return nil, err
	}
	return mem.Snapshot(v.reader, ptr, n, v.order, v.addrSize)
}

func (v *Value) String() string {
	if !v.IsValid() {
		return fmt.Sprintf("Value{%q, invalid}", v.Name())
	}
	if v.kind == backingLive {
		return fmt.Sprintf("Value{%q, %s, live @ 0x%X}", v.name, v.typ, v.addr)
	}
	return fmt.Sprintf("Value{%q, %s, snapshot of %d bytes}", v.name, v.typ, v.buf.Len())
}
