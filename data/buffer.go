package data

import (
	"fmt"
	"math"
)

// Buffer owns a byte sequence together with the byte order and address size
// used to decode values out of it. It is a plain value container: it never
// aliases caller memory (constructors and accessors copy), and decode
// operations never modify it.
//
// Out-of-range policy: a decode whose operand would extend past the end of
// the buffer returns the zero value for its type along with ErrOutOfRange.
// Reads never panic. Callers that skip the error check get a well-defined 0
// rather than garbage; this mirrors the behavior of the debugger APIs this
// package models and is deliberate, tested behavior.
type Buffer struct {
	buf      []byte
	order    ByteOrder
	addrSize int
}

// New creates a buffer holding a copy of bytes with the given decode
// metadata. Returns ErrInvalidArgument for an unknown byte order or an
// unsupported address size.
func New(bytes []byte, order ByteOrder, addrSize int) (*Buffer, error) {
	b := &Buffer{}
	if err := b.SetData(bytes, order, addrSize); err != nil {
		return nil, err
	}
	return b, nil
}

// NewEmpty creates an empty buffer with the default byte order and address
// size, ready to be filled via SetData or Append.
func NewEmpty() *Buffer {
	return &Buffer{order: DefaultByteOrder, addrSize: DefaultAddressByteSize}
}

// FromCString creates a buffer holding the bytes of s followed by a single
// terminating zero byte, in the default byte order.
func FromCString(s string) *Buffer {
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	return &Buffer{buf: buf, order: DefaultByteOrder, addrSize: DefaultAddressByteSize}
}

// FromUint32Array serializes values in sequence, four bytes each, no
// padding, in the default byte order.
func FromUint32Array(values []uint32) *Buffer {
	b := NewEmpty()
	for _, v := range values {
		b.AppendUint32(v)
	}
	return b
}

// FromUint64Array serializes values in sequence, eight bytes each, no
// padding, in the default byte order.
func FromUint64Array(values []uint64) *Buffer {
	b := NewEmpty()
	for _, v := range values {
		b.AppendUint64(v)
	}
	return b
}

// FromInt32Array serializes signed 32-bit values in the default byte order.
func FromInt32Array(values []int32) *Buffer {
	b := NewEmpty()
	for _, v := range values {
		b.AppendUint32(uint32(v))
	}
	return b
}

// FromInt64Array serializes signed 64-bit values in the default byte order.
func FromInt64Array(values []int64) *Buffer {
	b := NewEmpty()
	for _, v := range values {
		b.AppendUint64(uint64(v))
	}
	return b
}

// FromDoubleArray serializes IEEE-754 doubles, eight bytes each, in the
// default byte order.
func FromDoubleArray(values []float64) *Buffer {
	b := NewEmpty()
	for _, v := range values {
		b.AppendUint64(math.Float64bits(v))
	}
	return b
}

// SetData replaces the buffer's contents and decode metadata. The update is
// atomic: on ErrInvalidArgument the buffer is left exactly as it was. The
// incoming bytes are copied, never aliased.
func (b *Buffer) SetData(bytes []byte, order ByteOrder, addrSize int) error {
	if !order.Valid() {
		return fmt.Errorf("%w: byte order %d", ErrInvalidArgument, int(order))
	}
	if !ValidAddressByteSize(addrSize) {
		return fmt.Errorf("%w: address byte size %d", ErrInvalidArgument, addrSize)
	}
	buf := make([]byte, len(bytes))
	copy(buf, bytes)
	b.buf = buf
	b.order = order
	b.addrSize = addrSize
	return nil
}

// Append concatenates a copy of other's bytes onto b. The receiver keeps its
// own byte order and address size; other is not mutated.
func (b *Buffer) Append(other *Buffer) error {
	if other == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidArgument)
	}
	b.buf = append(b.buf, other.buf...)
	return nil
}

// AppendUint32 encodes v at the end of the buffer in the buffer's own byte
// order. Re-encoding a decoded value this way reproduces its operand bytes.
func (b *Buffer) AppendUint32(v uint32) {
	var tmp [4]byte
	b.ByteOrder().binaryOrder().PutUint32(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

// AppendUint64 encodes v at the end of the buffer in the buffer's own byte
// order.
func (b *Buffer) AppendUint64(v uint64) {
	var tmp [8]byte
	b.ByteOrder().binaryOrder().PutUint64(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

// Len returns the number of bytes in the buffer.
func (b *Buffer) Len() int {
	return len(b.buf)
}

// Bytes returns a copy of the buffer contents. Mutating the result does not
// affect the buffer.
func (b *Buffer) Bytes() []byte {
	out := make([]byte, len(b.buf))
	copy(out, b.buf)
	return out
}

// ByteOrder returns the buffer's decode byte order. A zero-value Buffer
// reports the default order.
func (b *Buffer) ByteOrder() ByteOrder {
	if !b.order.Valid() {
		return DefaultByteOrder
	}
	return b.order
}

// AddressByteSize returns the pointer width used by Address decodes. A
// zero-value Buffer reports the default size.
func (b *Buffer) AddressByteSize() int {
	if !ValidAddressByteSize(b.addrSize) {
		return DefaultAddressByteSize
	}
	return b.addrSize
}

func (b *Buffer) String() string {
	const maxShown = 16
	shown := b.buf
	suffix := ""
	if len(shown) > maxShown {
		shown = shown[:maxShown]
		suffix = "..."
	}
	return fmt.Sprintf("Buffer{len=%d, order=%s, addrSize=%d, bytes=% X%s}",
		len(b.buf), b.ByteOrder(), b.AddressByteSize(), shown, suffix)
}

// read returns the operand bytes for a fixed-width decode, or ErrOutOfRange
// if any part of the operand lies past the end of the buffer.
func (b *Buffer) read(offset, size int) ([]byte, error) {
	if offset < 0 || offset+size > len(b.buf) {
		return nil, fmt.Errorf("%w: %d bytes at offset %d in %d-byte buffer",
			ErrOutOfRange, size, offset, len(b.buf))
	}
	return b.buf[offset : offset+size], nil
}

// Uint8 decodes an unsigned 8-bit value at offset.
func (b *Buffer) Uint8(offset int) (uint8, error) {
	p, err := b.read(offset, 1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

// Uint16 decodes an unsigned 16-bit value at offset.
func (b *Buffer) Uint16(offset int) (uint16, error) {
	p, err := b.read(offset, 2)
	if err != nil {
		return 0, err
	}
	return b.ByteOrder().binaryOrder().Uint16(p), nil
}

// Uint32 decodes an unsigned 32-bit value at offset.
func (b *Buffer) Uint32(offset int) (uint32, error) {
	p, err := b.read(offset, 4)
	if err != nil {
		return 0, err
	}
	return b.ByteOrder().binaryOrder().Uint32(p), nil
}

// Uint64 decodes an unsigned 64-bit value at offset.
func (b *Buffer) Uint64(offset int) (uint64, error) {
	p, err := b.read(offset, 8)
	if err != nil {
		return 0, err
	}
	return b.ByteOrder().binaryOrder().Uint64(p), nil
}

// Int8 decodes a signed 8-bit value at offset.
func (b *Buffer) Int8(offset int) (int8, error) {
	v, err := b.Uint8(offset)
	return int8(v), err
}

// Int16 decodes a signed 16-bit value at offset.
func (b *Buffer) Int16(offset int) (int16, error) {
	v, err := b.Uint16(offset)
	return int16(v), err
}

// Int32 decodes a signed 32-bit value at offset.
func (b *Buffer) Int32(offset int) (int32, error) {
	v, err := b.Uint32(offset)
	return int32(v), err
}

// Int64 decodes a signed 64-bit value at offset.
func (b *Buffer) Int64(offset int) (int64, error) {
	v, err := b.Uint64(offset)
	return int64(v), err
}

// Float decodes a 4-byte IEEE-754 float at offset.
func (b *Buffer) Float(offset int) (float32, error) {
	v, err := b.Uint32(offset)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// Double decodes an 8-byte IEEE-754 double at offset.
func (b *Buffer) Double(offset int) (float64, error) {
	v, err := b.Uint64(offset)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// Address decodes a pointer-width value at offset. The operand width is the
// buffer's address byte size; 4-byte addresses are zero-extended.
func (b *Buffer) Address(offset int) (uint64, error) {
	if b.AddressByteSize() == 4 {
		v, err := b.Uint32(offset)
		return uint64(v), err
	}
	return b.Uint64(offset)
}
