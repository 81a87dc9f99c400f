package value

import (
	"errors"
	"fmt"
	"io"
	"math"

	"dbgdata/common"
	"dbgdata/data"
	"dbgdata/mem"
)

// ErrSessionClosed is returned by operations on a closed session.
var ErrSessionClosed = errors.New("session closed")

// Session scopes access to one debuggee. It carries the memory reader, the
// target's default byte order and address size, and a logger, and is the
// factory for typed values. Sessions are single-threaded: no operation
// starts background work, and nothing here is safe for concurrent use.
//
// Close releases the underlying reader (detaching a live ptrace reader, for
// example). Create a session per inspection run rather than holding one in
// package state.
type Session struct {
	reader   mem.Reader
	order    data.ByteOrder
	addrSize int
	log      common.Logger
	closed   bool
}

// NewSession opens a session over r with the target's byte order and
// address size. A nil logger defaults to the no-op logger.
func NewSession(r mem.Reader, order data.ByteOrder, addrSize int, logger common.Logger) (*Session, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil reader", data.ErrInvalidArgument)
	}
	if !order.Valid() {
		return nil, fmt.Errorf("%w: byte order %d", data.ErrInvalidArgument, int(order))
	}
	if !data.ValidAddressByteSize(addrSize) {
		return nil, fmt.Errorf("%w: address byte size %d", data.ErrInvalidArgument, addrSize)
	}
	if logger == nil {
		logger = common.NewNoOpLogger()
	}
	logger.Debugf("session opened: %s, %d-byte addresses", order, addrSize)
	return &Session{reader: r, order: order, addrSize: addrSize, log: logger}, nil
}

// ByteOrder returns the session's target byte order.
func (s *Session) ByteOrder() data.ByteOrder {
	return s.order
}

// AddressByteSize returns the session's target pointer width.
func (s *Session) AddressByteSize() int {
	return s.addrSize
}

// Close releases the session's reader if it holds releasable resources.
// The session is unusable afterwards; Close is idempotent.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.log.Debugf("session closed")
	if c, ok := s.reader.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// CreateValueFromAddress produces a live-backed value named name, bound to
// loadAddr with the given type. Its Data is re-read from the debuggee on
// every call. An invalid type yields an invalid value, never a fault; the
// caller checks IsValid or the error from the first access.
func (s *Session) CreateValueFromAddress(name string, loadAddr uint64, typ BasicType) *Value {
	if s.closed || !typ.Valid() {
		s.log.Debugf("value %q not created: type %s, session closed %v", name, typ, s.closed)
		return &Value{name: name}
	}
	return &Value{
		name:     name,
		typ:      typ,
		kind:     backingLive,
		reader:   s.reader,
		addr:     loadAddr,
		order:    s.order,
		addrSize: s.addrSize,
	}
}

// CreateValueFromData produces a snapshot-backed value over a private copy
// of buf. The result is not linked to any live memory: it has no load
// address, and AddressOf reports false. An invalid type yields an invalid
// value.
func (s *Session) CreateValueFromData(name string, buf *data.Buffer, typ BasicType) *Value {
	if s.closed || !typ.Valid() || buf == nil {
		return &Value{name: name}
	}
	private, err := data.New(buf.Bytes(), buf.ByteOrder(), buf.AddressByteSize())
	if err != nil {
		s.log.Errorf("value %q: copying data: %v", name, err)
		return &Value{name: name}
	}
	return &Value{name: name, typ: typ, kind: backingSnapshot, buf: private}
}

// ReadValueAtAddress snapshots the memory a live value would read, without
// creating the value. Convenience for one-shot inspection.
func (s *Session) ReadValueAtAddress(addr uint64, typ BasicType) (*data.Buffer, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidType, typ)
	}
	return mem.Snapshot(s.reader, addr, typ.Size(s.addrSize), s.order, s.addrSize)
}

// ReadDereferenced follows derefs pointer hops from addr and snapshots n
// bytes at the final address.
func (s *Session) ReadDereferenced(addr uint64, derefs, n int) (*data.Buffer, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	return mem.ReadDereferenced(s.reader, s.order, s.addrSize, addr, derefs, n)
}

// DataFromCString builds a buffer from str plus a terminating zero byte,
// carrying the session's decode metadata.
func (s *Session) DataFromCString(str string) *data.Buffer {
	b := s.emptyBuffer()
	_ = b.SetData(append([]byte(str), 0), s.order, s.addrSize)
	return b
}

// DataFromUint32Array serializes values in the session's byte order.
func (s *Session) DataFromUint32Array(values []uint32) *data.Buffer {
	b := s.emptyBuffer()
	for _, v := range values {
		b.AppendUint32(v)
	}
	return b
}

// DataFromUint64Array serializes values in the session's byte order.
func (s *Session) DataFromUint64Array(values []uint64) *data.Buffer {
	b := s.emptyBuffer()
	for _, v := range values {
		b.AppendUint64(v)
	}
	return b
}

// DataFromInt32Array serializes values in the session's byte order.
func (s *Session) DataFromInt32Array(values []int32) *data.Buffer {
	b := s.emptyBuffer()
	for _, v := range values {
		b.AppendUint32(uint32(v))
	}
	return b
}

// DataFromInt64Array serializes values in the session's byte order.
func (s *Session) DataFromInt64Array(values []int64) *data.Buffer {
	b := s.emptyBuffer()
	for _, v := range values {
		b.AppendUint64(uint64(v))
	}
	return b
}

// DataFromDoubleArray serializes values in the session's byte order.
func (s *Session) DataFromDoubleArray(values []float64) *data.Buffer {
	b := s.emptyBuffer()
	for _, v := range values {
		b.AppendUint64(math.Float64bits(v))
	}
	return b
}

// emptyBuffer returns a zero-length buffer with the session's metadata.
func (s *Session) emptyBuffer() *data.Buffer {
	b, _ := data.New(nil, s.order, s.addrSize)
	return b
}
