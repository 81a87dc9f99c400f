// Package mem defines the memory-access contract between the inspection
// layer and the debuggee, plus offline (snapshot region) and live (ptrace)
// implementations of it.
package mem

import (
	"errors"
	"fmt"

	"dbgdata/data"
)

// Errors returned by memory readers.
var (
	ErrUnmappedAddress = errors.New("address not mapped")
	ErrRegionOverlap   = errors.New("memory regions overlap")
)

// Reader reads debuggee memory. This is the one contract the inspection
// layer requires of the runtime under test.
//
// Implementations can provide:
// - In-memory regions loaded from snapshot dump files
// - Mocked memory for unit tests
// - Live process memory via ptrace
//
// ReadMemory fills p with bytes starting at addr and returns the count
// actually read. A read that starts inside a mapped region but runs off its
// end returns a short count with no error; a read starting at an unmapped
// address returns 0 and an error wrapping ErrUnmappedAddress. Unaligned
// accesses must be supported.
type Reader interface {
	ReadMemory(addr uint64, p []byte) (int, error)
}

// Snapshot copies n bytes of memory starting at addr into a fresh buffer
// with the given decode metadata. The result is a point-in-time copy, never
// a view: later changes to the underlying memory do not affect it. If the
// region ends before n bytes are available, the tail of the buffer is
// zero-filled, matching the decode overrun policy of package data.
func Snapshot(r Reader, addr uint64, n int, order data.ByteOrder, addrSize int) (*data.Buffer, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil reader", data.ErrInvalidArgument)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", data.ErrInvalidArgument, n)
	}
	buf := make([]byte, n)
	if n > 0 {
		if _, err := r.ReadMemory(addr, buf); err != nil {
			return nil, fmt.Errorf("snapshot %d bytes at 0x%X: %w", n, addr, err)
		}
	}
	return data.New(buf, order, addrSize)
}

// ReadPointer reads a pointer-width value from memory at addr and returns
// it as a 64-bit address. The full pointer must be mapped.
func ReadPointer(r Reader, order data.ByteOrder, addrSize int, addr uint64) (uint64, error) {
	if !data.ValidAddressByteSize(addrSize) {
		return 0, fmt.Errorf("%w: address byte size %d", data.ErrInvalidArgument, addrSize)
	}
	buf := make([]byte, addrSize)
	got, err := r.ReadMemory(addr, buf)
	if err != nil {
		return 0, fmt.Errorf("read pointer at 0x%X: %w", addr, err)
	}
	if got < addrSize {
		return 0, fmt.Errorf("read pointer at 0x%X: %w", addr+uint64(got), ErrUnmappedAddress)
	}
	b, err := data.New(buf, order, addrSize)
	if err != nil {
		return 0, err
	}
	return b.Address(0)
}

// ReadDereferenced answers the "N bytes at pointer P, dereferenced K times"
// request: it follows derefs pointer hops starting at addr, then snapshots n
// bytes at the final address. derefs of 0 snapshots memory at addr itself.
func ReadDereferenced(r Reader, order data.ByteOrder, addrSize int, addr uint64, derefs, n int) (*data.Buffer, error) {
	if derefs < 0 {
		return nil, fmt.Errorf("%w: negative dereference count %d", data.ErrInvalidArgument, derefs)
	}
	for i := 0; i < derefs; i++ {
		next, err := ReadPointer(r, order, addrSize, addr)
		if err != nil {
			return nil, fmt.Errorf("dereference %d of %d: %w", i+1, derefs, err)
		}
		addr = next
	}
	return Snapshot(r, addr, n, order, addrSize)
}
