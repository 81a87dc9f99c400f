package mem

import (
	"fmt"
	"sort"
)

// RegionBuffer implements Reader for a single contiguous region of debuggee
// memory, typically the contents of one snapshot dump file.
type RegionBuffer struct {
	// Name identifies the region in diagnostics ("RAM", "stack", ...).
	Name string
	// Base is the load address of the first byte.
	Base uint64
	// Data holds the memory contents.
	Data []byte
}

// NewRegionBuffer creates a region covering [base, base+len(data)).
func NewRegionBuffer(name string, base uint64, data []byte) *RegionBuffer {
	return &RegionBuffer{Name: name, Base: base, Data: data}
}

// ReadMemory implements Reader. Reads starting inside the region are
// satisfied up to the region end; reads starting outside it fail with
// ErrUnmappedAddress.
func (rb *RegionBuffer) ReadMemory(addr uint64, p []byte) (int, error) {
	if !rb.Contains(addr) {
		return 0, fmt.Errorf("%w: 0x%X outside region %s (0x%X - 0x%X)",
			ErrUnmappedAddress, addr, rb.Name, rb.Base, rb.EndAddr())
	}
	offset := addr - rb.Base
	available := uint64(len(rb.Data)) - offset
	toRead := uint64(len(p))
	if toRead > available {
		toRead = available
	}
	copy(p, rb.Data[offset:offset+toRead])
	return int(toRead), nil
}

// Contains reports whether addr falls inside this region.
func (rb *RegionBuffer) Contains(addr uint64) bool {
	return addr >= rb.Base && addr < rb.EndAddr()
}

// EndAddr returns the address immediately after the last byte.
func (rb *RegionBuffer) EndAddr() uint64 {
	return rb.Base + uint64(len(rb.Data))
}

func (rb *RegionBuffer) String() string {
	return fmt.Sprintf("%s [0x%X - 0x%X)", rb.Name, rb.Base, rb.EndAddr())
}

// MultiRegionReader implements Reader over a set of non-overlapping regions,
// modeling a full debuggee memory map assembled from several dump files.
type MultiRegionReader struct {
	regions []*RegionBuffer
}

// NewMultiRegionReader creates an empty memory map.
func NewMultiRegionReader() *MultiRegionReader {
	return &MultiRegionReader{}
}

// AddRegion inserts a region, keeping the map sorted by base address.
// Returns ErrRegionOverlap if the region intersects one already present.
func (mr *MultiRegionReader) AddRegion(region *RegionBuffer) error {
	for _, existing := range mr.regions {
		if region.Base < existing.EndAddr() && existing.Base < region.EndAddr() {
			return fmt.Errorf("%w: %s intersects %s", ErrRegionOverlap, region, existing)
		}
	}
	mr.regions = append(mr.regions, region)
	sort.Slice(mr.regions, func(i, j int) bool {
		return mr.regions[i].Base < mr.regions[j].Base
	})
	return nil
}

// Regions returns the regions in ascending base-address order.
func (mr *MultiRegionReader) Regions() []*RegionBuffer {
	return mr.regions
}

// ReadMemory implements Reader by delegating to the region containing addr.
func (mr *MultiRegionReader) ReadMemory(addr uint64, p []byte) (int, error) {
	for _, region := range mr.regions {
		if region.Contains(addr) {
			return region.ReadMemory(addr, p)
		}
	}
	return 0, fmt.Errorf("%w: 0x%X not in any of %d regions",
		ErrUnmappedAddress, addr, len(mr.regions))
}
