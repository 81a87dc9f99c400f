// Package snapshot loads offline memory snapshots: a directory holding a
// snapshot.toml manifest next to raw dump files, describing the debuggee
// memory map captured at one point in time.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"dbgdata/common"
	"dbgdata/data"
	"dbgdata/mem"
	"dbgdata/value"
)

// ManifestName is the manifest file expected inside a snapshot directory.
const ManifestName = "snapshot.toml"

// supportedVersion is the only manifest format this loader understands.
const supportedVersion = "1.0"

// manifest mirrors the snapshot.toml layout.
type manifest struct {
	Version     string       `toml:"version"`
	Description string       `toml:"description"`
	ByteOrder   string       `toml:"byte_order"`
	AddressSize int          `toml:"address_size"`
	Regions     []regionSpec `toml:"region"`
}

type regionSpec struct {
	Name   string `toml:"name"`
	Base   uint64 `toml:"base"`
	File   string `toml:"file"`
	Offset int64  `toml:"offset"`
	Length int64  `toml:"length"`
}

// Snapshot is a loaded memory snapshot: the target's decode metadata plus a
// readable memory map assembled from the dump files.
type Snapshot struct {
	Description string

	order    data.ByteOrder
	addrSize int
	reader   *mem.MultiRegionReader
}

// Load reads the manifest in dir, loads every region dump, and assembles
// the memory map. A nil logger defaults to the no-op logger. All validation
// failures are explicit errors; nothing is silently skipped.
func Load(dir string, logger common.Logger) (*Snapshot, error) {
	if logger == nil {
		logger = common.NewNoOpLogger()
	}

	path := filepath.Join(dir, ManifestName)
	var m manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("load snapshot manifest: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		logger.Warningf("snapshot manifest %s: unknown keys %v", path, undecoded)
	}

	if m.Version != supportedVersion {
		return nil, fmt.Errorf("unsupported snapshot manifest version %q", m.Version)
	}
	if len(m.Regions) == 0 {
		return nil, fmt.Errorf("snapshot manifest %s defines no regions", path)
	}

	order, err := parseByteOrder(m.ByteOrder)
	if err != nil {
		return nil, err
	}
	addrSize := m.AddressSize
	if addrSize == 0 {
		addrSize = data.DefaultAddressByteSize
	}
	if !data.ValidAddressByteSize(addrSize) {
		return nil, fmt.Errorf("%w: address_size %d", data.ErrInvalidArgument, addrSize)
	}

	reader := mem.NewMultiRegionReader()
	for i, spec := range m.Regions {
		region, err := loadRegion(dir, i, spec)
		if err != nil {
			return nil, err
		}
		if err := reader.AddRegion(region); err != nil {
			return nil, fmt.Errorf("snapshot region %q: %w", region.Name, err)
		}
		logger.Infof("loaded region %s (%d bytes)", region, len(region.Data))
	}

	logger.Infof("snapshot %q loaded: %d regions, %s, %d-byte addresses",
		m.Description, len(m.Regions), order, addrSize)
	return &Snapshot{
		Description: m.Description,
		order:       order,
		addrSize:    addrSize,
		reader:      reader,
	}, nil
}

// loadRegion reads one dump file and applies the optional offset/length
// window.
func loadRegion(dir string, idx int, spec regionSpec) (*mem.RegionBuffer, error) {
	name := spec.Name
	if name == "" {
		name = fmt.Sprintf("region%d", idx)
	}
	if spec.File == "" {
		return nil, fmt.Errorf("snapshot region %q: no dump file", name)
	}

	raw, err := os.ReadFile(filepath.Join(dir, spec.File))
	if err != nil {
		return nil, fmt.Errorf("snapshot region %q: %w", name, err)
	}

	if spec.Offset < 0 || spec.Offset > int64(len(raw)) {
		return nil, fmt.Errorf("snapshot region %q: offset %d outside dump of %d bytes",
			name, spec.Offset, len(raw))
	}
	raw = raw[spec.Offset:]
	if spec.Length < 0 || spec.Length > int64(len(raw)) {
		return nil, fmt.Errorf("snapshot region %q: length %d exceeds dump window of %d bytes",
			name, spec.Length, len(raw))
	}
	if spec.Length > 0 {
		raw = raw[:spec.Length]
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("snapshot region %q: empty", name)
	}
	return mem.NewRegionBuffer(name, spec.Base, raw), nil
}

func parseByteOrder(s string) (data.ByteOrder, error) {
	switch s {
	case "", "little", "little-endian":
		return data.LittleEndian, nil
	case "big", "big-endian":
		return data.BigEndian, nil
	default:
		return data.ByteOrderInvalid, fmt.Errorf("%w: byte_order %q", data.ErrInvalidArgument, s)
	}
}

// ByteOrder returns the snapshot target's byte order.
func (s *Snapshot) ByteOrder() data.ByteOrder {
	return s.order
}

// AddressByteSize returns the snapshot target's pointer width.
func (s *Snapshot) AddressByteSize() int {
	return s.addrSize
}

// Reader returns the assembled memory map.
func (s *Snapshot) Reader() *mem.MultiRegionReader {
	return s.reader
}

// NewSession opens an inspection session over the snapshot's memory map,
// carrying its byte order and address size.
func (s *Snapshot) NewSession(logger common.Logger) (*value.Session, error) {
	return value.NewSession(s.reader, s.order, s.addrSize, logger)
}
