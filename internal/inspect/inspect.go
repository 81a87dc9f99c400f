// Package inspect implements the meminspect command: it loads a memory
// snapshot, opens an inspection session over it, and prints requested typed
// values and hex dumps.
package inspect

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"dbgdata/common"
	"dbgdata/snapshot"
	"dbgdata/value"
)

// Request names one typed read: decode Type at Addr, after following
// Derefs pointer hops.
type Request struct {
	Name   string
	Addr   uint64
	Type   value.BasicType
	Derefs int
}

// ParseRequest parses a "name:addr:type[:derefs]" spec, e.g.
// "foo.a:0x1000:uint32" or "head:0x2000:int64:1".
func ParseRequest(spec string) (Request, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return Request{}, fmt.Errorf("bad read spec %q: want name:addr:type[:derefs]", spec)
	}

	addr, err := strconv.ParseUint(parts[1], 0, 64)
	if err != nil {
		return Request{}, fmt.Errorf("bad read spec %q: address: %v", spec, err)
	}

	typ := value.ResolveBasicType(parts[2])
	if !typ.Valid() {
		return Request{}, fmt.Errorf("bad read spec %q: unknown type %q", spec, parts[2])
	}

	req := Request{Name: parts[0], Addr: addr, Type: typ}
	if len(parts) == 4 {
		derefs, err := strconv.Atoi(parts[3])
		if err != nil || derefs < 0 {
			return Request{}, fmt.Errorf("bad read spec %q: dereference count %q", spec, parts[3])
		}
		req.Derefs = derefs
	}
	return req, nil
}

// Config carries the command line arguments of meminspect.
type Config struct {
	SnapshotDir  string
	Requests     []Request
	DumpAddr     uint64
	DumpLen      int
	Verbose      bool
	OutputWriter io.Writer
}

// Run loads the snapshot and serves every request in order.
func Run(cfg Config) error {
	w := cfg.OutputWriter
	if w == nil {
		w = os.Stdout
	}

	logger := common.Logger(common.NewNoOpLogger())
	if cfg.Verbose {
		logger = common.NewStdLogger(common.SeverityDebug)
	}

	snap, err := snapshot.Load(cfg.SnapshotDir, logger)
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}
	fmt.Fprintf(w, "snapshot: %s (%s, %d-byte addresses)\n",
		cfg.SnapshotDir, snap.ByteOrder(), snap.AddressByteSize())

	sess, err := snap.NewSession(logger)
	if err != nil {
		return fmt.Errorf("opening session: %w", err)
	}
	defer sess.Close()

	return RunSession(cfg, sess)
}

// RunSession serves the configured requests over an already-open session.
// Live callers (ptrace) use this directly; the session stays open.
func RunSession(cfg Config, sess *value.Session) error {
	w := cfg.OutputWriter
	if w == nil {
		w = os.Stdout
	}

	for _, req := range cfg.Requests {
		if err := serveRequest(w, sess, req); err != nil {
			return err
		}
	}

	if cfg.DumpLen > 0 {
		buf, err := sess.ReadDereferenced(cfg.DumpAddr, 0, cfg.DumpLen)
		if err != nil {
			return fmt.Errorf("dumping 0x%X: %w", cfg.DumpAddr, err)
		}
		fmt.Fprintf(w, "dump of %d bytes at 0x%X:\n%s", cfg.DumpLen, cfg.DumpAddr, hex.Dump(buf.Bytes()))
	}
	return nil
}

func serveRequest(w io.Writer, sess *value.Session, req Request) error {
	addr := req.Addr
	if req.Derefs > 0 {
		// Resolve the pointer chain first so the value binds to the final
		// address and stays live there.
		buf, err := sess.ReadDereferenced(addr, req.Derefs-1, sess.AddressByteSize())
		if err != nil {
			return fmt.Errorf("read %s: %w", req.Name, err)
		}
		addr, err = buf.Address(0)
		if err != nil {
			return fmt.Errorf("read %s: %w", req.Name, err)
		}
	}

	v := sess.CreateValueFromAddress(req.Name, addr, req.Type)
	rendered, err := render(v)
	if err != nil {
		return fmt.Errorf("read %s: %w", req.Name, err)
	}
	fmt.Fprintf(w, "%-16s %-8s @ 0x%-12X = %s\n", req.Name, req.Type, addr, rendered)
	return nil
}

func render(v *value.Value) (string, error) {
	switch {
	case v.Type().FloatingPoint():
		f, err := v.Float()
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	case v.Type().Signed():
		i, err := v.Int()
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(i, 10), nil
	case v.Type() == value.TypePointer:
		u, err := v.Uint()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("0x%X", u), nil
	default:
		u, err := v.Uint()
		if err != nil {
			return "", err
		}
		return strconv.FormatUint(u, 10), nil
	}
}
