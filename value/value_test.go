package value

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"dbgdata/data"
	"dbgdata/mem"
)

// testTarget builds a session over a small memory map:
// 0x1000: uint32 1, int16 9, int16 0, float 3.14  (a struct-like record)
// 0x2000: a pointer to 0x1000
func testTarget(t *testing.T) (*Session, *mem.RegionBuffer) {
	t.Helper()

	record := data.FromUint32Array([]uint32{1})
	record.AppendUint32(9) // two int16s, little-endian: 9 then 0
	record.AppendUint32(math.Float32bits(3.14))

	region := mem.NewRegionBuffer("record", 0x1000, record.Bytes())
	ptr := mem.NewRegionBuffer("ptr", 0x2000, data.FromUint64Array([]uint64{0x1000}).Bytes())

	mr := mem.NewMultiRegionReader()
	for _, r := range []*mem.RegionBuffer{region, ptr} {
		if err := mr.AddRegion(r); err != nil {
			t.Fatalf("AddRegion(%s) error: %v", r.Name, err)
		}
	}

	s, err := NewSession(mr, data.LittleEndian, 8, nil)
	if err != nil {
		t.Fatalf("NewSession error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, region
}

func TestCreateValueFromAddress_LiveView(t *testing.T) {
	s, region := testTarget(t)

	v := s.CreateValueFromAddress("foo_a", 0x1000, TypeUInt32)
	if !v.IsValid() || !v.Live() {
		t.Fatalf("expected valid live value, got %s", v)
	}
	if got, err := v.Uint(); err != nil || got != 1 {
		t.Fatalf("Uint() = (%d, %v), want 1", got, err)
	}
	if addr := v.LoadAddress(); addr != 0x1000 {
		t.Errorf("LoadAddress() = 0x%X, want 0x1000", addr)
	}

	// A live value re-reads memory on every access: a debuggee write is
	// visible on the next Data call.
	region.Data[0] = 42
	if got, err := v.Uint(); err != nil || got != 42 {
		t.Errorf("Uint() after write = (%d, %v), want 42", got, err)
	}
}

func TestCreateValueFromAddress_InvalidType(t *testing.T) {
	s, _ := testTarget(t)

	// An unresolved type must flow through without faulting.
	v := s.CreateValueFromAddress("nothing", 0x1000, ResolveBasicType("no such type"))
	if v.IsValid() {
		t.Fatalf("expected invalid value, got %s", v)
	}
	if _, err := v.Data(); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Data() err = %v, want ErrInvalidValue", err)
	}
	if addr := v.LoadAddress(); addr != InvalidLoadAddress {
		t.Errorf("LoadAddress() = 0x%X, want InvalidLoadAddress", addr)
	}
}

func TestCreateValueFromData_Snapshot(t *testing.T) {
	s, _ := testTarget(t)

	src := s.DataFromUint32Array([]uint32{7})
	v := s.CreateValueFromData("frozen", src, TypeUInt32)
	if !v.IsValid() || v.Live() {
		t.Fatalf("expected valid snapshot value, got %s", v)
	}

	// No live address, and never a plausible-looking zero.
	if addr := v.LoadAddress(); addr != InvalidLoadAddress {
		t.Errorf("LoadAddress() = 0x%X, want InvalidLoadAddress", addr)
	}
	if addr, ok := v.AddressOf(); ok || addr != 0 {
		t.Errorf("AddressOf() = (0x%X, %v), want (0, false)", addr, ok)
	}
	if v.HasAddress() {
		t.Error("HasAddress() = true for snapshot-backed value")
	}

	// The value holds a private copy: mutating the source afterwards
	// changes nothing.
	if err := src.SetData([]byte{0xFF, 0xFF, 0xFF, 0xFF}, data.LittleEndian, 8); err != nil {
		t.Fatalf("SetData error: %v", err)
	}
	if got, err := v.Uint(); err != nil || got != 7 {
		t.Errorf("Uint() = (%d, %v), want 7 after source mutation", got, err)
	}
}

func TestValue_SignedAndFloat(t *testing.T) {
	s, _ := testTarget(t)

	neg := s.CreateValueFromData("neg", s.DataFromInt32Array([]int32{-3}), TypeInt32)
	if got, err := neg.Int(); err != nil || got != -3 {
		t.Errorf("Int() = (%d, %v), want -3", got, err)
	}

	f := s.CreateValueFromAddress("foo_c", 0x1008, TypeFloat)
	got, err := f.Float()
	if err != nil {
		t.Fatalf("Float() error: %v", err)
	}
	if math.Abs(got-3.14) > 1e-6 {
		t.Errorf("Float() = %g, want 3.14", got)
	}

	// Float decode is only defined for floating-point types.
	if _, err := neg.Float(); !errors.Is(err, ErrInvalidType) {
		t.Errorf("Float() on int32 err = %v, want ErrInvalidType", err)
	}
}

func TestValue_PointeeData(t *testing.T) {
	s, _ := testTarget(t)

	p := s.CreateValueFromAddress("p", 0x2000, TypePointer)
	buf, err := p.PointeeData(4)
	if err != nil {
		t.Fatalf("PointeeData error: %v", err)
	}
	if got, _ := buf.Uint32(0); got != 1 {
		t.Errorf("pointee Uint32(0) = %d, want 1", got)
	}

	// A snapshot-backed pointer has no memory to read through.
	frozen := s.CreateValueFromData("fp", s.DataFromUint64Array([]uint64{0x1000}), TypePointer)
	if _, err := frozen.PointeeData(4); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("PointeeData on snapshot value err = %v, want ErrInvalidAddress", err)
	}
}

func TestZeroValueIsInert(t *testing.T) {
	var v *Value
	if v.IsValid() || v.Name() != "" || v.Type() != TypeInvalid {
		t.Error("nil value should be invalid and inert")
	}
	if addr := v.LoadAddress(); addr != InvalidLoadAddress {
		t.Errorf("nil LoadAddress() = 0x%X, want InvalidLoadAddress", addr)
	}

	empty := &Value{}
	if _, err := empty.Data(); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("empty Data() err = %v, want ErrInvalidValue", err)
	}
	if _, err := empty.Uint(); err == nil {
		t.Error("empty Uint() should fail")
	}
}

func TestResolveBasicType(t *testing.T) {
	tests := []struct {
		name string
		want BasicType
	}{
		{"uint32", TypeUInt32},
		{"unsigned int", TypeUInt32},
		{"long long", TypeInt64},
		{"double", TypeDouble},
		{"void *", TypePointer},
		{"struct foo", TypeInvalid},
		{"", TypeInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveBasicType(tt.name); got != tt.want {
				t.Errorf("ResolveBasicType(%q) = %s, want %s", tt.name, got, tt.want)
			}
		})
	}
}

func TestBasicType_Size(t *testing.T) {
	tests := []struct {
		typ      BasicType
		addrSize int
		want     int
	}{
		{TypeUInt8, 8, 1},
		{TypeInt16, 8, 2},
		{TypeFloat, 8, 4},
		{TypeDouble, 8, 8},
		{TypePointer, 4, 4},
		{TypePointer, 8, 8},
		{TypeInvalid, 8, 0},
	}
	for _, tt := range tests {
		if got := tt.typ.Size(tt.addrSize); got != tt.want {
			t.Errorf("%s.Size(%d) = %d, want %d", tt.typ, tt.addrSize, got, tt.want)
		}
	}
}

func TestSession_DataBuilders(t *testing.T) {
	s, _ := testTarget(t)

	cs := s.DataFromCString("hello!")
	want := []byte{104, 101, 108, 108, 111, 33, 0}
	if diff := cmp.Diff(want, cs.Bytes()); diff != "" {
		t.Errorf("DataFromCString mismatch (-want +got):\n%s", diff)
	}

	u64 := s.DataFromUint64Array([]uint64{1, 2, 3, 4, 5})
	for i := 0; i < 5; i++ {
		if got, err := u64.Uint64(8 * i); err != nil || got != uint64(i+1) {
			t.Errorf("Uint64(%d) = (%d, %v), want %d", 8*i, got, err, i+1)
		}
	}

	d := s.DataFromDoubleArray([]float64{6.28})
	if got, err := d.Double(0); err != nil || math.Abs(got-6.28) > 1e-12 {
		t.Errorf("Double(0) = (%g, %v), want 6.28", got, err)
	}
}

func TestSession_BigEndianBuilders(t *testing.T) {
	mr := mem.NewMultiRegionReader()
	s, err := NewSession(mr, data.BigEndian, 4, nil)
	if err != nil {
		t.Fatalf("NewSession error: %v", err)
	}
	defer s.Close()

	b := s.DataFromUint32Array([]uint32{0x01020304})
	if diff := cmp.Diff([]byte{0x01, 0x02, 0x03, 0x04}, b.Bytes()); diff != "" {
		t.Errorf("big-endian serialization mismatch (-want +got):\n%s", diff)
	}
	if b.ByteOrder() != data.BigEndian || b.AddressByteSize() != 4 {
		t.Errorf("builder metadata = %s/%d, want big-endian/4", b.ByteOrder(), b.AddressByteSize())
	}
}

func TestSession_Close(t *testing.T) {
	s, _ := testTarget(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close error: %v", err)
	}

	if v := s.CreateValueFromAddress("late", 0x1000, TypeUInt32); v.IsValid() {
		t.Error("CreateValueFromAddress after Close should yield an invalid value")
	}
	if _, err := s.ReadDereferenced(0x2000, 1, 4); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("ReadDereferenced after Close err = %v, want ErrSessionClosed", err)
	}
}

func TestSession_ReadDereferenced(t *testing.T) {
	s, _ := testTarget(t)

	buf, err := s.ReadDereferenced(0x2000, 1, 4)
	if err != nil {
		t.Fatalf("ReadDereferenced error: %v", err)
	}
	if got, _ := buf.Uint32(0); got != 1 {
		t.Errorf("dereferenced Uint32(0) = %d, want 1", got)
	}
}
