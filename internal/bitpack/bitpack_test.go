package bitpack

import (
	"math/rand"
	"testing"
)

func TestUnpack4InvalidLength(t *testing.T) {
	if got := Unpack4(nil, false); got != nil {
		t.Errorf("Unpack4(nil) = %v, want nil", got)
	}
	if got := Unpack4([]byte{1, 2, 3}, false); got != nil {
		t.Errorf("Unpack4(short) = %v, want nil", got)
	}
}

func TestUnpack5InvalidLength(t *testing.T) {
	if got := Unpack5(nil, false); got != nil {
		t.Errorf("Unpack5(nil) = %v, want nil", got)
	}
	if got := Unpack5([]byte{1, 2, 3, 4, 5, 6, 7}, false); got != nil {
		t.Errorf("Unpack5(short) = %v, want nil", got)
	}
}

func TestUnpack4KnownWord(t *testing.T) {
	// little-endian word 0x123456789ABCDEF0 -> low-to-high nibbles.
	src := []byte{0xF0, 0xDE, 0xBC, 0x9A, 0x78, 0x56, 0x34, 0x12}
	got := Unpack4(src, false)
	want := []uint16{0, 0xf, 0xe, 0xd, 0xc, 0xb, 0xa, 0x9, 0x8, 0x7, 0x6, 0x5, 0x4, 0x3, 0x2, 0x1}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("lane %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestUnpack4BothEndiannesses(t *testing.T) {
	le := []byte{0x10, 0x32, 0x54, 0x76, 0x98, 0xba, 0xdc, 0xfe}
	be := []byte{0xfe, 0xdc, 0xba, 0x98, 0x76, 0x54, 0x32, 0x10}
	src := func(word []byte) []byte { return append(append([]byte{}, word...), word...) }

	want := make([]uint16, 32)
	for i := range want {
		want[i] = uint16(i % 16)
	}

	for _, tt := range []struct {
		name string
		src  []byte
		be   bool
	}{
		{"little-endian", src(le), false},
		{"big-endian", src(be), true},
	} {
		got := Unpack4(tt.src, tt.be)
		if len(got) != len(want) {
			t.Fatalf("%s: len = %d, want %d", tt.name, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s: lane %d = %d, want %d", tt.name, i, got[i], want[i])
			}
		}
	}
}

func TestUnpack5BothEndiannesses(t *testing.T) {
	// Two words whose 24 quintets count 0..23.
	le := []byte{
		0x20, 0x88, 0x41, 0x8a, 0x39, 0x28, 0xa9, 0x05,
		0xac, 0xb9, 0x07, 0xa3, 0x9c, 0xb4, 0xda, 0x0b,
	}
	be := []byte{
		0x05, 0xa9, 0x28, 0x39, 0x8a, 0x41, 0x88, 0x20,
		0x0b, 0xda, 0xb4, 0x9c, 0xa3, 0x07, 0xb9, 0xac,
	}

	for _, tt := range []struct {
		name string
		src  []byte
		be   bool
	}{
		{"little-endian", le, false},
		{"big-endian", be, true},
	} {
		got := Unpack5(tt.src, tt.be)
		if len(got) != 24 {
			t.Fatalf("%s: len = %d, want 24", tt.name, len(got))
		}
		for i := 0; i < 24; i++ {
			if got[i] != uint16(i) {
				t.Errorf("%s: lane %d = %d, want %d", tt.name, i, got[i], i)
			}
		}
	}
}

func TestSwapIsAnInvolution(t *testing.T) {
	src := randBytes(64)
	if got := Swap32(Swap32(src)); !bytesEqual(got, src) {
		t.Error("swap32(swap32(b)) != b")
	}
	if got := Swap64(Swap64(src)); !bytesEqual(got, src) {
		t.Error("swap64(swap64(b)) != b")
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestUnpack5HighLanesAreUnused(t *testing.T) {
	// all bits set: 12 lanes of 5 bits consume 60 bits, top 4 bits of the
	// 64-bit word are padding and never emitted.
	src := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	got := Unpack5(src, false)
	if len(got) != 12 {
		t.Fatalf("len = %d, want 12", len(got))
	}
	for i, v := range got {
		if v != 0x1f {
			t.Errorf("lane %d = %#x, want 0x1f", i, v)
		}
	}
}

func randBytes(n int) []byte {
	b := make([]byte, n)
	rand.New(rand.NewSource(1)).Read(b)
	return b
}

func TestTiersAreBitwiseIdentical(t *testing.T) {
	src := randBytes(8 * 37) // several full batches plus a remainder group

	for _, be := range []bool{true, false} {
		a := Unpack4(src, be)
		b := unpack4Portable(src, be)
		c := archTier.unpack4(src, be)
		mustEqualU16(t, "unpack4", a, b, c)

		a5 := Unpack5(src, be)
		b5 := unpack5Portable(src, be)
		c5 := archTier.unpack5(src, be)
		mustEqualU16(t, "unpack5", a5, b5, c5)
	}

	s32 := Swap32(src)
	p32 := swap32Portable(src)
	mustEqualBytes(t, "swap32", s32, p32)

	s64 := Swap64(src)
	p64 := swap64Portable(src)
	mustEqualBytes(t, "swap64", s64, p64)
}

func mustEqualU16(t *testing.T, label string, a, b, c []uint16) {
	t.Helper()
	if len(a) != len(b) || len(a) != len(c) {
		t.Fatalf("%s: length mismatch scalar=%d portable=%d arch=%d", label, len(a), len(b), len(c))
	}
	for i := range a {
		if a[i] != b[i] || a[i] != c[i] {
			t.Fatalf("%s: lane %d mismatch scalar=%d portable=%d arch=%d", label, i, a[i], b[i], c[i])
		}
	}
}

func mustEqualBytes(t *testing.T, label string, a, b []byte) {
	t.Helper()
	if len(a) != len(b) {
		t.Fatalf("%s: length mismatch %d vs %d", label, len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("%s: byte %d mismatch %d vs %d", label, i, a[i], b[i])
		}
	}
}

func TestDispatchNeverReturnsNilFuncs(t *testing.T) {
	name, unpack4, unpack5, swap32, swap64 := Dispatch()
	if name == "" || unpack4 == nil || unpack5 == nil || swap32 == nil || swap64 == nil {
		t.Fatalf("Dispatch() returned incomplete tier: %q", name)
	}
}

func TestUnpackLanesUnsupportedWidth(t *testing.T) {
	if got := UnpackLanes(6, randBytes(8), false); got != nil {
		t.Errorf("UnpackLanes(6, ...) = %v, want nil", got)
	}
}
