package nbt

import (
	"encoding/binary"

	"github.com/anviltally/anviltally/internal/bitpack"
)

// ByteArray holds raw bytes each reinterpreted as a signed int8. Byte order
// is irrelevant for single-byte elements, so there is nothing to swap.
type ByteArray struct {
	Raw []byte
}

// Kind implements Tag.
func (ByteArray) Kind() Kind { return KindByteArray }

// Len reports the element count.
func (a ByteArray) Len() int { return len(a.Raw) }

// At returns the element at index i.
func (a ByteArray) At(i int) int8 { return int8(a.Raw[i]) }

// IntArray holds the wire bytes of an i32 array plus a flag recording
// whether those bytes are still in the big-endian order they were read in.
// Swapping is deferred until the first call to Values, per
// the reader's "endianness of backing bytes" design (see chunkmodel for the
// analogous deferred swap on packed block-state longs).
type IntArray struct {
	raw       []byte
	bigEndian bool
	cached    []int32
}

// NewIntArray wraps raw wire bytes (big-endian, as read off the wire).
func NewIntArray(raw []byte) *IntArray {
	return &IntArray{raw: raw, bigEndian: true}
}

// Kind implements Tag.
func (*IntArray) Kind() Kind { return KindIntArray }

// Len reports the element count.
func (a *IntArray) Len() int { return len(a.raw) / 4 }

// RawBytes returns the backing bytes in their current byte order. Call
// BigEndian to find out which order that is.
func (a *IntArray) RawBytes() []byte { return a.raw }

// BigEndian reports whether RawBytes is still in on-wire (big-endian)
// order.
func (a *IntArray) BigEndian() bool { return a.bigEndian }

// Values decodes the array to int32s, swapping the backing bytes to
// little-endian order (via bitpack.Swap32) on first access and caching the
// result for subsequent calls.
func (a *IntArray) Values() []int32 {
	if a.cached != nil {
		return a.cached
	}
	if a.bigEndian && len(a.raw) > 0 {
		if swapped := bitpack.Swap32(a.raw); swapped != nil {
			a.raw = swapped
		}
		a.bigEndian = false
	}
	out := make([]int32, len(a.raw)/4)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(a.raw[i*4:]))
	}
	a.cached = out
	return out
}

// LongArray holds the wire bytes of an i64 array with the same deferred-swap
// policy as IntArray.
type LongArray struct {
	raw       []byte
	bigEndian bool
	cached    []int64
}

// NewLongArray wraps raw wire bytes (big-endian, as read off the wire).
func NewLongArray(raw []byte) *LongArray {
	return &LongArray{raw: raw, bigEndian: true}
}

// Kind implements Tag.
func (*LongArray) Kind() Kind { return KindLongArray }

// Len reports the element count.
func (a *LongArray) Len() int { return len(a.raw) / 8 }

// RawBytes returns the backing bytes in their current byte order.
func (a *LongArray) RawBytes() []byte { return a.raw }

// BigEndian reports whether RawBytes is still in on-wire (big-endian)
// order.
func (a *LongArray) BigEndian() bool { return a.bigEndian }

// Values decodes the array to int64s, swapping lazily and caching like
// IntArray.Values.
func (a *LongArray) Values() []int64 {
	if a.cached != nil {
		return a.cached
	}
	if a.bigEndian && len(a.raw) > 0 {
		if swapped := bitpack.Swap64(a.raw); swapped != nil {
			a.raw = swapped
		}
		a.bigEndian = false
	}
	out := make([]int64, len(a.raw)/8)
	for i := range out {
		out[i] = int64(binary.LittleEndian.Uint64(a.raw[i*8:]))
	}
	a.cached = out
	return out
}
