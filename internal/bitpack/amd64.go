//go:build amd64

package bitpack

import "golang.org/x/sys/cpu"

// hasWideLanes reports whether the running CPU supports the wider
// word-parallel batches the amd64 tier uses. AVX2 implies a 256-bit
// shuffle/permute unit wide enough to make processing 8 words per
// iteration worthwhile; without it the extra unrolling just adds
// register pressure for no benefit, so unpackAmd64 falls back to the
// portable tier's 4-word batch.
func hasWideLanes() bool {
	return cpu.X86.HasAVX2
}

// unpack4Amd64 unpacks 4-bit lanes using an 8-word batch when the CPU
// advertises AVX2, wide enough for the compiler to keep a full cache line
// in flight per iteration. Output is bitwise identical to Unpack4
// regardless of which batch width runs.
func unpack4Amd64(src []byte, bigEndian bool) []uint16 {
	if len(src) == 0 || len(src)%8 != 0 {
		return nil
	}
	if !hasWideLanes() {
		return unpack4Portable(src, bigEndian)
	}

	dst := make([]uint16, len(src)*2)
	i := 0
	for ; i+64 <= len(src); i += 64 {
		for k := 0; k < 64; k += 8 {
			unpack4Word(dst[(i+k)*2:], loadWord64(src, i+k, bigEndian))
		}
	}
	for ; i < len(src); i += 8 {
		unpack4Word(dst[i*2:], loadWord64(src, i, bigEndian))
	}
	return dst
}

// unpack5Amd64 unpacks 5-bit lanes using the same wide batching strategy
// as unpack4Amd64.
func unpack5Amd64(src []byte, bigEndian bool) []uint16 {
	if len(src) == 0 || len(src)%8 != 0 {
		return nil
	}
	if !hasWideLanes() {
		return unpack5Portable(src, bigEndian)
	}

	dst := make([]uint16, len(src)/8*12)
	i := 0
	base := 0
	for ; i+64 <= len(src); i += 64 {
		for k := 0; k < 64; k += 8 {
			unpack5Word(dst[base:], loadWord64(src, i+k, bigEndian))
			base += 12
		}
	}
	for ; i < len(src); i += 8 {
		unpack5Word(dst[base:], loadWord64(src, i, bigEndian))
		base += 12
	}
	return dst
}

func init() {
	archTier = tier{
		name:    "amd64",
		unpack4: unpack4Amd64,
		unpack5: unpack5Amd64,
		swap32:  swap32Portable,
		swap64:  swap64Portable,
	}
}
