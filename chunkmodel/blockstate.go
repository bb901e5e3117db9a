package chunkmodel

import (
	"math/bits"

	"github.com/anviltally/anviltally/internal/bitpack"
)

// sectionBlocks is the number of blocks in one 16x16x16 section.
const sectionBlocks = 16 * 16 * 16

// bitsPerBlock reports how many bits wide each packed palette index is:
// ceil(log2(len(palette))) clamped to [4, 12]. A single-entry palette still
// reports 4, matching the packed layout Minecraft writes even though no
// data array is present to read in that case.
func bitsPerBlock(paletteLen int) int {
	if paletteLen <= 1 {
		return 4
	}
	n := bits.Len(uint(paletteLen - 1))
	if n < 4 {
		n = 4
	}
	if n > 12 {
		n = 12
	}
	return n
}

// BlockState returns the palette entry occupying section-relative
// coordinates x, y, z, each in [0,16). A section with no Data array has
// every block at palette index 0.
func (s *BlockStates) BlockState(x, y, z int) BlockStatePalette {
	if s.Data == nil {
		return s.Palette[0]
	}

	bpb := bitsPerBlock(len(s.Palette))
	blocksPerLong := 64 / bpb
	packedIndex := y*16*16 + z*16 + x

	longIndex := packedIndex / blocksPerLong
	laneIndex := packedIndex % blocksPerLong

	values := s.Data.Values()
	word := uint64(values[longIndex])
	paletteIndex := (word >> (laneIndex * bpb)) & ((1 << bpb) - 1)
	return s.Palette[paletteIndex]
}

// UnpackData expands the section's packed Data array into one palette index
// per block, in y-major, then z, then x order (matching BlockState's packed
// index), a flat 4096-length slice. A section with no Data array is uniform:
// every block is palette index 0.
//
// Palettes of 16 or fewer entries route through the 4-bit SIMD/SWAR
// unpacker and palettes of 32 or fewer through the 5-bit one; wider
// palettes fall back to a per-long scalar unpack since no specialized lane
// width is provided above 5 bits.
func (s *BlockStates) UnpackData() []uint16 {
	if s.Data == nil {
		return make([]uint16, sectionBlocks)
	}

	bpb := bitsPerBlock(len(s.Palette))

	if len(s.Palette) <= 32 {
		lanes := 4
		if len(s.Palette) > 16 {
			lanes = 5
		}
		unpacked := bitpack.UnpackLanes(lanes, s.Data.RawBytes(), s.Data.BigEndian())
		if unpacked != nil {
			if len(unpacked) > sectionBlocks {
				unpacked = unpacked[:sectionBlocks]
			}
			return unpacked
		}
	}

	blocksPerLong := 64 / bpb
	values := s.Data.Values()
	out := make([]uint16, 0, len(values)*blocksPerLong)
	mask := uint64(1)<<bpb - 1
	for _, long := range values {
		word := uint64(long)
		for i := 0; i < blocksPerLong; i++ {
			out = append(out, uint16((word>>(i*bpb))&mask))
		}
	}
	if len(out) > sectionBlocks {
		out = out[:sectionBlocks]
	}
	return out
}
