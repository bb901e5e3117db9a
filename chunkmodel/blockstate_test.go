package chunkmodel

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anviltally/anviltally/nbt"
)

// packIndices packs palette indices into big-endian wire longs the way the
// game does: blocksPerLong lanes per word, low lane in the least significant
// bits, no packing across word boundaries.
func packIndices(indices []uint16, bpb int) *nbt.LongArray {
	blocksPerLong := 64 / bpb
	wordCount := (len(indices) + blocksPerLong - 1) / blocksPerLong
	raw := make([]byte, wordCount*8)
	for i, idx := range indices {
		word := i / blocksPerLong
		lane := i % blocksPerLong
		cur := binary.BigEndian.Uint64(raw[word*8:])
		cur |= uint64(idx) << (lane * bpb)
		binary.BigEndian.PutUint64(raw[word*8:], cur)
	}
	return nbt.NewLongArray(raw)
}

func testPalette(n int) []BlockStatePalette {
	out := make([]BlockStatePalette, n)
	for i := range out {
		out[i] = BlockStatePalette{Name: fmt.Sprintf("minecraft:block_%d", i)}
	}
	return out
}

func TestBitsPerBlock(t *testing.T) {
	tests := []struct {
		paletteLen int
		want       int
	}{
		{1, 4},
		{2, 4},
		{9, 4},
		{16, 4},
		{17, 5},
		{32, 5},
		{33, 6},
		{256, 8},
		{4096, 12},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bitsPerBlock(tt.paletteLen), "palette size %d", tt.paletteLen)
	}
}

func TestBlockStateUniformSection(t *testing.T) {
	bs := &BlockStates{Palette: testPalette(1)}
	for _, c := range [][3]int{{0, 0, 0}, {15, 15, 15}, {7, 3, 11}} {
		got := bs.BlockState(c[0], c[1], c[2])
		assert.Equal(t, "minecraft:block_0", got.Name)
	}
}

func TestBlockStateIndexSelection(t *testing.T) {
	// Every block carries its own linear index modulo the palette size, so
	// the lookup math is checked at every lane position of both the 4-bit
	// layout (palette 9) and the 5-bit layout (palette 17).
	for _, paletteLen := range []int{9, 17} {
		t.Run(fmt.Sprintf("palette%d", paletteLen), func(t *testing.T) {
			indices := make([]uint16, sectionBlocks)
			for i := range indices {
				indices[i] = uint16(i % paletteLen)
			}
			bs := &BlockStates{
				Palette: testPalette(paletteLen),
				Data:    packIndices(indices, bitsPerBlock(paletteLen)),
			}
			for y := 0; y < 16; y++ {
				for z := 0; z < 16; z++ {
					for x := 0; x < 16; x++ {
						linear := y*256 + z*16 + x
						want := fmt.Sprintf("minecraft:block_%d", linear%paletteLen)
						require.Equal(t, want, bs.BlockState(x, y, z).Name,
							"block (%d,%d,%d)", x, y, z)
					}
				}
			}
		})
	}
}

func TestUnpackDataMatchesBlockState(t *testing.T) {
	// Palette sizes pinning each unpack route: 9 -> 4-bit fast path,
	// 17 -> 5-bit fast path, 40 -> scalar per-word fallback.
	for _, paletteLen := range []int{9, 17, 40} {
		t.Run(fmt.Sprintf("palette%d", paletteLen), func(t *testing.T) {
			indices := make([]uint16, sectionBlocks)
			for i := range indices {
				indices[i] = uint16((i * 7) % paletteLen)
			}
			bs := &BlockStates{
				Palette: testPalette(paletteLen),
				Data:    packIndices(indices, bitsPerBlock(paletteLen)),
			}

			got := bs.UnpackData()
			require.Len(t, got, sectionBlocks)
			assert.Equal(t, indices, got)

			for linear, idx := range got {
				x, z, y := linear%16, linear/16%16, linear/256
				require.Equal(t, bs.Palette[idx], bs.BlockState(x, y, z), "block %d", linear)
			}
		})
	}
}

func TestUnpackDataUniformSection(t *testing.T) {
	bs := &BlockStates{Palette: testPalette(1)}
	got := bs.UnpackData()
	require.Len(t, got, sectionBlocks)
	for _, idx := range got {
		require.Equal(t, uint16(0), idx)
	}
}

func halfAndHalfSection() *BlockStates {
	// 4-bit layout for a 2-entry palette: 16 lanes per long, the low 8 set
	// to index 0 and the high 8 to index 1, so every word contributes an
	// even split.
	raw := make([]byte, 256*8)
	for i := 0; i < len(raw); i += 8 {
		binary.BigEndian.PutUint64(raw[i:], 0x1111111100000000)
	}
	return &BlockStates{
		Palette: []BlockStatePalette{
			{Name: "minecraft:stone"},
			{Name: "minecraft:dirt"},
		},
		Data: nbt.NewLongArray(raw),
	}
}

func TestDistributionTwoChunks(t *testing.T) {
	mkChunk := func() *Chunk {
		return &Chunk{Sections: []Section{{Y: 0, BlockStates: halfAndHalfSection()}}}
	}

	totals := make(map[string]uint64)
	for _, chunk := range []*Chunk{mkChunk(), mkChunk()} {
		for name, count := range Distribution(chunk) {
			totals[name] += count
		}
	}

	assert.Equal(t, map[string]uint64{
		"minecraft:stone": 4096,
		"minecraft:dirt":  4096,
	}, totals)
}

func TestDistributionUniformSectionCountsWithoutUnpack(t *testing.T) {
	chunk := &Chunk{Sections: []Section{
		{Y: -4, BlockStates: &BlockStates{Palette: []BlockStatePalette{{Name: "minecraft:air"}}}},
		{Y: 0},
	}}
	assert.Equal(t, map[string]uint64{"minecraft:air": 4096}, Distribution(chunk))
}
