package anvil

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"testing"

	kzlib "github.com/klauspost/compress/zlib"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anviltally/anviltally/chunkmodel"
	"github.com/anviltally/anviltally/nbt"
	"github.com/anviltally/anviltally/nbt/schema"
)

// encodeChunkNBT builds the binary NBT document for a minimal valid chunk.
func encodeChunkNBT(t *testing.T, xPos, zPos int32) []byte {
	t.Helper()
	chunk := chunkmodel.Chunk{
		DataVersion: 3465,
		XPos:        xPos,
		ZPos:        zPos,
		YPos:        -4,
		Status:      "minecraft:full",
		LastUpdate:  1,
		Sections: []chunkmodel.Section{
			{Y: 0, BlockStates: &chunkmodel.BlockStates{
				Palette: []chunkmodel.BlockStatePalette{{Name: "minecraft:stone"}},
			}},
		},
		InhabitedTime: 1,
	}
	tag, err := schema.Encode(chunk)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, nbt.NewWriter(&buf).EncodeDocument("", tag))
	return buf.Bytes()
}

func compressChunk(t *testing.T, kind Compression, raw []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	switch kind {
	case CompressionGzip:
		zw := gzip.NewWriter(&buf)
		_, err := zw.Write(raw)
		require.NoError(t, err)
		require.NoError(t, zw.Close())
	case CompressionZlib:
		zw := kzlib.NewWriter(&buf)
		_, err := zw.Write(raw)
		require.NoError(t, err)
		require.NoError(t, zw.Close())
	case CompressionRaw:
		buf.Write(raw)
	case CompressionLZ4:
		zw := lz4.NewWriter(&buf)
		_, err := zw.Write(raw)
		require.NoError(t, err)
		require.NoError(t, zw.Close())
	default:
		t.Fatalf("no compressor for kind %d", kind)
	}
	return buf.Bytes()
}

// buildRegion assembles a region file with a single chunk at (0,0): the
// location table points at sector 2, the timestamp table is zero, and the
// chunk is framed as payload length, compression byte, compressed bytes.
func buildRegion(t *testing.T, compressionByte byte, compressed []byte) []byte {
	t.Helper()
	require.LessOrEqual(t, len(compressed)+5, SectorSize, "fixture must fit one sector")

	file := make([]byte, SectorSize*3)
	// Location entry (0,0): offset 2 sectors, 1 sector long.
	copy(file[0:4], []byte{0x00, 0x00, 0x02, 0x01})

	data := file[SectorSize*2:]
	binary.BigEndian.PutUint32(data[0:4], uint32(len(compressed)+1))
	data[4] = compressionByte
	copy(data[5:], compressed)
	return file
}

func TestRegionSingleChunk(t *testing.T) {
	raw := encodeChunkNBT(t, 7, -3)

	for _, tt := range []struct {
		name string
		kind Compression
	}{
		{"gzip", CompressionGzip},
		{"zlib", CompressionZlib},
		{"raw", CompressionRaw},
		{"lz4", CompressionLZ4},
	} {
		t.Run(tt.name, func(t *testing.T) {
			file := buildRegion(t, byte(tt.kind), compressChunk(t, tt.kind, raw))
			reg := Open(bytes.NewReader(file))

			chunks, err := reg.Chunks()
			require.NoError(t, err)
			require.Len(t, chunks, 1)
			assert.Equal(t, int32(7), chunks[0].XPos)
			assert.Equal(t, int32(-3), chunks[0].ZPos)
			assert.Equal(t, map[string]uint64{"minecraft:stone": 4096},
				chunkmodel.Distribution(chunks[0]))
		})
	}
}

func TestRegionChunkAt(t *testing.T) {
	raw := encodeChunkNBT(t, 0, 0)
	file := buildRegion(t, byte(CompressionZlib), compressChunk(t, CompressionZlib, raw))
	reg := Open(bytes.NewReader(file))

	chunk, err := reg.ChunkAt(0, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(3465), chunk.DataVersion)

	_, err = reg.ChunkAt(1, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent")

	_, err = reg.ChunkAt(-1, 0)
	require.Error(t, err)
	_, err = reg.ChunkAt(0, 32)
	require.Error(t, err)
}

func TestRegionLocations(t *testing.T) {
	raw := encodeChunkNBT(t, 0, 0)
	file := buildRegion(t, byte(CompressionZlib), compressChunk(t, CompressionZlib, raw))
	// Timestamp for (0,0).
	binary.BigEndian.PutUint32(file[SectorSize:SectorSize+4], 1700000000)
	reg := Open(bytes.NewReader(file))

	locs, err := reg.Locations()
	require.NoError(t, err)

	present := 0
	for _, loc := range locs {
		if loc.Present() {
			present++
		}
	}
	assert.Equal(t, 1, present)
	assert.Equal(t, uint32(2), locs[0].OffsetSectors)
	assert.Equal(t, uint8(1), locs[0].SectorCount)
	assert.Equal(t, uint32(1700000000), locs[0].Timestamp)
	assert.Equal(t, 5, locs[5*32+5].X)
	assert.Equal(t, 5, locs[5*32+5].Z)
}

func TestRegionUnknownCompression(t *testing.T) {
	raw := encodeChunkNBT(t, 0, 0)
	file := buildRegion(t, 9, compressChunk(t, CompressionRaw, raw))
	reg := Open(bytes.NewReader(file))

	_, err := reg.Chunks()
	var uc *UnknownCompressionError
	require.ErrorAs(t, err, &uc)
	assert.Equal(t, byte(9), uc.Value)
}

func TestRegionTruncatedChunkPayload(t *testing.T) {
	raw := encodeChunkNBT(t, 0, 0)
	file := buildRegion(t, byte(CompressionZlib), compressChunk(t, CompressionZlib, raw))
	// Cut the file off mid-payload.
	file = file[:SectorSize*2+3]
	reg := Open(bytes.NewReader(file))

	_, err := reg.Chunks()
	require.Error(t, err)
}
