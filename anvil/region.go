// Package anvil reads Minecraft's Anvil region container format: a 32×32
// grid of chunks addressed through a 4 KiB sector location table, each
// chunk framed with a length-prefixed, compression-tagged NBT payload.
// The payload-length field counts the compression byte, so a chunk's
// compressed body is payload_length-1 bytes.
package anvil

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/pierrec/lz4/v4"

	"github.com/anviltally/anviltally/chunkmodel"
	"github.com/anviltally/anviltally/internal/utils"
	"github.com/anviltally/anviltally/nbt"
)

// SectorSize is the addressing unit for both the location table and chunk
// data within a region file.
const SectorSize = 4096

// Compression identifies the byte that follows a chunk's payload-length
// field and selects the decompressor for the following bytes.
type Compression uint8

// Compression kinds recognized by the Anvil format.
const (
	CompressionGzip Compression = 1
	CompressionZlib Compression = 2
	CompressionRaw  Compression = 3
	CompressionLZ4  Compression = 4
)

// UnknownCompressionError is returned when a chunk's compression byte names
// a kind outside the four recognized values.
type UnknownCompressionError struct {
	Value byte
}

func (e *UnknownCompressionError) Error() string {
	return fmt.Sprintf("anvil: unknown compression type %d", e.Value)
}

// ChunkLocation is one entry of the region's 1024-slot location table.
type ChunkLocation struct {
	X, Z          int
	OffsetSectors uint32
	SectorCount   uint8
	Timestamp     uint32
}

// Present reports whether the location table slot names an actual chunk.
func (l ChunkLocation) Present() bool { return l.OffsetSectors != 0 }

// ReaderAt is the capability AnvilRegion needs from its backing storage:
// positioned reads, so a single os.File can serve every chunk without
// tracking a shared seek cursor across calls.
type ReaderAt interface {
	io.ReaderAt
}

// Region is an open handle on an Anvil region file's backing storage. It
// holds no decoded chunk data; each chunk is parsed on demand.
type Region struct {
	r ReaderAt
}

// Open wraps r as a Region. r is read via ReadAt, so concurrent calls to
// ChunkAt from multiple goroutines over the same Region are safe as long as
// the ReaderAt implementation's ReadAt is itself concurrency-safe (true for
// *os.File).
func Open(r ReaderAt) *Region {
	return &Region{r: r}
}

// locationTable reads and decodes the 1024-entry location table and the
// following 1024-entry timestamp table, in row-major z-then-x order.
func (reg *Region) locationTable() ([1024]ChunkLocation, error) {
	var locs [1024]ChunkLocation
	header := make([]byte, SectorSize*2)
	if _, err := io.ReadFull(io.NewSectionReader(reg.r, 0, int64(len(header))), header); err != nil {
		return locs, fmt.Errorf("anvil: read region header: %w", err)
	}

	for z := 0; z < 32; z++ {
		for x := 0; x < 32; x++ {
			idx := z*32 + x
			off := idx * 4
			offsetSectors := uint32(header[off])<<16 | uint32(header[off+1])<<8 | uint32(header[off+2])
			sectorCount := header[off+3]
			tsOff := SectorSize + off
			timestamp := binary.BigEndian.Uint32(header[tsOff : tsOff+4])
			locs[idx] = ChunkLocation{
				X: x, Z: z,
				OffsetSectors: offsetSectors,
				SectorCount:   sectorCount,
				Timestamp:     timestamp,
			}
		}
	}
	return locs, nil
}

// Locations returns the region's 1024 location-table entries, including
// absent ones, in row-major z-then-x order.
func (reg *Region) Locations() ([1024]ChunkLocation, error) {
	return reg.locationTable()
}

// ChunkAt parses the chunk at region-relative coordinates x, z ∈ [0,32).
func (reg *Region) ChunkAt(x, z int) (*chunkmodel.Chunk, error) {
	if x < 0 || x >= 32 || z < 0 || z >= 32 {
		return nil, fmt.Errorf("anvil: chunk coordinates (%d,%d) out of range", x, z)
	}
	idx := z*32 + x
	off := int64(idx * 4)

	locBuf := make([]byte, 4)
	if _, err := reg.r.ReadAt(locBuf, off); err != nil {
		return nil, fmt.Errorf("anvil: read location entry: %w", err)
	}
	offsetSectors := uint32(locBuf[0])<<16 | uint32(locBuf[1])<<8 | uint32(locBuf[2])
	if offsetSectors == 0 {
		return nil, fmt.Errorf("anvil: chunk (%d,%d) absent in region", x, z)
	}

	return reg.parseChunkAtSector(int64(offsetSectors) * SectorSize)
}

// Chunks parses every present chunk in the file, visited in the location
// table's row-major z-then-x order. A single malformed chunk aborts the
// whole parse; callers that want to tolerate partial failure should drive
// ChunkAt themselves using Locations.
func (reg *Region) Chunks() ([]*chunkmodel.Chunk, error) {
	locs, err := reg.locationTable()
	if err != nil {
		return nil, err
	}

	var chunks []*chunkmodel.Chunk
	for _, loc := range locs {
		if !loc.Present() {
			continue
		}
		c, err := reg.parseChunkAtSector(int64(loc.OffsetSectors) * SectorSize)
		if err != nil {
			return nil, fmt.Errorf("anvil: chunk (%d,%d): %w", loc.X, loc.Z, err)
		}
		chunks = append(chunks, c)
	}
	return chunks, nil
}

func (reg *Region) parseChunkAtSector(sectorOffset int64) (*chunkmodel.Chunk, error) {
	header := make([]byte, 5)
	if _, err := reg.r.ReadAt(header, sectorOffset); err != nil {
		return nil, fmt.Errorf("anvil: read chunk header: %w", err)
	}
	payloadLength := binary.BigEndian.Uint32(header[0:4])
	compression := header[4]
	if payloadLength == 0 {
		return nil, fmt.Errorf("anvil: zero-length chunk payload")
	}

	compressedLen, err := utils.ByteLength(int32(payloadLength-1), 1)
	if err != nil {
		return nil, utils.WrapError("anvil: chunk payload length", err)
	}
	compressed := utils.GetBuffer(compressedLen)
	defer utils.ReleaseBuffer(compressed)
	if _, err := reg.r.ReadAt(compressed, sectorOffset+5); err != nil {
		return nil, utils.WrapError("anvil: read chunk payload", err)
	}

	decompressed, err := decompress(Compression(compression), compressed)
	if err != nil {
		return nil, err
	}

	reader := nbt.NewReader(bytes.NewReader(decompressed))
	_, tag, err := reader.ReadDocument()
	if err != nil {
		return nil, fmt.Errorf("anvil: decode chunk NBT: %w", err)
	}

	chunk, err := chunkmodel.DecodeChunk(tag)
	if err != nil {
		return nil, fmt.Errorf("anvil: bind chunk schema: %w", err)
	}
	return chunk, nil
}

func decompress(kind Compression, compressed []byte) ([]byte, error) {
	switch kind {
	case CompressionGzip:
		zr, err := gzip.NewReader(bytes.NewReader(compressed))
		if err != nil {
			return nil, fmt.Errorf("anvil: gzip: %w", err)
		}
		defer func() { _ = zr.Close() }()
		return io.ReadAll(zr)
	case CompressionZlib:
		zr, err := zlib.NewReader(bytes.NewReader(compressed))
		if err != nil {
			return nil, fmt.Errorf("anvil: zlib: %w", err)
		}
		defer func() { _ = zr.Close() }()
		return io.ReadAll(zr)
	case CompressionRaw:
		return compressed, nil
	case CompressionLZ4:
		zr := lz4.NewReader(bytes.NewReader(compressed))
		return io.ReadAll(zr)
	default:
		return nil, &UnknownCompressionError{Value: byte(kind)}
	}
}
