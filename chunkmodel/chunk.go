// Package chunkmodel presents a typed, mostly-lazy view over a decoded
// Anvil chunk: sections, palettes, and height maps bound from the dynamic
// NBT tree by the schema package, plus a bit-packed block-state accessor
// that defers the expensive per-section unpack until first access.
package chunkmodel

import "github.com/anviltally/anviltally/nbt"

// Chunk is the typed view of a single decoded chunk's top-level Compound.
type Chunk struct {
	DataVersion    int32          `nbt:"DataVersion"`
	XPos           int32          `nbt:"xPos"`
	ZPos           int32          `nbt:"zPos"`
	YPos           int32          `nbt:"yPos"`
	Status         string         `nbt:"Status"`
	LastUpdate     int64          `nbt:"LastUpdate"`
	Sections       []Section      `nbt:"sections"`
	BlockEntities  []BlockEntity  `nbt:"block_entities"`
	HeightMaps     *HeightMaps    `nbt:"HeightMaps"`
	InhabitedTime  int64          `nbt:"InhabitedTime"`
	BlendingData   *BlendingData  `nbt:"blending_data"`
	PostProcessing [][]int16      `nbt:"PostProcessing"`
	Structures     *Structures    `nbt:"structures"`
	IsLightOn      *bool          `nbt:"isLightOn"`
	BlockTicks     []TileTick     `nbt:"block_ticks"`
	FluidTicks     []TileTick     `nbt:"fluid_ticks"`
}

// Section is one 16×16×16 vertical slice of a chunk.
type Section struct {
	Y           int8         `nbt:"Y"`
	BlockStates *BlockStates `nbt:"block_states"`
	Biomes      *Biomes      `nbt:"biomes"`
	BlockLight  *nbt.ByteArray `nbt:"BlockLight"`
	SkyLight    *nbt.ByteArray `nbt:"SkyLight"`
}

// BlockStatePalette is one palette entry: a block-state name and its
// optional property map.
type BlockStatePalette struct {
	Name       string            `nbt:"Name"`
	Properties map[string]string `nbt:"Properties"`
}

// BlockStates is a section's palette and optional packed index array. When
// Data is nil every block in the section is palette entry 0.
type BlockStates struct {
	Palette []BlockStatePalette `nbt:"palette"`
	Data    *nbt.LongArray      `nbt:"data"`
}

// Biomes is a section's biome palette and optional packed index array,
// structured identically to BlockStates but over a flat string palette
// rather than a name+properties record.
type Biomes struct {
	Palette []string      `nbt:"palette"`
	Data    *nbt.LongArray `nbt:"data"`
}

// BlockEntity is a tile entity attached to a chunk. Raw holds the complete
// Compound it was decoded from, including whatever fields are particular to
// its id: block-entity semantics are never interpreted beyond this
// pass-through, but the decoded Compound is kept whole. schema.Encode does
// not write Raw (it is tagged nbt:"-"); only the declared fields are
// encoded. DecodeChunk populates Raw after the generic schema bind, since
// the common fields and the full Compound overlap.
type BlockEntity struct {
	ID         string `nbt:"id"`
	KeepPacked *bool  `nbt:"keepPacked"`
	X          int32  `nbt:"x"`
	Y          int32  `nbt:"y"`
	Z          int32  `nbt:"z"`
	Raw        *nbt.Compound `nbt:"-"`
}

// HeightMaps holds the six standard packed height-map arrays, each 256
// 9-bit values packed into longs.
type HeightMaps struct {
	MotionBlocking          *nbt.LongArray `nbt:"MOTION_BLOCKING"`
	MotionBlockingNoLeaves  *nbt.LongArray `nbt:"MOTION_BLOCKING_NO_LEAVES"`
	OceanFloor              *nbt.LongArray `nbt:"OCEAN_FLOOR"`
	OceanFloorWG            *nbt.LongArray `nbt:"OCEAN_FLOOR_WG"`
	WorldSurface            *nbt.LongArray `nbt:"WORLD_SURFACE"`
	WorldSurfaceWG          *nbt.LongArray `nbt:"WORLD_SURFACE_WG"`
}

// BlendingData records the section range a chunk blends terrain across.
type BlendingData struct {
	MinSection int32 `nbt:"min_section"`
	MaxSection int32 `nbt:"max_section"`
}

// Structures holds un-interpreted structure-generation bookkeeping: starts
// keyed by structure id (echoed as raw NBT, since their shape varies per
// structure type) and chunk-coordinate references.
type Structures struct {
	Starts     map[string]nbt.Tag        `nbt:"starts"`
	References map[string]*nbt.LongArray `nbt:"References"`
}

// TileTick is a scheduled block or fluid tick.
type TileTick struct {
	I string `nbt:"i"`
	P int32  `nbt:"p"`
	T int32  `nbt:"t"`
	X int32  `nbt:"x"`
	Y int32  `nbt:"y"`
	Z int32  `nbt:"z"`
}
