package chunkmodel

import (
	"fmt"

	"github.com/anviltally/anviltally/nbt"
	"github.com/anviltally/anviltally/nbt/schema"
)

// DecodeChunk binds a decoded top-level NBT tag onto a Chunk, then attaches
// each block entity's full source Compound to BlockEntity.Raw so nothing
// the schema didn't declare a field for is lost.
func DecodeChunk(tag nbt.Tag) (*Chunk, error) {
	var chunk Chunk
	if err := schema.Decode(tag, &chunk); err != nil {
		return nil, err
	}

	for i := range chunk.Sections {
		bs := chunk.Sections[i].BlockStates
		if bs == nil {
			continue
		}
		if len(bs.Palette) < 1 || len(bs.Palette) > 4096 {
			return nil, fmt.Errorf("chunkmodel: section y=%d palette size %d out of range [1,4096]",
				chunk.Sections[i].Y, len(bs.Palette))
		}
	}

	root, ok := tag.(*nbt.Compound)
	if !ok {
		return nil, fmt.Errorf("chunkmodel: expected Compound at chunk root, got %s", tag.Kind())
	}
	beTag, present := root.Get("block_entities")
	if present {
		list, ok := beTag.(*nbt.List)
		if ok {
			for i := 0; i < len(list.Elems) && i < len(chunk.BlockEntities); i++ {
				if c, ok := list.Elems[i].(*nbt.Compound); ok {
					chunk.BlockEntities[i].Raw = c
				}
			}
		}
	}

	return &chunk, nil
}
