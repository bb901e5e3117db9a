package chunkmodel

// sectionDistribution counts how many blocks in the section hold each
// palette index. A section with no Data array is uniform: every block is
// palette entry 0, so the whole section's block count goes to index 0
// without paying for an unpack.
func sectionDistribution(bs *BlockStates) []uint64 {
	counts := make([]uint64, len(bs.Palette))
	if bs.Data == nil {
		if len(counts) == 0 {
			counts = make([]uint64, 1)
		}
		counts[0] = sectionBlocks
		return counts
	}
	for _, idx := range bs.UnpackData() {
		counts[idx]++
	}
	return counts
}

// Distribution tallies how many blocks in the chunk hold each block-state
// name, summed across every section. Biome data is not counted; only
// sections carrying BlockStates contribute.
func Distribution(chunk *Chunk) map[string]uint64 {
	totals := make(map[string]uint64)
	for _, section := range chunk.Sections {
		if section.BlockStates == nil {
			continue
		}
		counts := sectionDistribution(section.BlockStates)
		for i, count := range counts {
			if count == 0 {
				continue
			}
			totals[section.BlockStates.Palette[i].Name] += count
		}
	}
	return totals
}
