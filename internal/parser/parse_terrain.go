package parser

import (
	"github.com/genietools/genie-dat/pkg/genie"
)

// Byte widths of terrain fields that are walked but not kept.
const (
	terrainAfterNames      = 28
	terrainAfterMask       = 3 + 2 + 3 + 4 + 8 + 4 + 4 + 2
	terrainFrameData       = 6
	terrainTail            = 2 + 4 + 60 + 60 + 60 + 30 + 2 + 2
	terrainBlockHeader     = 4 * 4
	terrainBlockTilePad    = 2
	terrainBlockTrailer    = 14*2 + 6*4
	terrainBlockSearchTail = 4 + 3
)

// decodeTerrainRestriction walks one restriction slot: a float per terrain
// for accessibility, then a 16-byte pass-graphic record per terrain.
func decodeTerrainRestriction(f *fields, terrainsUsed uint16) genie.TerrainRestriction {
	n := int64(terrainsUsed)
	f.skip(n * 4)
	f.skip(n * 16)
	return genie.TerrainRestriction{Size: n*4 + n*16}
}

func decodeTileSize(f *fields) genie.TileSize {
	return genie.TileSize{
		Width:  f.i16(),
		Height: f.i16(),
		DeltaY: f.i16(),
	}
}

func decodeTerrain(f *fields) genie.Terrain {
	t := genie.Terrain{
		Enabled:      f.i8(),
		Random:       f.i8(),
		IsWater:      f.i8(),
		HideInEditor: f.i8(),
		StringID:     f.i32(),
		Name:         f.str(),
		Name2:        f.str(),
	}
	f.skip(terrainAfterNames)
	t.MaskName = f.str()
	f.skip(terrainAfterMask)
	for i := 0; i < genie.TileTypeCount; i++ {
		f.skip(terrainFrameData)
	}
	f.skip(terrainTail)
	return t
}

func decodeTerrainBlock(f *fields) *genie.TerrainBlock {
	b := &genie.TerrainBlock{
		VirtualFunctionPtr: f.i32(),
		MapPointer:         f.i32(),
	}
	f.skip(terrainBlockHeader)
	for i := range b.TileSizes {
		b.TileSizes[i] = decodeTileSize(f)
	}
	f.skip(terrainBlockTilePad)
	for i := 0; i < genie.TerrainCount && f.ok(); i++ {
		b.Terrains[i] = decodeTerrain(f)
	}
	f.skip(terrainBlockTrailer)
	b.SearchMapPtr = f.i32()
	f.skip(terrainBlockSearchTail)
	return b
}

// decodeRandomMaps reads the section header only. Map bodies for a non-zero
// count are left in the stream.
func decodeRandomMaps(f *fields) *genie.RandomMaps {
	return &genie.RandomMaps{
		Count:   f.u32(),
		Pointer: f.u32(),
	}
}
