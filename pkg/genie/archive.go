// pkg/genie/archive.go
package genie

// Archive is one decoded data file. Sections after a Truncation are left
// empty; partially decoded collections keep the elements read before it.
type Archive struct {
	Version string

	TerrainRestrictions []TerrainRestriction
	PlayerColours       []PlayerColour
	Sounds              []Sound
	Graphics            []Graphic
	TerrainBlock        *TerrainBlock
	RandomMaps          *RandomMaps
	Effects             []Effect
	UnitHeaders         []UnitHeaders
	Civs                []Civ
	Techs               []Tech
	TechTree            *TechTree // never decoded
	TimeSlice           int32

	// DebugPos is the cursor offset where decoding stopped.
	DebugPos   int64
	Truncation *Truncation
}

// Truncation records the section where decoding gave up.
type Truncation struct {
	Section string
	Err     string
}

// Complete reports whether every section was decoded.
func (a *Archive) Complete() bool {
	return a.Truncation == nil
}

// TerrainRestriction is walked by size only; Size is the number of bytes
// consumed for the slot.
type TerrainRestriction struct {
	Size int64
}

// PlayerColour describes one player palette entry.
type PlayerColour struct {
	ID      int32
	Base    int32
	Outline int32
}

// TerrainBlock holds the identifying fields of the terrain section.
type TerrainBlock struct {
	VirtualFunctionPtr int32
	MapPointer         int32
	TileSizes          [TileTypeCount]TileSize
	Terrains           [TerrainCount]Terrain
	SearchMapPtr       int32
}

const (
	TileTypeCount = 19
	TerrainCount  = 200
)

type TileSize struct {
	Width  int16
	Height int16
	DeltaY int16
}

type Terrain struct {
	Enabled      int8
	Random       int8
	IsWater      int8
	HideInEditor int8
	StringID     int32
	Name         string
	Name2        string
	MaskName     string
}

// RandomMaps carries the header of the random map section. Map bodies are
// not decoded.
type RandomMaps struct {
	Count   uint32
	Pointer uint32
}

// TechTree is reserved for the tech tree section, which is not decoded.
type TechTree struct{}

// UnitHeaders marks whether a unit slot carries a task header. The tasks
// themselves are discarded.
type UnitHeaders struct {
	Exists    bool
	TaskCount uint16
}

type Tech struct {
	Name              string
	Repeatable        int8
	ResearchLocations []ResearchLocation
}

type ResearchLocation struct {
	LocationID   int16
	ResearchTime int16
	ButtonID     int8
	HotKeyID     int32
}
