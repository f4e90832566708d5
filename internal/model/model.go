package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&ArchiveRecord{},
	&TerrainRecord{},
	&SoundRecord{},
	&GraphicRecord{},
	&EffectRecord{},
	&CivRecord{},
	&UnitRecord{},
	&TechRecord{},
}

////////////////////////
// ARCHIVE
////////////////////////

// ArchiveRecord is one decoded data file. Fingerprint is the hex xxhash of
// the compressed input, so storing the same file twice is detectable.
type ArchiveRecord struct {
	gorm.Model
	Fingerprint      string    `json:"fingerprint" gorm:"size:16;uniqueIndex"`
	SourcePath       string    `json:"sourcePath" gorm:"size:1024"`
	Version          string    `json:"version" gorm:"size:8;index:idx_archive_version"`
	DecodedAt        time.Time `json:"decodedAt" gorm:"index:idx_decoded_at"`
	TimeSlice        int32     `json:"timeSlice"`
	DebugPos         int64     `json:"debugPos"`
	TruncatedSection string    `json:"truncatedSection" gorm:"size:32"`
	TruncationError  string    `json:"truncationError" gorm:"size:1024"`

	PlayerColours       datatypes.JSON `json:"playerColours"`
	TerrainRestrictions datatypes.JSON `json:"terrainRestrictions"`
	RandomMapCount      uint32         `json:"randomMapCount"`

	Terrains []TerrainRecord `gorm:"foreignKey:ArchiveID;constraint:OnDelete:CASCADE"`
	Sounds   []SoundRecord   `gorm:"foreignKey:ArchiveID;constraint:OnDelete:CASCADE"`
	Graphics []GraphicRecord `gorm:"foreignKey:ArchiveID;constraint:OnDelete:CASCADE"`
	Effects  []EffectRecord  `gorm:"foreignKey:ArchiveID;constraint:OnDelete:CASCADE"`
	Civs     []CivRecord     `gorm:"foreignKey:ArchiveID;constraint:OnDelete:CASCADE"`
	Units    []UnitRecord    `gorm:"foreignKey:ArchiveID;constraint:OnDelete:CASCADE"`
	Techs    []TechRecord    `gorm:"foreignKey:ArchiveID;constraint:OnDelete:CASCADE"`
}

func (*ArchiveRecord) TableName() string {
	return "archives"
}

// Complete reports whether the archive decoded to its last section.
func (a *ArchiveRecord) Complete() bool {
	return a.TruncatedSection == ""
}

////////////////////////
// MEDIA
////////////////////////

// TerrainRecord is an enabled terrain slot of the terrain block.
type TerrainRecord struct {
	ID        uint   `json:"id" gorm:"primarykey"`
	ArchiveID uint   `json:"archiveId" gorm:"index:idx_terrain_archive_id"`
	Slot      uint16 `json:"slot"`
	Name      string `json:"name" gorm:"size:64"`
	Name2     string `json:"name2" gorm:"size:64"`
	MaskName  string `json:"maskName" gorm:"size:64"`
	StringID  int32  `json:"stringId"`
	IsWater   bool   `json:"isWater"`
	Hidden    bool   `json:"hidden"`
}

func (*TerrainRecord) TableName() string {
	return "terrains"
}

type SoundRecord struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	ArchiveID uint           `json:"archiveId" gorm:"index:idx_sound_archive_id"`
	Slot      uint16         `json:"slot"`
	SoundID   int16          `json:"soundId"`
	Items     datatypes.JSON `json:"items"`
}

func (*SoundRecord) TableName() string {
	return "sounds"
}

type GraphicRecord struct {
	ID             uint           `json:"id" gorm:"primarykey"`
	ArchiveID      uint           `json:"archiveId" gorm:"index:idx_graphic_archive_id"`
	Slot           uint16         `json:"slot"`
	Name           string         `json:"name" gorm:"size:64;index:idx_graphic_name"`
	FileName       string         `json:"fileName" gorm:"size:64"`
	ParticleEffect string         `json:"particleEffect" gorm:"size:64"`
	AngleCount     uint16         `json:"angleCount"`
	Deltas         datatypes.JSON `json:"deltas"`
	AngleSounds    datatypes.JSON `json:"angleSounds"`
}

func (*GraphicRecord) TableName() string {
	return "graphics"
}

type EffectRecord struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	ArchiveID uint           `json:"archiveId" gorm:"index:idx_effect_archive_id"`
	Slot      uint32         `json:"slot"`
	Name      string         `json:"name" gorm:"size:64"`
	Commands  datatypes.JSON `json:"commands"`
}

func (*EffectRecord) TableName() string {
	return "effects"
}

////////////////////////
// CIVILISATIONS
////////////////////////

type CivRecord struct {
	ID         uint           `json:"id" gorm:"primarykey"`
	ArchiveID  uint           `json:"archiveId" gorm:"index:idx_civ_archive_id"`
	Slot       uint16         `json:"slot"`
	Name       string         `json:"name" gorm:"size:64"`
	PlayerType int8           `json:"playerType"`
	TechTreeID int16          `json:"techTreeId"`
	TeamBonus  int16          `json:"teamBonus"`
	IconSet    int8           `json:"iconSet"`
	Resources  datatypes.JSON `json:"resources"`
	UnitSlots  uint16         `json:"unitSlots"`
}

func (*CivRecord) TableName() string {
	return "civs"
}

// UnitRecord is one populated unit slot. The type-dependent sub-records are
// kept as JSON; only the fields worth querying get columns.
type UnitRecord struct {
	ID          uint    `json:"id" gorm:"primarykey"`
	ArchiveID   uint    `json:"archiveId" gorm:"index:idx_unit_archive_civ"`
	CivSlot     uint16  `json:"civSlot" gorm:"index:idx_unit_archive_civ"`
	Slot        uint16  `json:"slot"`
	UnitID      int16   `json:"unitId" gorm:"index:idx_unit_id"`
	Type        uint8   `json:"type"`
	Name        string  `json:"name" gorm:"size:64"`
	Class       int16   `json:"class"`
	HitPoints   int16   `json:"hitPoints"`
	LineOfSight float32 `json:"lineOfSight"`
	Speed       float32 `json:"speed"`
	Enabled     bool    `json:"enabled"`
	Variants    string  `json:"variants" gorm:"size:128"`

	Common     datatypes.JSON `json:"common"`
	DeadFish   datatypes.JSON `json:"deadFish"`
	Bird       datatypes.JSON `json:"bird"`
	Type50     datatypes.JSON `json:"type50"`
	Projectile datatypes.JSON `json:"projectile"`
	Creatable  datatypes.JSON `json:"creatable"`
	Building   datatypes.JSON `json:"building"`
}

func (*UnitRecord) TableName() string {
	return "units"
}

type TechRecord struct {
	ID                uint           `json:"id" gorm:"primarykey"`
	ArchiveID         uint           `json:"archiveId" gorm:"index:idx_tech_archive_id"`
	Slot              uint16         `json:"slot"`
	Name              string         `json:"name" gorm:"size:64"`
	Repeatable        bool           `json:"repeatable"`
	ResearchLocations datatypes.JSON `json:"researchLocations"`
}

func (*TechRecord) TableName() string {
	return "techs"
}
