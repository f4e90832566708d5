// Package convert turns decoded archives into GORM rows.
package convert

import (
	"fmt"

	"gorm.io/datatypes"

	"github.com/genietools/genie-dat/internal/jsoncodec"
	"github.com/genietools/genie-dat/internal/model"
	"github.com/genietools/genie-dat/pkg/core"
	"github.com/genietools/genie-dat/pkg/genie"
)

// columns encodes JSON columns for one row and keeps the first failure, so
// a converter can fill every column and check once.
type columns struct {
	err error
}

// list encodes a slice, "[]" when empty.
func list[T any](c *columns, name string, l []T) datatypes.JSON {
	if len(l) == 0 {
		return datatypes.JSON("[]")
	}
	return c.encode(name, l)
}

// record encodes an optional sub-record; nil stays NULL.
func record[T any](c *columns, name string, r *T) datatypes.JSON {
	if r == nil {
		return nil
	}
	return c.encode(name, r)
}

func (c *columns) encode(name string, v any) datatypes.JSON {
	if c.err != nil {
		return nil
	}
	data, err := jsoncodec.Marshal(v)
	if err != nil {
		c.err = fmt.Errorf("encoding %s column: %w", name, err)
		return nil
	}
	return datatypes.JSON(data)
}

// ToArchiveRecord converts a decoded archive and its provenance into a row
// tree. Creating the returned record with GORM also creates every child row.
func ToArchiveRecord(meta core.ArchiveMeta, a *genie.Archive) (model.ArchiveRecord, error) {
	var cols columns
	rec := model.ArchiveRecord{
		Fingerprint:         meta.FingerprintHex(),
		SourcePath:          meta.SourcePath,
		Version:             a.Version,
		DecodedAt:           meta.DecodedAt,
		TimeSlice:           a.TimeSlice,
		DebugPos:            a.DebugPos,
		PlayerColours:       list(&cols, "player_colours", a.PlayerColours),
		TerrainRestrictions: list(&cols, "terrain_restrictions", a.TerrainRestrictions),
	}
	if cols.err != nil {
		return model.ArchiveRecord{}, cols.err
	}
	if a.Truncation != nil {
		rec.TruncatedSection = a.Truncation.Section
		rec.TruncationError = a.Truncation.Err
	}
	if a.RandomMaps != nil {
		rec.RandomMapCount = a.RandomMaps.Count
	}

	rec.Terrains = ToTerrainRecords(a.TerrainBlock)
	for i, s := range a.Sounds {
		r, err := ToSoundRecord(i, s)
		if err != nil {
			return model.ArchiveRecord{}, fmt.Errorf("sound %d: %w", i, err)
		}
		rec.Sounds = append(rec.Sounds, r)
	}
	for i, g := range a.Graphics {
		r, err := ToGraphicRecord(i, g)
		if err != nil {
			return model.ArchiveRecord{}, fmt.Errorf("graphic %d: %w", i, err)
		}
		rec.Graphics = append(rec.Graphics, r)
	}
	for i, e := range a.Effects {
		r, err := ToEffectRecord(i, e)
		if err != nil {
			return model.ArchiveRecord{}, fmt.Errorf("effect %d: %w", i, err)
		}
		rec.Effects = append(rec.Effects, r)
	}
	for i, c := range a.Civs {
		r, err := ToCivRecord(i, c)
		if err != nil {
			return model.ArchiveRecord{}, fmt.Errorf("civ %d: %w", i, err)
		}
		rec.Civs = append(rec.Civs, r)
		for slot, u := range c.Units {
			if u == nil {
				continue
			}
			ur, err := ToUnitRecord(i, slot, u)
			if err != nil {
				return model.ArchiveRecord{}, fmt.Errorf("civ %d unit %d: %w", i, slot, err)
			}
			rec.Units = append(rec.Units, ur)
		}
	}
	for i, t := range a.Techs {
		r, err := ToTechRecord(i, t)
		if err != nil {
			return model.ArchiveRecord{}, fmt.Errorf("tech %d: %w", i, err)
		}
		rec.Techs = append(rec.Techs, r)
	}
	return rec, nil
}

// ToTerrainRecords returns a row per enabled terrain slot.
func ToTerrainRecords(tb *genie.TerrainBlock) []model.TerrainRecord {
	if tb == nil {
		return nil
	}
	var out []model.TerrainRecord
	for i, t := range tb.Terrains {
		if t.Enabled == 0 {
			continue
		}
		out = append(out, model.TerrainRecord{
			Slot:     uint16(i),
			Name:     t.Name,
			Name2:    t.Name2,
			MaskName: t.MaskName,
			StringID: t.StringID,
			IsWater:  t.IsWater != 0,
			Hidden:   t.HideInEditor != 0,
		})
	}
	return out
}

func ToSoundRecord(slot int, s genie.Sound) (model.SoundRecord, error) {
	var cols columns
	rec := model.SoundRecord{
		Slot:    uint16(slot),
		SoundID: s.ID,
		Items:   list(&cols, "items", s.Items),
	}
	return rec, cols.err
}

func ToGraphicRecord(slot int, g genie.Graphic) (model.GraphicRecord, error) {
	var cols columns
	rec := model.GraphicRecord{
		Slot:           uint16(slot),
		Name:           g.Name,
		FileName:       g.FileName,
		ParticleEffect: g.ParticleEffect,
		AngleCount:     g.AngleCount,
		Deltas:         list(&cols, "deltas", g.Deltas),
		AngleSounds:    list(&cols, "angle_sounds", g.AngleSounds),
	}
	return rec, cols.err
}

func ToEffectRecord(slot int, e genie.Effect) (model.EffectRecord, error) {
	var cols columns
	rec := model.EffectRecord{
		Slot:     uint32(slot),
		Name:     e.Name,
		Commands: list(&cols, "commands", e.Commands),
	}
	return rec, cols.err
}

func ToTechRecord(slot int, t genie.Tech) (model.TechRecord, error) {
	var cols columns
	rec := model.TechRecord{
		Slot:              uint16(slot),
		Name:              t.Name,
		Repeatable:        t.Repeatable != 0,
		ResearchLocations: list(&cols, "research_locations", t.ResearchLocations),
	}
	return rec, cols.err
}
