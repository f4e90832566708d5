// pkg/genie/query.go
package genie

import "strings"

// CivByName returns the first civilisation whose name matches,
// ignoring case.
func (a *Archive) CivByName(name string) (*Civ, bool) {
	for i := range a.Civs {
		if strings.EqualFold(a.Civs[i].Name, name) {
			return &a.Civs[i], true
		}
	}
	return nil, false
}

// CivNames lists civilisation names in archive order.
func (a *Archive) CivNames() []string {
	names := make([]string, len(a.Civs))
	for i, c := range a.Civs {
		names[i] = c.Name
	}
	return names
}

// UnitByID looks up a unit slot in one civilisation. Empty slots and
// out-of-range ids report false.
func (a *Archive) UnitByID(civ, id int) (*Unit, bool) {
	if civ < 0 || civ >= len(a.Civs) {
		return nil, false
	}
	units := a.Civs[civ].Units
	if id < 0 || id >= len(units) || units[id] == nil {
		return nil, false
	}
	return units[id], true
}

// UnitNames returns the names of the occupied slots of one civilisation,
// keyed by slot index.
func (a *Archive) UnitNames(civ int) map[int]string {
	out := make(map[int]string)
	if civ < 0 || civ >= len(a.Civs) {
		return out
	}
	for i, u := range a.Civs[civ].Units {
		if u != nil {
			out[i] = u.Name
		}
	}
	return out
}

// GraphicByName returns the index of the first graphic with the given name.
func (a *Archive) GraphicByName(name string) (int, bool) {
	for i, g := range a.Graphics {
		if g.Name == name {
			return i, true
		}
	}
	return -1, false
}

// GraphicByFileName returns the index of the first graphic using the given
// sprite file.
func (a *Archive) GraphicByFileName(file string) (int, bool) {
	for i, g := range a.Graphics {
		if strings.EqualFold(g.FileName, file) {
			return i, true
		}
	}
	return -1, false
}

// ActiveGraphicCount counts graphics that are not blank placeholders.
func (a *Archive) ActiveGraphicCount() int {
	n := 0
	for _, g := range a.Graphics {
		if g.Name != "" || g.FileName != "" {
			n++
		}
	}
	return n
}

// ActiveSoundCount counts sounds with at least one item.
func (a *Archive) ActiveSoundCount() int {
	n := 0
	for _, s := range a.Sounds {
		if len(s.Items) > 0 {
			n++
		}
	}
	return n
}

// Summary is a section-count overview of an archive.
type Summary struct {
	Version             string
	TerrainRestrictions int
	PlayerColours       int
	Sounds              int
	Graphics            int
	Terrains            int
	RandomMaps          uint32
	Effects             int
	UnitHeaders         int
	Civs                int
	Units               int
	Techs               int
	TimeSlice           int32
	DebugPos            int64
	TruncatedAt         string
}

// Summary counts the decoded records per section.
func (a *Archive) Summary() Summary {
	s := Summary{
		Version:             a.Version,
		TerrainRestrictions: len(a.TerrainRestrictions),
		PlayerColours:       len(a.PlayerColours),
		Sounds:              len(a.Sounds),
		Graphics:            len(a.Graphics),
		Effects:             len(a.Effects),
		UnitHeaders:         len(a.UnitHeaders),
		Civs:                len(a.Civs),
		Techs:               len(a.Techs),
		TimeSlice:           a.TimeSlice,
		DebugPos:            a.DebugPos,
	}
	if a.TerrainBlock != nil {
		for _, t := range a.TerrainBlock.Terrains {
			if t.Enabled != 0 {
				s.Terrains++
			}
		}
	}
	if a.RandomMaps != nil {
		s.RandomMaps = a.RandomMaps.Count
	}
	for _, c := range a.Civs {
		for _, u := range c.Units {
			if u != nil {
				s.Units++
			}
		}
	}
	if a.Truncation != nil {
		s.TruncatedAt = a.Truncation.Section
	}
	return s
}
