package parser

import (
	"fmt"

	"github.com/genietools/genie-dat/internal/cursor"
	"github.com/genietools/genie-dat/internal/version"
	"github.com/genietools/genie-dat/pkg/genie"
)

// Section names, in stream order.
const (
	SectionTerrainRestrictions = "terrain_restrictions"
	SectionPlayerColours       = "player_colours"
	SectionSounds              = "sounds"
	SectionGraphics            = "graphics"
	SectionTerrainBlock        = "terrain_block"
	SectionRandomMaps          = "random_maps"
	SectionEffects             = "effects"
	SectionUnitHeaders         = "unit_headers"
	SectionCivs                = "civs"
	SectionTechs               = "techs"
	SectionTimeSlice           = "time_slice"
)

// walk is the state shared by the steps of one archive decode.
type walk struct {
	f            *fields
	v            version.Tag
	a            *genie.Archive
	terrainsUsed uint16
}

type step struct {
	section string
	run     func(w *walk) error
}

// steps is the fixed section order of an archive. Each step appends to the
// archive as it goes so a failure keeps what was read before it.
var steps = []step{
	{SectionTerrainRestrictions, (*walk).terrainRestrictions},
	{SectionPlayerColours, (*walk).playerColours},
	{SectionSounds, (*walk).sounds},
	{SectionGraphics, (*walk).graphics},
	{SectionTerrainBlock, (*walk).terrainBlock},
	{SectionRandomMaps, (*walk).randomMaps},
	{SectionEffects, (*walk).effects},
	{SectionUnitHeaders, (*walk).unitHeaders},
	{SectionCivs, (*walk).civs},
	{SectionTechs, (*walk).techs},
	{SectionTimeSlice, (*walk).timeSlice},
}

// run executes every step until one fails, returning the failing section.
func (w *walk) run() (string, error) {
	for _, s := range steps {
		if err := s.run(w); err != nil {
			return s.section, err
		}
	}
	return "", nil
}

func newWalk(r *cursor.Reader) *walk {
	w := &walk{f: newFields(r), a: &genie.Archive{}}
	w.v = version.Read(r)
	w.a.Version = w.v.String()
	return w
}

func (w *walk) terrainRestrictions() error {
	f := w.f
	n := count(f.u16())
	w.terrainsUsed = f.u16()
	// one accessible-terrain pointer and one pass-graphic pointer per slot
	f.skip(int64(n) * 4 * 2)
	if !f.ok() {
		return f.err
	}
	w.a.TerrainRestrictions = make([]genie.TerrainRestriction, 0, n)
	for i := 0; i < n; i++ {
		tr := decodeTerrainRestriction(f, w.terrainsUsed)
		if !f.ok() {
			return fmt.Errorf("terrain restriction %d: %w", i, f.err)
		}
		w.a.TerrainRestrictions = append(w.a.TerrainRestrictions, tr)
	}
	return nil
}

func (w *walk) playerColours() error {
	f := w.f
	n := count(f.u16())
	if !f.ok() {
		return f.err
	}
	w.a.PlayerColours = make([]genie.PlayerColour, 0, n)
	for i := 0; i < n; i++ {
		c := decodePlayerColour(f)
		if !f.ok() {
			return fmt.Errorf("player colour %d: %w", i, f.err)
		}
		w.a.PlayerColours = append(w.a.PlayerColours, c)
	}
	return nil
}

func (w *walk) sounds() error {
	f := w.f
	n := count(f.u16())
	if !f.ok() {
		return f.err
	}
	w.a.Sounds = make([]genie.Sound, 0, n)
	for i := 0; i < n; i++ {
		s := decodeSound(f)
		if !f.ok() {
			return fmt.Errorf("sound %d: %w", i, f.err)
		}
		w.a.Sounds = append(w.a.Sounds, s)
	}
	return nil
}

func (w *walk) graphics() error {
	f := w.f
	n := count(f.u16())
	f.skip(int64(n) * 4) // graphic pointer table
	if !f.ok() {
		return f.err
	}
	w.a.Graphics = make([]genie.Graphic, 0, n)
	for i := 0; i < n; i++ {
		g := decodeGraphic(f)
		if !f.ok() {
			return fmt.Errorf("graphic %d: %w", i, f.err)
		}
		w.a.Graphics = append(w.a.Graphics, g)
	}
	return nil
}

func (w *walk) terrainBlock() error {
	b := decodeTerrainBlock(w.f)
	if !w.f.ok() {
		return w.f.err
	}
	w.a.TerrainBlock = b
	return nil
}

func (w *walk) randomMaps() error {
	m := decodeRandomMaps(w.f)
	if !w.f.ok() {
		return w.f.err
	}
	w.a.RandomMaps = m
	return nil
}

func (w *walk) effects() error {
	f := w.f
	n := count(f.u32())
	if !f.ok() {
		return f.err
	}
	w.a.Effects = make([]genie.Effect, 0, min(n, int(f.r.Len())))
	for i := 0; i < n; i++ {
		e := decodeEffect(f)
		if !f.ok() {
			return fmt.Errorf("effect %d: %w", i, f.err)
		}
		w.a.Effects = append(w.a.Effects, e)
	}
	return nil
}

func (w *walk) unitHeaders() error {
	f := w.f
	n := count(f.u32())
	if !f.ok() {
		return f.err
	}
	w.a.UnitHeaders = make([]genie.UnitHeaders, 0, min(n, int(f.r.Len())))
	for i := 0; i < n; i++ {
		h := decodeUnitHeaders(f, w.v)
		if !f.ok() {
			return fmt.Errorf("unit header %d: %w", i, f.err)
		}
		w.a.UnitHeaders = append(w.a.UnitHeaders, h)
	}
	return nil
}

func (w *walk) civs() error {
	f := w.f
	n := count(f.u16())
	if !f.ok() {
		return f.err
	}
	w.a.Civs = make([]genie.Civ, 0, n)
	for i := 0; i < n; i++ {
		c, err := decodeCiv(f, w.v)
		if err != nil {
			return fmt.Errorf("civ %d (%q): %w", i, c.Name, err)
		}
		w.a.Civs = append(w.a.Civs, c)
	}
	return nil
}

func (w *walk) techs() error {
	f := w.f
	n := count(f.u16())
	if !f.ok() {
		return f.err
	}
	w.a.Techs = make([]genie.Tech, 0, n)
	for i := 0; i < n; i++ {
		t := decodeTech(f, w.v)
		if !f.ok() {
			return fmt.Errorf("tech %d: %w", i, f.err)
		}
		w.a.Techs = append(w.a.Techs, t)
	}
	return nil
}

func (w *walk) timeSlice() error {
	w.a.TimeSlice = w.f.i32()
	return w.f.err
}
