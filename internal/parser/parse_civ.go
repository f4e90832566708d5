package parser

import (
	"fmt"

	"github.com/genietools/genie-dat/internal/version"
	"github.com/genietools/genie-dat/pkg/genie"
)

// decodeCiv reads a civilisation. The unit pointer table decides which
// slots are occupied; a zero pointer is an empty slot with no bytes behind
// it. The returned error names the unit slot that failed.
func decodeCiv(f *fields, v version.Tag) (genie.Civ, error) {
	c := genie.Civ{
		PlayerType: f.i8(),
		Name:       f.str(),
	}
	resources := count(f.u16())
	c.TechTreeID = f.i16()
	c.TeamBonus = f.i16()
	if f.ok() {
		c.Resources = make([]float32, 0, resources)
		for i := 0; i < resources && f.ok(); i++ {
			c.Resources = append(c.Resources, f.f32())
		}
	}
	c.IconSet = f.i8()

	slots := count(f.u16())
	if !f.ok() {
		return c, f.err
	}
	pointers := make([]int32, slots)
	for i := range pointers {
		pointers[i] = f.i32()
	}
	if !f.ok() {
		return c, fmt.Errorf("unit pointer table: %w", f.err)
	}

	c.Units = make([]*genie.Unit, slots)
	for i, ptr := range pointers {
		if ptr == 0 {
			continue
		}
		u := decodeUnit(f, v)
		if !f.ok() {
			return c, fmt.Errorf("unit slot %d (id %d): %w", i, u.ID, f.err)
		}
		c.Units[i] = u
	}
	return c, nil
}
