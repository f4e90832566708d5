package parser

import (
	"github.com/genietools/genie-dat/pkg/genie"
)

const (
	playerColourPadding = 24
	soundItemPadding    = 6
)

func decodePlayerColour(f *fields) genie.PlayerColour {
	c := genie.PlayerColour{
		ID:      f.i32(),
		Base:    f.i32(),
		Outline: f.i32(),
	}
	f.skip(playerColourPadding)
	return c
}

func decodeSoundItem(f *fields) genie.SoundItem {
	item := genie.SoundItem{
		Filename:   f.str(),
		ResourceID: f.i32(),
	}
	f.skip(soundItemPadding)
	return item
}

func decodeSound(f *fields) genie.Sound {
	s := genie.Sound{ID: f.i16()}
	f.skip(2)
	n := count(f.u16())
	f.skip(6)
	if !f.ok() {
		return s
	}
	s.Items = make([]genie.SoundItem, 0, n)
	for i := 0; i < n && f.ok(); i++ {
		s.Items = append(s.Items, decodeSoundItem(f))
	}
	return s
}

// decodeGraphic reads a sprite definition. The fixed block between the
// names and the delta list is mostly animation settings that are skipped.
func decodeGraphic(f *fields) genie.Graphic {
	g := genie.Graphic{
		Name:           f.str(),
		FileName:       f.str(),
		ParticleEffect: f.str(),
	}
	f.skip(18)
	deltaCount := count(f.u16())
	f.skip(6)
	angleSoundsUsed := f.u8()
	f.skip(2)
	g.AngleCount = f.u16()
	f.skip(17)
	if !f.ok() {
		return g
	}

	g.Deltas = make([]genie.GraphicDelta, 0, deltaCount)
	for i := 0; i < deltaCount && f.ok(); i++ {
		d := genie.GraphicDelta{GraphicID: f.i16()}
		f.skip(2)
		d.SpritePtr = f.i32()
		d.OffsetX = f.i16()
		d.OffsetY = f.i16()
		d.DisplayAngle = f.i16()
		f.skip(2)
		g.Deltas = append(g.Deltas, d)
	}

	if angleSoundsUsed != 0 {
		g.AngleSounds = make([]genie.GraphicAngleSound, 0, g.AngleCount)
		for i := 0; i < int(g.AngleCount) && f.ok(); i++ {
			var s genie.GraphicAngleSound
			for j := range s.Frames {
				s.Frames[j] = genie.AngleSoundFrame{
					FrameNum:     f.i16(),
					SoundID:      f.i16(),
					WwiseSoundID: f.i32(),
				}
			}
			g.AngleSounds = append(g.AngleSounds, s)
		}
	}
	return g
}

func decodeEffect(f *fields) genie.Effect {
	e := genie.Effect{Name: f.str()}
	n := count(f.i16())
	if !f.ok() {
		return e
	}
	e.Commands = make([]genie.EffectCommand, 0, n)
	for i := 0; i < n && f.ok(); i++ {
		e.Commands = append(e.Commands, genie.EffectCommand{
			Type: f.i8(),
			A:    f.i16(),
			B:    f.i16(),
			C:    f.i16(),
			D:    f.f32(),
		})
	}
	return e
}
