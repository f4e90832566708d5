package parser

import (
	"github.com/genietools/genie-dat/internal/version"
	"github.com/genietools/genie-dat/pkg/genie"
)

// decodeUnit reads the common unit block and then the tiers selected by the
// unit's type code. Tier decoders do not know about the ladder; they are
// applied in the order genie.VariantsFor returns them.
func decodeUnit(f *fields, v version.Tag) *genie.Unit {
	u := &genie.Unit{
		Type:                f.u8(),
		ID:                  f.i16(),
		LanguageDLLName:     f.i32(),
		LanguageDLLCreation: f.i32(),
		Class:               f.i16(),
	}
	f.skip(2 + 2) // standing graphics
	f.skip(2 + 2) // dying, undead graphics
	f.skip(1)     // undead mode
	u.HitPoints = f.i16()
	u.LineOfSight = f.f32()
	u.GarrisonCapacity = f.i8()
	u.CollisionSize = f.f32x3()
	f.skip(2 + 2) // train, damage sounds
	f.skip(2 + 2) // dead unit, blood unit
	f.skip(1 + 1) // sort number, can be built on
	u.IconID = f.i16()
	f.skip(1) // hide in editor
	f.skip(2) // portrait picture
	u.Enabled = f.i8()
	u.Disabled = f.i8()
	f.skip(2*2 + 2*2) // placement side and placement terrains
	f.skip(4 * 2)     // clearance size
	f.skip(1 + 1)     // hill mode, fog visibility
	f.skip(2)         // terrain restriction
	f.skip(1)         // fly mode
	f.skip(2 + 4)     // resource capacity, decay
	f.skip(1 + 1 + 1) // blast defense, combat level, interaction mode
	f.skip(1 + 1)     // minimap mode, interface kind
	f.skip(4)         // multiple attribute mode
	f.skip(1)         // minimap colour
	f.skip(4 + 4)     // help string, hotkey text
	if v.Below(version.V88) {
		f.skip(4) // legacy hotkey id
	}
	f.skip(8) // recyclable through trait
	u.CivID = f.i16()
	f.skip(1 + 1 + 1) // nothing, selection effect, editor selection colour
	f.skip(3 * 4)     // outline size
	f.skip(4 + 4)     // scenario triggers

	for i := range u.ResourceStorages {
		u.ResourceStorages[i] = decodeResourceStorage(f)
	}
	n := count(f.u8())
	if f.ok() && n > 0 {
		u.DamageGraphics = make([]genie.DamageGraphic, 0, n)
		for i := 0; i < n && f.ok(); i++ {
			u.DamageGraphics = append(u.DamageGraphics, decodeDamageGraphic(f))
		}
	}

	f.skip(2 + 2)     // selection, dying sounds
	f.skip(4 * 4)     // wwise sound ids
	f.skip(1 + 1)     // old attack reaction, convert terrain
	u.Name = f.str()
	u.CopyID = f.i16()
	u.BaseID = f.i16()
	if !f.ok() {
		return u
	}

	for _, kind := range genie.VariantsFor(u.Type).Kinds() {
		switch kind {
		case genie.VariantSpeed:
			u.Speed = f.f32()
		case genie.VariantDeadFish:
			u.DeadFish = decodeDeadFish(f)
		case genie.VariantBird:
			u.Bird = decodeBird(f, v)
		case genie.VariantType50:
			u.Type50 = decodeType50(f, v)
		case genie.VariantProjectile:
			u.Projectile = decodeProjectile(f)
		case genie.VariantCreatable:
			u.Creatable = decodeCreatable(f, v)
		case genie.VariantBuilding:
			u.Building = decodeBuilding(f)
		}
		if !f.ok() {
			break
		}
	}
	return u
}
