package convert

import (
	"github.com/genietools/genie-dat/internal/model"
	"github.com/genietools/genie-dat/pkg/genie"
)

// ToCivRecord converts a civilisation header. Units are converted
// separately by ToUnitRecord.
func ToCivRecord(slot int, c genie.Civ) (model.CivRecord, error) {
	var cols columns
	rec := model.CivRecord{
		Slot:       uint16(slot),
		Name:       c.Name,
		PlayerType: c.PlayerType,
		TechTreeID: c.TechTreeID,
		TeamBonus:  c.TeamBonus,
		IconSet:    c.IconSet,
		Resources:  list(&cols, "resources", c.Resources),
		UnitSlots:  uint16(len(c.Units)),
	}
	return rec, cols.err
}

// unitCommon carries the shared unit fields that have no column.
type unitCommon struct {
	LanguageDLLName     int32                    `json:"languageDllName"`
	LanguageDLLCreation int32                    `json:"languageDllCreation"`
	GarrisonCapacity    int8                     `json:"garrisonCapacity"`
	CollisionSize       [3]float32               `json:"collisionSize"`
	IconID              int16                    `json:"iconId"`
	Disabled            int8                     `json:"disabled"`
	CivID               int16                    `json:"civId"`
	ResourceStorages    [3]genie.ResourceStorage `json:"resourceStorages"`
	DamageGraphics      []genie.DamageGraphic    `json:"damageGraphics"`
	CopyID              int16                    `json:"copyId"`
	BaseID              int16                    `json:"baseId"`
}

// ToUnitRecord converts the unit in the given civ and slot.
func ToUnitRecord(civSlot, slot int, u *genie.Unit) (model.UnitRecord, error) {
	damage := u.DamageGraphics
	if damage == nil {
		damage = []genie.DamageGraphic{}
	}
	common := unitCommon{
		LanguageDLLName:     u.LanguageDLLName,
		LanguageDLLCreation: u.LanguageDLLCreation,
		GarrisonCapacity:    u.GarrisonCapacity,
		CollisionSize:       u.CollisionSize,
		IconID:              u.IconID,
		Disabled:            u.Disabled,
		CivID:               u.CivID,
		ResourceStorages:    u.ResourceStorages,
		DamageGraphics:      damage,
		CopyID:              u.CopyID,
		BaseID:              u.BaseID,
	}

	var cols columns
	rec := model.UnitRecord{
		CivSlot:     uint16(civSlot),
		Slot:        uint16(slot),
		UnitID:      u.ID,
		Type:        u.Type,
		Name:        u.Name,
		Class:       u.Class,
		HitPoints:   u.HitPoints,
		LineOfSight: u.LineOfSight,
		Speed:       u.Speed,
		Enabled:     u.Enabled != 0,
		Variants:    u.Variants().String(),
		Common:      record(&cols, "common", &common),
		DeadFish:    record(&cols, "dead_fish", u.DeadFish),
		Bird:        record(&cols, "bird", u.Bird),
		Type50:      record(&cols, "type50", u.Type50),
		Projectile:  record(&cols, "projectile", u.Projectile),
		Creatable:   record(&cols, "creatable", u.Creatable),
		Building:    record(&cols, "building", u.Building),
	}
	return rec, cols.err
}

