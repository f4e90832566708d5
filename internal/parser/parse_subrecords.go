package parser

import (
	"github.com/genietools/genie-dat/internal/version"
	"github.com/genietools/genie-dat/pkg/genie"
)

// Defaults substituted for fields that older versions do not store.
const (
	defaultHotKeyID           = 16000
	defaultFriendlyFireDamage = 1.0
	defaultInterruptFrame     = -1
	defaultAttackGraphic2     = -1
	defaultIdleAttackGraphic  = -1
	defaultChargeProjectile   = -1
	defaultButtonID           = -1
	legacyDropSiteCount       = 3
)

func decodeResourceStorage(f *fields) genie.ResourceStorage {
	return genie.ResourceStorage{Type: f.i16(), Amount: f.f32(), Flag: f.i8()}
}

func decodeDamageGraphic(f *fields) genie.DamageGraphic {
	return genie.DamageGraphic{GraphicID: f.i16(), DamagePercent: f.i16(), ApplyMode: f.i8()}
}

func decodeAttackOrArmor(f *fields) genie.AttackOrArmor {
	return genie.AttackOrArmor{Class: f.i16(), Amount: f.i16()}
}

func decodeAttackList(f *fields) []genie.AttackOrArmor {
	n := count(f.i16())
	if !f.ok() {
		return nil
	}
	out := make([]genie.AttackOrArmor, 0, n)
	for i := 0; i < n && f.ok(); i++ {
		out = append(out, decodeAttackOrArmor(f))
	}
	return out
}

func decodeResourceCost(f *fields) genie.ResourceCost {
	return genie.ResourceCost{Type: f.i16(), Amount: f.i16(), Flag: f.i16()}
}

func decodeTrainLocation(f *fields, v version.Tag) genie.TrainLocation {
	l := genie.TrainLocation{
		TrainTime: f.i16(),
		UnitID:    f.i16(),
		ButtonID:  f.i8(),
		HotKeyID:  defaultHotKeyID,
	}
	if v.AtLeast(version.V88) {
		l.HotKeyID = f.i32()
	}
	return l
}

func decodeBuildingAnnex(f *fields) genie.BuildingAnnex {
	return genie.BuildingAnnex{UnitID: f.i16(), MisplacementX: f.f32(), MisplacementY: f.f32()}
}

func decodeDeadFish(f *fields) *genie.DeadFish {
	return &genie.DeadFish{
		WalkingGraphic:              f.i16(),
		RunningGraphic:              f.i16(),
		RotationSpeed:               f.f32(),
		OldSizeClass:                f.i8(),
		TrackingUnit:                f.i16(),
		TrackingUnitMode:            f.i8(),
		TrackingUnitDensity:         f.f32(),
		OldMoveAlgorithm:            f.i8(),
		TurnRadius:                  f.f32(),
		TurnRadiusSpeed:             f.f32(),
		MaxYawPerSecondMoving:       f.f32(),
		StationaryYawRevolutionTime: f.f32(),
		MaxYawPerSecondStationary:   f.f32(),
		MinCollisionSizeMultiplier:  f.f32(),
	}
}

// decodeBird reads the task-capable tier. The drop site list gained an
// explicit count after VER 7.7; before that it is always three entries.
func decodeBird(f *fields, v version.Tag) *genie.Bird {
	b := &genie.Bird{
		DefaultTaskID: f.i16(),
		SearchRadius:  f.f32(),
		WorkRate:      f.f32(),
	}
	sites := legacyDropSiteCount
	if v.After(version.V77) {
		sites = count(f.i16())
	}
	if f.ok() {
		b.DropSites = make([]int16, 0, sites)
		for i := 0; i < sites && f.ok(); i++ {
			b.DropSites = append(b.DropSites, f.i16())
		}
	}
	b.TaskSwapGroup = f.i8()
	b.AttackSound = f.i16()
	b.MoveSound = f.i16()
	b.WwiseAttackSoundID = f.i32()
	b.WwiseMoveSoundID = f.i32()
	b.RunPattern = f.i8()
	b.Tasks = decodeTasks(f, v, count(f.i16()))
	return b
}

func decodeType50(f *fields, v version.Tag) *genie.Type50 {
	t := &genie.Type50{
		BaseArmor:             f.i16(),
		Attacks:               decodeAttackList(f),
		Armours:               decodeAttackList(f),
		DefenseTerrainBonus:   f.i16(),
		BonusDamageResistance: f.f32(),
		MaxRange:              f.f32(),
		BlastWidth:            f.f32(),
		ReloadTime:            f.f32(),
		ProjectileUnitID:      f.i16(),
		AccuracyPercent:       f.i16(),
		BreakOffCombat:        f.i8(),
		FrameDelay:            f.i16(),
		GraphicDisplacement:   f.f32x3(),
		BlastAttackLevel:      f.i8(),
		MinRange:              f.f32(),
		AccuracyDispersion:    f.f32(),
		AttackGraphic:         f.i16(),
		DisplayedMeleeArmour:  f.i16(),
		DisplayedAttack:       f.i16(),
		DisplayedRange:        f.f32(),
		DisplayedReloadTime:   f.f32(),
		BlastDamage:           f.f32(),
		FriendlyFireDamage:    defaultFriendlyFireDamage,
		InterruptFrame:        defaultInterruptFrame,
		AttackGraphic2:        defaultAttackGraphic2,
	}
	if v.AtLeast(version.V84) {
		t.DamageReflection = f.f32()
		t.FriendlyFireDamage = f.f32()
		t.InterruptFrame = f.i16()
		t.GarrisonFirepower = f.f32()
		t.AttackGraphic2 = f.i16()
	}
	return t
}

func decodeProjectile(f *fields) *genie.Projectile {
	return &genie.Projectile{
		ProjectileType:     f.i8(),
		SmartMode:          f.i8(),
		HitMode:            f.i8(),
		VanishMode:         f.i8(),
		AreaEffectSpecials: f.i8(),
		ProjectileArc:      f.f32(),
	}
}

// decodeCreatable reads the trainable tier. Before VER 8.8 there is exactly
// one train location stored inline without a hot key.
func decodeCreatable(f *fields, v version.Tag) *genie.Creatable {
	c := &genie.Creatable{}
	for i := range c.ResourceCosts {
		c.ResourceCosts[i] = decodeResourceCost(f)
	}

	if v.AtLeast(version.V88) {
		n := count(f.i16())
		if f.ok() {
			c.TrainLocations = make([]genie.TrainLocation, 0, n)
			for i := 0; i < n && f.ok(); i++ {
				c.TrainLocations = append(c.TrainLocations, decodeTrainLocation(f, v))
			}
		}
	} else {
		c.TrainLocations = []genie.TrainLocation{decodeTrainLocation(f, v)}
	}

	c.RearAttackModifier = f.f32()
	c.FlankAttackModifier = f.f32()
	c.CreatableType = f.i8()
	c.HeroMode = f.i8()
	c.GarrisonGraphic = f.i32()
	c.SpawningGraphic = f.i16()
	c.UpgradeGraphic = f.i16()
	c.HeroGlowGraphic = f.i16()
	c.IdleAttackGraphic = defaultIdleAttackGraphic
	if v.AtLeast(version.V84) {
		c.IdleAttackGraphic = f.i16()
	}
	c.MaxCharge = f.f32()
	c.RechargeRate = f.f32()
	c.ChargeEvent = f.i16()
	c.ChargeType = f.i16()

	c.ChargeProjectileUnit = defaultChargeProjectile
	c.ButtonIconID = defaultButtonID
	c.ButtonShortTooltipID = defaultButtonID
	c.ButtonExtendedTooltipID = defaultButtonID
	c.ButtonHotkeyAction = defaultButtonID
	if v.AtLeast(version.V84) {
		c.ChargeTarget = f.i16()
		c.ChargeProjectileUnit = f.i32()
		c.AttackPriority = f.i8()
		c.InvulnerabilityLevel = f.f32()
		c.ButtonIconID = f.i16()
		c.ButtonShortTooltipID = f.i32()
		c.ButtonExtendedTooltipID = f.i32()
		c.ButtonHotkeyAction = f.i16()
	}

	c.MinConversionTimeMod = f.f32()
	c.MaxConversionTimeMod = f.f32()
	c.ConversionChanceMod = f.f32()
	c.TotalProjectiles = f.f32()
	c.MaxTotalProjectiles = f.i8()
	c.ProjectileSpawningArea = f.f32x3()
	c.SecondaryProjectileUnit = f.i32()
	c.SpecialGraphic = f.i32()
	c.SpecialAbility = f.i8()
	c.DisplayedPierceArmour = f.i16()
	return c
}

func decodeBuilding(f *fields) *genie.Building {
	b := &genie.Building{
		ConstructionGraphicID:      f.i16(),
		SnowGraphicID:              f.i16(),
		DestructionGraphicID:       f.i16(),
		DestructionRubbleGraphicID: f.i16(),
		ResearchingGraphic:         f.i16(),
		ResearchCompletedGraphic:   f.i16(),
		AdjacentMode:               f.i16(),
		GraphicsAngle:              f.i16(),
		DisappearsWhenBuilt:        f.i8(),
		StackUnitID:                f.i16(),
		FoundationTerrainID:        f.i8(),
		OldOverlapID:               f.i16(),
		TechID:                     f.i16(),
		CanBurn:                    f.i8(),
	}
	for i := range b.Annexes {
		b.Annexes[i] = decodeBuildingAnnex(f)
	}
	b.HeadUnit = f.i16()
	b.TransformUnit = f.i16()
	b.TransformSound = f.i16()
	b.ConstructionSound = f.i16()
	b.WwiseTransformSoundID = f.i32()
	b.WwiseConstructionSoundID = f.i32()
	b.GarrisonType = f.i8()
	b.GarrisonHealRate = f.f32()
	b.GarrisonRepairRate = f.f32()
	b.PileUnit = f.i16()
	for i := range b.LootingTable {
		b.LootingTable[i] = f.i8()
	}
	return b
}
