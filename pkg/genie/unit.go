// pkg/genie/unit.go
package genie

// Unit is one unit slot of a civilisation. The optional sub-records are
// populated according to the type code ladder, see VariantsFor.
type Unit struct {
	Type                uint8
	ID                  int16
	Name                string
	LanguageDLLName     int32
	LanguageDLLCreation int32
	Class               int16
	HitPoints           int16
	LineOfSight         float32
	GarrisonCapacity    int8
	CollisionSize       [3]float32
	IconID              int16
	Enabled             int8
	Disabled            int8
	CivID               int16
	ResourceStorages    [3]ResourceStorage
	DamageGraphics      []DamageGraphic
	CopyID              int16
	BaseID              int16
	Speed               float32

	DeadFish   *DeadFish
	Bird       *Bird
	Type50     *Type50
	Projectile *Projectile
	Creatable  *Creatable
	Building   *Building
}

// Attacks returns the unit's attack list, or nil for non-combatants.
func (u *Unit) Attacks() []AttackOrArmor {
	if u.Type50 == nil {
		return nil
	}
	return u.Type50.Attacks
}

// Armours returns the unit's armour list, or nil for non-combatants.
func (u *Unit) Armours() []AttackOrArmor {
	if u.Type50 == nil {
		return nil
	}
	return u.Type50.Armours
}

// Variants reports which sub-records are present on the unit.
func (u *Unit) Variants() VariantSet {
	s := VariantsFor(u.Type) & (1 << VariantSpeed)
	if u.DeadFish != nil {
		s = s.with(VariantDeadFish)
	}
	if u.Bird != nil {
		s = s.with(VariantBird)
	}
	if u.Type50 != nil {
		s = s.with(VariantType50)
	}
	if u.Projectile != nil {
		s = s.with(VariantProjectile)
	}
	if u.Creatable != nil {
		s = s.with(VariantCreatable)
	}
	if u.Building != nil {
		s = s.with(VariantBuilding)
	}
	return s
}

type ResourceStorage struct {
	Type   int16
	Amount float32
	Flag   int8
}

type DamageGraphic struct {
	GraphicID     int16
	DamagePercent int16
	ApplyMode     int8
}

type DeadFish struct {
	WalkingGraphic              int16
	RunningGraphic              int16
	RotationSpeed               float32
	OldSizeClass                int8
	TrackingUnit                int16
	TrackingUnitMode            int8
	TrackingUnitDensity         float32
	OldMoveAlgorithm            int8
	TurnRadius                  float32
	TurnRadiusSpeed             float32
	MaxYawPerSecondMoving       float32
	StationaryYawRevolutionTime float32
	MaxYawPerSecondStationary   float32
	MinCollisionSizeMultiplier  float32
}

type Bird struct {
	DefaultTaskID      int16
	SearchRadius       float32
	WorkRate           float32
	DropSites          []int16
	TaskSwapGroup      int8
	AttackSound        int16
	MoveSound          int16
	WwiseAttackSoundID int32
	WwiseMoveSoundID   int32
	RunPattern         int8
	Tasks              []Task
}

type Task struct {
	TaskType                 int16
	ID                       int16
	IsDefault                int8
	ActionType               int16
	ClassID                  int16
	UnitID                   int16
	TerrainID                int16
	ResourceIn               int16
	ResourceMultiplier       int16
	ResourceOut              int16
	UnusedResource           int16
	WorkValue1               float32
	WorkValue2               float32
	WorkRange                float32
	AutoSearchTargets        int8
	SearchWaitTime           float32
	EnableTargeting          int8
	CombatLevelFlag          int8
	GatherType               int16
	WorkFlag2                int16
	TargetDiplomacy          int8
	CarryCheck               int8
	PickForConstruction      int8
	MovingGraphicID          int16
	ProceedingGraphicID      int16
	WorkingGraphicID         int16
	CarryingGraphicID        int16
	ResourceGatheringSoundID int16
	ResourceDepositSoundID   int16
	WwiseGatheringSoundID    int32
	WwiseDepositSoundID      int32
	Enabled                  int16
}

type AttackOrArmor struct {
	Class  int16
	Amount int16
}

// Type50 holds combat stats.
type Type50 struct {
	BaseArmor             int16
	Attacks               []AttackOrArmor
	Armours               []AttackOrArmor
	DefenseTerrainBonus   int16
	BonusDamageResistance float32
	MaxRange              float32
	BlastWidth            float32
	ReloadTime            float32
	ProjectileUnitID      int16
	AccuracyPercent       int16
	BreakOffCombat        int8
	FrameDelay            int16
	GraphicDisplacement   [3]float32
	BlastAttackLevel      int8
	MinRange              float32
	AccuracyDispersion    float32
	AttackGraphic         int16
	DisplayedMeleeArmour  int16
	DisplayedAttack       int16
	DisplayedRange        float32
	DisplayedReloadTime   float32
	BlastDamage           float32
	DamageReflection      float32
	FriendlyFireDamage    float32
	InterruptFrame        int16
	GarrisonFirepower     float32
	AttackGraphic2        int16
}

type Projectile struct {
	ProjectileType     int8
	SmartMode          int8
	HitMode            int8
	VanishMode         int8
	AreaEffectSpecials int8
	ProjectileArc      float32
}

type ResourceCost struct {
	Type   int16
	Amount int16
	Flag   int16
}

type TrainLocation struct {
	TrainTime int16
	UnitID    int16
	ButtonID  int8
	HotKeyID  int32
}

type Creatable struct {
	ResourceCosts           [3]ResourceCost
	TrainLocations          []TrainLocation
	RearAttackModifier      float32
	FlankAttackModifier     float32
	CreatableType           int8
	HeroMode                int8
	GarrisonGraphic         int32
	SpawningGraphic         int16
	UpgradeGraphic          int16
	HeroGlowGraphic         int16
	IdleAttackGraphic       int16
	MaxCharge               float32
	RechargeRate            float32
	ChargeEvent             int16
	ChargeType              int16
	ChargeTarget            int16
	ChargeProjectileUnit    int32
	AttackPriority          int8
	InvulnerabilityLevel    float32
	ButtonIconID            int16
	ButtonShortTooltipID    int32
	ButtonExtendedTooltipID int32
	ButtonHotkeyAction      int16
	MinConversionTimeMod    float32
	MaxConversionTimeMod    float32
	ConversionChanceMod     float32
	TotalProjectiles        float32
	MaxTotalProjectiles     int8
	ProjectileSpawningArea  [3]float32
	SecondaryProjectileUnit int32
	SpecialGraphic          int32
	SpecialAbility          int8
	DisplayedPierceArmour   int16
}

type BuildingAnnex struct {
	UnitID        int16
	MisplacementX float32
	MisplacementY float32
}

type Building struct {
	ConstructionGraphicID      int16
	SnowGraphicID              int16
	DestructionGraphicID       int16
	DestructionRubbleGraphicID int16
	ResearchingGraphic         int16
	ResearchCompletedGraphic   int16
	AdjacentMode               int16
	GraphicsAngle              int16
	DisappearsWhenBuilt        int8
	StackUnitID                int16
	FoundationTerrainID        int8
	OldOverlapID               int16
	TechID                     int16
	CanBurn                    int8
	Annexes                    [4]BuildingAnnex
	HeadUnit                   int16
	TransformUnit              int16
	TransformSound             int16
	ConstructionSound          int16
	WwiseTransformSoundID      int32
	WwiseConstructionSoundID   int32
	GarrisonType               int8
	GarrisonHealRate           float32
	GarrisonRepairRate         float32
	PileUnit                   int16
	LootingTable               [6]int8
}
