// pkg/genie/media.go
package genie

type Sound struct {
	ID    int16
	Items []SoundItem
}

type SoundItem struct {
	Filename   string
	ResourceID int32
}

// Graphic is a sprite definition with its per-angle deltas and sounds.
type Graphic struct {
	Name           string
	FileName       string
	ParticleEffect string
	AngleCount     uint16
	Deltas         []GraphicDelta
	AngleSounds    []GraphicAngleSound
}

// GraphicDelta offsets another graphic. SpritePtr is a stale in-memory
// address and carries no meaning.
type GraphicDelta struct {
	GraphicID    int16
	SpritePtr    int32
	OffsetX      int16
	OffsetY      int16
	DisplayAngle int16
}

type GraphicAngleSound struct {
	Frames [3]AngleSoundFrame
}

type AngleSoundFrame struct {
	FrameNum     int16
	SoundID      int16
	WwiseSoundID int32
}

type Effect struct {
	Name     string
	Commands []EffectCommand
}

type EffectCommand struct {
	Type int8
	A    int16
	B    int16
	C    int16
	D    float32
}

// Civ is a civilisation. Units is sparse: a nil entry is an empty slot.
type Civ struct {
	PlayerType int8
	Name       string
	TechTreeID int16
	TeamBonus  int16
	Resources  []float32
	IconSet    int8
	Units      []*Unit
}
