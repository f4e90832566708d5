package parser

import (
	"github.com/genietools/genie-dat/internal/version"
	"github.com/genietools/genie-dat/pkg/genie"
)

func decodeTask(f *fields, v version.Tag) genie.Task {
	t := genie.Task{
		TaskType:                 f.i16(),
		ID:                       f.i16(),
		IsDefault:                f.i8(),
		ActionType:               f.i16(),
		ClassID:                  f.i16(),
		UnitID:                   f.i16(),
		TerrainID:                f.i16(),
		ResourceIn:               f.i16(),
		ResourceMultiplier:       f.i16(),
		ResourceOut:              f.i16(),
		UnusedResource:           f.i16(),
		WorkValue1:               f.f32(),
		WorkValue2:               f.f32(),
		WorkRange:                f.f32(),
		AutoSearchTargets:        f.i8(),
		SearchWaitTime:           f.f32(),
		EnableTargeting:          f.i8(),
		CombatLevelFlag:          f.i8(),
		GatherType:               f.i16(),
		WorkFlag2:                f.i16(),
		TargetDiplomacy:          f.i8(),
		CarryCheck:               f.i8(),
		PickForConstruction:      f.i8(),
		MovingGraphicID:          f.i16(),
		ProceedingGraphicID:      f.i16(),
		WorkingGraphicID:         f.i16(),
		CarryingGraphicID:        f.i16(),
		ResourceGatheringSoundID: f.i16(),
		ResourceDepositSoundID:   f.i16(),
		WwiseGatheringSoundID:    f.i32(),
		WwiseDepositSoundID:      f.i32(),
		Enabled:                  -1,
	}
	if v.AtLeast(version.V88) {
		t.Enabled = f.i16()
	}
	return t
}

func decodeTasks(f *fields, v version.Tag, n int) []genie.Task {
	if !f.ok() {
		return nil
	}
	tasks := make([]genie.Task, 0, n)
	for i := 0; i < n && f.ok(); i++ {
		tasks = append(tasks, decodeTask(f, v))
	}
	return tasks
}

// decodeUnitHeaders walks a task header. The tasks are read to keep the
// cursor aligned and then dropped.
func decodeUnitHeaders(f *fields, v version.Tag) genie.UnitHeaders {
	h := genie.UnitHeaders{Exists: f.u8() != 0}
	if !h.Exists {
		return h
	}
	h.TaskCount = f.u16()
	decodeTasks(f, v, count(h.TaskCount))
	return h
}

func decodeResearchLocation(f *fields) genie.ResearchLocation {
	return genie.ResearchLocation{
		LocationID:   f.i16(),
		ResearchTime: f.i16(),
		ButtonID:     f.i8(),
		HotKeyID:     f.i32(),
	}
}

// decodeTech keeps the name and research locations. Requirements, costs,
// language ids and the rest of the fixed block are skipped; their widths
// changed in VER 8.8.
func decodeTech(f *fields, v version.Tag) genie.Tech {
	f.skip(6 * 2) // required techs
	f.skip(3 * 5) // resource costs
	f.skip(10)
	if v.AtLeast(version.V88) {
		f.skip(8)
	} else {
		f.skip(2 + 4 + 4 + 2)
	}
	f.skip(2 + 2 + 2)
	if v.Below(version.V88) {
		f.skip(1)
	}
	f.skip(8)
	if v.Below(version.V88) {
		f.skip(4)
	}

	t := genie.Tech{
		Name:       f.str(),
		Repeatable: f.i8(),
	}
	if v.AtLeast(version.V88) {
		n := count(f.i16())
		if !f.ok() {
			return t
		}
		t.ResearchLocations = make([]genie.ResearchLocation, 0, n)
		for i := 0; i < n && f.ok(); i++ {
			t.ResearchLocations = append(t.ResearchLocations, decodeResearchLocation(f))
		}
	}
	return t
}
