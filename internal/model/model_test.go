package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	tests := []struct {
		name     string
		model    interface{ TableName() string }
		expected string
	}{
		{"ArchiveRecord", &ArchiveRecord{}, "archives"},
		{"TerrainRecord", &TerrainRecord{}, "terrains"},
		{"SoundRecord", &SoundRecord{}, "sounds"},
		{"GraphicRecord", &GraphicRecord{}, "graphics"},
		{"EffectRecord", &EffectRecord{}, "effects"},
		{"CivRecord", &CivRecord{}, "civs"},
		{"UnitRecord", &UnitRecord{}, "units"},
		{"TechRecord", &TechRecord{}, "techs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.model.TableName())
		})
	}
}

func TestDatabaseModels(t *testing.T) {
	assert.Len(t, DatabaseModels, 8)
	for _, m := range DatabaseModels {
		_, ok := m.(interface{ TableName() string })
		assert.True(t, ok, "%T has no table name", m)
	}
}

func TestArchiveRecord_Complete(t *testing.T) {
	assert.True(t, (&ArchiveRecord{}).Complete())
	assert.False(t, (&ArchiveRecord{TruncatedSection: "civs"}).Complete())
}
