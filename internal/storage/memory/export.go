// internal/storage/memory/export.go
package memory

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"gopkg.in/yaml.v3"

	"github.com/genietools/genie-dat/internal/jsoncodec"
	"github.com/genietools/genie-dat/pkg/core"
	"github.com/genietools/genie-dat/pkg/genie"
)

// ArchiveExport is the root document written for each stored archive.
type ArchiveExport struct {
	Fingerprint string            `json:"fingerprint" yaml:"fingerprint"`
	SourcePath  string            `json:"sourcePath" yaml:"sourcePath"`
	DecodedAt   string            `json:"decodedAt" yaml:"decodedAt"`
	Version     string            `json:"version" yaml:"version"`
	Complete    bool              `json:"complete" yaml:"complete"`
	Truncation  *genie.Truncation `json:"truncation,omitempty" yaml:"truncation,omitempty"`
	Summary     genie.Summary     `json:"summary" yaml:"summary"`

	TerrainRestrictions []genie.TerrainRestriction `json:"terrainRestrictions" yaml:"terrainRestrictions"`
	PlayerColours       []genie.PlayerColour       `json:"playerColours" yaml:"playerColours"`
	Sounds              []genie.Sound              `json:"sounds" yaml:"sounds"`
	Graphics            []genie.Graphic            `json:"graphics" yaml:"graphics"`
	Terrains            []TerrainJSON              `json:"terrains" yaml:"terrains"`
	RandomMaps          *genie.RandomMaps          `json:"randomMaps,omitempty" yaml:"randomMaps,omitempty"`
	Effects             []genie.Effect             `json:"effects" yaml:"effects"`
	Civs                []CivJSON                  `json:"civs" yaml:"civs"`
	Techs               []genie.Tech               `json:"techs" yaml:"techs"`
	TimeSlice           int32                      `json:"timeSlice" yaml:"timeSlice"`
}

// TerrainJSON is an enabled terrain with its slot number.
type TerrainJSON struct {
	Slot          int `json:"slot" yaml:"slot"`
	genie.Terrain `yaml:",inline"`
}

// CivJSON is a civilisation with its sparse unit table flattened to the
// populated slots.
type CivJSON struct {
	Name       string     `json:"name" yaml:"name"`
	PlayerType int8       `json:"playerType" yaml:"playerType"`
	TechTreeID int16      `json:"techTreeId" yaml:"techTreeId"`
	TeamBonus  int16      `json:"teamBonus" yaml:"teamBonus"`
	IconSet    int8       `json:"iconSet" yaml:"iconSet"`
	Resources  []float32  `json:"resources" yaml:"resources"`
	UnitSlots  int        `json:"unitSlots" yaml:"unitSlots"`
	Units      []UnitJSON `json:"units" yaml:"units"`
}

// UnitJSON is a populated unit slot.
type UnitJSON struct {
	Slot       int    `json:"slot" yaml:"slot"`
	Variants   string `json:"variants" yaml:"variants"`
	genie.Unit `yaml:",inline"`
}

// BuildExport assembles the export document for an archive.
func BuildExport(meta core.ArchiveMeta, a *genie.Archive) ArchiveExport {
	export := ArchiveExport{
		Fingerprint:         meta.FingerprintHex(),
		SourcePath:          meta.SourcePath,
		DecodedAt:           meta.DecodedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Version:             a.Version,
		Complete:            a.Complete(),
		Truncation:          a.Truncation,
		Summary:             a.Summary(),
		TerrainRestrictions: a.TerrainRestrictions,
		PlayerColours:       a.PlayerColours,
		Sounds:              a.Sounds,
		Graphics:            a.Graphics,
		RandomMaps:          a.RandomMaps,
		Effects:             a.Effects,
		Techs:               a.Techs,
		TimeSlice:           a.TimeSlice,
		Terrains:            []TerrainJSON{},
		Civs:                make([]CivJSON, 0, len(a.Civs)),
	}

	if a.TerrainBlock != nil {
		for i, t := range a.TerrainBlock.Terrains {
			if t.Enabled != 0 {
				export.Terrains = append(export.Terrains, TerrainJSON{Slot: i, Terrain: t})
			}
		}
	}

	for _, c := range a.Civs {
		cj := CivJSON{
			Name:       c.Name,
			PlayerType: c.PlayerType,
			TechTreeID: c.TechTreeID,
			TeamBonus:  c.TeamBonus,
			IconSet:    c.IconSet,
			Resources:  c.Resources,
			UnitSlots:  len(c.Units),
			Units:      []UnitJSON{},
		}
		for slot, u := range c.Units {
			if u == nil {
				continue
			}
			cj.Units = append(cj.Units, UnitJSON{Slot: slot, Variants: u.Variants().String(), Unit: *u})
		}
		export.Civs = append(export.Civs, cj)
	}

	return export
}

// exportName builds "<source>_<fingerprint>.<ext>[.gz]".
func (b *Backend) exportName(meta core.ArchiveMeta) string {
	base := filepath.Base(meta.SourcePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer(" ", "_", ":", "_").Replace(base)
	if base == "" || base == "." {
		base = "archive"
	}

	ext := "json"
	if b.cfg.Format == "yaml" {
		ext = "yaml"
	}
	name := fmt.Sprintf("%s_%s.%s", base, meta.FingerprintHex(), ext)
	if b.cfg.CompressOutput {
		name += ".gz"
	}
	return name
}

// writeExport writes the document to path in the configured format. A
// failed write removes the file, so no partial export is left behind.
func (b *Backend) writeExport(path string, data ArchiveExport) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if !b.cfg.CompressOutput {
		return encode(f, b.cfg.Format, data)
	}
	zw := gzip.NewWriter(f)
	if err := encode(zw, b.cfg.Format, data); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

func encode(w io.Writer, format string, data ArchiveExport) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	case "json", "":
		return jsoncodec.NewEncoder(w).Encode(data)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
