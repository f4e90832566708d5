package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/genietools/genie-dat/internal/batch"
	"github.com/genietools/genie-dat/pkg/core"
	"github.com/genietools/genie-dat/pkg/genie"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#5F5F87")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#EEEEEE")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Width(16)

	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAF5F"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#D7AF00"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#D75F5F"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5F5F87"))
)

const (
	statusOK  = "ok"
	statusCol = 2
)

// renderSummary draws one table row per decoded file.
func renderSummary(results []batch.Result) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		row := []string{filepath.Base(r.Path), "-", status(r), "-", "-", "-", "-", "-", r.Duration.Round(time.Millisecond).String()}
		if r.Archive != nil {
			s := r.Archive.Summary()
			row[1] = s.Version
			row[3] = strconv.Itoa(s.Civs)
			row[4] = strconv.Itoa(s.Units)
			row[5] = strconv.Itoa(s.Techs)
			row[6] = strconv.Itoa(s.Graphics)
			row[7] = strconv.Itoa(s.Sounds)
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col != statusCol {
				return cellStyle
			}
			switch st := rows[row][statusCol]; {
			case st == statusOK:
				return cellStyle.Inherit(okStyle)
			case strings.HasPrefix(st, "truncated"):
				return cellStyle.Inherit(warnStyle)
			default:
				return cellStyle.Inherit(errStyle)
			}
		}).
		Headers("FILE", "VERSION", "STATUS", "CIVS", "UNITS", "TECHS", "GRAPHICS", "SOUNDS", "TOOK").
		Rows(rows...)
	return t.String()
}

func status(r batch.Result) string {
	switch {
	case r.Err != nil:
		return "error: " + r.Err.Error()
	case r.Archive.Truncation != nil:
		return "truncated at " + r.Archive.Truncation.Section
	default:
		return statusOK
	}
}

// renderInspect prints the header fields of one archive and the first units
// of each civilisation.
func renderInspect(meta core.ArchiveMeta, a *genie.Archive, units int) string {
	var b strings.Builder
	line := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	b.WriteString(titleStyle.Render(filepath.Base(meta.SourcePath)))
	b.WriteString("\n\n")

	s := a.Summary()
	line("Version", s.Version)
	line("Fingerprint", meta.FingerprintHex())
	if a.Truncation != nil {
		line("Truncated at", warnStyle.Render(a.Truncation.Section))
		line("Reason", a.Truncation.Err)
	} else {
		line("Complete", okStyle.Render("yes"))
	}
	line("Debug position", strconv.FormatInt(a.DebugPos, 10))
	line("Time slice", strconv.Itoa(int(a.TimeSlice)))
	line("Sections", fmt.Sprintf("%d sounds, %d graphics, %d terrains, %d effects, %d techs",
		s.Sounds, s.Graphics, s.Terrains, s.Effects, s.Techs))

	for i, c := range a.Civs {
		b.WriteByte('\n')
		b.WriteString(headerStyle.Render(fmt.Sprintf("Civ %d: %s", i, c.Name)))
		b.WriteByte('\n')

		shown := 0
		for slot, u := range c.Units {
			if u == nil {
				continue
			}
			if shown == units {
				b.WriteString(labelStyle.Render(""))
				fmt.Fprintf(&b, "... %d slots\n", len(c.Units))
				break
			}
			b.WriteString(labelStyle.Render(fmt.Sprintf("  #%d", slot)))
			fmt.Fprintf(&b, "%s (id %d, type %d) %s\n", u.Name, u.ID, u.Type, u.Variants())
			shown++
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
