package display

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"priorityone/internal/domain"
)

// Map cell grid. Scene coordinates run 0..100 on both axes; unit spawn
// points sit just outside, so the grid clamps rather than clips them.
const (
	mapCols = 40
	mapRows = 14
)

// unitGlyph is the single-character map marker for each unit type.
func unitGlyph(t domain.UnitType) byte {
	switch t {
	case domain.UnitPolice:
		return 'P'
	case domain.UnitFire:
		return 'F'
	case domain.UnitEMSBLS:
		return 'B'
	case domain.UnitEMSALS:
		return 'A'
	case domain.UnitSWAT:
		return 'S'
	default:
		return '?'
	}
}

// cell converts a scene location to a grid cell, clamped to the grid.
func cell(loc domain.Location) (col, row int) {
	col = int(loc.X / 100 * float64(mapCols-1))
	row = int(loc.Y / 100 * float64(mapRows-1))
	if col < 0 {
		col = 0
	}
	if col > mapCols-1 {
		col = mapCols - 1
	}
	if row < 0 {
		row = 0
	}
	if row > mapRows-1 {
		row = mapRows - 1
	}
	return col, row
}

// renderMap draws the scene grid: dotted streets, the caller (once
// located) and every dispatched unit closing on it.
func renderMap(caller domain.Location, callerShown bool, units []domain.MapUnit) string {
	type marker struct {
		glyph byte
		style lipgloss.Style
	}
	grid := make(map[[2]int]marker)

	if callerShown {
		col, row := cell(caller)
		grid[[2]int{col, row}] = marker{'@', mapCallerStyle}
	}

	// Units draw over the caller marker once they reach the same cell.
	for _, u := range units {
		col, row := cell(u.Pos)
		style := mapEnrouteStyle
		if u.Status == domain.UnitOnScene {
			style = mapOnSceneStyle
		}
		grid[[2]int{col, row}] = marker{unitGlyph(u.Type), style}
	}

	var b strings.Builder
	for row := 0; row < mapRows; row++ {
		for col := 0; col < mapCols; col++ {
			if m, ok := grid[[2]int{col, row}]; ok {
				b.WriteString(m.style.Render(string(m.glyph)))
				continue
			}
			// Sparse dot pattern reads as a street grid.
			if row%4 == 2 && col%2 == 0 || col%8 == 4 {
				b.WriteString(dimStyle.Render("·"))
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}

	if !callerShown {
		b.WriteString(dimStyle.Render("  caller location unknown; log an address"))
	} else {
		b.WriteString(dimStyle.Render("  @ caller"))
		for _, u := range units {
			b.WriteString(dimStyle.Render("  ") + unitLegend(u))
		}
	}
	return b.String()
}

func unitLegend(u domain.MapUnit) string {
	label := string(unitGlyph(u.Type)) + " " + u.Status.String()
	if u.Status == domain.UnitOnScene {
		return mapOnSceneStyle.Render(label)
	}
	return mapEnrouteStyle.Render(label)
}
