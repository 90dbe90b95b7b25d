package main

import (
	"fmt"
	"strings"

	"github.com/annel0/endless-structure/internal/structure"
	"github.com/annel0/endless-structure/internal/vec"
)

// parseDir переводит x|-x|y|-y|z|-z в единичный вектор
func parseDir(s string) (vec.Vec3Float, error) {
	sign := 1.0
	if strings.HasPrefix(s, "-") {
		sign = -1
		s = s[1:]
	}
	switch s {
	case "x":
		return vec.Vec3Float{X: sign}, nil
	case "y":
		return vec.Vec3Float{Y: sign}, nil
	case "z":
		return vec.Vec3Float{Z: sign}, nil
	}
	return vec.Vec3Float{}, fmt.Errorf("unknown direction %q, want x|y|z with optional '-'", s)
}

// floorGlyph — символ пола на карте
func floorGlyph(f structure.Floor) byte {
	switch f.Kind {
	case structure.FloorPlain:
		return '.'
	case structure.FloorFragile:
		return '~'
	case structure.FloorRope:
		return '|'
	case structure.FloorRamp:
		return '/'
	default:
		return ' '
	}
}

// renderSlice рисует слой окна, в котором стоит агент: строки по Z, столбцы по X.
// Агент обозначен '@'.
func renderSlice(snap *structure.Snapshot, agent vec.Vec3Float) string {
	at, inside := snap.TileContaining(agent)
	layer := snap.SideLength / 2
	if inside {
		layer = at.Y
	}

	var b strings.Builder
	fmt.Fprintf(&b, "layer j=%d (y=%.2f)\n", layer, snap.Anchor.Y+snap.TileLength*float64(layer-snap.Radius+1))
	border := "+" + strings.Repeat("-", snap.SideLength) + "+\n"
	b.WriteString(border)
	for k := snap.SideLength - 1; k >= 0; k-- {
		b.WriteByte('|')
		for i := 0; i < snap.SideLength; i++ {
			c := vec.Vec3{X: i, Y: layer, Z: k}
			if inside && c == at {
				b.WriteByte('@')
				continue
			}
			t, _ := snap.Tile(c)
			b.WriteByte(floorGlyph(t.Floor))
		}
		b.WriteString("|\n")
	}
	b.WriteString(border)
	return b.String()
}
