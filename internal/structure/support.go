package structure

import "github.com/annel0/endless-structure/internal/vec"

// SupportColumn — вертикальная колонна на всю высоту окна
type SupportColumn struct {
	ID       uint64
	Position vec.Vec3Float
	Height   float64
}

// SupportColumnGrid — двумерное окно колонн (i по X, j по Z)
type SupportColumnGrid struct {
	side       int
	radius     int
	tileLength float64
	cells      *Window[*SupportColumn]
	nextID     uint64
}

func newSupportColumnGrid(side int, tileLength float64, anchor vec.Vec3Float) *SupportColumnGrid {
	g := &SupportColumnGrid{
		side:       side,
		radius:     (side + 1) / 2,
		tileLength: tileLength,
	}
	g.cells = NewWindow[*SupportColumn](side, 2, func(idx [3]int) *SupportColumn {
		return g.newColumn(anchor, idx[0], idx[1])
	})
	return g
}

func (g *SupportColumnGrid) newColumn(anchor vec.Vec3Float, i, j int) *SupportColumn {
	g.nextID++
	return &SupportColumn{
		ID:       g.nextID,
		Position: g.PositionOf(anchor, i, j),
		Height:   float64(g.side) * g.tileLength,
	}
}

// PositionOf вычисляет позицию колонны: на углу тайла, по высоте на якоре
func (g *SupportColumnGrid) PositionOf(anchor vec.Vec3Float, i, j int) vec.Vec3Float {
	off := float64(1 - g.radius)
	return vec.Vec3Float{
		X: anchor.X + g.tileLength*(float64(i)+off) - g.tileLength/2,
		Y: anchor.Y,
		Z: anchor.Z + g.tileLength*(float64(j)+off) - g.tileLength/2,
	}
}

// At возвращает колонну или nil вне окна
func (g *SupportColumnGrid) At(i, j int) *SupportColumn {
	c, _ := g.cells.At([3]int{i, j})
	return c
}

// Len возвращает число колонн
func (g *SupportColumnGrid) Len() int {
	n := 0
	g.cells.Each(func(_ [3]int, c *SupportColumn) {
		if c != nil {
			n++
		}
	})
	return n
}

// Shift двигает колонны вслед за окном тайлов.
// По Y колонны переставляются, по X и Z ведущий ряд создаётся заново.
// Возвращает число созданных и удалённых колонн.
func (g *SupportColumnGrid) Shift(axis vec.Axis, dir int, anchor vec.Vec3Float) (created, destroyed int) {
	if axis == vec.AxisY {
		g.cells.Each(func(_ [3]int, c *SupportColumn) {
			if c != nil {
				c.Position.Y += float64(dir) * g.tileLength
			}
		})
		return 0, 0
	}

	dim := 0
	if axis == vec.AxisZ {
		dim = 1
	}
	g.cells.Shift(dim, dir,
		func(c *SupportColumn) {
			if c != nil {
				destroyed++
			}
		},
		func(idx [3]int) *SupportColumn {
			created++
			return g.newColumn(anchor, idx[0], idx[1])
		})
	return created, destroyed
}
